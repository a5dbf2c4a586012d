// Package output renders total-viewshed results: a single reconstructed
// viewshed as ASCII art, and the full heatmap as a grayscale PNG.
package output

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShortRingData is returned when a sector's ring buffer runs out before
// the expected number of bands has been consumed.
var ErrShortRingData = errors.New("ring data exhausted before all bands were read")

// asciiReconstructor walks every sector's ring data looking for the bands
// belonging to a single point of view, marking each opening/closing cell of
// its viewshed.
type asciiReconstructor struct {
	demWidth            uint32
	reservedRingSize    int
	povID               uint32
	computablePoints    uint32
	viewshed            []string
}

// ReconstructASCII rebuilds the single viewshed for povID from the ring
// data produced across all sectors, returning one string per DEM row with
// cells space-joined: "." unseen, "o" the PoV, "+"/"-" a visibility
// opening/closing, "±" both.
func ReconstructASCII(demWidth uint32, demSize uint32, computablePointsCount uint32, povID uint32, allRingData [][]uint32, reservedRingSize int) ([]string, error) {
	viewshed := make([]string, demSize)
	for i := range viewshed {
		viewshed[i] = "."
	}

	r := &asciiReconstructor{
		demWidth:         demWidth,
		reservedRingSize: reservedRingSize,
		povID:            povID,
		computablePoints: computablePointsCount,
		viewshed:         viewshed,
	}

	for _, ringData := range allRingData {
		if err := r.parseSector(ringData); err != nil {
			return nil, err
		}
	}

	r.viewshed[povID] = "o"

	rows := make([]string, 0, demSize/demWidth)
	for start := uint32(0); start < demSize; start += demWidth {
		rows = append(rows, strings.Join(r.viewshed[start:start+demWidth], " "))
	}
	return rows, nil
}

func (r *asciiReconstructor) parseSector(ringData []uint32) error {
	pos := 0
	next := func() (uint32, error) {
		if pos >= len(ringData) {
			return 0, ErrShortRingData
		}
		v := ringData[pos]
		pos++
		return v, nil
	}

	for band := uint32(0); band < r.computablePoints*2; band++ {
		ringCount, err := next()
		if err != nil {
			return err
		}
		// Every ring is an opening/closing pair.
		noOfRingValues := ringCount / 2

		povID, err := next()
		if err != nil {
			return err
		}

		for index := uint32(0); index < noOfRingValues; index++ {
			var opening uint32
			if index == 0 {
				opening = povID
			} else {
				opening, err = next()
				if err != nil {
					return err
				}
			}
			closing, err := next()
			if err != nil {
				return err
			}

			if povID == r.povID {
				r.populate(opening, closing)
			}
		}

		// The rest of this band's reserved slots (ring_count + pov_id +
		// the 2*no_of_ring_values-1 values actually read above) are
		// unused padding; skip straight to the next band's first slot.
		skip := r.reservedRingSize - int(noOfRingValues)*2 - 1
		if skip > 0 {
			pos += skip
		}
		if pos > len(ringData) {
			return fmt.Errorf("%w: band %d", ErrShortRingData, band)
		}
	}

	return nil
}

func (r *asciiReconstructor) populate(opening, closing uint32) {
	if r.viewshed[opening] == "." {
		r.viewshed[opening] = "+"
	} else {
		r.viewshed[opening] = "±"
	}

	if r.viewshed[closing] == "." {
		r.viewshed[closing] = "-"
	} else {
		r.viewshed[closing] = "±"
	}

	if opening == closing {
		r.viewshed[opening] = "±"
	}
}
