package input

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrHGTSize is returned when a .hgt file's byte length doesn't match either
// of the two standard SRTM tile sizes (1201² or 3601² big-endian int16
// samples).
var ErrHGTSize = errors.New("Unsupported .hgt file size: not a 1-arc-second or 3-arc-second SRTM tile")

// srtm1ArcSecondWidth and srtm3ArcSecondWidth are the two standard SRTM tile
// widths: SRTM1 (1 arc-second) and SRTM3 (3 arc-second).
const (
	srtm1ArcSecondWidth = 3601
	srtm3ArcSecondWidth = 1201
)

// LoadHGT reads an SRTM .hgt elevation raster — a flat grid of big-endian
// int16 samples with no header — inferring its width from the stream
// length and its scale from the SRTM sample spacing at originLat.
func LoadHGT(data []byte, originLat float64) (width uint32, elevations []float32, scale float64, err error) {
	samples := len(data) / 2

	var arcSeconds float64
	switch samples {
	case srtm1ArcSecondWidth * srtm1ArcSecondWidth:
		width = srtm1ArcSecondWidth
		arcSeconds = 1
	case srtm3ArcSecondWidth * srtm3ArcSecondWidth:
		width = srtm3ArcSecondWidth
		arcSeconds = 3
	default:
		return 0, nil, 0, fmt.Errorf("%w: %d samples", ErrHGTSize, samples)
	}

	elevations = make([]float32, samples)
	for i := 0; i < samples; i++ {
		v := int16(binary.BigEndian.Uint16(data[i*2 : i*2+2]))
		elevations[i] = float32(v)
	}

	scale = srtmArcSecondMeters(arcSeconds, originLat)

	return width, elevations, scale, nil
}
