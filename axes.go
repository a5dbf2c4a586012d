package tvs

import (
	"math"
	"sort"
)

// defaultShiftAngle is the angular shift applied to every sector before
// projecting distances, so that no DEM point ever aligns exactly with an
// axis. spec.md §9 warns this must never change without recomputing the
// golden test outputs; it is exposed as Compute's SectorShift purely to
// match the reference CLI's surface, not because other values are
// validated.
const defaultShiftAngle = 0.001

// Axes holds the per-sector geometric preparation described in spec.md §4.1:
// two orthogonal projected-distance orderings of every DEM cell for a given
// sector angle.
//
// It's easiest to picture this as a conventional x/y grid of DEM points with
// a second axis pair overlaid at the sector angle: a "sight" axis running
// parallel to the band of sight, and a "sector" axis perpendicular to it,
// used as a datum to order points along the band.
type Axes struct {
	// Angle is the sector angle in degrees, plus the sector shift
	// (defaultShiftAngle unless NewAxesWithShift is given another).
	Angle float64
	// Distances holds the signed perpendicular distance of every DEM cell
	// from the sight axis.
	Distances []float32
	// SectorOrdered is a permutation of [0, width²) sorted ascending by
	// projected distance on the sector axis.
	SectorOrdered []uint32
	// SightOrderedMap maps a DEM cell id to its rank when cells are
	// sorted ascending by projected distance on the sight axis.
	SightOrderedMap []uint32
}

// NewAxes computes the Axes for a DEM of the given width at sector angle
// (in degrees), using the default sector shift.
func NewAxes(width uint32, angle float64) *Axes {
	return NewAxesWithShift(width, angle, defaultShiftAngle)
}

// NewAxesWithShift is NewAxes with an explicit sector shift, for callers
// that accept Config.SectorShift from the CLI.
func NewAxesWithShift(width uint32, angle float64, shift float64) *Axes {
	a := &Axes{Angle: angle + shift}
	a.compute(width)
	return a
}

func (a *Axes) compute(width uint32) {
	sightDistances64 := calculateDistances(width, a.Angle)
	a.Distances = make([]float32, len(sightDistances64))
	for i, d := range sightDistances64 {
		a.Distances[i] = float32(d)
	}

	sightOrdered := orderByDistance(sightDistances64)
	a.SightOrderedMap = make([]uint32, len(sightOrdered))
	for rank, demID := range sightOrdered {
		a.SightOrderedMap[demID] = uint32(rank)
	}

	sectorDistances64 := calculateDistances(width, a.Angle+90.0)
	a.SectorOrdered = orderByDistance(sectorDistances64)
}

// calculateDistances projects every DEM cell onto a line at the given angle
// (degrees) passing through the origin. Cell (x, y) sits at position
// (x, -y) so that [0, 0] is the top-left of the DEM, per spec.md §4.1. The
// signed perpendicular distance of (x, y) from a line at angle φ is
// x*sin(φ) - y*cos(φ), computed in 64-bit.
//
// Row 0 (the top of the DEM, and the start of its row-major flat id
// ordering) has spatial y = 0; row (width-1) has spatial y = -(width-1).
// The outer loop must therefore count spatial y down from 0, not up to it,
// so that distances[0] lands on the top-left cell.
func calculateDistances(width uint32, angleDegrees float64) []float64 {
	distances := make([]float64, 0, width*width)
	sine := math.Sin(angleDegrees * math.Pi / 180)
	cosine := math.Cos(angleDegrees * math.Pi / 180)

	for y := int64(0); y > -int64(width); y-- {
		for x := uint32(0); x < width; x++ {
			left := float64(x) * sine
			right := float64(y) * cosine
			distances = append(distances, left-right)
		}
	}

	return distances
}

// orderByDistance returns the permutation of [0, len(distances)) that sorts
// distances ascending. Ties resolve by ascending cell id, which keeps the
// sort deterministic (spec.md §4.1); after the sector shift, ties should not
// occur for any plausible DEM layout.
func orderByDistance(distances []float64) []uint32 {
	ordered := make([]uint32, len(distances))
	for i := range ordered {
		ordered[i] = uint32(i)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		left, right := distances[ordered[i]], distances[ordered[j]]
		if left == right {
			return ordered[i] < ordered[j]
		}
		return left < right
	})

	return ordered
}
