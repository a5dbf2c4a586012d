package tvs

import (
	"math"
	"sort"
)

// diagonalFactor is how much longer the diagonal of a square is than its
// width (√2). A 45° band covers only 1/√2 cells per unit length of the
// equivalent axis-aligned band, so band sampling must be over-provisioned by
// this factor to avoid the band "slipping between" cells (spec.md §4.2).
const diagonalFactor = math.Sqrt2

// CompileBandDeltas derives the single band_size-1 signed-integer sequence
// that, added successively to any interior cell's flat id, traces the cells
// along that cell's band of sight in the forward direction for the current
// sector (spec.md §4.2). Subtracting the same sequence traces the backward
// band.
//
// The template is computed once per sector around an arbitrary "midpoint"
// cell and reused for every point in the DEM: on a regular grid the
// differences between flat ids of cells along a fixed-angle line are
// translation-invariant, so the deltas around one point hold for all points.
func CompileBandDeltas(dem *DEM, axes *Axes) []int32 {
	bandDeltasSize := dem.BandSize - 1
	bandDeltas := make([]int32, bandDeltasSize)

	// Over-sample to prevent the band from slipping between cells at
	// diagonal angles.
	bandSamples := int(float64(dem.BandSize*2) * diagonalFactor)

	povID := int(dem.Size() / 2)
	bandEdge := povID - bandSamples/2

	demIDsToCompute := make([]uint32, bandSamples)
	distanceIDs := make([]uint32, bandSamples)
	for i := 0; i < bandSamples; i++ {
		demID := axes.SectorOrdered[bandEdge+i]
		demIDsToCompute[i] = demID
		distanceIDs[i] = axes.SightOrderedMap[demID]
	}

	// Map distance-axis order back onto the sector-axis-ordered window: the
	// permutation that sorts distanceIDs ascending, applied to
	// demIDsToCompute, yields the window in band-length order.
	distancesToSectorIDsMap := make([]int, bandSamples)
	for i := range distancesToSectorIDsMap {
		distancesToSectorIDsMap[i] = i
	}
	sort.SliceStable(distancesToSectorIDsMap, func(i, j int) bool {
		return distanceIDs[distancesToSectorIDsMap[i]] < distanceIDs[distancesToSectorIDsMap[j]]
	})

	// Take the upper half of the ordered window: bandSize consecutive
	// entries starting at the PoV, and difference consecutive ids.
	middle := bandSamples / 2
	for k := 0; k < int(bandDeltasSize); k++ {
		current := demIDsToCompute[distancesToSectorIDsMap[middle+k]]
		next := demIDsToCompute[distancesToSectorIDsMap[middle+k+1]]
		bandDeltas[k] = int32(current) - int32(next)
	}

	return bandDeltas
}
