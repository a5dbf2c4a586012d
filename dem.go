// Package tvs computes a Total Viewshed Surface (TVS) raster over a Digital
// Elevation Model: for every interior cell, the earth surface area visible
// from that cell summed across 180 angular sectors, using a "band of sight"
// algorithm that replaces conventional V-shaped radial sweeps with parallel
// bands whose shape is shared among all points in a sector.
package tvs

import (
	"errors"
	"fmt"
)

// DEM is a square grid of elevation samples plus the derived quantities
// needed to compute a Total Viewshed Surface over it.
//
// It doesn't contain geographic coordinates itself, only the information
// needed to relate a flat array index to a (x, y) position in meters.
type DEM struct {
	// Width is the number of cells per side. The DEM is always square.
	Width uint32
	// Scale is the size of a cell in meters.
	Scale float32
	// Elevations holds Width*Width samples in meters, row-major, origin
	// top-left.
	Elevations []float32
	// MaxLineOfSight is the maximum distance in meters to search for
	// visible points.
	MaxLineOfSight uint32
	// MaxLOSAsPoints is MaxLineOfSight converted to a count of cells.
	MaxLOSAsPoints uint32
	// BandSize is the number of cells spanned by one band of sight,
	// including the PoV.
	BandSize uint32
	// ComputablePointsCount is the number of interior cells whose full
	// viewshed fits inside the DEM.
	ComputablePointsCount uint32
	// TVSWidth is the side length of the square sub-grid of computable
	// cells.
	TVSWidth uint32

	// size caches Width*Width.
	size uint32
}

// NewDEM validates the requested max line of sight against the DEM width and
// derives the computable sub-grid. It mirrors DEM::new in the reference
// implementation.
func NewDEM(width uint32, scale float32, maxLineOfSight uint32) (*DEM, error) {
	size := width * width
	maxLOSAsPoints := uint32(float32(maxLineOfSight)/scale + 0.5)
	maxPossibleLOSAsPoints := width / 2

	if maxLOSAsPoints > maxPossibleLOSAsPoints {
		return nil, errors.Join(ErrConfigInvalid, fmt.Errorf(
			"the maximum line of sight (%dm) is longer than the maximum distance any "+
				"point can completely see (%gm)",
			maxLineOfSight, float64(maxPossibleLOSAsPoints)*float64(scale),
		))
	}

	dem := &DEM{
		Width:          width,
		Scale:          scale,
		MaxLineOfSight: maxLineOfSight,
		MaxLOSAsPoints: maxLOSAsPoints,
		// Add 1 to be sure we always compute points within the line of
		// sight, and no less.
		BandSize: maxLOSAsPoints + 1,
		size:     size,
	}

	dem.countComputablePoints()
	dem.TVSWidth = isqrt(dem.ComputablePointsCount)

	return dem, nil
}

// countComputablePoints counts the cells in the DEM whose viewshed can be
// fully calculated, i.e. those whose max-line-of-sight neighbourhood does not
// fall outside the DEM.
func (d *DEM) countComputablePoints() {
	d.ComputablePointsCount = 0
	for point := uint32(0); point < d.size; point++ {
		if d.isPointComputable(point) {
			d.ComputablePointsCount++
		}
	}
}

// isPointComputable reports whether dem_id's full max-line-of-sight
// neighbourhood lies inside the DEM, per spec.md §3's computable_count
// invariant.
func (d *DEM) isPointComputable(demID uint32) bool {
	maxLOS := float32(d.MaxLineOfSight)
	x := float32(demID%d.Width) * d.Scale
	y := float32(demID/d.Width) * d.Scale
	lower := maxLOS
	upper := float32(d.Width-1)*d.Scale - maxLOS
	return x >= lower && x <= upper && y >= lower && y <= upper
}

// TVSIDToPoVID converts a computable sub-grid id into its DEM id, per the
// kernel's band identity mapping (spec.md §4.3).
func (d *DEM) TVSIDToPoVID(tvsID uint32) uint32 {
	x := tvsID%d.TVSWidth + d.MaxLOSAsPoints
	y := tvsID/d.TVSWidth + d.MaxLOSAsPoints
	return y*d.Width + x
}

// PoVIDToTVSID is the inverse of TVSIDToPoVID.
func (d *DEM) PoVIDToTVSID(povID uint32) uint32 {
	x := povID%d.Width - d.MaxLOSAsPoints
	y := povID/d.Width - d.MaxLOSAsPoints
	return y*d.TVSWidth + x
}

// Size returns Width*Width.
func (d *DEM) Size() uint32 {
	return d.size
}

// Validate checks the invariants spec.md §3 requires of the elevation data
// before any sector computation begins.
func (d *DEM) Validate() error {
	if uint32(len(d.Elevations)) != d.size {
		return errors.Join(ErrDEMDimensions, fmt.Errorf(
			"got %d elevations, want %d (width %d squared)", len(d.Elevations), d.size, d.Width,
		))
	}
	return nil
}

// isqrt returns floor(sqrt(n)) for non-negative n, matching Rust's
// u32::isqrt used to derive tvs_width.
func isqrt(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
