package tvs

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/alitto/pond"
)

// sectorSteps is the number of angular sectors swept to cover a half-plane,
// per spec.md §2.
const sectorSteps = 180

// ringsPerKmDefault is the default density used to size the ring data
// buffer, per spec.md §4.4.
const ringsPerKmDefault = 5.0

// Compute orchestrates the 180 sector passes described in spec.md §4.4: for
// each sector it runs Axes -> Band-Delta Compiler -> Kernel, reduces kernel
// outputs into a running total surface raster, and emits per-sector
// ring-sector buffers.
type Compute struct {
	DEM       *DEM
	Constants Constants
	Cache     *Cache // optional; nil disables on-disk caching

	// SectorShift is the angular offset applied before every sector's axes
	// are computed (spec.md §9). Defaults to defaultShiftAngle.
	SectorShift float64

	reservedRingsPerBand uint32
	pool                 *pond.WorkerPool
}

// NewCompute builds a Compute driver for dem. ringsPerKm controls how much
// memory is reserved for ring data per band (spec.md §4.4); cache may be nil
// to disable the on-disk band-delta/distance cache.
func NewCompute(dem *DEM, ringsPerKm float32, observerHeight float32, cache *Cache) *Compute {
	totalBands := dem.ComputablePointsCount * 2
	reservedRingsPerBand := ringCountPerBand(ringsPerKm, dem.MaxLineOfSight)

	n := runtime.NumCPU() * 2
	return &Compute{
		DEM: dem,
		Constants: Constants{
			TotalBands:           totalBands,
			MaxLOSAsPoints:       dem.MaxLOSAsPoints,
			DEMWidth:             dem.Width,
			TVSWidth:             dem.TVSWidth,
			ObserverHeight:       observerHeight,
			ReservedRingsPerBand: reservedRingsPerBand,
		},
		Cache:                cache,
		SectorShift:          defaultShiftAngle,
		reservedRingsPerBand: reservedRingsPerBand,
		pool:                 pond.New(n, 0, pond.MinWorkers(n)),
	}
}

// ringCountPerBand calculates the expected number of rings per band of
// sight, matching Compute::ring_count_per_band in the reference
// implementation.
func ringCountPerBand(ringsPerKm float32, maxLineOfSight uint32) uint32 {
	const metersPerKm = 1000.0
	bandLengthInKm := float32(maxLineOfSight) / metersPerKm
	return uint32(bandLengthInKm * ringsPerKm)
}

// Stop releases the worker pool. Callers should defer this after NewCompute.
func (c *Compute) Stop() {
	c.pool.StopAndWait()
}

// SectorResult is the per-sector output consumed by the output package and
// by the sector driver's own reduction step.
type SectorResult struct {
	Angle    uint16
	RingData []uint32
}

// Run executes all 180 sector passes and returns the accumulated total
// surfaces raster alongside every sector's ring data, matching
// Compute::run in the reference implementation.
func (c *Compute) Run() ([]float32, []SectorResult, error) {
	totalSurfaces := make([]float32, c.DEM.ComputablePointsCount)
	allRingData := make([]SectorResult, 0, sectorSteps)

	for angle := uint16(0); angle < sectorSteps; angle++ {
		log.Printf("Computing sector %d/%d", angle+1, sectorSteps)

		cumulativeSurfaces := make([]float32, c.DEM.ComputablePointsCount)
		ringData := make([]uint32, uint32(c.DEM.ComputablePointsCount)*2*c.reservedRingsPerBand)

		if err := c.computeSector(angle, cumulativeSurfaces, ringData); err != nil {
			return nil, nil, fmt.Errorf("sector %d: %w", angle, err)
		}

		for i, v := range cumulativeSurfaces {
			totalSurfaces[i] += v
		}

		allRingData = append(allRingData, SectorResult{Angle: angle, RingData: ringData})
	}

	return totalSurfaces, allRingData, nil
}

// computeSector runs one sector's Axes -> Compiler -> Kernel pipeline,
// preferring a cached band-delta/distance pair over recomputation (spec.md
// §4.4 step 1).
func (c *Compute) computeSector(angle uint16, cumulativeSurfaces []float32, ringData []uint32) error {
	var distances []float32
	var deltas []int32

	if c.Cache != nil {
		cached, cachedDeltas, cachedDistances, err := c.Cache.Load(c.DEM.Width, angle)
		if err != nil {
			log.Printf("cache load for sector %d failed, recomputing: %v", angle, err)
		}
		if cached {
			distances, deltas = cachedDistances, cachedDeltas
		}
	}

	if distances == nil {
		axes := NewAxesWithShift(c.DEM.Width, float64(angle), c.SectorShift)
		deltas = CompileBandDeltas(c.DEM, axes)
		distances = axes.Distances

		if c.Cache != nil {
			if err := c.Cache.Save(c.DEM.Width, angle, deltas, distances); err != nil {
				log.Printf("cache save for sector %d failed: %v", angle, err)
			}
		}
	}

	// Direction-partitioned dispatch (spec.md §4.3/§9): forward bands
	// (kernel_id < half) are dispatched and joined before backward bands
	// (kernel_id >= half) begin, so no two concurrently-running kernel
	// invocations ever write the same cumulative_surfaces[tvs_id] slot.
	half := c.Constants.TotalBands / 2

	if err := c.dispatchRange(0, half, &c.Constants, c.DEM.Elevations, distances, deltas, cumulativeSurfaces, ringData); err != nil {
		return err
	}
	if err := c.dispatchRange(half, c.Constants.TotalBands, &c.Constants, c.DEM.Elevations, distances, deltas, cumulativeSurfaces, ringData); err != nil {
		return err
	}

	return nil
}

// dispatchRange submits one kernel task per band id in [start, end) to the
// worker pool and blocks until all are complete, surfacing the first error
// encountered (spec.md §5: "Bands within a sector are parallel").
func (c *Compute) dispatchRange(
	start, end uint32,
	constants *Constants,
	elevations, distances []float32,
	deltas []int32,
	cumulativeSurfaces []float32,
	ringData []uint32,
) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for kernelID := start; kernelID < end; kernelID++ {
		kernelID := kernelID
		wg.Add(1)
		c.pool.Submit(func() {
			defer wg.Done()
			err := Kernel(kernelID, constants, elevations, distances, deltas, cumulativeSurfaces, ringData)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if firstErr != nil {
		return errors.Join(firstErr)
	}
	return nil
}
