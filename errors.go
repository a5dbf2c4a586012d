package tvs

import (
	"errors"
)

// Error kinds named in the design's error handling section. Each is a
// structured sentinel that callers wrap with context via errors.Join. All are
// fatal except IOFailure from a cache load, after which the sector driver
// logs the error and recomputes.
var ErrConfigInvalid = errors.New("ConfigInvalid: max line of sight exceeds half the DEM width")
var ErrIOFailure = errors.New("IOFailure: cache read/write failed")
var ErrGPUUnavailable = errors.New("GPUUnavailable: no compute adapter for the requested backend")
var ErrBufferOverrun = errors.New("BufferOverrun: ring buffer under-sized for rings encountered")
var ErrNumericDegenerate = errors.New("NumericDegenerate: NaN encountered in distances")

// Cache-specific sentinels, mirroring the teacher's one-sentinel-per-failure-mode
// style instead of a generic wrapped error.
var ErrCacheCreateDirs = errors.New("Error creating cache directories")
var ErrCacheReadBandDeltas = errors.New("Error reading cached band deltas")
var ErrCacheReadDistances = errors.New("Error reading cached distances")
var ErrCacheWriteBandDeltas = errors.New("Error writing cached band deltas")
var ErrCacheWriteDistances = errors.New("Error writing cached distances")

// DEM loader sentinels.
var ErrDEMMagic = errors.New("Not a Binary Terrain v1.3 file")
var ErrDEMDataSize = errors.New("Unsupported data size for DEM field")
var ErrDEMDimensions = errors.New("DEM elevations length does not match width squared")
var ErrDEMUnsupportedExt = errors.New("Unsupported DEM file extension")
