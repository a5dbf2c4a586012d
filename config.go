package tvs

import (
	"errors"
	"fmt"
)

// ComputeType selects where the Kernel (§4.3) actually runs. Only CPU is
// implemented by this module; Vulkan and Cuda are accepted as configuration
// values so the CLI surface matches the reference tool, but any attempt to
// run them returns ErrGPUUnavailable rather than faking a shader pipeline.
type ComputeType int

const (
	ComputeCPU ComputeType = iota
	ComputeVulkan
	ComputeCuda
)

func (c ComputeType) String() string {
	switch c {
	case ComputeCPU:
		return "cpu"
	case ComputeVulkan:
		return "vulkan"
	case ComputeCuda:
		return "cuda"
	default:
		return "unknown"
	}
}

// ParseComputeType maps a CLI flag value onto a ComputeType.
func ParseComputeType(s string) (ComputeType, error) {
	switch s {
	case "cpu":
		return ComputeCPU, nil
	case "vulkan":
		return ComputeVulkan, nil
	case "cuda":
		return ComputeCuda, nil
	default:
		return 0, fmt.Errorf("unknown compute backend %q", s)
	}
}

// Config collects the run-time parameters of a single total-viewshed
// computation, gathered from CLI flags in cmd/main.go.
type Config struct {
	Input          string
	ConfigURI      string
	MaxLineOfSight uint32
	RingsPerKm     float32
	ObserverHeight float32
	SectorShift    float64
	Compute        ComputeType
	OutputDir      string
	CacheDir       string
	ScaleOverride  float64
	OriginLat      float64
}

// Validate checks invariants that aren't already enforced by NewDEM, namely
// that a GPU backend hasn't been requested when this module only computes
// on the CPU.
func (cfg *Config) Validate() error {
	if cfg.Compute != ComputeCPU {
		return errors.Join(ErrGPUUnavailable, fmt.Errorf("backend %s", cfg.Compute))
	}
	return nil
}
