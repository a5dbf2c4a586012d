package tvs

import (
	"errors"
	"fmt"
)

// sentinelMaxAngle guarantees the first point along any band is visible: no
// real viewing angle is ever this low.
const sentinelMaxAngle = -2000.0

// tanOneDegree normalises a visible cell's contribution to surface area. The
// literal is one degree in radians (π/180), which approximates tan(1°)
// (0.0174551); one degree is the angular size of one of the 180 sectors: cells near the PoV
// are swept by many sectors and would otherwise be over-counted, cells far
// away are swept by comparatively few.
const tanOneDegree = 0.017_453_3

// earthRadiusSquared is the literal carried through from the reference
// implementation for the spherical-earth curvature correction. As spec.md
// §9 notes, numerically this is closer to the Earth's diameter in meters
// than to the square of its radius — the resulting correction therefore
// models a linearised curvature drop proportional to distance rather than
// the textbook d²/(2R). The constant is preserved verbatim to match the
// reference golden outputs; changing it invalidates every value in
// spec.md §8.
const earthRadiusSquared = 12_742_000.0

// bandDirection is whether a band looks forward or backward from the PoV.
type bandDirection int

const (
	bandForward bandDirection = iota
	bandBackward
)

// KernelBandIdentity derives which PoV and direction a given kernel id
// refers to (spec.md §4.3's "Band identity mapping").
func KernelBandIdentity(kernelID uint32, constants *Constants) (tvsID uint32, direction bandDirection, povID uint32) {
	half := constants.TotalBands / 2
	if kernelID < half {
		tvsID = kernelID
		direction = bandForward
	} else {
		tvsID = kernelID - half
		direction = bandBackward
	}

	povX := tvsID%constants.TVSWidth + constants.MaxLOSAsPoints
	povY := tvsID/constants.TVSWidth + constants.MaxLOSAsPoints
	povID = povY*constants.DEMWidth + povX
	return tvsID, direction, povID
}

// Kernel is the per-band visibility routine: given a band index, it walks
// the band by repeated delta addition/subtraction, maintains a running
// maximum angular elevation, detects the open/close transitions of visible
// "ring sectors," and accumulates the band's visible-surface contribution
// into cumulativeSurfaces (spec.md §4.3).
//
// It is written as a single pure function over explicit buffer arguments
// with no dynamic dispatch, no growable containers and no recursion, so
// that the same logic can, in principle, be ported to a GPU compute shader
// without restructuring (spec.md §9's "dual CPU/GPU core").
func Kernel(
	kernelID uint32,
	constants *Constants,
	elevations []float32,
	distances []float32,
	deltas []int32,
	cumulativeSurfaces []float32,
	ringData []uint32,
) error {
	tvsID, direction, povID := KernelBandIdentity(kernelID, constants)

	povElevation := elevations[povID] + constants.ObserverHeight
	povDistance := distances[povID]

	ringDataStart := kernelID * constants.ReservedRingsPerBand
	reserved := int(constants.ReservedRingsPerBand)

	maxAngle := float32(sentinelMaxAngle)
	isCurrentlyVisible := true
	isPreviouslyVisible := true
	var bandSurface float32

	// ringID indexes into this band's slice of ringData; index 0 is
	// reserved for the final count, so the first write (the guaranteed
	// PoV opening) goes to index 1.
	ringID := 1
	if err := writeRing(ringData, ringDataStart, reserved, ringID, povID, kernelID); err != nil {
		return err
	}

	demID := povID
	closing := false

	for _, delta := range deltas {
		switch direction {
		case bandForward:
			demID = addDelta(demID, delta)
		case bandBackward:
			demID = subtractDelta(demID, delta)
		}

		elevationDelta := elevations[demID] - povElevation
		distanceDelta := abs32(distances[demID] - povDistance)
		if distanceDelta == 0 {
			return errors.Join(ErrNumericDegenerate, fmt.Errorf(
				"zero sight distance delta at dem id %d for kernel %d", demID, kernelID,
			))
		}

		angle := elevationDelta/distanceDelta - distanceDelta/earthRadiusSquared
		if isNaN32(angle) {
			return errors.Join(ErrNumericDegenerate, fmt.Errorf(
				"NaN angle computed at dem id %d for kernel %d", demID, kernelID,
			))
		}

		isCurrentlyVisible = angle > maxAngle
		opening := isCurrentlyVisible && !isPreviouslyVisible
		closing = isPreviouslyVisible && !isCurrentlyVisible

		if isCurrentlyVisible {
			bandSurface += distanceDelta * tanOneDegree
		}

		if opening || closing {
			ringID++
			if err := writeRing(ringData, ringDataStart, reserved, ringID, demID, kernelID); err != nil {
				return err
			}
		}

		isPreviouslyVisible = isCurrentlyVisible
		if angle > maxAngle {
			maxAngle = angle
		}
	}

	// Close any ring sector left open by a restricted line of sight.
	if isCurrentlyVisible && !closing {
		ringID++
		if err := writeRing(ringData, ringDataStart, reserved, ringID, demID, kernelID); err != nil {
			return err
		}
	}

	if err := writeRing(ringData, ringDataStart, reserved, 0, uint32(ringID), kernelID); err != nil {
		return err
	}

	cumulativeSurfaces[tvsID] += bandSurface

	return nil
}

// writeRing stores value at the given band-local offset within ringData,
// guarding against the buffer-overrun failure mode spec.md §7 requires
// ("message names the (sector, band)" — the sector is added by the caller).
func writeRing(ringData []uint32, ringDataStart uint32, reserved int, offset int, value uint32, kernelID uint32) error {
	if offset >= reserved {
		return errors.Join(ErrBufferOverrun, fmt.Errorf(
			"band %d: ring offset %d exceeds reserved_rings_per_band %d", kernelID, offset, reserved,
		))
	}
	ringData[int(ringDataStart)+offset] = value
	return nil
}

func addDelta(demID uint32, delta int32) uint32 {
	if delta >= 0 {
		return demID + uint32(delta)
	}
	return demID - uint32(-delta)
}

func subtractDelta(demID uint32, delta int32) uint32 {
	if delta >= 0 {
		return demID - uint32(delta)
	}
	return demID + uint32(-delta)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func isNaN32(f float32) bool {
	return f != f
}
