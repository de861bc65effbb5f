// Package budget bounds transform lengths by a device's on-chip memory.
package budget

import (
	"fmt"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
	m "github.com/cwbudde/algo-stockham/internal/math"
)

// MaxLength returns the largest power-of-two length whose elements fit in
// localMemBytes at one element per lane. There is no double-buffering
// margin; callers that need headroom halve the ceiling first.
func MaxLength(localMemBytes, elementSize int) (int, error) {
	if localMemBytes <= 0 {
		return 0, fmt.Errorf("%w: local memory ceiling %d", fftypes.ErrArgument, localMemBytes)
	}

	if elementSize <= 0 {
		return 0, fmt.Errorf("%w: element size %d", fftypes.ErrArgument, elementSize)
	}

	return m.FloorPowerOf2(localMemBytes / elementSize), nil
}

// Limits is the part of a device envelope the working-set check needs.
type Limits struct {
	LocalMemBytes    int
	MaxWorkGroupSize int
}

// Workload is the on-chip footprint of one axis of a plan.
type Workload struct {
	Length             int
	WorkGroupSize      int
	TransformsPerGroup int
	ElementSize        int
}

// WorkingSet returns the bytes of on-chip memory one work group touches.
func (w Workload) WorkingSet() int {
	return w.Length * w.TransformsPerGroup * w.ElementSize
}

// Check reports ErrEnvelopeViolation when w does not fit lim.
func Check(lim Limits, w Workload) error {
	maxLen, err := MaxLength(lim.LocalMemBytes, w.ElementSize)
	if err != nil {
		return err
	}

	if w.Length > maxLen {
		return fmt.Errorf("%w: length %d exceeds on-chip maximum %d",
			fftypes.ErrEnvelopeViolation, w.Length, maxLen)
	}

	if ws := w.WorkingSet(); ws > lim.LocalMemBytes {
		return fmt.Errorf("%w: working set %d bytes exceeds %d",
			fftypes.ErrEnvelopeViolation, ws, lim.LocalMemBytes)
	}

	if lim.MaxWorkGroupSize > 0 && w.WorkGroupSize > lim.MaxWorkGroupSize {
		return fmt.Errorf("%w: work group size %d exceeds %d",
			fftypes.ErrEnvelopeViolation, w.WorkGroupSize, lim.MaxWorkGroupSize)
	}

	return nil
}
