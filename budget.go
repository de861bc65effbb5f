package stockham

import "github.com/cwbudde/algo-stockham/internal/budget"

// GetMaxLength returns the largest power-of-two transform length whose
// elements fit in localMemBytes of on-chip memory, one element per lane.
// It fails with ErrArgument when either input is zero or negative. The
// bound has no double-buffering margin; halve the ceiling for headroom.
func GetMaxLength(localMemBytes, elementSize int) (int, error) {
	return budget.MaxLength(localMemBytes, elementSize)
}
