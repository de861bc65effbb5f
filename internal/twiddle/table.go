// Package twiddle generates and caches the per-radix butterfly coefficients.
package twiddle

import (
	"math"
	"slices"
	"sync/atomic"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
	m "github.com/cwbudde/algo-stockham/internal/math"
)

// Table holds the r-1 non-trivial roots of unity of one radix and direction:
// coefficient k (1 <= k < r) is exp(-2πi·k/r) forward and its conjugate
// backward. A Table is written once and shared by every plan that uses it.
type Table struct {
	radix     int
	direction fftypes.Direction
	coeffs    []complex128
	refs      atomic.Int64
}

func newTable(radix int, dir fftypes.Direction) *Table {
	coeffs := make([]complex128, radix-1)
	for k := 1; k < radix; k++ {
		angle := -m.TwoPi * float64(k) / float64(radix)
		sin, cos := math.Sincos(angle)

		if dir == fftypes.DirectionBackward {
			sin = -sin
		}

		coeffs[k-1] = complex(cos, sin)
	}

	return &Table{radix: radix, direction: dir, coeffs: coeffs}
}

// Radix returns the radix the table belongs to.
func (t *Table) Radix() int {
	return t.radix
}

// Direction returns the transform direction of the table.
func (t *Table) Direction() fftypes.Direction {
	return t.direction
}

// Len returns the number of coefficients, r-1.
func (t *Table) Len() int {
	return len(t.coeffs)
}

// At returns exp(∓2πi·k/r) for any integer k, reducing k modulo r.
// At(0) is 1.
func (t *Table) At(k int) complex128 {
	k %= t.radix
	if k < 0 {
		k += t.radix
	}

	if k == 0 {
		return 1
	}

	return t.coeffs[k-1]
}

// Coefficients returns a copy of the r-1 coefficients.
func (t *Table) Coefficients() []complex128 {
	return slices.Clone(t.coeffs)
}

// Complex64 returns the coefficients rounded to single precision.
func (t *Table) Complex64() []complex64 {
	out := make([]complex64, len(t.coeffs))
	for i, c := range t.coeffs {
		out[i] = complex64(c)
	}

	return out
}

// Refs returns the number of live plan references.
func (t *Table) Refs() int64 {
	return t.refs.Load()
}
