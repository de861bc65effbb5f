// Package schedule expands a radix sequence into Stockham autosort passes.
//
// For pass q with radix r, LS is the product of the radices before q,
// L = LS·r and R = N/L. Butterfly (k, j) with k < R and j < LS gathers
//
//	in[(k + i·R)·LS + j]   for i = 0..r-1
//
// and scatters its outputs to
//
//	out[k·L + j + i·LS]    for i = 0..r-1
//
// so every pass leaves its output in natural order and the last pass, whose
// L equals N, needs no digit reversal.
package schedule

import (
	"fmt"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
	m "github.com/cwbudde/algo-stockham/internal/math"
	"github.com/cwbudde/algo-stockham/internal/twiddle"
)

// Pass is one parallel sweep of a single radix over the whole buffer.
type Pass struct {
	Index  int
	Radix  int
	Length int // full transform length N
	LS     int // product of the radices of the earlier passes
	R      int // independent outer groups, N / L
	L      int // output span, LS·Radix

	forward  *twiddle.Table
	backward *twiddle.Table
}

// ReadIndex returns the offset butterfly (k, j) reads its i-th input from.
func (p Pass) ReadIndex(k, j, i int) int {
	return (k+i*p.R)*p.LS + j
}

// WriteIndex returns the offset butterfly (k, j) writes its i-th output to.
func (p Pass) WriteIndex(k, j, i int) int {
	return k*p.L + j + i*p.LS
}

// Butterflies returns the number of radix-r butterflies in the pass.
func (p Pass) Butterflies() int {
	return p.R * p.LS
}

// Twiddles returns the shared twiddle table of the pass for dir, or nil when
// the pass was built without a table source.
func (p Pass) Twiddles(dir fftypes.Direction) *twiddle.Table {
	if dir == fftypes.DirectionBackward {
		return p.backward
	}

	return p.forward
}

// TableSource hands out shared twiddle tables. *twiddle.Cache implements it.
type TableSource interface {
	Acquire(radix int, dir fftypes.Direction) (*twiddle.Table, error)
	Release(t *twiddle.Table)
}

// Build returns the passes for length split into radices. When src is not
// nil each pass acquires its forward and backward tables from it; on error
// every table acquired so far is released again.
func Build(length int, radices []int, src TableSource) ([]Pass, error) {
	if len(radices) == 0 {
		return nil, fmt.Errorf("%w: empty radix sequence", fftypes.ErrArgument)
	}

	if p := m.Product(radices); p != length {
		return nil, fmt.Errorf("%w: radices %v multiply to %d, want %d",
			fftypes.ErrArgument, radices, p, length)
	}

	passes := make([]Pass, 0, len(radices))
	ls := 1

	for q, r := range radices {
		if r < 2 {
			Release(passes, src)
			return nil, fmt.Errorf("%w: radix %d at pass %d", fftypes.ErrArgument, r, q)
		}

		pass := Pass{
			Index:  q,
			Radix:  r,
			Length: length,
			LS:     ls,
			L:      ls * r,
			R:      length / (ls * r),
		}

		if src != nil {
			var err error

			pass.forward, err = src.Acquire(r, fftypes.DirectionForward)
			if err != nil {
				Release(passes, src)
				return nil, err
			}

			pass.backward, err = src.Acquire(r, fftypes.DirectionBackward)
			if err != nil {
				src.Release(pass.forward)
				Release(passes, src)

				return nil, err
			}
		}

		passes = append(passes, pass)
		ls *= r
	}

	return passes, nil
}

// Release returns the tables held by passes to src.
func Release(passes []Pass, src TableSource) {
	if src == nil {
		return
	}

	for _, p := range passes {
		if p.forward != nil {
			src.Release(p.forward)
		}

		if p.backward != nil {
			src.Release(p.backward)
		}
	}
}
