// Package planner resolves a transform length to a radix decomposition and
// the work-group geometry that runs it.
package planner

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
	"github.com/cwbudde/algo-stockham/internal/radixspec"
)

// DefaultMaxPasses is the default ceiling on the number of passes.
const DefaultMaxPasses = radixspec.MaxPasses

// DefaultMaxWorkGroupSize caps the work-group size of derived geometry.
const DefaultMaxWorkGroupSize = 256

// baseWorkGroupSize is the smallest work group derived geometry packs
// transforms into.
const baseWorkGroupSize = 64

// Radices lists the supported radices in the order factorization tries them.
var Radices = []int{8, 5, 4, 3, 2, 7}

// Decomposition is the planner's answer for one length.
type Decomposition struct {
	Length             int
	Radices            []int
	WorkGroupSize      int
	TransformsPerGroup int
	// Curated is true when the decomposition came from the radix table.
	Curated bool
}

// Passes returns the number of passes.
func (d Decomposition) Passes() int {
	return len(d.Radices)
}

// Options configures a Planner. Zero fields take defaults.
type Options struct {
	MaxPasses        int
	MaxWorkGroupSize int

	// Wisdom, when set, is consulted for lengths without a curated record.
	// The planner only reads it; callers record accepted decompositions.
	Wisdom *Wisdom
}

// Planner is safe for concurrent use. It never writes to its Wisdom.
type Planner struct {
	maxPasses        int
	maxWorkGroupSize int
	wisdom           *Wisdom
}

// New returns a Planner with normalised options.
func New(opts Options) *Planner {
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultMaxPasses
	}

	if opts.MaxWorkGroupSize <= 0 {
		opts.MaxWorkGroupSize = DefaultMaxWorkGroupSize
	}

	return &Planner{
		maxPasses:        opts.MaxPasses,
		maxWorkGroupSize: opts.MaxWorkGroupSize,
		wisdom:           opts.Wisdom,
	}
}

// MaxPasses returns the configured pass ceiling.
func (p *Planner) MaxPasses() int {
	return p.maxPasses
}

// Plan returns the decomposition for length at precision: the curated
// record when one matches exactly, otherwise a greedy factorization.
func (p *Planner) Plan(length int, prec fftypes.Precision) (Decomposition, error) {
	if length < 1 {
		return Decomposition{}, fmt.Errorf("%w: length %d", fftypes.ErrArgument, length)
	}

	if !prec.Valid() {
		return Decomposition{}, fmt.Errorf("%w: precision %d", fftypes.ErrArgument, prec)
	}

	if rec, ok := radixspec.Lookup(length, prec); ok {
		if rec.Passes() > p.maxPasses {
			return Decomposition{}, fmt.Errorf("%w: length %d needs %d passes, limit %d",
				fftypes.ErrUnsupportedLength, length, rec.Passes(), p.maxPasses)
		}

		return Decomposition{
			Length:             length,
			Radices:            rec.Radices,
			WorkGroupSize:      rec.WorkGroupSize,
			TransformsPerGroup: rec.TransformsPerGroup,
			Curated:            true,
		}, nil
	}

	if p.wisdom != nil {
		if d, ok := p.wisdom.Lookup(length, prec); ok {
			if d.Passes() > p.maxPasses {
				return Decomposition{}, fmt.Errorf("%w: length %d needs %d passes, limit %d",
					fftypes.ErrUnsupportedLength, length, d.Passes(), p.maxPasses)
			}

			return d, nil
		}
	}

	radices, err := Factorize(length)
	if err != nil {
		return Decomposition{}, err
	}

	if len(radices) > p.maxPasses {
		return Decomposition{}, fmt.Errorf("%w: length %d needs %d passes, limit %d",
			fftypes.ErrUnsupportedLength, length, len(radices), p.maxPasses)
	}

	wgs, tpg := p.geometry(length, radices)

	return Decomposition{
		Length:             length,
		Radices:            radices,
		WorkGroupSize:      wgs,
		TransformsPerGroup: tpg,
	}, nil
}

// Factorize splits length into supported radices by greedy trial division,
// trying the radices in Radices order. Length 1 has no passes and is
// rejected.
func Factorize(length int) ([]int, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: length %d", fftypes.ErrArgument, length)
	}

	if length == 1 {
		return nil, fmt.Errorf("%w: length 1 has no passes", fftypes.ErrUnsupportedLength)
	}

	var radices []int

	n := length
	for n > 1 {
		r := firstDivisor(n)
		if r == 0 {
			return nil, fmt.Errorf("%w: length %d has unsupported factor %d",
				fftypes.ErrUnsupportedLength, length, smallestPrimeFactor(n))
		}

		radices = append(radices, r)
		n /= r
	}

	return radices, nil
}

// Supported reports whether r is a supported radix.
func Supported(r int) bool {
	return slices.Contains(Radices, r)
}

func firstDivisor(n int) int {
	for _, r := range Radices {
		if n%r == 0 {
			return r
		}
	}

	return 0
}

func smallestPrimeFactor(n int) int {
	for f := 2; f*f <= n; f++ {
		if n%f == 0 {
			return f
		}
	}

	return n
}

// geometry derives a work group for lengths without a curated record: one
// lane per butterfly of the largest radix, capped at the work-group ceiling,
// with short transforms packed together up to baseWorkGroupSize lanes.
func (p *Planner) geometry(length int, radices []int) (workGroupSize, transformsPerGroup int) {
	base := min(baseWorkGroupSize, p.maxWorkGroupSize)
	lanes := max(length/slices.Max(radices), 1)

	if lanes >= base {
		return min(lanes, p.maxWorkGroupSize), 1
	}

	transformsPerGroup = base / lanes

	return lanes * transformsPerGroup, transformsPerGroup
}
