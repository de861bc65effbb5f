package stockham

import (
	"fmt"
	"math"
	"slices"
)

// Side selects the input or output side of a transform.
type Side uint8

const (
	SideInput Side = iota
	SideOutput
)

// String returns a human-readable name for the side.
func (s Side) String() string {
	switch s {
	case SideInput:
		return "input"
	case SideOutput:
		return "output"
	default:
		return "unknown"
	}
}

// TransformSpec is the full description of a transform. Zero strides and
// distances mean packed storage; they are resolved when the plan is baked.
type TransformSpec struct {
	Lengths   []int
	Precision Precision
	Placement Placement
	Transpose Transpose
	BatchSize int

	InputLayout  Layout
	OutputLayout Layout

	InputStrides   []int
	OutputStrides  []int
	InputDistance  int
	OutputDistance int

	ForwardScale  float64
	BackwardScale float64
}

// defaultSpec mirrors a freshly created default plan: single precision,
// in-place, interleaved complex on both sides, one transform, forward
// unscaled and backward scaled by 1/N.
func defaultSpec(lengths []int) TransformSpec {
	return TransformSpec{
		Lengths:       slices.Clone(lengths),
		Precision:     PrecisionSingle,
		Placement:     PlacementInPlace,
		Transpose:     TransposeNone,
		BatchSize:     1,
		InputLayout:   LayoutComplexInterleaved,
		OutputLayout:  LayoutComplexInterleaved,
		ForwardScale:  1,
		BackwardScale: 1 / float64(totalLength(lengths)),
	}
}

// Dimensions returns the number of axes.
func (s TransformSpec) Dimensions() int {
	return len(s.Lengths)
}

// Domain derives c2c, r2c or c2r from the layouts.
func (s TransformSpec) Domain() Domain {
	switch {
	case s.InputLayout == LayoutReal:
		return DomainRealToComplex
	case s.OutputLayout == LayoutReal:
		return DomainComplexToReal
	default:
		return DomainComplexToComplex
	}
}

// Scale returns the scale factor applied for dir.
func (s TransformSpec) Scale(dir Direction) float64 {
	if dir == DirectionBackward {
		return s.BackwardScale
	}

	return s.ForwardScale
}

// Layout returns the layout of one side.
func (s TransformSpec) Layout(side Side) Layout {
	if side == SideOutput {
		return s.OutputLayout
	}

	return s.InputLayout
}

// clone returns a deep copy.
func (s TransformSpec) clone() TransformSpec {
	s.Lengths = slices.Clone(s.Lengths)
	s.InputStrides = slices.Clone(s.InputStrides)
	s.OutputStrides = slices.Clone(s.OutputStrides)

	return s
}

// sideLengths returns the logical element counts per axis of one side:
// Hermitian sides keep N/2+1 elements along axis 0, and a transposed 2-D
// output swaps its axes.
func (s TransformSpec) sideLengths(side Side) []int {
	lengths := slices.Clone(s.Lengths)
	if s.Layout(side).IsHermitian() {
		lengths[0] = lengths[0]/2 + 1
	}

	if side == SideOutput && s.Transpose == TransposeTransposed {
		slices.Reverse(lengths)
	}

	return lengths
}

// sharedGeometry reports whether both sides address one buffer with the
// same geometry, so a setting made on either side applies to both.
func (s TransformSpec) sharedGeometry() bool {
	return s.Placement == PlacementInPlace && s.Domain() == DomainComplexToComplex
}

// explicitStrides returns the strides set for side. With a shared
// geometry an unset side takes the other side's setting.
func (s TransformSpec) explicitStrides(side Side) []int {
	own, other := s.InputStrides, s.OutputStrides
	if side == SideOutput {
		own, other = other, own
	}

	if own == nil && s.sharedGeometry() {
		return other
	}

	return own
}

func (s TransformSpec) explicitDistance(side Side) int {
	own, other := s.InputDistance, s.OutputDistance
	if side == SideOutput {
		own, other = other, own
	}

	if own == 0 && s.sharedGeometry() {
		return other
	}

	return own
}

// strides returns the explicit strides of one side, or packed strides.
func (s TransformSpec) strides(side Side) []int {
	if explicit := s.explicitStrides(side); explicit != nil {
		return slices.Clone(explicit)
	}

	return packedStrides(s.sideLengths(side))
}

// distance returns the explicit distance of one side, or one past the
// largest offset a single transform touches.
func (s TransformSpec) distance(side Side) int {
	if explicit := s.explicitDistance(side); explicit > 0 {
		return explicit
	}

	lengths := s.sideLengths(side)
	strides := s.strides(side)

	span := 1
	for d := range lengths {
		span += (lengths[d] - 1) * strides[d]
	}

	return span
}

// validate reports the first structural problem with s.
func (s TransformSpec) validate() error {
	dims := s.Dimensions()
	if dims < 1 || dims > MaxDimensions {
		return fmt.Errorf("%w: %d dimensions", ErrArgument, dims)
	}

	for d, n := range s.Lengths {
		if n < 1 {
			return fmt.Errorf("%w: length[%d] = %d", ErrArgument, d, n)
		}
	}

	if !s.Precision.Valid() {
		return fmt.Errorf("%w: precision %d", ErrArgument, s.Precision)
	}

	if s.BatchSize < 1 {
		return fmt.Errorf("%w: batch size %d", ErrArgument, s.BatchSize)
	}

	if err := validateLayouts(s.InputLayout, s.OutputLayout); err != nil {
		return err
	}

	if err := validateTranspose(dims, s.Transpose); err != nil {
		return err
	}

	if s.Transpose == TransposeTransposed {
		if s.Domain() != DomainComplexToComplex {
			return fmt.Errorf("%w: transposed %v result", ErrConfiguration, s.Domain())
		}

		if s.OutputStrides != nil || s.OutputDistance != 0 {
			return fmt.Errorf("%w: transposed result needs packed output storage", ErrConfiguration)
		}
	}

	for _, side := range []Side{SideInput, SideOutput} {
		if err := validateStrides(dims, s.strides(side)); err != nil {
			return err
		}
	}

	if s.Placement == PlacementInPlace {
		if err := s.validateInPlace(); err != nil {
			return err
		}
	}

	if !validScale(s.ForwardScale) || !validScale(s.BackwardScale) {
		return fmt.Errorf("%w: scale %v/%v", ErrArgument, s.ForwardScale, s.BackwardScale)
	}

	return nil
}

func (s TransformSpec) validateInPlace() error {
	switch s.Domain() {
	case DomainRealToComplex:
		if s.OutputLayout != LayoutHermitianInterleaved {
			return fmt.Errorf("%w: in-place r2c needs hermitian-interleaved output, got %v",
				ErrConfiguration, s.OutputLayout)
		}
	case DomainComplexToReal:
		if s.InputLayout != LayoutHermitianInterleaved {
			return fmt.Errorf("%w: in-place c2r needs hermitian-interleaved input, got %v",
				ErrConfiguration, s.InputLayout)
		}
	default:
		if s.InputLayout != s.OutputLayout {
			return fmt.Errorf("%w: in-place c2c with %v input and %v output",
				ErrConfiguration, s.InputLayout, s.OutputLayout)
		}

		if s.Transpose == TransposeTransposed {
			return fmt.Errorf("%w: in-place transposed result", ErrConfiguration)
		}

		if !slices.Equal(s.strides(SideInput), s.strides(SideOutput)) {
			return fmt.Errorf("%w: in-place c2c with different input and output strides", ErrConfiguration)
		}

		if s.distance(SideInput) != s.distance(SideOutput) {
			return fmt.Errorf("%w: in-place c2c with different input and output distances", ErrConfiguration)
		}
	}

	return nil
}

func validateLayouts(in, out Layout) error {
	if !in.Valid() || !out.Valid() {
		return fmt.Errorf("%w: layouts %d/%d", ErrArgument, in, out)
	}

	switch {
	case in == LayoutReal && out.IsHermitian():
	case in.IsHermitian() && out == LayoutReal:
	case in.IsComplex() && out.IsComplex():
	default:
		return fmt.Errorf("%w: %v input with %v output", ErrConfiguration, in, out)
	}

	return nil
}

func validateTranspose(dims int, t Transpose) error {
	switch t {
	case TransposeNone:
		return nil
	case TransposeTransposed:
		if dims != 2 {
			return fmt.Errorf("%w: transposed result on a %d-D transform", ErrConfiguration, dims)
		}

		return nil
	default:
		return fmt.Errorf("%w: transpose mode %d", ErrArgument, t)
	}
}

func validateStrides(dims int, strides []int) error {
	if len(strides) != dims {
		return fmt.Errorf("%w: %d strides for %d dimensions", ErrArgument, len(strides), dims)
	}

	for d, st := range strides {
		if st < 1 {
			return fmt.Errorf("%w: stride[%d] = %d", ErrArgument, d, st)
		}
	}

	return nil
}

func validScale(f float64) bool {
	return f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func packedStrides(lengths []int) []int {
	strides := make([]int, len(lengths))
	stride := 1

	for d, n := range lengths {
		strides[d] = stride
		stride *= n
	}

	return strides
}

func totalLength(lengths []int) int {
	total := 1
	for _, n := range lengths {
		total *= n
	}

	return total
}
