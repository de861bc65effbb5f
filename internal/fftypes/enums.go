package fftypes

// Precision selects the floating-point width of a transform.
type Precision uint8

const (
	PrecisionSingle Precision = iota // complex64 elements
	PrecisionDouble                  // complex128 elements
)

// String returns a human-readable name for the precision.
func (p Precision) String() string {
	switch p {
	case PrecisionSingle:
		return "single"
	case PrecisionDouble:
		return "double"
	default:
		return "unknown"
	}
}

// ElementSize returns the size in bytes of one complex element.
func (p Precision) ElementSize() int {
	switch p {
	case PrecisionSingle:
		return 8
	case PrecisionDouble:
		return 16
	default:
		return 0
	}
}

// Valid reports whether p is a known precision.
func (p Precision) Valid() bool {
	return p == PrecisionSingle || p == PrecisionDouble
}

// Direction selects the sign of the transform exponent.
type Direction uint8

const (
	DirectionForward  Direction = iota // exp(-2πi·k/n)
	DirectionBackward                  // exp(+2πi·k/n)
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	default:
		return "unknown"
	}
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionBackward
}

// Layout describes how elements of one side of a transform are stored.
type Layout uint8

const (
	LayoutComplexInterleaved Layout = iota
	LayoutComplexPlanar
	LayoutHermitianInterleaved
	LayoutHermitianPlanar
	LayoutReal
)

// String returns a human-readable name for the layout.
func (l Layout) String() string {
	switch l {
	case LayoutComplexInterleaved:
		return "complex-interleaved"
	case LayoutComplexPlanar:
		return "complex-planar"
	case LayoutHermitianInterleaved:
		return "hermitian-interleaved"
	case LayoutHermitianPlanar:
		return "hermitian-planar"
	case LayoutReal:
		return "real"
	default:
		return "unknown"
	}
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l <= LayoutReal
}

// IsComplex reports whether l holds full complex data.
func (l Layout) IsComplex() bool {
	return l == LayoutComplexInterleaved || l == LayoutComplexPlanar
}

// IsHermitian reports whether l holds the non-redundant half of a Hermitian spectrum.
func (l Layout) IsHermitian() bool {
	return l == LayoutHermitianInterleaved || l == LayoutHermitianPlanar
}

// IsPlanar reports whether real and imaginary parts live in separate buffers.
func (l Layout) IsPlanar() bool {
	return l == LayoutComplexPlanar || l == LayoutHermitianPlanar
}

// Buffers returns the number of buffers a side with this layout needs.
func (l Layout) Buffers() int {
	if l.IsPlanar() {
		return 2
	}

	return 1
}

// Domain classifies a transform by its input and output layouts.
type Domain uint8

const (
	DomainComplexToComplex Domain = iota
	DomainRealToComplex
	DomainComplexToReal
)

// String returns a human-readable name for the domain.
func (d Domain) String() string {
	switch d {
	case DomainComplexToComplex:
		return "c2c"
	case DomainRealToComplex:
		return "r2c"
	case DomainComplexToReal:
		return "c2r"
	default:
		return "unknown"
	}
}

// Placement selects whether the result overwrites the input buffers.
type Placement uint8

const (
	PlacementInPlace Placement = iota
	PlacementOutOfPlace
)

// String returns a human-readable name for the placement.
func (p Placement) String() string {
	switch p {
	case PlacementInPlace:
		return "in-place"
	case PlacementOutOfPlace:
		return "out-of-place"
	default:
		return "unknown"
	}
}

// Transpose selects whether a 2-D result is written transposed.
type Transpose uint8

const (
	TransposeNone Transpose = iota
	TransposeTransposed
)

// String returns a human-readable name for the transpose mode.
func (t Transpose) String() string {
	switch t {
	case TransposeNone:
		return "none"
	case TransposeTransposed:
		return "transposed"
	default:
		return "unknown"
	}
}
