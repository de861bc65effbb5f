package stockham

import (
	"github.com/cwbudde/algo-stockham/internal/fftypes"
	"github.com/cwbudde/algo-stockham/internal/schedule"
)

// Complex is a type constraint for the complex element types a plan runs on.
// The canonical definition is in internal/fftypes.
type Complex = fftypes.Complex

// Precision selects single (complex64) or double (complex128) elements.
type Precision = fftypes.Precision

const (
	PrecisionSingle = fftypes.PrecisionSingle
	PrecisionDouble = fftypes.PrecisionDouble
)

// Direction selects the sign of the transform exponent.
type Direction = fftypes.Direction

const (
	DirectionForward  = fftypes.DirectionForward
	DirectionBackward = fftypes.DirectionBackward
)

// Layout describes how one side of a transform is stored.
type Layout = fftypes.Layout

const (
	LayoutComplexInterleaved   = fftypes.LayoutComplexInterleaved
	LayoutComplexPlanar        = fftypes.LayoutComplexPlanar
	LayoutHermitianInterleaved = fftypes.LayoutHermitianInterleaved
	LayoutHermitianPlanar      = fftypes.LayoutHermitianPlanar
	LayoutReal                 = fftypes.LayoutReal
)

// Domain classifies a transform as c2c, r2c or c2r.
type Domain = fftypes.Domain

const (
	DomainComplexToComplex = fftypes.DomainComplexToComplex
	DomainRealToComplex    = fftypes.DomainRealToComplex
	DomainComplexToReal    = fftypes.DomainComplexToReal
)

// Placement selects in-place or out-of-place results.
type Placement = fftypes.Placement

const (
	PlacementInPlace    = fftypes.PlacementInPlace
	PlacementOutOfPlace = fftypes.PlacementOutOfPlace
)

// Transpose selects whether a 2-D result is written transposed.
type Transpose = fftypes.Transpose

const (
	TransposeNone       = fftypes.TransposeNone
	TransposeTransposed = fftypes.TransposeTransposed
)

// BufferRole names the buffer a launch reads from or writes to.
type BufferRole = schedule.Role

const (
	RoleInput   = schedule.RoleInput
	RoleOutput  = schedule.RoleOutput
	RoleScratch = schedule.RoleScratch
)

// MaxDimensions is the largest supported dimension count.
const MaxDimensions = 3
