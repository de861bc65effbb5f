package fftypes

import "errors"

// Sentinel errors shared by the planning packages. The root package
// re-exports them so callers never import internal packages.
var (
	// ErrConfiguration is returned for structurally invalid combinations of
	// dimension, layout, placement or transpose request.
	ErrConfiguration = errors.New("stockham: invalid configuration")

	// ErrUnsupportedLength is returned when a length has a prime factor
	// outside the supported radix set, or its decomposition needs more
	// passes than allowed.
	ErrUnsupportedLength = errors.New("stockham: unsupported length")

	// ErrEnvelopeViolation is returned when a plan's per-workgroup working
	// set does not fit the device envelope.
	ErrEnvelopeViolation = errors.New("stockham: envelope violation")

	// ErrPlanState is returned when an operation is invoked in a lifecycle
	// state that forbids it.
	ErrPlanState = errors.New("stockham: invalid plan state")

	// ErrArgument is returned for zero, negative or missing required inputs.
	ErrArgument = errors.New("stockham: invalid argument")
)
