package stockham

import "github.com/cwbudde/algo-stockham/internal/fftypes"

// Sentinel errors returned by planning, baking and enqueueing.
// Match them with errors.Is; returned errors carry detail around them.
var (
	// ErrConfiguration is returned for a structurally invalid combination of
	// dimension, layout, placement or transpose request.
	ErrConfiguration = fftypes.ErrConfiguration

	// ErrUnsupportedLength is returned when a length has a prime factor
	// outside {2, 3, 5, 7}, or its decomposition needs more passes than
	// PlanOptions.MaxPasses.
	ErrUnsupportedLength = fftypes.ErrUnsupportedLength

	// ErrEnvelopeViolation is returned when a plan's per-workgroup working
	// set exceeds the device's on-chip memory or work-group ceiling.
	ErrEnvelopeViolation = fftypes.ErrEnvelopeViolation

	// ErrPlanState is returned for double Bake, setters after Bake,
	// Enqueue before Bake, and any use after Destroy.
	ErrPlanState = fftypes.ErrPlanState

	// ErrArgument is returned for zero, negative or missing required inputs.
	ErrArgument = fftypes.ErrArgument
)
