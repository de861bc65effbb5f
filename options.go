package stockham

import (
	"log/slog"

	"github.com/cwbudde/algo-stockham/internal/planner"
)

// DefaultMaxPasses is the default ceiling on passes per axis.
const DefaultMaxPasses = planner.DefaultMaxPasses

// Envelope describes the device a plan targets. It is supplied by the
// accelerator runtime and read-only to the planner.
type Envelope struct {
	// LocalMemBytes is the on-chip scratch memory available to one work group.
	LocalMemBytes int

	// MaxWorkGroupSize is the largest work group the device can launch.
	MaxWorkGroupSize int
}

// DefaultEnvelope is used when PlanOptions.Envelope is zero.
var DefaultEnvelope = Envelope{
	LocalMemBytes:    32 * 1024,
	MaxWorkGroupSize: 256,
}

// PlanOptions controls plan creation. Zero fields take defaults.
type PlanOptions struct {
	// Envelope describes the target device (default DefaultEnvelope).
	Envelope Envelope

	// MaxPasses bounds the number of passes per axis (default 12).
	MaxPasses int

	// MaxWorkGroupSize caps the work group chosen for lengths without a
	// curated record (default Envelope.MaxWorkGroupSize, or 256).
	MaxWorkGroupSize int

	// Wisdom, when set, pins and records decompositions of lengths without
	// a curated record.
	Wisdom *Wisdom

	// Logger overrides the package logger for this plan.
	Logger *slog.Logger
}

func (o PlanOptions) normalize() PlanOptions {
	if o.Envelope == (Envelope{}) {
		o.Envelope = DefaultEnvelope
	}

	if o.MaxPasses <= 0 {
		o.MaxPasses = DefaultMaxPasses
	}

	if o.MaxWorkGroupSize <= 0 {
		o.MaxWorkGroupSize = o.Envelope.MaxWorkGroupSize
	}

	if o.MaxWorkGroupSize <= 0 {
		o.MaxWorkGroupSize = planner.DefaultMaxWorkGroupSize
	}

	return o
}
