package gpu

import (
	"log/slog"

	stockham "github.com/cwbudde/algo-stockham"
)

// Complex is the element constraint of Executor.
type Complex = stockham.Complex

// DeviceInfo describes a device and the limits a plan is validated against.
type DeviceInfo struct {
	Name       string
	Vendor     string
	Driver     string
	MemoryMB   int
	ComputeCap string

	// LocalMemBytes is the on-chip memory of one work group.
	LocalMemBytes int
	// MaxWorkGroupSize is the largest launchable work group.
	MaxWorkGroupSize int
}

// Envelope returns the planner's view of the device.
func (d DeviceInfo) Envelope() stockham.Envelope {
	return stockham.Envelope{
		LocalMemBytes:    d.LocalMemBytes,
		MaxWorkGroupSize: d.MaxWorkGroupSize,
	}
}

// BackendInfo describes a backend implementation.
type BackendInfo struct {
	Name        string
	Version     string
	Description string
}

// Options controls Executor creation.
type Options struct {
	// DeviceIndex selects the device (0 = default).
	DeviceIndex int

	// BatchSize is the number of transforms per call (default 1).
	BatchSize int

	// Transposed requests a transposed result; 2-D only.
	Transposed bool

	// InPlace runs the plan in place on the input buffer.
	InPlace bool

	// MaxPasses is passed through to stockham.PlanOptions.
	MaxPasses int

	// Logger overrides the package logger for the executor and its plan.
	Logger *slog.Logger
}
