package stockham

import (
	"slices"

	"github.com/cwbudde/algo-stockham/internal/schedule"
	"github.com/cwbudde/algo-stockham/internal/twiddle"
)

// TwiddleTable is a shared, write-once table of the r-1 non-trivial roots
// of unity of one radix and direction.
type TwiddleTable = twiddle.Table

// Pass is one Stockham pass of one axis, with the buffers it reads and
// writes. Its stride triple (LS, R, L), index rules and twiddle tables come
// from the embedded schedule pass.
type Pass struct {
	schedule.Pass

	Axis int
	Src  BufferRole
	Dst  BufferRole
}

// Aliased reports whether the pass reads and writes the same buffer. The
// runtime must stage such a pass through on-chip memory.
func (p Pass) Aliased() bool {
	return p.Src == p.Dst
}

// AxisPlan is the schedule and geometry of one axis.
type AxisPlan struct {
	Axis               int
	Length             int
	Radices            []int
	WorkGroupSize      int
	TransformsPerGroup int
	// Curated is true when the radices came from the tuned table.
	Curated bool

	passes []Pass
}

// Passes returns a copy of the axis passes in launch order.
func (a AxisPlan) Passes() []Pass {
	return slices.Clone(a.passes)
}

// PassCount returns the number of passes of the axis.
func (a AxisPlan) PassCount() int {
	return len(a.passes)
}

// WorkingSet returns the on-chip bytes one work group of this axis uses.
func (a AxisPlan) WorkingSet(p Precision) int {
	return a.Length * a.TransformsPerGroup * p.ElementSize()
}

func (a AxisPlan) clone() AxisPlan {
	a.Radices = slices.Clone(a.Radices)
	a.passes = slices.Clone(a.passes)

	return a
}

// ExecutionPlan is the frozen result of baking. It never changes and may be
// shared by any number of concurrent submissions.
type ExecutionPlan struct {
	spec     TransformSpec
	envelope Envelope
	axes     []AxisPlan
}

// Spec returns a copy of the TransformSpec the plan was baked from.
func (e *ExecutionPlan) Spec() TransformSpec {
	return e.spec.clone()
}

// Envelope returns the device envelope the plan was validated against.
func (e *ExecutionPlan) Envelope() Envelope {
	return e.envelope
}

// Axes returns copies of the per-axis plans.
func (e *ExecutionPlan) Axes() []AxisPlan {
	axes := make([]AxisPlan, len(e.axes))
	for i, a := range e.axes {
		axes[i] = a.clone()
	}

	return axes
}

// Axis returns a copy of the plan of axis d.
func (e *ExecutionPlan) Axis(d int) AxisPlan {
	return e.axes[d].clone()
}

// Passes returns every pass of every axis in launch order.
func (e *ExecutionPlan) Passes() []Pass {
	var passes []Pass
	for _, a := range e.axes {
		passes = append(passes, a.passes...)
	}

	return passes
}

// PassCount returns the total number of passes.
func (e *ExecutionPlan) PassCount() int {
	n := 0
	for _, a := range e.axes {
		n += len(a.passes)
	}

	return n
}

// Transposed reports whether a transpose launch follows the passes.
func (e *ExecutionPlan) Transposed() bool {
	return e.spec.Transpose == TransposeTransposed
}

// ScratchElements returns the number of elements the runtime must provide
// for the scratch buffer, or 0 when no launch touches it.
func (e *ExecutionPlan) ScratchElements() int {
	for _, p := range e.Passes() {
		if p.Src == RoleScratch || p.Dst == RoleScratch {
			return totalLength(e.spec.Lengths) * e.spec.BatchSize
		}
	}

	return 0
}

// routeAxes assigns buffer roles to the passes of every axis: axis 0 starts
// from the input (or the output when in place), later axes continue from
// the output, and the last axis ends in scratch when a transpose follows.
func routeAxes(spec TransformSpec, axes []AxisPlan) {
	src := RoleInput
	if spec.Placement == PlacementInPlace {
		src = RoleOutput
	}

	for d := range axes {
		final := RoleOutput
		if d == len(axes)-1 && spec.Transpose == TransposeTransposed {
			final = RoleScratch
		}

		hops := schedule.Route(len(axes[d].passes), src, final)
		for q := range axes[d].passes {
			axes[d].passes[q].Src = hops[q].Src
			axes[d].passes[q].Dst = hops[q].Dst
		}

		src = final
	}
}

// Summary is a serialisable view of an ExecutionPlan.
type Summary struct {
	Lengths   []int         `json:"lengths"`
	Precision string        `json:"precision"`
	Domain    string        `json:"domain"`
	Placement string        `json:"placement"`
	Batch     int           `json:"batch"`
	Transpose bool          `json:"transposed"`
	Axes      []AxisSummary `json:"axes"`
}

// AxisSummary is a serialisable view of an AxisPlan.
type AxisSummary struct {
	Axis               int           `json:"axis"`
	Length             int           `json:"length"`
	Radices            []int         `json:"radices"`
	WorkGroupSize      int           `json:"workGroupSize"`
	TransformsPerGroup int           `json:"transformsPerGroup"`
	WorkingSetBytes    int           `json:"workingSetBytes"`
	Curated            bool          `json:"curated"`
	Passes             []PassSummary `json:"passes"`
}

// PassSummary is a serialisable view of a Pass.
type PassSummary struct {
	Index int    `json:"index"`
	Radix int    `json:"radix"`
	LS    int    `json:"ls"`
	R     int    `json:"r"`
	L     int    `json:"l"`
	Src   string `json:"src"`
	Dst   string `json:"dst"`
}

// Summary returns a serialisable view of the plan.
func (e *ExecutionPlan) Summary() Summary {
	s := Summary{
		Lengths:   slices.Clone(e.spec.Lengths),
		Precision: e.spec.Precision.String(),
		Domain:    e.spec.Domain().String(),
		Placement: e.spec.Placement.String(),
		Batch:     e.spec.BatchSize,
		Transpose: e.Transposed(),
	}

	for _, a := range e.axes {
		as := AxisSummary{
			Axis:               a.Axis,
			Length:             a.Length,
			Radices:            slices.Clone(a.Radices),
			WorkGroupSize:      a.WorkGroupSize,
			TransformsPerGroup: a.TransformsPerGroup,
			WorkingSetBytes:    a.WorkingSet(e.spec.Precision),
			Curated:            a.Curated,
		}

		for _, p := range a.passes {
			as.Passes = append(as.Passes, PassSummary{
				Index: p.Index,
				Radix: p.Radix,
				LS:    p.LS,
				R:     p.R,
				L:     p.L,
				Src:   p.Src.String(),
				Dst:   p.Dst.String(),
			})
		}

		s.Axes = append(s.Axes, as)
	}

	return s
}
