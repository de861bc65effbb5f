package stockham

import (
	"context"
	"fmt"
	"slices"
)

// LaunchKind distinguishes pass launches from the trailing transpose.
type LaunchKind uint8

const (
	LaunchPass LaunchKind = iota
	LaunchTranspose
)

// String returns a human-readable name for the launch kind.
func (k LaunchKind) String() string {
	switch k {
	case LaunchPass:
		return "pass"
	case LaunchTranspose:
		return "transpose"
	default:
		return "unknown"
	}
}

// Access locates the lines of one launch inside a buffer.
type Access struct {
	Role     BufferRole
	Layout   Layout
	Strides  []int
	Distance int
}

// Launch is the parameter set of one data-parallel launch. Launches run in
// slice order with a full barrier between consecutive launches.
type Launch struct {
	Seq       int
	Kind      LaunchKind
	Direction Direction

	// Pass is the zero value for transpose launches.
	Pass     Pass
	Twiddles *TwiddleTable

	Axis    int
	Lengths []int
	Batch   int

	WorkGroupSize      int
	TransformsPerGroup int
	GlobalSize         int

	// Scale multiplies every output of the launch.
	Scale float64

	Src Access
	Dst Access
}

// Lines returns the number of independent 1-D transforms along the launch
// axis, across the whole batch.
func (l Launch) Lines() int {
	return l.Batch * totalLength(l.Lengths) / l.Lengths[l.Axis]
}

// LineBase returns the offset of element 0 of line in a. Lines enumerate
// the batch outermost, then the other axes in ascending order.
func (l Launch) LineBase(a Access, line int) int {
	perBatch := totalLength(l.Lengths) / l.Lengths[l.Axis]
	base := (line / perBatch) * a.Distance
	rem := line % perBatch

	for d, n := range l.Lengths {
		if d == l.Axis {
			continue
		}

		base += (rem % n) * a.Strides[d]
		rem /= n
	}

	return base
}

// Buffer is a device buffer as seen by the planner.
type Buffer interface {
	Len() int
	Precision() Precision
}

// Queue is implemented by the accelerator runtime. Submit must not start a
// launch before every earlier launch has finished writing; Barrier blocks
// until all submitted launches have completed.
type Queue interface {
	Submit(ctx context.Context, l Launch, in, out []Buffer) error
	Barrier(ctx context.Context) error
}

// Launches returns the ordered launch list of the plan for dir.
func (e *ExecutionPlan) Launches(dir Direction) []Launch {
	spec := e.spec
	scratch := Access{
		Role:     RoleScratch,
		Layout:   LayoutComplexInterleaved,
		Strides:  packedStrides(spec.Lengths),
		Distance: totalLength(spec.Lengths),
	}

	input := Access{
		Role:     RoleInput,
		Layout:   spec.InputLayout,
		Strides:  spec.strides(SideInput),
		Distance: spec.distance(SideInput),
	}

	output := Access{
		Role:     RoleOutput,
		Layout:   spec.OutputLayout,
		Strides:  spec.strides(SideOutput),
		Distance: spec.distance(SideOutput),
	}

	// Before a transpose the output holds untransposed intermediates.
	staged := output
	if e.Transposed() {
		staged.Strides = slices.Clone(scratch.Strides)
		staged.Distance = scratch.Distance
	}

	if spec.Placement == PlacementInPlace {
		input = output
	}

	access := func(r BufferRole) Access {
		switch r {
		case RoleInput:
			return input
		case RoleScratch:
			return scratch
		default:
			return staged
		}
	}

	var launches []Launch

	total := e.PassCount()

	for _, a := range e.axes {
		for _, p := range a.passes {
			l := Launch{
				Seq:                len(launches),
				Kind:               LaunchPass,
				Direction:          dir,
				Pass:               p,
				Twiddles:           p.Twiddles(dir),
				Axis:               a.Axis,
				Lengths:            slices.Clone(spec.Lengths),
				Batch:              spec.BatchSize,
				WorkGroupSize:      a.WorkGroupSize,
				TransformsPerGroup: a.TransformsPerGroup,
				Scale:              1,
				Src:                access(p.Src),
				Dst:                access(p.Dst),
			}

			if len(launches) == total-1 {
				l.Scale = spec.Scale(dir)
			}

			groups := (l.Lines() + a.TransformsPerGroup - 1) / a.TransformsPerGroup
			l.GlobalSize = groups * a.WorkGroupSize

			launches = append(launches, l)
		}
	}

	if e.Transposed() {
		launches = append(launches, Launch{
			Seq:                len(launches),
			Kind:               LaunchTranspose,
			Direction:          dir,
			Lengths:            slices.Clone(spec.Lengths),
			Batch:              spec.BatchSize,
			WorkGroupSize:      e.envelope.MaxWorkGroupSize,
			TransformsPerGroup: 1,
			GlobalSize:         totalLength(spec.Lengths) * spec.BatchSize,
			Scale:              1,
			Src:                scratch,
			Dst:                output,
		})
	}

	return launches
}

// EnqueueTransform submits the baked plan's launches for dir to q, with a
// barrier between consecutive launches. For in-place plans out is ignored
// and in is used for both sides. The call returns once every launch is
// submitted; completion is observed through the runtime.
func (p *Plan) EnqueueTransform(ctx context.Context, q Queue, dir Direction, in, out []Buffer) error {
	p.mu.Lock()
	exec, state := p.exec, p.state
	p.mu.Unlock()

	if state != StateBaked {
		return fmt.Errorf("%w: enqueue on %v plan", ErrPlanState, state)
	}

	if q == nil {
		return fmt.Errorf("%w: nil queue", ErrArgument)
	}

	if !dir.Valid() {
		return fmt.Errorf("%w: direction %d", ErrArgument, dir)
	}

	spec := exec.spec
	if spec.Placement == PlacementInPlace {
		out = in
	}

	if err := checkBuffers(in, spec.InputLayout, spec.Precision); err != nil {
		return fmt.Errorf("input: %w", err)
	}

	if err := checkBuffers(out, spec.OutputLayout, spec.Precision); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	launches := exec.Launches(dir)
	for i, l := range launches {
		if err := ctx.Err(); err != nil {
			return err
		}

		if i > 0 {
			if err := q.Barrier(ctx); err != nil {
				return fmt.Errorf("barrier before launch %d: %w", l.Seq, err)
			}
		}

		if err := q.Submit(ctx, l, in, out); err != nil {
			return fmt.Errorf("launch %d: %w", l.Seq, err)
		}
	}

	p.logger().Debug("stockham: transform enqueued",
		"direction", dir.String(), "launches", len(launches))

	return nil
}

func checkBuffers(bufs []Buffer, layout Layout, prec Precision) error {
	if len(bufs) != layout.Buffers() {
		return fmt.Errorf("%w: %v layout needs %d buffers, got %d",
			ErrArgument, layout, layout.Buffers(), len(bufs))
	}

	for i, b := range bufs {
		if b == nil {
			return fmt.Errorf("%w: buffer %d is nil", ErrArgument, i)
		}

		if b.Precision() != prec {
			return fmt.Errorf("%w: buffer %d is %v, plan is %v", ErrArgument, i, b.Precision(), prec)
		}
	}

	return nil
}
