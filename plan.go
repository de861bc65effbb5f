package stockham

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/cwbudde/algo-stockham/internal/budget"
	"github.com/cwbudde/algo-stockham/internal/planner"
	"github.com/cwbudde/algo-stockham/internal/schedule"
	"github.com/cwbudde/algo-stockham/internal/twiddle"
)

// State is the lifecycle state of a Plan.
type State uint8

const (
	StateCreated State = iota
	StateConfigured
	StateBaked
	StateDestroyed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConfigured:
		return "configured"
	case StateBaked:
		return "baked"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Plan is a handle to one transform. Setters are legal until Bake succeeds;
// afterwards the ExecutionPlan is frozen and every setter fails with
// ErrPlanState. A Plan is safe for concurrent use.
//
// The zero Plan is in StateCreated and can only be destroyed; use
// CreatePlan.
type Plan struct {
	mu      sync.Mutex
	state   State
	spec    TransformSpec
	opts    PlanOptions
	planner *planner.Planner
	tables  *twiddle.Cache
	exec    *ExecutionPlan
}

// CreatePlan returns a Configured plan for a dims-dimensional transform with
// default settings: single precision, in-place, interleaved complex data.
func CreatePlan(dims int, lengths []int, opts PlanOptions) (*Plan, error) {
	if dims < 1 || dims > MaxDimensions {
		return nil, fmt.Errorf("%w: %d dimensions", ErrArgument, dims)
	}

	if len(lengths) < dims {
		return nil, fmt.Errorf("%w: %d lengths for %d dimensions", ErrArgument, len(lengths), dims)
	}

	lengths = lengths[:dims]
	for d, n := range lengths {
		if n < 1 {
			return nil, fmt.Errorf("%w: length[%d] = %d", ErrArgument, d, n)
		}
	}

	opts = opts.normalize()

	p := &Plan{
		state: StateCreated,
		opts:  opts,
		planner: planner.New(planner.Options{
			MaxPasses:        opts.MaxPasses,
			MaxWorkGroupSize: opts.MaxWorkGroupSize,
			Wisdom:           opts.Wisdom,
		}),
		tables: twiddle.Default,
	}

	p.spec = defaultSpec(lengths)
	p.state = StateConfigured

	return p, nil
}

// State returns the lifecycle state.
func (p *Plan) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Spec returns a copy of the current TransformSpec.
func (p *Plan) Spec() TransformSpec {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.spec.clone()
}

// Lengths returns the per-axis lengths.
func (p *Plan) Lengths() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.spec.Lengths)
}

// Precision returns the configured precision.
func (p *Plan) Precision() Precision {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.spec.Precision
}

// Envelope returns the device envelope the plan validates against.
func (p *Plan) Envelope() Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.opts.Envelope
}

// ExecutionPlan returns the frozen plan, or nil before a successful Bake.
func (p *Plan) ExecutionPlan() *ExecutionPlan {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exec
}

// SetPrecision selects single or double precision.
func (p *Plan) SetPrecision(prec Precision) error {
	return p.configure(func(s *TransformSpec) error {
		if !prec.Valid() {
			return fmt.Errorf("%w: precision %d", ErrArgument, prec)
		}

		s.Precision = prec

		return nil
	})
}

// SetLayout sets the input and output layouts, which also fixes the domain.
func (p *Plan) SetLayout(in, out Layout) error {
	return p.configure(func(s *TransformSpec) error {
		if err := validateLayouts(in, out); err != nil {
			return err
		}

		s.InputLayout, s.OutputLayout = in, out

		return nil
	})
}

// SetResultLocation selects in-place or out-of-place results.
func (p *Plan) SetResultLocation(placement Placement) error {
	return p.configure(func(s *TransformSpec) error {
		if placement != PlacementInPlace && placement != PlacementOutOfPlace {
			return fmt.Errorf("%w: placement %d", ErrArgument, placement)
		}

		s.Placement = placement

		return nil
	})
}

// SetTransposeResult requests a transposed result; only 2-D plans accept it.
func (p *Plan) SetTransposeResult(t Transpose) error {
	return p.configure(func(s *TransformSpec) error {
		if err := validateTranspose(s.Dimensions(), t); err != nil {
			return err
		}

		s.Transpose = t

		return nil
	})
}

// SetStride sets one stride per axis for a side. A nil slice restores
// packed strides. In-place complex plans share one geometry: a side left
// unset takes the other side's strides.
func (p *Plan) SetStride(side Side, strides []int) error {
	return p.configure(func(s *TransformSpec) error {
		if strides != nil {
			if err := validateStrides(s.Dimensions(), strides); err != nil {
				return err
			}
		}

		switch side {
		case SideInput:
			s.InputStrides = slices.Clone(strides)
		case SideOutput:
			s.OutputStrides = slices.Clone(strides)
		default:
			return fmt.Errorf("%w: side %d", ErrArgument, side)
		}

		return nil
	})
}

// SetDistance sets the element distance between consecutive transforms of
// a batch. Zero restores the packed default, or for in-place complex
// plans the other side's distance.
func (p *Plan) SetDistance(in, out int) error {
	return p.configure(func(s *TransformSpec) error {
		if in < 0 || out < 0 {
			return fmt.Errorf("%w: distances %d/%d", ErrArgument, in, out)
		}

		s.InputDistance, s.OutputDistance = in, out

		return nil
	})
}

// SetScale sets the factor applied to the results of dir.
func (p *Plan) SetScale(dir Direction, factor float64) error {
	return p.configure(func(s *TransformSpec) error {
		if !validScale(factor) {
			return fmt.Errorf("%w: scale %v", ErrArgument, factor)
		}

		switch dir {
		case DirectionForward:
			s.ForwardScale = factor
		case DirectionBackward:
			s.BackwardScale = factor
		default:
			return fmt.Errorf("%w: direction %d", ErrArgument, dir)
		}

		return nil
	})
}

// SetBatchSize sets the number of transforms per enqueue.
func (p *Plan) SetBatchSize(n int) error {
	return p.configure(func(s *TransformSpec) error {
		if n < 1 {
			return fmt.Errorf("%w: batch size %d", ErrArgument, n)
		}

		s.BatchSize = n

		return nil
	})
}

// configure applies fn to a copy of the transform spec and commits it only when fn
// succeeds in StateConfigured.
func (p *Plan) configure(fn func(*TransformSpec) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateConfigured {
		return fmt.Errorf("%w: setter on %v plan", ErrPlanState, p.state)
	}

	next := p.spec.clone()
	if err := fn(&next); err != nil {
		return err
	}

	p.spec = next

	return nil
}

// Bake plans every axis, checks it against the envelope and freezes the
// ExecutionPlan. It is all-or-nothing: on failure the plan stays
// Configured and unchanged, so the caller may fix the transform spec and retry.
func (p *Plan) Bake() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateConfigured {
		return fmt.Errorf("%w: bake on %v plan", ErrPlanState, p.state)
	}

	exec, err := p.bake()
	if err != nil {
		p.logger().Debug("stockham: bake failed", "lengths", p.spec.Lengths, "error", err)
		return err
	}

	p.exec = exec
	p.state = StateBaked

	p.recordWisdom(exec)

	log := p.logger()
	for _, a := range exec.axes {
		log.Debug("stockham: axis baked",
			"axis", a.Axis,
			"length", a.Length,
			"radices", a.Radices,
			"workGroupSize", a.WorkGroupSize,
			"transformsPerGroup", a.TransformsPerGroup,
			"curated", a.Curated)
	}

	return nil
}

func (p *Plan) bake() (*ExecutionPlan, error) {
	spec := p.spec.clone()
	if err := spec.validate(); err != nil {
		return nil, err
	}

	limits := budget.Limits{
		LocalMemBytes:    p.opts.Envelope.LocalMemBytes,
		MaxWorkGroupSize: p.opts.Envelope.MaxWorkGroupSize,
	}

	axes := make([]AxisPlan, 0, spec.Dimensions())

	release := func() {
		for _, a := range axes {
			schedule.Release(schedulePasses(a.passes), p.tables)
		}
	}

	for d, n := range spec.Lengths {
		dec, err := p.planner.Plan(n, spec.Precision)
		if err != nil {
			release()
			return nil, fmt.Errorf("axis %d: %w", d, err)
		}

		err = budget.Check(limits, budget.Workload{
			Length:             n,
			WorkGroupSize:      dec.WorkGroupSize,
			TransformsPerGroup: dec.TransformsPerGroup,
			ElementSize:        spec.Precision.ElementSize(),
		})
		if err != nil {
			release()
			return nil, fmt.Errorf("axis %d: %w", d, err)
		}

		sp, err := schedule.Build(n, dec.Radices, p.tables)
		if err != nil {
			release()
			return nil, fmt.Errorf("axis %d: %w", d, err)
		}

		passes := make([]Pass, len(sp))
		for q := range sp {
			passes[q] = Pass{Pass: sp[q], Axis: d}
		}

		axes = append(axes, AxisPlan{
			Axis:               d,
			Length:             n,
			Radices:            dec.Radices,
			WorkGroupSize:      dec.WorkGroupSize,
			TransformsPerGroup: dec.TransformsPerGroup,
			Curated:            dec.Curated,
			passes:             passes,
		})
	}

	routeAxes(spec, axes)

	return &ExecutionPlan{
		spec:     spec,
		envelope: p.opts.Envelope,
		axes:     axes,
	}, nil
}

// recordWisdom stores the derived decompositions of a successful bake.
func (p *Plan) recordWisdom(exec *ExecutionPlan) {
	w := p.opts.Wisdom
	if w == nil {
		return
	}

	for _, a := range exec.axes {
		if a.Curated {
			continue
		}

		err := w.Record(exec.spec.Precision, planner.Decomposition{
			Length:             a.Length,
			Radices:            a.Radices,
			WorkGroupSize:      a.WorkGroupSize,
			TransformsPerGroup: a.TransformsPerGroup,
		})
		if err != nil {
			p.logger().Warn("stockham: wisdom not recorded", "length", a.Length, "error", err)
		}
	}
}

// Destroy releases the plan's state and its references to shared twiddle
// tables; the tables themselves stay cached. Destroying twice fails with
// ErrPlanState.
func (p *Plan) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateDestroyed {
		return fmt.Errorf("%w: plan already destroyed", ErrPlanState)
	}

	if p.exec != nil {
		for _, a := range p.exec.axes {
			schedule.Release(schedulePasses(a.passes), p.tables)
		}
	}

	p.exec = nil
	p.state = StateDestroyed

	return nil
}

// Clone returns a new Configured plan with the same TransformSpec and
// options. p must be Configured or Baked.
func (p *Plan) Clone() (*Plan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateCreated || p.state == StateDestroyed {
		return nil, fmt.Errorf("%w: clone of %v plan", ErrPlanState, p.state)
	}

	return &Plan{
		state:   StateConfigured,
		spec:    p.spec.clone(),
		opts:    p.opts,
		planner: p.planner,
		tables:  p.tables,
	}, nil
}

// MaxLength returns the longest power-of-two length that fits the plan's
// envelope at its current precision.
func (p *Plan) MaxLength() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return GetMaxLength(p.opts.Envelope.LocalMemBytes, p.spec.Precision.ElementSize())
}

func (p *Plan) logger() *slog.Logger {
	if p.opts.Logger != nil {
		return p.opts.Logger
	}

	return slogger()
}

func schedulePasses(passes []Pass) []schedule.Pass {
	out := make([]schedule.Pass, len(passes))
	for i, p := range passes {
		out[i] = p.Pass
	}

	return out
}
