package gpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"unsafe"

	stockham "github.com/cwbudde/algo-stockham"
)

// Executor runs a baked stockham plan for one fixed shape on a device.
//
// The executor owns its context, stream, plan and device buffers. Calls are
// serialized; use one executor per goroutine for parallel work.
type Executor[T Complex] struct {
	mu        sync.Mutex
	lengths   []int
	precision stockham.Precision
	opts      Options
	ctx       Context
	stream    Stream
	plan      *stockham.Plan
	in, out   Buffer
	inLen     int
	outLen    int
}

// NewExecutor bakes a c2c plan for lengths against the envelope of the
// selected device of the registered backend, and allocates its buffers.
func NewExecutor[T Complex](lengths []int, opts Options) (*Executor[T], error) {
	return NewExecutorWithBackend[T](getBackend(), lengths, opts)
}

// NewExecutorWithBackend is NewExecutor on an explicit backend instead of
// the registered one.
func NewExecutorWithBackend[T Complex](b Backend, lengths []int, opts Options) (*Executor[T], error) {
	if len(lengths) == 0 {
		return nil, fmt.Errorf("%w: no lengths", stockham.ErrArgument)
	}

	dev, err := deviceInfo(b, opts.DeviceIndex)
	if err != nil {
		return nil, err
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}

	e := &Executor[T]{
		lengths:   slices.Clone(lengths),
		precision: precisionOf[T](),
		opts:      opts,
	}

	plan, err := e.bake(dev)
	if err != nil {
		return nil, err
	}

	e.plan = plan

	if err := e.open(b); err != nil {
		_ = e.Close()
		return nil, err
	}

	e.logger().Debug("stockham/gpu: executor ready",
		"device", dev.Name, "lengths", lengths, "precision", e.precision.String(),
		"passes", plan.ExecutionPlan().PassCount())

	return e, nil
}

func (e *Executor[T]) bake(dev DeviceInfo) (*stockham.Plan, error) {
	plan, err := stockham.CreatePlan(len(e.lengths), e.lengths, stockham.PlanOptions{
		Envelope:  dev.Envelope(),
		MaxPasses: e.opts.MaxPasses,
		Logger:    e.opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	placement := stockham.PlacementOutOfPlace
	if e.opts.InPlace {
		placement = stockham.PlacementInPlace
	}

	transpose := stockham.TransposeNone
	if e.opts.Transposed {
		transpose = stockham.TransposeTransposed
	}

	err = errors.Join(
		plan.SetPrecision(e.precision),
		plan.SetResultLocation(placement),
		plan.SetBatchSize(e.opts.BatchSize),
	)
	if err == nil && transpose != stockham.TransposeNone {
		err = plan.SetTransposeResult(transpose)
	}

	if err == nil {
		err = plan.Bake()
	}

	if err != nil {
		_ = plan.Destroy()
		return nil, err
	}

	return plan, nil
}

func (e *Executor[T]) open(b Backend) error {
	var err error

	e.ctx, err = b.NewContext(e.opts.DeviceIndex)
	if err != nil {
		return err
	}

	e.stream, err = e.ctx.NewStream()
	if err != nil {
		return err
	}

	spec := e.plan.Spec()
	e.inLen = e.opts.BatchSize * product(e.lengths)
	e.outLen = e.inLen

	e.in, err = e.ctx.NewBuffer(e.inLen, e.precision)
	if err != nil {
		return err
	}

	if spec.Placement == stockham.PlacementInPlace {
		e.out = e.in
		return nil
	}

	e.out, err = e.ctx.NewBuffer(e.outLen, e.precision)

	return err
}

// Lengths returns the transform shape.
func (e *Executor[T]) Lengths() []int {
	return slices.Clone(e.lengths)
}

// Plan returns the baked plan the executor runs.
func (e *Executor[T]) Plan() *stockham.Plan {
	return e.plan
}

// Forward computes the forward transform of src into dst. Both hold
// BatchSize packed transforms; a transposed executor writes dst transposed.
func (e *Executor[T]) Forward(dst, src []T) error {
	return e.run(context.Background(), stockham.DirectionForward, dst, src)
}

// Inverse computes the backward transform, scaled by 1/N.
func (e *Executor[T]) Inverse(dst, src []T) error {
	return e.run(context.Background(), stockham.DirectionBackward, dst, src)
}

// Transform runs dir under ctx.
func (e *Executor[T]) Transform(ctx context.Context, dir stockham.Direction, dst, src []T) error {
	return e.run(ctx, dir, dst, src)
}

func (e *Executor[T]) run(ctx context.Context, dir stockham.Direction, dst, src []T) error {
	if dst == nil || src == nil {
		return ErrNilSlice
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.plan == nil {
		return ErrClosed
	}

	if len(src) < e.inLen || len(dst) < e.outLen {
		return fmt.Errorf("%w: need %d elements, got src %d dst %d",
			ErrLengthMismatch, e.inLen, len(src), len(dst))
	}

	if err := e.in.Upload(toHost(src[:e.inLen], e.precision)); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	in := []stockham.Buffer{e.in}
	out := []stockham.Buffer{e.out}

	if err := e.plan.EnqueueTransform(ctx, e.stream, dir, in, out); err != nil {
		return err
	}

	if err := e.stream.Synchronize(); err != nil {
		return err
	}

	var host any = make([]complex64, e.outLen)
	if e.precision == stockham.PrecisionDouble {
		host = make([]complex128, e.outLen)
	}

	if err := e.out.Download(host); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	fromHost(dst, host)

	return nil
}

// Close releases the plan, buffers, stream and context.
func (e *Executor[T]) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error

	if e.plan != nil {
		errs = append(errs, e.plan.Destroy())
		e.plan = nil
	}

	if e.out != nil && e.out != e.in {
		errs = append(errs, e.out.Close())
	}

	if e.in != nil {
		errs = append(errs, e.in.Close())
	}

	e.in, e.out = nil, nil

	if e.stream != nil {
		errs = append(errs, e.stream.Close())
		e.stream = nil
	}

	if e.ctx != nil {
		errs = append(errs, e.ctx.Close())
		e.ctx = nil
	}

	return errors.Join(errs...)
}

func (e *Executor[T]) logger() *slog.Logger {
	if e.opts.Logger != nil {
		return e.opts.Logger
	}

	return slogger()
}

func precisionOf[T Complex]() stockham.Precision {
	var zero T
	if unsafe.Sizeof(zero) == 16 {
		return stockham.PrecisionDouble
	}

	return stockham.PrecisionSingle
}

// toHost converts xs to the slice type buffers of precision p accept.
func toHost[T Complex](xs []T, p stockham.Precision) any {
	if p == stockham.PrecisionDouble {
		out := make([]complex128, len(xs))
		for i, v := range xs {
			out[i] = complex128(v)
		}

		return out
	}

	out := make([]complex64, len(xs))
	for i, v := range xs {
		out[i] = complex64(v)
	}

	return out
}

func fromHost[T Complex](dst []T, host any) {
	switch h := host.(type) {
	case []complex64:
		for i, v := range h {
			dst[i] = T(v)
		}
	case []complex128:
		for i, v := range h {
			dst[i] = T(v)
		}
	}
}
