package gpu

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/tphakala/simd/c128"

	stockham "github.com/cwbudde/algo-stockham"
)

// MockBackend is a CPU-backed backend for development and tests. Launches
// execute synchronously on Submit.
type MockBackend struct {
	device DeviceInfo
}

// NewMockBackend returns a mock backend with a single device advertising
// the default envelope.
func NewMockBackend() *MockBackend {
	return NewMockBackendWithEnvelope(stockham.DefaultEnvelope)
}

// NewMockBackendWithEnvelope returns a mock backend whose device reports env.
func NewMockBackendWithEnvelope(env stockham.Envelope) *MockBackend {
	return &MockBackend{
		device: DeviceInfo{
			Name:             "MockGPU",
			Vendor:           "stockham",
			Driver:           "mock",
			ComputeCap:       hostComputeCap(),
			LocalMemBytes:    env.LocalMemBytes,
			MaxWorkGroupSize: env.MaxWorkGroupSize,
		},
	}
}

func (b *MockBackend) Info() BackendInfo {
	return BackendInfo{
		Name:        "mock",
		Version:     "0.2",
		Description: "CPU-backed mock accelerator",
	}
}

func (b *MockBackend) Available() bool {
	return true
}

func (b *MockBackend) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{b.device}, nil
}

func (b *MockBackend) NewContext(deviceIndex int) (Context, error) {
	if deviceIndex != 0 {
		return nil, fmt.Errorf("%w: mock backend has no device %d", ErrInvalidDevice, deviceIndex)
	}

	return &mockContext{device: b.device}, nil
}

// RegisterMockBackend registers a default mock backend as the active backend.
func RegisterMockBackend() {
	RegisterBackend(NewMockBackend())
}

type mockContext struct {
	device DeviceInfo
}

func (c *mockContext) Device() DeviceInfo {
	return c.device
}

func (c *mockContext) NewBuffer(elemCount int, precision stockham.Precision) (Buffer, error) {
	if elemCount < 0 {
		return nil, fmt.Errorf("%w: %d elements", ErrLengthMismatch, elemCount)
	}

	if !precision.Valid() {
		return nil, fmt.Errorf("%w: precision %d", stockham.ErrArgument, precision)
	}

	return &mockBuffer{
		precision: precision,
		data:      make([]complex128, elemCount),
	}, nil
}

func (c *mockContext) NewStream() (Stream, error) {
	return &mockStream{}, nil
}

func (c *mockContext) Close() error {
	return nil
}

// mockBuffer keeps every element as complex128. Single-precision buffers
// round each stored value to complex64.
type mockBuffer struct {
	mu        sync.Mutex
	precision stockham.Precision
	data      []complex128
	closed    bool
}

func (b *mockBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.data)
}

func (b *mockBuffer) Precision() stockham.Precision {
	return b.precision
}

func (b *mockBuffer) Upload(src any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	switch s := src.(type) {
	case []complex64:
		if b.precision != stockham.PrecisionSingle {
			return ErrPrecisionMismatch
		}

		if len(s) < len(b.data) {
			return ErrLengthMismatch
		}

		for i := range b.data {
			b.data[i] = complex128(s[i])
		}
	case []complex128:
		if b.precision != stockham.PrecisionDouble {
			return ErrPrecisionMismatch
		}

		if len(s) < len(b.data) {
			return ErrLengthMismatch
		}

		copy(b.data, s)
	default:
		return fmt.Errorf("%w: upload from %T", ErrNotImplemented, src)
	}

	return nil
}

func (b *mockBuffer) Download(dst any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	switch d := dst.(type) {
	case []complex64:
		if b.precision != stockham.PrecisionSingle {
			return ErrPrecisionMismatch
		}

		if len(d) < len(b.data) {
			return ErrLengthMismatch
		}

		for i, v := range b.data {
			d[i] = complex64(v)
		}
	case []complex128:
		if b.precision != stockham.PrecisionDouble {
			return ErrPrecisionMismatch
		}

		if len(d) < len(b.data) {
			return ErrLengthMismatch
		}

		copy(d, b.data)
	default:
		return fmt.Errorf("%w: download into %T", ErrNotImplemented, dst)
	}

	return nil
}

func (b *mockBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = nil
	b.closed = true

	return nil
}

// mockStream runs each launch to completion inside Submit, so Barrier and
// Synchronize only report state.
type mockStream struct {
	mu      sync.Mutex
	scratch []complex128
	closed  bool
}

func (s *mockStream) Submit(ctx context.Context, l stockham.Launch, in, out []stockham.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	src, err := s.resolve(l, l.Src, in, out)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	dst, err := s.resolve(l, l.Dst, in, out)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	if src.precision != dst.precision {
		return fmt.Errorf("%w: %v source, %v destination", ErrPrecisionMismatch, src.precision, dst.precision)
	}

	// An aliased launch reads a snapshot, as on-chip staging would.
	from := src.data
	if &src.data[0] == &dst.data[0] {
		from = append([]complex128(nil), src.data...)
	}

	switch l.Kind {
	case stockham.LaunchPass:
		err = runPass(dst.data, from, l)
	case stockham.LaunchTranspose:
		err = runTranspose(dst.data, from, l)
	default:
		err = fmt.Errorf("%w: launch kind %v", ErrNotImplemented, l.Kind)
	}

	if err != nil {
		return err
	}

	if dst.precision == stockham.PrecisionSingle {
		roundSingle(dst.data)
	}

	slogger().Debug("stockham/gpu: launch executed",
		"seq", l.Seq, "kind", l.Kind.String(), "axis", l.Axis, "radix", l.Pass.Radix,
		"src", l.Src.Role.String(), "dst", l.Dst.Role.String())

	return nil
}

func (s *mockStream) Barrier(ctx context.Context) error {
	return ctx.Err()
}

func (s *mockStream) Synchronize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	return nil
}

func (s *mockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scratch = nil
	s.closed = true

	return nil
}

type view struct {
	data      []complex128
	precision stockham.Precision
}

func (s *mockStream) resolve(l stockham.Launch, a stockham.Access, in, out []stockham.Buffer) (view, error) {
	if a.Layout != stockham.LayoutComplexInterleaved {
		return view{}, fmt.Errorf("%w: %v layout", ErrNotImplemented, a.Layout)
	}

	var bufs []stockham.Buffer

	switch a.Role {
	case stockham.RoleInput:
		bufs = in
	case stockham.RoleOutput:
		bufs = out
	case stockham.RoleScratch:
		need := l.Batch * product(l.Lengths)
		if len(s.scratch) < need {
			s.scratch = make([]complex128, need)
		}

		prec := stockham.PrecisionDouble
		if len(in) > 0 {
			prec = in[0].Precision()
		}

		return view{data: s.scratch[:need], precision: prec}, nil
	}

	if len(bufs) != 1 {
		return view{}, fmt.Errorf("%w: %d buffers for %v", stockham.ErrArgument, len(bufs), a.Role)
	}

	mb, ok := bufs[0].(*mockBuffer)
	if !ok {
		return view{}, fmt.Errorf("%w: foreign buffer %T", stockham.ErrArgument, bufs[0])
	}

	mb.mu.Lock()
	data, closed := mb.data, mb.closed
	mb.mu.Unlock()

	if closed {
		return view{}, ErrClosed
	}

	if need := extent(l, a); len(data) < need {
		return view{}, fmt.Errorf("%w: %v buffer holds %d elements, launch touches %d",
			ErrLengthMismatch, a.Role, len(data), need)
	}

	return view{data: data, precision: mb.precision}, nil
}

// runPass applies one Stockham pass to every line of the launch.
func runPass(dst, src []complex128, l stockham.Launch) error {
	p := l.Pass
	n := l.Lengths[l.Axis]

	if p.L*p.R != n || l.Twiddles == nil {
		return fmt.Errorf("%w: malformed pass launch %d", stockham.ErrArgument, l.Seq)
	}

	sign := -1.0
	if l.Direction == stockham.DirectionBackward {
		sign = 1.0
	}

	lineIn := make([]complex128, n)
	lineOut := make([]complex128, n)
	x := make([]complex128, p.Radix)
	w := make([]complex128, p.Radix)
	v := make([]complex128, p.Radix)

	srcStride := l.Src.Strides[l.Axis]
	dstStride := l.Dst.Strides[l.Axis]

	for line := range l.Lines() {
		sb := l.LineBase(l.Src, line)
		for e := range n {
			lineIn[e] = src[sb+e*srcStride]
		}

		for k := range p.R {
			for j := range p.LS {
				for i := range p.Radix {
					x[i] = lineIn[p.ReadIndex(k, j, i)]
					// The launch scale rides on the inter-pass twiddle.
					w[i] = cmplx.Rect(l.Scale, sign*2*math.Pi*float64(i*j)/float64(p.L))
				}

				c128.Mul(v, x, w)

				for o := range p.Radix {
					var sum complex128
					for i := range p.Radix {
						sum += v[i] * l.Twiddles.At(i*o)
					}

					lineOut[p.WriteIndex(k, j, o)] = sum
				}
			}
		}

		db := l.LineBase(l.Dst, line)
		for e := range n {
			dst[db+e*dstStride] = lineOut[e]
		}
	}

	return nil
}

// runTranspose swaps the two axes of every transform in the batch.
func runTranspose(dst, src []complex128, l stockham.Launch) error {
	if len(l.Lengths) != 2 {
		return fmt.Errorf("%w: transpose of %d-D data", stockham.ErrArgument, len(l.Lengths))
	}

	n0, n1 := l.Lengths[0], l.Lengths[1]

	for b := range l.Batch {
		sb := b * l.Src.Distance
		db := b * l.Dst.Distance

		for i1 := range n1 {
			for i0 := range n0 {
				dst[db+i1*l.Dst.Strides[0]+i0*l.Dst.Strides[1]] =
					src[sb+i0*l.Src.Strides[0]+i1*l.Src.Strides[1]] * complex(l.Scale, 0)
			}
		}
	}

	return nil
}

// extent returns one past the largest element index the launch touches
// through a.
func extent(l stockham.Launch, a stockham.Access) int {
	lengths := l.Lengths
	if l.Kind == stockham.LaunchTranspose && a.Role == stockham.RoleOutput {
		lengths = []int{l.Lengths[1], l.Lengths[0]}
	}

	last := (l.Batch - 1) * a.Distance
	for d, n := range lengths {
		last += (n - 1) * a.Strides[d]
	}

	return last + 1
}

func roundSingle(data []complex128) {
	for i, v := range data {
		data[i] = complex128(complex64(v))
	}
}

func product(xs []int) int {
	p := 1
	for _, x := range xs {
		p *= x
	}

	return p
}
