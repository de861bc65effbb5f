package stockham

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-stockham/internal/twiddle"
)

// newTestPlan creates a plan with a private twiddle cache so reference
// counts are not disturbed by parallel tests.
func newTestPlan(t *testing.T, lengths []int, opts PlanOptions) (*Plan, *twiddle.Cache) {
	t.Helper()

	p, err := CreatePlan(len(lengths), lengths, opts)
	require.NoError(t, err)

	cache := &twiddle.Cache{}
	p.tables = cache

	return p, cache
}

func TestCreatePlan_Defaults(t *testing.T) {
	t.Parallel()

	p, err := CreatePlan(1, []int{64}, PlanOptions{})
	require.NoError(t, err)

	assert.Equal(t, StateConfigured, p.State())
	assert.Equal(t, []int{64}, p.Lengths())
	assert.Equal(t, PrecisionSingle, p.Precision())
	assert.Equal(t, DefaultEnvelope, p.Envelope())
	assert.Nil(t, p.ExecutionPlan())

	spec := p.Spec()
	assert.Equal(t, PlacementInPlace, spec.Placement)
	assert.Equal(t, LayoutComplexInterleaved, spec.InputLayout)
	assert.Equal(t, LayoutComplexInterleaved, spec.OutputLayout)
	assert.Equal(t, 1, spec.BatchSize)
	assert.InDelta(t, 1.0, spec.ForwardScale, 0)
	assert.InDelta(t, 1.0/64, spec.BackwardScale, 0)
}

func TestCreatePlan_TrimsExtraLengths(t *testing.T) {
	t.Parallel()

	p, err := CreatePlan(2, []int{8, 16, 32}, PlanOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{8, 16}, p.Lengths())
	assert.InDelta(t, 1.0/128, p.Spec().BackwardScale, 0)
}

func TestCreatePlan_RejectsBadArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dims    int
		lengths []int
	}{
		{"zero dims", 0, []int{8}},
		{"four dims", 4, []int{2, 2, 2, 2}},
		{"missing length", 2, []int{8}},
		{"zero length", 1, []int{0}},
		{"negative length", 2, []int{8, -4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := CreatePlan(tt.dims, tt.lengths, PlanOptions{})
			require.ErrorIs(t, err, ErrArgument)
			assert.Nil(t, p)
		})
	}
}

func TestBake_CuratedSingle4096(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{4096}, PlanOptions{})
	require.NoError(t, p.Bake())
	assert.Equal(t, StateBaked, p.State())

	exec := p.ExecutionPlan()
	require.NotNil(t, exec)

	axis := exec.Axis(0)
	assert.Equal(t, []int{8, 8, 8, 8}, axis.Radices)
	assert.Equal(t, 256, axis.WorkGroupSize)
	assert.Equal(t, 1, axis.TransformsPerGroup)
	assert.True(t, axis.Curated)

	passes := exec.Passes()
	require.Len(t, passes, 4)

	for q, ps := range passes {
		assert.Equal(t, q, ps.Index)
		assert.Equal(t, 8, ps.Radix)
	}

	assert.Equal(t, 4096, passes[3].L)
	assert.Equal(t, 1, passes[3].R)
}

func TestBake_CuratedSingle8(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{8}, PlanOptions{})
	require.NoError(t, p.Bake())

	axis := p.ExecutionPlan().Axis(0)
	assert.Equal(t, []int{4, 2}, axis.Radices)
	assert.Equal(t, 64, axis.WorkGroupSize)
	assert.Equal(t, 32, axis.TransformsPerGroup)
}

func TestBake_DerivedGeometry(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{40}, PlanOptions{})
	require.NoError(t, p.SetPrecision(PrecisionDouble))
	require.NoError(t, p.Bake())

	axis := p.ExecutionPlan().Axis(0)
	assert.Equal(t, []int{8, 5}, axis.Radices)
	assert.False(t, axis.Curated)
	assert.Equal(t, 60, axis.WorkGroupSize)
	assert.Equal(t, 12, axis.TransformsPerGroup)
}

func TestBake_UnsupportedFactorLeavesPlanConfigured(t *testing.T) {
	t.Parallel()

	p, cache := newTestPlan(t, []int{16, 26}, PlanOptions{})

	err := p.Bake()
	require.ErrorIs(t, err, ErrUnsupportedLength)
	assert.Contains(t, err.Error(), "13")
	assert.Equal(t, StateConfigured, p.State())
	assert.Nil(t, p.ExecutionPlan())

	// Axis 0 was built before axis 1 failed; its tables must be returned.
	tbl, err := cache.Get(4, DirectionForward)
	require.NoError(t, err)
	assert.Zero(t, tbl.Refs())

	// The plan is still configurable.
	require.NoError(t, p.SetPrecision(PrecisionDouble))
}

func TestBake_LengthOneIsUnsupported(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{1}, PlanOptions{})
	require.ErrorIs(t, p.Bake(), ErrUnsupportedLength)
	assert.Equal(t, StateConfigured, p.State())
}

func TestBake_EnvelopeViolation(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{4096}, PlanOptions{})
	require.NoError(t, p.SetPrecision(PrecisionDouble))

	require.ErrorIs(t, p.Bake(), ErrEnvelopeViolation)
	assert.Equal(t, StateConfigured, p.State())

	require.NoError(t, p.SetPrecision(PrecisionSingle))
	require.NoError(t, p.Bake())
}

func TestBake_SmallWorkGroupCeiling(t *testing.T) {
	t.Parallel()

	env := Envelope{LocalMemBytes: 32 * 1024, MaxWorkGroupSize: 128}

	// The curated 4096 record needs 256 work items.
	p, _ := newTestPlan(t, []int{4096}, PlanOptions{Envelope: env})
	require.ErrorIs(t, p.Bake(), ErrEnvelopeViolation)

	// Derived geometry follows the ceiling.
	p, _ = newTestPlan(t, []int{8192}, PlanOptions{Envelope: Envelope{LocalMemBytes: 64 * 1024, MaxWorkGroupSize: 128}})
	require.NoError(t, p.Bake())
	assert.Equal(t, 128, p.ExecutionPlan().Axis(0).WorkGroupSize)
}

func TestBake_MaxPasses(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{4096}, PlanOptions{MaxPasses: 3})
	require.ErrorIs(t, p.Bake(), ErrUnsupportedLength)

	p, _ = newTestPlan(t, []int{4096}, PlanOptions{MaxPasses: 4})
	require.NoError(t, p.Bake())
}

func TestPlan_FrozenAfterBake(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{512}, PlanOptions{})
	require.NoError(t, p.Bake())

	before := p.ExecutionPlan().Passes()

	require.ErrorIs(t, p.SetPrecision(PrecisionDouble), ErrPlanState)
	require.ErrorIs(t, p.SetBatchSize(4), ErrPlanState)
	require.ErrorIs(t, p.SetLayout(LayoutComplexPlanar, LayoutComplexPlanar), ErrPlanState)
	require.ErrorIs(t, p.Bake(), ErrPlanState)

	assert.Equal(t, StateBaked, p.State())
	assert.Equal(t, PrecisionSingle, p.Precision())
	assert.Equal(t, before, p.ExecutionPlan().Passes())
}

func TestPlan_SettersValidateImmediately(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{16, 16, 16}, PlanOptions{})

	assert.ErrorIs(t, p.SetPrecision(Precision(9)), ErrArgument)
	assert.ErrorIs(t, p.SetLayout(LayoutReal, LayoutReal), ErrConfiguration)
	assert.ErrorIs(t, p.SetLayout(LayoutComplexInterleaved, LayoutReal), ErrConfiguration)
	assert.ErrorIs(t, p.SetTransposeResult(TransposeTransposed), ErrConfiguration)
	assert.ErrorIs(t, p.SetStride(SideInput, []int{1, 16}), ErrArgument)
	assert.ErrorIs(t, p.SetStride(SideOutput, []int{1, 0, 256}), ErrArgument)
	assert.ErrorIs(t, p.SetDistance(-1, 0), ErrArgument)
	assert.ErrorIs(t, p.SetScale(DirectionForward, 0), ErrArgument)
	assert.ErrorIs(t, p.SetBatchSize(0), ErrArgument)
	assert.ErrorIs(t, p.SetResultLocation(Placement(7)), ErrArgument)

	// Failed setters change nothing.
	assert.Equal(t, defaultSpec([]int{16, 16, 16}), p.Spec())
}

func TestPlan_SetStrideAndDistance(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{8, 4}, PlanOptions{})
	require.NoError(t, p.SetResultLocation(PlacementOutOfPlace))
	require.NoError(t, p.SetStride(SideInput, []int{2, 32}))
	require.NoError(t, p.SetDistance(256, 0))
	require.NoError(t, p.SetBatchSize(3))

	spec := p.Spec()
	assert.Equal(t, []int{2, 32}, spec.InputStrides)
	assert.Nil(t, spec.OutputStrides)
	assert.Equal(t, 256, spec.InputDistance)
	assert.Equal(t, 3, spec.BatchSize)

	require.NoError(t, p.SetStride(SideInput, nil))
	assert.Nil(t, p.Spec().InputStrides)
}

func TestPlan_TransposeRules(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{16, 8}, PlanOptions{})
	require.NoError(t, p.SetTransposeResult(TransposeTransposed))

	// In-place transposed results are rejected when baking.
	require.ErrorIs(t, p.Bake(), ErrConfiguration)

	require.NoError(t, p.SetResultLocation(PlacementOutOfPlace))
	require.NoError(t, p.SetStride(SideOutput, []int{1, 16}))
	require.ErrorIs(t, p.Bake(), ErrConfiguration)

	require.NoError(t, p.SetStride(SideOutput, nil))
	require.NoError(t, p.Bake())
	assert.True(t, p.ExecutionPlan().Transposed())
}

func TestPlan_DestroyTwice(t *testing.T) {
	t.Parallel()

	p, cache := newTestPlan(t, []int{16}, PlanOptions{})
	require.NoError(t, p.Bake())

	fwd, err := cache.Get(4, DirectionForward)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fwd.Refs())

	require.NoError(t, p.Destroy())
	assert.Equal(t, StateDestroyed, p.State())
	assert.Zero(t, fwd.Refs())
	assert.Nil(t, p.ExecutionPlan())

	err = p.Destroy()
	require.ErrorIs(t, err, ErrPlanState)

	require.ErrorIs(t, p.Bake(), ErrPlanState)
	require.ErrorIs(t, p.SetBatchSize(2), ErrPlanState)
}

func TestPlan_DestroyUnbaked(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{16}, PlanOptions{})
	require.NoError(t, p.Destroy())
	require.ErrorIs(t, p.Destroy(), ErrPlanState)
}

func TestPlan_ZeroValueIsCreated(t *testing.T) {
	t.Parallel()

	var p Plan
	assert.Equal(t, StateCreated, p.State())
	require.ErrorIs(t, p.SetBatchSize(2), ErrPlanState)
	require.ErrorIs(t, p.Bake(), ErrPlanState)

	_, err := p.Clone()
	require.ErrorIs(t, err, ErrPlanState)
}

func TestPlan_SharesTwiddleTables(t *testing.T) {
	t.Parallel()

	a, err := CreatePlan(1, []int{4096}, PlanOptions{})
	require.NoError(t, err)

	b, err := CreatePlan(1, []int{512}, PlanOptions{})
	require.NoError(t, err)

	require.NoError(t, a.Bake())
	require.NoError(t, b.Bake())

	defer func() {
		require.NoError(t, a.Destroy())
		require.NoError(t, b.Destroy())
	}()

	pa := a.ExecutionPlan().Passes()
	pb := b.ExecutionPlan().Passes()

	for _, dir := range []Direction{DirectionForward, DirectionBackward} {
		assert.Same(t, pa[0].Twiddles(dir), pb[0].Twiddles(dir))
		assert.Same(t, pa[0].Twiddles(dir), pa[3].Twiddles(dir))
	}

	assert.NotSame(t, pa[0].Twiddles(DirectionForward), pa[0].Twiddles(DirectionBackward))
}

func TestPlan_Clone(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{32, 32}, PlanOptions{})
	require.NoError(t, p.SetPrecision(PrecisionDouble))
	require.NoError(t, p.Bake())

	c, err := p.Clone()
	require.NoError(t, err)

	assert.Equal(t, StateConfigured, c.State())
	assert.Equal(t, p.Spec(), c.Spec())
	assert.Nil(t, c.ExecutionPlan())

	require.NoError(t, c.SetBatchSize(8))
	assert.Equal(t, 1, p.Spec().BatchSize)
}

func TestPlan_MaxLength(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlan(t, []int{8}, PlanOptions{Envelope: Envelope{LocalMemBytes: 16384, MaxWorkGroupSize: 256}})

	n, err := p.MaxLength()
	require.NoError(t, err)
	assert.Equal(t, 2048, n)

	require.NoError(t, p.SetPrecision(PrecisionDouble))

	n, err = p.MaxLength()
	require.NoError(t, err)
	assert.Equal(t, 1024, n)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "configured", StateConfigured.String())
	assert.Equal(t, "baked", StateBaked.String())
	assert.Equal(t, "destroyed", StateDestroyed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	all := []error{ErrConfiguration, ErrUnsupportedLength, ErrEnvelopeViolation, ErrPlanState, ErrArgument}
	for i, a := range all {
		for j, b := range all {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}
