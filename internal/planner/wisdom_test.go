package planner

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
)

func TestPlanOnlyReadsWisdom(t *testing.T) {
	t.Parallel()

	w := NewWisdom()
	p := New(Options{Wisdom: w})

	_, err := p.Plan(4096, fftypes.PrecisionSingle)
	require.NoError(t, err)

	d, err := p.Plan(40, fftypes.PrecisionDouble)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 5}, d.Radices)
	assert.False(t, d.Curated)

	assert.Zero(t, w.Len())
}

func TestPlanPrefersWisdomOverFactorization(t *testing.T) {
	t.Parallel()

	w := NewWisdom()
	require.NoError(t, w.Record(fftypes.PrecisionSingle, Decomposition{
		Length:             40,
		Radices:            []int{5, 4, 2},
		WorkGroupSize:      64,
		TransformsPerGroup: 8,
	}))

	d, err := New(Options{Wisdom: w}).Plan(40, fftypes.PrecisionSingle)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 2}, d.Radices)
	assert.Equal(t, 64, d.WorkGroupSize)
	assert.Equal(t, 8, d.TransformsPerGroup)
	assert.False(t, d.Curated)

	_, err = New(Options{Wisdom: w, MaxPasses: 2}).Plan(40, fftypes.PrecisionSingle)
	require.ErrorIs(t, err, fftypes.ErrUnsupportedLength)
}

func TestWisdomRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	w := NewWisdom()

	bad := []Decomposition{
		{Length: 40, WorkGroupSize: 64, TransformsPerGroup: 1},
		{Length: 40, Radices: []int{8, 6}, WorkGroupSize: 64, TransformsPerGroup: 1},
		{Length: 40, Radices: []int{8, 4}, WorkGroupSize: 64, TransformsPerGroup: 1},
		{Length: 40, Radices: []int{8, 5}, WorkGroupSize: 0, TransformsPerGroup: 1},
		{Length: 40, Radices: []int{8, 5}, WorkGroupSize: 64, TransformsPerGroup: 0},
	}

	for _, d := range bad {
		require.ErrorIs(t, w.Record(fftypes.PrecisionSingle, d), fftypes.ErrArgument, "%+v", d)
	}

	assert.Zero(t, w.Len())
}

func TestWisdomExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	src := NewWisdom()
	p := New(Options{Wisdom: src})

	for _, n := range []int{40, 96, 1000} {
		d, err := p.Plan(n, fftypes.PrecisionSingle)
		require.NoError(t, err)
		require.NoError(t, src.Record(fftypes.PrecisionSingle, d))
	}

	d, err := p.Plan(98, fftypes.PrecisionDouble)
	require.NoError(t, err)
	require.NoError(t, src.Record(fftypes.PrecisionDouble, d))

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	out := buf.String()
	assert.Less(t, strings.Index(out, "precision: double"), strings.Index(out, "precision: single"))
	assert.Contains(t, out, "radices: [8, 5]")

	dst := NewWisdom()
	require.NoError(t, dst.Import(&buf))
	require.Equal(t, src.Len(), dst.Len())

	for _, n := range []int{40, 96, 1000} {
		want, _ := src.Lookup(n, fftypes.PrecisionSingle)
		got, ok := dst.Lookup(n, fftypes.PrecisionSingle)
		require.True(t, ok, "length %d", n)
		assert.Equal(t, want, got)
	}
}

func TestWisdomImportIsAllOrNothing(t *testing.T) {
	t.Parallel()

	const data = `
- length: 40
  precision: single
  radices: [8, 5]
  workGroupSize: 60
  transformsPerGroup: 12
- length: 26
  precision: single
  radices: [2, 13]
  workGroupSize: 64
  transformsPerGroup: 1
`

	w := NewWisdom()
	require.ErrorIs(t, w.Import(strings.NewReader(data)), fftypes.ErrArgument)
	assert.Zero(t, w.Len())

	require.ErrorIs(t, w.Import(strings.NewReader("- length: 8\n  precision: half\n")), fftypes.ErrArgument)
	require.ErrorIs(t, w.Import(strings.NewReader("{not: [a list")), fftypes.ErrArgument)

	require.NoError(t, w.Import(strings.NewReader("")))
	assert.Zero(t, w.Len())
}

func TestWisdomConcurrentUse(t *testing.T) {
	t.Parallel()

	w := NewWisdom()
	p := New(Options{Wisdom: w})

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			d, err := p.Plan(40+i%4*10, fftypes.PrecisionDouble)
			if assert.NoError(t, err) {
				assert.NoError(t, w.Record(fftypes.PrecisionDouble, d))
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 4, w.Len())

	w.Clear()
	assert.Zero(t, w.Len())
}
