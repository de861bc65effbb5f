package twiddle

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-stockham/internal/fftypes"
)

func TestTableCoefficients(t *testing.T) {
	t.Parallel()

	const tol = 1e-6

	for _, r := range []int{2, 3, 4, 5, 7, 8} {
		t.Run(fmt.Sprintf("radix=%d", r), func(t *testing.T) {
			t.Parallel()

			cache := &Cache{}

			fwd, err := cache.Get(r, fftypes.DirectionForward)
			require.NoError(t, err)
			require.Equal(t, r-1, fwd.Len())

			inv, err := cache.Get(r, fftypes.DirectionBackward)
			require.NoError(t, err)
			require.Equal(t, r-1, inv.Len())

			for k := 1; k < r; k++ {
				c := fwd.At(k)
				if math.Abs(cmplx.Abs(c)-1) > tol {
					t.Errorf("|W_%d^%d| = %v, want 1", r, k, cmplx.Abs(c))
				}

				want := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(r))
				if cmplx.Abs(c-want) > tol {
					t.Errorf("forward W_%d^%d = %v, want %v", r, k, c, want)
				}

				if cmplx.Abs(inv.At(k)-cmplx.Conj(want)) > tol {
					t.Errorf("backward W_%d^%d = %v, want %v", r, k, inv.At(k), cmplx.Conj(want))
				}
			}
		})
	}
}

func TestTableAtReducesModulo(t *testing.T) {
	t.Parallel()

	tbl := newTable(5, fftypes.DirectionForward)

	assert.Equal(t, complex128(1), tbl.At(0))
	assert.Equal(t, complex128(1), tbl.At(5))
	assert.Equal(t, tbl.At(2), tbl.At(7))
	assert.Equal(t, tbl.At(4), tbl.At(-1))
	assert.Equal(t, 5, tbl.Radix())
	assert.Equal(t, fftypes.DirectionForward, tbl.Direction())
}

func TestCoefficientsAreCopies(t *testing.T) {
	t.Parallel()

	tbl := newTable(4, fftypes.DirectionForward)

	c := tbl.Coefficients()
	c[0] = 42

	assert.NotEqual(t, complex128(42), tbl.At(1))
	assert.Len(t, tbl.Complex64(), 3)
}

func TestCacheReturnsSharedTable(t *testing.T) {
	t.Parallel()

	cache := &Cache{}

	a, err := cache.Get(8, fftypes.DirectionForward)
	require.NoError(t, err)

	b, err := cache.Get(8, fftypes.DirectionForward)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, cache.Computed())

	c, err := cache.Get(8, fftypes.DirectionBackward)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, cache.Computed())
	assert.Equal(t, 2, cache.Len())
}

func TestCacheComputesOnceUnderContention(t *testing.T) {
	t.Parallel()

	cache := &Cache{}

	const workers = 64

	var wg sync.WaitGroup

	tables := make([]*Table, workers)
	for i := range workers {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			tbl, err := cache.Get(7, fftypes.DirectionForward)
			if err == nil {
				tables[i] = tbl
			}
		}(i)
	}

	wg.Wait()

	for i := range tables {
		require.Same(t, tables[0], tables[i])
	}

	assert.Equal(t, 1, cache.Computed())
}

func TestCacheRejectsBadArguments(t *testing.T) {
	t.Parallel()

	cache := &Cache{}

	for _, r := range []int{-1, 0, 1} {
		_, err := cache.Get(r, fftypes.DirectionForward)
		assert.True(t, errors.Is(err, fftypes.ErrArgument), "radix %d: %v", r, err)
	}

	_, err := cache.Get(4, fftypes.Direction(3))
	assert.ErrorIs(t, err, fftypes.ErrArgument)
	assert.Equal(t, 0, cache.Computed())
}

func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	cache := &Cache{}

	a, err := cache.Acquire(3, fftypes.DirectionForward)
	require.NoError(t, err)

	b, err := cache.Acquire(3, fftypes.DirectionForward)
	require.NoError(t, err)
	require.Same(t, a, b)
	assert.Equal(t, int64(2), a.Refs())

	cache.Release(a)
	cache.Release(b)
	assert.Equal(t, int64(0), a.Refs())

	// Released tables stay cached.
	again, err := cache.Get(3, fftypes.DirectionForward)
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, cache.Computed())

	cache.Release(nil)
}
