package caravel

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errInjected = errors.New("injected kernel fault")

// countingKernel wraps another kernel and tallies registrations and
// releases, optionally failing every operation after registration.
type countingKernel struct {
	Kernel
	registers int
	releases  int
	failOps   bool
}

func newCountingKernel(failOps bool) *countingKernel {
	return &countingKernel{Kernel: newPortableKernel(), failOps: failOps}
}

func (k *countingKernel) Name() string { return "counting" }

func (k *countingKernel) RegisterF64(data []float64) (uint64, error) {
	k.registers++
	return k.Kernel.RegisterF64(data)
}

func (k *countingKernel) RegisterI32(data []int32) (uint64, error) {
	k.registers++
	return k.Kernel.RegisterI32(data)
}

func (k *countingKernel) Release(id uint64) {
	k.releases++
	k.Kernel.Release(id)
}

func (k *countingKernel) ReduceF64(id uint64, op reduceOp) (float64, error) {
	if k.failOps {
		return 0, errInjected
	}
	return k.Kernel.ReduceF64(id, op)
}

func (k *countingKernel) GroupReduceF64(id uint64, keys [][]byte, op reduceOp) ([][]byte, []float64, error) {
	if k.failOps {
		return nil, nil, errInjected
	}
	return k.Kernel.GroupReduceF64(id, keys, op)
}

func (k *countingKernel) SortIndicesF64(id uint64, ascending, nullsLast bool) ([]int, error) {
	if k.failOps {
		return nil, errInjected
	}
	return k.Kernel.SortIndicesF64(id, ascending, nullsLast)
}

func (k *countingKernel) SortIndices2F64(id1, id2 uint64, asc1, asc2, nullsLast bool) ([]int, error) {
	if k.failOps {
		return nil, errInjected
	}
	return k.Kernel.SortIndices2F64(id1, id2, asc1, asc2, nullsLast)
}

func (k *countingKernel) FilterF64(id uint64, mask []bool) ([]float64, error) {
	if k.failOps {
		return nil, errInjected
	}
	return k.Kernel.FilterF64(id, mask)
}

func (k *countingKernel) IsInF64(id uint64, candidates []float64, tol float64) ([]bool, error) {
	if k.failOps {
		return nil, errInjected
	}
	return k.Kernel.IsInF64(id, candidates, tol)
}

func TestPortableKernelArena(t *testing.T) {
	k := newPortableKernel()

	id1, err := k.RegisterF64([]float64{1, 2, 3})
	require.NoError(t, err)
	id2, err := k.RegisterF64([]float64{4})
	require.NoError(t, err)
	require.NotEqual(t, id1, id2, "ids are never reused")

	got, err := k.ReduceF64(id1, reduceSum)
	require.NoError(t, err)
	require.Equal(t, 6.0, got)

	k.Release(id1)
	_, err = k.ReduceF64(id1, reduceSum)
	require.ErrorIs(t, err, errHandleReleased)

	// The other buffer is untouched.
	got, err = k.ReduceF64(id2, reduceSum)
	require.NoError(t, err)
	require.Equal(t, 4.0, got)

	id3, err := k.RegisterF64(nil)
	require.NoError(t, err)
	require.NotEqual(t, id1, id3, "a released id is not recycled")
}

func TestPortableKernelCopiesData(t *testing.T) {
	k := newPortableKernel()
	data := []float64{1, 2}
	id, err := k.RegisterF64(data)
	require.NoError(t, err)

	data[0] = 100
	got, err := k.ReduceF64(id, reduceSum)
	require.NoError(t, err)
	require.Equal(t, 3.0, got, "registration copies the caller's buffer")
}

func TestEngineReleasesHandleOncePerCall(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		k := newCountingKernel(false)
		e := NewEngine(WithKernel(k), WithLogger(zaptest.NewLogger(t)))

		require.Equal(t, 6.0, e.reduceF64([]float64{1, 2, 3}, reduceSum))
		require.Equal(t, k.registers, k.releases)
		require.Equal(t, 1, k.releases)
	})

	t.Run("on kernel fault", func(t *testing.T) {
		k := newCountingKernel(true)
		e := NewEngine(WithKernel(k), WithLogger(zaptest.NewLogger(t)))

		require.Equal(t, 6.0, e.reduceF64([]float64{1, 2, 3}, reduceSum))
		require.Equal(t, k.registers, k.releases, "fault path still releases exactly once")
	})

	t.Run("across all operations", func(t *testing.T) {
		for _, failOps := range []bool{false, true} {
			k := newCountingKernel(failOps)
			e := NewEngine(WithKernel(k), WithLogger(zaptest.NewLogger(t)))

			data := []float64{3, 1, math.NaN(), 2}
			_ = e.reduceF64(data, reduceMean)
			_ = e.sortIndicesF64(data, true, true)
			_ = e.sortIndices2F64(data, data, true, false, true)
			_ = e.filterF64(data, []bool{true, false, true, false})
			_ = e.isinF64(data, []float64{1, 2}, 0)
			_ = e.groupReduceF64(data, [][]byte{{1}, {1}, {2}, {2}}, reduceSum)

			require.Equal(t, k.registers, k.releases, "failOps=%v", failOps)
			require.Greater(t, k.registers, 0)
		}
	})
}

func requireSameF64s(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, math.Float64bits(want[i]), math.Float64bits(got[i]), "index %d", i)
	}
}

func TestEngineFallbackMatchesPortable(t *testing.T) {
	kerneled := NewEngine(WithKernel(newPortableKernel()))
	bare := NewEngine()

	cases := map[string][]float64{
		"plain":    {3, 1, 4, 1, 5},
		"nulls":    {1, math.NaN(), 3, math.NaN(), 5},
		"all null": {math.NaN(), math.NaN()},
		"single":   {7},
		"empty":    {},
	}
	ops := []reduceOp{reduceSum, reduceMean, reduceStd, reduceVar, reduceMin, reduceMax, reduceCount}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			for _, op := range ops {
				a := kerneled.reduceF64(data, op)
				b := bare.reduceF64(data, op)
				if math.IsNaN(a) || math.IsNaN(b) {
					require.True(t, math.IsNaN(a) && math.IsNaN(b), "op %d", op)
				} else {
					require.Equal(t, a, b, "op %d", op)
				}
			}
			require.Equal(t,
				bare.sortIndicesF64(data, true, true),
				kerneled.sortIndicesF64(data, true, true))
			require.Equal(t,
				bare.sortIndicesF64(data, false, false),
				kerneled.sortIndicesF64(data, false, false))

			mask := make([]bool, len(data))
			for i := range mask {
				mask[i] = i%2 == 0
			}
			requireSameF64s(t,
				bare.filterF64(data, mask),
				kerneled.filterF64(data, mask))
			require.Equal(t,
				bare.isinF64(data, []float64{1, 5}, 0),
				kerneled.isinF64(data, []float64{1, 5}, 0))

			keys := make([][]byte, len(data))
			for i := range keys {
				keys[i] = encodeGroupKey([]string{string(rune('a' + i%2))})
			}
			require.Equal(t,
				bare.groupReduceF64(data, keys, reduceSum),
				kerneled.groupReduceF64(data, keys, reduceSum))
		})
	}
}

func TestEngineFallbackMatchesPortableI32(t *testing.T) {
	kerneled := NewEngine(WithKernel(newPortableKernel()))
	bare := NewEngine()

	cases := map[string][]int32{
		"plain":    {3, 1, 4, 1, 5},
		"nulls":    {1, int32Null, 3, int32Null, 5},
		"all null": {int32Null, int32Null},
		"single":   {7},
		"empty":    {},
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t,
				bare.sortIndicesI32(data, true, true),
				kerneled.sortIndicesI32(data, true, true))
			require.Equal(t,
				bare.sortIndicesI32(data, false, false),
				kerneled.sortIndicesI32(data, false, false))
			require.Equal(t,
				bare.sortIndices2I32(data, data, true, false, true),
				kerneled.sortIndices2I32(data, data, true, false, true))
			require.Equal(t,
				bare.isinI32(data, []int32{1, 5}),
				kerneled.isinI32(data, []int32{1, 5}))

			f64 := make([]float64, len(data))
			for i, v := range data {
				if v == int32Null {
					f64[i] = math.NaN()
				} else {
					f64[i] = float64(v)
				}
			}
			require.Equal(t,
				bare.sortIndices2F64(f64, f64, true, false, true),
				kerneled.sortIndices2F64(f64, f64, true, false, true))
		})
	}
}

func TestEngineFaultIsTransparent(t *testing.T) {
	faulty := NewEngine(WithKernel(newCountingKernel(true)), WithLogger(zaptest.NewLogger(t)))
	bare := NewEngine()

	data := []float64{2, math.NaN(), 1, 5}
	require.Equal(t, bare.reduceF64(data, reduceSum), faulty.reduceF64(data, reduceSum))
	require.Equal(t, bare.sortIndicesF64(data, true, true), faulty.sortIndicesF64(data, true, true))
	requireSameF64s(t, bare.filterF64(data, []bool{true, true, false, false}), faulty.filterF64(data, []bool{true, true, false, false}))
	require.Equal(t, bare.isinF64(data, []float64{5}, 0), faulty.isinF64(data, []float64{5}, 0))
}

func TestEngineGroupReduce(t *testing.T) {
	e := NewEngine(WithKernel(newPortableKernel()))

	keyA := encodeGroupKey([]string{"a"})
	keyB := encodeGroupKey([]string{"b"})
	got := e.groupReduceF64(
		[]float64{1, 2, 3, 4},
		[][]byte{keyA, keyB, keyA, keyB},
		reduceSum,
	)
	require.Equal(t, 4.0, got[string(keyA)])
	require.Equal(t, 6.0, got[string(keyB)])
}

func TestSeriesWithCustomEngine(t *testing.T) {
	k := newCountingKernel(false)
	e := NewEngine(WithKernel(k), WithLogger(zaptest.NewLogger(t)))

	s := NewSeriesFloat64("x", []float64{1, 2, 3}).WithEngine(e)
	require.Equal(t, 6.0, s.Sum())
	require.Greater(t, k.registers, 0, "series operations route through the configured engine")
	require.Equal(t, k.registers, k.releases)
}

func TestEncodeGroupKey(t *testing.T) {
	a := encodeGroupKey([]string{"x|y", "z"})
	b := encodeGroupKey([]string{"x", "y|z"})
	require.NotEqual(t, a, b, "length prefixes keep components apart")
	require.True(t, sameEncodedKey(a, encodeGroupKey([]string{"x|y", "z"})))
}
