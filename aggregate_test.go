package caravel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAggFunc(t *testing.T) {
	for name, want := range map[string]AggFunc{
		"sum": AggSum, "MEAN": AggMean, " count ": AggCount,
		"min": AggMin, "max": AggMax, "std": AggStd, "var": AggVar,
		"first": AggFirst, "last": AggLast, "size": AggSize,
	} {
		got, err := ParseAggFunc(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseAggFunc("median")
	require.ErrorIs(t, err, ErrUnknownAggregation)
}

func TestGroupByAggNaming(t *testing.T) {
	got, err := salesFrame(t).GroupBy("region").Agg(map[string][]string{
		"sales": {"sum", "mean"},
		"units": {"max"},
	})
	require.NoError(t, err)

	require.True(t, got.HasColumn("sales_sum"), "multiple funcs expand to suffixed columns")
	require.True(t, got.HasColumn("sales_mean"))
	require.True(t, got.HasColumn("units"), "single func keeps the column name")
	require.False(t, got.HasColumn("units_max"))
}

func TestGroupBySingleFuncPreservesColumnNames(t *testing.T) {
	got, err := salesFrame(t).GroupBy("region").Sum()
	require.NoError(t, err)
	require.Equal(t, []string{"region", "sales", "units"}, got.ColumnNames())

	sales, err := got.Column("sales")
	require.NoError(t, err)
	require.Equal(t, []float64{425, 450}, sales.Float64s())
}

func TestAggMatchesSingleAggregations(t *testing.T) {
	df, err := NewDataFrame(
		NewSeriesString("k", []string{"a", "b", "a", "b", "a", "c"}),
		NewSeriesFloat64("v", []float64{1, 2, math.NaN(), 4, 5, math.NaN()}),
	)
	require.NoError(t, err)

	batched, err := df.GroupBy("k").Agg(map[string][]string{
		"v": {"sum", "mean", "count", "min", "max", "std", "var"},
	})
	require.NoError(t, err)

	for _, fname := range []string{"sum", "mean", "min", "max", "std", "var"} {
		fn, err := ParseAggFunc(fname)
		require.NoError(t, err)
		single, err := df.GroupBy("k").apply(fn, []string{"v"})
		require.NoError(t, err)

		want, err := single.Column("v")
		require.NoError(t, err)
		got, err := batched.Column("v_" + fname)
		require.NoError(t, err)

		for i := 0; i < want.Len(); i++ {
			wv, wok := want.GetFloat64(i)
			gv, gok := got.GetFloat64(i)
			require.Equal(t, wok, gok, "%s group %d null mismatch", fname, i)
			if wok {
				require.Equal(t, wv, gv, "%s group %d", fname, i)
			}
		}
	}

	count, err := batched.Column("v_count")
	require.NoError(t, err)
	require.Equal(t, Int32, count.DType())
	require.Equal(t, []any{int32(2), int32(2), int32(0)}, count.Values())
}

func TestGroupByMeanCountSumRelation(t *testing.T) {
	df, err := NewDataFrame(
		NewSeriesString("k", []string{"a", "a", "b", "b", "b"}),
		NewSeriesFloat64("v", []float64{1.5, 2.5, 3, math.NaN(), 5}),
	)
	require.NoError(t, err)

	g := df.GroupBy("k")
	sums, err := g.Sum("v")
	require.NoError(t, err)
	means, err := g.Mean("v")
	require.NoError(t, err)
	counts, err := g.Count("v")
	require.NoError(t, err)

	sc, _ := sums.Column("v")
	mc, _ := means.Column("v")
	cc, _ := counts.Column("v")
	for i := 0; i < sc.Len(); i++ {
		s, _ := sc.GetFloat64(i)
		m, _ := mc.GetFloat64(i)
		c, _ := cc.GetInt32(i)
		require.InDelta(t, s, m*float64(c), 1e-12)
	}
}

func TestGroupByFirstLast(t *testing.T) {
	df, err := NewDataFrame(
		NewSeriesString("k", []string{"a", "a", "b", "b"}),
		NewSeriesString("tag", []string{"p", "q", "r", "s"}),
	)
	require.NoError(t, err)

	firsts, err := df.GroupBy("k").First("tag")
	require.NoError(t, err)
	f, _ := firsts.Column("tag")
	require.Equal(t, String, f.DType(), "first preserves dtype")
	require.Equal(t, []any{"p", "r"}, f.Values())

	lasts, err := df.GroupBy("k").Last("tag")
	require.NoError(t, err)
	l, _ := lasts.Column("tag")
	require.Equal(t, []any{"q", "s"}, l.Values())
}

func TestGroupByFirstSkipsNulls(t *testing.T) {
	v, err := NewSeriesStringWithNulls("v", []string{"", "x", "", ""}, []bool{false, true, false, false})
	require.NoError(t, err)
	df, err := NewDataFrame(NewSeriesString("k", []string{"a", "a", "b", "b"}), v)
	require.NoError(t, err)

	firsts, err := df.GroupBy("k").First("v")
	require.NoError(t, err)
	f, _ := firsts.Column("v")
	require.Equal(t, []any{"x", nil}, f.Values(), "all-null group yields null")
}

func TestGroupBySize(t *testing.T) {
	v := NewSeriesFloat64("v", []float64{1, math.NaN(), 3})
	df, err := NewDataFrame(NewSeriesString("k", []string{"a", "a", "b"}), v)
	require.NoError(t, err)

	got, err := df.GroupBy("k").Size()
	require.NoError(t, err)
	size, err := got.Column("size")
	require.NoError(t, err)
	require.Equal(t, []any{int32(2), int32(1)}, size.Values(), "size counts nulls, count does not")

	counts, err := df.GroupBy("k").Count("v")
	require.NoError(t, err)
	cnt, _ := counts.Column("v")
	require.Equal(t, []any{int32(1), int32(1)}, cnt.Values())
}

func TestGroupByNumericAggOnStringColumn(t *testing.T) {
	_, err := salesFrame(t).GroupBy("units").Sum("region")
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestGroupByStdVarSmallGroups(t *testing.T) {
	df, err := NewDataFrame(
		NewSeriesString("k", []string{"solo", "pair", "pair"}),
		NewSeriesFloat64("v", []float64{1, 2, 4}),
	)
	require.NoError(t, err)

	got, err := df.GroupBy("k").Var("v")
	require.NoError(t, err)
	v, _ := got.Column("v")

	pairVar, ok := v.GetFloat64(0) // "pair" sorts first
	require.True(t, ok)
	require.InDelta(t, 2.0, pairVar, 1e-12)
	require.True(t, v.IsNull(1), "variance of a single observation is null")
}
