package caravel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func salesFrame(t *testing.T) *DataFrame {
	t.Helper()
	df, err := NewDataFrame(
		NewSeriesString("region", []string{"east", "west", "east", "west", "east"}),
		NewSeriesFloat64("sales", []float64{100, 200, 150, 250, 175}),
		NewSeriesInt32("units", []int32{10, 20, 15, 25, 18}),
	)
	require.NoError(t, err)
	return df
}

func TestSeriesGroupBySum(t *testing.T) {
	s := NewSeriesFloat64("v", []float64{1, 2, 3, 4, 5})
	got, err := s.GroupByKeys([]string{"0", "0", "1", "1", "2"}).Sum()
	require.NoError(t, err)

	require.Equal(t, []string{"0", "1", "2"}, got.Index())
	require.Equal(t, []float64{3, 7, 5}, got.Float64s())
}

func TestSeriesGroupByIndex(t *testing.T) {
	s, err := NewSeries("v", []any{1.0, 2.0, 3.0}, WithIndex([]string{"a", "b", "a"}))
	require.NoError(t, err)

	got, err := s.GroupByIndex().Sum()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got.Index())
	require.Equal(t, []float64{4, 2}, got.Float64s())
}

func TestGroupBySum(t *testing.T) {
	got, err := salesFrame(t).GroupBy("region").Sum("sales")
	require.NoError(t, err)

	require.Equal(t, []string{"east", "west"}, got.Index())
	sales, err := got.Column("sales")
	require.NoError(t, err)
	require.Equal(t, []float64{425, 450}, sales.Float64s())

	region, err := got.Column("region")
	require.NoError(t, err)
	require.Equal(t, []any{"east", "west"}, region.Values())
}

func TestGroupByAllNumericColumns(t *testing.T) {
	got, err := salesFrame(t).GroupBy("region").Sum()
	require.NoError(t, err)
	require.Equal(t, []string{"region", "sales", "units"}, got.ColumnNames(), "key column is not aggregated")
}

func TestGroupByMultiKey(t *testing.T) {
	df, err := NewDataFrame(
		NewSeriesString("a", []string{"x", "x", "y", "y"}),
		NewSeriesString("b", []string{"1", "2", "1", "1"}),
		NewSeriesFloat64("v", []float64{10, 20, 30, 40}),
	)
	require.NoError(t, err)

	got, err := df.GroupBy("a", "b").Sum("v")
	require.NoError(t, err)
	require.Equal(t, []string{"x|1", "x|2", "y|1"}, got.Index())

	v, err := got.Column("v")
	require.NoError(t, err)
	require.Equal(t, []float64{10, 20, 70}, v.Float64s())
}

func TestGroupByNullKeys(t *testing.T) {
	key, err := NewSeriesStringWithNulls("k", []string{"a", "", "a"}, []bool{true, false, true})
	require.NoError(t, err)
	df, err := NewDataFrame(key, NewSeriesFloat64("v", []float64{1, 2, 4}))
	require.NoError(t, err)

	t.Run("dropped by default", func(t *testing.T) {
		got, err := df.GroupBy("k").Sum("v")
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, got.Index())
		v, _ := got.Column("v")
		require.Equal(t, []float64{5}, v.Float64s())
	})

	t.Run("kept as literal null group", func(t *testing.T) {
		got, err := df.GroupBy("k").DropNulls(false).Sum("v")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "null"}, got.Index())
		v, _ := got.Column("v")
		require.Equal(t, []float64{5, 2}, v.Float64s())
	})

	t.Run("multi key drops row on any null component", func(t *testing.T) {
		df2, err := NewDataFrame(
			key.Rename("k1"),
			NewSeriesString("k2", []string{"p", "p", "q"}),
			NewSeriesFloat64("v", []float64{1, 2, 4}),
		)
		require.NoError(t, err)
		got, err := df2.GroupBy("k1", "k2").Sum("v")
		require.NoError(t, err)
		require.Equal(t, []string{"a|p", "a|q"}, got.Index())
	})
}

func TestGroupByFirstSeenOrder(t *testing.T) {
	got, err := salesFrame(t).GroupBy("region").SortKeys(false).Sum("sales")
	require.Equal(t, nil, err)
	require.Equal(t, []string{"east", "west"}, got.Index())

	df, err := NewDataFrame(
		NewSeriesString("k", []string{"z", "a", "z"}),
		NewSeriesFloat64("v", []float64{1, 2, 3}),
	)
	require.NoError(t, err)

	unsorted, err := df.GroupBy("k").SortKeys(false).Sum("v")
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a"}, unsorted.Index())

	sorted, err := df.GroupBy("k").Sum("v")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "z"}, sorted.Index())
}

func TestGroupByGetGroup(t *testing.T) {
	g := salesFrame(t).GroupBy("region")

	east, err := g.GetGroup("east")
	require.NoError(t, err)
	require.Equal(t, 3, east.Height())
	require.Equal(t, []string{"0", "2", "4"}, east.Index(), "rows keep original order")

	_, err = g.GetGroup("north")
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupByGroupsPartitionRows(t *testing.T) {
	df := salesFrame(t)
	g := df.GroupBy("region")

	keys, err := g.Groups()
	require.NoError(t, err)

	total := 0
	for _, key := range keys {
		grp, err := g.GetGroup(key)
		require.NoError(t, err)
		total += grp.Height()
	}
	require.Equal(t, df.Height(), total, "groups partition the rows")
}

func TestGroupByMissingColumn(t *testing.T) {
	_, err := salesFrame(t).GroupBy("nope").Sum("sales")
	require.ErrorIs(t, err, ErrColumnNotFound)

	_, err = salesFrame(t).GroupBy("region").Sum("nope")
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestGroupByKeysLengthMismatch(t *testing.T) {
	_, err := salesFrame(t).GroupByKeys([]string{"only", "two"}).Sum("sales")
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestGroupByFunc(t *testing.T) {
	df := salesFrame(t)
	got, err := df.GroupByFunc(func(i int) string {
		if i%2 == 0 {
			return "even"
		}
		return "odd"
	}).Sum("sales")
	require.NoError(t, err)
	require.Equal(t, []string{"even", "odd"}, got.Index())

	v, err := got.Column("sales")
	require.NoError(t, err)
	require.Equal(t, []float64{425, 450}, v.Float64s())
}

func TestGroupKeySeparatorCollision(t *testing.T) {
	// A key value containing the display separator must not merge with a
	// genuinely composite key.
	df, err := NewDataFrame(
		NewSeriesString("a", []string{"x|y", "x"}),
		NewSeriesString("b", []string{"z", "y|z"}),
		NewSeriesFloat64("v", []float64{1, 2}),
	)
	require.NoError(t, err)

	got, err := df.GroupBy("a", "b").Sum("v")
	require.NoError(t, err)
	require.Equal(t, 2, got.Height(), "distinct component splits stay distinct")
}
