package caravel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataFrameString(t *testing.T) {
	out := salesFrame(t).String()

	require.Contains(t, out, "shape: (5, 3)")
	require.Contains(t, out, "region")
	require.Contains(t, out, "Float64")
	require.Contains(t, out, "east")
}

func TestDataFrameStringTruncatesRows(t *testing.T) {
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = float64(i)
	}
	df, err := NewDataFrame(NewSeriesFloat64("v", vals))
	require.NoError(t, err)

	out := df.String()
	require.Contains(t, out, "…")
	require.Less(t, strings.Count(out, "\n"), 25)
}

func TestDataFrameStringEmpty(t *testing.T) {
	df, err := NewDataFrame()
	require.NoError(t, err)
	require.Equal(t, "DataFrame(empty)", df.String())
}

func TestSeriesString(t *testing.T) {
	s, err := NewSeries("score", []any{1.5, nil}, WithIndex([]string{"a", "b"}))
	require.NoError(t, err)

	out := s.String()
	require.Contains(t, out, "Series: 'score' (Float64)")
	require.Contains(t, out, "length: 2")
	require.Contains(t, out, "null")
	require.Contains(t, out, "1.5000")
}

func TestDisplayAsciiStyle(t *testing.T) {
	cfg := DefaultDisplayConfig()
	cfg.TableStyle = "ascii"
	out := salesFrame(t).StringWithConfig(cfg)
	require.Contains(t, out, "+")
	require.NotContains(t, out, "╭")
}
