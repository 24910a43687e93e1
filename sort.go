package caravel

import (
	"sort"
	"strings"
)

// sortIndices returns the stable ordering permutation for a single series.
// Numeric dtypes go through the engine; everything else sorts host-side.
// Nulls cluster at the end (nullsLast) or the beginning, independent of
// ascending.
func sortIndices(s *Series, ascending, nullsLast bool) []int {
	switch s.dtype {
	case Float64:
		return s.eng.sortIndicesF64(s.f64, ascending, nullsLast)
	case Int32:
		return s.eng.sortIndicesI32(s.asInt32Sentinel(), ascending, nullsLast)
	}
	idx := make([]int, s.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lessSeries(s, idx[a], idx[b], ascending, nullsLast)
	})
	return idx
}

// sortIndices2 returns the stable ordering permutation over two key series
// of equal length; the second breaks ties in the first. Homogeneous numeric
// pairs go through the engine.
func sortIndices2(primary, secondary *Series, ascPrimary, ascSecondary, nullsLast bool) ([]int, error) {
	if primary.Len() != secondary.Len() {
		return nil, ErrLengthMismatch
	}
	if primary.dtype == Float64 && secondary.dtype == Float64 {
		return primary.eng.sortIndices2F64(primary.f64, secondary.f64, ascPrimary, ascSecondary, nullsLast), nil
	}
	if primary.dtype == Int32 && secondary.dtype == Int32 {
		return primary.eng.sortIndices2I32(primary.asInt32Sentinel(), secondary.asInt32Sentinel(), ascPrimary, ascSecondary, nullsLast), nil
	}
	idx := make([]int, primary.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if c := compareSeries(primary, idx[a], idx[b], ascPrimary, nullsLast); c != 0 {
			return c < 0
		}
		return compareSeries(secondary, idx[a], idx[b], ascSecondary, nullsLast) < 0
	})
	return idx, nil
}

func lessSeries(s *Series, a, b int, ascending, nullsLast bool) bool {
	return compareSeries(s, a, b, ascending, nullsLast) < 0
}

// compareSeries orders two positions of a series. Null placement follows
// nullsLast regardless of direction; ascending only affects the order of
// non-null values.
func compareSeries(s *Series, a, b int, ascending, nullsLast bool) int {
	an, bn := s.IsNull(a), s.IsNull(b)
	switch {
	case an && bn:
		return 0
	case an:
		if nullsLast {
			return 1
		}
		return -1
	case bn:
		if nullsLast {
			return -1
		}
		return 1
	}
	c := compareValues(s, a, b)
	if !ascending {
		c = -c
	}
	return c
}

func compareValues(s *Series, a, b int) int {
	switch s.dtype {
	case Float64:
		switch {
		case s.f64[a] < s.f64[b]:
			return -1
		case s.f64[a] > s.f64[b]:
			return 1
		}
		return 0
	case Int32:
		switch {
		case s.i32[a] < s.i32[b]:
			return -1
		case s.i32[a] > s.i32[b]:
			return 1
		}
		return 0
	case String:
		return strings.Compare(s.str[a], s.str[b])
	case Bool:
		switch {
		case !s.b[a] && s.b[b]:
			return -1
		case s.b[a] && !s.b[b]:
			return 1
		}
		return 0
	case DateTime:
		switch {
		case s.ts[a].Before(s.ts[b]):
			return -1
		case s.ts[a].After(s.ts[b]):
			return 1
		}
		return 0
	}
	return 0
}
