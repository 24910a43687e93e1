package caravel

import (
	"bytes"
	"math"
	"sort"
)

// Portable implementations of every kernel operation. These run in-process,
// allocate only host memory, and define the reference numeric semantics the
// accelerated kernel must match: NaN is the Float64 null and is skipped by
// every reduction, int32 buffers use math.MinInt32 as the null sentinel, and
// std/var use the sample (N-1) formula.

// reduceOp identifies a scalar reduction.
type reduceOp uint8

const (
	reduceSum reduceOp = iota
	reduceMean
	reduceStd
	reduceVar
	reduceMin
	reduceMax
	reduceCount
)

// int32Null is the in-band null sentinel for int32 kernel buffers.
const int32Null = math.MinInt32

func portableReduceF64(data []float64, op reduceOp) float64 {
	switch op {
	case reduceSum:
		sum := 0.0
		for _, v := range data {
			if !math.IsNaN(v) {
				sum += v
			}
		}
		return sum
	case reduceMean:
		sum, cnt := 0.0, 0
		for _, v := range data {
			if !math.IsNaN(v) {
				sum += v
				cnt++
			}
		}
		if cnt == 0 {
			return math.NaN()
		}
		return sum / float64(cnt)
	case reduceStd:
		return math.Sqrt(portableReduceF64(data, reduceVar))
	case reduceVar:
		sum, cnt := 0.0, 0
		for _, v := range data {
			if !math.IsNaN(v) {
				sum += v
				cnt++
			}
		}
		if cnt < 2 {
			return math.NaN()
		}
		mean := sum / float64(cnt)
		sumsq := 0.0
		for _, v := range data {
			if !math.IsNaN(v) {
				d := v - mean
				sumsq += d * d
			}
		}
		return sumsq / float64(cnt-1)
	case reduceMin:
		m, seen := math.Inf(1), false
		for _, v := range data {
			if !math.IsNaN(v) {
				if v < m {
					m = v
				}
				seen = true
			}
		}
		if !seen {
			return math.NaN()
		}
		return m
	case reduceMax:
		m, seen := math.Inf(-1), false
		for _, v := range data {
			if !math.IsNaN(v) {
				if v > m {
					m = v
				}
				seen = true
			}
		}
		if !seen {
			return math.NaN()
		}
		return m
	case reduceCount:
		cnt := 0
		for _, v := range data {
			if !math.IsNaN(v) {
				cnt++
			}
		}
		return float64(cnt)
	default:
		return math.NaN()
	}
}

// portableGroupReduceF64 partitions data by the per-row encoded key and
// reduces each group. Groups come back ordered by bytewise comparison of the
// encoded keys, one result value per group. Row order within a group is
// original row order, which sum/mean/count/min/max/std/var do not observe.
func portableGroupReduceF64(data []float64, keys [][]byte, op reduceOp) ([][]byte, []float64) {
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, k := range keys {
		sk := string(k)
		if _, ok := groups[sk]; !ok {
			order = append(order, sk)
		}
		groups[sk] = append(groups[sk], i)
	}
	sort.Strings(order)

	outKeys := make([][]byte, len(order))
	outVals := make([]float64, len(order))
	buf := make([]float64, 0, len(data))
	for gi, sk := range order {
		buf = buf[:0]
		for _, row := range groups[sk] {
			buf = append(buf, data[row])
		}
		outKeys[gi] = []byte(sk)
		outVals[gi] = portableReduceF64(buf, op)
	}
	return outKeys, outVals
}

// portableSortIndicesF64 returns a stable permutation of row positions.
// NaN is null: it clusters at the position dictated by nullsLast regardless
// of direction; ascending only flips the order of non-null values.
func portableSortIndicesF64(data []float64, ascending, nullsLast bool) []int {
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return lessF64(data[idx[x]], data[idx[y]], ascending, nullsLast)
	})
	return idx
}

func lessF64(a, b float64, ascending, nullsLast bool) bool {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return false
	case an:
		return !nullsLast
	case bn:
		return nullsLast
	}
	if ascending {
		return a < b
	}
	return a > b
}

func portableSortIndices2F64(col1, col2 []float64, asc1, asc2, nullsLast bool) []int {
	idx := make([]int, len(col1))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		a, b := idx[x], idx[y]
		if c := compareF64(col1[a], col1[b], asc1, nullsLast); c != 0 {
			return c < 0
		}
		return compareF64(col2[a], col2[b], asc2, nullsLast) < 0
	})
	return idx
}

func compareF64(a, b float64, ascending, nullsLast bool) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
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
	if a == b {
		return 0
	}
	less := a < b
	if !ascending {
		less = !less
	}
	if less {
		return -1
	}
	return 1
}

func portableSortIndicesI32(data []int32, ascending, nullsLast bool) []int {
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return compareI32(data[idx[x]], data[idx[y]], ascending, nullsLast) < 0
	})
	return idx
}

func portableSortIndices2I32(col1, col2 []int32, asc1, asc2, nullsLast bool) []int {
	idx := make([]int, len(col1))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		a, b := idx[x], idx[y]
		if c := compareI32(col1[a], col1[b], asc1, nullsLast); c != 0 {
			return c < 0
		}
		return compareI32(col2[a], col2[b], asc2, nullsLast) < 0
	})
	return idx
}

func compareI32(a, b int32, ascending, nullsLast bool) int {
	an, bn := a == int32Null, b == int32Null
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
	if a == b {
		return 0
	}
	less := a < b
	if !ascending {
		less = !less
	}
	if less {
		return -1
	}
	return 1
}

func portableFilterF64(data []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(data))
	for i, keep := range mask {
		if keep {
			out = append(out, data[i])
		}
	}
	return out
}

// portableIsInF64 tests membership with an absolute tolerance. Candidate
// sets are small in practice, so the scan is linear per element.
func portableIsInF64(data, candidates []float64, tol float64) []bool {
	if tol <= 0 {
		tol = defaultIsInTolerance
	}
	out := make([]bool, len(data))
	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		for _, c := range candidates {
			if math.Abs(v-c) < tol {
				out[i] = true
				break
			}
		}
	}
	return out
}

func portableIsInI32(data, candidates []int32) []bool {
	set := make(map[int32]struct{}, len(candidates))
	for _, c := range candidates {
		set[c] = struct{}{}
	}
	out := make([]bool, len(data))
	for i, v := range data {
		if v == int32Null {
			continue
		}
		_, out[i] = set[v]
	}
	return out
}

func portableIsInString(data, candidates []string) []bool {
	set := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		set[c] = struct{}{}
	}
	out := make([]bool, len(data))
	for i, v := range data {
		_, out[i] = set[v]
	}
	return out
}

// encodeGroupKey serializes composite key components into a single binary
// key for the kernel boundary. Each component is length-prefixed, so a
// component containing the display delimiter cannot collide with a
// neighboring component.
func encodeGroupKey(components []string) []byte {
	n := 4
	for _, c := range components {
		n += 4 + len(c)
	}
	buf := make([]byte, 0, n)
	buf = appendUint32(buf, uint32(len(components)))
	for _, c := range components {
		buf = appendUint32(buf, uint32(len(c)))
		buf = append(buf, c...)
	}
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func sameEncodedKey(a, b []byte) bool {
	return bytes.Equal(a, b)
}
