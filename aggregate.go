package caravel

import (
	"fmt"
	"math"
	"strings"
)

// AggFunc identifies an aggregation applied per group.
type AggFunc uint8

const (
	AggSum AggFunc = iota
	AggMean
	AggCount
	AggMin
	AggMax
	AggStd
	AggVar
	AggFirst
	AggLast
	AggSize
)

var aggFuncNames = map[AggFunc]string{
	AggSum:   "sum",
	AggMean:  "mean",
	AggCount: "count",
	AggMin:   "min",
	AggMax:   "max",
	AggStd:   "std",
	AggVar:   "var",
	AggFirst: "first",
	AggLast:  "last",
	AggSize:  "size",
}

func (f AggFunc) String() string {
	if name, ok := aggFuncNames[f]; ok {
		return name
	}
	return fmt.Sprintf("agg(%d)", uint8(f))
}

// needsNumeric reports whether the aggregation is only defined on numeric
// columns. Positional aggregations and counting work on any dtype.
func (f AggFunc) needsNumeric() bool {
	switch f {
	case AggSum, AggMean, AggMin, AggMax, AggStd, AggVar:
		return true
	}
	return false
}

// ParseAggFunc resolves an aggregation by name, case-insensitively.
func ParseAggFunc(name string) (AggFunc, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for fn, fname := range aggFuncNames {
		if fname == n {
			return fn, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAggregation, name)
}

func (f AggFunc) reduceOp() (reduceOp, bool) {
	switch f {
	case AggSum:
		return reduceSum, true
	case AggMean:
		return reduceMean, true
	case AggMin:
		return reduceMin, true
	case AggMax:
		return reduceMax, true
	case AggStd:
		return reduceStd, true
	case AggVar:
		return reduceVar, true
	}
	return 0, false
}

// aggregateColumn reduces one column over a partition, producing a series
// with one element per group, indexed by group key in partition order.
func aggregateColumn(part *groupPartition, col *Series, fn AggFunc) (*Series, error) {
	switch fn {
	case AggCount:
		return aggCount(part, col), nil
	case AggSize:
		return aggSize(part, col), nil
	case AggFirst:
		return aggEdge(part, col, false), nil
	case AggLast:
		return aggEdge(part, col, true), nil
	}
	op, ok := fn.reduceOp()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAggregation, fn)
	}
	data := col.asFloat64()
	if data == nil {
		return nil, fmt.Errorf("%w: %s on %s column %q", ErrTypeMismatch, fn, col.dtype, col.name)
	}

	// Align values with their encoded group key; rows dropped by the
	// partition never reach the reduction.
	vals := make([]float64, 0, len(data))
	keys := make([][]byte, 0, len(data))
	for _, id := range part.ids {
		enc := []byte(id)
		for _, row := range part.rows[id] {
			vals = append(vals, data[row])
			keys = append(keys, enc)
		}
	}
	byKey := col.eng.groupReduceF64(vals, keys, op)

	out := make([]float64, part.size())
	for i, id := range part.ids {
		v, ok := byKey[id]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return resultSeriesF64(col, part, out), nil
}

// aggregateColumnMulti computes several aggregations of one column from a
// single partitioning pass: each group's values are materialized once and
// every requested function reduces the same buffer, so results match the
// single-aggregation path exactly.
func aggregateColumnMulti(part *groupPartition, col *Series, fns []AggFunc) ([]*Series, error) {
	needBuf := false
	for _, fn := range fns {
		if _, ok := fn.reduceOp(); ok {
			needBuf = true
		}
	}
	var groupBufs [][]float64
	if needBuf {
		data := col.asFloat64()
		if data == nil {
			return nil, fmt.Errorf("%w: numeric aggregation on %s column %q", ErrTypeMismatch, col.dtype, col.name)
		}
		groupBufs = make([][]float64, part.size())
		for i, id := range part.ids {
			rows := part.rows[id]
			buf := make([]float64, len(rows))
			for j, row := range rows {
				buf[j] = data[row]
			}
			groupBufs[i] = buf
		}
	}

	out := make([]*Series, len(fns))
	for fi, fn := range fns {
		if op, ok := fn.reduceOp(); ok {
			vals := make([]float64, part.size())
			for i := range groupBufs {
				vals[i] = portableReduceF64(groupBufs[i], op)
			}
			out[fi] = resultSeriesF64(col, part, vals)
			continue
		}
		res, err := aggregateColumn(part, col, fn)
		if err != nil {
			return nil, err
		}
		out[fi] = res
	}
	return out, nil
}

func aggCount(part *groupPartition, col *Series) *Series {
	counts := make([]int32, part.size())
	for i, id := range part.ids {
		for _, row := range part.rows[id] {
			if !col.IsNull(row) {
				counts[i]++
			}
		}
	}
	out := NewSeriesInt32(col.name, counts)
	out.index = part.labels()
	out.eng = col.eng
	return out
}

func aggSize(part *groupPartition, col *Series) *Series {
	sizes := make([]int32, part.size())
	for i, id := range part.ids {
		sizes[i] = int32(len(part.rows[id]))
	}
	out := NewSeriesInt32(col.name, sizes)
	out.index = part.labels()
	out.eng = col.eng
	return out
}

// aggEdge takes each group's first (or last) non-null value, preserving the
// source dtype. A group with no non-null value yields a null element.
func aggEdge(part *groupPartition, col *Series, last bool) *Series {
	positions := make([]int, part.size())
	found := make([]bool, part.size())
	for i, id := range part.ids {
		rows := part.rows[id]
		positions[i] = rows[0]
		if last {
			for j := len(rows) - 1; j >= 0; j-- {
				if !col.IsNull(rows[j]) {
					positions[i] = rows[j]
					found[i] = true
					break
				}
			}
		} else {
			for _, row := range rows {
				if !col.IsNull(row) {
					positions[i] = row
					found[i] = true
					break
				}
			}
		}
	}
	out := col.gather(positions)
	out.index = part.labels()
	for i, ok := range found {
		if ok {
			continue
		}
		if out.dtype == Float64 {
			out.f64[i] = math.NaN()
		} else {
			out.setNull(i, out.Len())
		}
	}
	return out
}

func resultSeriesF64(col *Series, part *groupPartition, vals []float64) *Series {
	out := NewSeriesFloat64(col.name, vals)
	out.index = part.labels()
	out.eng = col.eng
	return out
}
