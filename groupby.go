package caravel

import (
	"fmt"
	"sort"
	"strings"
)

// groupKeySeparator joins key components into the user-visible group key.
// The kernel boundary uses length-prefixed encoding instead, so values
// containing the separator never corrupt group identity there.
const groupKeySeparator = "|"

// groupPartition is the materialized result of splitting rows by key. Group
// identity is the length-prefixed encoded key, so a value containing the
// display separator can never merge two distinct groups; the display key is
// only a label.
type groupPartition struct {
	ids     []string          // encoded keys in output order
	display map[string]string // encoded key -> display key
	rows    map[string][]int  // encoded key -> row positions
}

func (p *groupPartition) size() int { return len(p.ids) }

// labels returns the display key of each group in output order.
func (p *groupPartition) labels() []string {
	out := make([]string, len(p.ids))
	for i, id := range p.ids {
		out[i] = p.display[id]
	}
	return out
}

// partitionBy splits n rows by the key components of each row. components
// returns the per-row key parts and whether any part came from a null
// element. dropNulls excludes rows with a null key part; otherwise the part
// reads "null" and the row groups normally. sortKeys orders groups
// lexicographically by display key (encoded key breaking ties), else by
// first appearance.
func partitionBy(n int, components func(i int) ([]string, bool), dropNulls, sortKeys bool) *groupPartition {
	part := &groupPartition{
		display: make(map[string]string),
		rows:    make(map[string][]int),
	}
	for i := 0; i < n; i++ {
		parts, anyNull := components(i)
		if anyNull && dropNulls {
			continue
		}
		id := string(encodeGroupKey(parts))
		if _, seen := part.rows[id]; !seen {
			part.ids = append(part.ids, id)
			part.display[id] = strings.Join(parts, groupKeySeparator)
		}
		part.rows[id] = append(part.rows[id], i)
	}
	if sortKeys {
		sort.Slice(part.ids, func(a, b int) bool {
			da, db := part.display[part.ids[a]], part.display[part.ids[b]]
			if da != db {
				return da < db
			}
			return part.ids[a] < part.ids[b]
		})
	}
	return part
}

// ============================================================================
// DataFrame grouping
// ============================================================================

// GroupBy is a deferred grouping over a DataFrame. Configuration chains off
// the handle; the partition materializes when an aggregation runs. A key
// column that does not exist surfaces as an error from the aggregation.
type GroupBy struct {
	df        *DataFrame
	by        []string
	keyFn     func(i int) string
	extKeys   []string
	dropNulls bool
	sortKeys  bool
	err       error
}

// GroupBy groups the frame's rows by the values of one or more columns.
// Rows with a null in any key column are dropped by default.
func (df *DataFrame) GroupBy(cols ...string) *GroupBy {
	g := &GroupBy{df: df, by: cols, dropNulls: true, sortKeys: true}
	if len(cols) == 0 {
		g.err = fmt.Errorf("%w: group by zero columns", ErrColumnNotFound)
		return g
	}
	for _, c := range cols {
		if _, ok := df.columns[c]; !ok {
			g.err = fmt.Errorf("%w: %q", ErrColumnNotFound, c)
			return g
		}
	}
	return g
}

// GroupByKeys groups the frame's rows by an external key slice aligned to
// the rows.
func (df *DataFrame) GroupByKeys(keys []string) *GroupBy {
	g := &GroupBy{df: df, extKeys: keys, dropNulls: true, sortKeys: true}
	if len(keys) != df.Height() {
		g.err = fmt.Errorf("%w: %d keys for %d rows", ErrLengthMismatch, len(keys), df.Height())
	}
	return g
}

// GroupByFunc groups the frame's rows by a key derived from each row
// position.
func (df *DataFrame) GroupByFunc(fn func(i int) string) *GroupBy {
	return &GroupBy{df: df, keyFn: fn, dropNulls: true, sortKeys: true}
}

// DropNulls controls whether rows with a null key component are excluded
// (default true). When false, null components group under the literal key
// "null".
func (g *GroupBy) DropNulls(v bool) *GroupBy {
	g.dropNulls = v
	return g
}

// SortKeys controls whether result groups are ordered lexicographically by
// key (default true) or by first appearance.
func (g *GroupBy) SortKeys(v bool) *GroupBy {
	g.sortKeys = v
	return g
}

func (g *GroupBy) partition() (*groupPartition, error) {
	if g.err != nil {
		return nil, g.err
	}
	n := g.df.Height()
	switch {
	case g.keyFn != nil:
		return partitionBy(n, func(i int) ([]string, bool) {
			return []string{g.keyFn(i)}, false
		}, g.dropNulls, g.sortKeys), nil
	case g.extKeys != nil:
		return partitionBy(n, func(i int) ([]string, bool) {
			return []string{g.extKeys[i]}, false
		}, g.dropNulls, g.sortKeys), nil
	}
	keyCols := make([]*Series, len(g.by))
	for i, c := range g.by {
		keyCols[i] = g.df.columns[c]
	}
	return partitionBy(n, func(i int) ([]string, bool) {
		parts := make([]string, len(keyCols))
		anyNull := false
		for j, col := range keyCols {
			if col.IsNull(i) {
				anyNull = true
			}
			parts[j] = col.displayAt(i)
		}
		return parts, anyNull
	}, g.dropNulls, g.sortKeys), nil
}

// Groups returns the group keys in result order.
func (g *GroupBy) Groups() ([]string, error) {
	part, err := g.partition()
	if err != nil {
		return nil, err
	}
	return part.labels(), nil
}

// GetGroup returns the rows belonging to one group, in their original
// order, as a new DataFrame. The key is the display key; when two groups
// share a display key the first in group order wins.
func (g *GroupBy) GetGroup(key string) (*DataFrame, error) {
	part, err := g.partition()
	if err != nil {
		return nil, err
	}
	for _, id := range part.ids {
		if part.display[id] == key {
			return g.df.take(part.rows[id]), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, key)
}

// Sum aggregates the given columns (all numeric non-key columns when none
// are named) as a per-group sum.
func (g *GroupBy) Sum(cols ...string) (*DataFrame, error) { return g.apply(AggSum, cols) }

// Mean aggregates per-group means.
func (g *GroupBy) Mean(cols ...string) (*DataFrame, error) { return g.apply(AggMean, cols) }

// Count aggregates per-group non-null counts.
func (g *GroupBy) Count(cols ...string) (*DataFrame, error) { return g.apply(AggCount, cols) }

// Min aggregates per-group minima.
func (g *GroupBy) Min(cols ...string) (*DataFrame, error) { return g.apply(AggMin, cols) }

// Max aggregates per-group maxima.
func (g *GroupBy) Max(cols ...string) (*DataFrame, error) { return g.apply(AggMax, cols) }

// Std aggregates per-group sample standard deviations.
func (g *GroupBy) Std(cols ...string) (*DataFrame, error) { return g.apply(AggStd, cols) }

// Var aggregates per-group sample variances.
func (g *GroupBy) Var(cols ...string) (*DataFrame, error) { return g.apply(AggVar, cols) }

// First takes each group's first non-null value, preserving the source
// dtype.
func (g *GroupBy) First(cols ...string) (*DataFrame, error) { return g.apply(AggFirst, cols) }

// Last takes each group's last non-null value, preserving the source dtype.
func (g *GroupBy) Last(cols ...string) (*DataFrame, error) { return g.apply(AggLast, cols) }

// Size returns the row count of each group, nulls included, as a one-column
// frame named "size".
func (g *GroupBy) Size() (*DataFrame, error) {
	part, err := g.partition()
	if err != nil {
		return nil, err
	}
	sizes := make([]int32, part.size())
	for i, id := range part.ids {
		sizes[i] = int32(len(part.rows[id]))
	}
	out := NewSeriesInt32("size", sizes)
	out.index = part.labels()
	cols := append(g.keyColumns(part), out)
	return newResultFrame(cols, part.labels(), g.df.eng)
}

// Agg runs several aggregations per column in one pass over the data. A
// column with a single function keeps its name; a column with several is
// expanded into "<col>_<func>" results, one per function.
func (g *GroupBy) Agg(specs map[string][]string) (*DataFrame, error) {
	part, err := g.partition()
	if err != nil {
		return nil, err
	}
	cols := g.keyColumns(part)

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col, ok := g.df.columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		fns := make([]AggFunc, len(specs[name]))
		for i, fname := range specs[name] {
			fn, err := ParseAggFunc(fname)
			if err != nil {
				return nil, err
			}
			fns[i] = fn
		}
		results, err := aggregateColumnMulti(part, col, fns)
		if err != nil {
			return nil, err
		}
		for i, res := range results {
			if len(fns) == 1 {
				cols = append(cols, res.Rename(name))
			} else {
				cols = append(cols, res.Rename(name+"_"+fns[i].String()))
			}
		}
	}
	return newResultFrame(cols, part.labels(), g.df.eng)
}

func (g *GroupBy) apply(fn AggFunc, cols []string) (*DataFrame, error) {
	part, err := g.partition()
	if err != nil {
		return nil, err
	}
	targets, err := g.targetColumns(fn, cols)
	if err != nil {
		return nil, err
	}
	out := g.keyColumns(part)
	for _, col := range targets {
		res, err := aggregateColumn(part, col, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Rename(col.name))
	}
	return newResultFrame(out, part.labels(), g.df.eng)
}

// targetColumns resolves the columns an aggregation applies to. With no
// explicit list, numeric reductions take every numeric non-key column and
// positional reductions (first, last, count) take every non-key column.
func (g *GroupBy) targetColumns(fn AggFunc, cols []string) ([]*Series, error) {
	isKey := make(map[string]bool, len(g.by))
	for _, c := range g.by {
		isKey[c] = true
	}
	if len(cols) == 0 {
		var out []*Series
		for _, name := range g.df.colOrder {
			if isKey[name] {
				continue
			}
			col := g.df.columns[name]
			if fn.needsNumeric() && !col.dtype.IsNumeric() {
				continue
			}
			out = append(out, col)
		}
		return out, nil
	}
	out := make([]*Series, len(cols))
	for i, name := range cols {
		col, ok := g.df.columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		if fn.needsNumeric() && !col.dtype.IsNumeric() {
			return nil, fmt.Errorf("%w: %s on %s column %q", ErrTypeMismatch, fn, col.dtype, name)
		}
		out[i] = col
	}
	return out, nil
}

// keyColumns reconstructs the key columns of the result frame from each
// group's first row, preserving the key dtypes. External and functional
// groupings produce a single String key column.
func (g *GroupBy) keyColumns(part *groupPartition) []*Series {
	if len(g.by) == 0 {
		out := NewSeriesString("key", part.labels())
		out.index = part.labels()
		return []*Series{out}
	}
	first := make([]int, part.size())
	for i, id := range part.ids {
		first[i] = part.rows[id][0]
	}
	out := make([]*Series, len(g.by))
	for j, name := range g.by {
		col := g.df.columns[name].gather(first)
		col.index = part.labels()
		out[j] = col
	}
	return out
}

func newResultFrame(cols []*Series, keys []string, eng *Engine) (*DataFrame, error) {
	df, err := NewDataFrame(cols...)
	if err != nil {
		return nil, err
	}
	df.index = append([]string(nil), keys...)
	if eng != nil {
		df.eng = eng
	}
	return df, nil
}

// ============================================================================
// Series grouping
// ============================================================================

// SeriesGroupBy is a deferred grouping of a single series by parallel key
// labels.
type SeriesGroupBy struct {
	s        *Series
	keys     []string
	sortKeys bool
	err      error
}

// GroupByIndex groups the series' values by its own index labels.
func (s *Series) GroupByIndex() *SeriesGroupBy {
	return &SeriesGroupBy{s: s, keys: s.index, sortKeys: true}
}

// GroupByKeys groups the series' values by an external key slice aligned to
// its elements.
func (s *Series) GroupByKeys(keys []string) *SeriesGroupBy {
	g := &SeriesGroupBy{s: s, keys: keys, sortKeys: true}
	if len(keys) != s.Len() {
		g.err = fmt.Errorf("%w: %d keys for %d values", ErrLengthMismatch, len(keys), s.Len())
	}
	return g
}

// SortKeys controls lexicographic (default) versus first-seen group order.
func (g *SeriesGroupBy) SortKeys(v bool) *SeriesGroupBy {
	g.sortKeys = v
	return g
}

func (g *SeriesGroupBy) partition() (*groupPartition, error) {
	if g.err != nil {
		return nil, g.err
	}
	return partitionBy(g.s.Len(), func(i int) ([]string, bool) {
		return []string{g.keys[i]}, false
	}, false, g.sortKeys), nil
}

// Sum returns the per-group sum as a series indexed by group key.
func (g *SeriesGroupBy) Sum() (*Series, error) { return g.apply(AggSum) }

// Mean returns the per-group mean.
func (g *SeriesGroupBy) Mean() (*Series, error) { return g.apply(AggMean) }

// Count returns the per-group non-null count.
func (g *SeriesGroupBy) Count() (*Series, error) { return g.apply(AggCount) }

// Min returns the per-group minimum.
func (g *SeriesGroupBy) Min() (*Series, error) { return g.apply(AggMin) }

// Max returns the per-group maximum.
func (g *SeriesGroupBy) Max() (*Series, error) { return g.apply(AggMax) }

// Std returns the per-group sample standard deviation.
func (g *SeriesGroupBy) Std() (*Series, error) { return g.apply(AggStd) }

// Var returns the per-group sample variance.
func (g *SeriesGroupBy) Var() (*Series, error) { return g.apply(AggVar) }

// First returns each group's first non-null value.
func (g *SeriesGroupBy) First() (*Series, error) { return g.apply(AggFirst) }

// Last returns each group's last non-null value.
func (g *SeriesGroupBy) Last() (*Series, error) { return g.apply(AggLast) }

// Size returns each group's row count, nulls included.
func (g *SeriesGroupBy) Size() (*Series, error) { return g.apply(AggSize) }

func (g *SeriesGroupBy) apply(fn AggFunc) (*Series, error) {
	part, err := g.partition()
	if err != nil {
		return nil, err
	}
	if fn.needsNumeric() && !g.s.dtype.IsNumeric() {
		return nil, fmt.Errorf("%w: %s on %s series", ErrTypeMismatch, fn, g.s.dtype)
	}
	return aggregateColumn(part, g.s, fn)
}
