package caravel

import (
	"fmt"
)

// DataFrame is an ordered collection of equal-length Series sharing one row
// index. Like Series, a DataFrame is immutable: transforming operations
// return new frames.
type DataFrame struct {
	columns  map[string]*Series
	colOrder []string
	index    []string
	eng      *Engine
}

// NewDataFrame assembles a frame from columns. All columns must have the
// same length and distinct names; the first column's index labels become the
// frame's row index.
func NewDataFrame(cols ...*Series) (*DataFrame, error) {
	df := &DataFrame{
		columns: make(map[string]*Series, len(cols)),
		eng:     defaultEngine,
	}
	for _, col := range cols {
		if len(df.colOrder) > 0 && col.Len() != df.Height() {
			return nil, fmt.Errorf("%w: column %q has %d rows, frame has %d",
				ErrLengthMismatch, col.name, col.Len(), df.Height())
		}
		if _, dup := df.columns[col.name]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.name)
		}
		df.columns[col.name] = col
		df.colOrder = append(df.colOrder, col.name)
	}
	if len(cols) > 0 {
		df.index = append([]string(nil), cols[0].index...)
		if cols[0].eng != nil {
			df.eng = cols[0].eng
		}
	}
	return df, nil
}

// Height returns the number of rows.
func (df *DataFrame) Height() int {
	if len(df.colOrder) == 0 {
		return 0
	}
	return df.columns[df.colOrder[0]].Len()
}

// Width returns the number of columns.
func (df *DataFrame) Width() int { return len(df.colOrder) }

// ColumnNames returns the column names in frame order.
func (df *DataFrame) ColumnNames() []string {
	return append([]string(nil), df.colOrder...)
}

// Index returns a copy of the row index labels.
func (df *DataFrame) Index() []string {
	return append([]string(nil), df.index...)
}

// Column returns the named column.
func (df *DataFrame) Column(name string) (*Series, error) {
	col, ok := df.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return col, nil
}

// HasColumn reports whether the frame contains the named column.
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.columns[name]
	return ok
}

// WithEngine returns the frame with its operations routed through a
// different engine.
func (df *DataFrame) WithEngine(e *Engine) *DataFrame {
	if e == nil {
		e = defaultEngine
	}
	out := df.shallow()
	out.eng = e
	for _, name := range out.colOrder {
		out.columns[name] = out.columns[name].WithEngine(e)
	}
	return out
}

func (df *DataFrame) shallow() *DataFrame {
	out := &DataFrame{
		columns:  make(map[string]*Series, len(df.columns)),
		colOrder: append([]string(nil), df.colOrder...),
		index:    df.index,
		eng:      df.eng,
	}
	for name, col := range df.columns {
		out.columns[name] = col
	}
	return out
}

// Select returns a frame with only the named columns, in the given order.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	cols := make([]*Series, len(names))
	for i, name := range names {
		col, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	out, err := NewDataFrame(cols...)
	if err != nil {
		return nil, err
	}
	out.index = append([]string(nil), df.index...)
	out.eng = df.eng
	return out, nil
}

// Drop returns a frame without the named columns.
func (df *DataFrame) Drop(names ...string) (*DataFrame, error) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if !df.HasColumn(name) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		drop[name] = true
	}
	keep := make([]string, 0, df.Width())
	for _, name := range df.colOrder {
		if !drop[name] {
			keep = append(keep, name)
		}
	}
	return df.Select(keep...)
}

// WithColumn returns a frame with the column added, or replaced when a
// column of that name already exists. The column length must match the
// frame height (any length is accepted into an empty frame).
func (df *DataFrame) WithColumn(col *Series) (*DataFrame, error) {
	if df.Width() > 0 && col.Len() != df.Height() {
		return nil, fmt.Errorf("%w: column %q has %d rows, frame has %d",
			ErrLengthMismatch, col.name, col.Len(), df.Height())
	}
	out := df.shallow()
	if !df.HasColumn(col.name) {
		out.colOrder = append(out.colOrder, col.name)
	}
	out.columns[col.name] = col
	if df.Width() == 0 {
		out.index = append([]string(nil), col.index...)
	}
	return out, nil
}

// RenameColumn returns a frame with one column renamed, keeping its
// position.
func (df *DataFrame) RenameColumn(from, to string) (*DataFrame, error) {
	col, err := df.Column(from)
	if err != nil {
		return nil, err
	}
	if from == to {
		return df, nil
	}
	if df.HasColumn(to) {
		return nil, fmt.Errorf("duplicate column %q", to)
	}
	out := df.shallow()
	delete(out.columns, from)
	out.columns[to] = col.Rename(to)
	for i, name := range out.colOrder {
		if name == from {
			out.colOrder[i] = to
		}
	}
	return out, nil
}

// Filter returns the rows where mask is true, in order. The mask length
// must equal the frame height.
func (df *DataFrame) Filter(mask []bool) (*DataFrame, error) {
	if len(mask) != df.Height() {
		return nil, fmt.Errorf("%w: mask length %d for %d rows", ErrLengthMismatch, len(mask), df.Height())
	}
	keep := make([]int, 0, len(mask))
	for i, m := range mask {
		if m {
			keep = append(keep, i)
		}
	}
	return df.take(keep), nil
}

// FilterBy filters rows by a Bool column of the frame itself.
func (df *DataFrame) FilterBy(col string) (*DataFrame, error) {
	c, err := df.Column(col)
	if err != nil {
		return nil, err
	}
	if c.dtype != Bool {
		return nil, fmt.Errorf("%w: filter column %q is %s, want Bool", ErrTypeMismatch, col, c.dtype)
	}
	mask := make([]bool, c.Len())
	for i := range mask {
		v, ok := c.GetBool(i)
		mask[i] = ok && v
	}
	return df.Filter(mask)
}

// take reorders or subsets rows by position across every column and the
// index.
func (df *DataFrame) take(rows []int) *DataFrame {
	out := df.shallow()
	out.index = gatherStrings(df.index, rows)
	for _, name := range df.colOrder {
		out.columns[name] = df.columns[name].gather(rows)
	}
	return out
}

// SortBy returns the frame with rows stably ordered by one column. Nulls go
// after all non-null values when nullsLast is true, before them otherwise,
// regardless of direction.
func (df *DataFrame) SortBy(col string, ascending, nullsLast bool) (*DataFrame, error) {
	c, err := df.Column(col)
	if err != nil {
		return nil, err
	}
	return df.take(sortIndices(c, ascending, nullsLast)), nil
}

// SortBy2 orders rows by a primary column with a secondary column breaking
// ties, each with its own direction.
func (df *DataFrame) SortBy2(col1 string, asc1 bool, col2 string, asc2 bool, nullsLast bool) (*DataFrame, error) {
	c1, err := df.Column(col1)
	if err != nil {
		return nil, err
	}
	c2, err := df.Column(col2)
	if err != nil {
		return nil, err
	}
	idx, err := sortIndices2(c1, c2, asc1, asc2, nullsLast)
	if err != nil {
		return nil, err
	}
	return df.take(idx), nil
}

// Head returns the first n rows.
func (df *DataFrame) Head(n int) *DataFrame {
	if n < 0 {
		n = 0
	}
	if n > df.Height() {
		n = df.Height()
	}
	return df.take(rowRange(0, n))
}

// Tail returns the last n rows.
func (df *DataFrame) Tail(n int) *DataFrame {
	if n < 0 {
		n = 0
	}
	if n > df.Height() {
		n = df.Height()
	}
	return df.take(rowRange(df.Height()-n, df.Height()))
}

// Slice returns rows in [start, end), clamped to the frame bounds.
func (df *DataFrame) Slice(start, end int) *DataFrame {
	if start < 0 {
		start = 0
	}
	if end > df.Height() {
		end = df.Height()
	}
	if start >= end {
		return df.take(nil)
	}
	return df.take(rowRange(start, end))
}

func rowRange(start, end int) []int {
	rows := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, i)
	}
	return rows
}

// FillNA returns a frame with every null in value-compatible columns
// replaced by value. Columns whose dtype cannot hold the value pass through
// unchanged.
func (df *DataFrame) FillNA(value any) *DataFrame {
	out := df.shallow()
	for _, name := range df.colOrder {
		filled, err := df.columns[name].FillNA(value)
		if err != nil {
			continue
		}
		out.columns[name] = filled
	}
	return out
}

// Describe summarizes every numeric column with count, mean, std, min and
// max, one summary row each.
func (df *DataFrame) Describe() (*DataFrame, error) {
	stats := []string{"count", "mean", "std", "min", "max"}
	var cols []*Series
	for _, name := range df.colOrder {
		src := df.columns[name]
		if !src.dtype.IsNumeric() {
			continue
		}
		vals := []float64{
			float64(src.Count()),
			src.Mean(),
			src.Std(),
			src.Min(),
			src.Max(),
		}
		col := NewSeriesFloat64(name, vals)
		col.index = append([]string(nil), stats...)
		col.eng = df.eng
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, ErrEmptyDataFrame
	}
	out, err := NewDataFrame(cols...)
	if err != nil {
		return nil, err
	}
	out.index = stats
	out.eng = df.eng
	return out, nil
}
