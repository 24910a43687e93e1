package caravel

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// defaultIsInTolerance is the absolute tolerance used for numeric membership
// tests. Repeated floating round-trips make exact equality unreliable.
const defaultIsInTolerance = 1e-9

// Series is a named, typed, indexed 1-D column. Values live in a dense
// buffer per dtype; Float64 carries nulls in-band as NaN, every other dtype
// carries an explicit validity slice (nil validity means no nulls).
//
// A Series is immutable once constructed: every transforming operation
// returns a new Series and the underlying buffers are never written again
// after publication.
type Series struct {
	name  string
	dtype DType
	index []string
	eng   *Engine

	f64   []float64
	i32   []int32
	str   []string
	b     []bool
	ts    []time.Time
	valid []bool
}

// SeriesOption configures construction of a Series.
type SeriesOption func(*seriesConfig)

type seriesConfig struct {
	index    []string
	dtype    DType
	hasDType bool
	eng      *Engine
}

// WithIndex sets explicit index labels. Length must match the values.
func WithIndex(labels []string) SeriesOption {
	return func(c *seriesConfig) { c.index = labels }
}

// WithDType forces the dtype instead of inferring it.
func WithDType(dt DType) SeriesOption {
	return func(c *seriesConfig) { c.dtype = dt; c.hasDType = true }
}

// WithDTypeName forces the dtype by name. Unrecognized names fall back to
// String rather than failing (permissive construction).
func WithDTypeName(name string) SeriesOption {
	return func(c *seriesConfig) {
		dt, _ := ParseDType(name)
		c.dtype = dt
		c.hasDType = true
	}
}

// WithEngine routes the Series' numeric operations through the given engine.
func WithEngine(e *Engine) SeriesOption {
	return func(c *seriesConfig) { c.eng = e }
}

// NewSeries builds a Series from boxed values, inferring the dtype unless
// one is forced. nil elements are nulls. An explicit index whose length does
// not match the values is a construction error.
func NewSeries(name string, values []any, opts ...SeriesOption) (*Series, error) {
	cfg := seriesConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.index != nil && len(cfg.index) != len(values) {
		return nil, fmt.Errorf("%w: %d index labels for %d values", ErrLengthMismatch, len(cfg.index), len(values))
	}

	dt := cfg.dtype
	if !cfg.hasDType {
		dt = inferDType(values)
	}

	s := &Series{name: name, dtype: dt, eng: cfg.eng}
	if s.eng == nil {
		s.eng = defaultEngine
	}
	if cfg.index != nil {
		s.index = append([]string(nil), cfg.index...)
	} else {
		s.index = defaultIndex(len(values))
	}

	if err := s.fillFromBoxed(values); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Series) fillFromBoxed(values []any) error {
	n := len(values)
	switch s.dtype {
	case Float64:
		s.f64 = make([]float64, n)
		for i, v := range values {
			if v == nil {
				s.f64[i] = math.NaN()
				continue
			}
			f, ok := toFloat64(v)
			if !ok {
				return fmt.Errorf("%w: %T at position %d is not Float64", ErrTypeMismatch, v, i)
			}
			s.f64[i] = f
		}
	case Int32:
		s.i32 = make([]int32, n)
		for i, v := range values {
			if v == nil {
				s.setNull(i, n)
				continue
			}
			iv, ok := toInt32(v)
			if !ok {
				return fmt.Errorf("%w: %T at position %d is not Int32", ErrTypeMismatch, v, i)
			}
			s.i32[i] = iv
		}
	case String:
		s.str = make([]string, n)
		for i, v := range values {
			if v == nil {
				s.setNull(i, n)
				continue
			}
			s.str[i] = formatBoxed(v)
		}
	case Bool:
		s.b = make([]bool, n)
		for i, v := range values {
			if v == nil {
				s.setNull(i, n)
				continue
			}
			bv, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%w: %T at position %d is not Bool", ErrTypeMismatch, v, i)
			}
			s.b[i] = bv
		}
	case DateTime:
		s.ts = make([]time.Time, n)
		for i, v := range values {
			if v == nil {
				s.setNull(i, n)
				continue
			}
			tv, ok := v.(time.Time)
			if !ok {
				return fmt.Errorf("%w: %T at position %d is not DateTime", ErrTypeMismatch, v, i)
			}
			s.ts[i] = tv
		}
	}
	return nil
}

func (s *Series) setNull(i, n int) {
	if s.valid == nil {
		s.valid = make([]bool, n)
		for j := range s.valid {
			s.valid[j] = true
		}
	}
	s.valid[i] = false
}

// NewSeriesFloat64 creates a Float64 Series from a dense buffer. NaN
// elements are nulls.
func NewSeriesFloat64(name string, data []float64) *Series {
	s := &Series{name: name, dtype: Float64, eng: defaultEngine}
	s.f64 = append([]float64(nil), data...)
	s.index = defaultIndex(len(data))
	return s
}

// NewSeriesInt32 creates an Int32 Series with no nulls.
func NewSeriesInt32(name string, data []int32) *Series {
	s := &Series{name: name, dtype: Int32, eng: defaultEngine}
	s.i32 = append([]int32(nil), data...)
	s.index = defaultIndex(len(data))
	return s
}

// NewSeriesInt32WithNulls creates an Int32 Series. valid marks which
// elements are non-null; its length must match data.
func NewSeriesInt32WithNulls(name string, data []int32, valid []bool) (*Series, error) {
	if len(valid) != len(data) {
		return nil, fmt.Errorf("%w: %d validity flags for %d values", ErrLengthMismatch, len(valid), len(data))
	}
	s := NewSeriesInt32(name, data)
	s.valid = append([]bool(nil), valid...)
	return s, nil
}

// NewSeriesString creates a String Series with no nulls.
func NewSeriesString(name string, data []string) *Series {
	s := &Series{name: name, dtype: String, eng: defaultEngine}
	s.str = append([]string(nil), data...)
	s.index = defaultIndex(len(data))
	return s
}

// NewSeriesStringWithNulls creates a String Series with explicit validity.
func NewSeriesStringWithNulls(name string, data []string, valid []bool) (*Series, error) {
	if len(valid) != len(data) {
		return nil, fmt.Errorf("%w: %d validity flags for %d values", ErrLengthMismatch, len(valid), len(data))
	}
	s := NewSeriesString(name, data)
	s.valid = append([]bool(nil), valid...)
	return s, nil
}

// NewSeriesBool creates a Bool Series with no nulls.
func NewSeriesBool(name string, data []bool) *Series {
	s := &Series{name: name, dtype: Bool, eng: defaultEngine}
	s.b = append([]bool(nil), data...)
	s.index = defaultIndex(len(data))
	return s
}

// NewSeriesDateTime creates a DateTime Series with no nulls.
func NewSeriesDateTime(name string, data []time.Time) *Series {
	s := &Series{name: name, dtype: DateTime, eng: defaultEngine}
	s.ts = append([]time.Time(nil), data...)
	s.index = defaultIndex(len(data))
	return s
}

// NewSeriesDateTimeWithNulls creates a DateTime Series with explicit
// validity.
func NewSeriesDateTimeWithNulls(name string, data []time.Time, valid []bool) (*Series, error) {
	if len(valid) != len(data) {
		return nil, fmt.Errorf("%w: %d validity flags for %d values", ErrLengthMismatch, len(valid), len(data))
	}
	s := NewSeriesDateTime(name, data)
	s.valid = append([]bool(nil), valid...)
	return s, nil
}

func defaultIndex(n int) []string {
	idx := make([]string, n)
	for i := range idx {
		idx[i] = strconv.Itoa(i)
	}
	return idx
}

// ============================================================================
// Access
// ============================================================================

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// DType returns the data type.
func (s *Series) DType() DType { return s.dtype }

// Len returns the number of elements.
func (s *Series) Len() int {
	switch s.dtype {
	case Float64:
		return len(s.f64)
	case Int32:
		return len(s.i32)
	case String:
		return len(s.str)
	case Bool:
		return len(s.b)
	case DateTime:
		return len(s.ts)
	}
	return 0
}

// Index returns a copy of the index labels.
func (s *Series) Index() []string {
	return append([]string(nil), s.index...)
}

// IsNull reports whether the element at position i is null.
func (s *Series) IsNull(i int) bool {
	if i < 0 || i >= s.Len() {
		return true
	}
	if s.dtype == Float64 {
		return math.IsNaN(s.f64[i])
	}
	return s.valid != nil && !s.valid[i]
}

// HasNulls reports whether the series contains any null element.
func (s *Series) HasNulls() bool {
	n := s.Len()
	for i := 0; i < n; i++ {
		if s.IsNull(i) {
			return true
		}
	}
	return false
}

// NullCount returns the number of null elements.
func (s *Series) NullCount() int {
	cnt := 0
	n := s.Len()
	for i := 0; i < n; i++ {
		if s.IsNull(i) {
			cnt++
		}
	}
	return cnt
}

// At returns the boxed value at position i, or nil when null or out of
// bounds.
func (s *Series) At(i int) any {
	if s.IsNull(i) {
		return nil
	}
	switch s.dtype {
	case Float64:
		return s.f64[i]
	case Int32:
		return s.i32[i]
	case String:
		return s.str[i]
	case Bool:
		return s.b[i]
	case DateTime:
		return s.ts[i]
	}
	return nil
}

// GetFloat64 returns the Float64 value at i. ok is false for nulls, out of
// bounds positions, and non-Float64 series.
func (s *Series) GetFloat64(i int) (float64, bool) {
	if s.dtype != Float64 || s.IsNull(i) {
		return 0, false
	}
	return s.f64[i], true
}

// GetInt32 returns the Int32 value at i.
func (s *Series) GetInt32(i int) (int32, bool) {
	if s.dtype != Int32 || s.IsNull(i) {
		return 0, false
	}
	return s.i32[i], true
}

// GetString returns the String value at i.
func (s *Series) GetString(i int) (string, bool) {
	if s.dtype != String || s.IsNull(i) {
		return "", false
	}
	return s.str[i], true
}

// GetBool returns the Bool value at i.
func (s *Series) GetBool(i int) (bool, bool) {
	if s.dtype != Bool || s.IsNull(i) {
		return false, false
	}
	return s.b[i], true
}

// GetTime returns the DateTime value at i.
func (s *Series) GetTime(i int) (time.Time, bool) {
	if s.dtype != DateTime || s.IsNull(i) {
		return time.Time{}, false
	}
	return s.ts[i], true
}

// Float64s copies the series into a dense float64 buffer with NaN for
// nulls. Non-numeric series return nil.
func (s *Series) Float64s() []float64 {
	data := s.asFloat64()
	if data == nil {
		return nil
	}
	return append([]float64(nil), data...)
}

// Values returns all elements boxed, nil for nulls.
func (s *Series) Values() []any {
	n := s.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = s.At(i)
	}
	return out
}

// asFloat64 exposes the numeric view the dispatcher operates on. Float64
// returns the live buffer (callers never write it); Int32 materializes a
// NaN-marked copy. Numeric series always yield a non-nil slice, even when
// empty; nil means the dtype has no numeric view.
func (s *Series) asFloat64() []float64 {
	switch s.dtype {
	case Float64:
		if s.f64 == nil {
			return []float64{}
		}
		return s.f64
	case Int32:
		out := make([]float64, len(s.i32))
		for i, v := range s.i32 {
			if s.valid != nil && !s.valid[i] {
				out[i] = math.NaN()
			} else {
				out[i] = float64(v)
			}
		}
		return out
	}
	return nil
}

// asInt32Sentinel materializes an int32 buffer with the in-band null
// sentinel, the representation the kernel's int path expects.
func (s *Series) asInt32Sentinel() []int32 {
	out := make([]int32, len(s.i32))
	for i, v := range s.i32 {
		if s.valid != nil && !s.valid[i] {
			out[i] = int32Null
		} else {
			out[i] = v
		}
	}
	return out
}

// ============================================================================
// Transforms
// ============================================================================

// shallow returns a copy of the Series header sharing all buffers. Safe
// because published buffers are never mutated.
func (s *Series) shallow() *Series {
	out := *s
	return &out
}

// Rename returns the same data under a new name.
func (s *Series) Rename(name string) *Series {
	out := s.shallow()
	out.name = name
	return out
}

// WithEngine returns the same data routed through a different engine.
func (s *Series) WithEngine(e *Engine) *Series {
	out := s.shallow()
	if e == nil {
		e = defaultEngine
	}
	out.eng = e
	return out
}

// WithIndexLabels returns the same data under new index labels.
func (s *Series) WithIndexLabels(labels []string) (*Series, error) {
	if len(labels) != s.Len() {
		return nil, fmt.Errorf("%w: %d index labels for %d values", ErrLengthMismatch, len(labels), s.Len())
	}
	out := s.shallow()
	out.index = append([]string(nil), labels...)
	return out, nil
}

// Filter returns the elements at positions where mask is true, in order,
// with index labels carried over. The mask length must equal the series
// length.
func (s *Series) Filter(mask []bool) (*Series, error) {
	if len(mask) != s.Len() {
		return nil, fmt.Errorf("%w: mask length %d for %d values", ErrLengthMismatch, len(mask), s.Len())
	}
	keep := make([]int, 0, len(mask))
	for i, m := range mask {
		if m {
			keep = append(keep, i)
		}
	}
	if s.dtype == Float64 {
		// Values go through the dispatcher; labels are gathered host-side.
		out := s.shallow()
		out.f64 = s.eng.filterF64(s.f64, mask)
		out.index = gatherStrings(s.index, keep)
		return out, nil
	}
	return s.gather(keep), nil
}

// IsIn returns a Bool Series, aligned to this one, reporting for each
// element whether some candidate equals it. Numeric dtypes compare within
// an absolute tolerance of 1e-9; other dtypes compare exactly. Nulls are
// never members.
func (s *Series) IsIn(candidates []any) (*Series, error) {
	var mask []bool
	switch s.dtype {
	case Float64:
		cands, err := candidatesFloat64(candidates)
		if err != nil {
			return nil, err
		}
		mask = s.eng.isinF64(s.f64, cands, defaultIsInTolerance)
	case Int32:
		cands, err := candidatesInt32(candidates)
		if err != nil {
			return nil, err
		}
		mask = s.eng.isinI32(s.asInt32Sentinel(), cands)
	case String:
		cands := make([]string, 0, len(candidates))
		for _, c := range candidates {
			if c == nil {
				continue
			}
			cands = append(cands, formatBoxed(c))
		}
		mask = portableIsInString(s.str, cands)
		for i := range mask {
			if s.IsNull(i) {
				mask[i] = false
			}
		}
	default:
		mask = make([]bool, s.Len())
		for i := range mask {
			if s.IsNull(i) {
				continue
			}
			for _, c := range candidates {
				if c == nil {
					continue
				}
				if equalBoxed(s.At(i), c) {
					mask[i] = true
					break
				}
			}
		}
	}

	out := NewSeriesBool(s.name, mask)
	out.index = append([]string(nil), s.index...)
	out.eng = s.eng
	return out, nil
}

func candidatesFloat64(candidates []any) ([]float64, error) {
	out := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		f, ok := toFloat64(c)
		if !ok {
			return nil, fmt.Errorf("%w: candidate %T is not numeric", ErrTypeMismatch, c)
		}
		out = append(out, f)
	}
	return out, nil
}

func candidatesInt32(candidates []any) ([]int32, error) {
	out := make([]int32, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		iv, ok := toInt32(c)
		if !ok {
			// Integral floats still count as int candidates; values
			// outside int32 range can never match and are skipped.
			if f, fok := toFloat64(c); fok && f == math.Trunc(f) {
				if f >= math.MinInt32 && f <= math.MaxInt32 {
					out = append(out, int32(f))
				}
				continue
			}
			return nil, fmt.Errorf("%w: candidate %T is not an integer", ErrTypeMismatch, c)
		}
		out = append(out, iv)
	}
	return out, nil
}

// FillNA returns a copy with every null replaced by value, which must be
// representable in the series dtype.
func (s *Series) FillNA(value any) (*Series, error) {
	n := s.Len()
	out := s.shallow()
	switch s.dtype {
	case Float64:
		f, ok := toFloat64(value)
		if !ok {
			return nil, fmt.Errorf("%w: fill value %T for Float64", ErrTypeMismatch, value)
		}
		out.f64 = append([]float64(nil), s.f64...)
		for i := range out.f64 {
			if math.IsNaN(out.f64[i]) {
				out.f64[i] = f
			}
		}
		return out, nil
	case Int32:
		iv, ok := toInt32(value)
		if !ok {
			return nil, fmt.Errorf("%w: fill value %T for Int32", ErrTypeMismatch, value)
		}
		out.i32 = append([]int32(nil), s.i32...)
		for i := 0; i < n; i++ {
			if s.IsNull(i) {
				out.i32[i] = iv
			}
		}
	case String:
		sv, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: fill value %T for String", ErrTypeMismatch, value)
		}
		out.str = append([]string(nil), s.str...)
		for i := 0; i < n; i++ {
			if s.IsNull(i) {
				out.str[i] = sv
			}
		}
	case Bool:
		bv, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: fill value %T for Bool", ErrTypeMismatch, value)
		}
		out.b = append([]bool(nil), s.b...)
		for i := 0; i < n; i++ {
			if s.IsNull(i) {
				out.b[i] = bv
			}
		}
	case DateTime:
		tv, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: fill value %T for DateTime", ErrTypeMismatch, value)
		}
		out.ts = append([]time.Time(nil), s.ts...)
		for i := 0; i < n; i++ {
			if s.IsNull(i) {
				out.ts[i] = tv
			}
		}
	}
	out.valid = nil
	return out, nil
}

// Head returns the first n elements.
func (s *Series) Head(n int) *Series {
	if n < 0 {
		n = 0
	}
	if n > s.Len() {
		n = s.Len()
	}
	return s.slice(0, n)
}

// Tail returns the last n elements.
func (s *Series) Tail(n int) *Series {
	if n < 0 {
		n = 0
	}
	if n > s.Len() {
		n = s.Len()
	}
	return s.slice(s.Len()-n, s.Len())
}

// Slice returns elements in [start, end), clamped to the series bounds.
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > s.Len() {
		end = s.Len()
	}
	if start >= end {
		return s.slice(0, 0)
	}
	return s.slice(start, end)
}

func (s *Series) slice(start, end int) *Series {
	keep := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		keep = append(keep, i)
	}
	return s.gather(keep)
}

// Unique returns the distinct values in first-seen order. Nulls collapse to
// a single null.
func (s *Series) Unique() *Series {
	seen := make(map[string]struct{})
	sawNull := false
	keep := make([]int, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			if !sawNull {
				sawNull = true
				keep = append(keep, i)
			}
			continue
		}
		key := s.displayAt(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	return s.gather(keep)
}

// gather builds a new Series from the elements at the given positions, in
// order, carrying index labels.
func (s *Series) gather(positions []int) *Series {
	out := s.shallow()
	out.index = gatherStrings(s.index, positions)
	if s.valid != nil {
		out.valid = make([]bool, len(positions))
		for i, p := range positions {
			out.valid[i] = s.valid[p]
		}
	}
	switch s.dtype {
	case Float64:
		out.f64 = make([]float64, len(positions))
		for i, p := range positions {
			out.f64[i] = s.f64[p]
		}
	case Int32:
		out.i32 = make([]int32, len(positions))
		for i, p := range positions {
			out.i32[i] = s.i32[p]
		}
	case String:
		out.str = make([]string, len(positions))
		for i, p := range positions {
			out.str[i] = s.str[p]
		}
	case Bool:
		out.b = make([]bool, len(positions))
		for i, p := range positions {
			out.b[i] = s.b[p]
		}
	case DateTime:
		out.ts = make([]time.Time, len(positions))
		for i, p := range positions {
			out.ts[i] = s.ts[p]
		}
	}
	return out
}

func gatherStrings(src []string, positions []int) []string {
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = src[p]
	}
	return out
}

// ============================================================================
// Reductions
// ============================================================================

// Sum returns the sum of non-null elements; 0 when there are none. Non
// numeric series report NaN.
func (s *Series) Sum() float64 {
	data := s.asFloat64()
	if data == nil {
		return math.NaN()
	}
	return s.eng.reduceF64(data, reduceSum)
}

// Mean returns the mean of non-null elements, NaN when there are none.
func (s *Series) Mean() float64 {
	data := s.asFloat64()
	if data == nil {
		return math.NaN()
	}
	return s.eng.reduceF64(data, reduceMean)
}

// Std returns the sample standard deviation of non-null elements, NaN below
// two observations.
func (s *Series) Std() float64 {
	data := s.asFloat64()
	if data == nil {
		return math.NaN()
	}
	return s.eng.reduceF64(data, reduceStd)
}

// Var returns the sample variance of non-null elements, NaN below two
// observations.
func (s *Series) Var() float64 {
	data := s.asFloat64()
	if data == nil {
		return math.NaN()
	}
	return s.eng.reduceF64(data, reduceVar)
}

// Min returns the minimum non-null element, NaN when there are none.
func (s *Series) Min() float64 {
	data := s.asFloat64()
	if data == nil {
		return math.NaN()
	}
	return s.eng.reduceF64(data, reduceMin)
}

// Max returns the maximum non-null element, NaN when there are none.
func (s *Series) Max() float64 {
	data := s.asFloat64()
	if data == nil {
		return math.NaN()
	}
	return s.eng.reduceF64(data, reduceMax)
}

// Count returns the number of non-null elements.
func (s *Series) Count() int {
	return s.Len() - s.NullCount()
}

// ============================================================================
// Sorting
// ============================================================================

// SortValues returns a new Series with values stably ordered. Nulls are
// always placed after all non-null values regardless of direction.
func (s *Series) SortValues(ascending bool) *Series {
	idx := sortIndices(s, ascending, true)
	return s.gather(idx)
}

// SortIndices returns the permutation of row positions that stably orders
// the series, with nulls placed per nullsLast independent of direction.
func (s *Series) SortIndices(ascending, nullsLast bool) []int {
	return sortIndices(s, ascending, nullsLast)
}

// ============================================================================
// Boxed conversions
// ============================================================================

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func toInt32(v any) (int32, bool) {
	switch x := v.(type) {
	case int:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, false
		}
		return int32(x), true
	case int32:
		return x, true
	case int64:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, false
		}
		return int32(x), true
	default:
		return 0, false
	}
}

func formatBoxed(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func equalBoxed(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
		return false
	}
	return a == b
}

// displayAt renders the element at i for group keys and text output. Null
// elements render as "null".
func (s *Series) displayAt(i int) string {
	if s.IsNull(i) {
		return "null"
	}
	switch s.dtype {
	case Float64:
		return strconv.FormatFloat(s.f64[i], 'g', -1, 64)
	case Int32:
		return strconv.FormatInt(int64(s.i32[i]), 10)
	case String:
		return s.str[i]
	case Bool:
		return strconv.FormatBool(s.b[i])
	case DateTime:
		return s.ts[i].Format(time.RFC3339)
	}
	return ""
}
