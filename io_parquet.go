package caravel

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// ParquetReadOptions configures Parquet reading.
type ParquetReadOptions struct {
	// Columns restricts the read to the named columns (nil reads all).
	Columns []string
	// MaxRows caps the number of rows read (0 is unlimited).
	MaxRows int
}

// ReadParquet reads a Parquet file into a DataFrame.
func ReadParquet(path string, opts ...ParquetReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return ReadParquetFromReader(f, stat.Size(), opts...)
}

// parquetColumn accumulates one column while scanning rows.
type parquetColumn struct {
	name  string
	dtype DType
	f64   []float64
	i32   []int32
	str   []string
	b     []bool
	ts    []time.Time
	valid []bool
}

func (c *parquetColumn) appendValue(val parquet.Value) {
	if val.IsNull() {
		c.appendNull()
		return
	}
	c.valid = append(c.valid, true)
	switch c.dtype {
	case Float64:
		c.f64 = append(c.f64, val.Double())
	case Int32:
		c.i32 = append(c.i32, val.Int32())
	case Bool:
		c.b = append(c.b, val.Boolean())
	case DateTime:
		c.ts = append(c.ts, time.UnixMilli(val.Int64()).UTC())
	default:
		c.str = append(c.str, string(val.ByteArray()))
	}
}

func (c *parquetColumn) appendNull() {
	c.valid = append(c.valid, false)
	switch c.dtype {
	case Float64:
		c.f64 = append(c.f64, math.NaN())
	case Int32:
		c.i32 = append(c.i32, 0)
	case Bool:
		c.b = append(c.b, false)
	case DateTime:
		c.ts = append(c.ts, time.Time{})
	default:
		c.str = append(c.str, "")
	}
}

func (c *parquetColumn) series() (*Series, error) {
	hasNulls := false
	for _, v := range c.valid {
		if !v {
			hasNulls = true
			break
		}
	}
	switch c.dtype {
	case Float64:
		return NewSeriesFloat64(c.name, c.f64), nil
	case Int32:
		if hasNulls {
			return NewSeriesInt32WithNulls(c.name, c.i32, c.valid)
		}
		return NewSeriesInt32(c.name, c.i32), nil
	case Bool:
		s := NewSeriesBool(c.name, c.b)
		if hasNulls {
			for i, v := range c.valid {
				if !v {
					s.setNull(i, len(c.b))
				}
			}
		}
		return s, nil
	case DateTime:
		if hasNulls {
			return NewSeriesDateTimeWithNulls(c.name, c.ts, c.valid)
		}
		return NewSeriesDateTime(c.name, c.ts), nil
	default:
		if hasNulls {
			return NewSeriesStringWithNulls(c.name, c.str, c.valid)
		}
		return NewSeriesString(c.name, c.str), nil
	}
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into a
// DataFrame.
func ReadParquetFromReader(r io.ReaderAt, size int64, opts ...ParquetReadOptions) (*DataFrame, error) {
	var opt ParquetReadOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	schema := pf.Schema()

	colNames := opt.Columns
	if len(colNames) == 0 {
		fields := schema.Fields()
		colNames = make([]string, len(fields))
		for i, f := range fields {
			colNames[i] = f.Name()
		}
	}

	leafIndex := make(map[string]int)
	for i, col := range schema.Columns() {
		if len(col) > 0 {
			leafIndex[col[0]] = i
		}
	}

	builders := make([]parquetColumn, len(colNames))
	leaves := make([]int, len(colNames))
	for i, name := range colNames {
		idx, ok := leafIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q in parquet file", ErrColumnNotFound, name)
		}
		leaves[i] = idx
		builders[i].name = name
		builders[i].dtype = parquetFieldToDType(schema, name)
	}

	rowCount := 0
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			if err != nil && err != io.EOF {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
			if n == 0 {
				break
			}
			for _, row := range buf[:n] {
				if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
					break
				}
				for i, leaf := range leaves {
					if leaf < len(row) {
						builders[i].appendValue(row[leaf])
					} else {
						builders[i].appendNull()
					}
				}
				rowCount++
			}
			if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
				break
			}
		}
		rows.Close()
	}

	cols := make([]*Series, len(builders))
	for i := range builders {
		s, err := builders[i].series()
		if err != nil {
			return nil, err
		}
		cols[i] = s
	}
	return NewDataFrame(cols...)
}

func parquetFieldToDType(schema *parquet.Schema, name string) DType {
	for _, field := range schema.Fields() {
		if field.Name() != name {
			continue
		}
		t := field.Type()
		if t == nil {
			return String
		}
		switch t.Kind() {
		case parquet.Boolean:
			return Bool
		case parquet.Int32:
			return Int32
		case parquet.Int64:
			if lt := t.LogicalType(); lt != nil && lt.Timestamp != nil {
				return DateTime
			}
			return Float64
		case parquet.Float, parquet.Double:
			return Float64
		default:
			return String
		}
	}
	return String
}

// ParquetWriteOptions configures Parquet writing.
type ParquetWriteOptions struct {
	// Compression is one of "snappy", "gzip", "zstd" or "none".
	Compression string
}

// DefaultParquetWriteOptions returns the writing defaults.
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{Compression: "snappy"}
}

// WriteParquet writes the frame to a Parquet file.
func (df *DataFrame) WriteParquet(path string, opts ...ParquetWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	return df.WriteParquetToWriter(f, opts...)
}

// WriteParquetToWriter writes the frame as Parquet to w. Column order in the
// file follows the schema's field ordering. Float64 nulls persist as NaN and
// restore as nulls on read.
func (df *DataFrame) WriteParquetToWriter(w io.Writer, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if df.Width() == 0 || df.Height() == 0 {
		return nil
	}

	group := make(parquet.Group)
	for _, name := range df.colOrder {
		group[name] = dtypeToParquetNode(df.columns[name].dtype)
	}
	schema := parquet.NewSchema("dataframe", group)

	writerOpts := []parquet.WriterOption{schema}
	switch opt.Compression {
	case "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	}

	pw := parquet.NewWriter(w, writerOpts...)
	defer pw.Close()

	// parquet.Group schemas order fields by name; rows must follow suit.
	fields := schema.Fields()
	ordered := make([]*Series, len(fields))
	for i, f := range fields {
		ordered[i] = df.columns[f.Name()]
	}

	const batchSize = 1000
	height := df.Height()
	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < height; i++ {
		row := make(parquet.Row, len(ordered))
		for j, col := range ordered {
			row[j] = toParquetValue(col, i).Level(0, 0, j)
		}
		rows = append(rows, row)
		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}
	return pw.Close()
}

func dtypeToParquetNode(dt DType) parquet.Node {
	switch dt {
	case Float64:
		return parquet.Leaf(parquet.DoubleType)
	case Int32:
		return parquet.Leaf(parquet.Int32Type)
	case Bool:
		return parquet.Leaf(parquet.BooleanType)
	case DateTime:
		return parquet.Timestamp(parquet.Millisecond)
	default:
		return parquet.String()
	}
}

func toParquetValue(col *Series, i int) parquet.Value {
	switch col.dtype {
	case Float64:
		// NaN is the null carrier for Float64; it roundtrips as such.
		return parquet.DoubleValue(col.f64[i])
	case Int32:
		if col.IsNull(i) {
			return parquet.Int32Value(0)
		}
		return parquet.Int32Value(col.i32[i])
	case Bool:
		if col.IsNull(i) {
			return parquet.BooleanValue(false)
		}
		return parquet.BooleanValue(col.b[i])
	case DateTime:
		if col.IsNull(i) {
			return parquet.Int64Value(0)
		}
		return parquet.Int64Value(col.ts[i].UnixMilli())
	default:
		if col.IsNull(i) {
			return parquet.ByteArrayValue(nil)
		}
		return parquet.ByteArrayValue([]byte(col.str[i]))
	}
}
