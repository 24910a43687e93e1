package caravel

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Arrow export
// ============================================================================

// ToArrow exports the frame as an Arrow Record. Nulls become Arrow validity
// bitmap entries; Float64 NaN exports as null. The caller must Release the
// record.
func (df *DataFrame) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, df.Width())
	for i, name := range df.colOrder {
		fields[i] = arrow.Field{
			Name:     name,
			Type:     dtypeToArrowType(df.columns[name].dtype),
			Nullable: true,
		}
	}
	schema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, df.Width())
	for i, name := range df.colOrder {
		arr, err := seriesToArrowArray(df.columns[name], mem)
		if err != nil {
			for j := 0; j < i; j++ {
				arrays[j].Release()
			}
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		arrays[i] = arr
	}

	record := array.NewRecord(schema, arrays, int64(df.Height()))
	for _, arr := range arrays {
		arr.Release()
	}
	return record, nil
}

// ToArrowTable exports the frame as a single-chunk Arrow Table. The caller
// must Release the table.
func (df *DataFrame) ToArrowTable(mem memory.Allocator) (arrow.Table, error) {
	record, err := df.ToArrow(mem)
	if err != nil {
		return nil, err
	}
	defer record.Release()
	return array.NewTableFromRecords(record.Schema(), []arrow.Record{record}), nil
}

func dtypeToArrowType(dt DType) arrow.DataType {
	switch dt {
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case Int32:
		return arrow.PrimitiveTypes.Int32
	case Bool:
		return arrow.FixedWidthTypes.Boolean
	case DateTime:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

func seriesToArrowArray(s *Series, mem memory.Allocator) (arrow.Array, error) {
	n := s.Len()
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = !s.IsNull(i)
	}

	switch s.dtype {
	case Float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(s.f64, valid)
		return builder.NewArray(), nil

	case Int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(s.i32, valid)
		return builder.NewArray(), nil

	case String:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(s.str, valid)
		return builder.NewArray(), nil

	case Bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(s.b, valid)
		return builder.NewArray(), nil

	case DateTime:
		builder := array.NewTimestampBuilder(mem, arrow.FixedWidthTypes.Timestamp_ms.(*arrow.TimestampType))
		defer builder.Release()
		for i, t := range s.ts {
			if !valid[i] {
				builder.AppendNull()
				continue
			}
			builder.Append(arrow.Timestamp(t.UnixMilli()))
		}
		return builder.NewArray(), nil

	default:
		return nil, fmt.Errorf("unsupported dtype for Arrow export: %s", s.dtype)
	}
}

// ============================================================================
// Arrow import
// ============================================================================

// NewDataFrameFromArrow builds a frame from an Arrow Record. Arrow nulls
// import as nulls.
func NewDataFrameFromArrow(record arrow.Record) (*DataFrame, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}
	schema := record.Schema()
	cols := make([]*Series, int(record.NumCols()))
	for i := range cols {
		s, err := arrowArrayToSeries(schema.Field(i).Name, record.Column(i))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", schema.Field(i).Name, err)
		}
		cols[i] = s
	}
	return NewDataFrame(cols...)
}

func arrowArrayToSeries(name string, arr arrow.Array) (*Series, error) {
	n := arr.Len()
	switch a := arr.(type) {
	case *array.Float64:
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			if a.IsNull(i) {
				data[i] = math.NaN()
			} else {
				data[i] = a.Value(i)
			}
		}
		return NewSeriesFloat64(name, data), nil

	case *array.Int32:
		data := make([]int32, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			valid[i] = !a.IsNull(i)
			if valid[i] {
				data[i] = a.Value(i)
			}
		}
		if arr.NullN() == 0 {
			return NewSeriesInt32(name, data), nil
		}
		return NewSeriesInt32WithNulls(name, data, valid)

	case *array.String:
		data := make([]string, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			valid[i] = !a.IsNull(i)
			if valid[i] {
				data[i] = a.Value(i)
			}
		}
		if arr.NullN() == 0 {
			return NewSeriesString(name, data), nil
		}
		return NewSeriesStringWithNulls(name, data, valid)

	case *array.Boolean:
		data := make([]bool, n)
		for i := 0; i < n; i++ {
			if !a.IsNull(i) {
				data[i] = a.Value(i)
			}
		}
		s := NewSeriesBool(name, data)
		if arr.NullN() > 0 {
			for i := 0; i < n; i++ {
				if a.IsNull(i) {
					s.setNull(i, n)
				}
			}
		}
		return s, nil

	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		data := make([]time.Time, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			valid[i] = !a.IsNull(i)
			if valid[i] {
				data[i] = a.Value(i).ToTime(unit).UTC()
			}
		}
		if arr.NullN() == 0 {
			return NewSeriesDateTime(name, data), nil
		}
		return NewSeriesDateTimeWithNulls(name, data, valid)

	default:
		return nil, fmt.Errorf("unsupported Arrow array type: %T", arr)
	}
}
