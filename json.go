package caravel

import (
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

// ToJSON encodes the frame as an array of records, one JSON object per row.
// Nulls encode as JSON null and DateTime values as RFC 3339 strings. The row
// index is not part of the record form.
func (df *DataFrame) ToJSON() ([]byte, error) {
	records := make([]map[string]any, df.Height())
	for i := range records {
		rec := make(map[string]any, df.Width())
		for _, name := range df.colOrder {
			col := df.columns[name]
			if col.IsNull(i) {
				rec[name] = nil
				continue
			}
			if col.dtype == DateTime {
				rec[name] = col.ts[i].Format(time.RFC3339)
				continue
			}
			rec[name] = col.At(i)
		}
		records[i] = rec
	}
	return json.Marshal(records)
}

// ReadJSON decodes an array of records into a frame. Column dtypes are
// inferred per column; columns appear in name order since JSON objects carry
// none. A missing key in a record reads as null.
func ReadJSON(data []byte) (*DataFrame, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	nameSet := make(map[string]struct{})
	for _, rec := range records {
		for name := range rec {
			nameSet[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]*Series, len(names))
	for ci, name := range names {
		values := make([]any, len(records))
		for ri, rec := range records {
			values[ri] = normalizeJSONValue(rec[name])
		}
		s, err := NewSeries(name, values)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		cols[ci] = s
	}
	return NewDataFrame(cols...)
}

// normalizeJSONValue maps decoded JSON values onto the boxed form NewSeries
// accepts. RFC 3339 strings stay strings; explicit DateTime parsing is the
// caller's call.
func normalizeJSONValue(v any) any {
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	default:
		return fmt.Sprintf("%v", x)
	}
}
