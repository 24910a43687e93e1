package caravel

import (
	"strings"
	"time"
)

// DType is the fixed element type tag of a Series.
type DType uint8

const (
	Float64 DType = iota
	Int32
	String
	Bool
	DateTime
)

// String returns the string representation of the DType.
func (d DType) String() string {
	switch d {
	case Float64:
		return "Float64"
	case Int32:
		return "Int32"
	case String:
		return "String"
	case Bool:
		return "Bool"
	case DateTime:
		return "DateTime"
	default:
		return "String"
	}
}

// IsNumeric returns true if the dtype is a numeric type.
func (d DType) IsNumeric() bool {
	return d == Float64 || d == Int32
}

// ParseDType parses a dtype name. Unrecognized names fall back to String
// (permissive construction); ok reports whether the name was recognized.
func ParseDType(name string) (DType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "float64", "float", "double", "f64":
		return Float64, true
	case "int32", "int", "i32":
		return Int32, true
	case "string", "str", "utf8":
		return String, true
	case "bool", "boolean":
		return Bool, true
	case "datetime", "timestamp", "date":
		return DateTime, true
	default:
		return String, false
	}
}

// inferDType scans non-null boxed values and reports the single dtype they
// all share. Any disagreement collapses the result to String. All-null input
// infers Float64, which can carry the nulls as NaN.
func inferDType(values []any) DType {
	inferred := Float64
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		dt, ok := dtypeOf(v)
		if !ok {
			return String
		}
		if !seen {
			inferred = dt
			seen = true
			continue
		}
		if dt != inferred {
			return String
		}
	}
	return inferred
}

func dtypeOf(v any) (DType, bool) {
	switch v.(type) {
	case float64, float32:
		return Float64, true
	case int, int32, int64:
		return Int32, true
	case string:
		return String, true
	case bool:
		return Bool, true
	case time.Time:
		return DateTime, true
	default:
		return String, false
	}
}
