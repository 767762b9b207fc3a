package db

import (
	"fmt"
	"strconv"
)

// Int64 coerces a scanned value to int64. Drivers disagree on integer
// widths (pgx int4/int8, mysql text protocol []byte, sqlite int64).
func Int64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case int16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case float64:
		return int64(t), true
	case []byte:
		n, err := strconv.ParseInt(string(t), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// String coerces a scanned value to string; ok is false for SQL NULL.
func String(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return fmt.Sprint(t), true
	}
}
