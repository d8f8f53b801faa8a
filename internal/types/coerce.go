package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coercion helpers for values decoded from oracle JSON with
// json.Decoder.UseNumber. The oracle is loose about scalar types: a year may
// arrive as a number or a numeric string, a horsepower figure as 150,
// "150" or "150 hp". These replace bare type assertions that panic on
// mismatch.

// CoerceString renders a decoded JSON value as a display string. Nulls
// become "".
func CoerceString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// CoerceInt extracts an integer from a decoded JSON value.
// Returns (0, false) when the value is not numeric.
func CoerceInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), true
		}
		if f, err := val.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case float64:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case string:
		s := strings.TrimSpace(val)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// CoerceYear extracts a model year: a positive 4-digit integer, coercing
// numeric strings. Fractional values are rejected rather than truncated,
// so "2022.7" is not a year. Returns (0, false) for anything else.
func CoerceYear(v interface{}) (int, bool) {
	var year int
	switch val := v.(type) {
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, false
		}
		year = int(i)
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		year = int(val)
	case int:
		year = val
	case int64:
		year = int(val)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		year = i
	default:
		return 0, false
	}
	if year < 1000 || year > 9999 {
		return 0, false
	}
	return year, true
}

// CoerceStringSlice extracts a sequence of strings from a decoded JSON
// array. Non-array values yield (nil, false); array elements are rendered
// with CoerceString, skipping nulls.
func CoerceStringSlice(v interface{}) ([]string, bool) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if item == nil {
			continue
		}
		out = append(out, CoerceString(item))
	}
	return out, true
}
