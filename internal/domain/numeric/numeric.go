// Package numeric holds the permissive parsing and bounding helpers shared by
// every scoring stage. None of these functions fail: malformed input falls back
// to the caller-supplied default.
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SafeFloat converts value to float64, returning def when it cannot be parsed.
// Strings are trimmed before parsing; nil and unsupported types yield def.
func SafeFloat(value any, def float64) float64 {
	f, ok := toFloat(value)
	if !ok {
		return def
	}
	return f
}

// SafeInt converts value to an int by parsing it as a float and truncating
// toward zero. Non-finite or out-of-range values yield def.
func SafeInt(value any, def int) int {
	f, ok := toFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return def
	}
	return int(f)
}

// Clamp bounds v to [lo, hi]. NaN is pinned to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
