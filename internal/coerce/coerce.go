// Package coerce converts user-entered edit text into typed scalar values.
//
// The priority order is fixed: null, boolean, integer, float, then literal
// string. Renderer value commits and source-mode patches both go through
// FromText so an edit produces the same value regardless of entry point.
package coerce

import "strconv"

// FromText converts raw edit text to a typed value.
// The input is taken as-is; callers decide whether to trim whitespace first.
func FromText(text string) any {
	switch text {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// ToText renders a scalar value back into its display text.
// It is the inverse of FromText for every value FromText can produce.
func ToText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	default:
		return ""
	}
}
