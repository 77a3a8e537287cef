package source

import (
	"strconv"
	"strings"
)

// parseFloat64Or parses a string as a float64, returning def if parsing
// fails or the string is empty.
func parseFloat64Or(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// parseInt64Or parses a string as an int64, returning def if parsing fails.
// Population fields sometimes arrive with a decimal point.
func parseInt64Or(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return def
}

// trimQuotes removes surrounding double quotes and whitespace from a CSV
// field.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
