package ingest

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// cell returns the trimmed value at index, or "" when the row is short.
func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber reads a spreadsheet number. Blank cells are zero. When both
// ',' and '.' appear the rightmost one is the decimal separator and the other
// groups thousands. A lone comma is a decimal comma; a separator repeated on
// its own only groups thousands. Non-finite values are rejected.
func parseNumber(value string) (float64, error) {
	s := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "€", "", "$", "").Replace(value)
	if s == "" {
		return 0, nil
	}
	s = normalizeSeparators(s)
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", value)
	}
	return f, nil
}

func normalizeSeparators(s string) string {
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case dot >= 0 && strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// parseCount reads a non-fractional count such as rooms or customers.
func parseCount(value string) (int, error) {
	f, err := parseNumber(value)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("expected a whole number, got %q", value)
	}
	return cast.ToIntE(int64(f))
}

// isBlankRow reports whether every cell of row is empty.
func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
