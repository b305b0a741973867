// Package formatting parses and prints byte sizes and extracts JSON objects
// from model replies.
package formatting

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Units run from bytes to terabytes in steps of 1024.
var units = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes prints n in the largest unit that keeps the value at or above
// one, with a single decimal place: 1536 prints as "1.5 KB".
func FormatBytes(n int64) string {
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', 1, 64) + " " + units[i]
}

// ParseBytes reads sizes such as "2MB", "512 kb" or "1.5KB". A bare number
// is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}
	if unit == "" {
		return int64(value), nil
	}

	exp := slices.Index(units, unit)
	if exp < 0 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}
	for range exp {
		value *= 1024
	}
	return int64(value), nil
}
