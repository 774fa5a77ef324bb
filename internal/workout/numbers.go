package workout

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads the leading numeric part of a free-text field
// ("135", "62.5kg", " 8 "). Anything unparseable is 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// PositiveNumber is like ParseNumber, but reports non-positive values as absent.
func PositiveNumber(s string) (float64, bool) {
	v := ParseNumber(s)
	if v <= 0 {
		return 0, false
	}
	return v, true
}
