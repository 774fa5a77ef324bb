package tracker

import (
	"regexp"
	"strconv"
)

const (
	DefaultRestSeconds  = 60
	RestDismissDelay    = 5
	restRangeSeparators = `-‐‑‒–—―−`
)

var (
	restRangeRegex  = regexp.MustCompile(`(\d+)\s*[` + restRangeSeparators + `]\s*(\d+)`)
	restSingleRegex = regexp.MustCompile(`(\d+)`)
)

// RestSpec is a parsed rest prescription, in seconds. Total is the countdown
// length, Lower the point after which the rest counts as long enough.
type RestSpec struct {
	Total int `json:"total"`
	Lower int `json:"lower"`
}

// ParseRestSpec reads "90-120" as lower 90, total 120, and "90" as 90/90.
// Anything else falls back to 60/60.
func ParseRestSpec(spec string) RestSpec {
	if m := restRangeRegex.FindStringSubmatch(spec); m != nil {
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA == nil && errB == nil && a > 0 && b > 0 {
			if a > b {
				a, b = b, a
			}
			return RestSpec{Total: b, Lower: a}
		}
	}

	if m := restSingleRegex.FindStringSubmatch(spec); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return RestSpec{Total: n, Lower: n}
		}
	}

	return RestSpec{Total: DefaultRestSeconds, Lower: DefaultRestSeconds}
}
