package board

import (
	"strconv"
	"strings"
)

const (
	// DefaultRadius is used when the radius input is missing, invalid or not positive.
	DefaultRadius = 20.0

	// ResizeStep is how much one wheel notch grows or shrinks the selected circle.
	ResizeStep = 2.0

	// MinRadius is the floor for shrinking via the wheel.
	MinRadius = 5.0
)

// ParseRadius reads the leading base-10 integer of s, the way a browser's
// parseInt does ("25px" is 25, "12.9" is 12). Anything that does not yield a
// positive integer falls back to DefaultRadius, including values too large
// for an int, where parseInt would return a huge float.
func ParseRadius(s string) float64 {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return DefaultRadius
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return DefaultRadius
	}
	return float64(n)
}
