package captions

import (
	"math"
	"strconv"
	"strings"
)

// ParseTimestamp converts an HH:MM:SS.mmm timestamp to whole seconds,
// rounding the fractional part half to even. Reports false for malformed
// input.
func ParseTimestamp(ts string) (int, bool) {
	parts := strings.Split(ts, ":")
	total := 0.0
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		total += v * math.Pow(60, float64(len(parts)-1-i))
	}
	return int(math.RoundToEven(total)), true
}
