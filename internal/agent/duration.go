package agent

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// defaultMinutes is used when the duration text is unrecognizable.
const defaultMinutes = 60

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseDurationMinutes extracts a block length in minutes from
// free-form duration text ("2 hours", "90 min", "1.5h"). The parser
// is a lossy heuristic: the first numeric token plus a unit keyword.
// A bare number reads as minutes; anything unrecognizable falls back
// to 60.
func ParseDurationMinutes(text string) int {
	token := numberPattern.FindString(text)
	if token == "" {
		return defaultMinutes
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil || value <= 0 {
		return defaultMinutes
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "min"):
		// minutes as given
	case strings.Contains(lower, "h"):
		// hour, hr, h
		value *= 60
	}

	minutes := int(math.Round(value))
	if minutes <= 0 {
		return defaultMinutes
	}
	return minutes
}
