package playback

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp converts "M:SS" or "H:MM:SS" to seconds.
// Any other shape, or a non-numeric part, yields 0.
func ParseTimestamp(s string) float64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, ok := parsePart(strings.TrimSpace(p))
		if !ok {
			return 0
		}
		values[i] = float64(v)
	}

	if len(values) == 2 {
		return values[0]*60 + values[1]
	}
	return values[0]*3600 + values[1]*60 + values[2]
}

// parsePart accepts unsigned decimal digits only
func parsePart(p string) (int, bool) {
	if p == "" {
		return 0, false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(p)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatTimestamp renders whole seconds as "M:SS", or "H:MM:SS" from one hour up
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
