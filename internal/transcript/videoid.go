package transcript

import (
	"regexp"
	"strings"
)

var (
	videoURLPattern = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/shorts/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`)
	bareIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID returns the 11 character video ID in a URL or bare ID
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := videoURLPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if bareIDPattern.MatchString(input) {
		return input, nil
	}
	return "", ErrInvalidVideoID
}
