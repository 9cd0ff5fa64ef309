package transcript

import (
	"sort"
	"strings"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// FromCaptions converts caption records into segments.
// It returns the number of records whose timing had to be repaired.
func FromCaptions(records []types.CaptionRecord) ([]types.Segment, int) {
	segments := make([]types.Segment, 0, len(records))
	repaired := 0
	for _, r := range records {
		seg, fixed, ok := newSegment(r.Text, r.Start, r.Duration)
		if !ok {
			continue
		}
		if fixed {
			repaired++
		}
		segments = append(segments, seg)
	}
	return segments, repaired
}

// FromRecognition converts recognizer output into segments with Duration = End - Start
func FromRecognition(records []types.RecognizedSegment) ([]types.Segment, int) {
	segments := make([]types.Segment, 0, len(records))
	repaired := 0
	for _, r := range records {
		seg, fixed, ok := newSegment(r.Text, r.StartSeconds, r.EndSeconds-r.StartSeconds)
		if !ok {
			continue
		}
		if fixed {
			repaired++
		}
		segments = append(segments, seg)
	}
	return segments, repaired
}

// newSegment trims text, drops empty records and clamps out-of-range timing
func newSegment(text string, start, duration float64) (types.Segment, bool, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Segment{}, false, false
	}

	fixed := false
	if start < 0 {
		start = 0
		fixed = true
	}
	if duration <= 0 {
		duration = types.MinSegmentDuration
		fixed = true
	}
	return types.Segment{Text: text, Start: start, Duration: duration}, fixed, true
}

// SortByStart orders segments by start time, keeping source order for ties
func SortByStart(segments []types.Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
}
