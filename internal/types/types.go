package types

import (
	"strings"
	"time"
)

// Session status constants
const (
	StatusFetching  = "FETCHING"
	StatusAnalyzing = "ANALYZING"
	StatusReady     = "READY"
	StatusFailed    = "FAILED"
)

// Source records which transcript source produced a result
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// MinSegmentDuration is the duration given to segments whose reported
// duration is zero or negative.
const MinSegmentDuration = 0.01

// Segment is one timed unit of transcript text
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Original string  `json:"original,omitempty"`
}

// End returns the segment's offset time in seconds
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// Contains reports whether t falls inside [Start, Start+Duration)
func (s Segment) Contains(t float64) bool {
	return t >= s.Start && t < s.End()
}

// TranscriptResult is the normalizer's output envelope
type TranscriptResult struct {
	VideoID  string    `json:"video_id"`
	Segments []Segment `json:"transcript"`
	Source   Source    `json:"source"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
}

// CaptionRecord is a record reported by the hosted captions source
type CaptionRecord struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// RecognizedSegment is a record produced by speech recognition
type RecognizedSegment struct {
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start"`
	EndSeconds   float64 `json:"end"`
}

// Chapter is a generated timeline marker
type Chapter struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// KeyNote is a generated note anchored to a time
type KeyNote struct {
	Time string `json:"time"`
	Note string `json:"note"`
}

// Analysis is the structured output of the generation service
type Analysis struct {
	Chapters []Chapter `json:"chapters"`
	KeyNotes []KeyNote `json:"key_notes"`
}

// VideoInfo holds display metadata for a video
type VideoInfo struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Channel      string        `json:"channel"`
	Duration     time.Duration `json:"duration"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
}

// PlainText joins segment texts with single spaces
func PlainText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// CloneSegments returns a copy that shares no backing array with segments
func CloneSegments(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}

// AnalysisRecord is one entry of the analysis history log
type AnalysisRecord struct {
	ID           string    `json:"id"`
	VideoID      string    `json:"video_id"`
	Source       Source    `json:"source"`
	Status       string    `json:"status"`
	SegmentCount int       `json:"segment_count"`
	ChapterCount int       `json:"chapter_count"`
	NoteCount    int       `json:"note_count"`
	HasSummary   bool      `json:"has_summary"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
