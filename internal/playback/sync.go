package playback

import (
	"sync"
	"sync/atomic"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// NoSegment is returned by ActiveIndex when no segment covers the position
const NoSegment = -1

// ActiveIndex returns the first segment whose [start, start+duration) contains t.
// Overlapping segments resolve to the earliest in order.
func ActiveIndex(segments []types.Segment, t float64) int {
	for i, seg := range segments {
		if seg.Contains(t) {
			return i
		}
	}
	return NoSegment
}

// Player is the playback collaborator being followed
type Player interface {
	CurrentPosition() float64
	SeekTo(seconds float64)
}

// Seeker moves playback to an absolute position
type Seeker interface {
	SeekTo(seconds float64)
}

// SeekToTimestamp parses a chapter or note timestamp and seeks to it
func SeekToTimestamp(s Seeker, timestamp string) float64 {
	seconds := ParseTimestamp(timestamp)
	s.SeekTo(seconds)
	return seconds
}

// SeekToSegment seeks to the start of segments[index].
// It reports false without seeking when index is out of range.
func SeekToSegment(s Seeker, segments []types.Segment, index int) bool {
	if index < 0 || index >= len(segments) {
		return false
	}
	s.SeekTo(segments[index].Start)
	return true
}

// Track holds the segment list shown to the viewer.
// Readers always see a complete list; writers replace it whole.
type Track struct {
	segments atomic.Pointer[[]types.Segment]
}

// NewTrack creates a track holding segments
func NewTrack(segments []types.Segment) *Track {
	t := &Track{}
	t.Replace(segments)
	return t
}

// Replace swaps in a new segment list
func (t *Track) Replace(segments []types.Segment) {
	if segments == nil {
		segments = []types.Segment{}
	}
	t.segments.Store(&segments)
}

// Snapshot returns the current segment list. Callers must not modify it.
func (t *Track) Snapshot() []types.Segment {
	p := t.segments.Load()
	if p == nil {
		return nil
	}
	return *p
}

// ScrollFollower decides when the transcript view should scroll
type ScrollFollower struct {
	mu   sync.Mutex
	last int
	seen bool
}

// Observe reports whether idx differs from the last observed index
func (f *ScrollFollower) Observe(idx int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen && f.last == idx {
		return false
	}
	f.last = idx
	f.seen = true
	return idx != NoSegment
}

// Reset forgets the last observed index
func (f *ScrollFollower) Reset() {
	f.mu.Lock()
	f.seen = false
	f.mu.Unlock()
}
