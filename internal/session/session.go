package session

import (
	"context"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/playback"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// session is the mutable state of one analysis. Guarded by Manager.mu,
// except track which is safe for concurrent readers.
type session struct {
	id        string
	videoID   string
	status    string
	source    types.Source
	track     *playback.Track
	hasText   bool
	language  string
	summary   string
	summErr   string
	analysis  *types.Analysis
	analErr   string
	err       string
	createdAt time.Time
	updatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Snapshot is a read-only copy of the session state
type Snapshot struct {
	ID            string          `json:"id"`
	VideoID       string          `json:"video_id"`
	Status        string          `json:"status"`
	Source        types.Source    `json:"source,omitempty"`
	Transcript    []types.Segment `json:"transcript"`
	Language      string          `json:"language,omitempty"`
	Summary       string          `json:"summary,omitempty"`
	SummaryError  string          `json:"summary_error,omitempty"`
	Analysis      *types.Analysis `json:"analysis,omitempty"`
	AnalysisError string          `json:"analysis_error,omitempty"`
	Error         string          `json:"error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		ID:            s.id,
		VideoID:       s.videoID,
		Status:        s.status,
		Source:        s.source,
		Transcript:    s.track.Snapshot(),
		Language:      s.language,
		Summary:       s.summary,
		SummaryError:  s.summErr,
		Analysis:      s.analysis,
		AnalysisError: s.analErr,
		Error:         s.err,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

// Handle gives playback followers access to a session's segments
type Handle struct {
	ID      string
	VideoID string
	Track   *playback.Track
	// Done is closed when the session is superseded or closed
	Done <-chan struct{}
}
