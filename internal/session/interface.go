package session

import (
	"context"
	"errors"

	"github.com/codebuildervaibhav/video-analyzer/internal/analysis"
	"github.com/codebuildervaibhav/video-analyzer/internal/queue"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

var (
	// ErrNoSession is returned when no analysis has been started
	ErrNoSession = errors.New("no active session")

	// ErrNotReady is returned when an operation needs a transcript that is not there yet
	ErrNotReady = errors.New("session has no transcript yet")

	// ErrSuperseded marks a result that arrived after a newer session replaced its own
	ErrSuperseded = errors.New("session superseded")

	// ErrUnavailable is returned when the collaborator an operation needs was not configured
	ErrUnavailable = errors.New("service not configured")
)

// SegmentTranslator builds a translated copy of a segment list
type SegmentTranslator interface {
	TranslateSegments(ctx context.Context, segments []types.Segment, target string) ([]types.Segment, error)
}

// Recorder keeps a history of finished analyses
type Recorder interface {
	RecordAnalysis(ctx context.Context, rec types.AnalysisRecord) error
}

// Runner executes background jobs
type Runner interface {
	EnqueueJob(job *queue.Job) error
}

// Deps are the collaborators a Manager drives
type Deps struct {
	Fetcher    transcript.Fetcher
	Analyzer   analysis.Analyzer
	Translator SegmentTranslator
	Runner     Runner
	Recorder   Recorder
}
