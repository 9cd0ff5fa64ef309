package analysis

import (
	"context"
	"errors"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

var (
	// ErrEmptyTranscript is returned when there is no text to analyze
	ErrEmptyTranscript = errors.New("transcript is empty")

	// ErrMalformedOutput is returned when the model's structured output cannot be used
	ErrMalformedOutput = errors.New("malformed model output")
)

// Model is a text generation backend
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analyzer produces summaries and chapter/note timelines from transcripts
type Analyzer interface {
	Summarize(ctx context.Context, segments []types.Segment) (string, error)
	Analyze(ctx context.Context, segments []types.Segment) (*types.Analysis, error)
	// Run generates summary and analysis concurrently. A failure in one never
	// affects the other.
	Run(ctx context.Context, segments []types.Segment) Report
}

// Report holds the independent outcomes of Run
type Report struct {
	Summary     string
	SummaryErr  error
	Analysis    *types.Analysis
	AnalysisErr error
}
