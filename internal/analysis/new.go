package analysis

import (
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
)

// Options tunes retry behaviour for structured output
type Options struct {
	// MaxRetries is the number of extra attempts after malformed output
	MaxRetries int
	// Backoff is the base delay; attempt n waits n*n*Backoff
	Backoff time.Duration
}

type implAnalyzer struct {
	model  Model
	opts   Options
	logger logger.Logger
}

// New creates an Analyzer backed by model
func New(model Model, opts Options, log logger.Logger) Analyzer {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &implAnalyzer{
		model:  model,
		opts:   opts,
		logger: log,
	}
}
