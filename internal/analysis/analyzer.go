package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

func (a *implAnalyzer) Summarize(ctx context.Context, segments []types.Segment) (string, error) {
	if len(segments) == 0 {
		return "", ErrEmptyTranscript
	}

	a.logger.Info(ctx, "Generating summary over %d segments", len(segments))
	text, err := a.model.Generate(ctx, buildSummaryPrompt(segments))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", fmt.Errorf("generate summary: empty response")
	}
	a.logger.Info(ctx, "Summary generated (%d characters)", len(summary))
	return summary, nil
}

func (a *implAnalyzer) Analyze(ctx context.Context, segments []types.Segment) (*types.Analysis, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyTranscript
	}

	prompt := buildAnalysisPrompt(segments)
	var lastErr error

	for attempt := 0; attempt <= a.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt*attempt) * a.opts.Backoff
			a.logger.Warn(ctx, "Analysis attempt %d/%d returned malformed output, retrying in %v", attempt, a.opts.MaxRetries+1, wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := a.model.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate analysis: %w", err)
		}

		result, err := parseAnalysis(text)
		if err == nil {
			a.logger.Info(ctx, "Analysis generated: %d chapters, %d notes", len(result.Chapters), len(result.KeyNotes))
			return result, nil
		}
		if !errors.Is(err, ErrMalformedOutput) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (a *implAnalyzer) Run(ctx context.Context, segments []types.Segment) Report {
	var report Report
	var g errgroup.Group

	g.Go(func() error {
		report.Summary, report.SummaryErr = a.Summarize(ctx, segments)
		return nil
	})
	g.Go(func() error {
		report.Analysis, report.AnalysisErr = a.Analyze(ctx, segments)
		return nil
	})
	_ = g.Wait()

	if report.SummaryErr != nil {
		a.logger.Error(ctx, "Summary failed: %v", report.SummaryErr)
	}
	if report.AnalysisErr != nil {
		a.logger.Error(ctx, "Analysis failed: %v", report.AnalysisErr)
	}
	return report
}
