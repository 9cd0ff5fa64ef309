package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

const (
	DefaultBatchSize  = 15
	DefaultBatchPause = 500 * time.Millisecond
	textRetries       = 3
)

// Service translates transcripts in batches on top of a Translator
type Service struct {
	translator Translator
	batchSize  int
	batchPause time.Duration
	retryDelay time.Duration
	logger     logger.Logger
}

// NewService creates a batching translation service
func NewService(translator Translator, batchSize int, batchPause time.Duration, log logger.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchPause < 0 {
		batchPause = DefaultBatchPause
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		translator: translator,
		batchSize:  batchSize,
		batchPause: batchPause,
		retryDelay: time.Second,
		logger:     log,
	}
}

// TranslateSegments returns a new slice with translated text and Original set.
// The input slice is never modified. A batch that fails to translate is copied
// unchanged. Segments already carrying Original keep it.
func (s *Service) TranslateSegments(ctx context.Context, segments []types.Segment, target string) ([]types.Segment, error) {
	target, err := ResolveLanguage(target)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Translating %d segments to %s", len(segments), target)
	out := make([]types.Segment, 0, len(segments))
	failedBatches := 0

	for i := 0; i < len(segments); i += s.batchSize {
		end := min(i+s.batchSize, len(segments))
		batch := segments[i:end]

		texts := make([]string, len(batch))
		for j, seg := range batch {
			texts[j] = seg.Text
		}

		translated, err := s.translator.Translate(ctx, texts, target)
		if err == nil && len(translated) != len(batch) {
			err = fmt.Errorf("got %d translations for %d texts", len(translated), len(batch))
		}

		for j, seg := range batch {
			if err != nil || strings.TrimSpace(translated[j]) == "" {
				out = append(out, seg)
				continue
			}
			original := seg.Original
			if original == "" {
				original = seg.Text
			}
			out = append(out, types.Segment{
				Text:     strings.TrimSpace(translated[j]),
				Start:    seg.Start,
				Duration: seg.Duration,
				Original: original,
			})
		}
		if err != nil {
			failedBatches++
			s.logger.Error(ctx, "Batch translation failed (segments %d-%d): %v", i, end-1, err)
		}

		s.logger.Debug(ctx, "Translation progress: %d/%d segments", end, len(segments))

		if end < len(segments) && s.batchPause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.batchPause):
			}
		}
	}

	s.logger.Info(ctx, "Translation complete: %d segments, %d failed batches", len(out), failedBatches)
	return out, nil
}

// TranslateText translates a single string, retrying transient failures.
// After the last failed attempt the input is returned together with the error.
func (s *Service) TranslateText(ctx context.Context, text, target string) (string, error) {
	target, err := ResolveLanguage(target)
	if err != nil {
		return text, err
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	var lastErr error
	for attempt := 1; attempt <= textRetries; attempt++ {
		out, err := s.translator.Translate(ctx, []string{text}, target)
		if err == nil && len(out) == 1 {
			return out[0], nil
		}
		if err == nil {
			err = fmt.Errorf("got %d translations for 1 text", len(out))
		}
		lastErr = err

		if attempt < textRetries {
			s.logger.Warn(ctx, "Translation error, retrying (%d/%d): %v", attempt, textRetries, err)
			select {
			case <-ctx.Done():
				return text, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
	}

	s.logger.Error(ctx, "Translation failed after %d attempts: %v", textRetries, lastErr)
	return text, lastErr
}

// DetectLanguage detects the language of text
func (s *Service) DetectLanguage(ctx context.Context, text string) (*Detection, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return s.translator.Detect(ctx, text)
}
