package transcript

import (
	"context"
	"fmt"
	"os"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// Options tunes normalizer behaviour
type Options struct {
	// SortByStart orders output segments by start time
	SortByStart bool
}

// Normalizer picks between hosted captions and the download+recognize
// fallback and produces a uniform TranscriptResult.
type Normalizer struct {
	primary    PrimarySource
	downloader AudioDownloader
	recognizer Recognizer
	opts       Options
	logger     logger.Logger
}

// NewNormalizer creates a normalizer. A nil logger discards output.
func NewNormalizer(primary PrimarySource, downloader AudioDownloader, recognizer Recognizer, opts Options, log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{
		primary:    primary,
		downloader: downloader,
		recognizer: recognizer,
		opts:       opts,
		logger:     log,
	}
}

// Fetch never returns an error; failures are reported on the result
func (n *Normalizer) Fetch(ctx context.Context, videoID string) (result types.TranscriptResult) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error(ctx, "transcript fetch for %s panicked: %v", videoID, r)
			result = failed(videoID, fmt.Errorf("transcript fetch panicked: %v", r))
		}
	}()

	segments, err := n.fromPrimary(ctx, videoID)
	if err == nil {
		return n.succeeded(videoID, segments, types.SourcePrimary)
	}
	n.logger.Info(ctx, "primary captions unavailable for %s (%v), falling back to transcription", videoID, err)

	if ctx.Err() != nil {
		return failed(videoID, ctx.Err())
	}

	segments, fallbackErr := n.fromFallback(ctx, videoID)
	if fallbackErr != nil {
		n.logger.Error(ctx, "fallback transcription failed for %s: %v", videoID, fallbackErr)
		return failed(videoID, fmt.Errorf("no transcript available: captions: %v; transcription: %w", err, fallbackErr))
	}
	return n.succeeded(videoID, segments, types.SourceFallback)
}

func (n *Normalizer) fromPrimary(ctx context.Context, videoID string) ([]types.Segment, error) {
	if n.primary == nil {
		return nil, ErrNotAvailable
	}
	records, err := n.primary.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}

	segments, repaired := FromCaptions(records)
	if repaired > 0 {
		n.logger.Warn(ctx, "repaired timing on %d caption records for %s", repaired, videoID)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty caption track", ErrNotAvailable)
	}
	return segments, nil
}

func (n *Normalizer) fromFallback(ctx context.Context, videoID string) ([]types.Segment, error) {
	if n.downloader == nil || n.recognizer == nil {
		return nil, fmt.Errorf("transcription fallback not configured")
	}

	audioPath, err := n.downloader.Download(ctx, videoID)
	if audioPath != "" {
		defer n.removeArtifact(ctx, audioPath)
	}
	if err != nil {
		return nil, fmt.Errorf("download audio: %w", err)
	}

	recognized, err := n.recognizer.Recognize(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("recognize audio: %w", err)
	}

	segments, repaired := FromRecognition(recognized)
	if repaired > 0 {
		n.logger.Warn(ctx, "repaired timing on %d recognized segments for %s", repaired, videoID)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("recognizer produced no speech")
	}
	return segments, nil
}

func (n *Normalizer) removeArtifact(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		n.logger.Warn(ctx, "failed to remove temp audio %s: %v", path, err)
	}
}

func (n *Normalizer) succeeded(videoID string, segments []types.Segment, source types.Source) types.TranscriptResult {
	if n.opts.SortByStart {
		SortByStart(segments)
	}
	return types.TranscriptResult{
		VideoID:  videoID,
		Segments: segments,
		Source:   source,
		Success:  true,
	}
}

func failed(videoID string, err error) types.TranscriptResult {
	return types.TranscriptResult{
		VideoID:  videoID,
		Segments: []types.Segment{},
		Success:  false,
		Error:    err.Error(),
	}
}
