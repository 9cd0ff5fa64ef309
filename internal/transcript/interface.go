package transcript

import (
	"context"
	"errors"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

var (
	// ErrNotAvailable is returned by a PrimarySource when captions are
	// disabled, missing or restricted for a video.
	ErrNotAvailable = errors.New("captions not available")

	// ErrInvalidVideoID is returned when input is neither a recognised
	// video URL nor a bare video ID.
	ErrInvalidVideoID = errors.New("invalid video id or url")
)

// PrimarySource fetches hosted captions for a video
type PrimarySource interface {
	Get(ctx context.Context, videoID string) ([]types.CaptionRecord, error)
}

// AudioDownloader fetches a video's audio track into a local file
type AudioDownloader interface {
	Download(ctx context.Context, videoID string) (string, error)
}

// Recognizer produces timed text from an audio file
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) ([]types.RecognizedSegment, error)
}

// Fetcher produces a normalized transcript result for a video
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) types.TranscriptResult
}
