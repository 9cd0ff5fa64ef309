package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
)

const tracksScript = `(() => {
	const r = window.ytInitialPlayerResponse;
	const t = r && r.captions && r.captions.playerCaptionsTracklistRenderer;
	return JSON.stringify((t && t.captionTracks) || []);
})()`

// Browser renders the watch page in headless Chrome to read caption tracks.
// Used when the plain page fetch is served a consent or bot-check interstitial.
type Browser struct {
	baseURL string
	timeout time.Duration
	logger  logger.Logger
}

// NewBrowser creates a headless Chrome track finder
func NewBrowser(log logger.Logger) *Browser {
	if log == nil {
		log = logger.Nop()
	}
	return &Browser{
		baseURL: defaultBaseURL,
		timeout: 45 * time.Second,
		logger:  log,
	}
}

func (b *Browser) findTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, b.timeout)
	defer cancel()

	b.logger.Debug(ctx, "rendering watch page for %s in headless chrome", videoID)

	var raw string
	err := chromedp.Run(ctx,
		chromedp.Navigate(b.baseURL+"/watch?v="+videoID),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(tracksScript, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render watch page: %w", err)
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, transcript.ErrNotAvailable
	}
	return tracks, nil
}
