package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// ErrVideoNotFound is returned when the Data API has no such video
var ErrVideoNotFound = errors.New("video not found")

// MetadataClient looks up video details through the YouTube Data API
type MetadataClient struct {
	svc *yt.Service
}

// NewMetadataClient creates a Data API client authenticated with an API key
func NewMetadataClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*MetadataClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &MetadataClient{svc: svc}, nil
}

// Video returns display metadata for videoID
func (m *MetadataClient) Video(ctx context.Context, videoID string) (*types.VideoInfo, error) {
	resp, err := m.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	item := resp.Items[0]
	info := &types.VideoInfo{ID: item.Id}
	if item.Snippet != nil {
		info.Title = item.Snippet.Title
		info.Channel = item.Snippet.ChannelTitle
		if th := item.Snippet.Thumbnails; th != nil {
			switch {
			case th.High != nil:
				info.ThumbnailURL = th.High.Url
			case th.Default != nil:
				info.ThumbnailURL = th.Default.Url
			}
		}
	}
	if item.ContentDetails != nil {
		info.Duration = parseISODuration(item.ContentDetails.Duration)
	}
	return info, nil
}

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration handles the PnDTnHnMnS subset the Data API returns
func parseISODuration(s string) time.Duration {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += time.Duration(n) * unit
	}
	return total
}
