package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

const (
	defaultBaseURL   = "https://www.youtube.com"
	captionsMarker   = `"captionTracks":`
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// captionTrack is one entry of the player's caption track list
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// trackFinder lists the caption tracks published for a video
type trackFinder interface {
	findTracks(ctx context.Context, videoID string) ([]captionTrack, error)
}

// Captions fetches hosted captions for a video. It satisfies transcript.PrimarySource.
type Captions struct {
	baseURL   string
	client    *http.Client
	languages []string
	finder    trackFinder
	logger    logger.Logger
}

// CaptionsOption customises a Captions client
type CaptionsOption func(*Captions)

// WithBaseURL points the client at a different host
func WithBaseURL(u string) CaptionsOption {
	return func(c *Captions) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) CaptionsOption {
	return func(c *Captions) { c.client = hc }
}

// WithBrowser discovers caption tracks by rendering the watch page in headless Chrome
func WithBrowser(b *Browser) CaptionsOption {
	return func(c *Captions) {
		if b != nil {
			c.finder = b
		}
	}
}

// NewCaptions creates a captions client preferring languages in order
func NewCaptions(languages []string, log logger.Logger, opts ...CaptionsOption) *Captions {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Captions{
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		languages: languages,
		logger:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.finder == nil {
		c.finder = &pageFinder{c: c}
	}
	return c
}

// Get returns caption records for videoID, or transcript.ErrNotAvailable
func (c *Captions) Get(ctx context.Context, videoID string) ([]types.CaptionRecord, error) {
	tracks, err := c.finder.findTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks, c.languages)
	if !ok {
		return nil, fmt.Errorf("%w: no track in %v", transcript.ErrNotAvailable, c.languages)
	}
	c.logger.Debug(ctx, "using caption track %s (kind=%q) for %s", track.LanguageCode, track.Kind, videoID)

	body, err := c.get(ctx, c.resolve(track.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}

	records, err := parseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("parse caption track: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: caption track is empty", transcript.ErrNotAvailable)
	}
	return records, nil
}

// pickTrack prefers manual tracks over auto-generated ones, in language order
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, auto := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if (t.Kind == "asr") != auto {
					continue
				}
				if strings.EqualFold(t.LanguageCode, lang) {
					return t, true
				}
			}
		}
	}
	return captionTrack{}, false
}

func (c *Captions) resolve(trackURL string) string {
	if strings.HasPrefix(trackURL, "/") {
		trackURL = c.baseURL + trackURL
	}
	u, err := url.Parse(trackURL)
	if err != nil {
		return trackURL
	}
	q := u.Query()
	q.Set("fmt", "srv3")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Captions) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return body, nil
}

// pageFinder reads the caption track list embedded in the watch page
type pageFinder struct {
	c *Captions
}

func (f *pageFinder) findTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	page, err := f.c.get(ctx, f.c.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	return extractTracks(string(page))
}

func extractTracks(page string) ([]captionTrack, error) {
	idx := strings.Index(page, captionsMarker)
	if idx < 0 {
		return nil, transcript.ErrNotAvailable
	}

	var tracks []captionTrack
	dec := json.NewDecoder(strings.NewReader(page[idx+len(captionsMarker):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, transcript.ErrNotAvailable
	}
	return tracks, nil
}

// timedTextDoc accepts both the srv3 layout (<timedtext><body><p t d>) and the
// legacy layout (<transcript><text start dur>).
type timedTextDoc struct {
	XMLName xml.Name
	Body    struct {
		Paragraphs []timedTextParagraph `xml:"p"`
	} `xml:"body"`
	Texts []legacyText `xml:"text"`
}

type timedTextParagraph struct {
	Time      string `xml:"t,attr"`
	Duration  string `xml:"d,attr"`
	Content   string `xml:",chardata"`
	Sentences []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

type legacyText struct {
	Start    string `xml:"start,attr"`
	Duration string `xml:"dur,attr"`
	Content  string `xml:",chardata"`
}

func parseTimedText(data []byte) ([]types.CaptionRecord, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var records []types.CaptionRecord
	switch doc.XMLName.Local {
	case "timedtext":
		for _, p := range doc.Body.Paragraphs {
			text := p.Content
			if len(p.Sentences) > 0 {
				parts := make([]string, 0, len(p.Sentences))
				for _, s := range p.Sentences {
					parts = append(parts, s.Text)
				}
				text = strings.Join(parts, "")
			}
			text = cleanCaptionText(text)
			if text == "" {
				continue
			}
			records = append(records, types.CaptionRecord{
				Text:     text,
				Start:    parseNumber(p.Time) / 1000,
				Duration: parseNumber(p.Duration) / 1000,
			})
		}
	case "transcript":
		for _, t := range doc.Texts {
			text := cleanCaptionText(t.Content)
			if text == "" {
				continue
			}
			records = append(records, types.CaptionRecord{
				Text:     text,
				Start:    parseNumber(t.Start),
				Duration: parseNumber(t.Duration),
			})
		}
	default:
		return nil, fmt.Errorf("unknown caption document <%s>", doc.XMLName.Local)
	}
	return records, nil
}

func cleanCaptionText(s string) string {
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
