package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
)

const srv3Track = `<?xml version="1.0" encoding="utf-8" ?>
<timedtext format="3">
<body>
<p t="0" d="2500">Hello &amp;amp; welcome</p>
<p t="2500" d="3000"><s>to the</s><s> show</s></p>
<p t="6000" d="1000">   </p>
</body>
</timedtext>`

const legacyTrack = `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="1.5" dur="2">it&amp;#39;s here</text><text start="3.5" dur="0.5">next</text></transcript>`

func TestParseTimedText(t *testing.T) {
	records, err := parseTimedText([]byte(srv3Track))
	if err != nil {
		t.Fatalf("parseTimedText() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(records), records)
	}
	if records[0].Text != "Hello & welcome" || records[0].Start != 0 || records[0].Duration != 2.5 {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Text != "to the show" || records[1].Start != 2.5 || records[1].Duration != 3 {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestParseTimedTextLegacy(t *testing.T) {
	records, err := parseTimedText([]byte(legacyTrack))
	if err != nil {
		t.Fatalf("parseTimedText() error = %v", err)
	}
	if len(records) != 2 || records[0].Text != "it's here" || records[0].Start != 1.5 {
		t.Errorf("records = %+v", records)
	}
}

func TestParseTimedTextUnknown(t *testing.T) {
	if _, err := parseTimedText([]byte(`<html></html>`)); err == nil {
		t.Error("expected error for unknown document")
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "de", BaseURL: "de"},
		{LanguageCode: "en", Kind: "asr", BaseURL: "en-asr"},
		{LanguageCode: "en", BaseURL: "en"},
	}

	tests := []struct {
		name  string
		langs []string
		want  string
		ok    bool
	}{
		{"manual preferred over asr", []string{"en"}, "en", true},
		{"language order", []string{"de", "en"}, "de", true},
		{"missing language", []string{"fr"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickTrack(tracks, tt.langs)
			if ok != tt.ok || got.BaseURL != tt.want {
				t.Errorf("pickTrack() = %q, %v; want %q, %v", got.BaseURL, ok, tt.want, tt.ok)
			}
		})
	}

	asrOnly := []captionTrack{{LanguageCode: "en", Kind: "asr", BaseURL: "en-asr"}}
	if got, ok := pickTrack(asrOnly, []string{"en"}); !ok || got.BaseURL != "en-asr" {
		t.Errorf("pickTrack(asr only) = %q, %v", got.BaseURL, ok)
	}
}

func newCaptionServer(t *testing.T, watchPage func(base string) string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, watchPage(srv.URL))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fmt") != "srv3" {
			http.Error(w, "bad fmt", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, srv3Track)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCaptionsGet(t *testing.T) {
	srv := newCaptionServer(t, func(base string) string {
		return `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"` +
			base + `/api/timedtext?v=abc&lang=en","languageCode":"en"}],"audioTracks":[]}}};</script></html>`
	})

	c := NewCaptions([]string{"en"}, nil, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	records, err := c.Get(context.Background(), "abcdefghijk")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len = %d, want 2", len(records))
	}
}

func TestCaptionsGetRelativeTrackURL(t *testing.T) {
	srv := newCaptionServer(t, func(string) string {
		return `{"captionTracks":[{"baseUrl":"/api/timedtext?v=abc","languageCode":"en"}]}`
	})

	c := NewCaptions(nil, nil, WithBaseURL(srv.URL))
	if _, err := c.Get(context.Background(), "abcdefghijk"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestCaptionsGetNotAvailable(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"no caption block", `<html>"playabilityStatus":{"status":"OK"}</html>`},
		{"empty track list", `"captionTracks":[]`},
		{"wrong language", `"captionTracks":[{"baseUrl":"/x","languageCode":"ja"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCaptionServer(t, func(string) string { return tt.page })
			c := NewCaptions([]string{"en"}, nil, WithBaseURL(srv.URL))

			_, err := c.Get(context.Background(), "abcdefghijk")
			if !errors.Is(err, transcript.ErrNotAvailable) {
				t.Errorf("Get() error = %v, want ErrNotAvailable", err)
			}
		})
	}
}

func TestCaptionsGetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCaptions(nil, nil, WithBaseURL(srv.URL))
	_, err := c.Get(context.Background(), "abcdefghijk")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("Get() error = %v, want status 429", err)
	}
}
