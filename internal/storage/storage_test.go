package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

func TestMetadataDBRecordAndList(t *testing.T) {
	db, err := NewMetadataDB(":memory:")
	if err != nil {
		t.Fatalf("NewMetadataDB() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2025, 1, 23, 14, 30, 0, 0, time.UTC)
	recs := []types.AnalysisRecord{
		{ID: "s1", VideoID: "aaaaaaaaaaa", Source: types.SourcePrimary, Status: types.StatusReady, SegmentCount: 10, ChapterCount: 3, NoteCount: 5, HasSummary: true, CreatedAt: base},
		{ID: "s2", VideoID: "bbbbbbbbbbb", Status: types.StatusFailed, Error: "no transcript", CreatedAt: base.Add(time.Minute)},
	}
	for _, r := range recs {
		if err := db.RecordAnalysis(ctx, r); err != nil {
			t.Fatalf("RecordAnalysis() error = %v", err)
		}
	}

	got, err := db.ListAnalyses(ctx, 10)
	if err != nil {
		t.Fatalf("ListAnalyses() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "s2" || got[0].Error != "no transcript" || got[0].Status != types.StatusFailed {
		t.Errorf("newest = %+v", got[0])
	}
	if got[1].Source != types.SourcePrimary || !got[1].HasSummary || got[1].ChapterCount != 3 {
		t.Errorf("oldest = %+v", got[1])
	}

	limited, _ := db.ListAnalyses(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d rows", len(limited))
	}
}

func TestSaveExport(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir)
	ls.now = func() time.Time { return time.Date(2025, 1, 23, 14, 30, 22, 0, time.UTC) }

	exp := Export{
		VideoID: "dQw4w9WgXcQ",
		Source:  types.SourceFallback,
		Summary: "## Overview\n- **Key** point\nPlain line",
		Analysis: &types.Analysis{
			Chapters: []types.Chapter{{Timestamp: "0:00", Title: "Intro"}},
			KeyNotes: []types.KeyNote{{Time: "0:15", Note: "Theme"}},
		},
		Segments: []types.Segment{
			{Text: "xin chao", Start: 0, Duration: 2, Original: "hello"},
			{Text: "the end", Start: 3700, Duration: 1},
		},
	}

	files, err := ls.SaveExport(exp)
	if err != nil {
		t.Fatalf("SaveExport() error = %v", err)
	}

	wantDir := filepath.Join(dir, "2025", "01", "23")
	if filepath.Dir(files.JSONPath) != wantDir || filepath.Base(files.JSONPath) != "20250123_143022_dQw4w9WgXcQ.json" {
		t.Errorf("JSONPath = %s", files.JSONPath)
	}

	data, err := os.ReadFile(files.JSONPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Export
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.Source != types.SourceFallback || len(decoded.Segments) != 2 || decoded.Segments[0].Original != "hello" {
		t.Errorf("decoded = %+v", decoded)
	}

	info, err := os.Stat(files.DocxPath)
	if err != nil || info.Size() == 0 {
		t.Errorf("docx missing or empty: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"My Talk: Part 1/2": "My_Talk__Part_1_2",
		"  ":                "untitled",
		`a\b*c?d"e<f>g|h`:   "a_b_c_d_e_f_g_h",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
	if got := sanitizeFilename(strings.Repeat("x", 150)); len(got) != 100 {
		t.Errorf("len = %d, want 100", len(got))
	}
}

func TestFolderQuery(t *testing.T) {
	got := folderQuery("Bob's Videos", "")
	if !strings.Contains(got, `name='Bob\'s Videos'`) || strings.Contains(got, "in parents") {
		t.Errorf("folderQuery() = %s", got)
	}
	if got := folderQuery("2025", "abc"); !strings.HasSuffix(got, "and 'abc' in parents") {
		t.Errorf("folderQuery() = %s", got)
	}
}

func TestNewDriveClientWithoutToken(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	content := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(creds, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := NewDriveClient(context.Background(), creds, filepath.Join(dir, "token.json"), "Video Analyses")
	if !errors.Is(err, ErrDriveNotAuthorized) {
		t.Errorf("NewDriveClient() error = %v, want ErrDriveNotAuthorized", err)
	}

	url, err := AuthCodeURL(creds)
	if err != nil || !strings.Contains(url, "client_id=id") {
		t.Errorf("AuthCodeURL() = %q, %v", url, err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if _, err := tokenFromFile(path); !os.IsNotExist(err) {
		t.Errorf("tokenFromFile(missing) error = %v", err)
	}

	if err := saveToken(path, &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}); err != nil {
		t.Fatalf("saveToken() error = %v", err)
	}
	tok, err := tokenFromFile(path)
	if err != nil || tok.AccessToken != "access" || tok.RefreshToken != "refresh" {
		t.Errorf("tokenFromFile() = %+v, %v", tok, err)
	}
}
