package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/analysis"
	"github.com/codebuildervaibhav/video-analyzer/internal/queue"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// gatedFetcher blocks each video's fetch until its gate is released
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string]types.TranscriptResult
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: map[string]chan struct{}{}, results: map[string]types.TranscriptResult{}}
}

func (f *gatedFetcher) set(videoID string, res types.TranscriptResult, gated bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[videoID] = res
	if gated {
		f.gates[videoID] = make(chan struct{})
	}
}

func (f *gatedFetcher) release(videoID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.gates[videoID])
}

func (f *gatedFetcher) Fetch(ctx context.Context, videoID string) types.TranscriptResult {
	f.mu.Lock()
	gate := f.gates[videoID]
	res := f.results[videoID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return res
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (a *fakeAnalyzer) Summarize(ctx context.Context, segments []types.Segment) (string, error) {
	return "summary", nil
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, segments []types.Segment) (*types.Analysis, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, analysis.ErrMalformedOutput
	}
	return &types.Analysis{Chapters: []types.Chapter{{Timestamp: "0:00", Title: "Intro"}}, KeyNotes: []types.KeyNote{}}, nil
}

func (a *fakeAnalyzer) Run(ctx context.Context, segments []types.Segment) analysis.Report {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	var r analysis.Report
	r.Summary, r.SummaryErr = a.Summarize(ctx, segments)
	r.Analysis, r.AnalysisErr = a.Analyze(ctx, segments)
	return r
}

type fakeTranslator struct {
	err error
}

func (f *fakeTranslator) TranslateSegments(ctx context.Context, segments []types.Segment, target string) ([]types.Segment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.Segment, len(segments))
	for i, s := range segments {
		out[i] = types.Segment{Text: target + ":" + s.Text, Start: s.Start, Duration: s.Duration, Original: s.Text}
	}
	return out, nil
}

type memRecorder struct {
	mu   sync.Mutex
	recs []types.AnalysisRecord
}

func (r *memRecorder) RecordAnalysis(ctx context.Context, rec types.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

func (r *memRecorder) all() []types.AnalysisRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.AnalysisRecord(nil), r.recs...)
}

func ok(videoID string) types.TranscriptResult {
	return types.TranscriptResult{
		VideoID:  videoID,
		Segments: []types.Segment{{Text: "hello " + videoID, Start: 0, Duration: 2}},
		Source:   types.SourcePrimary,
		Success:  true,
	}
}

type fixture struct {
	m          *Manager
	fetcher    *gatedFetcher
	analyzer   *fakeAnalyzer
	translator *fakeTranslator
	recorder   *memRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := queue.NewWorkerPool(2, nil)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	f := &fixture{
		fetcher:    newGatedFetcher(),
		analyzer:   &fakeAnalyzer{},
		translator: &fakeTranslator{},
		recorder:   &memRecorder{},
	}
	f.m = NewManager(context.Background(), Deps{
		Fetcher:    f.fetcher,
		Analyzer:   f.analyzer,
		Translator: f.translator,
		Runner:     pool,
		Recorder:   f.recorder,
	}, nil)
	return f
}

func waitStatus(t *testing.T, m *Manager, want string) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := m.Snapshot()
		if err == nil && snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	snap, _ := m.Snapshot()
	t.Fatalf("status = %s, want %s", snap.Status, want)
	return Snapshot{}
}

func TestStartToReady(t *testing.T) {
	f := newFixture(t)
	f.fetcher.set("vid00000001", ok("vid00000001"), false)

	snap, err := f.m.Start("vid00000001")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if snap.ID == "" || snap.Transcript == nil {
		t.Errorf("initial snapshot = %+v", snap)
	}

	ready := waitStatus(t, f.m, types.StatusReady)
	if ready.Source != types.SourcePrimary || len(ready.Transcript) != 1 {
		t.Errorf("ready snapshot = %+v", ready)
	}
	if ready.Summary != "summary" || ready.Analysis == nil || ready.AnalysisError != "" {
		t.Errorf("generation results = %+v", ready)
	}

	var recs []types.AnalysisRecord
	for deadline := time.Now().Add(time.Second); time.Now().Before(deadline); time.Sleep(5 * time.Millisecond) {
		if recs = f.recorder.all(); len(recs) > 0 {
			break
		}
	}
	if len(recs) != 1 || recs[0].VideoID != "vid00000001" || recs[0].ChapterCount != 1 || !recs[0].HasSummary {
		t.Errorf("records = %+v", recs)
	}
}

func TestNoTranscriptIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.fetcher.set("vid00000002", types.TranscriptResult{VideoID: "vid00000002", Segments: []types.Segment{}, Error: "no captions, download failed"}, false)

	if _, err := f.m.Start("vid00000002"); err != nil {
		t.Fatal(err)
	}
	snap := waitStatus(t, f.m, types.StatusFailed)
	if snap.Error == "" || len(snap.Transcript) != 0 {
		t.Errorf("failed snapshot = %+v", snap)
	}
	if f.analyzer.calls != 0 {
		t.Error("analysis ran without a transcript")
	}
	if _, err := f.m.RetryAnalysis(); !errors.Is(err, ErrNotReady) {
		t.Errorf("RetryAnalysis() error = %v, want ErrNotReady", err)
	}
	if _, err := f.m.Translate(context.Background(), "vi"); !errors.Is(err, ErrNotReady) {
		t.Errorf("Translate() error = %v, want ErrNotReady", err)
	}
}

func TestSupersededResultIsDropped(t *testing.T) {
	f := newFixture(t)
	f.fetcher.set("aaaaaaaaaaa", ok("aaaaaaaaaaa"), true)
	f.fetcher.set("bbbbbbbbbbb", ok("bbbbbbbbbbb"), false)

	first, err := f.m.Start("aaaaaaaaaaa")
	if err != nil {
		t.Fatal(err)
	}
	oldHandle, _ := f.m.Handle()

	second, err := f.m.Start("bbbbbbbbbbb")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Fatal("session IDs should differ")
	}

	select {
	case <-oldHandle.Done:
	case <-time.After(time.Second):
		t.Error("old session handle not closed on supersede")
	}

	waitStatus(t, f.m, types.StatusReady)
	f.fetcher.release("aaaaaaaaaaa")
	time.Sleep(50 * time.Millisecond)

	snap, _ := f.m.Snapshot()
	if snap.ID != second.ID || snap.VideoID != "bbbbbbbbbbb" {
		t.Errorf("current session = %s/%s", snap.ID, snap.VideoID)
	}
	if snap.Transcript[0].Text != "hello bbbbbbbbbbb" {
		t.Errorf("stale transcript committed: %+v", snap.Transcript)
	}
}

func TestAnalysisFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.analyzer.fail = true
	f.fetcher.set("vid00000003", ok("vid00000003"), false)

	f.m.Start("vid00000003")
	snap := waitStatus(t, f.m, types.StatusReady)
	if snap.Summary != "summary" || snap.AnalysisError == "" || snap.Analysis != nil {
		t.Errorf("snapshot = %+v", snap)
	}

	f.analyzer.mu.Lock()
	f.analyzer.fail = false
	f.analyzer.mu.Unlock()

	if _, err := f.m.RetryAnalysis(); err != nil {
		t.Fatalf("RetryAnalysis() error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, _ = f.m.Snapshot()
		if snap.Status == types.StatusReady && snap.Analysis != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Analysis == nil || snap.AnalysisError != "" {
		t.Errorf("retry snapshot = %+v", snap)
	}
}

func TestTranslateSwapsTrack(t *testing.T) {
	f := newFixture(t)
	f.fetcher.set("vid00000004", ok("vid00000004"), false)
	f.m.Start("vid00000004")
	waitStatus(t, f.m, types.StatusReady)

	h, _ := f.m.Handle()
	before := h.Track.Snapshot()

	snap, err := f.m.Translate(context.Background(), "vi")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if snap.Language != "vi" || snap.Transcript[0].Original != "hello vid00000004" {
		t.Errorf("snapshot = %+v", snap)
	}
	if before[0].Text != "hello vid00000004" {
		t.Error("earlier snapshot was mutated")
	}
	if h.Track.Snapshot()[0].Text != "vi:hello vid00000004" {
		t.Errorf("handle track not swapped: %+v", h.Track.Snapshot())
	}

	f.translator.err = errors.New("quota")
	if _, err := f.m.Translate(context.Background(), "fr"); err == nil {
		t.Fatal("Translate() should fail")
	}
	after, _ := f.m.Snapshot()
	if after.Language != "vi" || after.Transcript[0].Text != "vi:hello vid00000004" {
		t.Errorf("failed translation changed state: %+v", after)
	}
}

func TestCloseAndNoSession(t *testing.T) {
	f := newFixture(t)
	if _, err := f.m.Snapshot(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Snapshot() error = %v, want ErrNoSession", err)
	}
	if err := f.m.Close(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Close() error = %v, want ErrNoSession", err)
	}

	f.fetcher.set("vid00000005", ok("vid00000005"), true)
	f.m.Start("vid00000005")
	if err := f.m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	f.fetcher.release("vid00000005")
	time.Sleep(20 * time.Millisecond)

	if _, err := f.m.Snapshot(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Snapshot() after Close error = %v, want ErrNoSession", err)
	}
	if _, err := f.m.Handle(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Handle() after Close error = %v", err)
	}
}

func TestUnconfiguredServices(t *testing.T) {
	pool := queue.NewWorkerPool(1, nil)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	fetcher := newGatedFetcher()
	fetcher.set("vid00000006", ok("vid00000006"), false)
	m := NewManager(context.Background(), Deps{Fetcher: fetcher, Runner: pool}, nil)

	m.Start("vid00000006")
	snap := waitStatus(t, m, types.StatusReady)
	if snap.SummaryError == "" || snap.AnalysisError == "" {
		t.Errorf("missing analyzer not reported: %+v", snap)
	}
	if len(snap.Transcript) != 1 {
		t.Errorf("transcript = %+v", snap.Transcript)
	}
	if _, err := m.Translate(context.Background(), "vi"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Translate() error = %v, want ErrUnavailable", err)
	}
}
