package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/video-analyzer/internal/analysis"
	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/playback"
	"github.com/codebuildervaibhav/video-analyzer/internal/queue"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// Manager owns the single active analysis session
type Manager struct {
	deps   Deps
	logger logger.Logger
	base   context.Context
	now    func() time.Time

	mu      sync.Mutex
	current *session
}

// NewManager creates a manager. Background work derives from ctx.
func NewManager(ctx context.Context, deps Deps, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		deps:   deps,
		logger: log,
		base:   ctx,
		now:    time.Now,
	}
}

// Start begins a new analysis for videoID, superseding any existing session.
// The transcript is fetched in the background.
func (m *Manager) Start(videoID string) (Snapshot, error) {
	ctx, cancel := context.WithCancel(m.base)
	now := m.now()
	s := &session{
		id:        uuid.New().String(),
		videoID:   videoID,
		status:    types.StatusFetching,
		track:     playback.NewTrack(nil),
		createdAt: now,
		updatedAt: now,
		ctx:       ctx,
		cancel:    cancel,
	}

	m.mu.Lock()
	if m.current != nil {
		m.logger.Info(ctx, "Session %s superseded by %s", m.current.id, s.id)
		m.current.cancel()
	}
	m.current = s
	snap := s.snapshot()
	m.mu.Unlock()

	job := queue.NewJob(s.id, "transcript "+videoID, func(jobCtx context.Context) error {
		return m.fetch(mergeCancel(ctx, jobCtx), s.id, videoID)
	})
	if err := m.deps.Runner.EnqueueJob(job); err != nil {
		m.commit(s.id, videoID, func(cur *session) {
			cur.status = types.StatusFailed
			cur.err = fmt.Sprintf("could not schedule transcript fetch: %v", err)
		})
		return Snapshot{}, fmt.Errorf("enqueue transcript fetch: %w", err)
	}

	m.logger.Info(ctx, "Session %s started for video %s", s.id, videoID)
	return snap, nil
}

// Snapshot returns the current session state
func (m *Manager) Snapshot() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Snapshot{}, ErrNoSession
	}
	return m.current.snapshot(), nil
}

// Handle returns the current session's playback handle
func (m *Manager) Handle() (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Handle{}, ErrNoSession
	}
	return Handle{
		ID:      m.current.id,
		VideoID: m.current.videoID,
		Track:   m.current.track,
		Done:    m.current.ctx.Done(),
	}, nil
}

// Close discards the current session
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}
	m.current.cancel()
	m.logger.Info(m.base, "Session %s closed", m.current.id)
	m.current = nil
	return nil
}

// RetryAnalysis regenerates summary and analysis for the current transcript
func (m *Manager) RetryAnalysis() (Snapshot, error) {
	m.mu.Lock()
	s := m.current
	if s == nil {
		m.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	if !s.hasText || s.status == types.StatusAnalyzing {
		m.mu.Unlock()
		return Snapshot{}, ErrNotReady
	}
	s.status = types.StatusAnalyzing
	s.summErr, s.analErr = "", ""
	s.updatedAt = m.now()
	snap := s.snapshot()
	id, videoID, ctx := s.id, s.videoID, s.ctx
	m.mu.Unlock()

	job := queue.NewJob(id, "analysis "+videoID, func(jobCtx context.Context) error {
		m.analyze(mergeCancel(ctx, jobCtx), id, videoID)
		return nil
	})
	if err := m.deps.Runner.EnqueueJob(job); err != nil {
		m.commit(id, videoID, func(cur *session) {
			cur.status = types.StatusReady
			cur.analErr = fmt.Sprintf("could not schedule analysis: %v", err)
		})
		return Snapshot{}, fmt.Errorf("enqueue analysis: %w", err)
	}
	return snap, nil
}

// Translate swaps the current transcript for a translated copy.
// On failure the transcript is left untouched.
func (m *Manager) Translate(ctx context.Context, target string) (Snapshot, error) {
	m.mu.Lock()
	s := m.current
	if s == nil {
		m.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	if !s.hasText {
		m.mu.Unlock()
		return Snapshot{}, ErrNotReady
	}
	if m.deps.Translator == nil {
		m.mu.Unlock()
		return Snapshot{}, fmt.Errorf("translate transcript: %w", ErrUnavailable)
	}
	id, videoID := s.id, s.videoID
	segments := s.track.Snapshot()
	m.mu.Unlock()

	translated, err := m.deps.Translator.TranslateSegments(ctx, segments, target)
	if err != nil {
		return Snapshot{}, fmt.Errorf("translate transcript: %w", err)
	}

	var snap Snapshot
	err = m.commit(id, videoID, func(cur *session) {
		cur.track.Replace(translated)
		cur.language = target
		snap = cur.snapshot()
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// fetch runs on the worker pool and commits the transcript exactly once
func (m *Manager) fetch(ctx context.Context, id, videoID string) error {
	result := m.deps.Fetcher.Fetch(ctx, videoID)

	err := m.commit(id, videoID, func(cur *session) {
		if !result.Success {
			cur.status = types.StatusFailed
			cur.err = result.Error
			return
		}
		cur.track.Replace(result.Segments)
		cur.source = result.Source
		cur.hasText = true
		cur.status = types.StatusAnalyzing
	})
	if err != nil {
		return err
	}

	if !result.Success {
		m.record(ctx, types.AnalysisRecord{
			ID:      id,
			VideoID: videoID,
			Status:  types.StatusFailed,
			Error:   result.Error,
		})
		return errors.New(result.Error)
	}

	m.analyze(ctx, id, videoID)
	return nil
}

// analyze generates summary and analysis concurrently and commits both
func (m *Manager) analyze(ctx context.Context, id, videoID string) {
	m.mu.Lock()
	if m.current == nil || m.current.id != id {
		m.mu.Unlock()
		return
	}
	segments := m.current.track.Snapshot()
	source := m.current.source
	m.mu.Unlock()

	var report analysis.Report
	if m.deps.Analyzer != nil {
		report = m.deps.Analyzer.Run(ctx, segments)
	} else {
		err := fmt.Errorf("generate analysis: %w", ErrUnavailable)
		report = analysis.Report{SummaryErr: err, AnalysisErr: err}
	}

	err := m.commit(id, videoID, func(cur *session) {
		cur.status = types.StatusReady
		cur.summary, cur.summErr = report.Summary, errString(report.SummaryErr)
		if report.AnalysisErr == nil {
			cur.analysis = report.Analysis
		}
		cur.analErr = errString(report.AnalysisErr)
	})
	if err != nil {
		return
	}

	rec := types.AnalysisRecord{
		ID:           id,
		VideoID:      videoID,
		Source:       source,
		Status:       types.StatusReady,
		SegmentCount: len(segments),
		HasSummary:   report.SummaryErr == nil,
	}
	if report.Analysis != nil {
		rec.ChapterCount = len(report.Analysis.Chapters)
		rec.NoteCount = len(report.Analysis.KeyNotes)
	}
	if report.AnalysisErr != nil {
		rec.Error = report.AnalysisErr.Error()
	} else if report.SummaryErr != nil {
		rec.Error = report.SummaryErr.Error()
	}
	m.record(ctx, rec)
}

// commit applies fn only if (id, videoID) still identifies the current session
func (m *Manager) commit(id, videoID string, fn func(cur *session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current
	if cur == nil || cur.id != id || cur.videoID != videoID {
		m.logger.Info(m.base, "Dropping result for superseded session %s (%s)", id, videoID)
		return ErrSuperseded
	}
	fn(cur)
	cur.updatedAt = m.now()
	return nil
}

func (m *Manager) record(ctx context.Context, rec types.AnalysisRecord) {
	if m.deps.Recorder == nil {
		return
	}
	rec.CreatedAt = m.now()
	if err := m.deps.Recorder.RecordAnalysis(context.WithoutCancel(ctx), rec); err != nil {
		m.logger.Warn(ctx, "Failed to record analysis for %s: %v", rec.VideoID, err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, analysis.ErrMalformedOutput) {
		return "analysis output could not be parsed: " + err.Error()
	}
	return err.Error()
}

// mergeCancel returns a context cancelled when either parent is
func mergeCancel(a, b context.Context) context.Context {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	context.AfterFunc(ctx, func() { stop() })
	return ctx
}
