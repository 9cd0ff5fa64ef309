package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/codebuildervaibhav/video-analyzer/internal/analysis"
	"github.com/codebuildervaibhav/video-analyzer/internal/session"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// Fetcher wraps next so every fetch is timed, counted and traced
func Fetcher(next transcript.Fetcher, m *Metrics) transcript.Fetcher {
	return &fetcher{next: next, m: m}
}

type fetcher struct {
	next transcript.Fetcher
	m    *Metrics
}

func (f *fetcher) Fetch(ctx context.Context, videoID string) types.TranscriptResult {
	ctx, span := StartSpan(ctx, "transcript.fetch",
		trace.WithAttributes(attribute.String("video.id", videoID)))
	defer span.End()

	start := time.Now()
	res := f.next.Fetch(ctx, videoID)

	source := string(res.Source)
	if !res.Success {
		source = SourceFailed
		span.SetStatus(codes.Error, res.Error)
	}
	span.SetAttributes(
		attribute.String("transcript.source", source),
		attribute.Int("transcript.segments", len(res.Segments)),
	)
	f.m.RecordTranscript(ctx, source, time.Since(start))
	return res
}

// Analyzer wraps next so generation calls are timed and traced
func Analyzer(next analysis.Analyzer, m *Metrics) analysis.Analyzer {
	return &analyzer{next: next, m: m}
}

type analyzer struct {
	next analysis.Analyzer
	m    *Metrics
}

func (a *analyzer) Summarize(ctx context.Context, segments []types.Segment) (string, error) {
	ctx, span := StartSpan(ctx, "analysis.summarize")
	defer span.End()

	start := time.Now()
	summary, err := a.next.Summarize(ctx, segments)
	endSpan(span, err)
	a.m.RecordGeneration(ctx, "summary", err, time.Since(start))
	return summary, err
}

func (a *analyzer) Analyze(ctx context.Context, segments []types.Segment) (*types.Analysis, error) {
	ctx, span := StartSpan(ctx, "analysis.analyze")
	defer span.End()

	start := time.Now()
	result, err := a.next.Analyze(ctx, segments)
	endSpan(span, err)
	a.m.RecordGeneration(ctx, "analysis", err, time.Since(start))
	return result, err
}

// Run times the concurrent pair as a whole; both kinds get the same duration.
func (a *analyzer) Run(ctx context.Context, segments []types.Segment) analysis.Report {
	ctx, span := StartSpan(ctx, "analysis.run",
		trace.WithAttributes(attribute.Int("transcript.segments", len(segments))))
	defer span.End()

	start := time.Now()
	report := a.next.Run(ctx, segments)
	d := time.Since(start)

	a.m.RecordGeneration(ctx, "summary", report.SummaryErr, d)
	a.m.RecordGeneration(ctx, "analysis", report.AnalysisErr, d)
	span.SetAttributes(
		attribute.Bool("summary.ok", report.SummaryErr == nil),
		attribute.Bool("analysis.ok", report.AnalysisErr == nil),
	)
	return report
}

// Translator wraps next so translations are timed, counted and traced
func Translator(next session.SegmentTranslator, m *Metrics) session.SegmentTranslator {
	return &translator{next: next, m: m}
}

type translator struct {
	next session.SegmentTranslator
	m    *Metrics
}

func (t *translator) TranslateSegments(ctx context.Context, segments []types.Segment, target string) ([]types.Segment, error) {
	ctx, span := StartSpan(ctx, "translation.segments",
		trace.WithAttributes(
			attribute.String("translation.target", target),
			attribute.Int("transcript.segments", len(segments)),
		))
	defer span.End()

	start := time.Now()
	out, err := t.next.TranslateSegments(ctx, segments, target)
	endSpan(span, err)
	t.m.RecordTranslation(ctx, len(segments), err, time.Since(start))
	return out, err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
