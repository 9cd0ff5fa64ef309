// Package observe records OpenTelemetry metrics and spans for transcript
// fetching, generation, translation and HTTP traffic.
package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/codebuildervaibhav/video-analyzer"

// Status attribute values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// SourceFailed labels transcript fetches where neither source produced text
const SourceFailed = "failed"

// Metrics holds every instrument the server records
type Metrics struct {
	// TranscriptFetches counts fetches by attribute "source" (primary, fallback, failed)
	TranscriptFetches metric.Int64Counter

	// TranscriptDuration is fetch latency including any download and recognition
	TranscriptDuration metric.Float64Histogram

	// GenerationDuration is model latency by "kind" (summary, analysis) and "status"
	GenerationDuration metric.Float64Histogram

	// TranslationDuration is whole-transcript translation latency by "status"
	TranslationDuration metric.Float64Histogram

	// TranslatedSegments counts segments sent for translation
	TranslatedSegments metric.Int64Counter

	// HTTPRequestDuration is request latency by "method", "route" and "status"
	HTTPRequestDuration metric.Float64Histogram
}

// Recognition on CPU can take minutes, so buckets reach 10m
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600,
}

// NewMetrics creates the instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TranscriptFetches, err = m.Int64Counter("analyzer.transcript.fetches",
		metric.WithDescription("Transcript fetches by the source that produced them."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptDuration, err = m.Float64Histogram("analyzer.transcript.duration",
		metric.WithDescription("Latency of a transcript fetch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GenerationDuration, err = m.Float64Histogram("analyzer.generation.duration",
		metric.WithDescription("Latency of summary and analysis generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslationDuration, err = m.Float64Histogram("analyzer.translation.duration",
		metric.WithDescription("Latency of translating a transcript."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslatedSegments, err = m.Int64Counter("analyzer.translation.segments",
		metric.WithDescription("Segments submitted for translation."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("analyzer.http.request.duration",
		metric.WithDescription("HTTP request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// DefaultMetrics creates instruments on the global meter provider
func DefaultMetrics() (*Metrics, error) {
	return NewMetrics(otel.GetMeterProvider())
}

// RecordTranscript records one finished fetch
func (m *Metrics) RecordTranscript(ctx context.Context, source string, d time.Duration) {
	m.TranscriptFetches.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	m.TranscriptDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("source", source)))
}

// RecordGeneration records one summary or analysis call
func (m *Metrics) RecordGeneration(ctx context.Context, kind string, err error, d time.Duration) {
	m.GenerationDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", statusOf(err)),
		),
	)
}

// RecordTranslation records one transcript translation
func (m *Metrics) RecordTranslation(ctx context.Context, segments int, err error, d time.Duration) {
	m.TranslatedSegments.Add(ctx, int64(segments))
	m.TranslationDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("status", statusOf(err))),
	)
}

// RecordHTTP records one served request
func (m *Metrics) RecordHTTP(ctx context.Context, method, route string, status int, d time.Duration) {
	m.HTTPRequestDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(status)),
		),
	)
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
