// Package observe provides application-wide observability primitives for
// murmur: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all murmur metrics.
const meterName = "github.com/murmurhq/murmur"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// TranscriptionDuration tracks speech-to-text transcription latency.
	TranscriptionDuration metric.Float64Histogram

	// LLMDuration tracks generative-call latency. Use with attribute:
	//   attribute.String("operation", ...)
	LLMDuration metric.Float64Histogram

	// SynthesisDuration tracks end-to-end note synthesis latency, including
	// prompt construction, the model round trip, and validation.
	SynthesisDuration metric.Float64Histogram

	// --- Counters ---

	// LLMRequests counts generative-call attempts. Use with attributes:
	//   attribute.String("operation", ...), attribute.String("status", ...)
	LLMRequests metric.Int64Counter

	// InjectionDetections counts prompt-injection pattern matches in
	// user-supplied text. Use with attribute:
	//   attribute.String("source", ...)
	InjectionDetections metric.Int64Counter

	// UpdateDecisions counts incremental-update decisions. Use with attributes:
	//   attribute.String("update_type", ...), attribute.String("path", ...)
	UpdateDecisions metric.Int64Counter

	// ParseFallbacks counts malformed model responses that were absorbed by
	// a documented per-operation fallback. Use with attribute:
	//   attribute.String("operation", ...)
	ParseFallbacks metric.Int64Counter

	// --- Gauges ---

	// ActiveIngestions tracks in-flight voice-memo ingestions.
	ActiveIngestions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("route", ...), attribute.String("status", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for memo-pipeline latencies: LLM synthesis calls routinely take seconds,
// transcription of long memos tens of seconds.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranscriptionDuration, err = m.Float64Histogram("murmur.transcription.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("murmur.llm.duration",
		metric.WithDescription("Latency of generative model calls by operation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthesisDuration, err = m.Float64Histogram("murmur.synthesis.duration",
		metric.WithDescription("End-to-end note synthesis latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.LLMRequests, err = m.Int64Counter("murmur.llm.requests",
		metric.WithDescription("Total generative-call attempts by operation and status."),
	); err != nil {
		return nil, err
	}
	if met.InjectionDetections, err = m.Int64Counter("murmur.injection.detections",
		metric.WithDescription("Prompt-injection pattern matches in user text by source."),
	); err != nil {
		return nil, err
	}
	if met.UpdateDecisions, err = m.Int64Counter("murmur.update.decisions",
		metric.WithDescription("Incremental-update decisions by update type and decision path."),
	); err != nil {
		return nil, err
	}
	if met.ParseFallbacks, err = m.Int64Counter("murmur.parse.fallbacks",
		metric.WithDescription("Malformed model responses absorbed by per-operation fallbacks."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveIngestions, err = m.Int64UpDownCounter("murmur.active_ingestions",
		metric.WithDescription("Number of in-flight voice-memo ingestions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("murmur.http.request.duration",
		metric.WithDescription("HTTP request latency by route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}
