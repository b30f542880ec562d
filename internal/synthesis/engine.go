// Package synthesis turns raw voice-memo inputs into structured notes.
//
// The package exposes one type, [Engine], whose operations cover the full
// lifecycle of a note's content: first synthesis from text and audio,
// incremental updates that decide between appending and regenerating,
// standalone action extraction, summarization, and email drafting. Every
// operation shares the same pipeline shape: validate and wrap the user
// content, assemble a system prompt from fixed blocks, call the model,
// decode the JSON response, and sanitize the result against the caller's
// folder set. A malformed model response never fails an operation; each one
// degrades to a deterministic fallback built from its inputs.
//
// Model calls run through a circuit breaker; once the backend has failed
// repeatedly, operations fail fast with [*ExternalServiceError] instead of
// waiting out each call.
//
// An Engine constructed without a provider runs offline: every operation
// returns its deterministic fallback without any model call. This keeps the
// whole pipeline usable in local development and tests.
package synthesis

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/murmurhq/murmur/internal/observe"
	"github.com/murmurhq/murmur/internal/resilience"
	"github.com/murmurhq/murmur/pkg/provider/llm"
)

// DefaultTemperature is the sampling temperature applied to all operations
// unless overridden. Structured extraction wants low variance.
const DefaultTemperature = 0.2

// Engine coordinates all generative note operations. The zero value is not
// usable; construct with [New]. An Engine is safe for concurrent use.
type Engine struct {
	provider    llm.Provider
	breaker     *resilience.Breaker
	temperature float64
	metrics     *observe.Metrics
	logger      *slog.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithTemperature overrides the sampling temperature for all operations.
func WithTemperature(t float64) Option {
	return func(e *Engine) { e.temperature = t }
}

// WithMetrics attaches metric instruments. Without this option the engine
// records nothing.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine backed by the given provider. A nil provider is
// valid and puts the engine in offline mode, where every operation returns
// its deterministic fallback.
func New(provider llm.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:    provider,
		breaker:     resilience.NewBreaker(resilience.Config{Name: "llm"}),
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configured reports whether a model provider is attached. When false, all
// operations run their offline fallbacks.
func (e *Engine) Configured() bool {
	return e.provider != nil
}

// complete performs one model round trip and returns the raw response text.
// The only error it returns is [*ExternalServiceError]; request construction
// cannot fail and response decoding is the caller's concern.
func (e *Engine) complete(ctx context.Context, operation, system, user string, maxTokens int) (string, error) {
	return e.roundTrip(ctx, operation, llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: user}},
		Temperature:  e.temperature,
		MaxTokens:    maxTokens,
		JSONResponse: true,
	})
}

// completeText is complete without the JSON response constraint, for
// operations that want free-form prose back.
func (e *Engine) completeText(ctx context.Context, operation, system, user string, maxTokens int) (string, error) {
	return e.roundTrip(ctx, operation, llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: user}},
		Temperature:  e.temperature,
		MaxTokens:    maxTokens,
	})
}

// roundTrip runs one provider call through the circuit breaker. An open
// breaker fails the call immediately instead of waiting out a provider that
// is already known to be down.
func (e *Engine) roundTrip(ctx context.Context, operation string, req llm.CompletionRequest) (string, error) {
	var resp *llm.CompletionResponse
	start := time.Now()
	err := e.breaker.Execute(func() error {
		var callErr error
		resp, callErr = e.provider.Complete(ctx, req)
		return callErr
	})
	e.recordCall(ctx, operation, time.Since(start), err)
	if err != nil {
		return "", &ExternalServiceError{Service: "llm", Err: err}
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}

func (e *Engine) recordCall(ctx context.Context, operation string, elapsed time.Duration, err error) {
	if e.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.LLMDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)))
	e.metrics.LLMRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// recordSynthesis returns a func that records end-to-end synthesis latency
// when deferred. Covers prompt construction, the model round trip, parsing,
// and sanitization.
func (e *Engine) recordSynthesis(ctx context.Context) func() {
	if e.metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		e.metrics.SynthesisDuration.Record(ctx, time.Since(start).Seconds())
	}
}

// scan runs injection detection over user text and counts any match. The
// text always proceeds unmodified.
func (e *Engine) scan(ctx context.Context, text, source string) {
	if _, found := ScanInjection(text, source); found && e.metrics != nil {
		e.metrics.InjectionDetections.Add(ctx, 1,
			metric.WithAttributes(attribute.String("source", source)))
	}
}

// parseFallback counts a malformed model response absorbed by a fallback.
func (e *Engine) parseFallback(ctx context.Context, operation string) {
	e.logger.Warn("model response unparseable, using fallback", "operation", operation)
	if e.metrics != nil {
		e.metrics.ParseFallbacks.Add(ctx, 1,
			metric.WithAttributes(attribute.String("operation", operation)))
	}
}
