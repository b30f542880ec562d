// Package server exposes the murmur HTTP API.
//
// Endpoints are JSON over plain net/http. Mutating operations on a single
// note are serialized with a per-note mutex; operations on different notes
// run concurrently. Error responses never echo upstream provider error text:
// transport failures from the model or transcription backends are logged
// with full detail and reported to clients as a generic 502.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/murmurhq/murmur/internal/health"
	"github.com/murmurhq/murmur/internal/ingest"
	"github.com/murmurhq/murmur/internal/notes"
	"github.com/murmurhq/murmur/internal/observe"
	"github.com/murmurhq/murmur/internal/synthesis"
	"github.com/murmurhq/murmur/pkg/provider/embeddings"
)

// Server holds the API's collaborators and implements http.Handler via
// [Server.Routes].
type Server struct {
	engine   *synthesis.Engine
	store    notes.Store
	ingester *ingest.Service
	embedder embeddings.Provider
	defaults *synthesis.UserContext
	health   *health.Handler
	metrics  *observe.Metrics
	logger   *slog.Logger

	noteLocks *keyedMutex
}

// Options configures optional collaborators of [New].
type Options struct {
	// Embedder enables semantic search and summary embeddings. Nil disables
	// both.
	Embedder embeddings.Provider

	// Defaults fills user-context fields that requests omit.
	Defaults *synthesis.UserContext

	// Metrics instruments request handling. Nil falls back to
	// [observe.DefaultMetrics].
	Metrics *observe.Metrics

	// Logger overrides slog.Default().
	Logger *slog.Logger

	// HealthCheckers are evaluated by /readyz.
	HealthCheckers []health.Checker
}

// New creates the API server.
func New(engine *synthesis.Engine, store notes.Store, ingester *ingest.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Server{
		engine:    engine,
		store:     store,
		ingester:  ingester,
		embedder:  opts.Embedder,
		defaults:  opts.Defaults,
		health:    health.New(opts.HealthCheckers...),
		metrics:   metrics,
		logger:    logger,
		noteLocks: newKeyedMutex(),
	}
}

// Routes returns the fully wired handler, including health and metrics
// endpoints and the observability middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/notes", s.handleCreateNote)
	mux.HandleFunc("GET /v1/notes", s.handleListNotes)
	mux.HandleFunc("GET /v1/notes/search", s.handleSearchNotes)
	mux.HandleFunc("GET /v1/notes/{id}", s.handleGetNote)
	mux.HandleFunc("DELETE /v1/notes/{id}", s.handleDeleteNote)
	mux.HandleFunc("POST /v1/notes/{id}/append", s.handleAppendNote)
	mux.HandleFunc("POST /v1/email-drafts", s.handleEmailDraft)

	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

// serviceUnavailable maps an engine or ingestion failure to a client
// response without leaking upstream error text.
func (s *Server) serviceUnavailable(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.ErrorContext(r.Context(), "upstream service failure", "operation", op, "error", err)

	var svcErr *synthesis.ExternalServiceError
	if errors.As(err, &svcErr) {
		writeError(w, http.StatusBadGateway, "the "+svcErr.Service+" service is currently unavailable")
		return
	}
	writeError(w, http.StatusBadGateway, "an upstream service is currently unavailable")
}
