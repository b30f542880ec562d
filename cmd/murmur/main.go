// Command murmur is the main entry point for the murmur note-taking server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/murmurhq/murmur/internal/blob"
	"github.com/murmurhq/murmur/internal/config"
	"github.com/murmurhq/murmur/internal/health"
	"github.com/murmurhq/murmur/internal/ingest"
	"github.com/murmurhq/murmur/internal/notes"
	"github.com/murmurhq/murmur/internal/observe"
	"github.com/murmurhq/murmur/internal/server"
	"github.com/murmurhq/murmur/internal/synthesis"
	"github.com/murmurhq/murmur/pkg/provider/embeddings"
	oaembed "github.com/murmurhq/murmur/pkg/provider/embeddings/openai"
	"github.com/murmurhq/murmur/pkg/provider/llm"
	"github.com/murmurhq/murmur/pkg/provider/llm/anyllm"
	"github.com/murmurhq/murmur/pkg/provider/stt"
	sttoai "github.com/murmurhq/murmur/pkg/provider/stt/openai"
)

// groqOpenAIBaseURL is Groq's OpenAI-compatible endpoint, used for hosted
// Whisper transcription.
const groqOpenAIBaseURL = "https://api.groq.com/openai/v1"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "murmur: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("murmur starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "murmur"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	llmProvider, err := buildLLM(cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to create llm provider", "err", err)
		return 1
	}
	transcriber, err := buildSTT(cfg.Providers.STT)
	if err != nil {
		slog.Error("failed to create stt provider", "err", err)
		return 1
	}
	embedder, err := buildEmbeddings(cfg.Providers.Embeddings)
	if err != nil {
		slog.Error("failed to create embeddings provider", "err", err)
		return 1
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	var store notes.Store
	if cfg.Database.DSN != "" {
		pg, err := notes.NewPostgresStore(ctx, cfg.Database.DSN, cfg.Database.EmbeddingDimensions)
		if err != nil {
			slog.Error("failed to open postgres store", "err", err)
			return 1
		}
		store = pg
		slog.Info("notes store ready", "backend", "postgres")
	} else {
		store = notes.NewMemoryStore()
		slog.Warn("no database configured, notes are held in memory only")
	}
	defer store.Close()

	var blobs *blob.Store
	if cfg.Storage.AudioDir != "" {
		blobs, err = blob.NewFileStore(cfg.Storage.AudioDir)
		if err != nil {
			slog.Error("failed to open audio store", "err", err)
			return 1
		}
	} else {
		blobs = blob.NewMemStore()
		slog.Warn("no audio_dir configured, recordings are held in memory only")
	}

	// ── Engine and HTTP server ────────────────────────────────────────────────
	engineOpts := []synthesis.Option{synthesis.WithMetrics(metrics)}
	if cfg.Synthesis.Temperature > 0 {
		engineOpts = append(engineOpts, synthesis.WithTemperature(cfg.Synthesis.Temperature))
	}
	engine := synthesis.New(llmProvider, engineOpts...)
	if !engine.Configured() {
		slog.Warn("no llm provider configured, synthesis runs in offline fallback mode")
	}

	ingester := ingest.NewService(transcriber, blobs, metrics)

	var defaults *synthesis.UserContext
	if cfg.Synthesis.DefaultTimezone != "" || len(cfg.Synthesis.DefaultFolders) > 0 {
		defaults = &synthesis.UserContext{
			Timezone: cfg.Synthesis.DefaultTimezone,
			Folders:  cfg.Synthesis.DefaultFolders,
		}
	}

	srv := server.New(engine, store, ingester, server.Options{
		Embedder: embedder,
		Defaults: defaults,
		Metrics:  metrics,
		Logger:   logger,
		HealthCheckers: []health.Checker{
			{Name: "store", Check: store.Ping},
		},
	})

	printStartupSummary(cfg)

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		slog.Error("server error", "err", err)
		return 1
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildLLM creates the language model provider, or nil when none is
// configured. A nil provider puts the synthesis engine in offline mode.
func buildLLM(entry config.ProviderEntry) (llm.Provider, error) {
	if entry.Name == "" {
		return nil, nil
	}
	var opts []anyllmlib.Option
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	p, err := anyllm.New(entry.Name, entry.Model, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "llm", "name", entry.Name, "model", entry.Model)
	return p, nil
}

// buildSTT creates the transcriber, or nil when none is configured. Both
// supported backends speak the OpenAI audio API; groq differs only in its
// base URL.
func buildSTT(entry config.ProviderEntry) (stt.Transcriber, error) {
	if entry.Name == "" {
		return nil, nil
	}
	var opts []sttoai.Option
	baseURL := entry.BaseURL
	if baseURL == "" && entry.Name == "groq" {
		baseURL = groqOpenAIBaseURL
	}
	if baseURL != "" {
		opts = append(opts, sttoai.WithBaseURL(baseURL))
	}
	p, err := sttoai.New(entry.APIKey, entry.Model, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "stt", "name", entry.Name, "model", entry.Model)
	return p, nil
}

// buildEmbeddings creates the embeddings provider, or nil when none is
// configured. A nil provider disables semantic search.
func buildEmbeddings(entry config.ProviderEntry) (embeddings.Provider, error) {
	if entry.Name == "" {
		return nil, nil
	}
	var opts []oaembed.Option
	if entry.BaseURL != "" {
		opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
	}
	p, err := oaembed.New(entry.APIKey, entry.Model, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "embeddings", "name", entry.Name, "model", entry.Model)
	return p, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║          murmur — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	printProvider("Embeddings", cfg.Providers.Embeddings.Name, cfg.Providers.Embeddings.Model)
	if cfg.Database.DSN != "" {
		fmt.Printf("║  Notes store     : %-19s ║\n", "postgres")
	} else {
		fmt.Printf("║  Notes store     : %-19s ║\n", "in-memory")
	}
	if cfg.Storage.AudioDir != "" {
		fmt.Printf("║  Audio store     : %-19s ║\n", truncateCell(cfg.Storage.AudioDir))
	} else {
		fmt.Printf("║  Audio store     : %-19s ║\n", "in-memory")
	}
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, truncateCell(value))
}

func truncateCell(value string) string {
	if len(value) > 19 {
		return value[:16] + "…"
	}
	return value
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
