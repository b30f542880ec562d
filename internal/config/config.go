// Package config provides the configuration schema and loader for the
// murmur server.
package config

import "time"

// LogLevel controls log verbosity for the murmur server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for murmur.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// ShutdownTimeout bounds graceful shutdown. Zero means 15s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. An empty LLM entry puts the synthesis engine in offline
// mode; an empty STT entry disables audio ingestion.
type ProvidersConfig struct {
	LLM        ProviderEntry `yaml:"llm"`
	STT        ProviderEntry `yaml:"stt"`
	Embeddings ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block shared by all provider
// kinds.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "groq", "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "llama-3.3-70b-versatile", "whisper-1").
	Model string `yaml:"model"`
}

// DatabaseConfig holds note-store settings.
type DatabaseConfig struct {
	// DSN is the PostgreSQL connection string. Empty selects the in-memory
	// store.
	DSN string `yaml:"dsn"`

	// EmbeddingDimensions is the width of summary embedding vectors. Must
	// match the configured embeddings model. Zero disables semantic search.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`
}

// StorageConfig holds audio blob storage settings.
type StorageConfig struct {
	// AudioDir is the directory that holds original audio recordings.
	// Empty keeps blobs in memory.
	AudioDir string `yaml:"audio_dir"`
}

// SynthesisConfig tunes the note synthesis engine.
type SynthesisConfig struct {
	// Temperature is the model sampling temperature. Zero uses the engine
	// default.
	Temperature float64 `yaml:"temperature"`

	// DefaultTimezone applies when a request carries no user timezone.
	DefaultTimezone string `yaml:"default_timezone"`

	// DefaultFolders overrides the built-in folder set for requests that
	// carry none.
	DefaultFolders []string `yaml:"default_folders"`
}
