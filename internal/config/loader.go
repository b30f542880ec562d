package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "gemini", "ollama", "mistral", "groq"},
	"stt":        {"openai", "groq"},
	"embeddings": {"openai"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// ${VAR} references are expanded from the environment before decoding, so
// secrets can stay out of the config file. Useful in tests where configs
// are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(raw))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must not be negative"))
	}

	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)

	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; synthesis will run in offline fallback mode")
	}
	if cfg.Providers.STT.Name == "" {
		slog.Warn("no STT provider configured; audio ingestion is disabled")
	}

	if cfg.Database.EmbeddingDimensions < 0 {
		errs = append(errs, fmt.Errorf("database.embedding_dimensions must not be negative"))
	}
	if cfg.Database.EmbeddingDimensions > 0 && cfg.Providers.Embeddings.Name == "" {
		errs = append(errs, fmt.Errorf("database.embedding_dimensions set but no embeddings provider configured"))
	}

	if cfg.Synthesis.Temperature < 0 || cfg.Synthesis.Temperature > 2 {
		errs = append(errs, fmt.Errorf("synthesis.temperature %v out of range [0, 2]", cfg.Synthesis.Temperature))
	}

	return errors.Join(errs...)
}

// validateProviderName warns for unknown provider names. Unknown names are
// not fatal so that new providers can be tried without a code change here.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known := ValidProviderNames[kind]
	if !slices.Contains(known, name) {
		slog.Warn("unrecognised provider name", "kind", kind, "name", name, "known", known)
	}
}
