// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat snake_case names shared by the YAML file and APEX_* env vars.
// - New returns defaults; Load layers a file and the environment on top.
// - Errors wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ranking task queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ranking workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the number of idempotency keys remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// TaskRetentionSeconds is how long finished tasks stay readable.
	TaskRetentionSeconds int `koanf:"task_retention"`

	// MaxJobsPerRequest caps the batch size accepted over HTTP.
	MaxJobsPerRequest int `koanf:"max_jobs_per_request"`

	// MaxLimit caps the requested result limit; DefaultLimit applies when unset.
	MaxLimit     int `koanf:"max_limit"`
	DefaultLimit int `koanf:"default_limit"`

	// RerankTopN is the cross-encoder window size.
	RerankTopN int `koanf:"rerank_top_n"`

	// ExtractParallelism bounds concurrent per-job extraction and scoring.
	ExtractParallelism int `koanf:"extract_parallelism"`

	// QualifierScope is "document" or "line".
	QualifierScope string `koanf:"qualifier_scope"`

	// TaxonomyFile optionally points to a YAML taxonomy override.
	TaxonomyFile string `koanf:"taxonomy_file"`

	// Embedder is one of hashing, tei, gemini, none.
	Embedder            string `koanf:"embedder"`
	EmbeddingDimensions int    `koanf:"embedding_dimensions"`

	// Reranker is one of tei, none.
	Reranker string `koanf:"reranker"`

	TEIEmbedURL    string `koanf:"tei_embed_url"`
	TEIRerankURL   string `koanf:"tei_rerank_url"`
	ModelTimeoutMS int    `koanf:"model_timeout_ms"`

	GeminiAPIKey         string `koanf:"gemini_api_key"`
	GeminiEmbeddingModel string `koanf:"gemini_embedding_model"`

	// RedisAddr enables the embedding cache when non-empty.
	RedisAddr                string `koanf:"redis_addr"`
	RedisDB                  int    `koanf:"redis_db"`
	EmbeddingCacheTTLSeconds int    `koanf:"embedding_cache_ttl_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		QueueSize:                1024,
		WorkerCount:              runtime.NumCPU(),
		DedupeSize:               50_000,
		TaskRetentionSeconds:     3600,
		MaxJobsPerRequest:        500,
		MaxLimit:                 100,
		DefaultLimit:             10,
		RerankTopN:               5,
		ExtractParallelism:       runtime.NumCPU(),
		QualifierScope:           "document",
		Embedder:                 "hashing",
		EmbeddingDimensions:      384,
		Reranker:                 "none",
		ModelTimeoutMS:           30_000,
		GeminiEmbeddingModel:     "text-embedding-004",
		EmbeddingCacheTTLSeconds: 86_400,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxJobsPerRequest < 1:
		return fmt.Errorf("%w: max_jobs_per_request must be positive", ErrInvalidConfig)
	case c.MaxLimit < 1:
		return fmt.Errorf("%w: max_limit must be positive", ErrInvalidConfig)
	case c.DefaultLimit < 0 || c.DefaultLimit > c.MaxLimit:
		return fmt.Errorf("%w: default_limit must be within [0, max_limit]", ErrInvalidConfig)
	case c.RerankTopN < 1:
		return fmt.Errorf("%w: rerank_top_n must be positive", ErrInvalidConfig)
	case c.EmbeddingDimensions < 0 || c.EmbeddingDimensions > 8192:
		return fmt.Errorf("%w: embedding_dimensions out of range", ErrInvalidConfig)
	}

	if !oneOf(c.LogFormat, "text", "json") {
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if !oneOf(c.QualifierScope, "document", "line") {
		return fmt.Errorf("%w: qualifier_scope %q", ErrInvalidConfig, c.QualifierScope)
	}
	if !oneOf(c.Embedder, "hashing", "tei", "gemini", "none") {
		return fmt.Errorf("%w: embedder %q", ErrInvalidConfig, c.Embedder)
	}
	if !oneOf(c.Reranker, "tei", "none") {
		return fmt.Errorf("%w: reranker %q", ErrInvalidConfig, c.Reranker)
	}
	if c.Embedder == "tei" && c.TEIEmbedURL == "" {
		return fmt.Errorf("%w: tei_embed_url required for tei embedder", ErrInvalidConfig)
	}
	if c.Embedder == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini_api_key required for gemini embedder", ErrInvalidConfig)
	}
	if c.Reranker == "tei" && c.TEIRerankURL == "" {
		return fmt.Errorf("%w: tei_rerank_url required for tei reranker", ErrInvalidConfig)
	}
	return nil
}

// TaskRetention returns the task retention window.
func (c *Config) TaskRetention() time.Duration {
	return time.Duration(c.TaskRetentionSeconds) * time.Second
}

// ModelTimeout returns the per-call timeout for remote models.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutMS) * time.Millisecond
}

// EmbeddingCacheTTL returns the expiry of cached vectors.
func (c *Config) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.EmbeddingCacheTTLSeconds) * time.Second
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
