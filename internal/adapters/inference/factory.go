package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/embedding"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/rerank"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// Backend names accepted by the factory.
const (
	BackendHashing = "hashing"
	BackendTEI     = "tei"
	BackendGemini  = "gemini"
	BackendNone    = "none"
)

// Config selects and parameterises model backends.
type Config struct {
	Embedder     string
	Reranker     string
	Dimensions   int
	Timeout      time.Duration
	TEIEmbedURL  string
	TEIRerankURL string

	GeminiAPIKey string
	GeminiModel  string

	// RedisAddr enables the embedding cache when set.
	RedisAddr string
	RedisDB   int
	CacheTTL  time.Duration
}

// NewEmbedder returns a lazily loaded embedder for cfg.Embedder, or nil for
// "none". Connection problems surface on first use, not here.
func NewEmbedder(cfg Config) (embedding.Embedder, error) {
	var load func(ctx context.Context) (embedding.Embedder, error)
	name := cfg.Embedder

	switch cfg.Embedder {
	case BackendNone:
		return nil, nil
	case "", BackendHashing:
		name = BackendHashing
		load = func(context.Context) (embedding.Embedder, error) {
			return embedding.NewHashingEmbedder(cfg.Dimensions), nil
		}
	case BackendTEI:
		if cfg.TEIEmbedURL == "" {
			return nil, fmt.Errorf("%w: tei embed url", ErrMissingConfig)
		}
		load = func(context.Context) (embedding.Embedder, error) {
			return NewTEIClient(cfg.TEIEmbedURL, WithTEITimeout(cfg.Timeout)), nil
		}
	case BackendGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: gemini api key", ErrMissingConfig)
		}
		load = func(ctx context.Context) (embedding.Embedder, error) {
			return NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Dimensions)
		}
	default:
		return nil, fmt.Errorf("%w: embedder %q", ErrUnknownBackend, cfg.Embedder)
	}

	if cfg.RedisAddr != "" {
		inner := load
		load = func(ctx context.Context) (embedding.Embedder, error) {
			e, err := inner(ctx)
			if err != nil {
				return nil, err
			}
			client, err := NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
			if err != nil {
				// The cache is an optimisation; run uncached rather than fail the model.
				logger.Named("inference").Warn(ctx, "embedding cache disabled", logger.Error(err))
				return e, nil
			}
			return NewCachedEmbedder(e, client, name, WithCacheTTL(cfg.CacheTTL)), nil
		}
	}

	return NewLazyEmbedder(name, load), nil
}

// NewCrossEncoder returns a lazily loaded cross-encoder for cfg.Reranker,
// or nil for "none".
func NewCrossEncoder(cfg Config) (rerank.CrossEncoder, error) {
	switch cfg.Reranker {
	case "", BackendNone:
		return nil, nil
	case BackendTEI:
		if cfg.TEIRerankURL == "" {
			return nil, fmt.Errorf("%w: tei rerank url", ErrMissingConfig)
		}
		return NewLazyCrossEncoder(BackendTEI, func(context.Context) (rerank.CrossEncoder, error) {
			return NewTEIClient(cfg.TEIRerankURL, WithTEITimeout(cfg.Timeout)), nil
		}), nil
	default:
		return nil, fmt.Errorf("%w: reranker %q", ErrUnknownBackend, cfg.Reranker)
	}
}
