// Package inference adapts model servers and hosted APIs to the embedding
// and cross-encoder contracts used by the ranking pipeline.
package inference

import (
	"context"
	"fmt"
	"sync"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/embedding"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/rerank"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// handle loads a model once on first use. A load failure is remembered and
// returned to every later caller; nothing retries it.
type handle[T any] struct {
	name string
	load func(ctx context.Context) (T, error)
	once sync.Once
	val  T
	err  error
	log  logger.Logger
}

func (h *handle[T]) get(ctx context.Context) (T, error) {
	h.once.Do(func() {
		h.val, h.err = h.load(ctx)
		if h.err != nil {
			h.log.Warn(ctx, "model load failed", logger.String("model", h.name), logger.Error(h.err))
			return
		}
		h.log.Info(ctx, "model loaded", logger.String("model", h.name))
	})
	return h.val, h.err
}

// LazyEmbedder defers constructing an Embedder until the first Embed call.
type LazyEmbedder struct {
	h handle[embedding.Embedder]
}

// NewLazyEmbedder wraps load in a shared, load-once handle.
func NewLazyEmbedder(name string, load func(ctx context.Context) (embedding.Embedder, error)) *LazyEmbedder {
	return &LazyEmbedder{h: handle[embedding.Embedder]{name: name, load: load, log: logger.Named("inference")}}
}

// Embed implements embedding.Embedder.
func (l *LazyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.h.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", embedding.ErrModelUnavailable, l.h.name, err)
	}
	return e.Embed(ctx, texts)
}

// Name reports the configured backend.
func (l *LazyEmbedder) Name() string { return l.h.name }

// LazyCrossEncoder defers constructing a CrossEncoder until the first Score call.
type LazyCrossEncoder struct {
	h handle[rerank.CrossEncoder]
}

// NewLazyCrossEncoder wraps load in a shared, load-once handle.
func NewLazyCrossEncoder(name string, load func(ctx context.Context) (rerank.CrossEncoder, error)) *LazyCrossEncoder {
	return &LazyCrossEncoder{h: handle[rerank.CrossEncoder]{name: name, load: load, log: logger.Named("inference")}}
}

// Score implements rerank.CrossEncoder.
func (l *LazyCrossEncoder) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	ce, err := l.h.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", rerank.ErrModelUnavailable, l.h.name, err)
	}
	return ce.Score(ctx, query, candidates)
}

// Name reports the configured backend.
func (l *LazyCrossEncoder) Name() string { return l.h.name }
