package ranking

import (
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/embedding"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/extract"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/rerank"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/scoring"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithExtractor sets the feature extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(r *Ranker) {
		if e != nil {
			r.extractor = e
		}
	}
}

// WithScorer sets the symbolic scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithEmbedder sets the dense embedding model. Without one every
// similarity is 0.
func WithEmbedder(e embedding.Embedder) Option {
	return func(r *Ranker) {
		r.embedder = e
	}
}

// WithCrossEncoder sets the reranking model. Without one reranking is
// skipped.
func WithCrossEncoder(ce rerank.CrossEncoder) Option {
	return func(r *Ranker) {
		r.crossEncoder = ce
	}
}

// WithRerankTopN sets how many leading results are reranked.
func WithRerankTopN(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.rerankTopN = n
		}
	}
}

// WithParallelism bounds concurrent per-job extraction and scoring.
func WithParallelism(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.log = l
		}
	}
}
