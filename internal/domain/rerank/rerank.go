// Package rerank re-scores the head of a ranking with a cross-encoder.
package rerank

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/scoring"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// DefaultTopN is the size of the re-scored window.
const DefaultTopN = 5

const (
	fusedWeight        = 0.5
	crossEncoderWeight = 0.5
)

// CrossEncoder scores (query, candidate) pairs jointly. Scores are a
// monotonic relevance signal on a model-specific scale, one per candidate
// in input order. Implementations must be safe for concurrent use.
type CrossEncoder interface {
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Option applies a configuration option to the Reranker.
type Option func(*Reranker)

// WithTopN sets how many leading results are re-scored.
func WithTopN(n int) Option {
	return func(r *Reranker) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithLogger sets the logger used to report degradations.
func WithLogger(l logger.Logger) Option {
	return func(r *Reranker) {
		if l != nil {
			r.log = l
		}
	}
}

// Reranker blends cross-encoder scores into the top of a fused ranking.
type Reranker struct {
	encoder CrossEncoder
	topN    int
	log     logger.Logger
}

// New creates a Reranker. A nil encoder makes every call degrade.
func New(ce CrossEncoder, opts ...Option) *Reranker {
	r := &Reranker{
		encoder: ce,
		topN:    DefaultTopN,
		log:     logger.Named("rerank"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TopN returns the size of the re-scored window.
func (r *Reranker) TopN() int { return r.topN }

// Apply re-scores the first min(TopN, len(ranked)) results against resume
// and re-sorts only that window. text returns the posting text for a job
// index. On any model failure the input ranking is returned unchanged in a
// degraded outcome. The result always has len(ranked) entries.
func (r *Reranker) Apply(ctx context.Context, resume string, ranked []model.MatchResult, text func(jobIndex int) string) model.Outcome[[]model.MatchResult] {
	n := min(r.topN, len(ranked))
	if n == 0 {
		return model.Ok(ranked)
	}

	candidates := make([]string, n)
	for i := 0; i < n; i++ {
		candidates[i] = text(ranked[i].JobIndex)
	}

	scores, err := r.score(ctx, resume, candidates)
	if err != nil {
		r.log.Warn(ctx, "rerank skipped, keeping fused scores",
			logger.Int("window", n), logger.Error(err))
		return model.Degrade(ranked, err.Error())
	}

	out := make([]model.MatchResult, len(ranked))
	copy(out, ranked)
	for i := 0; i < n; i++ {
		ce := scores[i]
		out[i].CrossEncoderScore = &ce
		out[i].FinalScore = scoring.Round2(out[i].FinalScore*fusedWeight + ce*crossEncoderWeight)
	}
	head := out[:n]
	sort.SliceStable(head, func(a, b int) bool {
		return head[a].FinalScore > head[b].FinalScore
	})
	return model.Ok(out)
}

func (r *Reranker) score(ctx context.Context, query string, candidates []string) (scores []float64, err error) {
	if r.encoder == nil {
		return nil, fmt.Errorf("%w: none configured", ErrModelUnavailable)
	}

	defer func() {
		if p := recover(); p != nil {
			scores, err = nil, fmt.Errorf("%w: %v", ErrModelUnavailable, p)
		}
	}()

	scores, err = r.encoder.Score(ctx, query, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d scores for %d pairs", ErrDegenerateOutput, len(scores), len(candidates))
	}
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: score %d is not finite", ErrDegenerateOutput, i)
		}
	}
	return scores, nil
}
