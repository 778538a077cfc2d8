// Package embedding computes dense-vector similarity between a resume and
// a batch of job postings.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// Embedder turns texts into fixed-length vectors. The same model must be
// applied to every text of a call, and output order matches input order.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Option applies a configuration option to the Stage.
type Option func(*Stage)

// WithLogger sets the logger used to report degradations.
func WithLogger(l logger.Logger) Option {
	return func(s *Stage) {
		if l != nil {
			s.log = l
		}
	}
}

// Stage scores jobs by cosine similarity to the resume.
type Stage struct {
	embedder Embedder
	log      logger.Logger
}

// NewStage creates a Stage. A nil embedder makes every call degrade.
func NewStage(e Embedder, opts ...Option) *Stage {
	s := &Stage{
		embedder: e,
		log:      logger.Named("embedding"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Similarities returns one cosine similarity in [-1, 1] per job. When the
// model is unavailable or its output unusable, every similarity is 0 and
// the outcome is marked degraded.
func (s *Stage) Similarities(ctx context.Context, resume string, jobs []string) model.Outcome[[]float64] {
	sims := make([]float64, len(jobs))
	if len(jobs) == 0 {
		return model.Ok(sims)
	}

	vecs, err := s.embed(ctx, resume, jobs)
	if err != nil {
		s.log.Warn(ctx, "embedding stage degraded, similarity set to 0",
			logger.Int("jobs", len(jobs)), logger.Error(err))
		return model.Degrade(make([]float64, len(jobs)), err.Error())
	}

	r := vecs[0]
	rNorm := norm(r)
	for i := range jobs {
		sims[i] = cosine(r, rNorm, vecs[i+1])
	}
	return model.Ok(sims)
}

func (s *Stage) embed(ctx context.Context, resume string, jobs []string) (vecs [][]float32, err error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: none configured", ErrModelUnavailable)
	}

	defer func() {
		if r := recover(); r != nil {
			vecs, err = nil, fmt.Errorf("%w: %v", ErrModelUnavailable, r)
		}
	}()

	texts := make([]string, 0, len(jobs)+1)
	texts = append(texts, resume)
	texts = append(texts, jobs...)

	vecs, err = s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if err := validate(vecs, len(texts)); err != nil {
		return nil, err
	}
	return vecs, nil
}

func validate(vecs [][]float32, want int) error {
	if len(vecs) != want {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrDegenerateOutput, len(vecs), want)
	}
	dims := len(vecs[0])
	if dims == 0 {
		return fmt.Errorf("%w: empty vectors", ErrDegenerateOutput)
	}
	for i, v := range vecs {
		if len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDegenerateOutput, i, len(v), dims)
		}
		for _, x := range v {
			if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w: vector %d is not finite", ErrDegenerateOutput, i)
			}
		}
	}
	if norm(vecs[0]) == 0 {
		return fmt.Errorf("%w: zero resume vector", ErrDegenerateOutput)
	}
	return nil
}

// Cosine returns the cosine similarity of a and b, 0 when either is zero
// or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosine(a, norm(a), b)
}

func cosine(a []float32, aNorm float64, b []float32) float64 {
	bNorm := norm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	sim := dot / (aNorm * bNorm)
	return math.Max(-1, math.Min(1, sim))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
