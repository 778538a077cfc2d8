// Package ranking fuses symbolic and semantic signals into an ordered list
// of job matches for one resume.
package ranking

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/embedding"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/extract"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/rerank"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/scoring"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/metrics"
)

// Pipeline stage names used in degradations and metrics.
const (
	StageExtract   = "extract"
	StageSymbolic  = "symbolic"
	StageEmbedding = "embedding"
	StageFusion    = "fusion"
	StageRerank    = "rerank"
)

// Request outcomes recorded in metrics.
const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeError    = "error"
)

// Ranker runs the ranking pipeline. It holds no per-request state and is
// safe for concurrent use; models are shared read-only.
type Ranker struct {
	extractor    *extract.Extractor
	scorer       scoring.Scorer
	embedder     embedding.Embedder
	crossEncoder rerank.CrossEncoder
	rerankTopN   int
	parallelism  int
	log          logger.Logger

	embedStage *embedding.Stage
	reranker   *rerank.Reranker
}

// New creates a Ranker.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		extractor:   extract.New(),
		scorer:      scoring.New(),
		rerankTopN:  rerank.DefaultTopN,
		parallelism: runtime.GOMAXPROCS(0),
		log:         logger.Named("ranking"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.embedStage = embedding.NewStage(r.embedder, embedding.WithLogger(r.log.Named(StageEmbedding)))
	r.reranker = rerank.New(r.crossEncoder,
		rerank.WithTopN(r.rerankTopN),
		rerank.WithLogger(r.log.Named(StageRerank)))
	return r
}

// Rank orders jobs against resume. titles is parallel to texts and may be
// shorter; missing titles are empty. The result has at most
// min(limit, len(texts)) entries. Only a failure outside any single stage,
// such as cancellation, is returned as an error.
func (r *Ranker) Rank(ctx context.Context, resume string, texts, titles []string, limit int, withRerank bool) (model.RankResponse, error) {
	jobs := make([]model.JobPosting, len(texts))
	for i, t := range texts {
		jobs[i].Text = t
		if i < len(titles) {
			jobs[i].Title = titles[i]
		}
	}
	return r.RankBatch(ctx, resume, jobs, limit, withRerank)
}

// RankBatch is Rank over (text, title) pairs.
func (r *Ranker) RankBatch(ctx context.Context, resume string, jobs []model.JobPosting, limit int, withRerank bool) (resp model.RankResponse, err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			resp, err = model.RankResponse{}, fmt.Errorf("%w: %v", ErrPipelineFailed, p)
		}
		r.observe(ctx, start, len(jobs), resp, err)
	}()

	if limit < 0 {
		return model.RankResponse{}, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	resp.Matches = []model.MatchResult{}
	if limit == 0 || len(jobs) == 0 {
		return resp, nil
	}

	results, sims, degradations, err := r.score(ctx, resume, jobs)
	if err != nil {
		return model.RankResponse{}, err
	}
	resp.Degradations = degradations

	fuseStart := time.Now()
	for i := range results {
		results[i].EmbeddingSimilarity = sims[i]
		results[i].FinalScore = Fuse(results[i].SymbolicScore, sims[i])
	}
	SortByFinalScore(results)
	metrics.RecordStageLatency(StageFusion, sinceMs(fuseStart))

	if withRerank {
		rerankStart := time.Now()
		out := r.reranker.Apply(ctx, resume, results, func(i int) string { return jobs[i].Text })
		metrics.RecordStageLatency(StageRerank, sinceMs(rerankStart))
		if out.Degraded {
			resp.Degradations = append(resp.Degradations, model.Degradation{Stage: StageRerank, Reason: out.Reason})
		} else {
			metrics.RecordRerankApplied()
		}
		results = out.Value
	}

	if limit < len(results) {
		results = results[:limit]
	}
	resp.Matches = results
	return resp, nil
}

// score extracts and scores every job in parallel with the embedding
// stage and returns results in input order.
func (r *Ranker) score(ctx context.Context, resume string, jobs []model.JobPosting) ([]model.MatchResult, []float64, []model.Degradation, error) {
	var degradations []model.Degradation

	profile := r.extractor.Resume(ctx, resume)
	if profile.Degraded {
		degradations = append(degradations, model.Degradation{Stage: StageExtract, Reason: profile.Reason})
		metrics.RecordExtractFailure("resume")
	}

	results := make([]model.MatchResult, len(jobs))
	jobDegraded := make([]string, len(jobs))
	var sims model.Outcome[[]float64]

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t := time.Now()
		texts := make([]string, len(jobs))
		for i, j := range jobs {
			texts[i] = j.Text
		}
		sims = r.embedStage.Similarities(gctx, resume, texts)
		metrics.RecordStageLatency(StageEmbedding, sinceMs(t))
		return nil
	})

	symbolic := new(errgroup.Group)
	symbolic.SetLimit(r.parallelism)
	g.Go(func() error {
		t := time.Now()
		for i := range jobs {
			symbolic.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				req := r.extractor.Job(gctx, jobs[i].Text, jobs[i].Title)
				if req.Degraded {
					jobDegraded[i] = req.Reason
				}
				results[i] = matchResult(i, jobs[i].Title, r.scorer.Score(profile.Value, req.Value))
				return nil
			})
		}
		err := symbolic.Wait()
		metrics.RecordStageLatency(StageSymbolic, sinceMs(t))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}

	for i, reason := range jobDegraded {
		if reason == "" {
			continue
		}
		degradations = append(degradations, model.Degradation{
			Stage:  StageExtract,
			Reason: fmt.Sprintf("job %d: %s", i, reason),
		})
		metrics.RecordExtractFailure("job")
	}
	if sims.Degraded {
		degradations = append(degradations, model.Degradation{Stage: StageEmbedding, Reason: sims.Reason})
	}
	return results, sims.Value, degradations, nil
}

func matchResult(index int, title string, s scoring.Result) model.MatchResult {
	return model.MatchResult{
		JobIndex:               index,
		JobTitle:               title,
		SymbolicScore:          s.Overall,
		MatchedSkills:          s.Matched,
		MissingSkills:          s.Missing,
		MatchedPreferredSkills: s.MatchedPreferred,
		ExperienceMatch:        s.ExperienceMatch,
		NewGradFriendly:        s.NewGradFriendly,
		Breakdown:              s.Breakdown,
	}
}

func (r *Ranker) observe(ctx context.Context, start time.Time, jobs int, resp model.RankResponse, err error) {
	metrics.RecordRankLatency(sinceMs(start))
	metrics.ObserveBatchSize(jobs)

	switch {
	case err != nil:
		metrics.RecordRankRequest(outcomeError)
		metrics.RecordErrorByComponent("ranking", errorType(err))
		r.log.Error(ctx, "ranking failed", logger.Int("jobs", jobs), logger.Error(err))
		return
	case len(resp.Degradations) > 0:
		metrics.RecordRankRequest(outcomeDegraded)
		for _, d := range resp.Degradations {
			metrics.RecordDegradation(d.Stage, reasonLabel(d.Reason))
		}
	default:
		metrics.RecordRankRequest(outcomeOK)
	}
	metrics.RecordJobsScored(jobs)
	r.log.Debug(ctx, "ranked jobs",
		logger.Int("jobs", jobs),
		logger.Int("returned", len(resp.Matches)),
		logger.Int("degradations", len(resp.Degradations)),
		logger.Duration("took", time.Since(start)))
}
