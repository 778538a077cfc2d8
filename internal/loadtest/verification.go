package loadtest

import (
	"context"
	"fmt"

	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// verifyResults checks every completed ranking and counts violations.
func verifyResults(ctx context.Context, config *Config, tasks []TaskStatus, stats *Stats) error {
	log := logger.Get()
	for _, t := range tasks {
		if t.Status != statusCompleted || t.Result == nil {
			continue
		}
		if err := verifyRanking(t.Result, config.Limit, config.JobsPerRequest); err != nil {
			stats.Violations++
			log.Warn(ctx, "ranking invariant violated",
				logger.String("task_id", t.TaskID), logger.Error(err))
		}
	}

	if stats.Violations > 0 {
		return fmt.Errorf("%w: %d of %d completed tasks", ErrVerification, stats.Violations, stats.Completed)
	}
	log.Info(ctx, "ranking verification passed", logger.Int("checked", stats.Completed))
	return nil
}

// verifyRanking checks ordering, bounds, and job index uniqueness. Reranked
// matches form a prefix sorted on its own; the remainder keeps fused order.
func verifyRanking(r *Result, limit, jobs int) error {
	if r.Count != len(r.Matches) {
		return fmt.Errorf("count %d does not match %d matches", r.Count, len(r.Matches))
	}
	if len(r.Matches) > limit || len(r.Matches) > jobs {
		return fmt.Errorf("%d matches exceed limit %d or job count %d", len(r.Matches), limit, jobs)
	}

	seen := make(map[int]bool, len(r.Matches))
	for i, m := range r.Matches {
		if m.JobIndex < 0 || m.JobIndex >= jobs {
			return fmt.Errorf("match %d: job index %d out of range", i, m.JobIndex)
		}
		if seen[m.JobIndex] {
			return fmt.Errorf("match %d: job index %d repeated", i, m.JobIndex)
		}
		seen[m.JobIndex] = true
		if i == 0 {
			continue
		}
		prev := r.Matches[i-1]
		if m.CrossEncoderScore != nil && prev.CrossEncoderScore == nil {
			return fmt.Errorf("match %d: reranked after a fused-only match", i)
		}
		if (m.CrossEncoderScore == nil) == (prev.CrossEncoderScore == nil) && m.FinalScore > prev.FinalScore {
			return fmt.Errorf("match %d: score %.4f above previous %.4f", i, m.FinalScore, prev.FinalScore)
		}
	}
	return nil
}
