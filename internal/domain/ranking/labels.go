package ranking

import (
	"errors"
	"strings"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/embedding"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/rerank"
)

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLimit):
		return "invalid_limit"
	case errors.Is(err, ErrPipelineFailed):
		return "pipeline_failed"
	default:
		return "unknown"
	}
}

// reasonLabel keeps metric label cardinality bounded by mapping free-form
// degradation reasons onto a few classes.
func reasonLabel(reason string) string {
	switch {
	case strings.Contains(reason, embedding.ErrDegenerateOutput.Error()),
		strings.Contains(reason, rerank.ErrDegenerateOutput.Error()):
		return "degenerate_output"
	case strings.Contains(reason, "none configured"):
		return "not_configured"
	case strings.Contains(reason, embedding.ErrModelUnavailable.Error()),
		strings.Contains(reason, rerank.ErrModelUnavailable.Error()):
		return "unavailable"
	case strings.Contains(reason, "extraction"):
		return "extraction_fault"
	default:
		return "other"
	}
}
