package ranking

import (
	"sort"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/scoring"
)

const (
	symbolicWeight  = 0.8
	embeddingWeight = 0.2
	similarityScale = 100
)

// Fuse blends a 0-100 symbolic score with a [-1, 1] cosine similarity.
func Fuse(overall, similarity float64) float64 {
	return scoring.Round2(overall*symbolicWeight + similarity*similarityScale*embeddingWeight)
}

// SortByFinalScore orders results by descending final score. Equal scores
// keep their current relative order.
func SortByFinalScore(results []model.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}
