// Package scoring computes the rule-based match score between a resume
// profile and a job requirement.
package scoring

import (
	"math"
	"sort"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/taxonomy"
)

// Score bounds and policy constants.
const (
	maxScoreValue = 100
	minScoreValue = 0

	seniorTitlePenalty     = 40
	requiresExpPenalty     = 30
	neutralQualityScore    = 50
	oneLevelApartScore     = 50
	weightSumTolerance     = 1e-9
	defaultSkillsWeight    = 0.25
	defaultPreferredWeight = 0.10
	defaultExpWeight       = 0.15
	defaultQualityWeight   = 0.10
	defaultNewGradWeight   = 0.40
)

// Weights are the contribution of each sub-score to the overall score.
type Weights struct {
	Skills          float64
	PreferredSkills float64
	ExperienceLevel float64
	QualityMatch    float64
	NewGradFriendly float64
}

// DefaultWeights favours entry-level suitability over skill overlap.
func DefaultWeights() Weights {
	return Weights{
		Skills:          defaultSkillsWeight,
		PreferredSkills: defaultPreferredWeight,
		ExperienceLevel: defaultExpWeight,
		QualityMatch:    defaultQualityWeight,
		NewGradFriendly: defaultNewGradWeight,
	}
}

func (w Weights) valid() bool {
	for _, v := range []float64{w.Skills, w.PreferredSkills, w.ExperienceLevel, w.QualityMatch, w.NewGradFriendly} {
		if v < 0 || math.IsNaN(v) {
			return false
		}
	}
	sum := w.Skills + w.PreferredSkills + w.ExperienceLevel + w.QualityMatch + w.NewGradFriendly
	return math.Abs(sum-1) < weightSumTolerance
}

// Option applies a configuration option to the SymbolicScorer.
type Option func(*SymbolicScorer)

// WithTaxonomy sets the tables used to spot seniority markers in titles.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(s *SymbolicScorer) {
		if t != nil {
			s.tax = t
		}
	}
}

// WithWeights overrides the sub-score weights. Weights that are negative
// or do not sum to 1 are ignored.
func WithWeights(w Weights) Option {
	return func(s *SymbolicScorer) {
		if w.valid() {
			s.weights = w
		}
	}
}

// Result is the symbolic match of one resume against one job.
type Result struct {
	Overall          float64
	Breakdown        model.Breakdown
	Matched          []string
	MatchedPreferred []string
	Missing          []string
	ExperienceMatch  bool
	NewGradFriendly  bool
}

// Scorer computes a symbolic match. Implementations are pure and never fail.
type Scorer interface {
	Score(resume model.ResumeProfile, job model.JobRequirement) Result
}

// SymbolicScorer implements Scorer with weighted keyword matching.
type SymbolicScorer struct {
	tax     *taxonomy.Taxonomy
	weights Weights
}

// New creates a SymbolicScorer with the default taxonomy and weights.
func New(opts ...Option) *SymbolicScorer {
	s := &SymbolicScorer{
		tax:     taxonomy.Default(),
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score implements Scorer. An internal fault yields a zero Result.
func (s *SymbolicScorer) Score(resume model.ResumeProfile, job model.JobRequirement) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
		}
	}()

	friendly, newGrad := s.newGrad(job)

	matched, missing := partition(job.RequiredSkills, resume.Skills)
	matchedPref, _ := partition(job.PreferredSkills, resume.Skills)

	b := model.Breakdown{
		SkillsMatch:     clamp(ratio(len(matched), len(job.RequiredSkills))),
		PreferredSkills: clamp(ratio(len(matchedPref), len(job.PreferredSkills))),
		ExperienceLevel: clamp(experienceScore(resume.ExperienceLevel, job.ExperienceLevel)),
		QualityMatch:    clamp(qualityScore(resume.Qualities, job.Qualities)),
		NewGradFriendly: clamp(newGrad),
	}

	w := s.weights
	overall := b.SkillsMatch*w.Skills +
		b.PreferredSkills*w.PreferredSkills +
		b.ExperienceLevel*w.ExperienceLevel +
		b.QualityMatch*w.QualityMatch +
		b.NewGradFriendly*w.NewGradFriendly

	return Result{
		Overall:          Round2(overall),
		Breakdown:        b,
		Matched:          matched,
		MatchedPreferred: matchedPref,
		Missing:          missing,
		ExperienceMatch:  resume.ExperienceLevel == job.ExperienceLevel,
		NewGradFriendly:  friendly,
	}
}

// newGrad returns whether the job suits an entry-level candidate and its
// penalised 0-100 score. The two penalties are independent.
func (s *SymbolicScorer) newGrad(job model.JobRequirement) (bool, float64) {
	penalty := 0
	if s.tax.HasSeniorityMarker(job.Title) {
		penalty += seniorTitlePenalty
	}
	if job.RequiresExperience {
		penalty += requiresExpPenalty
	}
	return penalty == 0, float64(maxScoreValue - penalty)
}

// experienceScore compares levels. Junior resumes are scored one-sided so
// junior roles rank first; everyone else is scored by ladder distance.
func experienceScore(resume, job model.ExperienceLevel) float64 {
	if resume == model.LevelJunior {
		switch job.Ladder() {
		case 1:
			return maxScoreValue
		case 2:
			return oneLevelApartScore
		default:
			return minScoreValue
		}
	}
	switch d := abs(resume.Ladder() - job.Ladder()); d {
	case 0:
		return maxScoreValue
	case 1:
		return oneLevelApartScore
	default:
		return minScoreValue
	}
}

// qualityScore averages, over qualities the job mentions, how well the
// resume covers them.
func qualityScore(resume, job map[string]int) float64 {
	names := make([]string, 0, len(job))
	for q := range job {
		names = append(names, q)
	}
	sort.Strings(names)

	var sum float64
	n := 0
	for _, q := range names {
		want := job[q]
		if want <= 0 {
			continue
		}
		have := resume[q]
		if have >= want {
			sum += maxScoreValue
		} else {
			sum += float64(have) / float64(want) * maxScoreValue
		}
		n++
	}
	if n == 0 {
		return neutralQualityScore
	}
	return sum / float64(n)
}

// partition splits want into the skills present in have and those missing,
// preserving want's order.
func partition(want, have model.SkillSet) (matched, missing []string) {
	matched, missing = []string{}, []string{}
	for _, s := range want {
		if have.Contains(s) {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	return matched, missing
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * maxScoreValue
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return minScoreValue
	}
	return math.Max(minScoreValue, math.Min(maxScoreValue, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
