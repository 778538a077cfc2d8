package model

// Score breakdown component names.
const (
	ComponentSkillsMatch     = "skills_match"
	ComponentPreferredSkills = "preferred_skills"
	ComponentExperienceLevel = "experience_level"
	ComponentQualityMatch    = "quality_match"
	ComponentNewGradFriendly = "new_grad_friendly"
)

// Breakdown holds the weighted sub-scores of a symbolic match, each in [0,100].
type Breakdown struct {
	SkillsMatch     float64 `json:"skills_match"`
	PreferredSkills float64 `json:"preferred_skills"`
	ExperienceLevel float64 `json:"experience_level"`
	QualityMatch    float64 `json:"quality_match"`
	NewGradFriendly float64 `json:"new_grad_friendly"`
}

// Map returns the breakdown keyed by component name.
func (b Breakdown) Map() map[string]float64 {
	return map[string]float64{
		ComponentSkillsMatch:     b.SkillsMatch,
		ComponentPreferredSkills: b.PreferredSkills,
		ComponentExperienceLevel: b.ExperienceLevel,
		ComponentQualityMatch:    b.QualityMatch,
		ComponentNewGradFriendly: b.NewGradFriendly,
	}
}

// MatchResult is the ranked outcome for one job.
//
// FinalScore is written twice at most: by fusion and, for the top of the
// ranking, by the reranker.
type MatchResult struct {
	JobIndex               int       `json:"job_index"`
	JobTitle               string    `json:"job_title"`
	SymbolicScore          float64   `json:"symbolic_score"`
	EmbeddingSimilarity    float64   `json:"embedding_similarity"`
	FinalScore             float64   `json:"final_score"`
	CrossEncoderScore      *float64  `json:"cross_encoder_score,omitempty"`
	MatchedSkills          []string  `json:"matched_skills"`
	MissingSkills          []string  `json:"missing_skills"`
	MatchedPreferredSkills []string  `json:"matched_preferred_skills"`
	ExperienceMatch        bool      `json:"experience_match"`
	NewGradFriendly        bool      `json:"new_grad_friendly"`
	Breakdown              Breakdown `json:"score_breakdown"`
}

// Reranked reports whether a cross-encoder score was blended in.
func (m *MatchResult) Reranked() bool { return m.CrossEncoderScore != nil }

// Degradation records a stage that fell back to its neutral output.
type Degradation struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Outcome carries a stage result together with whether it is a fallback.
// Degraded outcomes have the same shape as normal ones.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Ok wraps a normal stage result.
func Ok[T any](v T) Outcome[T] { return Outcome[T]{Value: v} }

// Degrade wraps a fallback stage result with the reason it was used.
func Degrade[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}
