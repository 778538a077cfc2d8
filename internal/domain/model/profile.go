// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"strings"
)

// ExperienceLevel is the coarse seniority of a resume or a job posting.
type ExperienceLevel string

const (
	LevelJunior  ExperienceLevel = "junior"
	LevelMid     ExperienceLevel = "mid"
	LevelSenior  ExperienceLevel = "senior"
	LevelUnknown ExperienceLevel = "unknown"
)

// Ladder returns the position of l on the junior=1, mid=2, senior=3 ladder.
// Unknown sits in the middle.
func (l ExperienceLevel) Ladder() int {
	switch l {
	case LevelJunior:
		return 1
	case LevelSenior:
		return 3
	default:
		return 2
	}
}

// ParseExperienceLevel maps s onto a level, returning LevelUnknown for
// anything unrecognised.
func ParseExperienceLevel(s string) ExperienceLevel {
	switch ExperienceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelJunior:
		return LevelJunior
	case LevelMid:
		return LevelMid
	case LevelSenior:
		return LevelSenior
	default:
		return LevelUnknown
	}
}

// SkillSet is a sorted, lower-cased, duplicate-free list of skill terms.
type SkillSet []string

// NewSkillSet normalises items into a SkillSet. Blank entries are dropped.
func NewSkillSet(items ...string) SkillSet {
	seen := make(map[string]struct{}, len(items))
	out := make(SkillSet, 0, len(items))
	for _, it := range items {
		s := strings.ToLower(strings.TrimSpace(it))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether skill is in the set, ignoring case.
func (s SkillSet) Contains(skill string) bool {
	k := strings.ToLower(strings.TrimSpace(skill))
	i := sort.SearchStrings(s, k)
	return i < len(s) && s[i] == k
}

// ResumeProfile is the structured view of a candidate resume.
type ResumeProfile struct {
	Titles          []string        `json:"titles"`
	Education       string          `json:"education"`
	Experience      string          `json:"experience"`
	Skills          SkillSet        `json:"skills"`
	Qualities       map[string]int  `json:"qualities"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
}

// DefaultResumeProfile is returned when a resume cannot be analysed.
func DefaultResumeProfile() ResumeProfile {
	return ResumeProfile{
		Titles:          []string{},
		Skills:          SkillSet{},
		Qualities:       map[string]int{},
		ExperienceLevel: LevelUnknown,
	}
}

// JobRequirement is the structured view of one job posting.
type JobRequirement struct {
	Title              string          `json:"title"`
	RequiredSkills     SkillSet        `json:"required_skills"`
	PreferredSkills    SkillSet        `json:"preferred_skills"`
	ExperienceMin      int             `json:"experience_min"`
	ExperienceMax      int             `json:"experience_max"`
	ExperienceLevel    ExperienceLevel `json:"experience_level"`
	RequiresExperience bool            `json:"requires_experience"`
	DegreeRequired     bool            `json:"degree_required"`
	Qualities          map[string]int  `json:"qualities"`
}

// DefaultJobRequirement is returned when a posting cannot be analysed.
// The title is kept so results stay attributable.
func DefaultJobRequirement(title string) JobRequirement {
	return JobRequirement{
		Title:           title,
		RequiredSkills:  SkillSet{},
		PreferredSkills: SkillSet{},
		ExperienceLevel: LevelUnknown,
		Qualities:       map[string]int{},
	}
}

// JobPosting is one raw job handed to the ranking pipeline.
type JobPosting struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}
