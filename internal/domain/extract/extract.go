// Package extract turns free-form resume and job posting text into the
// structured profiles consumed by the scorer.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/taxonomy"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// QualifierScope controls where a required or preferred indicator must sit
// relative to a skill mention to qualify it.
type QualifierScope string

const (
	// ScopeDocument accepts an indicator anywhere earlier in the posting.
	ScopeDocument QualifierScope = "document"
	// ScopeLine accepts an indicator earlier on the same line only.
	ScopeLine QualifierScope = "line"
)

// Job-side level thresholds in years.
const (
	seniorYears   = 5
	requiredYears = 2
)

var (
	educationSpan  = regexp.MustCompile(`(?is)education.*?\n(.*?)(?:\n\n|\z)`)
	experienceSpan = regexp.MustCompile(`(?is)(?:experience|work|employment).*?\n(.*?)(?:\n\n|\z)`)
	yearsRange     = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:to|-)\s*(\d+)\+?\s+years?\s+(?:of)?\s*experience`)
	yearsSingle    = regexp.MustCompile(`(?i)(\d+)\+?\s+years?\s+(?:of)?\s*experience`)
)

// Extractor reads resumes and job postings. It is safe for concurrent use.
type Extractor struct {
	tax    *taxonomy.Taxonomy
	scope  QualifierScope
	titles TitleRecognizer
	log    logger.Logger
}

// New creates an Extractor with the default taxonomy and document scope.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		tax:    taxonomy.Default(),
		scope:  ScopeDocument,
		titles: HeuristicTitles{},
		log:    logger.Named("extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Taxonomy returns the keyword tables in use.
func (e *Extractor) Taxonomy() *taxonomy.Taxonomy { return e.tax }

// Resume extracts a ResumeProfile. It never fails: empty text yields the
// default profile and an internal fault yields a degraded default profile.
func (e *Extractor) Resume(ctx context.Context, text string) (out model.Outcome[model.ResumeProfile]) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn(ctx, "resume extraction failed, using defaults", logger.Any("panic", r))
			out = model.Degrade(model.DefaultResumeProfile(), fmt.Sprintf("resume extraction: %v", r))
		}
	}()

	t := taxonomy.NewText(text)
	if t.Empty() {
		return model.Ok(model.DefaultResumeProfile())
	}

	p := model.DefaultResumeProfile()
	p.Titles = e.resumeTitles(ctx, text)
	p.Education = span(educationSpan, text)
	p.Experience = span(experienceSpan, text)

	var skills []string
	for _, term := range e.tax.SkillTerms() {
		if t.Contains(term) {
			skills = append(skills, term)
		}
	}
	p.Skills = model.NewSkillSet(skills...)
	p.Qualities = e.tax.QualityCounts(t)
	p.ExperienceLevel = e.tax.ResumeLevel(t)

	return model.Ok(p)
}

// Job extracts a JobRequirement from a posting and its optional title. Like
// Resume it never fails.
func (e *Extractor) Job(ctx context.Context, text, title string) (out model.Outcome[model.JobRequirement]) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn(ctx, "job extraction failed, using defaults",
				logger.String("title", title), logger.Any("panic", r))
			out = model.Degrade(model.DefaultJobRequirement(title), fmt.Sprintf("job extraction: %v", r))
		}
	}()

	t := taxonomy.NewText(text)
	if t.Empty() {
		return model.Ok(model.DefaultJobRequirement(title))
	}

	j := model.DefaultJobRequirement(title)

	var required, preferred []string
	for _, term := range e.tax.SkillTerms() {
		if !t.Contains(term) {
			continue
		}
		switch {
		case e.qualified(t, term, e.tax.RequiredIndicators):
			required = append(required, term)
		case e.qualified(t, term, e.tax.PreferredIndicators):
			preferred = append(preferred, term)
		default:
			required = append(required, term)
		}
	}
	j.RequiredSkills = model.NewSkillSet(required...)
	j.PreferredSkills = model.NewSkillSet(preferred...)

	j.ExperienceMin, j.ExperienceMax = years(text)
	j.ExperienceLevel = e.jobLevel(j.ExperienceMin, title)
	j.RequiresExperience = j.ExperienceMin >= requiredYears
	j.DegreeRequired = e.degreeRequired(t)
	j.Qualities = e.tax.QualityCounts(t)

	return model.Ok(j)
}

func (e *Extractor) resumeTitles(ctx context.Context, text string) []string {
	if e.titles == nil {
		return []string{}
	}
	got, err := e.titles.Titles(ctx, text)
	if err != nil {
		e.log.Debug(ctx, "title recognizer unavailable", logger.Error(err))
		return []string{}
	}
	if len(got) > maxTitles {
		got = got[:maxTitles]
	}
	if got == nil {
		got = []string{}
	}
	return got
}

// qualified reports whether one of indicators precedes a mention of term
// within the configured scope.
func (e *Extractor) qualified(t taxonomy.Text, term string, indicators []string) bool {
	if e.scope == ScopeLine {
		for _, line := range t.Lines() {
			if precedes(line, indicators, term) {
				return true
			}
		}
		return false
	}
	return precedes(t, indicators, term)
}

func precedes(t taxonomy.Text, before []string, term string) bool {
	first := t.FirstIndexAny(before)
	if first < 0 {
		return false
	}
	return t.LastIndex(term) > first
}

// degreeRequired reports whether a degree term is followed by a
// requirement term on the same line.
func (e *Extractor) degreeRequired(t taxonomy.Text) bool {
	for _, line := range t.Lines() {
		first := line.FirstIndexAny(e.tax.DegreeTerms)
		if first < 0 {
			continue
		}
		for _, req := range e.tax.RequirementTerms {
			if line.LastIndex(req) > first {
				return true
			}
		}
	}
	return false
}

func (e *Extractor) jobLevel(yearsMin int, title string) model.ExperienceLevel {
	switch {
	case yearsMin >= seniorYears || e.tax.HasSeniorityMarker(title):
		return model.LevelSenior
	case yearsMin >= requiredYears || !e.tax.HasJuniorMarker(title):
		return model.LevelMid
	default:
		return model.LevelJunior
	}
}

// years extracts a stated experience range. A single value sets both
// bounds; nothing found yields 0, 0.
func years(text string) (int, int) {
	if m := yearsRange.FindStringSubmatch(text); m != nil {
		lo, hi := atoi(m[1]), atoi(m[2])
		if hi < lo {
			lo, hi = hi, lo
		}
		return lo, hi
	}
	if m := yearsSingle.FindStringSubmatch(text); m != nil {
		n := atoi(m[1])
		return n, n
	}
	return 0, 0
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func span(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[len(m)-1])
}
