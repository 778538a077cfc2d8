// Package filter applies CEL expressions to ranked matches.
//
// Expressions see one variable, match, with the fields of a MatchResult
// under their JSON names, for example:
//
//	match.new_grad_friendly && match.final_score > 40.0
//	"python" in match.matched_skills
//	match.score_breakdown.skills_match >= 50.0
package filter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
)

// Sentinel errors for filter compilation and evaluation.
var (
	ErrInvalidExpression = errors.New("invalid filter expression")
	ErrEvaluation        = errors.New("filter evaluation failed")
)

var (
	env     *cel.Env
	envErr  error
	envOnce sync.Once
)

func celEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(cel.Variable("match", cel.DynType))
	})
	return env, envErr
}

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. An empty expression keeps every
// match.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}
	e, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression must return bool, got %s", ErrInvalidExpression, t)
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match evaluates the filter against one result.
func (f *Filter) Match(m model.MatchResult) (bool, error) {
	if f.prg == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(map[string]any{"match": activation(m)})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("%w: expression returned %T", ErrEvaluation, out.Value())
	}
	return ok, nil
}

// Apply keeps the results the filter accepts, preserving order. It returns
// the kept results and how many were dropped.
func (f *Filter) Apply(results []model.MatchResult) ([]model.MatchResult, int, error) {
	if f.prg == nil {
		return results, 0, nil
	}
	kept := make([]model.MatchResult, 0, len(results))
	for _, m := range results {
		ok, err := f.Match(m)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			kept = append(kept, m)
		}
	}
	return kept, len(results) - len(kept), nil
}

func activation(m model.MatchResult) map[string]any {
	var ce any
	if m.CrossEncoderScore != nil {
		ce = *m.CrossEncoderScore
	}
	return map[string]any{
		"job_index":                m.JobIndex,
		"job_title":                m.JobTitle,
		"symbolic_score":           m.SymbolicScore,
		"embedding_similarity":     m.EmbeddingSimilarity,
		"final_score":              m.FinalScore,
		"cross_encoder_score":      ce,
		"reranked":                 m.Reranked(),
		"matched_skills":           nonNil(m.MatchedSkills),
		"missing_skills":           nonNil(m.MissingSkills),
		"matched_preferred_skills": nonNil(m.MatchedPreferredSkills),
		"experience_match":         m.ExperienceMatch,
		"new_grad_friendly":        m.NewGradFriendly,
		"score_breakdown":          m.Breakdown.Map(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
