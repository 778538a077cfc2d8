package extract

import (
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/taxonomy"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithTaxonomy replaces the built-in keyword tables.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(e *Extractor) {
		if t != nil {
			e.tax = t
		}
	}
}

// WithQualifierScope sets how far a required/preferred indicator reaches.
func WithQualifierScope(scope QualifierScope) Option {
	return func(e *Extractor) {
		if scope == ScopeDocument || scope == ScopeLine {
			e.scope = scope
		}
	}
}

// WithTitleRecognizer sets the component that proposes title candidates
// for resumes. A nil recognizer disables title extraction.
func WithTitleRecognizer(r TitleRecognizer) Option {
	return func(e *Extractor) {
		e.titles = r
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}
