package extract

import (
	"context"
	"strings"
	"unicode"
)

// maxTitles is the number of title candidates kept for a resume.
const maxTitles = 3

// TitleRecognizer proposes organisation or product names found in a resume.
// Implementations may be backed by an NLP model; failures are not fatal.
type TitleRecognizer interface {
	Titles(ctx context.Context, text string) ([]string, error)
}

// HeuristicTitles picks short runs of capitalised words, the shape company
// and product names usually take on a resume.
type HeuristicTitles struct{}

var sectionHeadings = map[string]struct{}{
	"education": {}, "experience": {}, "work experience": {}, "employment": {},
	"skills": {}, "technical skills": {}, "projects": {}, "summary": {},
	"objective": {}, "certifications": {}, "awards": {}, "publications": {},
	"contact": {}, "references": {}, "interests": {}, "languages": {},
}

// Titles implements TitleRecognizer.
func (HeuristicTitles) Titles(_ context.Context, text string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		for _, seg := range strings.FieldsFunc(line, isSegmentBreak) {
			seg = strings.TrimSpace(seg)
			if !looksLikeName(seg) {
				continue
			}
			key := strings.ToLower(seg)
			if _, ok := sectionHeadings[key]; ok {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, seg)
			if len(out) == maxTitles {
				return out, nil
			}
		}
	}
	return out, nil
}

func isSegmentBreak(r rune) bool {
	switch r {
	case '|', ',', ';', '(', ')', '\u2022', '\u2013', '\u2014', ':':
		return true
	}
	return false
}

func looksLikeName(seg string) bool {
	words := strings.Fields(seg)
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if !unicode.IsUpper(r[0]) {
			return false
		}
	}
	// a lone capitalised word is too common to be a useful candidate
	// unless it is an acronym such as IBM or AWS
	if len(words) == 1 {
		return len([]rune(words[0])) > 1 && strings.ToUpper(words[0]) == words[0] && hasLetter(words[0])
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
