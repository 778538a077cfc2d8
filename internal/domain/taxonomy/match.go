package taxonomy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Text is a lower-cased view of a document used for whole-word,
// case-insensitive term lookups. A term matches when it is not glued to a
// word character on a side where the term itself starts or ends with one,
// so "go" does not match "golang" while "c++" and "ci/cd" still match.
type Text struct {
	lower string
}

// NewText prepares s for matching.
func NewText(s string) Text {
	return Text{lower: strings.ToLower(s)}
}

// String returns the lower-cased text.
func (t Text) String() string { return t.lower }

// Empty reports whether the text has no visible content.
func (t Text) Empty() bool { return strings.TrimSpace(t.lower) == "" }

// Contains reports whether term occurs as a whole word.
func (t Text) Contains(term string) bool {
	return t.Index(term) >= 0
}

// Index returns the byte offset of the first whole-word occurrence of term,
// or -1.
func (t Text) Index(term string) int {
	return t.indexFrom(normalizeTerm(term), 0)
}

// LastIndex returns the byte offset of the last whole-word occurrence of
// term, or -1.
func (t Text) LastIndex(term string) int {
	term = normalizeTerm(term)
	last := -1
	for from := 0; ; {
		i := t.indexFrom(term, from)
		if i < 0 {
			return last
		}
		last = i
		from = i + 1
	}
}

// Count returns the number of non-overlapping whole-word occurrences of term.
func (t Text) Count(term string) int {
	term = normalizeTerm(term)
	n := 0
	for from := 0; ; {
		i := t.indexFrom(term, from)
		if i < 0 {
			return n
		}
		n++
		from = i + len(term)
	}
}

// ContainsAny reports whether any of terms occurs as a whole word.
func (t Text) ContainsAny(terms []string) bool {
	for _, term := range terms {
		if t.Contains(term) {
			return true
		}
	}
	return false
}

// FirstIndexAny returns the smallest offset at which any of terms occurs,
// or -1.
func (t Text) FirstIndexAny(terms []string) int {
	best := -1
	for _, term := range terms {
		if i := t.Index(term); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// Lines splits the text on newlines.
func (t Text) Lines() []Text {
	parts := strings.Split(t.lower, "\n")
	out := make([]Text, len(parts))
	for i, p := range parts {
		out[i] = Text{lower: p}
	}
	return out
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func (t Text) indexFrom(term string, from int) int {
	if term == "" {
		return -1
	}
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	checkLeft, checkRight := isWordRune(first), isWordRune(last)

	for from <= len(t.lower)-len(term) {
		i := strings.Index(t.lower[from:], term)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(term)
		leftOK := true
		if checkLeft && start > 0 {
			r, _ := utf8.DecodeLastRuneInString(t.lower[:start])
			leftOK = !isWordRune(r)
		}
		rightOK := true
		if checkRight && end < len(t.lower) {
			r, _ := utf8.DecodeRuneInString(t.lower[end:])
			rightOK = !isWordRune(r)
		}
		if leftOK && rightOK {
			return start
		}
		_, size := utf8.DecodeRuneInString(t.lower[start:])
		from = start + size
	}
	return -1
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
