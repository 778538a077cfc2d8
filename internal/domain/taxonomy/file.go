package taxonomy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// fileFormat is the YAML layout accepted by LoadFile.
//
//	replace: false
//	skills:
//	  programming: [zig, elixir]
//	qualities:
//	  ownership: [stewarded]
//	seniority_markers: [distinguished]
type fileFormat struct {
	Replace             bool                `yaml:"replace"`
	Skills              map[string][]string `yaml:"skills"`
	Qualities           map[string][]string `yaml:"qualities"`
	SeniorityMarkers    []string            `yaml:"seniority_markers"`
	JuniorMarkers       []string            `yaml:"junior_markers"`
	RequiredIndicators  []string            `yaml:"required_indicators"`
	PreferredIndicators []string            `yaml:"preferred_indicators"`
}

// LoadFile reads a YAML taxonomy file and applies it on top of Default.
// With replace set, the listed skill and quality categories replace the
// built-in ones instead of extending them.
func LoadFile(path string) (*Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}
	return Parse(raw)
}

// Parse applies YAML taxonomy overrides on top of Default.
func Parse(raw []byte) (*Taxonomy, error) {
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFile, err)
	}

	t := Default()
	if f.Replace {
		t.Skills = nil
		if len(f.Qualities) > 0 {
			t.Qualities = nil
		}
	}
	t.Skills = mergeCategories(t.Skills, f.Skills)
	t.Qualities = mergeCategories(t.Qualities, f.Qualities)
	t.SeniorityMarkers = append(t.SeniorityMarkers, f.SeniorityMarkers...)
	t.JuniorMarkers = append(t.JuniorMarkers, f.JuniorMarkers...)
	t.RequiredIndicators = append(t.RequiredIndicators, f.RequiredIndicators...)
	t.PreferredIndicators = append(t.PreferredIndicators, f.PreferredIndicators...)
	t.index()

	if len(t.skillTerms) == 0 {
		return nil, ErrEmptyTaxonomy
	}
	return t, nil
}

func mergeCategories(base []Category, extra map[string][]string) []Category {
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		found := false
		for i := range base {
			if base[i].Name == name {
				base[i].Terms = append(base[i].Terms, extra[name]...)
				found = true
				break
			}
		}
		if !found {
			base = append(base, Category{Name: name, Terms: extra[name]})
		}
	}
	return base
}
