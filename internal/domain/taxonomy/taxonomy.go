// Package taxonomy holds the keyword tables used to read resumes and job
// postings, and the whole-word matcher applied to them.
package taxonomy

import (
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
)

// Category is a named, ordered group of terms.
type Category struct {
	Name  string
	Terms []string
}

// Taxonomy is the full rule table. It is read-only once built and safe for
// concurrent use.
type Taxonomy struct {
	Skills    []Category
	Qualities []Category

	SeniorIndicators []string
	MidIndicators    []string
	JuniorIndicators []string

	SeniorityMarkers []string
	JuniorMarkers    []string

	RequiredIndicators  []string
	PreferredIndicators []string

	DegreeTerms      []string
	RequirementTerms []string

	skillTerms []string
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t := &Taxonomy{
		Skills: []Category{
			{Name: "programming", Terms: []string{
				"python", "java", "javascript", "typescript", "cpp", "c++", "c#", "go", "rust", "php",
				"ruby", "swift", "kotlin", "scala", "perl", "r", "bash", "shell",
			}},
			{Name: "web_development", Terms: []string{
				"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask", "fastapi",
				"spring", "asp.net", "jquery", "bootstrap", "tailwind", "webpack", "vite",
			}},
			{Name: "databases", Terms: []string{
				"sql", "mysql", "postgresql", "mongodb", "cassandra", "redis", "neo4j", "dynamodb", "oracle",
				"sqlite", "mariadb", "nosql", "database",
			}},
			{Name: "cloud", Terms: []string{
				"aws", "azure", "gcp", "cloud", "lambda", "s3", "ec2", "kubernetes", "docker", "terraform",
				"serverless", "microservices", "devops", "ci/cd", "jenkins",
			}},
			{Name: "ai_ml", Terms: []string{
				"machine learning", "artificial intelligence", "deep learning", "neural networks", "nlp",
				"computer vision", "tensorflow", "pytorch", "scikit-learn", "pandas", "numpy",
				"matplotlib", "data science", "reinforcement learning", "llm", "large language model",
				"transformer", "bert", "gpt", "openai", "langchain", "rag", "prompt engineering",
			}},
			{Name: "data_engineering", Terms: []string{
				"etl", "data warehouse", "data lake", "spark", "hadoop", "kafka", "airflow", "databricks",
				"snowflake", "redshift", "big data", "data pipeline", "data modeling",
			}},
			{Name: "soft_skills", Terms: []string{
				"leadership", "teamwork", "communication", "problem-solving", "time management",
				"critical thinking", "project management", "agile", "scrum", "kanban",
			}},
		},
		Qualities: []Category{
			{Name: "product_minded", Terms: []string{
				"user experience", "user feedback", "customer", "product", "usability", "feature", "metric",
				"growth", "conversion", "retention", "engagement", "satisfaction", "adoption", "market",
				"competitive", "business logic", "requirement", "spec", "specification",
			}},
			{Name: "systems_thinking", Terms: []string{
				"architecture", "system design", "scale", "distributed", "concurrent", "latency", "throughput",
				"availability", "reliability", "fault-tolerant", "resilient", "bottleneck", "performance",
				"optimization", "capacity", "infrastructure",
			}},
			{Name: "ownership", Terms: []string{
				"led", "lead", "managed", "built", "created", "designed", "implemented", "developed",
				"deployed", "launched", "owned", "responsible", "initiative", "drove", "pioneered",
				"established", "authored", "spearheaded", "coordinated",
			}},
			{Name: "technical_maturity", Terms: []string{
				"testing", "test coverage", "unit test", "integration test", "ci/cd", "pipeline", "monitoring",
				"logging", "debugging", "profiling", "security", "code review", "best practice", "pattern",
				"architecture", "design pattern", "clean code",
			}},
			{Name: "learning_adaptability", Terms: []string{
				"learned", "adapted", "research", "studied", "improved", "enhanced", "upgraded", "migrated",
				"transformed", "innovated", "solved", "overcome", "experimented", "prototyped",
			}},
			{Name: "impact", Terms: []string{
				"increased", "decreased", "reduced", "improved", "enhanced", "saved", "accelerated",
				"optimized", "streamlined", "automated", "eliminated", "percent", "%", "million", "thousand",
				"impact", "result", "outcome", "success", "achievement", "milestone", "growth", "revenue",
			}},
		},
		SeniorIndicators: []string{"senior", "lead", "manager", "director", "head", "architect"},
		MidIndicators:    []string{"mid", "intermediate", "experienced", "associate"},
		JuniorIndicators: []string{"junior", "entry", "intern", "graduate", "recent"},

		SeniorityMarkers: []string{"senior", "sr", "lead", "principal", "staff", "architect", "ii", "iii", "iv", "2", "3"},
		JuniorMarkers:    []string{"junior", "entry", "intern", "graduate", "new grad"},

		RequiredIndicators:  []string{"required", "must have", "necessary"},
		PreferredIndicators: []string{"preferred", "nice to have", "plus", "bonus"},

		DegreeTerms:      []string{"bachelor", "master", "phd", "degree", "bs", "ms", "ba", "education"},
		RequirementTerms: []string{"required", "needed", "must"},
	}
	t.index()
	return t
}

func (t *Taxonomy) index() {
	seen := make(map[string]struct{})
	t.skillTerms = t.skillTerms[:0]
	for _, c := range t.Skills {
		for _, term := range c.Terms {
			k := normalizeTerm(term)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			t.skillTerms = append(t.skillTerms, k)
		}
	}
}

// SkillTerms returns every skill term, lower-cased, in taxonomy order.
func (t *Taxonomy) SkillTerms() []string {
	return t.skillTerms
}

// QualityCounts counts whole-word mentions of each quality's keywords.
// Every quality is present in the result, zero when unmentioned.
func (t *Taxonomy) QualityCounts(text Text) map[string]int {
	out := make(map[string]int, len(t.Qualities))
	for _, q := range t.Qualities {
		n := 0
		for _, term := range q.Terms {
			n += text.Count(term)
		}
		out[q.Name] = n
	}
	return out
}

// ResumeLevel infers the seniority of a resume. Senior indicators win over
// mid, which win over junior.
func (t *Taxonomy) ResumeLevel(text Text) model.ExperienceLevel {
	switch {
	case text.ContainsAny(t.SeniorIndicators):
		return model.LevelSenior
	case text.ContainsAny(t.MidIndicators):
		return model.LevelMid
	case text.ContainsAny(t.JuniorIndicators):
		return model.LevelJunior
	default:
		return model.LevelUnknown
	}
}

// HasSeniorityMarker reports whether a job title signals a non-entry role.
func (t *Taxonomy) HasSeniorityMarker(title string) bool {
	return NewText(title).ContainsAny(t.SeniorityMarkers)
}

// HasJuniorMarker reports whether a job title signals an entry-level role.
func (t *Taxonomy) HasJuniorMarker(title string) bool {
	return NewText(title).ContainsAny(t.JuniorMarkers)
}
