package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/taxonomy"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// Corpus shape constants.
const (
	resumeSkillsMin   = 3
	resumeSkillsRange = 6
	requiredMin       = 2
	requiredRange     = 4
	preferredRange    = 3
	yearsRange        = 12
	seedMix           = 0x9e3779b97f4a7c15
)

var jobTitles = []string{
	"Backend Engineer", "Frontend Developer", "Data Engineer", "Machine Learning Engineer",
	"Site Reliability Engineer", "Platform Engineer", "Software Engineer", "Full Stack Developer",
}

var titlePrefixes = []string{"", "", "Junior ", "Senior ", "Staff ", "Lead "}

// generator builds a reproducible synthetic corpus from the skill taxonomy.
type generator struct {
	rng    *rand.Rand
	skills []string
}

func newGenerator(seed uint64) *generator {
	return &generator{
		rng:    rand.New(rand.NewPCG(seed, seed^seedMix)),
		skills: taxonomy.Default().SkillTerms(),
	}
}

// generateRequests creates config.Requests ranking requests. Every
// DuplicateEvery-th request repeats the previous idempotency key.
func generateRequests(ctx context.Context, config *Config, stats *Stats) ([]Request, error) {
	logger.Get().Info(ctx, "generating ranking requests",
		logger.Int("requests", config.Requests),
		logger.Int("jobsPerRequest", config.JobsPerRequest))

	g := newGenerator(config.Seed)
	requests := make([]Request, config.Requests)
	for i := range requests {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}

		if config.DuplicateEvery > 0 && i > 0 && (i+1)%config.DuplicateEvery == 0 {
			requests[i] = requests[i-1]
			continue
		}

		jobs := make([]Job, config.JobsPerRequest)
		for j := range jobs {
			jobs[j] = g.job()
		}
		requests[i] = Request{
			Resume:         g.resume(),
			Jobs:           jobs,
			Limit:          config.Limit,
			Rerank:         config.Rerank,
			IdempotencyKey: uuid.NewString(),
		}
	}

	stats.RequestsGenerated = len(requests)
	return requests, nil
}

func (g *generator) pick(n int) []string {
	if n > len(g.skills) {
		n = len(g.skills)
	}
	out := make([]string, 0, n)
	for _, i := range g.rng.Perm(len(g.skills))[:n] {
		out = append(out, g.skills[i])
	}
	return out
}

func (g *generator) resume() string {
	skills := g.pick(resumeSkillsMin + g.rng.IntN(resumeSkillsRange))
	years := g.rng.IntN(yearsRange)

	var b strings.Builder
	b.WriteString("Alex Candidate\nSoftware Engineer\n")
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(skills, ", "))
	if years > 0 {
		fmt.Fprintf(&b, "%d years of experience building production systems.\n", years)
	} else {
		b.WriteString("B.S. Computer Science, recent graduate.\n")
	}
	return b.String()
}

func (g *generator) job() Job {
	required := g.pick(requiredMin + g.rng.IntN(requiredRange))
	preferred := g.pick(g.rng.IntN(preferredRange))
	years := g.rng.IntN(yearsRange)
	title := titlePrefixes[g.rng.IntN(len(titlePrefixes))] + jobTitles[g.rng.IntN(len(jobTitles))]

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nRequired: %s.\n", title, strings.Join(required, ", "))
	if len(preferred) > 0 {
		fmt.Fprintf(&b, "Preferred: %s.\n", strings.Join(preferred, ", "))
	}
	if years > 0 {
		fmt.Fprintf(&b, "%d+ years of experience.\n", years)
	} else {
		b.WriteString("New grads welcome.\n")
	}
	return Job{Title: title, Text: b.String()}
}
