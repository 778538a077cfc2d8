package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleResume = `Jane Doe
Software Engineer | Acme Robotics | Open Source Foundation

Education
B.S. Computer Science, State University, 2024

Experience
Built a distributed scheduler in Go and Python; improved latency by 30%.
Designed React dashboards backed by PostgreSQL.

Skills: Docker, Kubernetes, machine learning, C++
Recent graduate looking for entry-level roles.`

type failingTitles struct{}

func (failingTitles) Titles(context.Context, string) ([]string, error) {
	return nil, errors.New("model not loaded")
}

type panickingTitles struct{}

func (panickingTitles) Titles(context.Context, string) ([]string, error) {
	panic("tagger crashed")
}

func TestResumeExtraction(t *testing.T) {
	Convey("Given a resume", t, func() {
		ctx := context.Background()
		e := New()

		Convey("When it is extracted", func() {
			out := e.Resume(ctx, sampleResume)
			p := out.Value

			Convey("Then skills are whole-word matches, lower-cased", func() {
				So(out.Degraded, ShouldBeFalse)
				for _, s := range []string{"go", "python", "react", "postgresql", "docker", "kubernetes", "machine learning", "c++"} {
					So(p.Skills.Contains(s), ShouldBeTrue)
				}
				So(p.Skills.Contains("java"), ShouldBeFalse)
				So(p.Skills.Contains("r"), ShouldBeFalse)
			})

			Convey("And section spans are captured", func() {
				So(p.Education, ShouldStartWith, "B.S. Computer Science")
				So(p.Experience, ShouldStartWith, "Built a distributed scheduler")
				So(p.Experience, ShouldContainSubstring, "PostgreSQL")
			})

			Convey("And qualities and level are derived", func() {
				So(p.Qualities["ownership"], ShouldBeGreaterThanOrEqualTo, 2)
				So(p.Qualities["systems_thinking"], ShouldBeGreaterThanOrEqualTo, 2)
				So(p.ExperienceLevel, ShouldEqual, model.LevelJunior)
			})

			Convey("And at most three title candidates are proposed", func() {
				So(len(p.Titles), ShouldBeBetweenOrEqual, 1, 3)
				So(p.Titles, ShouldContain, "Acme Robotics")
			})
		})

		Convey("When the text is blank", func() {
			out := e.Resume(ctx, "  \n\t")

			Convey("Then the default profile is returned", func() {
				So(out.Degraded, ShouldBeFalse)
				So(out.Value.ExperienceLevel, ShouldEqual, model.LevelUnknown)
				So(out.Value.Skills, ShouldBeEmpty)
				So(out.Value.Titles, ShouldBeEmpty)
			})
		})

		Convey("When the title recognizer is unavailable", func() {
			out := New(WithTitleRecognizer(failingTitles{})).Resume(ctx, sampleResume)

			Convey("Then titles are empty and the rest is extracted", func() {
				So(out.Degraded, ShouldBeFalse)
				So(out.Value.Titles, ShouldBeEmpty)
				So(out.Value.Skills.Contains("python"), ShouldBeTrue)
			})
		})

		Convey("When extraction panics internally", func() {
			out := New(WithTitleRecognizer(panickingTitles{})).Resume(ctx, sampleResume)

			Convey("Then a degraded default profile is returned", func() {
				So(out.Degraded, ShouldBeTrue)
				So(out.Reason, ShouldContainSubstring, "tagger crashed")
				So(out.Value.ExperienceLevel, ShouldEqual, model.LevelUnknown)
				So(out.Value.Skills, ShouldBeEmpty)
			})
		})
	})
}

func TestJobExtraction(t *testing.T) {
	Convey("Given job postings", t, func() {
		ctx := context.Background()
		e := New()

		Convey("When skills are qualified", func() {
			text := "We use Python daily.\nNice to have: Kafka and Docker.\nRequired: Go experience."
			j := e.Job(ctx, text, "Backend Engineer").Value

			Convey("Then required indicators win over preferred ones", func() {
				So(j.RequiredSkills.Contains("python"), ShouldBeTrue)
				So(j.RequiredSkills.Contains("go"), ShouldBeTrue)
				So(j.PreferredSkills.Contains("kafka"), ShouldBeTrue)
				So(j.PreferredSkills.Contains("docker"), ShouldBeTrue)
				So(j.RequiredSkills.Contains("kafka"), ShouldBeFalse)
			})
		})

		Convey("When the qualifier scope is a line", func() {
			text := "Preferred background in fintech.\nWe use Kafka."
			doc := e.Job(ctx, text, "").Value
			line := New(WithQualifierScope(ScopeLine)).Job(ctx, text, "").Value

			Convey("Then indicators on other lines do not qualify", func() {
				So(doc.PreferredSkills.Contains("kafka"), ShouldBeTrue)
				So(line.PreferredSkills.Contains("kafka"), ShouldBeFalse)
				So(line.RequiredSkills.Contains("kafka"), ShouldBeTrue)
			})
		})

		Convey("When a range of years is stated", func() {
			j := e.Job(ctx, "Requires 3-5 years of experience with Java.", "Software Engineer").Value

			Convey("Then both bounds are kept and the job needs experience", func() {
				So(j.ExperienceMin, ShouldEqual, 3)
				So(j.ExperienceMax, ShouldEqual, 5)
				So(j.RequiresExperience, ShouldBeTrue)
				So(j.ExperienceLevel, ShouldEqual, model.LevelMid)
			})
		})

		Convey("When a reversed range is stated", func() {
			j := e.Job(ctx, "6 to 4 years experience", "").Value
			So(j.ExperienceMin, ShouldEqual, 4)
			So(j.ExperienceMax, ShouldEqual, 6)
		})

		Convey("When a single value is stated", func() {
			j := e.Job(ctx, "5+ years of experience building APIs", "Engineer").Value

			Convey("Then both bounds are equal and the level is senior", func() {
				So(j.ExperienceMin, ShouldEqual, 5)
				So(j.ExperienceMax, ShouldEqual, 5)
				So(j.ExperienceLevel, ShouldEqual, model.LevelSenior)
			})
		})

		Convey("When no years are stated", func() {
			junior := e.Job(ctx, "Python and React.", "Junior Developer").Value
			senior := e.Job(ctx, "Java.", "Senior Java Engineer").Value
			plain := e.Job(ctx, "Java.", "Developer").Value

			Convey("Then the title decides the level", func() {
				So(junior.ExperienceMin, ShouldEqual, 0)
				So(junior.RequiresExperience, ShouldBeFalse)
				So(junior.ExperienceLevel, ShouldEqual, model.LevelJunior)
				So(senior.ExperienceLevel, ShouldEqual, model.LevelSenior)
				So(plain.ExperienceLevel, ShouldEqual, model.LevelMid)
			})
		})

		Convey("When a degree is mentioned", func() {
			req := e.Job(ctx, "Bachelor's degree in CS required.", "").Value
			opt := e.Job(ctx, "A degree is welcome.\nSQL required.", "").Value
			So(req.DegreeRequired, ShouldBeTrue)
			So(opt.DegreeRequired, ShouldBeFalse)
		})

		Convey("When the posting is empty", func() {
			out := e.Job(ctx, "", "Data Analyst")

			Convey("Then defaults are returned with the title kept", func() {
				So(out.Degraded, ShouldBeFalse)
				So(out.Value.Title, ShouldEqual, "Data Analyst")
				So(out.Value.RequiredSkills, ShouldBeEmpty)
				So(out.Value.ExperienceLevel, ShouldEqual, model.LevelUnknown)
			})
		})

		Convey("When a custom taxonomy is supplied", func() {
			tx, err := taxonomy.Parse([]byte("skills:\n  programming: [zig]\n"))
			So(err, ShouldBeNil)
			j := New(WithTaxonomy(tx)).Job(ctx, "Zig required", "").Value
			So(j.RequiredSkills.Contains("zig"), ShouldBeTrue)
		})
	})
}

func TestHeuristicTitles(t *testing.T) {
	Convey("Given resume text", t, func() {
		got, err := HeuristicTitles{}.Titles(context.Background(),
			"EDUCATION\nIBM | Google Cloud Platform | the intern team\nSkills\nAcme Robotics, Beta Labs")

		Convey("Then capitalised names are proposed in order, capped at three", func() {
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"IBM", "Google Cloud Platform", "Acme Robotics"})
		})
	})
}
