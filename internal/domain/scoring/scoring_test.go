package scoring_test

import (
	"testing"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	scoring "github.com/TJ-dotcom/ApexMatchAI/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func resume(level model.ExperienceLevel, skills ...string) model.ResumeProfile {
	p := model.DefaultResumeProfile()
	p.Skills = model.NewSkillSet(skills...)
	p.ExperienceLevel = level
	return p
}

func job(title string, level model.ExperienceLevel, required ...string) model.JobRequirement {
	j := model.DefaultJobRequirement(title)
	j.RequiredSkills = model.NewSkillSet(required...)
	j.ExperienceLevel = level
	return j
}

func TestSymbolicScorer_SkillsMatch(t *testing.T) {
	Convey("Given a symbolic scorer", t, func() {
		s := scoring.New()

		Convey("When the job lists no required skills", func() {
			r := s.Score(resume(model.LevelMid, "python"), job("Engineer", model.LevelMid))

			Convey("Then skills_match is zero", func() {
				So(r.Breakdown.SkillsMatch, ShouldEqual, 0)
				So(r.Matched, ShouldBeEmpty)
				So(r.Missing, ShouldBeEmpty)
			})
		})

		Convey("When half the required skills are present", func() {
			j := job("Engineer", model.LevelMid, "python", "java")
			j.PreferredSkills = model.NewSkillSet("docker", "kafka", "spark", "aws")
			r := s.Score(resume(model.LevelMid, "Python", "docker"), j)

			Convey("Then matched and missing lists are reported", func() {
				So(r.Breakdown.SkillsMatch, ShouldEqual, 50)
				So(r.Breakdown.PreferredSkills, ShouldEqual, 25)
				So(r.Matched, ShouldResemble, []string{"python"})
				So(r.Missing, ShouldResemble, []string{"java"})
				So(r.MatchedPreferred, ShouldResemble, []string{"docker"})
			})
		})
	})
}

func TestSymbolicScorer_ExperienceLevel(t *testing.T) {
	Convey("Given a junior resume", t, func() {
		s := scoring.New()
		junior := resume(model.LevelJunior)

		Convey("Then the experience component is one-sided", func() {
			So(s.Score(junior, job("Dev", model.LevelJunior)).Breakdown.ExperienceLevel, ShouldEqual, 100)
			So(s.Score(junior, job("Dev", model.LevelMid)).Breakdown.ExperienceLevel, ShouldEqual, 50)
			So(s.Score(junior, job("Dev", model.LevelUnknown)).Breakdown.ExperienceLevel, ShouldEqual, 50)
			So(s.Score(junior, job("Dev", model.LevelSenior)).Breakdown.ExperienceLevel, ShouldEqual, 0)
		})

		Convey("And an exact match sets the flag", func() {
			So(s.Score(junior, job("Dev", model.LevelJunior)).ExperienceMatch, ShouldBeTrue)
			So(s.Score(junior, job("Dev", model.LevelMid)).ExperienceMatch, ShouldBeFalse)
		})
	})

	Convey("Given non-junior resumes", t, func() {
		s := scoring.New()

		Convey("Then ladder distance decides", func() {
			So(s.Score(resume(model.LevelSenior), job("Dev", model.LevelSenior)).Breakdown.ExperienceLevel, ShouldEqual, 100)
			So(s.Score(resume(model.LevelSenior), job("Dev", model.LevelMid)).Breakdown.ExperienceLevel, ShouldEqual, 50)
			So(s.Score(resume(model.LevelSenior), job("Dev", model.LevelJunior)).Breakdown.ExperienceLevel, ShouldEqual, 0)
			So(s.Score(resume(model.LevelUnknown), job("Dev", model.LevelMid)).Breakdown.ExperienceLevel, ShouldEqual, 100)
			So(s.Score(resume(model.LevelUnknown), job("Dev", model.LevelJunior)).Breakdown.ExperienceLevel, ShouldEqual, 50)
		})
	})
}

func TestSymbolicScorer_NewGrad(t *testing.T) {
	Convey("Given jobs with and without penalties", t, func() {
		s := scoring.New()
		r := resume(model.LevelJunior)

		plain := job("Software Engineer", model.LevelMid)
		senior := job("Senior Software Engineer", model.LevelSenior)
		experienced := job("Software Engineer", model.LevelMid)
		experienced.RequiresExperience = true
		both := job("Staff Engineer", model.LevelSenior)
		both.RequiresExperience = true

		Convey("Then the score is 100 minus independent penalties", func() {
			So(s.Score(r, plain).Breakdown.NewGradFriendly, ShouldEqual, 100)
			So(s.Score(r, senior).Breakdown.NewGradFriendly, ShouldEqual, 60)
			So(s.Score(r, experienced).Breakdown.NewGradFriendly, ShouldEqual, 70)
			So(s.Score(r, both).Breakdown.NewGradFriendly, ShouldEqual, 30)
		})

		Convey("And the flag is true only without penalties", func() {
			So(s.Score(r, plain).NewGradFriendly, ShouldBeTrue)
			So(s.Score(r, senior).NewGradFriendly, ShouldBeFalse)
			So(s.Score(r, experienced).NewGradFriendly, ShouldBeFalse)
		})
	})
}

func TestSymbolicScorer_Quality(t *testing.T) {
	Convey("Given quality counts", t, func() {
		s := scoring.New()
		r := resume(model.LevelMid)
		j := job("Dev", model.LevelMid)

		Convey("When the job mentions no quality", func() {
			j.Qualities = map[string]int{"ownership": 0}
			So(s.Score(r, j).Breakdown.QualityMatch, ShouldEqual, 50)
		})

		Convey("When the resume covers some qualities", func() {
			r.Qualities = map[string]int{"ownership": 5, "impact": 1}
			j.Qualities = map[string]int{"ownership": 2, "impact": 4, "systems_thinking": 0}

			Convey("Then coverage is averaged over mentioned qualities", func() {
				So(s.Score(r, j).Breakdown.QualityMatch, ShouldEqual, 62.5)
			})
		})
	})
}

func TestSymbolicScorer_Overall(t *testing.T) {
	Convey("Given the default weights", t, func() {
		s := scoring.New()

		Convey("When a junior resume matches a junior posting fully", func() {
			r := s.Score(resume(model.LevelJunior, "python", "react"),
				job("Junior Developer", model.LevelJunior, "python", "react"))

			Convey("Then overall is the weighted sum", func() {
				// 25 + 0 + 15 + 5 + 40
				So(r.Overall, ShouldEqual, 85)
				So(r.Breakdown.SkillsMatch, ShouldEqual, 100)
				So(r.Breakdown.NewGradFriendly, ShouldEqual, 100)
			})
		})

		Convey("When a senior posting requires a missing skill", func() {
			r := s.Score(resume(model.LevelJunior, "python", "react"),
				job("Senior Java Engineer", model.LevelSenior, "java"))

			Convey("Then only the new-grad and quality terms contribute", func() {
				So(r.Breakdown.NewGradFriendly, ShouldEqual, 60)
				So(r.Breakdown.SkillsMatch, ShouldEqual, 0)
				So(r.Overall, ShouldEqual, 29)
			})
		})

		Convey("When both profiles are defaults", func() {
			r := s.Score(model.DefaultResumeProfile(), model.DefaultJobRequirement(""))

			Convey("Then new-grad friendliness dominates", func() {
				So(r.Breakdown.NewGradFriendly, ShouldEqual, 100)
				So(r.Breakdown.SkillsMatch, ShouldEqual, 0)
				So(r.Breakdown.PreferredSkills, ShouldEqual, 0)
				So(r.Overall, ShouldEqual, 60)
			})
		})

		Convey("When overall has more than two decimals", func() {
			j := job("Junior Developer", model.LevelJunior, "python", "java", "go")
			r := s.Score(resume(model.LevelJunior, "python"), j)

			Convey("Then it is rounded", func() {
				// 33.333..*0.25 + 15 + 5 + 40
				So(r.Overall, ShouldEqual, 68.33)
			})
		})
	})

	Convey("Given custom weights", t, func() {
		s := scoring.New(scoring.WithWeights(scoring.Weights{Skills: 1}))
		r := s.Score(resume(model.LevelMid, "go"), job("Dev", model.LevelMid, "go", "rust"))
		So(r.Overall, ShouldEqual, 50)

		Convey("When weights do not sum to one", func() {
			bad := scoring.New(scoring.WithWeights(scoring.Weights{Skills: 2}))
			So(bad.Score(resume(model.LevelMid, "go"), job("Dev", model.LevelMid, "go", "rust")).Overall,
				ShouldEqual, scoring.New().Score(resume(model.LevelMid, "go"), job("Dev", model.LevelMid, "go", "rust")).Overall)
		})
	})
}

func TestRound2(t *testing.T) {
	Convey("Given values to round", t, func() {
		So(scoring.Round2(12.346), ShouldEqual, 12.35)
		So(scoring.Round2(0.004), ShouldEqual, 0)
		So(scoring.Round2(-1.005), ShouldAlmostEqual, -1.0, 0.011)
	})
}
