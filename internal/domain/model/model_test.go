package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSkillSet(t *testing.T) {
	convey.Convey("Given raw skill terms", t, func() {
		s := model.NewSkillSet("Python", " react ", "python", "", "C++")

		convey.Convey("Then they are lower-cased, deduplicated and sorted", func() {
			convey.So([]string(s), convey.ShouldResemble, []string{"c++", "python", "react"})
		})

		convey.Convey("And membership ignores case", func() {
			convey.So(s.Contains("PYTHON"), convey.ShouldBeTrue)
			convey.So(s.Contains("c++"), convey.ShouldBeTrue)
			convey.So(s.Contains("java"), convey.ShouldBeFalse)
		})
	})
}

func TestExperienceLevel(t *testing.T) {
	convey.Convey("Given experience levels", t, func() {
		convey.So(model.LevelJunior.Ladder(), convey.ShouldEqual, 1)
		convey.So(model.LevelMid.Ladder(), convey.ShouldEqual, 2)
		convey.So(model.LevelSenior.Ladder(), convey.ShouldEqual, 3)
		convey.So(model.LevelUnknown.Ladder(), convey.ShouldEqual, 2)
		convey.So(model.ParseExperienceLevel(" Senior "), convey.ShouldEqual, model.LevelSenior)
		convey.So(model.ParseExperienceLevel("staff"), convey.ShouldEqual, model.LevelUnknown)
	})
}

func TestDefaults(t *testing.T) {
	convey.Convey("Given default profiles", t, func() {
		r := model.DefaultResumeProfile()
		j := model.DefaultJobRequirement("Backend Engineer")

		convey.Convey("Then they are empty but usable", func() {
			convey.So(r.ExperienceLevel, convey.ShouldEqual, model.LevelUnknown)
			convey.So(r.Skills, convey.ShouldBeEmpty)
			convey.So(r.Qualities, convey.ShouldNotBeNil)
			convey.So(j.Title, convey.ShouldEqual, "Backend Engineer")
			convey.So(j.RequiredSkills.Contains("go"), convey.ShouldBeFalse)
			convey.So(j.ExperienceLevel, convey.ShouldEqual, model.LevelUnknown)
		})
	})
}

func TestMatchResultJSON(t *testing.T) {
	convey.Convey("Given a match result without a cross-encoder score", t, func() {
		m := model.MatchResult{JobIndex: 2, JobTitle: "Dev", FinalScore: 71.5}
		raw, err := json.Marshal(m)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the optional score is omitted", func() {
			var out map[string]any
			convey.So(json.Unmarshal(raw, &out), convey.ShouldBeNil)
			_, present := out["cross_encoder_score"]
			convey.So(present, convey.ShouldBeFalse)
			convey.So(out["score_breakdown"], convey.ShouldNotBeNil)
			convey.So(m.Reranked(), convey.ShouldBeFalse)
		})

		convey.Convey("When a cross-encoder score is set", func() {
			ce := 0.9
			m.CrossEncoderScore = &ce
			convey.So(m.Reranked(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a breakdown", t, func() {
		b := model.Breakdown{SkillsMatch: 100, NewGradFriendly: 60}
		convey.So(b.Map()[model.ComponentSkillsMatch], convey.ShouldEqual, 100)
		convey.So(b.Map()[model.ComponentNewGradFriendly], convey.ShouldEqual, 60)
		convey.So(len(b.Map()), convey.ShouldEqual, 5)
	})
}

func TestOutcome(t *testing.T) {
	convey.Convey("Given stage outcomes", t, func() {
		ok := model.Ok([]float64{0.5})
		bad := model.Degrade([]float64{0}, "embedder unavailable")

		convey.So(ok.Degraded, convey.ShouldBeFalse)
		convey.So(bad.Degraded, convey.ShouldBeTrue)
		convey.So(bad.Reason, convey.ShouldEqual, "embedder unavailable")
		convey.So(len(bad.Value), convey.ShouldEqual, len(ok.Value))
	})

	convey.Convey("Given tasks", t, func() {
		convey.So(model.Task{Status: model.TaskProcessing}.Done(), convey.ShouldBeFalse)
		convey.So(model.Task{Status: model.TaskFailed}.Done(), convey.ShouldBeTrue)
	})
}
