package rerank_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/rerank"
	. "github.com/smartystreets/goconvey/convey"
)

type scriptedEncoder struct {
	scores map[string]float64
	err    error
	short  bool
	nan    bool
	seen   []string
}

func (s *scriptedEncoder) Score(_ context.Context, _ string, candidates []string) ([]float64, error) {
	s.seen = candidates
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, s.scores[c])
	}
	if s.short {
		out = out[:len(out)-1]
	}
	if s.nan {
		out[0] = math.NaN()
	}
	return out, nil
}

type panicEncoder struct{}

func (panicEncoder) Score(context.Context, string, []string) ([]float64, error) {
	panic("cuda out of memory")
}

func ranking(scores ...float64) []model.MatchResult {
	out := make([]model.MatchResult, len(scores))
	for i, s := range scores {
		out[i] = model.MatchResult{JobIndex: i, JobTitle: fmt.Sprintf("job-%d", i), FinalScore: s}
	}
	return out
}

func text(i int) string { return fmt.Sprintf("job-%d", i) }

func indices(ms []model.MatchResult) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.JobIndex
	}
	return out
}

func TestRerankerApply(t *testing.T) {
	Convey("Given a fused ranking of seven jobs", t, func() {
		ctx := context.Background()
		in := ranking(90, 80, 70, 60, 50, 40, 30)

		Convey("When the cross-encoder prefers a lower-ranked head entry", func() {
			enc := &scriptedEncoder{scores: map[string]float64{
				"job-0": 0, "job-1": 10, "job-2": 100, "job-3": 60, "job-4": 50,
				"job-5": 1000, "job-6": 1000,
			}}
			out := rerank.New(enc).Apply(ctx, "resume", in, text)

			Convey("Then only the top five are scored and blended", func() {
				So(out.Degraded, ShouldBeFalse)
				So(enc.seen, ShouldResemble, []string{"job-0", "job-1", "job-2", "job-3", "job-4"})
				So(indices(out.Value), ShouldResemble, []int{2, 3, 4, 0, 1, 5, 6})
				So(out.Value[0].FinalScore, ShouldEqual, 85)
				So(*out.Value[0].CrossEncoderScore, ShouldEqual, 100)
			})

			Convey("And the tail keeps its order and scores", func() {
				So(len(out.Value), ShouldEqual, len(in))
				So(out.Value[5].FinalScore, ShouldEqual, 40)
				So(out.Value[5].Reranked(), ShouldBeFalse)
				So(out.Value[6].FinalScore, ShouldEqual, 30)
			})

			Convey("And the input slice is not mutated", func() {
				So(in[0].FinalScore, ShouldEqual, 90)
				So(in[0].Reranked(), ShouldBeFalse)
			})
		})

		Convey("When blended scores tie", func() {
			enc := &scriptedEncoder{scores: map[string]float64{"job-0": 10, "job-1": 20}}
			out := rerank.New(enc, rerank.WithTopN(2)).Apply(ctx, "resume", ranking(60, 50), text)

			Convey("Then the prior order breaks the tie", func() {
				So(out.Value[0].FinalScore, ShouldEqual, 35)
				So(out.Value[1].FinalScore, ShouldEqual, 35)
				So(indices(out.Value), ShouldResemble, []int{0, 1})
			})
		})

		failures := []struct {
			name string
			ce   rerank.CrossEncoder
		}{
			{"no encoder", nil},
			{"encoder error", &scriptedEncoder{err: errors.New("timeout")}},
			{"encoder panic", panicEncoder{}},
			{"short output", &scriptedEncoder{scores: map[string]float64{}, short: true}},
			{"nan output", &scriptedEncoder{scores: map[string]float64{}, nan: true}},
		}
		for _, tc := range failures {
			ce := tc.ce
			Convey("When the cross-encoder fails: "+tc.name, func() {
				out := rerank.New(ce).Apply(ctx, "resume", in, text)

				Convey("Then the fused ranking is returned exactly", func() {
					So(out.Degraded, ShouldBeTrue)
					So(out.Value, ShouldResemble, in)
				})
			})
		}

		Convey("When the ranking is shorter than the window", func() {
			enc := &scriptedEncoder{scores: map[string]float64{"job-0": 20, "job-1": 100}}
			out := rerank.New(enc).Apply(ctx, "resume", ranking(60, 50), text)
			So(len(out.Value), ShouldEqual, 2)
			So(indices(out.Value), ShouldResemble, []int{1, 0})
		})

		Convey("When the ranking is empty", func() {
			enc := &scriptedEncoder{}
			out := rerank.New(enc).Apply(ctx, "resume", nil, text)
			So(out.Degraded, ShouldBeFalse)
			So(out.Value, ShouldBeEmpty)
			So(enc.seen, ShouldBeNil)
		})
	})
}
