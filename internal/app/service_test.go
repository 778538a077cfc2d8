package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/internal/adapters/repository"
	service "github.com/TJ-dotcom/ApexMatchAI/internal/app"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/embedding"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/filter"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

const resume = `Jane Doe
Software Engineer
Skills: Python, Go, Docker, Kubernetes, SQL, React
Education
B.S. Computer Science, 2023
Passionate and collaborative team player with leadership in projects.`

func request() model.RankRequest {
	return model.RankRequest{
		Resume: resume,
		Jobs: []model.JobPosting{
			{Title: "Backend Engineer", Text: "Required: Python, Go, SQL. Preferred: Docker. 0-2 years of experience. New grads welcome."},
			{Title: "Senior Staff Engineer", Text: "Required: Java, Scala, Spark. 8+ years of experience leading teams."},
			{Title: "Frontend Developer", Text: "Must have React and TypeScript. Nice to have: GraphQL."},
		},
		Limit: 10,
	}
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithRanker(ranking.New(ranking.WithEmbedder(embedding.NewHashingEmbedder(64)))),
		service.WithWorkerCount(2),
		service.WithQueueSize(16),
		service.WithMaxJobs(10),
		service.WithMaxLimit(20),
	}
	return service.New(append(base, opts...)...)
}

func waitTask(ctx context.Context, svc *service.Service, id string) model.Task {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		t, err := svc.Task(ctx, id)
		if err == nil && t.Done() {
			return t
		}
		time.Sleep(5 * time.Millisecond)
	}
	t, _ := svc.Task(ctx, id)
	return t
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("Async operations fail before Start", func() {
			_, _, err := svc.Submit(ctx, request(), "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Task(ctx, "x")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Start and Stop are idempotent", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_Rank(t *testing.T) {
	Convey("Given a service ranking synchronously", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("The best-fitting job comes first", func() {
			resp, err := svc.Rank(ctx, request())
			So(err, ShouldBeNil)
			So(resp.Matches, ShouldHaveLength, 3)
			So(resp.Matches[0].JobTitle, ShouldEqual, "Backend Engineer")
			for i := 1; i < len(resp.Matches); i++ {
				So(resp.Matches[i-1].FinalScore, ShouldBeGreaterThanOrEqualTo, resp.Matches[i].FinalScore)
			}
		})

		Convey("A filter drops non-matching results", func() {
			req := request()
			req.Filter = `"go" in match.matched_skills`
			resp, err := svc.Rank(ctx, req)
			So(err, ShouldBeNil)
			So(resp.Matches, ShouldHaveLength, 1)
			So(resp.Matches[0].JobIndex, ShouldEqual, 0)
		})

		Convey("Bounds and filters are validated", func() {
			req := request()
			req.Filter = "match.final_score >"
			_, err := svc.Rank(ctx, req)
			So(errors.Is(err, filter.ErrInvalidExpression), ShouldBeTrue)

			req = request()
			req.Limit = 21
			_, err = svc.Rank(ctx, req)
			So(errors.Is(err, service.ErrLimitTooHigh), ShouldBeTrue)

			req = request()
			req.Limit = -1
			_, err = svc.Rank(ctx, req)
			So(errors.Is(err, ranking.ErrInvalidLimit), ShouldBeTrue)

			req = request()
			for len(req.Jobs) <= 10 {
				req.Jobs = append(req.Jobs, model.JobPosting{Text: "go"})
			}
			_, err = svc.Rank(ctx, req)
			So(errors.Is(err, service.ErrTooManyJobs), ShouldBeTrue)
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("A submitted task completes with ranked matches", func() {
			task, dup, err := svc.Submit(ctx, request(), "")
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
			So(task.ID, ShouldNotBeEmpty)
			So(task.Status, ShouldEqual, model.TaskProcessing)

			done := waitTask(ctx, svc, task.ID)
			So(done.Status, ShouldEqual, model.TaskCompleted)
			So(done.Result.Matches, ShouldHaveLength, 3)
			So(done.Result.Matches[0].JobTitle, ShouldEqual, "Backend Engineer")
		})

		Convey("The same idempotency key returns the original task", func() {
			first, _, err := svc.Submit(ctx, request(), "upload-1")
			So(err, ShouldBeNil)
			second, dup, err := svc.Submit(ctx, request(), "upload-1")
			So(err, ShouldBeNil)
			So(dup, ShouldBeTrue)
			So(second.ID, ShouldEqual, first.ID)
		})

		Convey("Invalid requests are rejected before queueing", func() {
			req := request()
			req.Filter = "1 +"
			_, _, err := svc.Submit(ctx, req, "k")
			So(errors.Is(err, filter.ErrInvalidExpression), ShouldBeTrue)
			So(svc.GetStats()["tasks"], ShouldEqual, 0)
		})

		Convey("Unknown tasks are not found", func() {
			_, err := svc.Task(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Stats report queue and store state", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueLength"], ShouldEqual, 0)
			So(stats, ShouldContainKey, "rankRequests")
		})
	})
}
