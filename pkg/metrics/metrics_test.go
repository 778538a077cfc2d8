package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then defaults are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("pipeline"),
				WithMetricPrefix("px"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordJobsScored(4)

			Convey("Then names carry namespace, subsystem and prefix", func() {
				totals, err := Totals(registry)
				So(err, ShouldBeNil)
				So(totals["test_pipeline_px_jobs_scored_total"], ShouldEqual, 4)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
			})
		})

		Convey("When empty option values are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)
			manager.RecordRankLatency(12)

			Convey("Then defaults are kept", func() {
				totals, err := Totals(registry)
				So(err, ShouldBeNil)
				So(totals["apexmatch_ranking_rank_latency_milliseconds"], ShouldEqual, 1)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given an isolated manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When pipeline observations are recorded", func() {
			m.RecordRankRequest("ok")
			m.RecordRankRequest("degraded")
			m.RecordStageLatency("embedding", 3)
			m.RecordStageLatency("rerank", 7)
			m.RecordJobsScored(10)
			m.RecordJobsScored(0)
			m.ObserveBatchSize(10)
			m.RecordDegradation("embedding", "unavailable")
			m.RecordRerankApplied()
			m.RecordExtractFailure("resume")
			m.RecordFilteredOut(2)
			m.RecordModelCall("tei-embed", "ok", 4.5)
			m.RecordEmbeddingCache("miss")

			Convey("Then every family reflects them", func() {
				totals, err := Totals(registry)
				So(err, ShouldBeNil)
				So(totals["apexmatch_ranking_rank_requests_total"], ShouldEqual, 2)
				So(totals["apexmatch_ranking_stage_latency_milliseconds"], ShouldEqual, 2)
				So(totals["apexmatch_ranking_jobs_scored_total"], ShouldEqual, 10)
				So(totals["apexmatch_ranking_batch_size"], ShouldEqual, 1)
				So(totals["apexmatch_ranking_degradations_total"], ShouldEqual, 1)
				So(totals["apexmatch_ranking_rerank_applied_total"], ShouldEqual, 1)
				So(totals["apexmatch_ranking_extract_failures_total"], ShouldEqual, 1)
				So(totals["apexmatch_ranking_filtered_out_total"], ShouldEqual, 2)
				So(totals["apexmatch_ranking_model_calls_total"], ShouldEqual, 1)
				So(totals["apexmatch_ranking_model_latency_milliseconds"], ShouldEqual, 1)
				So(totals["apexmatch_ranking_embedding_cache_total"], ShouldEqual, 1)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))

		Convey("When observations are recorded", func() {
			m.RecordRankRequest("ok")
			m.RecordJobsScored(3)
			m.RecordModelCall("gemini", "error", 1)

			Convey("Then nothing is counted", func() {
				totals, err := Totals(registry)
				So(err, ShouldBeNil)
				So(totals["apexmatch_ranking_jobs_scored_total"], ShouldEqual, 0)
				So(totals["apexmatch_ranking_model_calls_total"], ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global registry", t, func() {
		before, err := Totals(GetRegistry())
		So(err, ShouldBeNil)

		Convey("When package-level recorders are called", func() {
			So(func() {
				RecordRankRequest("ok")
				RecordRankLatency(10)
				RecordStageLatency("fusion", 0.2)
				RecordJobsScored(3)
				ObserveBatchSize(3)
				RecordDegradation("rerank", "error")
				RecordRerankApplied()
				RecordExtractFailure("job")
				RecordFilteredOut(1)
				RecordModelCall("hashing", "ok", 0.1)
				RecordEmbeddingCache("hit")
				UpdateQueueSize(2)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.02)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(25)
				RecordWorkerError()
				RecordTaskCompleted("succeeded")
				RecordTaskDuplicate()
				UpdateTaskStoreSize(1)
				RecordHTTPRequest("/rank", "POST", "200")
				RecordHTTPRequestDuration("/rank", "POST", "200", 0.01)
				RecordErrorByComponent("ranking", "invalid_limit")
				RecordErrorByType("validation", "warning")
				RecordErrorByEndpoint("/rank", "POST", "bad_request")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			Convey("Then counters advance", func() {
				after, err := Totals(GetRegistry())
				So(err, ShouldBeNil)
				So(after["apexmatch_ranking_jobs_scored_total"]-before["apexmatch_ranking_jobs_scored_total"], ShouldEqual, 3)
				So(after["apexmatch_ranking_queue_capacity"], ShouldEqual, 100)
				So(after["apexmatch_ranking_worker_count"], ShouldEqual, 4)
				So(after["apexmatch_ranking_tasks_duplicate_total"], ShouldBeGreaterThanOrEqualTo, 1)
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}
