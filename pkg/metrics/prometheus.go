// Package metrics provides Prometheus metrics for the ranking service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the ranking service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ranking pipeline
	rankRequests    *prometheus.CounterVec
	rankLatency     prometheus.Histogram
	stageLatency    *prometheus.HistogramVec
	jobsScored      prometheus.Counter
	batchSize       prometheus.Histogram
	degradations    *prometheus.CounterVec
	rerankApplied   prometheus.Counter
	extractFailures *prometheus.CounterVec
	filteredOut     prometheus.Counter

	// Model backends
	modelCalls    *prometheus.CounterVec
	modelLatency  *prometheus.HistogramVec
	embedderCache *prometheus.CounterVec

	// Task queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers and tasks
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	tasksCompleted          *prometheus.CounterVec
	tasksDuplicate          prometheus.Counter
	taskStoreSize           prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "apexmatch",
		subsystem:        "ranking",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often process gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether observations are recorded.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.rankRequests = auto.NewCounterVec(m.counterOpts("rank_requests_total",
		"Ranking requests by outcome"), []string{"outcome"})
	m.rankLatency = auto.NewHistogram(m.histogramOpts("rank_latency_milliseconds",
		"End-to-end ranking latency in milliseconds", nil))
	m.stageLatency = auto.NewHistogramVec(m.histogramOpts("stage_latency_milliseconds",
		"Per-stage pipeline latency in milliseconds", nil), []string{"stage"})
	m.jobsScored = auto.NewCounter(m.counterOpts("jobs_scored_total",
		"Total number of job postings scored"))
	m.batchSize = auto.NewHistogram(m.histogramOpts("batch_size",
		"Number of jobs per ranking request",
		[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}))
	m.degradations = auto.NewCounterVec(m.counterOpts("degradations_total",
		"Stages that fell back to a neutral result"), []string{"stage", "reason"})
	m.rerankApplied = auto.NewCounter(m.counterOpts("rerank_applied_total",
		"Requests whose top results were re-scored by the cross-encoder"))
	m.extractFailures = auto.NewCounterVec(m.counterOpts("extract_failures_total",
		"Extractions that returned default profiles"), []string{"kind"})
	m.filteredOut = auto.NewCounter(m.counterOpts("filtered_out_total",
		"Ranked jobs dropped by a request filter"))

	m.modelCalls = auto.NewCounterVec(m.counterOpts("model_calls_total",
		"Calls to model backends by outcome"), []string{"model", "outcome"})
	m.modelLatency = auto.NewHistogramVec(m.histogramOpts("model_latency_milliseconds",
		"Model backend latency in milliseconds", nil), []string{"model"})
	m.embedderCache = auto.NewCounterVec(m.counterOpts("embedding_cache_total",
		"Embedding cache lookups by result"), []string{"result"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current task queue size"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum task queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio",
		"Task queue utilization ratio (0-1)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total",
		"Total number of tasks enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total",
		"Total number of tasks dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total",
		"Total number of enqueue failures"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of active workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds",
		"Worker task processing latency in milliseconds", nil))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total",
		"Total number of worker processing errors"))
	m.tasksCompleted = auto.NewCounterVec(m.counterOpts("tasks_completed_total",
		"Ranking tasks finished by status"), []string{"status"})
	m.tasksDuplicate = auto.NewCounter(m.counterOpts("tasks_duplicate_total",
		"Submissions resolved to an existing task by idempotency key"))
	m.taskStoreSize = auto.NewGauge(m.gaugeOpts("task_store_size", "Tasks currently retained"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_seconds",
		"HTTP request duration in seconds", prometheus.DefBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Errors by HTTP endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Manager-level recorders. Package-level functions below delegate to the
// global manager.

func (m *Manager) RecordRankRequest(outcome string) {
	if m.enabled {
		m.rankRequests.WithLabelValues(outcome).Inc()
	}
}

func (m *Manager) RecordRankLatency(latencyMs float64) {
	if m.enabled {
		m.rankLatency.Observe(latencyMs)
	}
}

func (m *Manager) RecordStageLatency(stage string, latencyMs float64) {
	if m.enabled {
		m.stageLatency.WithLabelValues(stage).Observe(latencyMs)
	}
}

func (m *Manager) RecordJobsScored(n int) {
	if m.enabled && n > 0 {
		m.jobsScored.Add(float64(n))
	}
}

func (m *Manager) ObserveBatchSize(n int) {
	if m.enabled {
		m.batchSize.Observe(float64(n))
	}
}

func (m *Manager) RecordDegradation(stage, reason string) {
	if m.enabled {
		m.degradations.WithLabelValues(stage, reason).Inc()
	}
}

func (m *Manager) RecordRerankApplied() {
	if m.enabled {
		m.rerankApplied.Inc()
	}
}

func (m *Manager) RecordExtractFailure(kind string) {
	if m.enabled {
		m.extractFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Manager) RecordFilteredOut(n int) {
	if m.enabled && n > 0 {
		m.filteredOut.Add(float64(n))
	}
}

func (m *Manager) RecordModelCall(model, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.modelCalls.WithLabelValues(model, outcome).Inc()
	m.modelLatency.WithLabelValues(model).Observe(latencyMs)
}

func (m *Manager) RecordEmbeddingCache(result string) {
	if m.enabled {
		m.embedderCache.WithLabelValues(result).Inc()
	}
}

// RecordRankRequest counts a ranking request by outcome (ok, degraded, error).
func RecordRankRequest(outcome string) { globalManager.RecordRankRequest(outcome) }

// RecordRankLatency records end-to-end ranking latency in milliseconds.
func RecordRankLatency(latencyMs float64) { globalManager.RecordRankLatency(latencyMs) }

// RecordStageLatency records latency of a single pipeline stage.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.RecordStageLatency(stage, latencyMs)
}

// RecordJobsScored adds n scored jobs.
func RecordJobsScored(n int) { globalManager.RecordJobsScored(n) }

// ObserveBatchSize records the number of jobs in a request.
func ObserveBatchSize(n int) { globalManager.ObserveBatchSize(n) }

// RecordDegradation counts a stage that fell back to neutral output.
func RecordDegradation(stage, reason string) { globalManager.RecordDegradation(stage, reason) }

// RecordRerankApplied counts a successful rerank pass.
func RecordRerankApplied() { globalManager.RecordRerankApplied() }

// RecordExtractFailure counts an extraction that fell back to defaults.
func RecordExtractFailure(kind string) { globalManager.RecordExtractFailure(kind) }

// RecordFilteredOut adds n jobs removed by a filter expression.
func RecordFilteredOut(n int) { globalManager.RecordFilteredOut(n) }

// RecordModelCall records one backend call with its outcome and latency.
func RecordModelCall(model, outcome string, latencyMs float64) {
	globalManager.RecordModelCall(model, outcome, latencyMs)
}

// RecordEmbeddingCache counts a cache lookup (hit, miss, error).
func RecordEmbeddingCache(result string) { globalManager.RecordEmbeddingCache(result) }

// UpdateQueueSize updates the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity updates the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization updates the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if globalManager.enabled {
		globalManager.queueUtilization.Set(utilization)
	}
}

// RecordQueueEnqueue records a successful enqueue.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueueRate.Inc()
	}
}

// RecordQueueDequeue records a dequeue.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeueRate.Inc()
	}
}

// RecordQueueEnqueueError records a failed enqueue.
func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerCount updates the number of active workers.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records task processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError records a worker error.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrorRate.Inc()
	}
}

// RecordTaskCompleted counts a finished task by status.
func RecordTaskCompleted(status string) {
	if globalManager.enabled {
		globalManager.tasksCompleted.WithLabelValues(status).Inc()
	}
}

// RecordTaskDuplicate counts a submission that resolved to an existing task.
func RecordTaskDuplicate() {
	if globalManager.enabled {
		globalManager.tasksDuplicate.Inc()
	}
}

// UpdateTaskStoreSize sets the number of retained tasks.
func UpdateTaskStoreSize(count int) {
	if globalManager.enabled {
		globalManager.taskStoreSize.Set(float64(count))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent records an error attributed to a component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error returned by an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage updates heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// RefreshInterval reports the sampling interval of the global manager.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Totals gathers g and returns, per metric family, the sum of counter and
// gauge values or the sample count of histograms.
func Totals(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	out := make(map[string]float64, len(families))
	for _, f := range families {
		var sum float64
		for _, mt := range f.GetMetric() {
			switch {
			case mt.GetCounter() != nil:
				sum += mt.GetCounter().GetValue()
			case mt.GetGauge() != nil:
				sum += mt.GetGauge().GetValue()
			case mt.GetHistogram() != nil:
				sum += float64(mt.GetHistogram().GetSampleCount())
			}
		}
		out[f.GetName()] = sum
	}
	return out, nil
}
