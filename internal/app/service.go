// Package service wires the ranking pipeline, task queue, worker pool and
// task store into the operations served over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	taskqueue "github.com/TJ-dotcom/ApexMatchAI/internal/adapters/mq/queue"
	workerpool "github.com/TJ-dotcom/ApexMatchAI/internal/adapters/mq/worker"
	"github.com/TJ-dotcom/ApexMatchAI/internal/adapters/repository"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/dedupe"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/filter"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/ranking"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/metrics"
)

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	ranker  *ranking.Ranker
	store   *repository.TaskStore
	deduper dedupe.Deduper
	queue   *taskqueue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	taskRetention time.Duration
	maxJobs       int
	maxLimit      int

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRanker sets the ranking pipeline.
func WithRanker(r *ranking.Ranker) Option {
	return func(s *Service) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending ranking tasks.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTaskRetention sets how long finished tasks stay readable.
func WithTaskRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.taskRetention = d
		}
	}
}

// WithMaxJobs caps the number of jobs per request.
func WithMaxJobs(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxJobs = n
		}
	}
}

// WithMaxLimit caps the requested result limit.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     1024,
		dedupeSize:    50_000,
		taskRetention: time.Hour,
		maxJobs:       500,
		maxLimit:      100,
		logger:        logger.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ranker == nil {
		s.ranker = ranking.New()
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting ranking service...")

	// Workers outlive the caller's context; Stop cancels them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewTaskStore(runCtx, repository.WithRetention(s.taskRetention))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = taskqueue.NewInMemoryQueue(taskqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.store,
		workerpool.WithOnFinish(s.onTaskFinished))
	s.pool.Start(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service. Queued tasks are drained first.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping ranking service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	_ = s.store.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// Process implements the worker processor by ranking synchronously.
func (s *Service) Process(ctx context.Context, req model.RankRequest) (model.RankResponse, error) { //nolint:gocritic // hugeParam
	return s.Rank(ctx, req)
}

// Rank runs the pipeline inline and applies the optional result filter.
func (s *Service) Rank(ctx context.Context, req model.RankRequest) (model.RankResponse, error) { //nolint:gocritic // hugeParam
	f, err := s.check(req)
	if err != nil {
		return model.RankResponse{}, err
	}

	resp, err := s.ranker.RankBatch(ctx, req.Resume, req.Jobs, req.Limit, req.Rerank)
	if err != nil {
		return model.RankResponse{}, err
	}

	kept, dropped, err := f.Apply(resp.Matches)
	if err != nil {
		return model.RankResponse{}, err
	}
	if dropped > 0 {
		metrics.RecordFilteredOut(dropped)
	}
	resp.Matches = kept
	return resp, nil
}

// Submit stores and enqueues an asynchronous ranking task. When key is set
// and was seen before, the existing task is returned with duplicate=true.
func (s *Service) Submit(ctx context.Context, req model.RankRequest, key string) (task model.Task, duplicate bool, err error) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Task{}, false, ErrNotStarted
	}
	if _, err := s.check(req); err != nil {
		return model.Task{}, false, err
	}

	id := uuid.NewString()
	task = model.Task{
		ID:             id,
		IdempotencyKey: key,
		Status:         model.TaskProcessing,
		Request:        req,
	}
	// Store before claiming the key so a concurrent duplicate always finds
	// the task the key points at.
	if err := s.store.Put(ctx, task); err != nil {
		return model.Task{}, false, err
	}
	if key != "" {
		if existing, seen := s.deduper.SeenOrRecord(ctx, key, id); seen {
			if t, err := s.store.Get(ctx, existing); err == nil {
				s.store.Delete(ctx, id)
				metrics.RecordTaskDuplicate()
				return t, true, nil
			}
			// The task aged out of the store; the key is reusable.
			s.deduper.Forget(ctx, key)
			s.deduper.SeenOrRecord(ctx, key, id)
		}
	}

	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.store.Delete(ctx, id)
		s.forget(ctx, key)
		if errors.Is(err, taskqueue.ErrFull) || errors.Is(err, taskqueue.ErrClosed) {
			return model.Task{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return model.Task{}, false, err
	}

	s.logger.Debug(ctx, "ranking task accepted",
		logger.String("task_id", id),
		logger.Int("jobs", len(req.Jobs)),
	)
	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return task, false, nil
	}
	return stored, false, nil
}

// Task returns the current state of an asynchronous ranking task.
func (s *Service) Task(ctx context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Task{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"maxJobs":     s.maxJobs,
		"maxLimit":    s.maxLimit,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["tasks"] = s.store.Count(ctx)
		stats["idempotencyKeys"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		metrics.UpdateWorkerCount(s.workerCount)
	}

	if totals, err := metrics.Totals(metrics.GetRegistry()); err == nil {
		stats["rankRequests"] = totals["apexmatch_ranking_rank_requests_total"]
		stats["jobsScored"] = totals["apexmatch_ranking_jobs_scored_total"]
		stats["degradations"] = totals["apexmatch_ranking_degradations_total"]
		stats["rerankApplied"] = totals["apexmatch_ranking_rerank_applied_total"]
	}

	return stats
}

// check validates request bounds and compiles its filter.
func (s *Service) check(req model.RankRequest) (*filter.Filter, error) { //nolint:gocritic // hugeParam
	if len(req.Jobs) > s.maxJobs {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyJobs, len(req.Jobs), s.maxJobs)
	}
	if req.Limit > s.maxLimit {
		return nil, fmt.Errorf("%w: %d > %d", ErrLimitTooHigh, req.Limit, s.maxLimit)
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit %d: %w", req.Limit, ranking.ErrInvalidLimit)
	}
	return filter.Compile(req.Filter)
}

// onTaskFinished releases the idempotency key of a failed task so the
// client may resubmit it.
func (s *Service) onTaskFinished(ctx context.Context, t model.Task) { //nolint:gocritic // hugeParam
	if t.Status == model.TaskFailed {
		s.forget(ctx, t.IdempotencyKey)
	}
}

func (s *Service) forget(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Forget(ctx, key)
	}
}
