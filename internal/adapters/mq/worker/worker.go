package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// ErrShutdownTimeout is returned when workers do not stop in time.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// Processor executes one ranking request.
type Processor interface {
	Process(ctx context.Context, req model.RankRequest) (model.RankResponse, error)
}

// Updater persists task state transitions.
type Updater interface {
	Update(ctx context.Context, id string, fn func(*model.Task)) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Task
}

// Worker processes tasks and writes their results using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing ranking tasks.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	updater   Updater
	name      string
	onFinish  func(ctx context.Context, t model.Task)

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, processor Processor, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: processor,
		updater:   updater,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if err := w.processTask(ctx, t); err != nil {
				w.logger.Error(ctx, "error processing task", logger.String("task_id", t.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

// processTask runs one ranking task and records its terminal state.
// A processing failure marks the task failed; only store errors are returned.
func (w *InMemoryWorker) processTask(ctx context.Context, t model.Task) error { //nolint:gocritic // hugeParam: Task must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	res, err := w.run(ctx, t.Request)

	status := model.TaskCompleted
	if err != nil {
		status = model.TaskFailed
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "ranking_error")
		metrics.RecordErrorByType("ranking_error", "high")
		w.logger.Warn(ctx, "ranking task failed",
			logger.String("task_id", t.ID),
			logger.Error(err),
		)
	}
	metrics.RecordTaskCompleted(string(status))

	var final model.Task
	uerr := w.updater.Update(ctx, t.ID, func(stored *model.Task) {
		stored.Status = status
		if err != nil {
			stored.Error = err.Error()
		} else {
			stored.Result = res
			stored.Error = ""
		}
		final = *stored
	})
	if uerr != nil {
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("update task %s: %w", t.ID, uerr)
	}

	if w.onFinish != nil {
		w.onFinish(ctx, final)
	}
	return nil
}

// run isolates processor panics so a single task cannot take a worker down.
func (w *InMemoryWorker) run(ctx context.Context, req model.RankRequest) (res model.RankResponse, err error) { //nolint:gocritic // hugeParam
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panic: %v", r)
		}
	}()
	return w.processor.Process(ctx, req)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	started atomic.Bool
	logger  logger.Logger
}

// NewPool creates a new worker pool. Options are applied to every worker.
func NewPool(workerCount int, q Queue, processor Processor, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{}, opts...)
		wopts = append(wopts, WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, processor, updater, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool. Subsequent calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop signals all workers and waits briefly for each of them.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
	if !p.started.Load() {
		return
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue, lets workers finish their current task and waits.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if !p.started.Load() {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return ErrShutdownTimeout
	}
	return nil
}
