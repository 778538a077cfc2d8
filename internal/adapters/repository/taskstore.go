package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/metrics"
)

const (
	defaultRetention     = time.Hour
	defaultMaxTasks      = 10_000
	defaultSweepInterval = 30 * time.Second
)

type slot struct {
	task model.Task
	elem *list.Element
}

// TaskStore is an in-memory Store with bounded retention.
//
// Tasks are kept in insertion order. Once a task is finished it expires
// after the retention window; when the store is full the oldest task is
// evicted regardless of status.
type TaskStore struct {
	mu    sync.RWMutex
	byID  map[string]*slot
	order *list.List // of task IDs, oldest first

	retention     time.Duration
	maxTasks      int
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTaskStore constructs a task store and starts its background sweeper.
func NewTaskStore(ctx context.Context, opts ...Option) *TaskStore {
	s := &TaskStore{
		byID:          make(map[string]*slot),
		order:         list.New(),
		retention:     defaultRetention,
		maxTasks:      defaultMaxTasks,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateTaskStoreSize(0)
	s.startSweeper(ctx)
	return s
}

// Put implements Store.Put.
func (s *TaskStore) Put(_ context.Context, t model.Task) error { //nolint:gocritic // hugeParam: tasks are stored by value
	if t.ID == "" {
		return fmt.Errorf("put: %w: empty id", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[t.ID]; ok {
		return fmt.Errorf("put %s: %w", t.ID, ErrExists)
	}
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	s.byID[t.ID] = &slot{task: t, elem: s.order.PushBack(t.ID)}

	for s.order.Len() > s.maxTasks {
		s.removeLocked(s.order.Front().Value.(string))
	}
	metrics.UpdateTaskStoreSize(len(s.byID))
	return nil
}

// Get implements Store.Get.
func (s *TaskStore) Get(_ context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.byID[id]
	if !ok || s.expired(&sl.task) {
		return model.Task{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return sl.task, nil
}

// Update implements Store.Update. UpdatedAt is stamped after fn runs.
func (s *TaskStore) Update(_ context.Context, id string, fn func(*model.Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	fn(&sl.task)
	sl.task.ID = id
	sl.task.UpdatedAt = s.now()
	return nil
}

// Delete implements Store.Delete.
func (s *TaskStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	metrics.UpdateTaskStoreSize(len(s.byID))
}

// Count implements Store.Count.
func (s *TaskStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Sweep drops expired tasks and returns how many were removed.
func (s *TaskStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for e := s.order.Front(); e != nil; {
		next := e.Next()
		id := e.Value.(string)
		if s.expired(&s.byID[id].task) {
			s.removeLocked(id)
			removed++
		}
		e = next
	}
	metrics.UpdateTaskStoreSize(len(s.byID))
	return removed
}

// Close stops the background sweeper.
func (s *TaskStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *TaskStore) expired(t *model.Task) bool {
	return t.Done() && s.now().Sub(t.UpdatedAt) > s.retention
}

func (s *TaskStore) removeLocked(id string) {
	sl, ok := s.byID[id]
	if !ok {
		return
	}
	s.order.Remove(sl.elem)
	delete(s.byID, id)
}

func (s *TaskStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
