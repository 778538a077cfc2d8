// Package dedupe maps client idempotency keys to the ranking task they
// created, so a retried submission resolves to the original task.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the number of remembered keys.
const defaultMaxSize = 50000

// Deduper records idempotency keys.
type Deduper interface {
	// SeenOrRecord atomically returns the task already recorded for key, or
	// records taskID for it. seen reports which of the two happened.
	SeenOrRecord(ctx context.Context, key, taskID string) (existing string, seen bool)

	// Forget drops key so a later submission creates a new task. Used when
	// the recorded task could not be enqueued.
	Forget(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key    string
	taskID string
}

// inMemoryDeduper keeps keys in insertion order and, when bounded, evicts
// the oldest key once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int        // <= 0 means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.keys = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenOrRecord(_ context.Context, key, taskID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		return el.Value.(*entry).taskID, true
	}

	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.keys[key] = d.order.PushFront(&entry{key: key, taskID: taskID})
	d.size.Store(int64(d.order.Len()))
	return taskID, false
}

func (d *inMemoryDeduper) Forget(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
		d.size.Store(int64(d.order.Len()))
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.keys, el.Value.(*entry).key)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
