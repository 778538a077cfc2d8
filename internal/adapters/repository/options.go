package repository

import "time"

// Option applies a configuration option to the TaskStore.
type Option func(*TaskStore)

// WithRetention sets how long finished tasks stay readable.
func WithRetention(d time.Duration) Option {
	return func(s *TaskStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithMaxTasks caps the number of retained tasks; the oldest are evicted first.
func WithMaxTasks(n int) Option {
	return func(s *TaskStore) {
		if n > 0 {
			s.maxTasks = n
		}
	}
}

// WithSweepInterval sets how often expired tasks are removed.
func WithSweepInterval(d time.Duration) Option {
	return func(s *TaskStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) {
		if now != nil {
			s.now = now
		}
	}
}
