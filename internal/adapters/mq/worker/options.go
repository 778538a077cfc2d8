// Package worker runs queued ranking tasks and records their outcome.
package worker

import (
	"context"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnFinish registers a callback invoked with the final task state.
func WithOnFinish(fn func(ctx context.Context, t model.Task)) Option {
	return func(w *InMemoryWorker) {
		w.onFinish = fn
	}
}
