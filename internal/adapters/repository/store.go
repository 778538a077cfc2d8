// Package repository keeps ranking tasks and their results in memory.
package repository

import (
	"context"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
)

// Store provides read/write access to submitted ranking tasks.
type Store interface {
	// Put inserts a new task. Returns ErrExists when the ID is taken.
	Put(ctx context.Context, t model.Task) error

	// Get returns a copy of the task.
	// Returns ErrNotFound if the task is unknown or has expired.
	Get(ctx context.Context, id string) (model.Task, error)

	// Update applies fn to the stored task under the store lock.
	Update(ctx context.Context, id string, fn func(*model.Task)) error

	// Delete removes a task. Unknown IDs are ignored.
	Delete(ctx context.Context, id string)

	// Count returns the number of retained tasks.
	Count(ctx context.Context) int
}
