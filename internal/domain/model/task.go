package model

import "time"

// TaskStatus is the lifecycle state of an asynchronous ranking task.
type TaskStatus string

const (
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// RankRequest is the input of one ranking run.
type RankRequest struct {
	Resume string       `json:"resume"`
	Jobs   []JobPosting `json:"jobs"`
	Limit  int          `json:"limit"`
	Rerank bool         `json:"rerank"`
	Filter string       `json:"filter,omitempty"`
}

// RankResponse is the output of one ranking run.
type RankResponse struct {
	Matches      []MatchResult `json:"matches"`
	Degradations []Degradation `json:"degradations,omitempty"`
}

// Task tracks an asynchronous ranking request.
type Task struct {
	ID             string       `json:"task_id"`
	IdempotencyKey string       `json:"idempotency_key,omitempty"`
	Status         TaskStatus   `json:"status"`
	Request        RankRequest  `json:"-"`
	Result         RankResponse `json:"result"`
	Error          string       `json:"error,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Done reports whether the task reached a terminal state.
func (t Task) Done() bool { return t.Status == TaskCompleted || t.Status == TaskFailed }
