// Package loadtest drives the asynchronous ranking API with synthetic
// resumes and job postings and checks the returned rankings.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Requests       int           // Number of ranking tasks to submit
	JobsPerRequest int           // Job postings per task
	Limit          int           // Result limit sent with every task
	Rerank         bool          // Ask for cross-encoder reranking
	DuplicateEvery int           // Every Nth task reuses the previous idempotency key; 0 disables
	Workers        int           // Number of concurrent HTTP workers
	Timeout        time.Duration // HTTP request timeout
	PollInterval   time.Duration // Delay between task status polls
	Wait           time.Duration // Upper bound on waiting for tasks to finish
	Seed           uint64        // Seed for the synthetic corpus
	OutputFile     string        // Optional file the generated requests are written to
	Verbose        bool          // Log per-request failures
}

// Job is one synthetic job posting.
type Job struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Request is the body of POST /rankings.
type Request struct {
	Resume         string `json:"resume"`
	Jobs           []Job  `json:"jobs"`
	Limit          int    `json:"limit"`
	Rerank         bool   `json:"rerank"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Match is the subset of a ranked match the checks need.
type Match struct {
	JobIndex   int     `json:"job_index"`
	JobTitle   string  `json:"job_title"`
	FinalScore float64 `json:"final_score"`

	CrossEncoderScore *float64 `json:"cross_encoder_score"`
}

// Result is a completed ranking.
type Result struct {
	Matches      []Match       `json:"matches"`
	Degradations []Degradation `json:"degradations"`
	Count        int           `json:"count"`
}

// Degradation names a stage that fell back.
type Degradation struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// TaskStatus is the body returned by POST /rankings and GET /rankings/{id}.
type TaskStatus struct {
	TaskID    string  `json:"task_id"`
	Status    string  `json:"status"`
	Duplicate bool    `json:"duplicate"`
	Result    *Result `json:"result"`
	Error     string  `json:"error"`
}

// Stats holds test statistics.
type Stats struct {
	RequestsGenerated int
	Submitted         int
	Accepted          int
	Duplicate         int
	Rejected          int
	Failed            int
	Completed         int
	TaskFailures      int
	Unfinished        int
	Degraded          int
	Violations        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
