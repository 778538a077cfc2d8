package loadtest

import "time"

// Task states reported by the service.
const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner defaults.
const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultWait          = 2 * time.Minute
	PercentageMultiplier = 100
	progressInterval     = time.Second
)
