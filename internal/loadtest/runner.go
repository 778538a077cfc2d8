package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete load test and returns its statistics. The
// error wraps ErrVerification when a completed ranking is malformed.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	applyDefaults(config)
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting ranking load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("jobsPerRequest", config.JobsPerRequest),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("rerank", config.Rerank))

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, err
	}

	requests, err := generateRequests(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("request generation failed: %w", err)
	}
	if config.OutputFile != "" {
		if err := saveRequestsToFile(ctx, config.OutputFile, requests); err != nil {
			logger.Get().Warn(ctx, "failed to save requests to file", logger.Error(err))
		}
	}

	ids, err := submitRequests(ctx, config, requests, stats)
	if err != nil {
		return stats, fmt.Errorf("task submission failed: %w", err)
	}
	if len(ids) == 0 {
		return stats, ErrNothingSubmitted
	}

	tasks, err := awaitTasks(ctx, config, ids, stats)
	if err != nil {
		return stats, fmt.Errorf("task polling failed: %w", err)
	}

	verifyErr := verifyResults(ctx, config, tasks, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	return stats, verifyErr
}

func applyDefaults(config *Config) {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU() * 2
	}
	if config.Requests <= 0 {
		config.Requests = 1
	}
	if config.JobsPerRequest <= 0 {
		config.JobsPerRequest = 1
	}
	if config.Limit <= 0 {
		config.Limit = config.JobsPerRequest
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Wait <= 0 {
		config.Wait = DefaultWait
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// saveRequestsToFile writes the generated requests as a JSON array.
func saveRequestsToFile(ctx context.Context, filename string, requests []Request) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(requests); err != nil {
		return fmt.Errorf("failed to write requests: %w", err)
	}

	logger.Get().Info(ctx, "requests saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, tasksPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Accepted+stats.Duplicate) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		tasksPerSecond = float64(stats.Completed) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("completed", stats.Completed),
		logger.Int("taskFailures", stats.TaskFailures),
		logger.Int("unfinished", stats.Unfinished),
		logger.Int("degraded", stats.Degraded),
		logger.Int("violations", stats.Violations),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("tasksPerSecond", tasksPerSecond))
}
