package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

type submitOutcome int

const (
	outcomeAccepted submitOutcome = iota
	outcomeDuplicate
	outcomeRejected
	outcomeFailed
)

// counters tracks concurrent progress.
type counters struct {
	done      atomic.Int64
	accepted  atomic.Int64
	duplicate atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
}

// submitRequests posts every request to /rankings with config.Workers
// workers and returns the distinct task IDs the service handed out.
func submitRequests(ctx context.Context, config *Config, requests []Request, stats *Stats) ([]string, error) {
	log := logger.Get()
	log.Info(ctx, "submitting ranking tasks",
		logger.Int("requests", len(requests)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/rankings"

	var (
		c   counters
		mu  sync.Mutex
		ids = make(map[string]struct{}, len(requests))
	)

	stopProgress := reportProgress(ctx, "submission", len(requests), &c.done)
	defer stopProgress()

	reqChan := make(chan Request, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range reqChan {
				id, outcome, err := submitSingle(ctx, client, url, req)
				c.done.Add(1)
				switch outcome {
				case outcomeAccepted:
					c.accepted.Add(1)
				case outcomeDuplicate:
					c.duplicate.Add(1)
				case outcomeRejected:
					c.rejected.Add(1)
				case outcomeFailed:
					c.failed.Add(1)
					if config.Verbose {
						log.Warn(ctx, "task submission failed", logger.Error(err))
					}
				}
				if id != "" {
					mu.Lock()
					ids[id] = struct{}{}
					mu.Unlock()
				}
			}
		}()
	}

	go func() {
		defer close(reqChan)
		for _, req := range requests {
			select {
			case <-ctx.Done():
				return
			case reqChan <- req:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(c.done.Load())
	stats.Accepted = int(c.accepted.Load())
	stats.Duplicate = int(c.duplicate.Load())
	stats.Rejected = int(c.rejected.Load())
	stats.Failed = int(c.failed.Load())

	log.Info(ctx, "task submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))

	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out, ctx.Err()
}

// submitSingle submits one request. 202 is a new task, 200 a duplicate
// idempotency key, and 429 backpressure.
func submitSingle(ctx context.Context, client *HTTPClient, url string, req Request) (string, submitOutcome, error) { //nolint:gocritic // hugeParam
	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return "", outcomeFailed, err
	}

	var task TaskStatus
	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		if err := decodeResponse(resp, &task); err != nil {
			return "", outcomeFailed, err
		}
		if task.Duplicate || resp.StatusCode == http.StatusOK {
			return task.TaskID, outcomeDuplicate, nil
		}
		return task.TaskID, outcomeAccepted, nil
	case http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return "", outcomeRejected, nil
	default:
		_ = resp.Body.Close()
		return "", outcomeFailed, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
}

// reportProgress logs done/total once per interval until stopped.
func reportProgress(ctx context.Context, phase string, total int, done *atomic.Int64) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Get().Info(ctx, "progress",
					logger.String("phase", phase),
					logger.Int("done", int(done.Load())),
					logger.Int("total", total))
			}
		}
	}()
	return cancel
}
