package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// awaitTasks polls GET /rankings/{id} until every task is done or
// config.Wait elapses. Tasks still processing at the deadline are counted
// as unfinished.
func awaitTasks(ctx context.Context, config *Config, ids []string, stats *Stats) ([]TaskStatus, error) {
	log := logger.Get()
	log.Info(ctx, "waiting for ranking tasks", logger.Int("tasks", len(ids)))

	waitCtx, cancel := context.WithTimeout(ctx, config.Wait)
	defer cancel()

	client := newHTTPClient(config.Timeout)
	results := make([]TaskStatus, len(ids))
	var done atomic.Int64

	stopProgress := reportProgress(ctx, "polling", len(ids), &done)
	defer stopProgress()

	idxChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxChan {
				task, err := pollTask(waitCtx, client, config, ids[idx])
				if err != nil && config.Verbose {
					log.Warn(ctx, "task poll stopped", logger.String("task_id", ids[idx]), logger.Error(err))
				}
				results[idx] = task
				done.Add(1)
			}
		}()
	}

	go func() {
		defer close(idxChan)
		for i := range ids {
			select {
			case <-ctx.Done():
				return
			case idxChan <- i:
			}
		}
	}()

	wg.Wait()

	for _, t := range results {
		switch t.Status {
		case statusCompleted:
			stats.Completed++
			if t.Result != nil && len(t.Result.Degradations) > 0 {
				stats.Degraded++
			}
		case statusFailed:
			stats.TaskFailures++
		default:
			stats.Unfinished++
		}
	}

	log.Info(ctx, "task polling completed",
		logger.Int("completed", stats.Completed),
		logger.Int("failed", stats.TaskFailures),
		logger.Int("unfinished", stats.Unfinished),
		logger.Int("degraded", stats.Degraded))
	return results, ctx.Err()
}

// pollTask fetches one task until it leaves the processing state.
func pollTask(ctx context.Context, client *HTTPClient, config *Config, id string) (TaskStatus, error) {
	url := config.BaseURL + "/rankings/" + id
	last := TaskStatus{TaskID: id, Status: statusProcessing}

	for {
		task, err := fetchTask(ctx, client, url)
		switch {
		case err == nil:
			last = task
			if task.Status != statusProcessing {
				return task, nil
			}
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return last, err
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(config.PollInterval):
		}
	}
}

func fetchTask(ctx context.Context, client *HTTPClient, url string) (TaskStatus, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return TaskStatus{}, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return TaskStatus{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var task TaskStatus
	if err := decodeResponse(resp, &task); err != nil {
		return TaskStatus{}, err
	}
	return task, nil
}
