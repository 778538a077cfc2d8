package main

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TJ-dotcom/ApexMatchAI/internal/loadtest"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

var loadCfg loadtest.Config

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Drive the asynchronous ranking API with synthetic traffic",
	Long: "Submits synthetic ranking tasks to a running service, polls them to " +
		"completion, and checks that every returned ranking is well ordered.",
	Example: "  apexmatch loadtest --url http://localhost:9080 --requests 500 --jobs 50 --workers 16",
	RunE:    runLoadtest,
}

func init() {
	f := loadtestCmd.Flags()
	f.StringVar(&loadCfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&loadCfg.Requests, "requests", 100, "Number of ranking tasks to submit")
	f.IntVar(&loadCfg.JobsPerRequest, "jobs", 20, "Job postings per task")
	f.IntVar(&loadCfg.Limit, "limit", 10, "Result limit per task")
	f.BoolVar(&loadCfg.Rerank, "rerank", true, "Request cross-encoder reranking")
	f.IntVar(&loadCfg.DuplicateEvery, "duplicate-every", 10, "Reuse the previous idempotency key every N tasks (0 disables)")
	f.IntVar(&loadCfg.Workers, "workers", runtime.NumCPU()*2, "Number of concurrent workers")
	f.DurationVar(&loadCfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	f.DurationVar(&loadCfg.PollInterval, "poll", loadtest.DefaultPollInterval, "Task status poll interval")
	f.DurationVar(&loadCfg.Wait, "wait", loadtest.DefaultWait, "Maximum time to wait for tasks to finish")
	f.Uint64Var(&loadCfg.Seed, "seed", 1, "Seed for the synthetic corpus")
	f.StringVarP(&loadCfg.OutputFile, "out", "o", "", "Write the generated requests to this file")
	f.BoolVarP(&loadCfg.Verbose, "verbose", "v", false, "Log individual failures")

	rootCmd.AddCommand(loadtestCmd)
}

func runLoadtest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if loadCfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	if _, err := loadtest.Run(ctx, &loadCfg); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}
	return nil
}
