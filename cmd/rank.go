package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TJ-dotcom/ApexMatchAI/internal/config"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank job postings against a resume and print JSON",
	Long: "Runs the ranking pipeline once. --jobs points to a JSON array of " +
		"{\"title\", \"text\"} objects; the ranked matches are written to " +
		"stdout or --out.",
	RunE: runRank,
}

var (
	rankResume string
	rankJobs   string
	rankOutput string
	rankLimit  int
	rankRerank bool
	rankFilter string
)

func init() {
	rankCmd.Flags().StringVarP(&rankResume, "resume", "r", "", "Path to the resume text file (required)")
	rankCmd.Flags().StringVarP(&rankJobs, "jobs", "j", "", "Path to a JSON array of job postings (required)")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Write results to this file instead of stdout")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", -1, "Maximum number of results (defaults to default_limit)")
	rankCmd.Flags().BoolVar(&rankRerank, "rerank", true, "Rerank the leading results with the cross-encoder")
	rankCmd.Flags().StringVar(&rankFilter, "filter", "", "CEL expression that results must satisfy")

	if err := rankCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("jobs"); err != nil {
		panic(fmt.Sprintf("failed to mark jobs flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := setup(ctx, configPath)
	if err != nil {
		return err
	}

	req, err := loadRankRequest(cfg, rankResume, rankJobs)
	if err != nil {
		return err
	}
	req.Limit = cfg.DefaultLimit
	if rankLimit >= 0 {
		req.Limit = rankLimit
	}
	req.Rerank = rankRerank
	req.Filter = rankFilter

	r, err := newRanker(cfg)
	if err != nil {
		return fmt.Errorf("failed to build ranking pipeline: %w", err)
	}

	// Rank runs inline; the worker pool is not needed for a single request.
	resp, err := newService(cfg, r).Rank(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to rank jobs: %w", err)
	}
	if resp.Matches == nil {
		resp.Matches = []model.MatchResult{}
	}

	var out io.Writer = cmd.OutOrStdout()
	if rankOutput != "" {
		f, err := os.Create(rankOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", rankOutput, err)
		}
		defer f.Close()
		out = f
	}
	return writeRankResponse(out, resp)
}

// loadRankRequest reads the resume text and the job array from disk.
func loadRankRequest(cfg *config.Config, resumePath, jobsPath string) (model.RankRequest, error) {
	resume, err := os.ReadFile(resumePath)
	if err != nil {
		return model.RankRequest{}, fmt.Errorf("failed to read resume file %s: %w", resumePath, err)
	}

	raw, err := os.ReadFile(jobsPath)
	if err != nil {
		return model.RankRequest{}, fmt.Errorf("failed to read jobs file %s: %w", jobsPath, err)
	}
	var jobs []model.JobPosting
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return model.RankRequest{}, fmt.Errorf("failed to unmarshal jobs JSON: %w", err)
	}
	if len(jobs) > cfg.MaxJobsPerRequest {
		return model.RankRequest{}, fmt.Errorf("%d jobs exceed max_jobs_per_request (%d)", len(jobs), cfg.MaxJobsPerRequest)
	}

	return model.RankRequest{Resume: string(resume), Jobs: jobs}, nil
}

func writeRankResponse(w io.Writer, resp model.RankResponse) error { //nolint:gocritic // hugeParam
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
