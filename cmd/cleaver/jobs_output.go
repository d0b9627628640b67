package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cleaver/internal/api"
)

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid job id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJobDetail(out io.Writer, job api.Job) {
	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = "Unknown"
	}
	fmt.Fprintf(out, "Job %d: %s\n", job.ID, title)
	fmt.Fprintf(out, "  Status:   %s\n", formatStatusLabel(job.Status))
	fmt.Fprintf(out, "  Source:   %s\n", job.SourcePath)
	fmt.Fprintf(out, "  Cutlist:  %s\n", job.CutlistPath)
	if job.OutputDir != "" {
		fmt.Fprintf(out, "  Output:   %s\n", job.OutputDir)
	}
	if summary := api.MediaInfoSummary(job.MediaInfo); summary != "" {
		fmt.Fprintf(out, "  Input:    %s\n", summary)
	}
	if strings.TrimSpace(job.Progress.Stage) != "" {
		fmt.Fprintf(out, "  Progress: %s\n", formatProgressDetail(job.Progress))
	}
	if job.TotalCuts > 0 {
		fmt.Fprintf(out, "  Cuts:     %d of %d complete\n", job.CompletedCuts, job.TotalCuts)
	}
	if created := formatDisplayTime(job.CreatedAt); created != "" {
		fmt.Fprintf(out, "  Created:  %s\n", created)
	}
	if updated := formatDisplayTime(job.UpdatedAt); updated != "" {
		fmt.Fprintf(out, "  Updated:  %s\n", updated)
	}
	if message := strings.TrimSpace(job.ErrorMessage); message != "" {
		fmt.Fprintf(out, "  Error:    %s\n", message)
	}
	if results := api.DecodeResults(job.Results); len(results) > 0 {
		fmt.Fprintln(out, "  Results:")
		for _, result := range results {
			fmt.Fprintf(out, "    %s\n", api.CutResultLine(result))
		}
	}
}

func writeJobRetryResultJSON(cmd *cobra.Command, result api.RetryJobsResult) error {
	type jsonJob struct {
		ID      int64  `json:"id"`
		Outcome string `json:"outcome"`
	}
	jobs := make([]jsonJob, 0, len(result.Jobs))
	for _, job := range result.Jobs {
		jobs = append(jobs, jsonJob{ID: job.ID, Outcome: string(job.Outcome)})
	}
	return writeJSON(cmd, map[string]any{"jobs": jobs, "updated": result.UpdatedCount})
}

func printJobRetryResult(out io.Writer, result api.RetryJobsResult) {
	for _, job := range result.Jobs {
		switch job.Outcome {
		case api.RetryJobNotFound:
			fmt.Fprintf(out, "Job %d not found\n", job.ID)
		case api.RetryJobNotFailed:
			fmt.Fprintf(out, "Job %d is not in a retryable state (only failed jobs can be retried)\n", job.ID)
		case api.RetryJobUpdated:
			fmt.Fprintf(out, "Job %d reset for retry\n", job.ID)
		}
	}
}

type jobRemoveOutcome string

const (
	jobRemoveOutcomeRemoved  jobRemoveOutcome = "removed"
	jobRemoveOutcomeNotFound jobRemoveOutcome = "not_found"
)

type jobRemoveResult struct {
	ID      int64
	Outcome jobRemoveOutcome
}

func writeJobRemoveResultsJSON(cmd *cobra.Command, results []jobRemoveResult) error {
	type jsonJob struct {
		ID      int64  `json:"id"`
		Outcome string `json:"outcome"`
	}
	jobs := make([]jsonJob, 0, len(results))
	for _, result := range results {
		jobs = append(jobs, jsonJob{ID: result.ID, Outcome: string(result.Outcome)})
	}
	return writeJSON(cmd, map[string]any{"jobs": jobs})
}

func printJobRemoveResults(out io.Writer, results []jobRemoveResult) {
	for _, result := range results {
		switch result.Outcome {
		case jobRemoveOutcomeNotFound:
			fmt.Fprintf(out, "Job %d not found\n", result.ID)
		case jobRemoveOutcomeRemoved:
			fmt.Fprintf(out, "Job %d removed\n", result.ID)
		}
	}
}

func bulkClearLabel(completed, failed bool) string {
	switch {
	case completed:
		return "completed jobs"
	case failed:
		return "failed jobs"
	default:
		return "jobs"
	}
}
