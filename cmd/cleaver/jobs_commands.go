package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"cleaver/internal/api"
	"cleaver/internal/client"
	"cleaver/internal/queue"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage queued cut jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsRetryCommand(ctx))
	jobsCmd.AddCommand(newJobsRemoveCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cut jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				jobs, err := cl.Jobs(cmd.Context(), listStatuses...)
				if err != nil {
					return err
				}
				sorted := api.SortJobsNewestFirst(jobs)
				if asJSON {
					return writeJSON(cmd, api.JobListResponse{Jobs: sorted})
				}
				if len(sorted) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Title", "Status", "Progress", "Created"},
					buildJobListRows(sorted),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <jobID>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(cl *client.Client) error {
				job, err := cl.Job(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.JobResponse{Job: job})
				}
				printJobDetail(cmd.OutOrStdout(), job)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}

func newJobsRetryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "retry [jobID...]",
		Short: "Retry failed jobs",
		Long:  "Retry resets failed jobs to pending so the workflow picks them up again. With no arguments every failed job is retried.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(cl *client.Client) error {
				if len(ids) == 0 {
					failed, err := cl.Jobs(cmd.Context(), string(queue.StatusFailed))
					if err != nil {
						return err
					}
					for _, job := range failed {
						ids = append(ids, job.ID)
					}
				}

				combined := api.RetryJobsResult{Jobs: make([]api.RetryJobResult, 0, len(ids))}
				for _, id := range ids {
					result, err := cl.Retry(cmd.Context(), id)
					if err != nil {
						return err
					}
					combined.UpdatedCount += result.UpdatedCount
					combined.Jobs = append(combined.Jobs, result.Jobs...)
				}

				if asJSON {
					return writeJobRetryResultJSON(cmd, combined)
				}
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					fmt.Fprintf(out, "Retried %d failed jobs\n", combined.UpdatedCount)
					return nil
				}
				printJobRetryResult(out, combined)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}

func newJobsRemoveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "remove <jobID...>",
		Short: "Remove jobs from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(cl *client.Client) error {
				results := make([]jobRemoveResult, 0, len(ids))
				for _, id := range ids {
					err := cl.Remove(cmd.Context(), id)
					var apiErr *client.APIError
					if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
						results = append(results, jobRemoveResult{ID: id, Outcome: jobRemoveOutcomeNotFound})
						continue
					}
					if err != nil {
						return err
					}
					results = append(results, jobRemoveResult{ID: id, Outcome: jobRemoveOutcomeRemoved})
				}
				if asJSON {
					return writeJobRemoveResultsJSON(cmd, results)
				}
				printJobRemoveResults(cmd.OutOrStdout(), results)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished jobs in bulk",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			scope := "all"
			switch {
			case clearCompleted:
				scope = "completed"
			case clearFailed:
				scope = "failed"
			}
			return ctx.withClient(func(cl *client.Client) error {
				resp, err := cl.Clear(cmd.Context(), scope)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", resp.Removed, bulkClearLabel(clearCompleted, clearFailed))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed jobs")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed jobs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}
