package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleaver/internal/api"
	"cleaver/internal/client"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "submit <input> <cutlist> <output_folder>",
		Short: "Queue a cut job for background processing",
		Long:  "Submit queues a job and returns immediately; the daemon's workflow performs the cuts. All paths are relative to the daemon's shared folder.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				job, err := cl.Submit(cmd.Context(), api.SubmitJobRequest{
					SourcePath:  args[0],
					CutlistPath: args[1],
					OutputDir:   args[2],
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.JobResponse{Job: job})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d (%s)\n", job.ID, job.Title)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}
