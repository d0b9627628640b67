package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleaver/internal/api"
	"cleaver/internal/client"
)

func newCutCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cut <input> <cutlist> <output_folder>",
		Short: "Cut a video and wait for the results",
		Long:  "Cut runs synchronously: the daemon works through the cutlist and the command returns once every segment has been attempted. All paths are relative to the daemon's shared folder.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				resp, err := cl.Cut(cmd.Context(), api.CutRequest{
					InputFile:    args[0],
					CutlistFile:  args[1],
					OutputFolder: args[2],
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, resp.Message)
				if len(resp.Results) == 0 {
					fmt.Fprintln(out, "No cuts were produced")
					return nil
				}

				failed := 0
				rows := make([][]string, 0, len(resp.Results))
				for _, result := range resp.Results {
					outcome := "ok"
					if !result.Success {
						outcome = "failed"
						failed++
					}
					rows = append(rows, []string{result.OutputFile, outcome})
				}
				table := renderTable([]string{"Output File", "Result"}, rows, []columnAlignment{alignLeft, alignLeft})
				fmt.Fprint(out, table)
				if failed > 0 {
					fmt.Fprintf(out, "\n%d of %d cuts failed\n", failed, len(resp.Results))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	return cmd
}
