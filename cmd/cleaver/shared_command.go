package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cleaver/internal/client"
)

func newSharedCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "shared",
		Short: "List the daemon's shared folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				listing, err := cl.Shared(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, listing)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Shared folder: %s\n", listing.SharedFolder)
				if len(listing.Contents) == 0 {
					fmt.Fprintln(out, "Folder is empty")
					return nil
				}

				rows := make([][]string, 0, len(listing.Contents))
				for _, entry := range listing.Contents {
					kind := "file"
					size := humanize.IBytes(uint64(entry.Size))
					if entry.IsDir {
						kind = "dir"
						size = "-"
					}
					rows = append(rows, []string{entry.Name, kind, size})
				}
				table := renderTable([]string{"Name", "Type", "Size"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
				fmt.Fprint(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
