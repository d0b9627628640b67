package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cleaver/internal/api"
	"cleaver/internal/client"
	"cleaver/internal/config"
	"cleaver/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.dialClient()
			if err != nil {
				return err
			}
			cfg := ctx.configValue()

			status, err := cl.Status(cmd.Context())
			if errors.Is(err, client.ErrDaemonUnavailable) {
				// Degrade to a local snapshot so status still works
				// when nothing is listening.
				if asJSON {
					return writeJSON(cmd, localStatusSnapshot(cfg))
				}
				renderLocalStatus(cmd.OutOrStdout(), cfg, cl.Server())
				return nil
			}
			if err != nil {
				return describeClientError(err, cl.Server())
			}

			if asJSON {
				return writeJSON(cmd, status)
			}
			renderDaemonStatus(cmd.OutOrStdout(), cfg, status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted sections")
	return cmd
}

func renderDaemonStatus(out io.Writer, cfg *config.Config, status api.DaemonStatus) {
	colorize := shouldColorize(out)

	printSection(out, "Daemon", colorize)
	if status.Running {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "Not running", colorize))
	}
	if status.QueueDBPath != "" {
		fmt.Fprintln(out, renderStatusLine("Queue DB", statusInfo, status.QueueDBPath, colorize))
	}
	if status.SharedRoot != "" {
		fmt.Fprintln(out, renderStatusLine("Shared folder", statusInfo, status.SharedRoot, colorize))
	}
	fmt.Fprintln(out)

	printSection(out, "System", colorize)
	for _, line := range systemLines(cfg, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	printSection(out, "Dependencies", colorize)
	for _, line := range dependencyLines(status.Dependencies, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	printSection(out, "Workflow", colorize)
	for _, line := range workflowLines(status.Workflow, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	printSection(out, "Queue", colorize)
	rows := buildQueueStatusRows(status.Workflow.QueueStats)
	if len(rows) == 0 {
		fmt.Fprintln(out, "Queue is empty")
		return
	}
	table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	fmt.Fprint(out, table)
}

// renderLocalStatus reports what can be known without a daemon: configured
// paths and binary availability.
func renderLocalStatus(out io.Writer, cfg *config.Config, server string) {
	colorize := shouldColorize(out)

	printSection(out, "Daemon", colorize)
	fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, fmt.Sprintf("Not reachable at %s", server), colorize))
	fmt.Fprintln(out, renderStatusLine("Hint", statusInfo, "start it with `cleaver serve`", colorize))
	fmt.Fprintln(out)

	printSection(out, "System", colorize)
	for _, line := range systemLines(cfg, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	printSection(out, "Dependencies", colorize)
	statuses := api.FromDependencyStatuses(preflight.CheckSystemDeps(context.Background(), cfg))
	for _, line := range dependencyLines(statuses, colorize) {
		fmt.Fprintln(out, line)
	}
}

func localStatusSnapshot(cfg *config.Config) api.DaemonStatus {
	return api.DaemonStatus{
		Running:      false,
		Dependencies: api.FromDependencyStatuses(preflight.CheckSystemDeps(context.Background(), cfg)),
	}
}

func printSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

func systemLines(cfg *config.Config, colorize bool) []string {
	results := preflight.RunAll(context.Background(), cfg)
	results = append(results, preflight.CheckNtfyFromConfig(cfg))

	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusWarn
		if result.Passed {
			kind = statusOK
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}

func dependencyLines(dependencies []api.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(dependencies)+1)
	missing := make([]string, 0)
	for _, dep := range dependencies {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func workflowLines(wf api.WorkflowStatus, colorize bool) []string {
	lines := make([]string, 0, 3+len(wf.StageHealth))
	if wf.Running {
		lines = append(lines, renderStatusLine("Workflow", statusOK, "Running", colorize))
	} else {
		lines = append(lines, renderStatusLine("Workflow", statusWarn, "Stopped", colorize))
	}
	for _, health := range wf.StageHealth {
		if health.Ready {
			lines = append(lines, renderStatusLine(formatStatusLabel(health.Name), statusOK, "Ready", colorize))
			continue
		}
		detail := strings.TrimSpace(health.Detail)
		if detail == "" {
			detail = "not ready"
		}
		lines = append(lines, renderStatusLine(formatStatusLabel(health.Name), statusWarn, detail, colorize))
	}
	if job := wf.LastJob; job != nil {
		detail := fmt.Sprintf("#%d %s (%s)", job.ID, job.Title, formatProgress(job.Progress))
		if age := formatTimestampAge(job.UpdatedAt); age != "" {
			detail = fmt.Sprintf("%s, updated %s ago", detail, age)
		}
		lines = append(lines, renderStatusLine("Last job", statusInfo, detail, colorize))
	}
	if lastErr := strings.TrimSpace(wf.LastError); lastErr != "" {
		lines = append(lines, renderStatusLine("Last error", statusError, lastErr, colorize))
	}
	return lines
}
