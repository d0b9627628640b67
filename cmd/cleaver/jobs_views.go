package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cleaver/internal/api"
)

func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildJobListRows(jobs []api.Job) [][]string {
	if len(jobs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		title := strings.TrimSpace(job.Title)
		if title == "" {
			source := strings.TrimSpace(job.SourcePath)
			if source != "" {
				title = filepath.Base(source)
			} else {
				title = "Unknown"
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", job.ID),
			title,
			formatStatusLabel(job.Status),
			formatProgress(job.Progress),
			formatDisplayTime(job.CreatedAt),
		})
	}
	return rows
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatProgress(progress api.JobProgress) string {
	stage := strings.TrimSpace(progress.Stage)
	if stage == "" {
		return "-"
	}
	return fmt.Sprintf("%s %.0f%%", stage, progress.Percent)
}

func formatProgressDetail(progress api.JobProgress) string {
	label := formatProgress(progress)
	if message := strings.TrimSpace(progress.Message); message != "" {
		label = fmt.Sprintf("%s (%s)", label, message)
	}
	return label
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t := api.ParseQueueTime(value); !t.IsZero() {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func formatTimestampAge(value string) string {
	t := api.ParseQueueTime(value)
	if t.IsZero() {
		return ""
	}
	age := time.Since(t).Round(time.Second)
	if age < 0 {
		age = 0
	}
	return age.String()
}
