package api

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cleaver/internal/deps"
	"cleaver/internal/queue"
	"cleaver/internal/stage"
	"cleaver/internal/workflow"
)

var statusCaser = cases.Title(language.English)

// FromJob converts a queue record to its API representation.
//
// Completed jobs always report stage "Completed" at 100 percent no matter
// what the last stage wrote, and an empty progress stage is filled from the
// job status so consumers never render a blank stage.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}

	dto := Job{
		ID:          job.ID,
		Title:       job.Title,
		SourcePath:  job.SourcePath,
		CutlistPath: job.CutlistPath,
		OutputDir:   job.OutputDir,
		Status:      string(job.Status),
		Progress: JobProgress{
			Stage:   job.ProgressStage,
			Percent: job.ProgressPercent,
			Message: job.ProgressMessage,
		},
		ErrorMessage:  job.ErrorMessage,
		TotalCuts:     job.TotalCuts,
		CompletedCuts: job.CompletedCuts,
	}

	switch {
	case job.Status == queue.StatusCompleted:
		dto.Progress.Stage = StatusLabel(queue.StatusCompleted)
		dto.Progress.Percent = 100
	case strings.TrimSpace(dto.Progress.Stage) == "":
		dto.Progress.Stage = StatusLabel(job.Status)
	}

	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if raw := job.MediaInfoJSON; raw != "" {
		dto.MediaInfo = json.RawMessage(raw)
	}
	if raw := job.ResultsJSON; raw != "" {
		dto.Results = json.RawMessage(raw)
	}
	return dto
}

// FromJobs converts a slice of queue records into API DTOs.
func FromJobs(jobs []*queue.Job) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	wf := WorkflowStatus{
		Running:     summary.Running,
		QueueStats:  MergeQueueStats(summary.QueueStats),
		StageHealth: StageHealthSlice(summary.StageHealth),
	}

	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastJob != nil {
		last := FromJob(summary.LastJob)
		wf.LastJob = &last
	}
	return wf
}

// FromDependencyStatuses converts dependency probe results into API DTOs.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}

// FromHealthSummary converts aggregate queue counts into the API DTO.
func FromHealthSummary(summary queue.HealthSummary) QueueHealth {
	return QueueHealth{
		Total:      summary.Total,
		Pending:    summary.Pending,
		Processing: summary.Processing,
		Failed:     summary.Failed,
		Completed:  summary.Completed,
	}
}

// FromDatabaseHealth converts queue database diagnostics into the API DTO.
func FromDatabaseHealth(health queue.DatabaseHealth) DatabaseHealth {
	return DatabaseHealth{
		Path:           health.DBPath,
		Exists:         health.DatabaseExists,
		Readable:       health.DatabaseReadable,
		SchemaVersion:  health.SchemaVersion,
		TableExists:    health.TableExists,
		MissingColumns: health.MissingColumns,
		IntegrityOK:    health.IntegrityCheck,
		TotalJobs:      health.TotalJobs,
		Error:          health.Error,
	}
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// StatusLabel renders a queue status as a display label, for example
// "pending" becomes "Pending".
func StatusLabel(status queue.Status) string {
	value := strings.TrimSpace(string(status))
	if value == "" {
		return ""
	}
	return statusCaser.String(strings.ReplaceAll(value, "_", " "))
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
