package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a queue entry in a transport-friendly format.
type Job struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	SourcePath    string          `json:"sourcePath"`
	CutlistPath   string          `json:"cutlistPath"`
	OutputDir     string          `json:"outputDir,omitempty"`
	Status        string          `json:"status"`
	Progress      JobProgress     `json:"progress"`
	ErrorMessage  string          `json:"errorMessage"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
	TotalCuts     int             `json:"totalCuts"`
	CompletedCuts int             `json:"completedCuts"`
	MediaInfo     json.RawMessage `json:"mediaInfo,omitempty"`
	Results       json.RawMessage `json:"results,omitempty"`
}

// JobProgress captures stage progress information for a queue entry.
type JobProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastJob     *Job           `json:"lastJob,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queueDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	SharedRoot   string             `json:"sharedRoot,omitempty"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// QueueClearResponse reports how many jobs a clear request removed.
type QueueClearResponse struct {
	Scope   string `json:"scope"`
	Removed int64  `json:"removed"`
}

// SubmitJobRequest describes an asynchronous cut job submission.
type SubmitJobRequest struct {
	SourcePath  string `json:"sourcePath"`
	CutlistPath string `json:"cutlistPath"`
	OutputDir   string `json:"outputDir"`
}

// QueueHealth mirrors aggregate queue counts for health reporting.
type QueueHealth struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
}

// DatabaseHealth carries queue database diagnostics.
type DatabaseHealth struct {
	Path           string   `json:"path"`
	Exists         bool     `json:"exists"`
	Readable       bool     `json:"readable"`
	SchemaVersion  string   `json:"schemaVersion,omitempty"`
	TableExists    bool     `json:"tableExists"`
	MissingColumns []string `json:"missingColumns,omitempty"`
	IntegrityOK    bool     `json:"integrityOk"`
	TotalJobs      int      `json:"totalJobs"`
	Error          string   `json:"error,omitempty"`
}

// HealthResponse combines queue and database health for API consumers.
type HealthResponse struct {
	Queue    QueueHealth    `json:"queue"`
	Database DatabaseHealth `json:"database"`
}

// TestNotificationResponse reports the outcome of a notification test.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the normalized error payload for API consumers.
type ErrorResponse struct {
	Error string `json:"error"`
}
