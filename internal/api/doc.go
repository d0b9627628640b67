// Package api defines wire-format types and converters for the daemon's HTTP
// API. It translates internal queue models into transport-friendly DTOs that
// the cleaver CLI and other consumers can render without coupling to internal
// types.
//
// # Key Types
//
// Job: transport representation of a queue entry with progress, cut results,
// and the probed media summary.
//
// WorkflowStatus: daemon running state, queue stats, stage health, and last job.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Converters
//
// FromJob: queue.Job -> Job with progress stage defaults and completed-state
// normalization.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// StageHealthSlice: deterministic ordering of the stage health map.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status) are exposed as
// lowercase strings. Timestamps use RFC3339 with milliseconds. Media info and
// cut results are passed through as json.RawMessage to avoid double-encoding;
// their inner keys stay snake_case so the same payload shape serves the
// legacy cut endpoint.
package api
