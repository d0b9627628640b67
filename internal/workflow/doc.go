// Package workflow advances queued cut jobs through the cutter stage.
//
// The Manager polls the queue for pending jobs, reclaims stale work via
// heartbeats, and feeds jobs into the registered cutter handler while
// capturing progress and failure metadata. It also aggregates queue stats,
// calls the stage health check, and publishes job-level notifications when
// cuts complete or fail.
//
// Cutting runs on a single lane. ffmpeg already saturates the machine, so
// jobs are processed one at a time in submission order.
package workflow
