// Package cutter runs the cut stage for queue jobs.
//
// It resolves job paths inside the shared workspace, probes the input with
// ffprobe, and drives one ffmpeg invocation per cutlist line while persisting
// progress callbacks. Each cut succeeds or fails on its own; outcomes are
// recorded on the job as per-segment results and the batch outcome is derived
// from them after the loop.
//
// Keep additional cut logic here so the workflow manager and the synchronous
// /cut handler can assume a single source of truth for produced segments.
package cutter
