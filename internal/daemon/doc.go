// Package daemon hosts the long-running cleaver process. It owns the queue
// store, the workflow manager, and the HTTP server that exposes both the
// legacy cutting endpoints (/cut, /shared) and the management API under
// /api/ used by the CLI.
//
// A file lock under the log directory guarantees a single daemon per
// machine. Startup repairs jobs that were left mid-cut by a previous run
// before the workflow loop begins, so the queue never presents phantom
// progress.
package daemon
