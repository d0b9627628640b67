// Package queue persists cut jobs in SQLite and exposes helpers for driving
// their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, stuck-job recovery, and status transitions
// that mirror the public workflow enum. Jobs capture progress, per-cut
// outcomes, and heartbeats so the daemon and CLI can coordinate without
// additional state.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
//
// Treat this package as the single source of truth for queue semantics; when
// you add new statuses or job fields, update schema.sql and bump
// schemaVersion.
package queue
