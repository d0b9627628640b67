// Package config loads, normalizes, and validates Cleaver configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLEAVER_API_TOKEN. The Config type centralizes every knob the daemon and CLI
// need, allowing the shared workspace, ffmpeg settings, and API bind address to
// be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
