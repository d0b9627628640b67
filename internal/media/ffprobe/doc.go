// Package ffprobe wraps ffprobe JSON inspection of media containers.
//
// Cleaver probes the input before cutting (to snapshot media info and bound
// cut ranges against the container duration) and probes each produced
// segment when output validation is enabled.
package ffprobe
