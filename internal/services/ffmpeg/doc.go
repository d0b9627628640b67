// Package ffmpeg wraps ffmpeg CLI invocations for cut extraction.
//
// The client runs one ffmpeg process per cut, streaming -progress output into
// percent-of-segment updates. Command execution sits behind the Executor
// interface so tests can script tool behaviour without a real binary.
package ffmpeg
