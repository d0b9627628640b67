package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"cleaver/internal/queue"
)

// DecodeResults decodes the raw per-cut outcomes carried on a job DTO.
// Malformed or empty payloads decode to nil.
func DecodeResults(raw json.RawMessage) []queue.CutResult {
	if len(raw) == 0 {
		return nil
	}
	var results []queue.CutResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil
	}
	return results
}

// MediaInfoSummary renders a one-line description of a probed input for
// human-facing output. Empty when no probe data is present.
func MediaInfoSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var info queue.MediaInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return ""
	}
	parts := make([]string, 0, 4)
	if info.DurationSeconds > 0 {
		duration := time.Duration(info.DurationSeconds * float64(time.Second)).Round(time.Second)
		parts = append(parts, duration.String())
	}
	if info.VideoStreams > 0 || info.AudioStreams > 0 {
		parts = append(parts, fmt.Sprintf("%d video / %d audio", info.VideoStreams, info.AudioStreams))
	}
	if format := strings.TrimSpace(info.FormatName); format != "" {
		parts = append(parts, format)
	}
	if info.SizeBytes > 0 {
		parts = append(parts, humanize.IBytes(uint64(info.SizeBytes)))
	}
	return strings.Join(parts, ", ")
}

// CutResultLine renders a single cut outcome for human-facing output.
func CutResultLine(result queue.CutResult) string {
	window := ""
	if result.Start != "" || result.End != "" {
		window = fmt.Sprintf(" [%s - %s]", result.Start, result.End)
	}
	if result.Success {
		return fmt.Sprintf("%s%s -> %s", result.Name, window, result.OutputFile)
	}
	detail := strings.TrimSpace(result.Error)
	if detail == "" {
		detail = "failed"
	}
	return fmt.Sprintf("%s%s failed: %s", result.Name, window, detail)
}
