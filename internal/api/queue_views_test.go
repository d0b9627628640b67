package api

import (
	"encoding/json"
	"testing"

	"cleaver/internal/queue"
)

func TestSortJobsNewestFirst(t *testing.T) {
	jobs := []Job{
		{ID: 1, CreatedAt: "2024-03-10T12:00:00.000Z"},
		{ID: 3, CreatedAt: "2024-03-10T14:00:00.000Z"},
		{ID: 2, CreatedAt: "2024-03-10T14:00:00.000Z"},
	}

	sorted := SortJobsNewestFirst(jobs)
	if len(sorted) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(sorted))
	}
	if sorted[0].ID != 3 || sorted[1].ID != 2 || sorted[2].ID != 1 {
		t.Fatalf("unexpected ordering: %d, %d, %d", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if jobs[0].ID != 1 {
		t.Fatalf("expected input slice untouched, got leading id %d", jobs[0].ID)
	}
	if SortJobsNewestFirst(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestParseQueueTime(t *testing.T) {
	if !ParseQueueTime("").IsZero() {
		t.Fatalf("expected zero time for empty input")
	}
	if !ParseQueueTime("not-a-time").IsZero() {
		t.Fatalf("expected zero time for malformed input")
	}
	parsed := ParseQueueTime("2024-03-10T14:00:00.000Z")
	if parsed.IsZero() {
		t.Fatalf("expected parseable timestamp")
	}
}

func TestMediaInfoSummary(t *testing.T) {
	raw := json.RawMessage(`{"duration_seconds":125,"video_streams":1,"audio_streams":2,"format_name":"matroska","size_bytes":1048576}`)
	got := MediaInfoSummary(raw)
	want := "2m5s, 1 video / 2 audio, matroska, 1.0 MiB"
	if got != want {
		t.Fatalf("MediaInfoSummary = %q, want %q", got, want)
	}
	if MediaInfoSummary(nil) != "" {
		t.Fatalf("expected empty summary for missing payload")
	}
	if MediaInfoSummary(json.RawMessage(`{broken`)) != "" {
		t.Fatalf("expected empty summary for malformed payload")
	}
}

func TestDecodeResults(t *testing.T) {
	raw := json.RawMessage(`[{"name":"opening","output_file":"/out/opening.mkv","success":true}]`)
	results := DecodeResults(raw)
	if len(results) != 1 || results[0].Name != "opening" || !results[0].Success {
		t.Fatalf("unexpected results: %+v", results)
	}
	if DecodeResults(nil) != nil {
		t.Fatalf("expected nil for empty payload")
	}
	if DecodeResults(json.RawMessage(`{broken`)) != nil {
		t.Fatalf("expected nil for malformed payload")
	}
}

func TestCutResultLine(t *testing.T) {
	ok := queue.CutResult{Name: "opening", OutputFile: "/out/opening.mkv", Start: "00:00:10", End: "00:01:00", Success: true}
	if got := CutResultLine(ok); got != "opening [00:00:10 - 00:01:00] -> /out/opening.mkv" {
		t.Fatalf("CutResultLine success = %q", got)
	}
	bad := queue.CutResult{Name: "credits", Error: "start beyond end of input"}
	if got := CutResultLine(bad); got != "credits failed: start beyond end of input" {
		t.Fatalf("CutResultLine failure = %q", got)
	}
	if got := CutResultLine(queue.CutResult{Name: "mid"}); got != "mid failed: failed" {
		t.Fatalf("CutResultLine empty error = %q", got)
	}
}
