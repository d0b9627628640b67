package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"cleaver/internal/api"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []api.DependencyStatus{
		{Name: "FFmpeg", Available: true, Command: "ffmpeg"},
		{Name: "FFprobe", Available: false, Detail: `binary "ffprobe" not found`},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] Ready (command: ffmpeg)") {
		t.Fatalf("expected ready detail first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR]") || !strings.Contains(lines[1], "ffprobe") {
		t.Fatalf("expected error detail second, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "Missing") || !strings.Contains(lines[2], "FFprobe") {
		t.Fatalf("expected missing summary last, got %q", lines[2])
	}
}

func TestWorkflowLines(t *testing.T) {
	wf := api.WorkflowStatus{
		Running:   true,
		LastError: "cut failed",
		StageHealth: []api.StageHealth{
			{Name: "cutter", Ready: true},
		},
	}
	lines := workflowLines(wf, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] Running") {
		t.Fatalf("expected running line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "Cutter") || !strings.Contains(lines[1], "[OK] Ready") {
		t.Fatalf("expected stage health line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[ERROR] cut failed") {
		t.Fatalf("expected last error line, got %q", lines[2])
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Queue", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== Queue ==" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected rule %q", lines[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
