package ffmpeg_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cleaver/internal/services/ffmpeg"
)

type stubExecutor struct {
	lines []string
	err   error
	calls int
	args  [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	s.calls++
	cloned := append([]string(nil), args...)
	s.args = append(s.args, cloned)
	for _, line := range s.lines {
		onLine(line)
	}
	return s.err
}

func TestCutBuildsExpectedArguments(t *testing.T) {
	exec := &stubExecutor{}
	client, err := ffmpeg.New("ffmpeg", ffmpeg.Settings{}, 5, ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	req := ffmpeg.CutRequest{
		InputPath:  "/shared/input.mkv",
		OutputPath: "/shared/cuts/opening.mp4",
		Start:      "00:00:10",
		End:        "00:01:00",
	}
	if err := client.Cut(context.Background(), req, nil); err != nil {
		t.Fatalf("Cut returned error: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("expected 1 invocation, got %d", exec.calls)
	}

	want := []string{
		"-hide_banner",
		"-nostdin",
		"-i", "/shared/input.mkv",
		"-ss", "00:00:10",
		"-to", "00:01:00",
		"-c:v", "libx264",
		"-preset", "medium",
		"-c:a", "aac",
		"-progress", "pipe:1",
		"-nostats",
		"-y",
		"/shared/cuts/opening.mp4",
	}
	if !equalStrings(exec.args[0], want) {
		t.Fatalf("unexpected ffmpeg args:\n got %v\nwant %v", exec.args[0], want)
	}
}

func TestCutHonoursCustomSettings(t *testing.T) {
	exec := &stubExecutor{}
	settings := ffmpeg.Settings{VideoCodec: "libx265", Preset: "veryfast", AudioCodec: "libopus"}
	client, err := ffmpeg.New("ffmpeg", settings, 5, ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	req := ffmpeg.CutRequest{InputPath: "in.mkv", OutputPath: "out.mp4", Start: "0:01", End: "0:02"}
	if err := client.Cut(context.Background(), req, nil); err != nil {
		t.Fatalf("Cut returned error: %v", err)
	}
	joined := strings.Join(exec.args[0], " ")
	for _, fragment := range []string{"-c:v libx265", "-preset veryfast", "-c:a libopus"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in args %v", fragment, exec.args[0])
		}
	}
}

func TestCutMapsProgressOntoSegmentPercent(t *testing.T) {
	exec := &stubExecutor{lines: []string{
		"frame=100",
		"out_time_us=5000000",
		"speed=2.5x",
		"progress=continue",
		"out_time_us=10000000",
		"speed=2.4x",
		"progress=end",
	}}
	client, err := ffmpeg.New("ffmpeg", ffmpeg.Settings{}, 5, ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var updates []ffmpeg.ProgressUpdate
	req := ffmpeg.CutRequest{
		InputPath:  "in.mkv",
		OutputPath: "out.mp4",
		Start:      "00:00:00",
		End:        "00:00:10",
		Duration:   10 * time.Second,
	}
	if err := client.Cut(context.Background(), req, func(u ffmpeg.ProgressUpdate) {
		updates = append(updates, u)
	}); err != nil {
		t.Fatalf("Cut returned error: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d: %+v", len(updates), updates)
	}
	if updates[0].Percent != 50 {
		t.Fatalf("expected 50%% at halfway, got %.1f", updates[0].Percent)
	}
	if updates[0].Speed != 2.5 {
		t.Fatalf("expected speed 2.5, got %.2f", updates[0].Speed)
	}
	if updates[0].OutTime != 5*time.Second {
		t.Fatalf("unexpected out time: %s", updates[0].OutTime)
	}
	if updates[1].Percent != 100 {
		t.Fatalf("expected 100%% at end, got %.1f", updates[1].Percent)
	}
}

func TestCutIncludesLogTailInError(t *testing.T) {
	exec := &stubExecutor{
		lines: []string{
			"out_time_us=1000000",
			"progress=continue",
			"[matroska @ 0x55] Invalid data found when processing input",
		},
		err: errors.New("wait command: exit status 1"),
	}
	client, err := ffmpeg.New("ffmpeg", ffmpeg.Settings{}, 5, ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	req := ffmpeg.CutRequest{InputPath: "in.mkv", OutputPath: "out.mp4", Start: "0", End: "1"}
	cutErr := client.Cut(context.Background(), req, nil)
	if cutErr == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(cutErr.Error(), "Invalid data found") {
		t.Fatalf("expected log tail in error, got %v", cutErr)
	}
	if strings.Contains(cutErr.Error(), "out_time_us") {
		t.Fatalf("progress lines should not leak into error detail: %v", cutErr)
	}
}

func TestCutValidatesRequest(t *testing.T) {
	client, err := ffmpeg.New("ffmpeg", ffmpeg.Settings{}, 5, ffmpeg.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	cases := []ffmpeg.CutRequest{
		{OutputPath: "out.mp4", Start: "0", End: "1"},
		{InputPath: "in.mkv", Start: "0", End: "1"},
		{InputPath: "in.mkv", OutputPath: "out.mp4", End: "1"},
		{InputPath: "in.mkv", OutputPath: "out.mp4", Start: "0"},
	}
	for i, req := range cases {
		if err := client.Cut(context.Background(), req, nil); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ffmpeg.New("  ", ffmpeg.Settings{}, 5); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
