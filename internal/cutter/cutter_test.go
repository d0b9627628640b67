package cutter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cleaver/internal/config"
	"cleaver/internal/cutter"
	"cleaver/internal/logging"
	"cleaver/internal/media/ffprobe"
	"cleaver/internal/queue"
	"cleaver/internal/services"
	ffmpegsvc "cleaver/internal/services/ffmpeg"
	"cleaver/internal/testsupport"
)

func stubCutProbe(t *testing.T) {
	t.Helper()
	restore := cutter.SetProbeForTests(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{
				{CodecType: "video"},
				{CodecType: "audio"},
			},
			Format: ffprobe.Format{
				Duration:   "120",
				Size:       "15000000",
				FormatName: "matroska,webm",
			},
		}, nil
	})
	t.Cleanup(restore)
}

type stubCutClient struct {
	requests     []ffmpegsvc.CutRequest
	failFor      map[string]error
	writeOutputs bool
	// outputSize < 0 leaves produced files empty; 0 means a small default.
	outputSize int
}

func (s *stubCutClient) Cut(ctx context.Context, req ffmpegsvc.CutRequest, progress func(ffmpegsvc.ProgressUpdate)) error {
	s.requests = append(s.requests, req)
	if progress != nil {
		progress(ffmpegsvc.ProgressUpdate{Percent: 50, OutTime: req.Duration / 2, Speed: 2})
		progress(ffmpegsvc.ProgressUpdate{Percent: 100, OutTime: req.Duration, Speed: 2})
	}
	if err := s.failFor[filepath.Base(req.OutputPath)]; err != nil {
		return err
	}
	if s.writeOutputs {
		size := s.outputSize
		switch {
		case size < 0:
			size = 0
		case size == 0:
			size = 64
		}
		payload := make([]byte, size)
		if err := os.WriteFile(req.OutputPath, payload, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func seedJob(t *testing.T, cfg *config.Config, store *queue.Store, cutlistLines ...string) *queue.Job {
	t.Helper()
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SharedDir, "demo_input.mkv"), 2048)
	testsupport.WriteCutlist(t, filepath.Join(cfg.Paths.SharedDir, "cuts.txt"), cutlistLines...)
	return testsupport.NewJob(t, store, "demo_input.mkv", "cuts.txt", "clips")
}

func newCutter(t *testing.T, cfg *config.Config, store *queue.Store, client ffmpegsvc.Cutter) *cutter.Cutter {
	t.Helper()
	handler, err := cutter.NewCutterWithDependencies(cfg, store, logging.NewNop(), client)
	if err != nil {
		t.Fatalf("NewCutterWithDependencies: %v", err)
	}
	return handler
}

func TestCutterExecutesCutlist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stubCutProbe(t)

	job := seedJob(t, cfg, store,
		"# demo cutlist",
		"00:00:01 00:00:05 intro",
		"00:01:00 00:01:30 middle",
	)
	client := &stubCutClient{writeOutputs: true}
	handler := newCutter(t, cfg, store, client)

	ctx := context.Background()
	if err := handler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if job.Title != "Demo Input" {
		t.Fatalf("unexpected title %q", job.Title)
	}
	if job.TotalCuts != 2 {
		t.Fatalf("expected 2 planned cuts, got %d", job.TotalCuts)
	}
	info := job.MediaInfo()
	if info == nil || info.DurationSeconds != 120 || info.VideoStreams != 1 {
		t.Fatalf("unexpected media info: %#v", info)
	}

	if err := handler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(client.requests) != 2 {
		t.Fatalf("expected 2 ffmpeg invocations, got %d", len(client.requests))
	}
	first := client.requests[0]
	wantInput := filepath.Join(cfg.Paths.SharedDir, "demo_input.mkv")
	wantOutput := filepath.Join(cfg.Paths.SharedDir, "clips", "intro.mp4")
	if first.InputPath != wantInput || first.OutputPath != wantOutput {
		t.Fatalf("unexpected request paths: %#v", first)
	}
	if first.Start != "00:00:01" || first.End != "00:00:05" || first.Duration != 4*time.Second {
		t.Fatalf("unexpected request range: %#v", first)
	}

	results := job.Results()
	if len(results) != 2 || !results[0].Success || !results[1].Success {
		t.Fatalf("unexpected results: %#v", results)
	}
	if results[0].OutputFile != wantOutput {
		t.Fatalf("unexpected output file %q", results[0].OutputFile)
	}
	if queue.BatchStatus(results) != queue.StatusCompleted {
		t.Fatal("expected batch to complete")
	}
	if job.ProgressPercent != 100 || !strings.Contains(job.ProgressMessage, "2 of 2 succeeded") {
		t.Fatalf("unexpected final progress: %q at %.0f%%", job.ProgressMessage, job.ProgressPercent)
	}

	persisted, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(persisted.Results()) != 2 {
		t.Fatalf("expected persisted results, got %q", persisted.ResultsJSON)
	}
}

func TestCutterIsolatesSegmentFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stubCutProbe(t)

	job := seedJob(t, cfg, store,
		"00:00:01 00:00:05 good",
		"00:00:10 00:00:20 broken",
	)
	client := &stubCutClient{
		writeOutputs: true,
		failFor:      map[string]error{"broken.mp4": errors.New("ffmpeg exit status 1")},
	}
	handler := newCutter(t, cfg, store, client)

	ctx := context.Background()
	if err := handler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute should isolate per-segment failures: %v", err)
	}

	results := job.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Success || results[1].Success {
		t.Fatalf("unexpected outcome split: %#v", results)
	}
	if !strings.Contains(results[1].Error, "exit status 1") {
		t.Fatalf("expected failure detail, got %q", results[1].Error)
	}
	if queue.BatchStatus(results) != queue.StatusCompleted {
		t.Fatal("partial success should complete the batch")
	}
}

func TestCutterAllFailuresFailTheBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stubCutProbe(t)

	job := seedJob(t, cfg, store,
		"00:00:01 00:00:05 one",
		"00:00:10 00:00:20 two",
	)
	client := &stubCutClient{failFor: map[string]error{
		"one.mp4": errors.New("boom"),
		"two.mp4": errors.New("boom"),
	}}
	handler := newCutter(t, cfg, store, client)

	ctx := context.Background()
	if err := handler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if queue.BatchStatus(job.Results()) != queue.StatusFailed {
		t.Fatal("expected batch with zero successes to fail")
	}
}

func TestCutterRangeHandling(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stubCutProbe(t)

	job := seedJob(t, cfg, store,
		"00:02:00 00:01:00 inverted",
		"00:03:00 00:04:00 late",
		"00:01:00 00:03:00 overrun",
		"00:00:00 00:00:30 head",
	)
	client := &stubCutClient{writeOutputs: true}
	handler := newCutter(t, cfg, store, client)

	ctx := context.Background()
	if err := handler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	results := job.Results()
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Success || !strings.Contains(results[0].Error, "not before") {
		t.Fatalf("inverted range should fail during validation: %#v", results[0])
	}
	if results[1].Success || !strings.Contains(results[1].Error, "past the end") {
		t.Fatalf("late start should fail during validation: %#v", results[1])
	}
	if !results[2].Success || !results[3].Success {
		t.Fatalf("valid cuts should run: %#v", results[2:])
	}

	// Only the two valid cuts reach ffmpeg; the overrun is clamped to the
	// probed input duration.
	if len(client.requests) != 2 {
		t.Fatalf("expected 2 ffmpeg invocations, got %d", len(client.requests))
	}
	if client.requests[0].Duration != 60*time.Second {
		t.Fatalf("expected clamped duration 60s, got %s", client.requests[0].Duration)
	}
	if client.requests[1].Duration != 30*time.Second {
		t.Fatalf("expected duration 30s, got %s", client.requests[1].Duration)
	}
}

func TestCutterPrepareClassifiesMissingPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stubCutProbe(t)
	handler := newCutter(t, cfg, store, &stubCutClient{})
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "missing.mkv", "cuts.txt", "clips")
	err := handler.Prepare(ctx, job)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for missing input, got %v", err)
	}

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SharedDir, "present.mkv"), 1024)
	job = testsupport.NewJob(t, store, "present.mkv", "missing-cuts.txt", "clips")
	err = handler.Prepare(ctx, job)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for missing cutlist, got %v", err)
	}

	job = testsupport.NewJob(t, store, "../escape.mkv", "cuts.txt", "clips")
	err = handler.Prepare(ctx, job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for escaping path, got %v", err)
	}
}

func TestCutterPrepareSurvivesProbeFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	restore := cutter.SetProbeForTests(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("ffprobe unavailable")
	})
	t.Cleanup(restore)

	job := seedJob(t, cfg, store, "00:00:01 00:00:05 intro")
	handler := newCutter(t, cfg, store, &stubCutClient{writeOutputs: true})

	ctx := context.Background()
	if err := handler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare should tolerate probe failures: %v", err)
	}
	if job.MediaInfo() != nil {
		t.Fatalf("expected no media info, got %q", job.MediaInfoJSON)
	}
	if err := handler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results := job.Results(); len(results) != 1 || !results[0].Success {
		t.Fatalf("unexpected results without probe data: %#v", results)
	}
}

func TestCutterEmptyCutlistCompletes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stubCutProbe(t)

	job := seedJob(t, cfg, store,
		"# only commentary",
		"",
		"not a cut line",
	)
	client := &stubCutClient{}
	handler := newCutter(t, cfg, store, client)

	ctx := context.Background()
	if err := handler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(client.requests) != 0 {
		t.Fatalf("expected no ffmpeg invocations, got %d", len(client.requests))
	}
	if results := job.Results(); results != nil {
		t.Fatalf("expected empty results, got %#v", results)
	}
	if job.ProgressPercent != 100 {
		t.Fatalf("expected completion progress, got %.0f", job.ProgressPercent)
	}
	if queue.BatchStatus(job.Results()) != queue.StatusCompleted {
		t.Fatal("empty batch should complete")
	}
}

func TestCutterValidateOutputsGate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.FFmpeg.ValidateOutputs = true
	store := testsupport.MustOpenStore(t, cfg)
	stubCutProbe(t)

	job := seedJob(t, cfg, store, "00:00:01 00:00:05 intro")
	// ffmpeg "succeeds" but leaves an empty file behind.
	client := &stubCutClient{writeOutputs: true, outputSize: -1}
	handler := newCutter(t, cfg, store, client)

	ctx := context.Background()
	if err := handler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	results := job.Results()
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected validation to fail the segment: %#v", results)
	}
	if !strings.Contains(results[0].Error, "empty") {
		t.Fatalf("expected empty-output detail, got %q", results[0].Error)
	}
}

func TestCutterHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenStore(t, cfg)
	handler := newCutter(t, cfg, store, &stubCutClient{})

	health := handler.HealthCheck(context.Background())
	if !health.Ready {
		t.Fatalf("expected ready health, got %+v", health)
	}

	cfg.FFmpeg.Binary = "no-such-ffmpeg-binary"
	health = handler.HealthCheck(context.Background())
	if health.Ready {
		t.Fatalf("expected unhealthy when ffmpeg is missing, got %+v", health)
	}
	if !strings.Contains(health.Detail, "not found") {
		t.Fatalf("expected missing-binary detail, got %q", health.Detail)
	}
}
