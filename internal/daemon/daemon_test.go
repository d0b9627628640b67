package daemon_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cleaver/internal/config"
	"cleaver/internal/daemon"
	"cleaver/internal/logging"
	"cleaver/internal/queue"
	"cleaver/internal/services"
	"cleaver/internal/stage"
	"cleaver/internal/testsupport"
	"cleaver/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Job) error { return nil }
func (noopStage) Execute(context.Context, *queue.Job) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health  { return stage.Healthy("cutter") }

func newTestDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureCutter(noopStage{})
	d, err := daemon.New(cfg, store, logger, mgr, noopStage{}, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.SharedRoot != cfg.Paths.SharedDir {
		t.Fatalf("unexpected shared root: %q", status.SharedRoot)
	}
	if status.LockFilePath == "" {
		t.Fatal("expected lock file path in status")
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency statuses")
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newTestDaemon(t, cfg)
	second := newTestDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected second instance to be rejected by the lock")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("expected lock to be free after Stop: %v", err)
	}
	second.Stop()
}

func TestDaemonSubmitJobConfinesPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg)
	ctx := context.Background()

	if _, err := d.SubmitJob(ctx, "../outside.mkv", "cuts.txt", "clips"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for escaping path, got %v", err)
	}
	if _, err := d.SubmitJob(ctx, "movie.mkv", "", "clips"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty cutlist, got %v", err)
	}

	job, err := d.SubmitJob(ctx, "movie.mkv", "cuts.txt", "clips")
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("expected pending job, got %s", job.Status)
	}
	if job.OutputDir != "clips" {
		t.Fatalf("unexpected output dir: %q", job.OutputDir)
	}
}

func TestDaemonTestNotification(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg)
	ctx := context.Background()

	sent, message, err := d.TestNotification(ctx)
	if err != nil || sent {
		t.Fatalf("expected quiet refusal without a topic, got sent=%v err=%v", sent, err)
	}
	if message != "ntfy topic not configured" {
		t.Fatalf("unexpected message: %q", message)
	}

	cfg.Notifications.NtfyTopic = server.URL
	sent, message, err = d.TestNotification(ctx)
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if !sent || hits != 1 {
		t.Fatalf("expected one delivered notification, got sent=%v hits=%d", sent, hits)
	}
	if message != "test notification sent" {
		t.Fatalf("unexpected message: %q", message)
	}
}
