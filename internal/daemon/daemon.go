package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"cleaver/internal/config"
	"cleaver/internal/deps"
	"cleaver/internal/logging"
	"cleaver/internal/notifications"
	"cleaver/internal/queue"
	"cleaver/internal/services"
	"cleaver/internal/stage"
	"cleaver/internal/workflow"
	"cleaver/internal/workspace"
)

const lockFileName = "cleaverd.lock"

// Daemon ties the queue store, workflow manager, and HTTP server together
// and guards the whole assembly with a single-instance file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	cutter   stage.Handler
	notifier notifications.Service
	ws       *workspace.Workspace

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	bootErr error
}

// Status is a point-in-time snapshot of the daemon and its workflow.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	QueueDBPath  string
	LockFilePath string
	SharedRoot   string
	Dependencies []deps.Status
}

// New assembles a daemon from its collaborators. The cutter handler is used
// for synchronous jobs on the legacy /cut endpoint; queued jobs run through
// the workflow manager. A nil notifier falls back to the configured service.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager, cutter stage.Handler, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil || cutter == nil {
		return nil, errors.New("daemon requires config, store, logger, workflow manager, and cutter")
	}
	ws, err := workspace.New(cfg.Paths.SharedDir)
	if err != nil {
		return nil, fmt.Errorf("shared folder: %w", err)
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, lockFileName)
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		cutter:   cutter,
		notifier: notifier,
		ws:       ws,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the instance lock, repairs jobs interrupted by a previous
// run, and brings up the workflow loop and HTTP server. A workflow failure
// is recorded but does not abort startup; the API still serves status so
// operators can see what went wrong.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another cleaver daemon already holds %s", d.lockPath)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if repaired, err := d.store.ResetStuckProcessing(d.ctx); err != nil {
		d.logger.Warn("failed to repair interrupted jobs", logging.Error(err))
	} else if repaired > 0 {
		d.logger.Info("repaired interrupted jobs", logging.Int64("jobs", repaired))
	}

	if err := d.workflow.Start(d.ctx); err != nil {
		d.setBootError(err)
		d.logger.Error("workflow start failed",
			logging.Error(err),
			logging.String(logging.FieldAlert, "workflow_start_failed"))
		d.publishError(d.ctx, "workflow start", err)
	} else {
		d.setBootError(nil)
	}

	if err := d.api.start(d.ctx); err != nil {
		d.workflow.Stop()
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(unlockErr))
		}
		d.cancel()
		d.ctx, d.cancel = nil, nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("cleaver daemon started",
		logging.String("lock_file", d.lockPath),
		logging.String("shared_folder", d.ws.Root()))
	return nil
}

// Stop shuts down the HTTP server and workflow loop and releases the lock.
// It is safe to call on a daemon that never started.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("cleaver daemon stopped")
}

// Close stops the daemon and closes the queue store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports the daemon snapshot used by /api/status. A workflow boot
// failure is folded into the summary when the manager has nothing newer.
func (d *Daemon) Status(ctx context.Context) Status {
	summary := d.workflow.Status(ctx)
	if summary.LastError == "" {
		if err := d.bootError(); err != nil {
			summary.LastError = err.Error()
		}
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     summary,
		QueueDBPath:  d.cfg.QueueDatabasePath(),
		LockFilePath: d.lockPath,
		SharedRoot:   d.ws.Root(),
		Dependencies: deps.CheckBinaries(deps.ForConfig(d.cfg)),
	}
}

// APIAddr reports the bound API listen address. Empty until Start succeeds,
// or when the API is disabled.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// SharedRoot returns the absolute shared folder path.
func (d *Daemon) SharedRoot() string {
	return d.ws.Root()
}

// SharedListing returns the shared folder root and its top-level entries.
func (d *Daemon) SharedListing() (string, []workspace.Entry, error) {
	entries, err := d.ws.List()
	return d.ws.Root(), entries, err
}

// SubmitJob enqueues an asynchronous cut job after confining its paths to
// the shared folder. File existence is deliberately not checked here; inputs
// may still be syncing when the job is submitted, and the cutter verifies
// them when the job is picked up.
func (d *Daemon) SubmitJob(ctx context.Context, sourcePath, cutlistPath, outputDir string) (*queue.Job, error) {
	source := strings.TrimSpace(sourcePath)
	cutlist := strings.TrimSpace(cutlistPath)
	output := strings.TrimSpace(outputDir)
	if source == "" || cutlist == "" || output == "" {
		return nil, services.Wrap(services.ErrValidation, "daemon", "submit job",
			"sourcePath, cutlistPath, and outputDir are required", nil)
	}
	for _, rel := range []string{source, cutlist, output} {
		if _, err := d.ws.Resolve(rel); err != nil {
			return nil, services.Wrap(services.ErrValidation, "daemon", "submit job",
				fmt.Sprintf("path %q is outside the shared folder", rel), err)
		}
	}

	job, err := d.store.NewJob(ctx, source, cutlist, output)
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	d.logger.Info("cut job queued",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("source_file", job.SourcePath))
	if err := d.notifier.Publish(ctx, notifications.EventJobQueued, notifications.Payload{
		"title": job.Title,
	}); err != nil {
		d.logger.Debug("queue notification failed", logging.Error(err))
	}
	return job, nil
}

// RunInlineCut executes a cut batch synchronously in the caller's context,
// mirroring the blocking behavior of the legacy /cut endpoint. The job is
// recorded before work begins so interrupted runs are visible in the queue
// and repaired at the next boot. A batch whose cuts all failed is returned
// without error; the per-cut results carry the outcome.
func (d *Daemon) RunInlineCut(ctx context.Context, inputFile, cutlistFile, outputFolder string) (*queue.Job, error) {
	job, err := d.store.NewInlineJob(ctx, inputFile, cutlistFile, outputFolder)
	if err != nil {
		return nil, fmt.Errorf("record inline job: %w", err)
	}
	logger := d.logger.With(logging.Int64(logging.FieldJobID, job.ID))
	logger.Info("inline cut started",
		logging.String("source_file", job.SourcePath),
		logging.String("cutlist_file", job.CutlistPath))

	if err := d.cutter.Prepare(ctx, job); err != nil {
		d.failInlineJob(ctx, logger, job, err)
		return job, err
	}
	if err := d.store.Update(ctx, job); err != nil {
		return job, fmt.Errorf("persist inline preparation: %w", err)
	}
	if err := d.cutter.Execute(ctx, job); err != nil {
		d.failInlineJob(ctx, logger, job, err)
		return job, err
	}

	results := job.Results()
	job.Status = queue.BatchStatus(results)
	if job.Status == queue.StatusFailed {
		job.SetFailed(fmt.Sprintf("All %d cuts failed", len(results)))
	}
	if err := d.store.Update(ctx, job); err != nil {
		return job, fmt.Errorf("persist inline result: %w", err)
	}
	logger.Info("inline cut finished",
		logging.String("status", string(job.Status)),
		logging.Int("succeeded", queue.CountSucceeded(results)),
		logging.Int("total", len(results)))
	d.notifyJobFinished(ctx, job)
	return job, nil
}

func (d *Daemon) failInlineJob(ctx context.Context, logger *slog.Logger, job *queue.Job, stageErr error) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = "inline cut failed"
	}
	job.SetFailed(message)
	if err := d.store.Update(ctx, job); err != nil {
		logger.Error("failed to persist inline cut failure", logging.Error(err))
	}
	logger.Error("inline cut failed", logging.Error(stageErr))
	d.notifyJobFinished(ctx, job)
}

func (d *Daemon) notifyJobFinished(ctx context.Context, job *queue.Job) {
	results := job.Results()
	payload := notifications.Payload{
		"title":     job.Title,
		"succeeded": strconv.Itoa(queue.CountSucceeded(results)),
		"total":     strconv.Itoa(len(results)),
	}
	event := notifications.EventJobCompleted
	if job.Status == queue.StatusFailed {
		event = notifications.EventJobFailed
		payload["error"] = job.ErrorMessage
	}
	if err := d.notifier.Publish(ctx, event, payload); err != nil {
		d.logger.Debug("job notification failed", logging.Error(err))
	}
}

func (d *Daemon) publishError(ctx context.Context, label string, cause error) {
	if err := d.notifier.Publish(ctx, notifications.EventError, notifications.Payload{
		"context": label,
		"error":   cause.Error(),
	}); err != nil {
		d.logger.Debug("error notification failed", logging.Error(err))
	}
}

func (d *Daemon) setBootError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bootErr = err
}

func (d *Daemon) bootError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bootErr
}

// ListJobs returns queue jobs, optionally filtered by status.
func (d *Daemon) ListJobs(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	return d.store.List(ctx, statuses...)
}

// RemoveJob deletes a job by identifier and reports whether it existed.
func (d *Daemon) RemoveJob(ctx context.Context, id int64) (bool, error) {
	removed, err := d.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		d.logger.Info("removed job", logging.Int64(logging.FieldJobID, id))
	}
	return removed, nil
}

// ClearJobs removes jobs matching scope: "completed", "failed", or "all".
func (d *Daemon) ClearJobs(ctx context.Context, scope string) (int64, error) {
	switch scope {
	case "completed":
		return d.store.ClearCompleted(ctx)
	case "failed":
		return d.store.ClearFailed(ctx)
	case "all", "":
		return d.store.Clear(ctx)
	default:
		return 0, services.Wrap(services.ErrValidation, "daemon", "clear jobs",
			fmt.Sprintf("unknown scope %q", scope), nil)
	}
}

// RetryJobs resets the given failed jobs to pending.
func (d *Daemon) RetryJobs(ctx context.Context, ids []int64) (int64, error) {
	updated, err := d.store.RetryFailed(ctx, ids...)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		d.logger.Info("retrying failed jobs", logging.Int64("jobs", updated))
	}
	return updated, nil
}

// TestNotification sends a test push using the current configuration. A
// missing ntfy topic reports sent=false without error.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// QueueHealth returns aggregate queue counts.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	return d.store.Health(ctx)
}

// DatabaseHealth inspects the queue database file and schema.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}
