package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cleaver/internal/logging"
	"cleaver/internal/queue"
	"cleaver/internal/stage"
)

func (m *Manager) processJob(ctx context.Context, logger *slog.Logger, job *queue.Job) error {
	m.mu.RLock()
	handler := m.cutter
	m.mu.RUnlock()
	if handler == nil {
		logger.Warn("cutter handler not configured; leaving job queued", logging.Int64(logging.FieldJobID, job.ID))
		m.waitForJobOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, cutterStageName, job, requestID)
	stageLogger := m.stageLogger(stageCtx, logger)
	if aware, ok := handler.(loggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	if err := m.transitionToCutting(stageCtx, job); err != nil {
		stageLogger.Error("failed to transition job to cutting", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, handler, job)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, handler stage.Handler, job *queue.Job) error {
	stageStart := time.Now()
	stageLogger.Info("cut job started",
		logging.String("title", strings.TrimSpace(job.Title)),
		logging.String("source_file", strings.TrimSpace(job.SourcePath)),
		logging.String("cutlist_file", strings.TrimSpace(job.CutlistPath)),
	)

	if err := handler.Prepare(ctx, job); err != nil {
		m.handleStageFailure(ctx, job, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, handler, job)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			// Leave the job in cutting with its heartbeat; the next boot
			// returns it to pending for another attempt.
			stageLogger.Debug("cut interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, job, execErr)
		m.setLastError(execErr)
		return execErr
	}

	m.finalizeJob(job)
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info("cut job finished",
		logging.String("status", string(job.Status)),
		logging.String("progress_message", strings.TrimSpace(job.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastJob(job)
	m.notifyJobFinished(ctx, job)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, job *queue.Job) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)

	execErr := handler.Execute(ctx, job)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToCutting(ctx context.Context, job *queue.Job) error {
	now := time.Now().UTC()
	job.Status = queue.StatusCutting
	if job.ProgressStage == "" {
		job.ProgressStage = deriveStageLabel(queue.StatusCutting)
	}
	if job.ProgressMessage == "" {
		job.ProgressMessage = fmt.Sprintf("%s started", deriveStageLabel(queue.StatusCutting))
	}
	job.ProgressPercent = 0
	job.ErrorMessage = ""
	job.LastHeartbeat = &now
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist cutting transition: %w", err)
	}
	m.setLastJob(job)
	return nil
}

// finalizeJob derives the terminal status from the recorded per-cut outcomes
// and normalizes progress for display. A job fails only when every attempted
// cut failed; partial success and empty cutlists both complete.
func (m *Manager) finalizeJob(job *queue.Job) {
	results := job.Results()
	job.Status = queue.BatchStatus(results)
	if job.Status == queue.StatusFailed {
		job.SetFailed(fmt.Sprintf("All %d cuts failed", len(results)))
		return
	}
	job.LastHeartbeat = nil
	if job.ProgressPercent < 100 {
		job.ProgressPercent = 100
	}
	if strings.TrimSpace(job.ProgressStage) == "" {
		job.ProgressStage = deriveStageLabel(queue.StatusCompleted)
	}
	if strings.TrimSpace(job.ProgressMessage) == "" {
		job.ProgressMessage = deriveStageLabel(queue.StatusCompleted)
	}
}
