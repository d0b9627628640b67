package workflow

import (
	"context"
	"errors"
	"strings"

	"cleaver/internal/logging"
	"cleaver/internal/queue"
)

func (m *Manager) handleStageFailure(ctx context.Context, job *queue.Job, stageErr error) {
	logger := logging.WithContext(ctx, m.managerLogger())

	message := classifyStageFailure(stageErr)
	job.SetFailed(message)

	logger.Error("cut job failed",
		logging.String("error_message", message),
		logging.String(logging.FieldAlert, "stage_failure"),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastJob(job)
	m.notifyJobFinished(ctx, job)
}

func classifyStageFailure(stageErr error) string {
	if stageErr == nil {
		return "cutter failed without error detail"
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		return "cutter failed"
	}
	return message
}
