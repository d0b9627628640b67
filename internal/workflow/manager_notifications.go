package workflow

import (
	"context"
	"errors"
	"strconv"

	"cleaver/internal/logging"
	"cleaver/internal/notifications"
	"cleaver/internal/queue"
)

// notifyJobFinished publishes the terminal outcome of a job. The notifier
// decides per-event whether anything actually goes out.
func (m *Manager) notifyJobFinished(ctx context.Context, job *queue.Job) {
	if m.notifier == nil || job == nil {
		return
	}
	logger := logging.WithContext(ctx, m.managerLogger())

	results := job.Results()
	payload := notifications.Payload{
		"title":     job.Title,
		"succeeded": strconv.Itoa(queue.CountSucceeded(results)),
		"total":     strconv.Itoa(job.TotalCuts),
	}
	event := notifications.EventJobCompleted
	if job.Status == queue.StatusFailed {
		event = notifications.EventJobFailed
		payload["error"] = job.ErrorMessage
	}

	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send job notification")
		} else {
			logger.Debug("job notification failed", logging.Error(err))
		}
	}
}
