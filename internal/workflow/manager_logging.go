package workflow

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"cleaver/internal/logging"
	"cleaver/internal/queue"
	"cleaver/internal/services"
)

func (m *Manager) managerLogger() *slog.Logger {
	return logging.NewComponentLogger(m.logger, "workflow-manager")
}

func (m *Manager) stageLogger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = m.managerLogger()
	}
	return logging.WithContext(ctx, base)
}

func withStageContext(ctx context.Context, stageName string, job *queue.Job, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if job != nil {
		ctx = services.WithJobID(ctx, job.ID)
	}
	if stageName != "" {
		ctx = services.WithStage(ctx, stageName)
	}
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}

func deriveStageLabel(status queue.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
