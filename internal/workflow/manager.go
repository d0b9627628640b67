package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cleaver/internal/config"
	"cleaver/internal/notifications"
	"cleaver/internal/queue"
	"cleaver/internal/stage"
)

// cutterStageName keys the cutter handler in logs and status summaries.
const cutterStageName = "cutter"

// loggerAware is implemented by stage handlers that accept a replacement
// logger scoped to the job being processed.
type loggerAware interface {
	SetLogger(*slog.Logger)
}

// Manager coordinates queue processing using the registered cutter handler.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service

	heartbeat *HeartbeatMonitor

	mu      sync.RWMutex
	cutter  stage.Handler
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// NewManager constructs a workflow manager with the notifier derived from config.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureCutter registers the stage handler that executes cut jobs.
func (m *Manager) ConfigureCutter(handler stage.Handler) {
	m.mu.Lock()
	m.cutter = handler
	m.mu.Unlock()
}
