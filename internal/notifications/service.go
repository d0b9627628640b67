package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cleaver/internal/config"
)

const userAgent = "Cleaver-Go/0.1.0"

// Event identifies a job milestone worth telling the user about.
type Event string

const (
	EventJobQueued    Event = "job_queued"
	EventJobCompleted Event = "job_completed"
	EventJobFailed    Event = "job_failed"
	EventError        Event = "error"
	EventTest         Event = "test"
)

// Payload carries event-specific fields used to render the message.
type Payload map[string]string

func (p Payload) get(key, fallback string) string {
	if value, ok := p[key]; ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		jobComplete: cfg.Notifications.JobComplete,
		errors:      cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	jobComplete bool
	errors      bool
}

// Publish renders and sends the event. Suppressed or toggled-off events
// return nil without touching the network.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.compose(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) compose(event Event, payload Payload) (message, bool) {
	switch event {
	case EventJobCompleted:
		if !n.jobComplete {
			return message{}, false
		}
		title := payload.get("title", "job")
		succeeded := payload.get("succeeded", "0")
		total := payload.get("total", "0")
		return message{
			title: "Cleaver - Job Complete",
			body:  fmt.Sprintf("✂️ Cuts complete: %s (%s of %s cuts)", title, succeeded, total),
			tags:  []string{"cleaver", "job", "completed"},
		}, true
	case EventJobFailed:
		if !n.errors {
			return message{}, false
		}
		title := payload.get("title", "job")
		detail := payload.get("error", "unknown")
		return message{
			title:    "Cleaver - Job Failed",
			body:     fmt.Sprintf("❌ Job failed: %s: %s", title, detail),
			tags:     []string{"cleaver", "job", "failed"},
			priority: "high",
		}, true
	case EventError:
		if !n.errors {
			return message{}, false
		}
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if contextLabel := payload.get("context", ""); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		builder.WriteString(payload.get("error", "unknown"))
		return message{
			title:    "Cleaver - Error",
			body:     builder.String(),
			tags:     []string{"cleaver", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Cleaver - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"cleaver", "test"},
			priority: "low",
		}, true
	default:
		// Routine lifecycle events stay quiet.
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
