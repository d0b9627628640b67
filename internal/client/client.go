// Package client is the HTTP client the cleaver CLI uses to talk to a
// running daemon. It wraps both the /api management surface and the legacy
// /cut and /shared endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cleaver/internal/api"
)

// ErrDaemonUnavailable wraps transport failures so callers can suggest
// checking that the daemon is running.
var ErrDaemonUnavailable = errors.New("cleaver daemon unavailable")

// APIError carries the status code and error body of a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("daemon returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to one daemon instance.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// New builds a client for the given server address. A bare host:port gets an
// http scheme; any path, query, or fragment on the address is discarded.
func New(server, token string) (*Client, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, errors.New("server address is required")
	}
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	base, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: strings.TrimSpace(token),
		// No timeout: /cut blocks until ffmpeg finishes. Callers bound
		// individual requests through the context.
		http: &http.Client{},
	}, nil
}

// Server returns the normalized base address the client talks to.
func (c *Client) Server() string {
	return c.base.String()
}

// Status fetches the daemon snapshot.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var out api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &out)
	return out, err
}

// Jobs lists queue jobs, optionally filtered by status.
func (c *Client) Jobs(ctx context.Context, statuses ...string) ([]api.Job, error) {
	values := url.Values{}
	for _, status := range statuses {
		if trimmed := strings.TrimSpace(status); trimmed != "" {
			values.Add("status", trimmed)
		}
	}
	var out api.JobListResponse
	if err := c.do(ctx, http.MethodGet, "/api/jobs", values, nil, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

// Job fetches a single job. A missing job surfaces as an APIError with
// status 404.
func (c *Client) Job(ctx context.Context, id int64) (api.Job, error) {
	var out api.JobResponse
	err := c.do(ctx, http.MethodGet, "/api/jobs/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out.Job, err
}

// Submit enqueues an asynchronous cut job.
func (c *Client) Submit(ctx context.Context, req api.SubmitJobRequest) (api.Job, error) {
	var out api.JobResponse
	err := c.do(ctx, http.MethodPost, "/api/jobs", nil, req, &out)
	return out.Job, err
}

// Retry resets a failed job to pending and reports the outcome.
func (c *Client) Retry(ctx context.Context, id int64) (api.RetryJobsResult, error) {
	var out api.RetryJobsResult
	err := c.do(ctx, http.MethodPost, "/api/jobs/"+strconv.FormatInt(id, 10)+"/retry", nil, nil, &out)
	return out, err
}

// Remove deletes a job from the queue.
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/jobs/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Clear removes jobs matching scope: "all", "completed", or "failed".
func (c *Client) Clear(ctx context.Context, scope string) (api.QueueClearResponse, error) {
	values := url.Values{}
	if trimmed := strings.TrimSpace(scope); trimmed != "" {
		values.Set("scope", trimmed)
	}
	var out api.QueueClearResponse
	err := c.do(ctx, http.MethodPost, "/api/jobs/clear", values, nil, &out)
	return out, err
}

// Health fetches queue and database health.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out)
	return out, err
}

// TestNotification asks the daemon to send a test push notification.
func (c *Client) TestNotification(ctx context.Context) (api.TestNotificationResponse, error) {
	var out api.TestNotificationResponse
	err := c.do(ctx, http.MethodPost, "/api/notifications/test", nil, nil, &out)
	return out, err
}

// Cut runs a synchronous cut batch and blocks until it finishes.
func (c *Client) Cut(ctx context.Context, req api.CutRequest) (api.CutResponse, error) {
	var out api.CutResponse
	err := c.do(ctx, http.MethodPost, "/cut", nil, req, &out)
	return out, err
}

// Shared lists the top level of the daemon's shared folder.
func (c *Client) Shared(ctx context.Context) (api.SharedListing, error) {
	var out api.SharedListing
	err := c.do(ctx, http.MethodGet, "/shared", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload api.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
