package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ProgressUpdate captures ffmpeg encode progress for a single cut.
type ProgressUpdate struct {
	// Percent of the segment rendered, 0-100. Unknown durations report 0
	// until the run ends.
	Percent float64
	// OutTime is the media time encoded so far.
	OutTime time.Duration
	// Speed is the encode speed multiplier reported by ffmpeg (1.0 = realtime).
	Speed float64
}

// CutRequest describes one ffmpeg extraction.
type CutRequest struct {
	InputPath  string
	OutputPath string
	// Start and End are passed to ffmpeg verbatim.
	Start string
	End   string
	// Duration is the expected segment length, used to map progress onto a
	// percentage. Zero means unknown.
	Duration time.Duration
}

// Cutter defines the behaviour required by the cut stage handler.
type Cutter interface {
	Cut(ctx context.Context, req CutRequest, progress func(ProgressUpdate)) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Settings carries the encoder arguments applied to every cut.
type Settings struct {
	VideoCodec string
	Preset     string
	AudioCodec string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary     string
	settings   Settings
	cutTimeout time.Duration
	exec       Executor
}

// New constructs an ffmpeg client. Empty settings fields fall back to the
// stock libx264/medium/aac encode.
func New(binary string, settings Settings, cutTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if settings.VideoCodec = strings.TrimSpace(settings.VideoCodec); settings.VideoCodec == "" {
		settings.VideoCodec = "libx264"
	}
	if settings.Preset = strings.TrimSpace(settings.Preset); settings.Preset == "" {
		settings.Preset = "medium"
	}
	if settings.AudioCodec = strings.TrimSpace(settings.AudioCodec); settings.AudioCodec == "" {
		settings.AudioCodec = "aac"
	}
	client := &Client{
		binary:     binary,
		settings:   settings,
		cutTimeout: time.Duration(cutTimeoutSeconds) * time.Second,
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Cut executes ffmpeg for a single segment extraction.
func (c *Client) Cut(ctx context.Context, req CutRequest, progress func(ProgressUpdate)) error {
	if strings.TrimSpace(req.InputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}
	if strings.TrimSpace(req.Start) == "" || strings.TrimSpace(req.End) == "" {
		return errors.New("start and end timecodes required")
	}

	cutCtx := ctx
	if c.cutTimeout > 0 {
		var cancel context.CancelFunc
		cutCtx, cancel = context.WithTimeout(ctx, c.cutTimeout)
		defer cancel()
	}

	args := c.buildArgs(req)
	parser := newProgressParser(req.Duration)
	tail := newLineTail(8)

	err := c.exec.Run(cutCtx, c.binary, args, func(line string) {
		consumed := parser.Line(line, func(update ProgressUpdate) {
			if progress != nil {
				progress(update)
			}
		})
		if !consumed {
			tail.Add(line)
		}
	})
	if err != nil {
		if cutCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("ffmpeg cut timed out after %s: %w", c.cutTimeout, err)
		}
		if detail := tail.String(); detail != "" {
			return fmt.Errorf("ffmpeg cut: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg cut: %w", err)
	}
	return nil
}

// buildArgs preserves the -i / -ss / -to ordering: seeking happens on the
// decoded output, which is slower but frame-accurate at segment boundaries.
func (c *Client) buildArgs(req CutRequest) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-i", req.InputPath,
		"-ss", req.Start,
		"-to", req.End,
		"-c:v", c.settings.VideoCodec,
		"-preset", c.settings.Preset,
		"-c:a", c.settings.AudioCodec,
		"-progress", "pipe:1",
		"-nostats",
		"-y",
		req.OutputPath,
	}
}

// lineTail retains the most recent non-progress output lines for error detail.
type lineTail struct {
	limit int
	lines []string
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if len(t.lines) == t.limit {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.limit-1]
	}
	t.lines = append(t.lines, line)
}

func (t *lineTail) String() string {
	return strings.Join(t.lines, "; ")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onLine != nil {
			onLine(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, forward)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
