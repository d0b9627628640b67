package cutter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"cleaver/internal/config"
	"cleaver/internal/cutlist"
	"cleaver/internal/deps"
	"cleaver/internal/logging"
	"cleaver/internal/preflight"
	"cleaver/internal/queue"
	"cleaver/internal/services"
	ffmpegsvc "cleaver/internal/services/ffmpeg"
	"cleaver/internal/stage"
	"cleaver/internal/workspace"
)

// Cutter manages ffmpeg extraction of cutlist segments.
type Cutter struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client ffmpegsvc.Cutter
	ws     *workspace.Workspace
}

const progressPersistInterval = 2 * time.Second

// NewCutter constructs the cut stage handler.
func NewCutter(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Cutter, error) {
	client, err := ffmpegsvc.New(cfg.FFmpegBinary(), ffmpegsvc.Settings{
		VideoCodec: cfg.FFmpeg.VideoCodec,
		Preset:     cfg.FFmpeg.Preset,
		AudioCodec: cfg.FFmpeg.AudioCodec,
	}, cfg.FFmpeg.CutTimeout)
	if err != nil {
		return nil, err
	}
	return NewCutterWithDependencies(cfg, store, logger, client)
}

// NewCutterWithDependencies allows injecting a custom ffmpeg client (used for tests).
func NewCutterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client ffmpegsvc.Cutter) (*Cutter, error) {
	if cfg == nil {
		return nil, errors.New("configuration required")
	}
	ws, err := workspace.New(cfg.Paths.SharedDir)
	if err != nil {
		return nil, err
	}
	c := &Cutter{
		store:  store,
		cfg:    cfg,
		client: client,
		ws:     ws,
	}
	c.SetLogger(logger)
	return c, nil
}

// SetLogger updates the cutter's logging destination while preserving component labeling.
func (c *Cutter) SetLogger(logger *slog.Logger) {
	c.logger = logging.NewComponentLogger(logger, "cutter")
}

// Prepare validates the job's paths, probes the input, and readies progress
// fields. Missing input or cutlist files surface as not-found errors so the
// synchronous API path can map them onto 404 responses.
func (c *Cutter) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, c.logger)
	job.InitProgress("Cutting", "Preparing cut job")

	sourceAbs, info, err := c.ws.Stat(job.SourcePath)
	if err != nil {
		return classifyPathError("resolve input", job.SourcePath, err)
	}
	if info.IsDir() {
		return services.Wrap(
			services.ErrValidation,
			"cutter",
			"resolve input",
			fmt.Sprintf("Input %q is a directory", job.SourcePath),
			nil,
		)
	}

	cutlistAbs, _, err := c.ws.Stat(job.CutlistPath)
	if err != nil {
		return classifyPathError("resolve cutlist", job.CutlistPath, err)
	}
	cuts, err := stage.LoadCutlist(cutlistAbs)
	if err != nil {
		return err
	}

	if _, err := c.ws.EnsureDir(job.OutputDir); err != nil {
		return classifyOutputDirError(job.OutputDir, err)
	}

	job.Title = cutlist.DeriveTitle(sourceAbs)
	job.TotalCuts = len(cuts)
	job.CompletedCuts = 0

	probe, err := cutProbe(ctx, c.cfg.FFprobeBinary(), sourceAbs)
	if err != nil {
		// ffmpeg may still handle inputs ffprobe chokes on; cut without
		// range validation rather than failing the whole job here.
		logger.Warn("input probe failed", logging.Error(err))
	} else {
		if err := job.SetMediaInfo(&queue.MediaInfo{
			DurationSeconds: probe.DurationSeconds(),
			VideoStreams:    probe.VideoStreamCount(),
			AudioStreams:    probe.AudioStreamCount(),
			FormatName:      strings.TrimSpace(probe.Format.FormatName),
			SizeBytes:       probe.SizeBytes(),
		}); err != nil {
			logger.Warn("failed to snapshot media info", logging.Error(err))
		}
	}

	job.ProgressMessage = fmt.Sprintf("Prepared %d cuts", len(cuts))
	logger.Info("prepared cut job",
		logging.String("input", sourceAbs),
		logging.Int("cuts", len(cuts)),
		logging.String("output_dir", job.OutputDir),
	)
	return nil
}

// Execute runs every cut in the job's cutlist. Individual ffmpeg failures are
// recorded per segment and never abort the batch; only infrastructure
// failures (unreadable cutlist, unusable output dir) return an error.
func (c *Cutter) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, c.logger)
	stageStart := time.Now()

	sourceAbs, _, err := c.ws.Stat(job.SourcePath)
	if err != nil {
		return classifyPathError("resolve input", job.SourcePath, err)
	}
	cutlistAbs, _, err := c.ws.Stat(job.CutlistPath)
	if err != nil {
		return classifyPathError("resolve cutlist", job.CutlistPath, err)
	}
	cuts, err := stage.LoadCutlist(cutlistAbs)
	if err != nil {
		return err
	}
	outputDir, err := c.ws.EnsureDir(job.OutputDir)
	if err != nil {
		return classifyOutputDirError(job.OutputDir, err)
	}

	job.TotalCuts = len(cuts)
	if len(cuts) == 0 {
		_ = job.SetResults(nil)
		job.SetProgressComplete("Cut", "Cutlist contained no cuts")
		logger.Warn("cutlist contained no cuts", logging.String("cutlist", cutlistAbs))
		return nil
	}

	var inputDuration time.Duration
	if info := job.MediaInfo(); info != nil && info.DurationSeconds > 0 {
		inputDuration = time.Duration(info.DurationSeconds * float64(time.Second))
	}

	results := make([]queue.CutResult, 0, len(cuts))
	for idx, cut := range cuts {
		if err := ctx.Err(); err != nil {
			c.persistResults(ctx, job, results, logger)
			return services.Wrap(
				services.ErrTransient,
				"cutter",
				"run cuts",
				fmt.Sprintf("Cut batch interrupted after %d of %d segments", len(results), len(cuts)),
				err,
			)
		}
		result := c.runCut(ctx, job, sourceAbs, outputDir, cut, idx, len(cuts), inputDuration, logger)
		results = append(results, result)
		job.CompletedCuts = idx + 1
		c.persistResults(ctx, job, results, logger)
	}

	succeeded := queue.CountSucceeded(results)
	job.SetProgressComplete("Cut", fmt.Sprintf("Cuts complete (%d of %d succeeded)", succeeded, len(results)))

	logger.Info("cut stage summary",
		logging.Int("cuts_total", len(results)),
		logging.Int("cuts_succeeded", succeeded),
		logging.Duration("stage_duration", time.Since(stageStart)),
		logging.String("output_dir", outputDir),
	)
	return nil
}

// HealthCheck verifies the cut pipeline's external dependencies and the
// shared folder.
func (c *Cutter) HealthCheck(ctx context.Context) stage.Health {
	const name = "cutter"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(c.cfg.Paths.SharedDir) == "" {
		return stage.Unhealthy(name, "shared folder not configured")
	}
	if c.client == nil {
		return stage.Unhealthy(name, "ffmpeg client unavailable")
	}
	if check := preflight.CheckDirectoryAccess("Shared directory", c.cfg.Paths.SharedDir); !check.Passed {
		return stage.Unhealthy(name, check.Detail)
	}
	for _, status := range deps.CheckBinaries(deps.ForConfig(c.cfg)) {
		if !status.Available && !status.Optional {
			return stage.Unhealthy(name, status.Detail)
		}
	}
	return stage.Healthy(name)
}

func (c *Cutter) runCut(ctx context.Context, job *queue.Job, sourceAbs, outputDir string, cut cutlist.Cut, idx, total int, inputDuration time.Duration, logger *slog.Logger) queue.CutResult {
	outputName := cut.OutputFile()
	result := queue.CutResult{
		Name:       cut.Name,
		OutputFile: filepath.Join(outputDir, outputName),
		Start:      cut.Start,
		End:        cut.End,
	}

	segLogger := logger.With(
		logging.Int(logging.FieldSegment, idx+1),
		logging.Int(logging.FieldSegmentCount, total),
	)

	if cut.Name == "" {
		result.Error = "output name unusable after sanitization"
		segLogger.Error("cut skipped", logging.String("reason", result.Error))
		return result
	}

	from, to, rangeErr := cutlist.ValidateRange(cut.Start, cut.End)
	if rangeErr != nil {
		result.Error = rangeErr.Error()
		segLogger.Error("cut has an invalid time range", logging.Error(rangeErr))
		return result
	}
	if inputDuration > 0 && from >= inputDuration {
		result.Error = fmt.Sprintf("start %s is past the end of the input (%s)", cut.Start, cutlist.FormatTimecode(inputDuration))
		segLogger.Error("cut starts beyond input duration", logging.String("reason", result.Error))
		return result
	}
	segDuration := to - from
	if inputDuration > 0 && to > inputDuration {
		// ffmpeg stops at EOF; shrink the target so percent stays honest.
		segDuration = inputDuration - from
	}

	segLogger.Info("cutting segment",
		logging.String("output", result.OutputFile),
		logging.String("range", cut.Start+" - "+cut.End),
	)

	var lastPersisted time.Time
	progress := func(update ffmpegsvc.ProgressUpdate) {
		overall := (float64(idx) + update.Percent/100) / float64(total) * 100
		message := fmt.Sprintf("Cutting %s (%d/%d) %.0f%%", outputName, idx+1, total, update.Percent)
		if update.Speed > 0 {
			message = fmt.Sprintf("%s @ %.1fx", message, update.Speed)
		}
		job.SetProgress("Cutting", message, overall)
		now := time.Now()
		if !lastPersisted.IsZero() && now.Sub(lastPersisted) < progressPersistInterval {
			return
		}
		lastPersisted = now
		if err := c.store.UpdateProgress(ctx, job); err != nil {
			segLogger.Warn("failed to persist cut progress", logging.Error(err))
		}
	}

	req := ffmpegsvc.CutRequest{
		InputPath:  sourceAbs,
		OutputPath: result.OutputFile,
		Start:      cut.Start,
		End:        cut.End,
		Duration:   segDuration,
	}
	if err := c.client.Cut(ctx, req, progress); err != nil {
		result.Error = err.Error()
		segLogger.Error("cut failed", logging.Error(err))
		return result
	}

	if c.cfg.FFmpeg.ValidateOutputs {
		if err := c.validateSegment(ctx, result.OutputFile); err != nil {
			result.Error = err.Error()
			segLogger.Error("cut output failed validation", logging.Error(err))
			return result
		}
	}

	result.Success = true
	segLogger.Info("cut produced", logging.String("output", result.OutputFile))
	return result
}

// persistResults stores the accumulated outcomes after each segment so API
// consumers can surface per-segment progress while the batch is still running.
func (c *Cutter) persistResults(ctx context.Context, job *queue.Job, results []queue.CutResult, logger *slog.Logger) {
	copy := *job
	if err := copy.SetResults(results); err != nil {
		logger.Warn("failed to encode cut results", logging.Error(err))
		return
	}
	if err := c.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist cut results", logging.Error(err))
		return
	}
	*job = copy
}

func (c *Cutter) validateSegment(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output %q is empty", path)
	}
	probe, err := cutProbe(ctx, c.cfg.FFprobeBinary(), path)
	if err != nil {
		return fmt.Errorf("probe output: %w", err)
	}
	if probe.VideoStreamCount() == 0 {
		return fmt.Errorf("output %q has no video stream", path)
	}
	if probe.DurationSeconds() <= 0 {
		return fmt.Errorf("output %q duration could not be determined", path)
	}
	return nil
}

func classifyPathError(operation, rel string, err error) error {
	switch {
	case errors.Is(err, workspace.ErrOutsideRoot):
		return services.Wrap(
			services.ErrValidation,
			"cutter",
			operation,
			fmt.Sprintf("Path %q is outside the shared folder", rel),
			err,
		)
	case errors.Is(err, fs.ErrNotExist):
		return services.Wrap(
			services.ErrNotFound,
			"cutter",
			operation,
			fmt.Sprintf("%q not found in the shared folder", rel),
			err,
		)
	default:
		return services.Wrap(
			services.ErrTransient,
			"cutter",
			operation,
			fmt.Sprintf("Failed to inspect %q", rel),
			err,
		)
	}
}

func classifyOutputDirError(rel string, err error) error {
	if errors.Is(err, workspace.ErrOutsideRoot) {
		return services.Wrap(
			services.ErrValidation,
			"cutter",
			"ensure output dir",
			fmt.Sprintf("Output folder %q is outside the shared folder", rel),
			err,
		)
	}
	return services.Wrap(
		services.ErrConfiguration,
		"cutter",
		"ensure output dir",
		fmt.Sprintf("Failed to create output folder %q", rel),
		err,
	)
}
