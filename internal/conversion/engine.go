package conversion

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"zeusmaker/internal/config"
	"zeusmaker/internal/deps"
	"zeusmaker/internal/fileutil"
	"zeusmaker/internal/logging"
	"zeusmaker/internal/media/ffprobe"
	"zeusmaker/internal/naming"
	"zeusmaker/internal/progress"
	"zeusmaker/internal/resources"
	"zeusmaker/internal/services"
	"zeusmaker/internal/transcode"
	"zeusmaker/internal/workpool"
)

// Request describes one batch.
type Request struct {
	Inputs []string
	// OutputDir overrides paths.output_dir when set.
	OutputDir string
	// Quality overrides the configured video/audio quality when set.
	Quality *transcode.Quality
}

// Batch is a running or finished batch. Summary is valid once Done is closed.
type Batch struct {
	ID        string
	StartedAt time.Time
	OutputDir string

	done    chan struct{}
	summary progress.AllTasksCompleted
}

// Done is closed after the batch's AllTasksCompleted event was sent.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Summary returns the terminal event of a finished batch.
func (b *Batch) Summary() progress.AllTasksCompleted {
	<-b.done
	return b.summary
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSizer replaces the CPU-based pool sizer.
func WithSizer(s resources.Sizer) Option {
	return func(e *Engine) { e.sizer = s }
}

// WithClock replaces time.Now for batch timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine runs batches of conversions on two nested worker pools: one worker
// per task at the outer level, one pool per task for its segments. Only one
// batch runs at a time; the event channel and stats are reused across batches.
type Engine struct {
	cfg    *config.Config
	prober Prober
	logger *slog.Logger
	sizer  resources.Sizer
	now    func() time.Time

	events  *progress.Channel
	stats   progress.Stats
	cancel  workpool.Flag
	running atomic.Bool
}

// NewEngine builds an engine. A nil prober uses ffprobe with the ffmpeg banner
// as fallback.
func NewEngine(cfg *config.Config, prober Prober, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		cfg:    cfg,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "conversion"),
		sizer:  resources.NewSizer(),
		now:    time.Now,
		events: progress.NewChannel(cfg.Conversion.ProgressBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Events returns the progress channel shared by every batch of this engine.
func (e *Engine) Events() *progress.Channel {
	return e.events
}

// Stats returns a copy of the current batch counters.
func (e *Engine) Stats() progress.Snapshot {
	return e.stats.Snapshot()
}

// Cancel asks the running batch to stop. Running transcoders are killed at
// their next poll and nothing new is dispatched.
func (e *Engine) Cancel() {
	e.cancel.Set()
}

// Running reports whether a batch is in flight. It turns false before the
// batch's AllTasksCompleted event is queued, so a consumer reacting to that
// event may start the next batch at once. Batch.Done is closed only after the
// event was queued.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// batchRun carries the per-batch collaborators shared by all workers.
type batchRun struct {
	batch     *Batch
	converter *transcode.Converter
	merger    *transcode.Merger
	reserver  *naming.Reserver
	sampler   *logging.ProgressSampler
}

// RunBatch validates the request, checks the transcoder, and starts the batch
// in the background. Errors returned here mean no event was emitted. ctx
// bounds the whole batch. Callers that need the outcome without draining
// events wait on the returned Batch's Done channel.
func (e *Engine) RunBatch(ctx context.Context, req Request) (*Batch, error) {
	if len(req.Inputs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "batch", "validate request", "no input files", nil)
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrBatchRunning
	}
	started := false
	defer func() {
		if !started {
			e.running.Store(false)
		}
	}()

	binary, err := deps.ResolveFFmpegPath(e.cfg.FFmpeg.Binary)
	if err != nil {
		return nil, services.Wrap(services.ErrSpawn, "batch", "resolve ffmpeg", "", err)
	}
	if _, err := deps.VerifyFFmpeg(ctx, binary); err != nil {
		return nil, services.Wrap(services.ErrSpawn, "batch", "verify ffmpeg", binary, err)
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = e.cfg.Paths.OutputDir
	}
	if abs, err := filepath.Abs(outputDir); err == nil {
		outputDir = abs
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "batch", "create output dir", outputDir, err)
	}

	quality := transcode.Quality{Video: e.cfg.Conversion.VideoQuality, Audio: e.cfg.Conversion.AudioQuality}
	if req.Quality != nil {
		quality = *req.Quality
	}

	e.cancel.Reset()
	now := e.now()
	e.stats.Reset(now)

	batch := &Batch{ID: uuid.NewString(), StartedAt: now, OutputDir: outputDir, done: make(chan struct{})}
	ctx = services.WithBatchID(ctx, batch.ID)

	prober := e.prober
	if prober == nil {
		prober = ffprobe.Prober{FFprobe: e.cfg.FFprobeBinary(), FFmpeg: binary}
	}
	run := &batchRun{
		batch:    batch,
		reserver: naming.NewReserver(),
		sampler:  logging.NewProgressSampler(25),
		converter: &transcode.Converter{
			Binary:       binary,
			PollInterval: e.cfg.Conversion.PollInterval(),
			Cancel:       &e.cancel,
			Logger:       e.logger,
		},
		merger: &transcode.Merger{Binary: binary, Logger: e.logger},
	}
	planner := &Planner{
		Prober:    prober,
		Chunking:  ChunkingConfig(e.cfg.Conversion),
		Quality:   quality,
		OutputDir: outputDir,
		Reserver:  run.reserver,
		Logger:    e.logger,
	}

	logging.WithContext(ctx, e.logger).Info("batch started",
		logging.Int("inputs", len(req.Inputs)),
		logging.String("output_dir", outputDir),
		logging.String("ffmpeg", binary),
	)

	started = true
	go e.supervise(ctx, run, planner, req.Inputs)
	return batch, nil
}

// supervise plans every input, runs the task pool, and emits the terminal
// event.
func (e *Engine) supervise(ctx context.Context, run *batchRun, planner *Planner, inputs []string) {
	logger := logging.WithContext(ctx, e.logger)

	tasks := make([]*Task, 0, len(inputs))
	sizes := make([]int64, 0, len(inputs))
	for i, input := range inputs {
		task := planner.PlanTask(ctx, i, input)
		tasks = append(tasks, task)
		sizes = append(sizes, task.Size)
		e.stats.AddTask(len(task.Segments))
	}

	workers := e.sizer.TaskPoolSize()
	if limit := e.cfg.Conversion.MaxWorkers; limit > 0 {
		workers = min(workers, limit)
	}
	if e.cfg.Conversion.AdjustForFileSize {
		workers = resources.AdjustForFileSizes(workers, sizes)
	}
	pool := workpool.New("tasks", workers)
	logger.Debug("task pool sized", logging.Int("workers", pool.Size()), logging.Int("tasks", len(tasks)))

	results := make([]progress.TaskResult, len(tasks))
	dispatched := pool.Run(ctx, len(tasks), e.cancel.IsSet, func(ctx context.Context, i int) {
		results[i] = e.runTask(ctx, run, tasks[i])
	})

	canceled := e.cancel.IsSet() || ctx.Err() != nil
	success := 0
	for i, ok := range dispatched {
		if !ok {
			results[i] = progress.TaskResult{
				TaskID: tasks[i].ID,
				Input:  tasks[i].InputPath,
				Err:    services.Wrap(services.ErrCanceled, "batch", "dispatch", "task not started", nil),
			}
			run.reserver.Release(tasks[i].OutputPath)
			continue
		}
		if results[i].Success {
			success++
		}
	}

	elapsed := e.now().Sub(run.batch.StartedAt)
	summary := progress.AllTasksCompleted{
		BatchID:      run.batch.ID,
		SuccessCount: success,
		ErrorCount:   len(results) - success,
		Elapsed:      elapsed,
		Results:      results,
		Stats:        e.stats.Snapshot(),
		Canceled:     canceled,
	}
	run.batch.summary = summary

	logger.Info("batch finished",
		logging.Int("succeeded", summary.SuccessCount),
		logging.Int("failed", summary.ErrorCount),
		logging.Bool("canceled", canceled),
		logging.Duration("elapsed", elapsed),
		logging.Duration("mean_task", pool.MeanJobDuration()),
	)
	e.running.Store(false)
	e.events.Send(summary)
	close(run.batch.done)
}

// runTask converts, merges, and cleans up one task.
func (e *Engine) runTask(ctx context.Context, run *batchRun, task *Task) progress.TaskResult {
	ctx = services.WithTaskID(ctx, task.ID)
	logger := logging.WithContext(ctx, e.logger)
	started := time.Now()

	e.events.Send(progress.TaskStarted{
		BatchID:      run.batch.ID,
		TaskID:       task.ID,
		Input:        task.InputPath,
		SegmentCount: len(task.Segments),
	})

	err := task.PlanErr
	if err == nil && task.TempDir != "" {
		if mkErr := os.MkdirAll(task.TempDir, 0o755); mkErr != nil {
			err = services.Wrap(services.ErrIO, "task", "create temp dir", task.TempDir, mkErr)
		}
	}
	if err == nil {
		err = aggregateSegmentErrors(e.runSegments(ctx, run, task))
	}
	if err == nil {
		err = run.merger.Merge(ctx, task.SegmentPaths(), task.OutputPath)
	}

	e.cleanupTask(logger, task, err != nil)
	if err != nil && task.OutputPath != "" {
		run.reserver.Release(task.OutputPath)
	}

	result := progress.TaskResult{
		TaskID:       task.ID,
		Input:        task.InputPath,
		SegmentCount: len(task.Segments),
		Success:      err == nil,
		Err:          err,
		Elapsed:      time.Since(started),
	}
	if err == nil {
		result.Output = task.OutputPath
		logger.Info("task converted",
			logging.String("input", task.InputPath),
			logging.String("output", task.OutputPath),
			logging.Int(logging.FieldSegmentCount, len(task.Segments)),
			logging.Bool("fast_mode", task.FastMode),
			logging.Duration("elapsed", result.Elapsed),
		)
	} else if !errors.Is(err, services.ErrCanceled) {
		logging.ErrorWithContext(logger, "task failed", "task_failed",
			logging.String("input", task.InputPath),
			logging.String(logging.FieldErrorKind, services.FailureKind(err)),
			logging.Error(err),
		)
	}

	e.stats.RecordTask(result.Success)
	e.events.Send(progress.TaskCompleted{BatchID: run.batch.ID, TaskID: task.ID, Result: result})
	return result
}

// cleanupTask removes segment files and the temp dir, and a partial final
// output when the task failed.
func (e *Engine) cleanupTask(logger *slog.Logger, task *Task, failed bool) {
	if task.TempDir != "" {
		for _, seg := range task.Segments {
			if err := fileutil.RemoveIfExists(seg.OutputPath); err != nil {
				logger.Debug("segment cleanup failed", logging.String("path", seg.OutputPath), logging.Error(err))
			}
		}
		if err := os.RemoveAll(task.TempDir); err != nil {
			logging.WarnWithContext(logger, "temp dir cleanup failed", "cleanup_failed",
				logging.String("path", task.TempDir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
				logging.String(logging.FieldImpact, "temporary segment files remain on disk"),
			)
		}
	}
	if failed && task.OutputPath != "" {
		if err := fileutil.RemoveIfExists(task.OutputPath); err != nil {
			logger.Debug("partial output cleanup failed", logging.String("path", task.OutputPath), logging.Error(err))
		}
	}
}
