package conversion

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"zeusmaker/internal/chunking"
	"zeusmaker/internal/config"
	"zeusmaker/internal/logging"
	"zeusmaker/internal/media/ffprobe"
	"zeusmaker/internal/naming"
	"zeusmaker/internal/services"
	"zeusmaker/internal/staging"
	"zeusmaker/internal/transcode"
)

// Prober reads media metadata. ffprobe.Prober satisfies it.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Info, error)
}

// Segment is a planned time slice with its output location. For a
// single-segment task OutputPath is the task's final output.
type Segment struct {
	chunking.Segment
	OutputPath string
}

// Task is one input file of a batch.
type Task struct {
	ID         int
	InputPath  string
	OutputPath string
	Kind       transcode.Kind
	Segments   []Segment
	FastMode   bool
	Quality    transcode.Quality
	// TempDir holds segment files; empty for single-segment tasks.
	TempDir string
	// Duration is the probed length in whole seconds, zero when unknown.
	Duration int
	// BitRate is the probed container bitrate in bits per second, zero when
	// unknown.
	BitRate int64
	// Size is the input size in bytes, used for worker tuning.
	Size int64
	// PlanErr fails this task without running anything.
	PlanErr error
}

// Job builds the transcoder invocation for segment i.
func (t *Task) Job(i int) transcode.Job {
	seg := t.Segments[i]
	job := transcode.Job{
		Input:    t.InputPath,
		Output:   seg.OutputPath,
		Kind:     t.Kind,
		FastMode: t.FastMode,
		Quality:  t.Quality,
	}
	if len(t.Segments) > 1 {
		job.Window = transcode.Window{Start: seg.Start, Duration: seg.Duration}
	}
	return job
}

// SegmentPaths returns segment outputs in index order.
func (t *Task) SegmentPaths() []string {
	paths := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		paths[i] = seg.OutputPath
	}
	return paths
}

// ChunkingConfig adapts the [conversion] section for the planner.
func ChunkingConfig(conv config.Conversion) chunking.Config {
	return chunking.Config{
		SegmentDuration:    conv.SegmentDuration,
		OverlapDuration:    conv.OverlapDuration,
		MaxSegments:        conv.MaxSegments,
		MinSegmentDuration: conv.MinSegmentDuration,
		SmartChunking:      conv.SmartChunking,
		FastMode:           conv.FastMode,
	}
}

// Planner turns input paths into tasks. It is used once per batch and by the
// plan command, which previews a batch without converting.
type Planner struct {
	Prober    Prober
	Chunking  chunking.Config
	Quality   transcode.Quality
	OutputDir string
	Reserver  *naming.Reserver
	Logger    *slog.Logger
}

// PlanTask probes and plans one input. Failures are recorded on the task
// rather than returned so one bad input never stops a batch.
func (p *Planner) PlanTask(ctx context.Context, id int, input string) *Task {
	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	reserver := p.Reserver
	if reserver == nil {
		reserver = naming.NewReserver()
		p.Reserver = reserver
	}

	kind := transcode.KindFor(input)
	task := &Task{ID: id, InputPath: input, Kind: kind, Quality: p.Quality}

	info, err := os.Stat(input)
	switch {
	case err != nil:
		task.PlanErr = services.Wrap(services.ErrIO, "plan", "stat input", input, err)
		return task
	case info.IsDir():
		task.PlanErr = services.Wrap(services.ErrIO, "plan", "stat input", input+" is a directory", nil)
		return task
	}
	task.Size = info.Size()

	stem := naming.SafeStem(input, id)
	target := naming.TrimToPathLength(filepath.Join(p.OutputDir, stem+kind.Extension()), naming.MaxPathLength)
	task.OutputPath = reserver.Reserve(target)
	stem = strings.TrimSuffix(filepath.Base(task.OutputPath), kind.Extension())

	if p.Prober != nil {
		meta, probeErr := p.Prober.Probe(ctx, input)
		if probeErr != nil {
			logging.WarnWithContext(logger, "probe failed; converting as one piece", "probe_failed",
				logging.String("input", input),
				logging.Error(services.Wrap(services.ErrProbe, "plan", "probe", input, probeErr)),
				logging.String(logging.FieldErrorHint, "check that ffprobe or ffmpeg can read the file"),
				logging.String(logging.FieldImpact, "input is not split into parallel segments"),
			)
		} else {
			if meta.DurationSeconds > 0 {
				task.Duration = int(math.Ceil(meta.DurationSeconds))
			}
			task.BitRate = meta.BitRate
		}
	}

	cfg := p.Chunking
	if kind == transcode.KindAudio {
		cfg.SmartChunking = false
	}
	plan, err := chunking.PlanSegments(task.Duration, cfg)
	if err != nil {
		task.PlanErr = err
		return task
	}
	task.FastMode = plan.FastMode

	if plan.Whole() {
		task.Segments = []Segment{{Segment: plan.Segments[0], OutputPath: task.OutputPath}}
		return task
	}
	task.TempDir = staging.ChunkDir(p.OutputDir, stem)
	task.Segments = make([]Segment, len(plan.Segments))
	for i, seg := range plan.Segments {
		task.Segments[i] = Segment{
			Segment:    seg,
			OutputPath: filepath.Join(task.TempDir, chunking.SegmentFileName(stem, i)),
		}
	}
	return task
}
