package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zeusmaker/internal/config"
	"zeusmaker/internal/conversion"
	"zeusmaker/internal/history"
	"zeusmaker/internal/logging"
	"zeusmaker/internal/outputlock"
	"zeusmaker/internal/preflight"
	"zeusmaker/internal/progress"
	"zeusmaker/internal/services"
	"zeusmaker/internal/staging"
	"zeusmaker/internal/transcode"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var videoQuality int
	var audioQuality int
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert audio and video files to Ogg",
		Long: "Convert every input to Ogg Theora/Vorbis (.ogv) or Ogg Vorbis (.ogg).\n" +
			"Long videos are split into segments that are transcoded in parallel and\n" +
			"merged back into one file. Interrupting the command kills running\n" +
			"transcoders and removes partial output.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = cfg.Paths.OutputDir
			}
			if dir, err = config.ExpandPath(dir); err != nil {
				return err
			}

			var quality *transcode.Quality
			if cmd.Flags().Changed("video-quality") || cmd.Flags().Changed("audio-quality") {
				q, err := qualityOverride(cfg, cmd, videoQuality, audioQuality)
				if err != nil {
					return err
				}
				quality = &q
			}

			lock, err := outputlock.Acquire(dir)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					logging.WarnWithContext(logger, "output lock release failed", "output_lock_release_failed",
						logging.String("path", lock.Path()),
						logging.Error(err),
						logging.String(logging.FieldImpact, "stale lock file left in output directory"),
					)
				}
			}()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			results := preflight.RunAll(cmd.Context(), cfg, dir)
			if err := preflight.Err(results); err != nil {
				for _, line := range preflightLines(results, colorize) {
					fmt.Fprintln(cmd.ErrOrStderr(), line)
				}
				return err
			}

			// Leftovers are only touched once the batch is known to run. Holding
			// the lock means no live batch owns any chunk directory here.
			if cleaned := staging.CleanStale(cmd.Context(), dir, 0, logger); len(cleaned.Removed) > 0 {
				logger.Info("removed leftovers from an interrupted run",
					logging.Int("count", len(cleaned.Removed)),
					logging.String("output_dir", dir),
				)
			}

			engine := conversion.NewEngine(cfg, nil, logger)
			summary, err := runConversion(cmd.Context(), engine, conversion.Request{
				Inputs:    args,
				OutputDir: dir,
				Quality:   quality,
			}, out, colorize)
			if err != nil {
				if services.IsBatchFatal(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Run 'zeusmaker check' to diagnose the ffmpeg setup.")
				}
				return err
			}

			fmt.Fprintln(out, renderBatchSummary(summary))
			fmt.Fprintf(out, "Converted %d of %d file(s) in %s\n",
				summary.SuccessCount, len(summary.Results), summary.Elapsed.Round(time.Millisecond))

			if !noHistory {
				recordHistory(cmd.Context(), cfg, logger, dir, summary)
			}

			switch {
			case summary.Canceled:
				return services.Wrap(services.ErrCanceled, "convert", "run batch", "batch canceled", nil)
			case summary.ErrorCount > 0:
				return fmt.Errorf("%d of %d file(s) failed", summary.ErrorCount, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().IntVar(&videoQuality, "video-quality", 0, "Theora quality 0-10 (overrides conversion.video_quality)")
	cmd.Flags().IntVar(&audioQuality, "audio-quality", 0, "Vorbis quality -1-10 (overrides conversion.audio_quality)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the batch in the history database")
	return cmd
}

func qualityOverride(cfg *config.Config, cmd *cobra.Command, video, audio int) (transcode.Quality, error) {
	q := transcode.Quality{Video: cfg.Conversion.VideoQuality, Audio: cfg.Conversion.AudioQuality}
	if cmd.Flags().Changed("video-quality") {
		if video < 0 || video > 10 {
			return q, services.Wrap(services.ErrValidation, "convert", "parse flags", "--video-quality must be between 0 and 10", nil)
		}
		q.Video = video
	}
	if cmd.Flags().Changed("audio-quality") {
		if audio < -1 || audio > 10 {
			return q, services.Wrap(services.ErrValidation, "convert", "parse flags", "--audio-quality must be between -1 and 10", nil)
		}
		q.Audio = audio
	}
	return q, nil
}

// runConversion starts a batch and renders its events until it finishes.
// Cancelling ctx cancels the batch; the summary is still returned.
func runConversion(ctx context.Context, engine *conversion.Engine, req conversion.Request, out io.Writer, interactive bool) (progress.AllTasksCompleted, error) {
	batch, err := engine.RunBatch(ctx, req)
	if err != nil {
		return progress.AllTasksCompleted{}, err
	}
	go func() {
		select {
		case <-ctx.Done():
			engine.Cancel()
		case <-batch.Done():
		}
	}()

	renderer := newProgressRenderer(out, batch.ID, len(req.Inputs), interactive, engine.Stats)
	return renderer.follow(engine.Events()), nil
}

func renderBatchSummary(summary progress.AllTasksCompleted) string {
	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		status := "ok"
		detail := r.Output
		if !r.Success {
			status = services.FailureKind(r.Err)
			if status == "" {
				status = "failed"
			}
			detail = ""
			if r.Err != nil {
				detail = r.Err.Error()
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.TaskID+1),
			r.Input,
			fmt.Sprintf("%d", r.SegmentCount),
			status,
			r.Elapsed.Round(time.Millisecond).String(),
			detail,
		})
	}
	footer := []string{
		"",
		fmt.Sprintf("%d ok / %d failed", summary.SuccessCount, summary.ErrorCount),
		fmt.Sprintf("%d", summary.Stats.TotalSegments),
		"",
		summary.Elapsed.Round(time.Millisecond).String(),
		"",
	}
	return renderTableWithFooter(
		[]string{"#", "Input", "Segments", "Status", "Time", "Output / Error"},
		rows,
		footer,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
	)
}

// recordHistory stores the batch. Failures are logged, never returned: the
// conversion itself already finished.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, outputDir string, summary progress.AllTasksCompleted) {
	ctx = context.WithoutCancel(ctx)
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "batch history unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "batch not recorded in history"),
		)
		return
	}
	defer store.Close()

	if err := store.RecordBatch(ctx, historyBatch(outputDir, summary)); err != nil {
		logging.WarnWithContext(logger, "batch history write failed", "history_write_failed",
			logging.String(logging.FieldBatchID, summary.BatchID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "batch not recorded in history"),
		)
	}
}

func historyBatch(outputDir string, summary progress.AllTasksCompleted) history.Batch {
	started := summary.Stats.StartTime
	batch := history.Batch{
		ID:             summary.BatchID,
		StartedAt:      started,
		FinishedAt:     started.Add(summary.Elapsed),
		OutputDir:      outputDir,
		SuccessCount:   summary.SuccessCount,
		ErrorCount:     summary.ErrorCount,
		Canceled:       summary.Canceled,
		Elapsed:        summary.Elapsed,
		TotalSegments:  summary.Stats.TotalSegments,
		FailedSegments: summary.Stats.FailedSegments,
		Results:        make([]history.TaskRecord, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		rec := history.TaskRecord{
			TaskID:       r.TaskID,
			Input:        r.Input,
			Output:       r.Output,
			SegmentCount: r.SegmentCount,
			Success:      r.Success,
			FailureKind:  services.FailureKind(r.Err),
			Elapsed:      r.Elapsed,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		batch.Results = append(batch.Results, rec)
	}
	return batch
}
