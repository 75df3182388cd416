package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"zeusmaker/internal/logging"
	"zeusmaker/internal/services"
	"zeusmaker/internal/workpool"
)

// DefaultPollInterval is how often a running transcoder is checked for exit
// and cancellation.
const DefaultPollInterval = 100 * time.Millisecond

// killWaitDelay bounds how long Wait keeps reading stderr after the process
// was killed; grandchildren may still hold the pipe open.
const killWaitDelay = 2 * time.Second

// Converter runs one transcoder process per Convert call. It is safe for
// concurrent use.
type Converter struct {
	Binary       string
	PollInterval time.Duration
	// Cancel is shared with every pool of the batch. A nil flag is never set.
	Cancel *workpool.Flag
	Logger *slog.Logger
}

// Convert transcodes job.Input (or a window of it) into job.Output and waits
// for the process to exit. The process is killed as soon as ctx ends or the
// cancel flag is observed at a poll.
func (c *Converter) Convert(ctx context.Context, job Job) error {
	logger := c.logger()
	if c.Cancel.IsSet() {
		return services.Wrap(services.ErrCanceled, "transcode", "convert", "cancelled before start", nil)
	}
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "transcode", "create output dir", filepath.Dir(job.Output), err)
	}

	args := BuildArgs(job)
	stderr := newTailBuffer(stderrTailLimit)
	cmd := exec.Command(c.Binary, args...) //nolint:gosec
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	cmd.WaitDelay = killWaitDelay

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrSpawn, "transcode", "start", c.Binary, err)
	}
	logger.Debug("transcoder started",
		logging.String("input", job.Input),
		logging.String("output", job.Output),
		logging.Int("start", job.Window.Start),
		logging.Int("duration", job.Window.Duration),
		logging.Int("pid", cmd.Process.Pid),
	)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				return services.Wrap(
					services.ErrSegment,
					"transcode",
					"convert",
					fmt.Sprintf("ffmpeg %s: %s", exitStatus(err), stderr.String()),
					err,
				)
			}
			return nil
		case <-ctx.Done():
			return c.kill(cmd, done, logger, ctx.Err())
		case <-ticker.C:
			if c.Cancel.IsSet() {
				return c.kill(cmd, done, logger, nil)
			}
		}
	}
}

func (c *Converter) kill(cmd *exec.Cmd, done <-chan error, logger *slog.Logger, cause error) error {
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logging.WarnWithContext(logger, "failed to kill transcoder", "transcoder_kill_failed",
			logging.Int("pid", cmd.Process.Pid),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check for a stray ffmpeg process"),
			logging.String(logging.FieldImpact, "process may keep running after cancellation"),
		)
	}
	<-done
	logger.Debug("transcoder killed", logging.Int("pid", cmd.Process.Pid))
	return services.Wrap(services.ErrCanceled, "transcode", "convert", "transcoder killed", cause)
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

func exitStatus(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("exit status %d", exitErr.ExitCode())
	}
	return err.Error()
}
