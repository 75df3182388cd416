package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"zeusmaker/internal/config"
	"zeusmaker/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTranscoder resolves and runs the configured ffmpeg once.
func CheckTranscoder(ctx context.Context, cfg *config.Config) Result {
	status := deps.CheckFFmpeg(ctx, cfg.FFmpeg.Binary)
	if !status.Available {
		return Result{Name: status.Name, Detail: fmt.Sprintf("%s (error: %s)", status.Command, status.Detail)}
	}
	return Result{Name: status.Name, Passed: true, Detail: fmt.Sprintf("%s (%s)", status.Command, status.Detail)}
}

// CheckSystemDeps evaluates every external binary for the given config.
// ffprobe is optional: without it durations come from the ffmpeg banner.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	results := []deps.Status{deps.CheckFFmpeg(ctx, cfg.FFmpeg.Binary)}
	results = append(results, deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Reads media duration; ffmpeg banner parsing is used when absent",
			Optional:    true,
		},
	})...)
	return results
}
