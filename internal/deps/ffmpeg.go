package deps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ErrFFmpegNotFound reports that no usable ffmpeg binary could be located.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

const verifyTimeout = 10 * time.Second

// executablePath is swapped in tests to exercise sidecar resolution.
var executablePath = os.Executable

// ResolveFFmpegPath locates the ffmpeg binary the converter will execute.
//
// Lookup order mirrors how the tool is shipped: an explicitly configured
// binary wins, then an ffmpeg sitting next to the zeusmaker executable, then
// "ffmpeg" from PATH.
func ResolveFFmpegPath(configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		if strings.ContainsRune(configured, filepath.Separator) || strings.ContainsRune(configured, '/') {
			info, err := os.Stat(configured)
			if err != nil {
				return "", fmt.Errorf("%w: configured binary %q: %w", ErrFFmpegNotFound, configured, err)
			}
			if !isExecutable(info) {
				return "", fmt.Errorf("%w: configured binary %q is not executable", ErrFFmpegNotFound, configured)
			}
			return configured, nil
		}
		resolved, err := exec.LookPath(configured)
		if err != nil {
			return "", fmt.Errorf("%w: binary %q not in PATH", ErrFFmpegNotFound, configured)
		}
		return resolved, nil
	}

	if self, err := executablePath(); err == nil {
		if candidate, ok := ffmpegSidecarCandidate(self); ok {
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				return candidate, nil
			}
		}
	}

	if resolved, err := exec.LookPath(ffmpegName()); err == nil {
		return resolved, nil
	}
	return "", fmt.Errorf("%w: binary %q not found next to zeusmaker or in PATH", ErrFFmpegNotFound, ffmpegName())
}

// VerifyFFmpeg runs "<binary> -version" and returns the first line of its
// output. A non-zero exit means the binary cannot be used.
func VerifyFFmpeg(ctx context.Context, binary string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return "", fmt.Errorf("ffmpeg -version: %w", err)
		}
		return "", fmt.Errorf("ffmpeg -version: %w: %s", err, detail)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(stdout.String()), "\n")
	return strings.TrimSpace(line), nil
}

// CheckFFmpeg reports ffmpeg availability in the shape used by CheckBinaries.
func CheckFFmpeg(ctx context.Context, configured string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Transcodes segments and concatenates them",
	}
	path, err := ResolveFFmpegPath(configured)
	if err != nil {
		result.Command = configured
		if result.Command == "" {
			result.Command = ffmpegName()
		}
		result.Detail = err.Error()
		return result
	}
	result.Command = path
	version, err := VerifyFFmpeg(ctx, path)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	result.Available = true
	result.Detail = version
	return result
}

func ffmpegName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func ffmpegSidecarCandidate(selfPath string) (string, bool) {
	if selfPath == "" {
		return "", false
	}
	return filepath.Join(filepath.Dir(selfPath), ffmpegName()), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
