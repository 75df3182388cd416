package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"zeusmaker/internal/config"
)

// LogFileName is the persistent log written inside paths.log_dir.
const LogFileName = "zeusmaker.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Paths lists destinations: "stdout", "stderr", or files opened for
	// append. Empty means stdout.
	Paths []string
}

// New constructs a slog logger using the provided options. Debug level adds
// the caller to every record.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := levelVar.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	w, err := openWriters(opts.Paths)
	if err != nil {
		return nil, err
	}
	if format == "json" {
		return slog.New(newJSONHandler(w, levelVar, addSource)), nil
	}
	return slog.New(newConsoleHandler(w, levelVar, addSource)), nil
}

// NewFromConfig builds the command logger. Records go to LogFileName in
// paths.log_dir, keeping the terminal free for progress output; mirror copies
// them to stdout as well. Without a log directory the logger writes to stdout.
func NewFromConfig(cfg *config.Config, mirror bool) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	var paths []string
	if mirror || cfg.Paths.LogDir == "" {
		paths = append(paths, "stdout")
	}
	if logPath := LogFilePath(cfg); logPath != "" {
		paths = append(paths, logPath)
	}
	return New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Paths: paths})
}

// LogFilePath returns the persistent log file location for cfg.
func LogFilePath(cfg *config.Config) string {
	if cfg == nil || cfg.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, LogFileName)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
