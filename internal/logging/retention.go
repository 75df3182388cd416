package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"zeusmaker/internal/config"
)

// LogPattern matches zeusmaker log files in paths.log_dir, including copies
// renamed aside by hand or by earlier releases.
const LogPattern = "zeusmaker*.log"

// PruneLogs removes zeusmaker log files in cfg.Paths.LogDir whose last write
// is older than logging.retention_days, measured from now. The active log
// file is kept however old it is, and a retention of zero disables pruning.
// It returns the removed paths.
func PruneLogs(logger *slog.Logger, cfg *config.Config, now time.Time) []string {
	if cfg == nil || cfg.Logging.RetentionDays <= 0 || cfg.Paths.LogDir == "" {
		return nil
	}
	cutoff := now.AddDate(0, 0, -cfg.Logging.RetentionDays)
	active := filepath.Clean(LogFilePath(cfg))

	entries, err := os.ReadDir(cfg.Paths.LogDir)
	if err != nil {
		return nil
	}
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matched, _ := filepath.Match(LogPattern, entry.Name()); !matched {
			continue
		}
		path := filepath.Join(cfg.Paths.LogDir, entry.Name())
		if filepath.Clean(path) == active {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed = append(removed, path)
	}
	if len(removed) > 0 && logger != nil {
		logger.Info("old logs pruned",
			Int("removed", len(removed)),
			Int("retention_days", cfg.Logging.RetentionDays),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}
