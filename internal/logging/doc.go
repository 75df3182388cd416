// Package logging assembles structured slog loggers and formatting helpers used
// across zeusmaker.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine code can automatically
// tag log lines with batch IDs, task indexes, and segment indexes. The package
// also provides a no-op logger for tests and wiring code that cannot fail,
// a progress sampler for chatty per-task updates, and log retention.
package logging
