// Package services defines shared utilities consumed by the conversion engine,
// its collaborators, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, task indexes, segment indexes, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     probe, plan, spawn, segment, merge, or IO errors.
//
// Use these helpers when wiring new conversion logic so error handling and
// observability stay uniform across the engine.
package services
