// Package config loads, normalizes, and validates zeusmaker configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ZEUSMAKER_FFMPEG environment
// fallback. The Config type centralizes the chunking policy, encoder quality,
// worker tuning, and directory layout so the engine and CLI discover every
// knob in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
