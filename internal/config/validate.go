package config

import (
	"errors"
	"fmt"
)

const (
	maxSegmentsLimit  = 64
	maxPollIntervalMS = 5000
	minPollIntervalMS = 10
	maxTaskWorkers    = 64
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConversion() error {
	conv := c.Conversion
	if conv.SegmentDuration <= 0 {
		return errors.New("conversion.segment_duration must be positive")
	}
	if conv.OverlapDuration < 0 {
		return errors.New("conversion.overlap_duration must be >= 0")
	}
	if conv.OverlapDuration >= conv.SegmentDuration {
		return errors.New("conversion.overlap_duration must be smaller than conversion.segment_duration")
	}
	if conv.MaxSegments < 1 || conv.MaxSegments > maxSegmentsLimit {
		return fmt.Errorf("conversion.max_segments must be between 1 and %d", maxSegmentsLimit)
	}
	if conv.MinSegmentDuration <= 0 {
		return errors.New("conversion.min_segment_duration must be positive")
	}
	if conv.VideoQuality < 0 || conv.VideoQuality > 10 {
		return errors.New("conversion.video_quality must be between 0 and 10")
	}
	if conv.AudioQuality < -1 || conv.AudioQuality > 10 {
		return errors.New("conversion.audio_quality must be between -1 and 10")
	}
	if conv.PollIntervalMS < minPollIntervalMS || conv.PollIntervalMS > maxPollIntervalMS {
		return fmt.Errorf("conversion.poll_interval_ms must be between %d and %d", minPollIntervalMS, maxPollIntervalMS)
	}
	if conv.ProgressBuffer < 1 {
		return errors.New("conversion.progress_buffer must be positive")
	}
	if conv.MaxWorkers < 0 || conv.MaxWorkers > maxTaskWorkers {
		return fmt.Errorf("conversion.max_workers must be between 0 and %d", maxTaskWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
