package chunking

import (
	"fmt"

	"zeusmaker/internal/services"
)

// FastModeThreshold is the duration in seconds at or below which an input is
// always converted in one piece with the fixed-quality encoder settings.
const FastModeThreshold = 120

// Config is the chunking policy for one batch. It is built once and never
// mutated after planning starts.
type Config struct {
	SegmentDuration    int
	OverlapDuration    int
	MaxSegments        int
	MinSegmentDuration int
	SmartChunking      bool
	FastMode           bool
}

// DefaultConfig mirrors the built-in [conversion] defaults.
func DefaultConfig() Config {
	return Config{
		SegmentDuration:    60,
		OverlapDuration:    2,
		MaxSegments:        16,
		MinSegmentDuration: 30,
		SmartChunking:      true,
	}
}

// Validate reports policy values the planner cannot work with.
func (c Config) Validate() error {
	switch {
	case c.SegmentDuration <= 0:
		return services.Wrap(services.ErrPlan, "chunking", "validate", "segment duration must be positive", nil)
	case c.MaxSegments <= 0:
		return services.Wrap(services.ErrPlan, "chunking", "validate", "max segments must be positive", nil)
	case c.MinSegmentDuration <= 0:
		return services.Wrap(services.ErrPlan, "chunking", "validate", "min segment duration must be positive", nil)
	case c.OverlapDuration < 0:
		return services.Wrap(services.ErrPlan, "chunking", "validate", "overlap duration must not be negative", nil)
	}
	return nil
}

// Segment is one time slice of an input, in whole seconds. A Duration of zero
// means "until the end of the input" and only occurs for whole-file plans of
// inputs whose length is unknown.
type Segment struct {
	Index    int
	Start    int
	Duration int
}

// End returns Start+Duration.
func (s Segment) End() int {
	return s.Start + s.Duration
}

// Plan is the planner's decision for one input.
type Plan struct {
	Segments []Segment
	FastMode bool
	// TotalDuration is the probed length the plan covers; zero when unknown.
	TotalDuration int
}

// Whole reports whether the input is converted in one piece.
func (p Plan) Whole() bool {
	return len(p.Segments) == 1
}

// PlanSegments splits an input of durationSeconds into segments. Unknown or zero
// durations produce a single whole-file segment rather than an error so a
// batch never stalls on unreadable metadata; only an invalid policy fails.
func PlanSegments(durationSeconds int, cfg Config) (Plan, error) {
	if err := cfg.Validate(); err != nil {
		return Plan{}, err
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	plan := Plan{TotalDuration: durationSeconds, FastMode: cfg.FastMode}
	count := SegmentCount(durationSeconds, cfg)
	if count <= 1 {
		plan.Segments = []Segment{{Index: 0, Start: 0, Duration: durationSeconds}}
		if durationSeconds > 0 && durationSeconds <= FastModeThreshold {
			plan.FastMode = true
		}
		return plan, nil
	}

	effective := ceilDiv(durationSeconds, count)
	if effective < cfg.MinSegmentDuration {
		effective = cfg.MinSegmentDuration
		count = min(count, ceilDiv(durationSeconds, effective))
	}
	// The last segment must start before the end of the input.
	for count > 1 && (count-1)*effective-cfg.OverlapDuration >= durationSeconds {
		count--
	}
	if count <= 1 {
		plan.Segments = []Segment{{Index: 0, Start: 0, Duration: durationSeconds}}
		return plan, nil
	}

	segments := make([]Segment, count)
	last := count - 1
	for i := range segments {
		start := 0
		if i > 0 {
			start = max(i*effective-cfg.OverlapDuration, 0)
		}
		duration := effective + cfg.OverlapDuration
		if i == last {
			duration = durationSeconds - start
		}
		segments[i] = Segment{Index: i, Start: start, Duration: duration}
	}
	plan.Segments = segments
	return plan, nil
}

// SegmentCount returns how many segments an input of durationSeconds is split
// into. The bracket table is monotonically non-decreasing in duration and is
// always capped by MaxSegments.
func SegmentCount(durationSeconds int, cfg Config) int {
	if durationSeconds <= 0 || !cfg.SmartChunking || durationSeconds <= cfg.SegmentDuration {
		return 1
	}
	var count int
	switch {
	case durationSeconds <= FastModeThreshold:
		count = 1
	case durationSeconds <= 600:
		count = 3
	case durationSeconds <= 1800:
		count = 6
	default:
		count = 12
	}
	return max(min(count, cfg.MaxSegments), 1)
}

// SegmentFileName names the temporary output of one segment.
func SegmentFileName(stem string, index int) string {
	return fmt.Sprintf("%s_chunk_%03d.ogv", stem, index)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
