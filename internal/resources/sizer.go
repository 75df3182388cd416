package resources

import "runtime"

const (
	minWorkers         = 2
	maxTaskWorkers     = 8
	maxSegmentWorkers  = 12
	maxInnerWorkers    = 8
	largeFileThreshold = 100 << 20
	smallFileThreshold = 10 << 20
	manyFilesThreshold = 50
)

// Sizer computes worker counts from the CPU count. Every method performs a
// single core-count query, so callers re-evaluate it before each batch rather
// than caching the result.
type Sizer struct {
	// Cores returns the usable CPU count. Nil means runtime.NumCPU.
	Cores func() int
}

// NewSizer returns a Sizer backed by runtime.NumCPU.
func NewSizer() Sizer {
	return Sizer{Cores: runtime.NumCPU}
}

func (s Sizer) cores() int {
	if s.Cores == nil {
		return runtime.NumCPU()
	}
	if n := s.Cores(); n > 0 {
		return n
	}
	return 1
}

// TaskPoolSize sizes the outer, per-file pool. Most of its time is spent
// waiting on subprocesses, so it allows two workers per core up to 8.
func (s Sizer) TaskPoolSize() int {
	return clamp(s.cores()*2, minWorkers, maxTaskWorkers)
}

// SegmentPoolSize sizes CPU-heavy segment work: two workers per core up to 12.
func (s Sizer) SegmentPoolSize() int {
	return clamp(s.cores()*2, minWorkers, maxSegmentWorkers)
}

// InnerPoolSize sizes the per-task segment pool for segmentCount segments.
func (s Sizer) InnerPoolSize(segmentCount int) int {
	return min(s.SegmentPoolSize(), clamp(segmentCount/2, minWorkers, maxInnerWorkers))
}

// AdjustForFileSizes scales a worker count by the average input size. Very
// large inputs halve the pool so concurrent ffmpeg processes do not thrash the
// disk; many small inputs grow it by half because each one finishes quickly.
func AdjustForFileSizes(workers int, sizes []int64) int {
	if len(sizes) == 0 {
		return max(workers, minWorkers)
	}
	var total int64
	for _, size := range sizes {
		total += size
	}
	avg := total / int64(len(sizes))
	switch {
	case avg > largeFileThreshold:
		return max(workers/2, minWorkers)
	case avg < smallFileThreshold && len(sizes) > manyFilesThreshold:
		return min(workers*3/2, maxSegmentWorkers)
	default:
		return max(workers, minWorkers)
	}
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
