package progress

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of batch counters.
type Snapshot struct {
	TotalTasks      int
	CompletedTasks  int
	SuccessfulTasks int
	FailedTasks     int

	TotalSegments      int
	CompletedSegments  int
	SuccessfulSegments int
	FailedSegments     int

	StartTime time.Time
}

// SegmentPercent returns segment completion in the range 0..100.
func (s Snapshot) SegmentPercent() float64 {
	if s.TotalSegments == 0 {
		return 0
	}
	return float64(s.CompletedSegments) * 100 / float64(s.TotalSegments)
}

// Stats holds the counters of the running batch. Every method takes the lock
// for a handful of integer updates only; callers must not hold it across
// subprocess calls.
type Stats struct {
	mu sync.Mutex
	s  Snapshot
}

// Reset clears all counters and stamps the batch start.
func (st *Stats) Reset(start time.Time) {
	st.mu.Lock()
	st.s = Snapshot{StartTime: start}
	st.mu.Unlock()
}

// AddTask registers one planned task with segments segments.
func (st *Stats) AddTask(segments int) {
	st.mu.Lock()
	st.s.TotalTasks++
	st.s.TotalSegments += segments
	st.mu.Unlock()
}

// RecordSegment counts one finished segment.
func (st *Stats) RecordSegment(success bool) {
	st.mu.Lock()
	st.s.CompletedSegments++
	if success {
		st.s.SuccessfulSegments++
	} else {
		st.s.FailedSegments++
	}
	st.mu.Unlock()
}

// RecordTask counts one finished task.
func (st *Stats) RecordTask(success bool) {
	st.mu.Lock()
	st.s.CompletedTasks++
	if success {
		st.s.SuccessfulTasks++
	} else {
		st.s.FailedTasks++
	}
	st.mu.Unlock()
}

// Snapshot returns a copy of the counters.
func (st *Stats) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}
