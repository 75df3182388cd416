package logging

import "sync"

// ProgressSampler thins out segment progress logs. It remembers the last
// logged percentage bucket of every task, so the segment pools of all tasks
// in a batch can share one sampler. It is safe for concurrent use.
type ProgressSampler struct {
	bucketSize float64

	mu         sync.Mutex
	lastBucket map[int]int
}

// NewProgressSampler constructs a sampler that emits when a task's segment
// completion crosses a bucket boundary (default 25%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: make(map[int]int)}
}

// Observe records that completed of total segments of taskID are done. It
// returns the completion percentage and whether this step opened a new bucket
// for the task. Observations may arrive out of order; a lower count than one
// already seen never logs.
func (s *ProgressSampler) Observe(taskID, completed, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	completed = min(max(completed, 0), total)
	percent := float64(completed) * 100 / float64(total)
	if s == nil {
		return percent, true
	}
	bucket := int(percent / s.bucketSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	last, seen := s.lastBucket[taskID]
	if seen && bucket <= last {
		return percent, false
	}
	s.lastBucket[taskID] = bucket
	return percent, true
}

// Forget drops the state of a finished task.
func (s *ProgressSampler) Forget(taskID int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.lastBucket, taskID)
	s.mu.Unlock()
}
