package history

import "time"

// Batch is one finished conversion run.
type Batch struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	OutputDir      string
	SuccessCount   int
	ErrorCount     int
	Canceled       bool
	Elapsed        time.Duration
	TotalSegments  int
	FailedSegments int
	// Results is only populated by GetBatch.
	Results []TaskRecord
}

// TaskRecord is the stored outcome of one input.
type TaskRecord struct {
	TaskID       int
	Input        string
	Output       string
	SegmentCount int
	Success      bool
	FailureKind  string
	Error        string
	Elapsed      time.Duration
}
