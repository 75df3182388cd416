package progress

import (
	"fmt"
	"path/filepath"
	"time"
)

// Event is one lifecycle notification from the engine. Consumers type-switch
// on the concrete types below.
//
// Within one task, TaskStarted precedes every SegmentStarted/SegmentCompleted
// of that task, SegmentStarted(i) precedes SegmentCompleted(i), and
// TaskCompleted follows all of them. Events of different tasks interleave
// freely. AllTasksCompleted is always the last event of a batch.
type Event interface {
	isEvent()
}

// TaskStarted is emitted when a worker picks up a task.
type TaskStarted struct {
	BatchID      string
	TaskID       int
	Input        string
	SegmentCount int
}

// SegmentStarted is emitted right before a segment's transcoder is spawned.
type SegmentStarted struct {
	BatchID      string
	TaskID       int
	SegmentIndex int
}

// SegmentCompleted is emitted after a segment's transcoder exits.
type SegmentCompleted struct {
	BatchID      string
	TaskID       int
	SegmentIndex int
	Success      bool
	Err          error
}

// TaskCompleted is emitted once a task is merged (or has failed) and its
// temporary files are gone.
type TaskCompleted struct {
	BatchID string
	TaskID  int
	Result  TaskResult
}

// AllTasksCompleted is the terminal event of a batch.
type AllTasksCompleted struct {
	BatchID      string
	SuccessCount int
	ErrorCount   int
	Elapsed      time.Duration
	Results      []TaskResult
	Stats        Snapshot
	// Canceled reports that cancellation was observed before every task
	// was dispatched or finished.
	Canceled bool
}

func (TaskStarted) isEvent()       {}
func (SegmentStarted) isEvent()    {}
func (SegmentCompleted) isEvent()  {}
func (TaskCompleted) isEvent()     {}
func (AllTasksCompleted) isEvent() {}

// TaskResult is the outcome of one task.
type TaskResult struct {
	TaskID       int
	Input        string
	Output       string
	SegmentCount int
	Success      bool
	Err          error
	Elapsed      time.Duration
}

// Message renders the per-item result line shown in batch summaries.
func (r TaskResult) Message() string {
	name := filepath.Base(r.Input)
	if r.Success {
		return fmt.Sprintf("✓ %s -> %s (%s)", name, filepath.Base(r.Output), r.Elapsed.Round(time.Millisecond))
	}
	if r.Err != nil {
		return fmt.Sprintf("✗ %s: %v", name, r.Err)
	}
	return fmt.Sprintf("✗ %s: failed", name)
}
