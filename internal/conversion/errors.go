package conversion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBatchRunning is returned by RunBatch while another batch is active.
var ErrBatchRunning = errors.New("a conversion batch is already running")

// taskError aggregates the segment failures of one task. Its message lists
// every failed segment; errors.Is sees through to each cause.
type taskError struct {
	msg  string
	errs []error
}

func (e *taskError) Error() string   { return e.msg }
func (e *taskError) Unwrap() []error { return e.errs }

// aggregateSegmentErrors returns nil when every slot is nil.
func aggregateSegmentErrors(results []error) error {
	var (
		parts []string
		errs  []error
	)
	for i, err := range results {
		if err == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("segment %d failed: %v", i, err))
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return &taskError{msg: strings.Join(parts, "; "), errs: errs}
}
