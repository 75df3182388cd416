package conversion

import (
	"context"
	"fmt"
	"sync"

	"zeusmaker/internal/logging"
	"zeusmaker/internal/progress"
	"zeusmaker/internal/services"
	"zeusmaker/internal/workpool"
)

// runSegments converts every segment of task on its own pool and returns one
// result per segment index. A failed segment never stops its siblings;
// segments skipped because of cancellation get an ErrCanceled result and no
// events.
func (e *Engine) runSegments(ctx context.Context, run *batchRun, task *Task) []error {
	n := len(task.Segments)
	results := make([]error, n)
	logger := logging.WithContext(ctx, e.logger)

	var (
		mu   sync.Mutex
		done int
	)
	defer run.sampler.Forget(task.ID)

	pool := workpool.New(fmt.Sprintf("task-%d-segments", task.ID), e.sizer.InnerPoolSize(n))
	dispatched := pool.Run(ctx, n, e.cancel.IsSet, func(ctx context.Context, i int) {
		segCtx := services.WithSegmentIndex(ctx, i)
		e.events.Send(progress.SegmentStarted{BatchID: run.batch.ID, TaskID: task.ID, SegmentIndex: i})

		err := run.converter.Convert(segCtx, task.Job(i))

		mu.Lock()
		results[i] = err
		done++
		completed := done
		mu.Unlock()
		percent, logProgress := run.sampler.Observe(task.ID, completed, n)

		e.stats.RecordSegment(err == nil)
		if err != nil && services.FailureKind(err) != "canceled" {
			logging.WarnWithContext(logging.WithContext(segCtx, e.logger), "segment failed", "segment_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the ffmpeg output in the error"),
				logging.String(logging.FieldImpact, "task will not be merged"),
			)
		}
		if logProgress && n > 1 {
			logger.Info("segment progress",
				logging.Int("completed", completed),
				logging.Int(logging.FieldSegmentCount, n),
				logging.Float64("percent", percent),
			)
		}
		e.events.Send(progress.SegmentCompleted{
			BatchID:      run.batch.ID,
			TaskID:       task.ID,
			SegmentIndex: i,
			Success:      err == nil,
			Err:          err,
		})
	})

	for i, ok := range dispatched {
		if !ok {
			results[i] = services.Wrap(services.ErrCanceled, "segments", "dispatch", fmt.Sprintf("segment %d not started", i), nil)
		}
	}
	return results
}
