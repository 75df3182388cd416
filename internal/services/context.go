package services

import "context"

type contextKey string

const (
	batchIDKey      contextKey = "batch_id"
	taskIDKey       contextKey = "task_id"
	segmentIndexKey contextKey = "segment_index"
)

// WithBatchID annotates context with the batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(batchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTaskID annotates context with the task index within its batch.
func WithTaskID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, taskIDKey, id)
}

// TaskIDFromContext extracts the task index if present.
func TaskIDFromContext(ctx context.Context) (int, bool) {
	switch val := ctx.Value(taskIDKey).(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithSegmentIndex annotates context with the segment index within its task.
func WithSegmentIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, segmentIndexKey, index)
}

// SegmentIndexFromContext extracts the segment index if present.
func SegmentIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(segmentIndexKey).(int)
	return v, ok
}
