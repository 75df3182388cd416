// Package progress carries lifecycle events from conversion workers to the
// UI layer and keeps the per-batch counters.
//
// The Channel is bounded and never closed; a batch ends with exactly one
// AllTasksCompleted event. Consumers must drain it with Drain or a select on
// C, never with a bare blocking receive on a render loop.
package progress
