// Package conversion is the batch engine: it plans each input into segments,
// runs them on nested worker pools, merges the results, and reports progress.
//
// Ordering guarantees on Engine.Events:
//   - TaskStarted precedes every segment event of its task.
//   - SegmentStarted(i) precedes SegmentCompleted(i).
//   - TaskCompleted follows every segment event of its task.
//   - AllTasksCompleted is the last event of a batch.
//
// Cancel sets a shared flag that every pool checks before dispatching and
// every running transcoder checks at each poll; in-flight processes are
// killed, so a cancelled batch finishes within roughly one poll interval.
package conversion
