// Package workpool provides the bounded worker pool and cancellation flag the
// conversion engine nests at two levels: one pool over the files of a batch
// and, inside each file's worker, one pool over that file's segments.
//
// Cancellation is cooperative. Workers check the Flag before starting each
// job; long-running jobs poll it themselves.
package workpool
