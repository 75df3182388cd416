// Package staging finds and removes conversion leftovers in an output
// directory: per-task chunk directories and concat manifests that a crashed
// or killed run never cleaned up.
package staging
