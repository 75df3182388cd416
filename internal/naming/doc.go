// Package naming derives output file names for converted media: ASCII-safe
// stems, length-capped paths, and batch-unique reservations.
package naming
