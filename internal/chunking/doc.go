// Package chunking decides how an input is split into time segments for
// parallel conversion.
//
// Short inputs (at or below the configured segment duration, or two minutes
// with smart chunking) are converted whole in fast mode. Longer inputs are
// split into 3, 6, or 12 segments depending on length, each padded with a
// small overlap so the eventual concatenation hides cut artifacts. The last
// segment always absorbs the rounding remainder, so coverage is exact.
package chunking
