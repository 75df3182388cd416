// Package logs reads the zeusmaker log file for the logs command.
//
// Last returns the trailing lines with a bounded ring buffer, ReadFrom picks
// up complete lines after a byte offset, and Follow streams new lines as the
// file grows until its context is cancelled. Filter narrows output to one
// batch or a search term in either log format.
package logs
