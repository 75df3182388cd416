// Package outputlock keeps two zeusmaker processes from converting into the
// same output directory at once, which would race on output name
// reservation and temporary segment directories.
package outputlock
