// Package deps resolves and verifies the external binaries zeusmaker shells
// out to. ffmpeg resolution prefers an explicit path, then a sidecar binary
// shipped next to the executable, then PATH.
package deps
