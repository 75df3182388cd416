// Package ffprobe provides a typed wrapper around ffprobe JSON output plus a
// fallback parser for the stream summary ffmpeg prints for "ffmpeg -i".
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Info: the duration and resolution subset used for chunk planning
//   - Prober: ffprobe first, ffmpeg banner parsing second
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Prober.Probe: resolves Info with fallback
package ffprobe
