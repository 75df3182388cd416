// Package transcode drives the external ffmpeg executable.
//
// Converter runs one Theora/Vorbis (or Vorbis-only) encode per call and polls
// the child so a shared cancel flag can kill it promptly. Merger stitches the
// resulting segments back together with the concat demuxer and stream copy.
// Argument construction is pure (BuildArgs, DryRun) so plans can be previewed
// without running anything.
package transcode
