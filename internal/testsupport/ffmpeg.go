package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// MockOptions controls the behaviour of the script written by MockFFmpeg.
type MockOptions struct {
	// FailStart makes any invocation whose -ss value equals it exit 1.
	// Zero disables the check.
	FailStart int
	// FailInput makes any invocation whose input path contains it exit 1.
	FailInput string
	// FailConcat makes every concat invocation exit 1.
	FailConcat bool
	// Delay is slept (in seconds) before producing output.
	Delay float64
	// LogPath, when set, receives one line of argv per encode or concat
	// invocation. Probe invocations are not logged.
	LogPath string
	// Duration is reported in the stream summary printed for
	// "ffmpeg -i <input>" probes. Zero prints a summary without one.
	Duration int
}

// MockFFmpeg writes a POSIX shell script that behaves like the subset of
// ffmpeg the converter and merger use and returns its path. Encodes write a
// small text file naming the window; concat runs cat the manifest's files in
// order into the output.
func MockFFmpeg(t testing.TB, dir string, opts MockOptions) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	failStart := ""
	if opts.FailStart > 0 {
		failStart = strconv.Itoa(opts.FailStart)
	}
	failConcat := ""
	if opts.FailConcat {
		failConcat = "1"
	}
	delay := ""
	if opts.Delay > 0 {
		delay = strconv.FormatFloat(opts.Delay, 'f', -1, 64)
	}

	banner := "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'input':"
	if opts.Duration > 0 {
		banner += fmt.Sprintf("\n  Duration: %02d:%02d:%02d.00, start: 0.000000, bitrate: 1000 kb/s",
			opts.Duration/3600, (opts.Duration%3600)/60, opts.Duration%60)
	}
	banner += "\n  Stream #0:0: Video: h264, yuv420p, 640x360\n  Stream #0:1: Audio: aac, 44100 Hz, stereo"

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString(`if [ "$1" = "-version" ]; then echo "ffmpeg version 6.1-mock Copyright (c) 2000-2023 the FFmpeg developers"; exit 0; fi` + "\n")
	fmt.Fprintf(&b, "log=%s\nfail_start=%s\nfail_input=%s\nfail_concat=%s\ndelay=%s\nbanner=%s\n",
		quote(opts.LogPath), quote(failStart), quote(opts.FailInput), quote(failConcat), quote(delay), quote(banner))
	b.WriteString(`for last; do :; done
out="$last"
prev=""
ss=""
in=""
concat=""
for arg in "$@"; do
  case "$prev" in
    -ss) ss="$arg" ;;
    -i) in="$arg" ;;
    -f) [ "$arg" = "concat" ] && concat=1 ;;
  esac
  prev="$arg"
done
if [ "$in" = "$out" ]; then
  printf '%s\n' "$banner" >&2
  echo "At least one output file must be specified" >&2
  exit 1
fi
[ -n "$log" ] && echo "$*" >> "$log"
if [ -n "$delay" ]; then sleep "$delay" >/dev/null 2>&1; fi
if [ -n "$concat" ]; then
  if [ -n "$fail_concat" ]; then echo "concat: mock merge failure" >&2; exit 1; fi
  : > "$out" || exit 1
  for f in $(sed -n "s/^file '\(.*\)'\$/\1/p" "$in"); do
    cat "$f" >> "$out" || { echo "concat: missing $f" >&2; exit 1; }
  done
  exit 0
fi
if [ -n "$fail_start" ] && [ "$ss" = "$fail_start" ]; then
  echo "mock encoder failure at $ss" >&2
  exit 1
fi
if [ -n "$fail_input" ]; then
  case "$in" in *"$fail_input"*) echo "mock encoder failure for $in" >&2; exit 1 ;; esac
fi
printf 'ss=%s in=%s\n' "$ss" "$in" > "$out"
`)

	path := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatalf("write mock ffmpeg: %v", err)
	}
	return path
}

// ReadLog returns the argv lines recorded by a mock with LogPath set.
func ReadLog(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read mock log: %v", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
