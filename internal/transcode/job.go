package transcode

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Kind selects the encoder chain for a job.
type Kind int

const (
	KindVideo Kind = iota
	KindAudio
)

func (k Kind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "video"
}

// Extension returns the container extension of the final output.
func (k Kind) Extension() string {
	if k == KindAudio {
		return ".ogg"
	}
	return ".ogv"
}

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".wma":  {},
}

// KindFor classifies an input by extension. Anything not recognised as audio
// is treated as video and left for the transcoder to reject.
func KindFor(path string) Kind {
	if _, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return KindAudio
	}
	return KindVideo
}

// Fast mode quality and keyframe interval.
const (
	FastQuality     = 6
	FastKeyInterval = 30
)

// Quality holds the Theora (video) and Vorbis (audio) quality knobs, both on
// ffmpeg's 0..10 scale.
type Quality struct {
	Video int
	Audio int
}

// DefaultQuality matches the built-in [conversion] values.
var DefaultQuality = Quality{Video: 5, Audio: 5}

// Window is a time range in whole seconds. The zero Window means the whole
// input.
type Window struct {
	Start    int
	Duration int
}

// IsZero reports whether the window covers the whole input.
func (w Window) IsZero() bool {
	return w.Start == 0 && w.Duration == 0
}

// Job is one transcoder invocation.
type Job struct {
	Input    string
	Output   string
	Kind     Kind
	Window   Window
	FastMode bool
	Quality  Quality
}

// BuildArgs returns the transcoder argv (without the binary) for job.
func BuildArgs(job Job) []string {
	args := []string{"-hide_banner", "-nostdin", "-i", job.Input}

	if job.Kind == KindAudio {
		aq := job.Quality.Audio
		if job.FastMode {
			aq = FastQuality
		}
		args = append(args, windowArgs(job.Window)...)
		return append(args, "-vn", "-c:a", "libvorbis", "-q:a", strconv.Itoa(aq), "-y", job.Output)
	}

	vq, aq := job.Quality.Video, job.Quality.Audio
	if job.FastMode {
		vq, aq = FastQuality, FastQuality
	}
	args = append(args, windowArgs(job.Window)...)
	args = append(args,
		"-c:v", "libtheora", "-q:v", strconv.Itoa(vq),
		"-c:a", "libvorbis", "-q:a", strconv.Itoa(aq),
		"-ac", "2",
	)
	if job.FastMode {
		args = append(args, "-g", strconv.Itoa(FastKeyInterval))
	}
	return append(args, "-avoid_negative_ts", "make_zero", "-y", job.Output)
}

func windowArgs(w Window) []string {
	if w.IsZero() {
		return nil
	}
	args := []string{"-ss", strconv.Itoa(w.Start)}
	if w.Duration > 0 {
		args = append(args, "-t", strconv.Itoa(w.Duration))
	}
	return args
}

// DryRun renders the command line for job as it would be typed into a POSIX
// shell.
func DryRun(binary string, job Job) string {
	args := BuildArgs(job)
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellQuote(binary))
	for _, arg := range args {
		parts = append(parts, ShellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// ShellQuote single-quotes s unless it consists only of characters that need
// no quoting. Embedded single quotes become '\''.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=,+@%", r)
}
