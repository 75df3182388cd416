package ffprobe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
)

// Info is the subset of media metadata the chunk planner needs.
type Info struct {
	DurationSeconds float64
	Width           int
	Height          int
	HasVideo        bool
	HasAudio        bool
	// BitRate is the overall container bitrate in bits per second, zero when
	// unknown.
	BitRate int64
	// Source names the method that produced the info: "ffprobe" or "ffmpeg".
	Source string
}

// Prober resolves media metadata with ffprobe, falling back to the stream
// summary ffmpeg prints when ffprobe is missing or cannot parse the input.
type Prober struct {
	FFprobe string
	FFmpeg  string
}

// Probe inspects path. The returned error is non-nil only when neither method
// produced a usable duration.
func (p Prober) Probe(ctx context.Context, path string) (Info, error) {
	result, probeErr := Inspect(ctx, p.FFprobe, path)
	if probeErr == nil {
		duration := result.DurationSeconds()
		if math.IsNaN(duration) || duration <= 0 {
			duration = result.StreamDurationSeconds()
		}
		if duration > 0 {
			width, height := result.VideoDimensions()
			return Info{
				DurationSeconds: duration,
				Width:           width,
				Height:          height,
				HasVideo:        result.VideoStreamCount() > 0,
				HasAudio:        result.AudioStreamCount() > 0,
				BitRate:         result.BitRate(),
				Source:          "ffprobe",
			}, nil
		}
		probeErr = errors.New("ffprobe reported no duration")
	}

	if strings.TrimSpace(p.FFmpeg) == "" {
		return Info{}, probeErr
	}
	info, bannerErr := p.probeBanner(ctx, path)
	if bannerErr != nil {
		return Info{}, fmt.Errorf("%w; ffmpeg fallback: %w", probeErr, bannerErr)
	}
	return info, nil
}

func (p Prober) probeBanner(ctx context.Context, path string) (Info, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.FFmpeg, "-hide_banner", "-nostdin", "-i", path)
	cmd.Stderr = &stderr
	// ffmpeg exits non-zero without an output file; the summary is still printed.
	_ = cmd.Run()
	if ctx.Err() != nil {
		return Info{}, ctx.Err()
	}
	banner := stderr.String()
	duration, ok := ParseBannerDuration(banner)
	if !ok || duration <= 0 {
		return Info{}, fmt.Errorf("no duration in ffmpeg output: %s", lastLine(banner))
	}
	width, height, hasVideo := ParseBannerResolution(banner)
	bitRate, _ := ParseBannerBitRate(banner)
	return Info{
		DurationSeconds: duration,
		Width:           width,
		Height:          height,
		HasVideo:        hasVideo,
		HasAudio:        strings.Contains(banner, "Audio:"),
		BitRate:         bitRate,
		Source:          "ffmpeg",
	}, nil
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
