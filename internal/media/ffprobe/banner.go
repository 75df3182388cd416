package ffprobe

import (
	"regexp"
	"strconv"
)

var (
	bannerDurationPattern   = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	bannerResolutionPattern = regexp.MustCompile(`Video:.*?\b(\d{2,5})x(\d{2,5})\b`)
	bannerBitRatePattern    = regexp.MustCompile(`Duration:.*?bitrate:\s*(\d+)\s*kb/s`)
)

// ParseBannerDuration extracts the container duration in seconds from the
// stream summary ffmpeg prints to stderr for "ffmpeg -i <input>". It returns
// false when no Duration line is present or the input reports "N/A".
func ParseBannerDuration(banner string) (float64, bool) {
	match := bannerDurationPattern.FindStringSubmatch(banner)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60) + seconds, true
}

// ParseBannerResolution extracts the first video stream resolution from an
// ffmpeg stream summary.
func ParseBannerResolution(banner string) (int, int, bool) {
	match := bannerResolutionPattern.FindStringSubmatch(banner)
	if match == nil {
		return 0, 0, false
	}
	width, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, false
	}
	height, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

// ParseBannerBitRate extracts the overall container bitrate, in bits per
// second, from the Duration line of an ffmpeg stream summary.
func ParseBannerBitRate(banner string) (int64, bool) {
	match := bannerBitRatePattern.FindStringSubmatch(banner)
	if match == nil {
		return 0, false
	}
	kbps, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return kbps * 1000, true
}
