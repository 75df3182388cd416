package ffprobe

import "testing"

const sampleBanner = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'clip.mp4':
  Metadata:
    major_brand     : isom
  Duration: 00:15:00.04, start: 0.000000, bitrate: 2500 kb/s
  Stream #0:0[0x1](und): Video: h264 (High) (avc1 / 0x31637661), yuv420p(tv, bt709), 1920x1080 [SAR 1:1 DAR 16:9], 2300 kb/s, 29.97 fps
  Stream #0:1[0x2](und): Audio: aac (LC) (mp4a / 0x6134706D), 48000 Hz, stereo, fltp, 192 kb/s
At least one output file must be specified`

func TestParseBannerDuration(t *testing.T) {
	tests := []struct {
		name   string
		banner string
		want   float64
		ok     bool
	}{
		{"fifteen minutes", sampleBanner, 900.04, true},
		{"hours", "  Duration: 01:02:03.50, start: 0", 3723.5, true},
		{"not available", "  Duration: N/A, bitrate: N/A", 0, false},
		{"missing", "garbage", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBannerDuration(tt.banner)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("duration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBannerResolution(t *testing.T) {
	w, h, ok := ParseBannerResolution(sampleBanner)
	if !ok || w != 1920 || h != 1080 {
		t.Fatalf("unexpected resolution %dx%d ok=%v", w, h, ok)
	}
	if _, _, ok := ParseBannerResolution("Stream #0:0: Audio: mp3, 44100 Hz"); ok {
		t.Fatal("expected no resolution for audio-only input")
	}
}

func TestParseBannerBitRate(t *testing.T) {
	tests := []struct {
		name   string
		banner string
		want   int64
		ok     bool
	}{
		{"container rate", sampleBanner, 2500000, true},
		{"not available", "  Duration: N/A, bitrate: N/A", 0, false},
		{"stream rate only", "  Stream #0:0: Audio: mp3, 44100 Hz, 128 kb/s", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBannerBitRate(tt.banner)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseBannerBitRate = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
