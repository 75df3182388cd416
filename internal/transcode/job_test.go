package transcode

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want string
	}{
		{
			name: "standard video segment",
			job:  Job{Input: "in.mp4", Output: "out.ogv", Window: Window{Start: 148, Duration: 152}, Quality: Quality{Video: 7, Audio: 4}},
			want: "-hide_banner -nostdin -i in.mp4 -ss 148 -t 152 -c:v libtheora -q:v 7 -c:a libvorbis -q:a 4 -ac 2 -avoid_negative_ts make_zero -y out.ogv",
		},
		{
			name: "fast whole video",
			job:  Job{Input: "in.mp4", Output: "out.ogv", FastMode: true, Quality: DefaultQuality},
			want: "-hide_banner -nostdin -i in.mp4 -c:v libtheora -q:v 6 -c:a libvorbis -q:a 6 -ac 2 -g 30 -avoid_negative_ts make_zero -y out.ogv",
		},
		{
			name: "first segment keeps zero start",
			job:  Job{Input: "in.mp4", Output: "out.ogv", Window: Window{Start: 0, Duration: 152}, Quality: DefaultQuality},
			want: "-hide_banner -nostdin -i in.mp4 -ss 0 -t 152 -c:v libtheora -q:v 5 -c:a libvorbis -q:a 5 -ac 2 -avoid_negative_ts make_zero -y out.ogv",
		},
		{
			name: "audio",
			job:  Job{Input: "in.mp3", Output: "out.ogg", Kind: KindAudio, Quality: Quality{Video: 9, Audio: 3}},
			want: "-hide_banner -nostdin -i in.mp3 -vn -c:a libvorbis -q:a 3 -y out.ogg",
		},
		{
			name: "fast audio",
			job:  Job{Input: "in.mp3", Output: "out.ogg", Kind: KindAudio, FastMode: true, Quality: DefaultQuality},
			want: "-hide_banner -nostdin -i in.mp3 -vn -c:a libvorbis -q:a 6 -y out.ogg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(BuildArgs(tt.job), " ")
			if got != tt.want {
				t.Fatalf("unexpected args\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestBuildArgsOutputIsLast(t *testing.T) {
	args := BuildArgs(Job{Input: "a", Output: "/tmp/x y.ogv", Window: Window{Start: 10, Duration: 5}})
	if args[len(args)-1] != "/tmp/x y.ogv" {
		t.Fatalf("output must be the last argument, got %v", args)
	}
	if !reflect.DeepEqual(args[:4], []string{"-hide_banner", "-nostdin", "-i", "a"}) {
		t.Fatalf("unexpected prefix %v", args[:4])
	}
}

func TestDryRunQuotes(t *testing.T) {
	got := DryRun("/usr/bin/ffmpeg", Job{Input: "/media/it's here.mp4", Output: "/out/clip.ogv", Kind: KindAudio, Quality: DefaultQuality})
	want := `/usr/bin/ffmpeg -hide_banner -nostdin -i '/media/it'\''s here.mp4' -vn -c:a libvorbis -q:a 5 -y /out/clip.ogv`
	if got != want {
		t.Fatalf("unexpected dry run\n got: %s\nwant: %s", got, want)
	}
	if ShellQuote("") != "''" {
		t.Fatal("empty argument must be quoted")
	}
}

func TestKindFor(t *testing.T) {
	cases := map[string]Kind{
		"song.MP3":    KindAudio,
		"a/b.flac":    KindAudio,
		"voice.ogg":   KindAudio,
		"clip.mp4":    KindVideo,
		"clip.mkv":    KindVideo,
		"noextension": KindVideo,
	}
	for path, want := range cases {
		if got := KindFor(path); got != want {
			t.Errorf("KindFor(%q) = %s, want %s", path, got, want)
		}
	}
	if KindAudio.Extension() != ".ogg" || KindVideo.Extension() != ".ogv" {
		t.Fatal("unexpected extensions")
	}
}

func TestTailBufferKeepsSuffix(t *testing.T) {
	buf := newTailBuffer(8)
	_, _ = buf.Write([]byte("0123456789"))
	_, _ = buf.Write([]byte("ab"))
	if got := buf.String(); got != "456789ab" {
		t.Fatalf("unexpected tail %q", got)
	}
}
