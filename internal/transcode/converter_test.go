package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"zeusmaker/internal/services"
	"zeusmaker/internal/testsupport"
	"zeusmaker/internal/workpool"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("mock ffmpeg requires a POSIX shell")
	}
}

func TestConvertWritesOutput(t *testing.T) {
	requireShell(t)
	tmp := t.TempDir()
	conv := &Converter{Binary: testsupport.MockFFmpeg(t, tmp, testsupport.MockOptions{}), PollInterval: 5 * time.Millisecond}

	out := filepath.Join(tmp, "nested", "clip_chunk_001.ogv")
	job := Job{Input: "/in/clip.mp4", Output: out, Window: Window{Start: 148, Duration: 152}, Quality: DefaultQuality}
	if err := conv.Convert(context.Background(), job); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "ss=148") {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestConvertFailureCarriesStderr(t *testing.T) {
	requireShell(t)
	tmp := t.TempDir()
	conv := &Converter{Binary: testsupport.MockFFmpeg(t, tmp, testsupport.MockOptions{FailStart: 448})}

	err := conv.Convert(context.Background(), Job{Input: "in.mp4", Output: filepath.Join(tmp, "seg.ogv"), Window: Window{Start: 448, Duration: 152}})
	if !errors.Is(err, services.ErrSegment) {
		t.Fatalf("expected ErrSegment, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "exit status 1") || !strings.Contains(msg, "mock encoder failure at 448") {
		t.Fatalf("error should carry exit status and stderr, got %q", msg)
	}
}

func TestConvertSpawnFailure(t *testing.T) {
	tmp := t.TempDir()
	conv := &Converter{Binary: filepath.Join(tmp, "missing-ffmpeg")}
	err := conv.Convert(context.Background(), Job{Input: "in.mp4", Output: filepath.Join(tmp, "out.ogv")})
	if !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
}

func TestConvertKilledByFlag(t *testing.T) {
	requireShell(t)
	tmp := t.TempDir()
	flag := &workpool.Flag{}
	conv := &Converter{
		Binary:       testsupport.MockFFmpeg(t, tmp, testsupport.MockOptions{Delay: 10}),
		PollInterval: 10 * time.Millisecond,
		Cancel:       flag,
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		flag.Set()
	}()

	started := time.Now()
	err := conv.Convert(context.Background(), Job{Input: "in.mp4", Output: filepath.Join(tmp, "out.ogv")})
	if !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Fatalf("kill took too long: %s", elapsed)
	}
}

func TestConvertKilledByContext(t *testing.T) {
	requireShell(t)
	tmp := t.TempDir()
	conv := &Converter{Binary: testsupport.MockFFmpeg(t, tmp, testsupport.MockOptions{Delay: 10})}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := conv.Convert(ctx, Job{Input: "in.mp4", Output: filepath.Join(tmp, "out.ogv")})
	if !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the context cause to be kept, got %v", err)
	}
}

func TestConvertRefusesWhenAlreadyCancelled(t *testing.T) {
	flag := &workpool.Flag{}
	flag.Set()
	conv := &Converter{Binary: "unused", Cancel: flag}
	if err := conv.Convert(context.Background(), Job{}); !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
}
