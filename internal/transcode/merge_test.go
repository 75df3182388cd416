package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zeusmaker/internal/services"
	"zeusmaker/internal/testsupport"
)

func writeSegments(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("clip_chunk_%03d.ogv", i))
		if err := os.WriteFile(path, []byte(fmt.Sprintf("segment-%d\n", i)), 0o644); err != nil {
			t.Fatalf("write segment: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestMergeConcatenatesInOrder(t *testing.T) {
	requireShell(t)
	tmp := t.TempDir()
	merger := &Merger{Binary: testsupport.MockFFmpeg(t, filepath.Join(tmp, "bin"), testsupport.MockOptions{})}
	chunks := filepath.Join(tmp, "chunks")
	if err := os.MkdirAll(chunks, 0o755); err != nil {
		t.Fatal(err)
	}
	segments := writeSegments(t, chunks, 4)

	final := filepath.Join(tmp, "clip.ogv")
	if err := merger.Merge(context.Background(), segments, final); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	want := "segment-0\nsegment-1\nsegment-2\nsegment-3\n"
	if string(data) != want {
		t.Fatalf("unexpected merged content %q", data)
	}
	if _, err := os.Stat(ManifestPath(final)); !os.IsNotExist(err) {
		t.Fatalf("manifest should be removed, stat err=%v", err)
	}
}

func TestMergeSingleSegment(t *testing.T) {
	tmp := t.TempDir()
	merger := &Merger{Binary: filepath.Join(tmp, "never-run")}
	segments := writeSegments(t, tmp, 1)

	if err := merger.Merge(context.Background(), segments, segments[0]); err != nil {
		t.Fatalf("in-place merge should be a no-op: %v", err)
	}

	final := filepath.Join(tmp, "out", "clip.ogv")
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := merger.Merge(context.Background(), segments, final); err != nil {
		t.Fatalf("move merge: %v", err)
	}
	data, err := os.ReadFile(final)
	if err != nil || string(data) != "segment-0\n" {
		t.Fatalf("unexpected move result %q, %v", data, err)
	}
	if _, err := os.Stat(segments[0]); !os.IsNotExist(err) {
		t.Fatalf("segment should be moved, stat err=%v", err)
	}
}

func TestMergeFailureWrapsStderr(t *testing.T) {
	requireShell(t)
	tmp := t.TempDir()
	merger := &Merger{Binary: testsupport.MockFFmpeg(t, filepath.Join(tmp, "bin"), testsupport.MockOptions{FailConcat: true})}
	segments := writeSegments(t, tmp, 2)

	final := filepath.Join(tmp, "clip.ogv")
	err := merger.Merge(context.Background(), segments, final)
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected ErrMerge, got %v", err)
	}
	if !strings.Contains(err.Error(), "mock merge failure") {
		t.Fatalf("expected stderr in error, got %q", err)
	}
	if _, err := os.Stat(ManifestPath(final)); !os.IsNotExist(err) {
		t.Fatal("manifest should be removed after a failed merge")
	}
}

func TestMergeRejectsEmpty(t *testing.T) {
	err := (&Merger{}).Merge(context.Background(), nil, "out.ogv")
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected ErrMerge, got %v", err)
	}
}

func TestManifestEscapesQuotes(t *testing.T) {
	got, err := Manifest([]string{"/tmp/a.ogv", "/tmp/it's.ogv"})
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	want := "file '/tmp/a.ogv'\nfile '/tmp/it'\\''s.ogv'\n"
	if got != want {
		t.Fatalf("unexpected manifest\n got: %q\nwant: %q", got, want)
	}
	if ManifestPath("/out/clip.ogv") != "/out/clip.filelist.txt" {
		t.Fatalf("unexpected manifest path %s", ManifestPath("/out/clip.ogv"))
	}
}
