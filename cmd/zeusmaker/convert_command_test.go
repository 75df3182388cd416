package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zeusmaker/internal/history"
	"zeusmaker/internal/outputlock"
	"zeusmaker/internal/testsupport"
)

func TestConvertCommandSplitsMergesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{Duration: 300, FailInput: "broken"})
	inputs := testsupport.WriteInputs(t, env.inputDir, "intro.mp4", "broken.mp4")

	out, _, err := runCLI(t, env.configPath, append([]string{"convert"}, inputs...)...)
	if err == nil {
		t.Fatal("expected an error when one file fails")
	}
	requireContains(t, err.Error(), "1 of 2 file(s) failed")
	requireContains(t, out, "started, 3 segment(s)")
	requireContains(t, out, "✓ intro.mp4 -> intro.ogv")
	requireContains(t, out, "Converted 1 of 2 file(s)")

	merged, readErr := os.ReadFile(filepath.Join(env.cfg.Paths.OutputDir, "intro.ogv"))
	if readErr != nil {
		t.Fatalf("read merged output: %v", readErr)
	}
	want := "ss=0 in=" + inputs[0] + "\nss=98 in=" + inputs[0] + "\nss=198 in=" + inputs[0] + "\n"
	if string(merged) != want {
		t.Fatalf("merged output mismatch\n got: %q\nwant: %q", merged, want)
	}
	for _, leftover := range []string{"intro_chunks", "broken_chunks", "broken.ogv", outputlock.FileName} {
		if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, leftover)); !os.IsNotExist(statErr) {
			t.Fatalf("expected %s to be removed, stat err=%v", leftover, statErr)
		}
	}

	store, openErr := history.Open(env.cfg.HistoryPath())
	if openErr != nil {
		t.Fatalf("open history: %v", openErr)
	}
	defer store.Close()
	batches, listErr := store.ListBatches(context.Background(), 0)
	if listErr != nil {
		t.Fatalf("list batches: %v", listErr)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 recorded batch, got %d", len(batches))
	}
	if batches[0].SuccessCount != 1 || batches[0].ErrorCount != 1 || batches[0].TotalSegments != 6 {
		t.Fatalf("unexpected batch record: %+v", batches[0])
	}
	full, getErr := store.GetBatch(context.Background(), batches[0].ID)
	if getErr != nil || full == nil {
		t.Fatalf("get batch: %v", getErr)
	}
	if full.Results[1].Success || full.Results[1].FailureKind != "segment" {
		t.Fatalf("expected segment failure for second task, got %+v", full.Results[1])
	}
}

func TestConvertCommandQualityOverrideAndNoHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{Duration: 300})
	inputs := testsupport.WriteInputs(t, env.inputDir, "clip.mkv")
	outDir := filepath.Join(env.baseDir, "custom-out")

	_, _, err := runCLI(t, env.configPath, "convert", "--no-history", "-o", outDir, "--video-quality", "8", "--audio-quality=-1", inputs[0])
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "clip.ogv")); err != nil {
		t.Fatalf("expected output in custom dir: %v", err)
	}

	lines := testsupport.ReadLog(t, env.mockLog)
	encodes := 0
	for _, line := range lines {
		if strings.Contains(line, "-f concat") {
			continue
		}
		encodes++
		requireContains(t, line, "-q:v 8")
		requireContains(t, line, "-q:a -1")
	}
	if encodes != 3 {
		t.Fatalf("expected 3 segment encodes, got %d: %v", encodes, lines)
	}
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("expected no history database, stat err=%v", err)
	}
}

func TestConvertCommandRejectsQualityOutOfRange(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})
	inputs := testsupport.WriteInputs(t, env.inputDir, "clip.mkv")

	_, _, err := runCLI(t, env.configPath, "convert", "--video-quality", "11", inputs[0])
	if err == nil {
		t.Fatal("expected quality validation error")
	}
	requireContains(t, err.Error(), "--video-quality must be between 0 and 10")
	if lines := testsupport.ReadLog(t, env.mockLog); len(lines) != 0 {
		t.Fatalf("expected no transcoder runs, got %v", lines)
	}
}

func TestConvertCommandRefusesLockedOutputDir(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{Duration: 30})
	inputs := testsupport.WriteInputs(t, env.inputDir, "clip.mkv")

	lock, err := outputlock.Acquire(env.cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, env.configPath, "convert", inputs[0])
	if err == nil {
		t.Fatal("expected lock error")
	}
	requireContains(t, err.Error(), outputlock.ErrLocked.Error())
}

func TestConvertCommandReportsPreflightFailure(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})
	env.cfg.FFmpeg.Binary = filepath.Join(env.baseDir, "bin", "missing-ffmpeg")
	writeTestConfig(t, env.configPath, env.cfg)
	inputs := testsupport.WriteInputs(t, env.inputDir, "clip.mkv")

	_, stderr, err := runCLI(t, env.configPath, "convert", inputs[0])
	if err == nil {
		t.Fatal("expected preflight error")
	}
	requireContains(t, stderr, "FFmpeg")
	requireContains(t, stderr, "[ERROR]")
}

func TestConvertCommandKeepsLeftoversWhenPreflightFails(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})
	env.cfg.FFmpeg.Binary = filepath.Join(env.baseDir, "bin", "missing-ffmpeg")
	writeTestConfig(t, env.configPath, env.cfg)
	inputs := testsupport.WriteInputs(t, env.inputDir, "clip.mkv")
	stale := filepath.Join(env.cfg.Paths.OutputDir, "old_chunks")
	testsupport.WriteFile(t, filepath.Join(stale, "old_chunk_000.ogv"), 64)

	if _, _, err := runCLI(t, env.configPath, "convert", inputs[0]); err == nil {
		t.Fatal("expected preflight error")
	}
	if _, err := os.Stat(filepath.Join(stale, "old_chunk_000.ogv")); err != nil {
		t.Fatalf("expected leftovers kept after a failed preflight: %v", err)
	}
}

func TestConvertCommandRemovesStaleChunkDirs(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{Duration: 30})
	inputs := testsupport.WriteInputs(t, env.inputDir, "clip.mkv")
	stale := filepath.Join(env.cfg.Paths.OutputDir, "old_chunks")
	testsupport.WriteFile(t, filepath.Join(stale, "old_chunk_000.ogv"), 64)

	if _, _, err := runCLI(t, env.configPath, "convert", inputs[0]); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale chunk dir removed, stat err=%v", err)
	}
}
