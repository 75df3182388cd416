package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"zeusmaker/internal/history"
	"zeusmaker/internal/testsupport"
)

func seedHistory(t *testing.T, env *cliTestEnv) {
	t.Helper()
	store, err := history.Open(env.cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	now := time.Now().UTC()
	batches := []history.Batch{
		{
			ID:           "0a1b2c3d-0000-4000-8000-000000000001",
			StartedAt:    now.Add(-90 * 24 * time.Hour),
			FinishedAt:   now.Add(-90*24*time.Hour + time.Minute),
			OutputDir:    env.cfg.Paths.OutputDir,
			SuccessCount: 1,
			Elapsed:      time.Minute,
			Results: []history.TaskRecord{
				{TaskID: 0, Input: "/in/old.mp4", Output: "/out/old.ogv", SegmentCount: 1, Success: true, Elapsed: time.Minute},
			},
		},
		{
			ID:            "9f8e7d6c-0000-4000-8000-000000000002",
			StartedAt:     now.Add(-time.Hour),
			FinishedAt:    now.Add(-time.Hour + 2*time.Minute),
			OutputDir:     env.cfg.Paths.OutputDir,
			SuccessCount:  1,
			ErrorCount:    1,
			Elapsed:       2 * time.Minute,
			TotalSegments: 4,
			Results: []history.TaskRecord{
				{TaskID: 0, Input: "/in/intro.mp4", Output: "/out/intro.ogv", SegmentCount: 3, Success: true, Elapsed: time.Minute},
				{TaskID: 1, Input: "/in/broken.mp4", SegmentCount: 1, FailureKind: "segment", Error: "segment 0 failed: exit status 1", Elapsed: time.Second},
			},
		},
	}
	for _, b := range batches {
		if err := store.RecordBatch(context.Background(), b); err != nil {
			t.Fatalf("record batch: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
}

func TestHistoryListAndShow(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})
	seedHistory(t, env)

	out, _, err := runCLI(t, env.configPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "9f8e7d6c")
	requireContains(t, out, "0a1b2c3d")

	out, _, err = runCLI(t, env.configPath, "history", "show", "9f8e")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Batch 9f8e7d6c-0000-4000-8000-000000000002")
	requireContains(t, out, "/out/intro.ogv")
	requireContains(t, out, "segment 0 failed: exit status 1")

	if _, _, err := runCLI(t, env.configPath, "history", "show", "ffff"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestHistoryPruneRemovesOldBatches(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})
	seedHistory(t, env)

	out, _, err := runCLI(t, env.configPath, "history", "prune", "--days", "30")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 1 batch(es)")

	out, _, err = runCLI(t, env.configPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "9f8e7d6c")
	if strings.Contains(out, "0a1b2c3d") {
		t.Fatalf("expected pruned batch to be gone, got %q", out)
	}
}

func TestHistoryListEmpty(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})
	out, _, err := runCLI(t, env.configPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No batches recorded")
}
