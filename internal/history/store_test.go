package history_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zeusmaker/internal/history"
	"zeusmaker/internal/testsupport"
)

func sampleBatch(id string, started time.Time) history.Batch {
	return history.Batch{
		ID:             id,
		StartedAt:      started,
		FinishedAt:     started.Add(90 * time.Second),
		OutputDir:      "/out",
		SuccessCount:   1,
		ErrorCount:     1,
		Elapsed:        90 * time.Second,
		TotalSegments:  7,
		FailedSegments: 1,
		Results: []history.TaskRecord{
			{TaskID: 1, Input: "/in/b.mp4", SegmentCount: 6, FailureKind: "segment", Error: "segment 3 failed: exit status 1", Elapsed: time.Minute},
			{TaskID: 0, Input: "/in/a.mp4", Output: "/out/a.ogv", SegmentCount: 1, Success: true, Elapsed: 3 * time.Second},
		},
	}
}

func TestRecordAndGetBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.RecordBatch(ctx, sampleBatch("batch-1", started)); err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}

	got, err := store.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if got == nil {
		t.Fatal("expected batch")
	}
	if !got.StartedAt.Equal(started) || got.Elapsed != 90*time.Second || got.FailedSegments != 1 {
		t.Fatalf("unexpected batch %+v", got)
	}
	if len(got.Results) != 2 || got.Results[0].TaskID != 0 || got.Results[1].TaskID != 1 {
		t.Fatalf("results should be ordered by task id: %+v", got.Results)
	}
	if !got.Results[0].Success || got.Results[0].Output != "/out/a.ogv" {
		t.Fatalf("unexpected success record %+v", got.Results[0])
	}
	if got.Results[1].FailureKind != "segment" || got.Results[1].Output != "" {
		t.Fatalf("unexpected failure record %+v", got.Results[1])
	}

	if err := store.RecordBatch(ctx, sampleBatch("batch-1", started)); err == nil {
		t.Fatal("expected duplicate batch id to fail")
	}
}

func TestGetBatchByPrefixAndMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now()
	for _, id := range []string{"abc123", "abd456"} {
		if err := store.RecordBatch(ctx, sampleBatch(id, now)); err != nil {
			t.Fatalf("RecordBatch %s: %v", id, err)
		}
	}

	got, err := store.GetBatch(ctx, "abc")
	if err != nil || got == nil || got.ID != "abc123" {
		t.Fatalf("expected prefix match, got %+v err=%v", got, err)
	}
	if _, err := store.GetBatch(ctx, "ab"); err == nil {
		t.Fatal("expected ambiguous prefix error")
	}
	missing, err := store.GetBatch(ctx, "zzz")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing batch, got %+v err=%v", missing, err)
	}
}

func TestListBatchesNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := store.RecordBatch(ctx, sampleBatch(id, base.Add(time.Duration(i)*time.Hour+time.Duration(i)*time.Millisecond))); err != nil {
			t.Fatalf("RecordBatch: %v", err)
		}
	}

	all, err := store.ListBatches(ctx, 0)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(all) != 3 || all[0].ID != "third" || all[2].ID != "first" {
		t.Fatalf("unexpected order %+v", all)
	}
	if all[0].Results != nil {
		t.Fatal("list should not load task results")
	}

	limited, err := store.ListBatches(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("expected 2 batches, got %d err=%v", len(limited), err)
	}
}

func TestPruneBefore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	old := time.Now().Add(-60 * 24 * time.Hour)
	if err := store.RecordBatch(ctx, sampleBatch("old", old)); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordBatch(ctx, sampleBatch("new", time.Now())); err != nil {
		t.Fatal(err)
	}

	removed, err := store.PruneBefore(ctx, time.Now().Add(-30*24*time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 pruned batch, got %d err=%v", removed, err)
	}
	if got, _ := store.GetBatch(ctx, "old"); got != nil {
		t.Fatal("old batch should be gone")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = db.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := history.Open(path)
	if err != nil {
		t.Fatalf("open empty file: %v", err)
	}
	if err := history.SetSchemaVersionForTest(first, 99); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = first.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
