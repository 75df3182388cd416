package logs_test

import (
	"testing"

	"zeusmaker/internal/logs"
)

func TestFilterMatchesBothFormats(t *testing.T) {
	lines := []string{
		`2026-01-02T03:04:05Z INFO conversion: task converted batch_id=abc123 task_id=0`,
		`{"level":"INFO","msg":"task converted","batch_id":"abc123"}`,
		`2026-01-02T03:04:05Z WARN conversion: segment failed batch_id=zzz999`,
	}
	got := logs.Filter{BatchID: "abc"}.Apply(lines)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %#v", got)
	}
	got = logs.Filter{Contains: "SEGMENT"}.Apply(lines)
	if len(got) != 1 || got[0] != lines[2] {
		t.Fatalf("unexpected search result: %#v", got)
	}
	if got := (logs.Filter{}).Apply(lines); len(got) != 3 {
		t.Fatalf("empty filter should keep every line, got %d", len(got))
	}
}
