package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"zeusmaker/internal/deps"
	"zeusmaker/internal/preflight"
	"zeusmaker/internal/progress"
	"zeusmaker/internal/services"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPreflightLines(t *testing.T) {
	lines := preflightLines([]preflight.Result{
		{Name: "Output directory", Passed: true, Detail: "/out (read/write ok)"},
		{Name: "FFmpeg", Detail: "ffmpeg (error: not found)"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	requireContains(t, lines[0], "[OK] /out (read/write ok)")
	requireContains(t, lines[1], "[ERROR] ffmpeg (error: not found)")
}

func TestDependencyKind(t *testing.T) {
	cases := []struct {
		status deps.Status
		want   statusKind
	}{
		{deps.Status{Available: true}, statusOK},
		{deps.Status{Optional: true}, statusWarn},
		{deps.Status{}, statusError},
	}
	for _, tc := range cases {
		if got := dependencyKind(tc.status); got != tc.want {
			t.Fatalf("dependencyKind(%+v) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestResultKind(t *testing.T) {
	if got := resultKind(progress.TaskResult{Success: true}); got != statusOK {
		t.Fatalf("success: got %v", got)
	}
	canceled := services.Wrap(services.ErrCanceled, "segment", "run", "killed", nil)
	if got := resultKind(progress.TaskResult{Err: canceled}); got != statusWarn {
		t.Fatalf("canceled: got %v", got)
	}
	if got := resultKind(progress.TaskResult{Err: errors.New("boom")}); got != statusError {
		t.Fatalf("failure: got %v", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
