package main

import (
	"os"
	"path/filepath"
	"testing"

	"zeusmaker/internal/testsupport"
)

func TestPlanCommandShowsSegmentsWithoutConverting(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{Duration: 1200})
	inputs := testsupport.WriteInputs(t, env.inputDir, "Été à Paris.mp4", "theme.mp3")
	missing := filepath.Join(env.inputDir, "missing.mp4")

	out, _, err := runCLI(t, env.configPath, "plan", "--commands", inputs[0], inputs[1], missing)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Ete_a_Paris.ogv")
	requireContains(t, out, "theme.ogg")
	requireContains(t, out, "Theme")
	requireContains(t, out, "20:00")
	requireContains(t, out, "1 Mb/s")
	requireContains(t, out, "error: ")
	requireContains(t, out, "-ss 0 -t 202")
	requireContains(t, out, "Ete_a_Paris_chunk_005.ogv")

	if lines := testsupport.ReadLog(t, env.mockLog); len(lines) != 0 {
		t.Fatalf("plan must not run the encoder, got %v", lines)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "Ete_a_Paris_chunks")); !os.IsNotExist(err) {
		t.Fatalf("plan must not create chunk directories, stat err=%v", err)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[int]string{
		59:   "0:59",
		61:   "1:01",
		3600: "1:00:00",
		3725: "1:02:05",
	}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Fatalf("formatSeconds(%d) = %q, want %q", in, got, want)
		}
	}
}
