package main

import (
	"os"
	"path/filepath"
	"testing"

	"zeusmaker/internal/testsupport"
)

func TestConfigInitValidateAndShow(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[conversion]")
	requireContains(t, out, "poll_interval_ms = 10")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.MockOptions{})
	env.cfg.Conversion.OverlapDuration = env.cfg.Conversion.SegmentDuration
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, env.configPath, "config", "validate")
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "overlap_duration")
}
