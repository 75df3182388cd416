package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"zeusmaker/internal/config"
	"zeusmaker/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	inputDir   string
	mockLog    string
}

// setupCLITestEnv writes a config pointing at a mock ffmpeg and a missing
// ffprobe, so durations come from the mock's stream summary.
func setupCLITestEnv(t *testing.T, opts testsupport.MockOptions) *cliTestEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("mock ffmpeg requires a POSIX shell")
	}

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	if opts.LogPath == "" {
		opts.LogPath = filepath.Join(base, "ffmpeg.log")
	}
	cfg.FFmpeg.Binary = testsupport.MockFFmpeg(t, filepath.Join(base, "bin"), opts)
	cfg.FFmpeg.FFprobeBinary = filepath.Join(base, "bin", "no-ffprobe")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	inputDir := filepath.Join(base, "inputs")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("mkdir inputs: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		inputDir:   inputDir,
		mockLog:    opts.LogPath,
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := config.Encode(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
