// Package configtest builds isolated configs for tests.
package configtest

import (
	"os"
	"path/filepath"
	"testing"

	"valence/internal/config"
)

// ConfigOption adjusts the config built by NewConfig.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns a validated-shape config rooted in a fresh temp
// directory. Remote backends and transcription are off and credentials are
// blank, so nothing leaves the process unless an option enables it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Text.Backend = config.BackendNone
	cfg.Emotion.Backend = config.BackendNone
	cfg.Transcription.Enabled = false
	cfg.LLM.APIKey, cfg.Emotion.APIKey = "", ""

	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// BaseDir returns the temp directory that holds the config's work and log
// directories.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}

// WithHTTPBackends routes text and emotion classification to HTTP services.
func WithHTTPBackends(sentimentURL, emotionURL string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Text.Backend, cfg.Text.URL = config.BackendHTTP, sentimentURL
		cfg.Emotion.Backend, cfg.Emotion.URL = config.BackendHTTP, emotionURL
	}
}

// WithStubbedBinaries puts executables that exit 0 at the front of PATH.
// With no names it stubs ffmpeg and ffprobe.
func WithStubbedBinaries(names ...string) ConfigOption {
	if len(names) == 0 {
		names = []string{"ffmpeg", "ffprobe"}
	}
	return func(t testing.TB, base string, _ *config.Config) {
		bin := filepath.Join(base, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
