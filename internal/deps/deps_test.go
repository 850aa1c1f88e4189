package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, executableName(name))
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	dir := t.TempDir()
	present := writeStub(t, dir, "present")
	versioned := filepath.Join(dir, executableName("versioned"))
	script := "#!/bin/sh\necho\necho \"versioned 6.1 Copyright\"\necho second line\n"
	if err := os.WriteFile(versioned, []byte(script), 0o755); err != nil {
		t.Fatalf("write versioned stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Optional", Command: "also-not-present", Optional: true},
		{Name: "Unset"},
		{Name: "Versioned", Command: versioned, VersionArgs: []string{"-version"}},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("unexpected status for present binary: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail: %#v", results[1])
	}
	if results[3].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[3].Detail)
	}
	if results[0].Version != "" {
		t.Fatalf("expected no version without VersionArgs, got %q", results[0].Version)
	}
	if got := results[4].Version; got != "versioned 6.1 Copyright" {
		t.Fatalf("unexpected version banner %q", got)
	}

	missing := MissingRequired(results)
	if len(missing) != 2 || missing[0].Name != "Missing" || missing[1].Name != "Unset" {
		t.Fatalf("unexpected missing set %#v", missing)
	}
}

func TestResolveFFprobeSidecar(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeStub(t, dir, "ffmpeg")
	ffprobe := writeStub(t, dir, "ffprobe")

	if got := ResolveFFprobe(ffmpeg, ""); got != ffprobe {
		t.Fatalf("expected sidecar %q, got %q", ffprobe, got)
	}
	if got := ResolveFFprobe(ffmpeg, "/opt/custom/ffprobe"); got != "/opt/custom/ffprobe" {
		t.Fatalf("explicit ffprobe should win, got %q", got)
	}
}

func TestResolveFFprobeFallback(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeStub(t, dir, "ffmpeg")
	if got := ResolveFFprobe(ffmpeg, "ffprobe"); got != "ffprobe" {
		t.Fatalf("expected plain ffprobe fallback, got %q", got)
	}
	if got := ResolveFFprobe("clearly-not-present-ffmpeg", ""); got != "ffprobe" {
		t.Fatalf("expected plain ffprobe fallback, got %q", got)
	}
}
