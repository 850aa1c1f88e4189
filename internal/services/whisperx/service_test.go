package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestTranscribeFileParsesSegments(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")
	svc := NewService(Config{Model: "small", Language: "eng", LockPath: filepath.Join(dir, "locks", "whisperx.lock")}, "")

	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		payload := `{"segments":[{"text":" I love this ","start":0,"end":1.2},{"text":"","start":1.2,"end":1.3},{"text":"so much.","start":1.3,"end":2}]}`
		return os.WriteFile(filepath.Join(dir, "audio.json"), []byte(payload), 0o644)
	})

	result, err := svc.TranscribeFile(context.Background(), source, dir)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if result.Text != "I love this so much." {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(result.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(result.Segments))
	}
	if gotName != UVXCommand {
		t.Fatalf("expected uvx, got %q", gotName)
	}
	for _, want := range []string{"whisperx", source, "small", "--language", "en", "--compute_type"} {
		if !slices.Contains(gotArgs, want) {
			t.Fatalf("missing %q in args %v", want, gotArgs)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "locks", "whisperx.lock")); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}
}

func TestTranscribeFilePropagatesFailures(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(Config{}, "")
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 2")
	})
	if _, err := svc.TranscribeFile(context.Background(), filepath.Join(dir, "a.wav"), dir); err == nil {
		t.Fatal("expected runner failure")
	}

	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := svc.TranscribeFile(context.Background(), filepath.Join(dir, "a.wav"), dir); err == nil {
		t.Fatal("expected missing json failure")
	}

	if _, err := svc.TranscribeFile(context.Background(), "", dir); err == nil {
		t.Fatal("expected empty source failure")
	}
}

func TestBuildArgsDevices(t *testing.T) {
	cuda := NewService(Config{CUDAEnabled: true, VADMethod: VADMethodPyannote, HFToken: "hf"}, "")
	args := cuda.buildArgs("in.wav", "/out")
	for _, want := range []string{CUDAIndexURL, CUDADevice, "--hf_token", "hf", DefaultModel} {
		if !slices.Contains(args, want) {
			t.Fatalf("missing %q in %v", want, args)
		}
	}
	if slices.Contains(args, "--language") {
		t.Fatal("language should be omitted when unset")
	}

	cpu := NewService(Config{}, "")
	args = cpu.buildArgs("in.wav", "/out")
	if !slices.Contains(args, VADMethodSilero) || slices.Contains(args, "--hf_token") {
		t.Fatalf("unexpected cpu args %v", args)
	}
}

func TestExtractFullAudioArgs(t *testing.T) {
	svc := NewService(Config{}, "ffmpeg-test")
	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	})
	if err := svc.ExtractFullAudio(context.Background(), "clip.mp4", "out.wav"); err != nil {
		t.Fatalf("ExtractFullAudio: %v", err)
	}
	if gotName != "ffmpeg-test" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "out.wav" || !slices.Contains(gotArgs, "16000") || !slices.Contains(gotArgs, "pcm_s16le") {
		t.Fatalf("unexpected args %v", gotArgs)
	}
}

func TestLanguageCode(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"en":    "en",
		"eng":   "en",
		"pt-BR": "pt",
		"!!":    "",
	}
	for input, want := range cases {
		if got := LanguageCode(input); got != want {
			t.Fatalf("LanguageCode(%q) = %q, want %q", input, got, want)
		}
	}
}
