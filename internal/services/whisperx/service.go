package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/text/language"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

const lockPoll = 250 * time.Millisecond

// Service runs WhisperX through uvx and ffmpeg for audio extraction.
type Service struct {
	cfg    Config
	ffmpeg string
	run    CommandRunner
}

// NewService returns a service. An empty ffmpeg path uses "ffmpeg" from PATH.
func NewService(cfg Config, ffmpeg string) *Service {
	if ffmpeg == "" {
		ffmpeg = FFmpegCommand
	}
	return &Service{cfg: cfg, ffmpeg: ffmpeg, run: execCommand}
}

// WithCommandRunner replaces the process runner (for testing).
func (s *Service) WithCommandRunner(run CommandRunner) {
	s.run = run
}

func execCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// torch.load defaults to weights_only since 2.6, which pyannote checkpoints fail.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Segment is one timed span of the transcript.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the parsed WhisperX output for one file.
type Transcript struct {
	Text     string
	Segments []Segment
}

// TranscribeFile transcribes the WAV at source. WhisperX writes its JSON to
// outputDir, which defaults to the directory of source.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir string) (Transcript, error) {
	if source == "" {
		return Transcript{}, errors.New("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Transcript{}, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return Transcript{}, err
	}
	defer release()

	if err := s.run(ctx, UVXCommand, s.buildArgs(source, outputDir)...); err != nil {
		return Transcript{}, fmt.Errorf("whisperx: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	transcript, err := readTranscript(filepath.Join(outputDir, stem+".json"))
	if err != nil {
		return Transcript{}, fmt.Errorf("whisperx: load transcript: %w", err)
	}
	return transcript, nil
}

// acquire takes the cross-process transcription lock when one is configured.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	path := strings.TrimSpace(s.cfg.LockPath)
	if path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("whisperx: ensure lock dir: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockPoll)
	switch {
	case err != nil:
		return nil, fmt.Errorf("whisperx: acquire lock: %w", err)
	case !ok:
		return nil, errors.New("whisperx: lock not acquired")
	}
	return func() { _ = lock.Unlock() }, nil
}

func (s *Service) buildArgs(source, outputDir string) []string {
	var args []string
	if s.cfg.CUDAEnabled {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}
	args = append(args, "whisperx", source, "--model", s.cfg.model(), "--output_dir", outputDir)
	args = append(args, decodeFlags...)

	vad := s.cfg.vadMethod()
	args = append(args, "--vad_method", vad)
	if vad == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if code := LanguageCode(s.cfg.Language); code != "" {
		args = append(args, "--language", code)
	}
	if s.cfg.CUDAEnabled {
		return append(args, "--device", CUDADevice)
	}
	return append(args, "--device", CPUDevice, "--compute_type", "float32")
}

// LanguageCode reduces a language name or BCP 47 tag ("en", "eng", "pt-BR")
// to its two-letter base. Values that do not parse yield "".
func LanguageCode(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

func readTranscript(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, err
	}
	var payload struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Transcript{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	words := make([]string, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			words = append(words, text)
		}
	}
	return Transcript{Text: strings.Join(words, " "), Segments: payload.Segments}, nil
}
