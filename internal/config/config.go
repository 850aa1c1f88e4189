package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"valence/internal/logging"
)

// Enumerated values accepted by the config.
const (
	LogFormatConsole = logging.FormatConsole
	LogFormatJSON    = logging.FormatJSON

	BackendHTTP   = "http"
	BackendLLM    = "llm"
	BackendVision = "vision"
	BackendNone   = "none"
)

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Pipeline controls request validation and analyzer scheduling.
type Pipeline struct {
	MaxDurationSeconds float64 `toml:"max_duration_seconds"`
	Parallel           bool    `toml:"parallel"`
	Jobs               int     `toml:"jobs"`
}

// Fusion holds the base weights, gate, and sentiment thresholds.
type Fusion struct {
	TextWeight    float64 `toml:"text_weight"`
	VisualWeight  float64 `toml:"visual_weight"`
	AudioWeight   float64 `toml:"audio_weight"`
	GateThreshold float64 `toml:"gate_threshold"`
	PositiveAbove float64 `toml:"positive_above"`
	NegativeBelow float64 `toml:"negative_below"`
}

// Text configures transcript sentiment classification.
type Text struct {
	Backend        string `toml:"backend"`
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MinChars       int    `toml:"min_chars"`
	MaxChars       int    `toml:"max_chars"`
}

// Visual configures frame sampling.
type Visual struct {
	MaxFrames        int     `toml:"max_frames"`
	FrameScale       float64 `toml:"frame_scale"`
	SaturationFrames int     `toml:"saturation_frames"`
}

// Emotion configures the per-frame facial emotion classifier.
type Emotion struct {
	Backend        string `toml:"backend"`
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Audio configures decoding and the prosody score table.
type Audio struct {
	SampleRate      int     `toml:"sample_rate"`
	FixedConfidence float64 `toml:"fixed_confidence"`
	MinPitchHz      float64 `toml:"min_pitch_hz"`
	MaxPitchHz      float64 `toml:"max_pitch_hz"`
	HighPitchHz     float64 `toml:"high_pitch_hz"`
	RaisedPitchHz   float64 `toml:"raised_pitch_hz"`
	LowPitchHz      float64 `toml:"low_pitch_hz"`
}

// Transcription configures WhisperX.
type Transcription struct {
	Enabled             bool   `toml:"enabled"`
	WhisperXModel       string `toml:"whisperx_model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	WhisperXVADMethod   string `toml:"whisperx_vad_method"`
	WhisperXHuggingFace string `toml:"whisperx_hf_token"`
	Language            string `toml:"language"`
}

// LLM contains chat completion connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Tools names the media binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Config encapsulates all configuration values for valence.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Fusion        Fusion        `toml:"fusion"`
	Text          Text          `toml:"text"`
	Visual        Visual        `toml:"visual"`
	Emotion       Emotion       `toml:"emotion"`
	Audio         Audio         `toml:"audio"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	Tools         Tools         `toml:"tools"`
}

// EnsureDirectories creates the work and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WhisperXLockPath is the file lock shared by every WhisperX run using this
// work directory.
func (c *Config) WhisperXLockPath() string {
	return filepath.Join(c.Paths.WorkDir, "whisperx.lock")
}

func (c *Config) FFmpegBinary() string { return orDefault(c.Tools.FFmpeg, defaultFFmpeg) }

func (c *Config) FFprobeBinary() string { return orDefault(c.Tools.FFprobe, defaultFFprobe) }

// TextTimeout returns the sentiment service request timeout.
func (c *Config) TextTimeout() time.Duration {
	return time.Duration(c.Text.TimeoutSeconds) * time.Second
}

// EmotionTimeout returns the emotion service request timeout.
func (c *Config) EmotionTimeout() time.Duration {
	return time.Duration(c.Emotion.TimeoutSeconds) * time.Second
}

// LLMConfig contains the chat completion settings in trimmed form.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// LLMSettings returns the LLM connection settings with whitespace trimmed.
func (c *Config) LLMSettings() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

// Redacted returns a copy with every credential masked, for display.
func (c Config) Redacted() Config {
	for _, secret := range []*string{
		&c.Text.APIKey,
		&c.Emotion.APIKey,
		&c.LLM.APIKey,
		&c.Transcription.WhisperXHuggingFace,
	} {
		if strings.TrimSpace(*secret) != "" {
			*secret = redactedValue
		}
	}
	return c
}

const redactedValue = "<redacted>"

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
