package config

import (
	"fmt"
	"os"
	"strings"

	"valence/internal/services/llm"
	"valence/internal/services/vision"
	"valence/internal/services/whisperx"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizePipeline()
	c.normalizeText()
	c.normalizeEmotion()
	c.normalizeTranscription()
	c.normalizeLLM()
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = ExpandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case LogFormatJSON:
	default:
		c.Logging.Format = LogFormatConsole
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Jobs <= 0 {
		c.Pipeline.Jobs = defaultJobs
	}
}

func (c *Config) normalizeText() {
	c.Text.Backend = strings.ToLower(strings.TrimSpace(c.Text.Backend))
	if c.Text.Backend == "" {
		c.Text.Backend = BackendHTTP
	}
	c.Text.URL = strings.TrimSpace(c.Text.URL)
	c.Text.APIKey = strings.TrimSpace(c.Text.APIKey)
	if c.Text.APIKey == "" {
		c.Text.APIKey = firstEnv("SENTIMENT_API_KEY")
	}
	if c.Text.TimeoutSeconds <= 0 {
		c.Text.TimeoutSeconds = defaultHTTPTimeout
	}
}

func (c *Config) normalizeEmotion() {
	c.Emotion.Backend = strings.ToLower(strings.TrimSpace(c.Emotion.Backend))
	if c.Emotion.Backend == "" {
		c.Emotion.Backend = BackendHTTP
	}
	c.Emotion.URL = strings.TrimSpace(c.Emotion.URL)
	c.Emotion.BaseURL = strings.TrimSpace(c.Emotion.BaseURL)
	if c.Emotion.BaseURL == "" {
		c.Emotion.BaseURL = vision.DefaultBaseURL
	}
	c.Emotion.Model = strings.TrimSpace(c.Emotion.Model)
	if c.Emotion.Model == "" {
		c.Emotion.Model = vision.DefaultModel
	}
	c.Emotion.APIKey = strings.TrimSpace(c.Emotion.APIKey)
	if c.Emotion.APIKey == "" {
		c.Emotion.APIKey = firstEnv("VISION_API_KEY", "OPENAI_API_KEY")
	}
	if c.Emotion.TimeoutSeconds <= 0 {
		c.Emotion.TimeoutSeconds = defaultHTTPTimeout
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = whisperx.DefaultModel
	}
	c.Transcription.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.WhisperXVADMethod))
	if c.Transcription.WhisperXVADMethod == "" {
		c.Transcription.WhisperXVADMethod = whisperx.VADMethodSilero
	}
	c.Transcription.WhisperXHuggingFace = strings.TrimSpace(c.Transcription.WhisperXHuggingFace)
	if c.Transcription.WhisperXHuggingFace == "" {
		c.Transcription.WhisperXHuggingFace = firstEnv("HF_TOKEN", "HUGGING_FACE_HUB_TOKEN")
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = llm.DefaultBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = firstEnv("OPENROUTER_API_KEY", "LLM_API_KEY")
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
