package config

import (
	"valence/internal/analyzer"
	"valence/internal/fusion"
	"valence/internal/media/frames"
	"valence/internal/sentiment"
	"valence/internal/services/llm"
	"valence/internal/services/vision"
	"valence/internal/services/whisperx"
)

const (
	defaultConfigPath  = "~/.config/valence/config.toml"
	projectConfigName  = "valence.toml"
	defaultWorkDir     = "~/.cache/valence/work"
	defaultLogDir      = "~/.local/share/valence/logs"
	defaultLogFormat   = LogFormatConsole
	defaultLogLevel    = "info"
	defaultFFmpeg      = "ffmpeg"
	defaultFFprobe     = "ffprobe"
	defaultHTTPTimeout = 30

	defaultMaxDurationSeconds = 60
	defaultJobs               = 1

	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/valence-video/valence"
	defaultLLMTitle          = "Valence Sentiment"
	defaultLLMTimeoutSeconds = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Pipeline: Pipeline{
			MaxDurationSeconds: defaultMaxDurationSeconds,
			Parallel:           true,
			Jobs:               defaultJobs,
		},
		Fusion: Fusion{
			TextWeight:    fusion.DefaultTextWeight,
			VisualWeight:  fusion.DefaultVisualWeight,
			AudioWeight:   fusion.DefaultAudioWeight,
			GateThreshold: fusion.DefaultGateThreshold,
			PositiveAbove: sentiment.DefaultPositiveAbove,
			NegativeBelow: sentiment.DefaultNegativeBelow,
		},
		Text: Text{
			Backend:        BackendHTTP,
			URL:            "http://127.0.0.1:8500/sentiment",
			TimeoutSeconds: defaultHTTPTimeout,
			MinChars:       analyzer.DefaultMinChars,
			MaxChars:       analyzer.DefaultMaxChars,
		},
		Visual: Visual{
			MaxFrames:        analyzer.DefaultMaxFrames,
			FrameScale:       frames.DefaultScale,
			SaturationFrames: analyzer.DefaultSaturationFrames,
		},
		Emotion: Emotion{
			Backend:        BackendHTTP,
			URL:            "http://127.0.0.1:8501/emotion",
			BaseURL:        vision.DefaultBaseURL,
			Model:          vision.DefaultModel,
			TimeoutSeconds: defaultHTTPTimeout,
		},
		Audio: Audio{
			SampleRate:      whisperx.DefaultSampleRate,
			FixedConfidence: analyzer.DefaultFixedConfidence,
			MinPitchHz:      analyzer.DefaultMinPitchHz,
			MaxPitchHz:      analyzer.DefaultMaxPitchHz,
			HighPitchHz:     analyzer.DefaultHighPitchHz,
			RaisedPitchHz:   analyzer.DefaultRaisedPitchHz,
			LowPitchHz:      analyzer.DefaultLowPitchHz,
		},
		Transcription: Transcription{
			Enabled:           true,
			WhisperXModel:     whisperx.DefaultModel,
			WhisperXVADMethod: whisperx.VADMethodSilero,
		},
		LLM: LLM{
			BaseURL:        llm.DefaultBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
	}
}
