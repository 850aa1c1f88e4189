package main

import (
	"context"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"valence/internal/analyzer"
	"valence/internal/config"
	"valence/internal/deps"
	"valence/internal/extract"
	"valence/internal/fusion"
	"valence/internal/logging"
	"valence/internal/media/ffprobe"
	"valence/internal/media/frames"
	"valence/internal/media/pitch"
	"valence/internal/pipeline"
	"valence/internal/sentiment"
	"valence/internal/services/emotionapi"
	"valence/internal/services/llm"
	"valence/internal/services/sentimentapi"
	"valence/internal/services/vision"
	"valence/internal/services/whisperx"
)

// collaborators builds the expensive pipeline handles on first use and keeps
// them for the life of the process.
type collaborators struct {
	cfg    *config.Config
	cache  *analyzer.Cache
	prober *ffprobe.Prober
}

func newCollaborators(cfg *config.Config) *collaborators {
	ffprobeBinary := deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	return &collaborators{
		cfg:    cfg,
		cache:  analyzer.NewCache(),
		prober: ffprobe.NewProber(ffprobeBinary),
	}
}

// buildOrchestrator wires one pipeline around cfg. Backends are not
// contacted until the first request needs them.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	c := newCollaborators(cfg)
	scale := sentiment.Scale{
		PositiveAbove: cfg.Fusion.PositiveAbove,
		NegativeBelow: cfg.Fusion.NegativeBelow,
	}

	text := analyzer.NewTextAnalyzer(c.sentimentClassifier(), scale, logger)
	text.MinChars = cfg.Text.MinChars
	text.MaxChars = cfg.Text.MaxChars

	visual := analyzer.NewVisualAnalyzer(c.frameOpener(), c.emotionClassifier(), scale, logger)
	visual.MaxFrames = cfg.Visual.MaxFrames
	visual.SaturationFrames = cfg.Visual.SaturationFrames

	audio := analyzer.NewAudioAnalyzer(c.pitchTracker(), scale, logger)
	audio.MinHz = cfg.Audio.MinPitchHz
	audio.MaxHz = cfg.Audio.MaxPitchHz
	audio.HighHz = cfg.Audio.HighPitchHz
	audio.RaisedHz = cfg.Audio.RaisedPitchHz
	audio.LowHz = cfg.Audio.LowPitchHz
	audio.FixedConfidence = cfg.Audio.FixedConfidence

	engine := fusion.New(logger)
	engine.Weights = [sentiment.ModalityCount]float64{
		cfg.Fusion.TextWeight,
		cfg.Fusion.VisualWeight,
		cfg.Fusion.AudioWeight,
	}
	engine.GateThreshold = cfg.Fusion.GateThreshold
	engine.Scale = scale

	var transcriber extract.Transcriber
	if cfg.Transcription.Enabled {
		transcriber = lazyWhisperX{c}
	}
	extractor := extract.New(c.prober, lazyWhisperX{c}, transcriber, cfg.Paths.WorkDir, logger)

	return pipeline.New(pipeline.Options{
		MaxDurationSeconds: cfg.Pipeline.MaxDurationSeconds,
		Parallel:           cfg.Pipeline.Parallel,
	}, pipeline.Dependencies{
		Prober:    c.prober,
		Extractor: extractor,
		Text:      text,
		Visual:    visual,
		Audio:     audio,
		Fusion:    engine,
	}, logger)
}

// sentimentClassifier returns nil when the text backend is disabled so the
// text analyzer reports classifier_unavailable.
func (c *collaborators) sentimentClassifier() analyzer.SentimentClassifier {
	switch c.cfg.Text.Backend {
	case config.BackendHTTP, config.BackendLLM:
	default:
		return nil
	}
	return analyzer.SentimentClassifierFunc(func(ctx context.Context, text string) (string, float64, error) {
		classifier, err := analyzer.Load(c.cache, analyzer.KindSentiment, c.buildSentiment)
		if err != nil {
			return "", 0, err
		}
		return classifier.ClassifySentiment(ctx, text)
	})
}

func (c *collaborators) buildSentiment() (analyzer.SentimentClassifier, error) {
	if c.cfg.Text.Backend == config.BackendLLM {
		llmCfg := c.cfg.LLMSettings()
		return llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		}), nil
	}
	return sentimentapi.New(c.cfg.Text.URL, c.cfg.Text.APIKey, c.cfg.TextTimeout()), nil
}

func (c *collaborators) emotionClassifier() analyzer.EmotionClassifier {
	switch c.cfg.Emotion.Backend {
	case config.BackendHTTP, config.BackendVision:
	default:
		return nil
	}
	return analyzer.EmotionClassifierFunc(func(ctx context.Context, img image.Image) (string, error) {
		classifier, err := analyzer.Load(c.cache, analyzer.KindEmotion, c.buildEmotion)
		if err != nil {
			return "", err
		}
		return classifier.ClassifyEmotion(ctx, img)
	})
}

func (c *collaborators) buildEmotion() (analyzer.EmotionClassifier, error) {
	if c.cfg.Emotion.Backend == config.BackendVision {
		return vision.New(vision.Config{
			BaseURL: c.cfg.Emotion.BaseURL,
			APIKey:  c.cfg.Emotion.APIKey,
			Model:   c.cfg.Emotion.Model,
			Timeout: c.cfg.EmotionTimeout(),
		}, nil)
	}
	return emotionapi.New(c.cfg.Emotion.URL, c.cfg.EmotionTimeout()), nil
}

func (c *collaborators) frameOpener() analyzer.FrameOpener {
	return analyzer.FrameOpenerFunc(func(ctx context.Context, path string) (analyzer.FrameSource, error) {
		opener, err := analyzer.Load(c.cache, analyzer.KindFrames, func() (*frames.Opener, error) {
			return frames.NewOpener(c.cfg.FFmpegBinary(), c.prober, c.cfg.Visual.FrameScale), nil
		})
		if err != nil {
			return nil, err
		}
		source, err := opener.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return source, nil
	})
}

func (c *collaborators) pitchTracker() analyzer.PitchTracker {
	return analyzer.PitchTrackerFunc(func(samples []float64, rate int, minHz, maxHz float64) ([]float64, error) {
		tracker, err := analyzer.Load(c.cache, analyzer.KindPitch, func() (*pitch.Tracker, error) {
			return pitch.New(), nil
		})
		if err != nil {
			return nil, err
		}
		return tracker.Track(samples, rate, minHz, maxHz)
	})
}

func (c *collaborators) whisperX() (*whisperx.Service, error) {
	return analyzer.Load(c.cache, analyzer.KindTranscriber, func() (*whisperx.Service, error) {
		t := c.cfg.Transcription
		return whisperx.NewService(whisperx.Config{
			Model:       t.WhisperXModel,
			CUDAEnabled: t.WhisperXCUDAEnabled,
			VADMethod:   t.WhisperXVADMethod,
			HFToken:     t.WhisperXHuggingFace,
			Language:    t.Language,
			SampleRate:  c.cfg.Audio.SampleRate,
			LockPath:    c.cfg.WhisperXLockPath(),
		}, c.cfg.FFmpegBinary()), nil
	})
}

// lazyWhisperX serves both audio extraction and transcription from the
// cached WhisperX service.
type lazyWhisperX struct {
	c *collaborators
}

func (l lazyWhisperX) ExtractFullAudio(ctx context.Context, source, dest string) error {
	svc, err := l.c.whisperX()
	if err != nil {
		return err
	}
	return svc.ExtractFullAudio(ctx, source, dest)
}

func (l lazyWhisperX) TranscribeFile(ctx context.Context, source, outputDir string) (whisperx.Transcript, error) {
	svc, err := l.c.whisperX()
	if err != nil {
		return whisperx.Transcript{}, err
	}
	return svc.TranscribeFile(ctx, source, outputDir)
}

func logFilePath(cfg *config.Config) string {
	if cfg == nil || strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
}
