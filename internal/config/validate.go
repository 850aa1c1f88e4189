package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateFusion(); err != nil {
		return err
	}
	if err := c.validateText(); err != nil {
		return err
	}
	if err := c.validateVisual(); err != nil {
		return err
	}
	if err := c.validateEmotion(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxDurationSeconds <= 0 {
		return errors.New("pipeline.max_duration_seconds must be positive")
	}
	if c.Pipeline.Jobs <= 0 {
		return errors.New("pipeline.jobs must be positive")
	}
	return nil
}

func (c *Config) validateFusion() error {
	f := c.Fusion
	if f.TextWeight < 0 || f.VisualWeight < 0 || f.AudioWeight < 0 {
		return errors.New("fusion weights must be >= 0")
	}
	if f.TextWeight+f.VisualWeight+f.AudioWeight == 0 {
		return errors.New("fusion weights must not all be zero")
	}
	if err := ensureUnit("fusion.gate_threshold", f.GateThreshold); err != nil {
		return err
	}
	if f.NegativeBelow < 1 || f.PositiveAbove > 5 {
		return errors.New("fusion.negative_below and fusion.positive_above must lie within [1,5]")
	}
	if f.NegativeBelow >= f.PositiveAbove {
		return errors.New("fusion.negative_below must be less than fusion.positive_above")
	}
	return nil
}

func (c *Config) validateText() error {
	if err := ensurePositive(
		namedInt{"text.min_chars", c.Text.MinChars},
		namedInt{"text.max_chars", c.Text.MaxChars},
		namedInt{"text.timeout_seconds", c.Text.TimeoutSeconds},
	); err != nil {
		return err
	}
	if c.Text.MinChars > c.Text.MaxChars {
		return errors.New("text.min_chars must not exceed text.max_chars")
	}
	switch c.Text.Backend {
	case BackendHTTP:
		if c.Text.URL == "" {
			return errors.New("text.url must be set when text.backend is http")
		}
	case BackendLLM:
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return errors.New("llm.api_key must be set when text.backend is llm (or set OPENROUTER_API_KEY)")
		}
	case BackendNone:
	default:
		return fmt.Errorf("text.backend %q must be one of http, llm, none", c.Text.Backend)
	}
	return nil
}

func (c *Config) validateVisual() error {
	if err := ensurePositive(
		namedInt{"visual.max_frames", c.Visual.MaxFrames},
		namedInt{"visual.saturation_frames", c.Visual.SaturationFrames},
	); err != nil {
		return err
	}
	if c.Visual.FrameScale <= 0 || c.Visual.FrameScale > 1 {
		return errors.New("visual.frame_scale must be in (0,1]")
	}
	return nil
}

func (c *Config) validateEmotion() error {
	if c.Emotion.TimeoutSeconds <= 0 {
		return errors.New("emotion.timeout_seconds must be positive")
	}
	switch c.Emotion.Backend {
	case BackendHTTP:
		if c.Emotion.URL == "" {
			return errors.New("emotion.url must be set when emotion.backend is http")
		}
	case BackendVision:
		if c.Emotion.APIKey == "" {
			return errors.New("emotion.api_key must be set when emotion.backend is vision (or set VISION_API_KEY)")
		}
	case BackendNone:
	default:
		return fmt.Errorf("emotion.backend %q must be one of http, vision, none", c.Emotion.Backend)
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if a.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if err := ensureUnit("audio.fixed_confidence", a.FixedConfidence); err != nil {
		return err
	}
	if !(0 < a.MinPitchHz && a.MinPitchHz < a.LowPitchHz && a.LowPitchHz < a.RaisedPitchHz &&
		a.RaisedPitchHz < a.HighPitchHz && a.HighPitchHz < a.MaxPitchHz) {
		return errors.New("audio pitch thresholds must satisfy 0 < min_pitch_hz < low_pitch_hz < raised_pitch_hz < high_pitch_hz < max_pitch_hz")
	}
	if a.MaxPitchHz*2 > float64(a.SampleRate) {
		return errors.New("audio.max_pitch_hz must be below half of audio.sample_rate")
	}
	return nil
}

type namedInt struct {
	name  string
	value int
}

func ensurePositive(values ...namedInt) error {
	for _, v := range values {
		if v.value <= 0 {
			return fmt.Errorf("%s must be positive", v.name)
		}
	}
	return nil
}

func ensureUnit(name string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}
