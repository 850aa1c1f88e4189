package analyzer

import (
	"context"
	"log/slog"
	"math"

	"valence/internal/logging"
	"valence/internal/sentiment"
)

// Prosody defaults.
const (
	DefaultMinPitchHz      = 80.0
	DefaultMaxPitchHz      = 400.0
	DefaultHighPitchHz     = 200.0
	DefaultRaisedPitchHz   = 150.0
	DefaultLowPitchHz      = 120.0
	DefaultFixedConfidence = 0.7
)

// AudioAnalyzer scores vocal prosody from mean voiced pitch.
type AudioAnalyzer struct {
	Tracker         PitchTracker
	MinHz           float64
	MaxHz           float64
	HighHz          float64
	RaisedHz        float64
	LowHz           float64
	FixedConfidence float64
	Scale           sentiment.Scale
	Logger          *slog.Logger
}

// NewAudioAnalyzer returns an audio analyzer with the default pitch table.
func NewAudioAnalyzer(tracker PitchTracker, scale sentiment.Scale, logger *slog.Logger) *AudioAnalyzer {
	return &AudioAnalyzer{
		Tracker:         tracker,
		MinHz:           DefaultMinPitchHz,
		MaxHz:           DefaultMaxPitchHz,
		HighHz:          DefaultHighPitchHz,
		RaisedHz:        DefaultRaisedPitchHz,
		LowHz:           DefaultLowPitchHz,
		FixedConfidence: DefaultFixedConfidence,
		Scale:           scale,
		Logger:          logging.NewComponentLogger(logger, "audio-analyzer"),
	}
}

// Analyze scores mono samples recorded at rate Hz. Input shorter than one
// second is not tracked.
func (a *AudioAnalyzer) Analyze(ctx context.Context, samples []float64, rate int) sentiment.ModalityResult {
	if rate <= 0 || len(samples) == 0 || len(samples) < rate {
		return degrade(ctx, a.Logger, sentiment.Audio, sentiment.DegradedAudioTooShort, nil,
			logging.Int("samples", len(samples)),
			logging.Int("sample_rate", rate),
		)
	}
	if a.Tracker == nil {
		return degrade(ctx, a.Logger, sentiment.Audio, sentiment.DegradedPitchFailed, nil)
	}
	estimates, err := a.Tracker.Track(samples, rate, a.MinHz, a.MaxHz)
	if err != nil {
		return degrade(ctx, a.Logger, sentiment.Audio, sentiment.DegradedPitchFailed, err)
	}

	var sum float64
	voiced := 0
	for _, hz := range estimates {
		if math.IsNaN(hz) || math.IsInf(hz, 0) {
			continue
		}
		sum += hz
		voiced++
	}
	if voiced == 0 {
		return degrade(ctx, a.Logger, sentiment.Audio, sentiment.DegradedNoVoicedFrames, nil,
			logging.Int("frames", len(estimates)))
	}
	mean := sum / float64(voiced)

	result := a.Scale.NewResult(sentiment.Audio, a.PitchScore(mean), a.FixedConfidence)
	result.PitchHz = mean
	a.Logger.Debug("prosody scored",
		logging.String(logging.FieldEventType, "modality_scored"),
		logging.Float64("pitch_hz", mean),
		logging.Int("voiced_frames", voiced),
	)
	return result
}

// PitchScore maps a mean pitch to a prosody score.
func (a *AudioAnalyzer) PitchScore(mean float64) float64 {
	switch {
	case mean > a.HighHz:
		return 4.5
	case mean > a.RaisedHz:
		return 3.5
	case mean < a.LowHz:
		return 2.0
	default:
		return sentiment.NeutralScore
	}
}
