// Package fusion combines the three modality readings into one verdict.
package fusion

import (
	"log/slog"

	"valence/internal/logging"
	"valence/internal/sentiment"
)

// Default fusion parameters.
const (
	DefaultTextWeight    = 0.4
	DefaultVisualWeight  = 0.35
	DefaultAudioWeight   = 0.25
	DefaultGateThreshold = 0.3
)

// DefaultWeights returns the base weights indexed by modality.
func DefaultWeights() [sentiment.ModalityCount]float64 {
	return [sentiment.ModalityCount]float64{DefaultTextWeight, DefaultVisualWeight, DefaultAudioWeight}
}

// Engine fuses modality results with gated, renormalized base weights.
type Engine struct {
	Weights       [sentiment.ModalityCount]float64
	GateThreshold float64
	Scale         sentiment.Scale
	Logger        *slog.Logger
}

// New returns an engine with the default parameters.
func New(logger *slog.Logger) *Engine {
	return &Engine{
		Weights:       DefaultWeights(),
		GateThreshold: DefaultGateThreshold,
		Scale:         sentiment.DefaultScale(),
		Logger:        logging.NewComponentLogger(logger, "fusion"),
	}
}

// Fuse combines the text, visual and audio readings.
//
// A modality whose confidence is below the gate keeps half its base weight.
// The weighted term uses the anchor score of each modality's discrete
// sentiment multiplied by its confidence, so low-confidence readings pull
// the result toward 1 rather than toward the neutral anchor. When the weights
// or every confidence are zero the result is neutral with zero confidence.
func (e *Engine) Fuse(text, visual, audio sentiment.ModalityResult) sentiment.FusionResult {
	inputs := [sentiment.ModalityCount]sentiment.ModalityResult{text, visual, audio}

	weights := e.GatedWeights(inputs)
	var sum, signal float64
	for i, w := range weights {
		sum += w
		signal += w * inputs[i].Confidence
	}
	// With no weight or no confidence anywhere there is nothing to fuse.
	if sum <= 0 || signal <= 0 {
		e.logger().Debug("fusion degenerate",
			logging.String(logging.FieldEventType, "fusion_degenerate"),
			logging.Float64("weight_sum", sum),
		)
		return sentiment.FusionResult{
			Sentiment: sentiment.Neutral,
			Score:     sentiment.NeutralScore,
		}
	}
	for i := range weights {
		weights[i] /= sum
	}

	var raw float64
	for i, in := range inputs {
		raw += weights[i] * e.Scale.ScoreOf(in.Sentiment) * in.Confidence
	}
	score := sentiment.Clamp(raw)

	result := sentiment.FusionResult{
		Sentiment:     e.Scale.SentimentOf(score),
		Score:         score,
		Confidence:    meanConfidence(inputs),
		Inconsistency: Inconsistent(inputs),
		Weights:       weights,
	}
	e.logger().Debug("fusion verdict",
		logging.String(logging.FieldEventType, "fusion_verdict"),
		logging.String("sentiment", result.Sentiment.String()),
		logging.Float64("score", result.Score),
		logging.Float64("confidence", result.Confidence),
		logging.Bool("inconsistency", result.Inconsistency),
	)
	return result
}

// GatedWeights returns the base weights with low-confidence modalities halved,
// before renormalization.
func (e *Engine) GatedWeights(inputs [sentiment.ModalityCount]sentiment.ModalityResult) [sentiment.ModalityCount]float64 {
	weights := e.Weights
	for i, in := range inputs {
		if in.Confidence < e.GateThreshold {
			weights[i] *= 0.5
		}
	}
	return weights
}

// Inconsistent reports whether the non-neutral sentiments disagree in sign.
func Inconsistent(inputs [sentiment.ModalityCount]sentiment.ModalityResult) bool {
	var positive, negative bool
	for _, in := range inputs {
		switch in.Sentiment {
		case sentiment.Positive:
			positive = true
		case sentiment.Negative:
			negative = true
		}
	}
	return positive && negative
}

func meanConfidence(inputs [sentiment.ModalityCount]sentiment.ModalityResult) float64 {
	var total float64
	for _, in := range inputs {
		total += in.Confidence
	}
	return total / float64(len(inputs))
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}
