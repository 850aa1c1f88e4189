package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"valence/internal/extract"
	"valence/internal/logging"
	"valence/internal/sentiment"
)

// Text analysis defaults.
const (
	DefaultMinChars      = 3
	DefaultMaxChars      = 500
	TranscriptPreviewLen = 100

	positiveTextScore = 4.5
	negativeTextScore = 1.5
)

// TextAnalyzer scores transcript sentiment.
type TextAnalyzer struct {
	Classifier SentimentClassifier
	MinChars   int
	MaxChars   int
	Scale      sentiment.Scale
	Logger     *slog.Logger
}

// NewTextAnalyzer returns a text analyzer with default limits. A nil
// classifier yields the classifier_unavailable branch for every transcript.
func NewTextAnalyzer(classifier SentimentClassifier, scale sentiment.Scale, logger *slog.Logger) *TextAnalyzer {
	return &TextAnalyzer{
		Classifier: classifier,
		MinChars:   DefaultMinChars,
		MaxChars:   DefaultMaxChars,
		Scale:      scale,
		Logger:     logging.NewComponentLogger(logger, "text-analyzer"),
	}
}

// Analyze classifies transcript.
func (a *TextAnalyzer) Analyze(ctx context.Context, transcript string) sentiment.ModalityResult {
	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" || utf8.RuneCountInString(trimmed) < a.MinChars {
		return degrade(ctx, a.Logger, sentiment.Text, sentiment.DegradedNoTranscript, nil)
	}
	if strings.HasPrefix(trimmed, extract.TranscriptErrorMarker) {
		return degrade(ctx, a.Logger, sentiment.Text, sentiment.DegradedTranscriptError, nil,
			logging.String("transcript", trimmed))
	}
	preview := truncateRunes(trimmed, TranscriptPreviewLen)
	if a.Classifier == nil {
		result := degrade(ctx, a.Logger, sentiment.Text, sentiment.DegradedNoClassifier, nil)
		result.Transcript = preview
		return result
	}

	label, probability, err := a.Classifier.ClassifySentiment(ctx, truncateRunes(trimmed, a.MaxChars))
	if err == nil && math.IsNaN(probability) {
		err = fmt.Errorf("classifier returned NaN probability for label %q", label)
	}
	if err != nil {
		result := degrade(ctx, a.Logger, sentiment.Text, sentiment.DegradedClassifierFailed, err)
		result.Transcript = preview
		return result
	}

	result := a.Scale.NewResult(sentiment.Text, LabelScore(label), min(max(probability, 0), 1))
	result.Label = label
	result.Transcript = preview
	a.Logger.Debug("text classified",
		logging.String(logging.FieldEventType, "modality_scored"),
		logging.String("label", label),
		logging.Float64("probability", probability),
	)
	return result
}

// LabelScore maps a free-form sentiment label to its score: labels
// containing "positive" score 4.5, "negative" 1.5, anything else 3.
func LabelScore(label string) float64 {
	folded := cases.Fold().String(strings.TrimSpace(label))
	switch {
	case strings.Contains(folded, "positive"):
		return positiveTextScore
	case strings.Contains(folded, "negative"):
		return negativeTextScore
	default:
		return sentiment.NeutralScore
	}
}
