package analyzer

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"valence/internal/logging"
	"valence/internal/sentiment"
)

// Visual analysis defaults.
const (
	DefaultMaxFrames        = 20
	DefaultSaturationFrames = 10
)

var emotionSentiment = map[string]sentiment.Sentiment{
	"happy":    sentiment.Positive,
	"surprise": sentiment.Positive,
	"sad":      sentiment.Negative,
	"angry":    sentiment.Negative,
	"fear":     sentiment.Negative,
	"disgust":  sentiment.Negative,
	"neutral":  sentiment.Neutral,
}

// EmotionSentiment maps a facial emotion label to a sentiment. Unrecognized
// labels are neutral.
func EmotionSentiment(label string) sentiment.Sentiment {
	if s, ok := emotionSentiment[cases.Fold().String(strings.TrimSpace(label))]; ok {
		return s
	}
	return sentiment.Neutral
}

// VisualAnalyzer scores facial expression over sampled frames.
type VisualAnalyzer struct {
	Opener           FrameOpener
	Classifier       EmotionClassifier
	MaxFrames        int
	SaturationFrames int
	Scale            sentiment.Scale
	Logger           *slog.Logger
}

// NewVisualAnalyzer returns a visual analyzer with default sampling. Frames
// are expected to arrive already downscaled by the opener.
func NewVisualAnalyzer(opener FrameOpener, classifier EmotionClassifier, scale sentiment.Scale, logger *slog.Logger) *VisualAnalyzer {
	return &VisualAnalyzer{
		Opener:           opener,
		Classifier:       classifier,
		MaxFrames:        DefaultMaxFrames,
		SaturationFrames: DefaultSaturationFrames,
		Scale:            scale,
		Logger:           logging.NewComponentLogger(logger, "visual-analyzer"),
	}
}

// Analyze samples frames of the video at path.
func (a *VisualAnalyzer) Analyze(ctx context.Context, path string) sentiment.ModalityResult {
	if a.Classifier == nil {
		return degrade(ctx, a.Logger, sentiment.Visual, sentiment.DegradedNoClassifier, nil)
	}
	if a.Opener == nil {
		return degrade(ctx, a.Logger, sentiment.Visual, sentiment.DegradedVideoUnreadable, nil)
	}
	source, err := a.Opener.Open(ctx, path)
	if err != nil {
		return degrade(ctx, a.Logger, sentiment.Visual, sentiment.DegradedVideoUnreadable, err)
	}

	maxFrames := max(1, a.MaxFrames)
	total := source.Count()
	stride := max(1, total/maxFrames)

	var votes []sentiment.Sentiment
	skipped := 0
	for index := 0; index < total && len(votes) < maxFrames; index += stride {
		if ctx.Err() != nil {
			break
		}
		frame, err := source.Frame(ctx, index)
		if err != nil {
			a.Logger.Debug("frame read failed; stopping",
				logging.Int("frame", index),
				logging.Error(err),
			)
			break
		}
		label, err := a.Classifier.ClassifyEmotion(ctx, frame)
		if err != nil {
			skipped++
			continue
		}
		votes = append(votes, EmotionSentiment(label))
	}

	if len(votes) == 0 {
		result := degrade(ctx, a.Logger, sentiment.Visual, sentiment.DegradedNoFrames, nil,
			logging.Int("total_frames", total),
			logging.Int("skipped_frames", skipped),
		)
		result.Frames = 0
		return result
	}

	var sum float64
	for _, vote := range votes {
		sum += a.Scale.ScoreOf(vote)
	}
	score := sum / float64(len(votes))
	majority := MajorityVote(votes)

	saturation := max(1, a.SaturationFrames)
	result := a.Scale.NewResult(sentiment.Visual, score, min(1, float64(len(votes))/float64(saturation)))
	// The label is the frame majority, which may disagree with the mean score.
	result.Sentiment = majority
	result.MajorityVote = &majority
	result.Frames = len(votes)

	a.Logger.Debug("frames classified",
		logging.String(logging.FieldEventType, "modality_scored"),
		logging.Int("frames", len(votes)),
		logging.Int("skipped_frames", skipped),
		logging.String("majority", majority.String()),
		logging.Float64("score", score),
	)
	return result
}

// MajorityVote returns the most frequent sentiment. Ties go to the sentiment
// seen first.
func MajorityVote(votes []sentiment.Sentiment) sentiment.Sentiment {
	counts := make(map[sentiment.Sentiment]int, 3)
	order := make([]sentiment.Sentiment, 0, 3)
	for _, v := range votes {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := sentiment.Neutral
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
