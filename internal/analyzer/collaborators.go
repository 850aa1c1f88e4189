package analyzer

import (
	"context"
	"image"
)

// SentimentClassifier labels a piece of text.
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) (label string, probability float64, err error)
}

// SentimentClassifierFunc adapts a function to SentimentClassifier.
type SentimentClassifierFunc func(ctx context.Context, text string) (string, float64, error)

func (f SentimentClassifierFunc) ClassifySentiment(ctx context.Context, text string) (string, float64, error) {
	return f(ctx, text)
}

// EmotionClassifier labels the dominant facial emotion of a frame.
type EmotionClassifier interface {
	ClassifyEmotion(ctx context.Context, img image.Image) (string, error)
}

// EmotionClassifierFunc adapts a function to EmotionClassifier.
type EmotionClassifierFunc func(ctx context.Context, img image.Image) (string, error)

func (f EmotionClassifierFunc) ClassifyEmotion(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// FrameSource gives random access to an opened video's frames.
type FrameSource interface {
	Count() int
	Frame(ctx context.Context, index int) (image.Image, error)
}

// FrameOpener opens a video for frame access.
type FrameOpener interface {
	Open(ctx context.Context, path string) (FrameSource, error)
}

// FrameOpenerFunc adapts a function to FrameOpener.
type FrameOpenerFunc func(ctx context.Context, path string) (FrameSource, error)

func (f FrameOpenerFunc) Open(ctx context.Context, path string) (FrameSource, error) {
	return f(ctx, path)
}

// PitchTracker estimates per-frame fundamental frequency within [minHz, maxHz].
// Unvoiced frames are NaN.
type PitchTracker interface {
	Track(samples []float64, rate int, minHz, maxHz float64) ([]float64, error)
}

// PitchTrackerFunc adapts a function to PitchTracker.
type PitchTrackerFunc func(samples []float64, rate int, minHz, maxHz float64) ([]float64, error)

func (f PitchTrackerFunc) Track(samples []float64, rate int, minHz, maxHz float64) ([]float64, error) {
	return f(samples, rate, minHz, maxHz)
}
