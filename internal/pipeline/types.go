package pipeline

import (
	"context"
	"time"

	"valence/internal/extract"
	"valence/internal/sentiment"
)

// Prober reads a video's duration.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Extractor produces the audio samples and transcript of a video.
type Extractor interface {
	Extract(ctx context.Context, path string) (extract.Result, error)
}

// TextAnalyzer scores a transcript.
type TextAnalyzer interface {
	Analyze(ctx context.Context, transcript string) sentiment.ModalityResult
}

// VisualAnalyzer scores a video's frames.
type VisualAnalyzer interface {
	Analyze(ctx context.Context, path string) sentiment.ModalityResult
}

// AudioAnalyzer scores mono samples.
type AudioAnalyzer interface {
	Analyze(ctx context.Context, samples []float64, rate int) sentiment.ModalityResult
}

// Fuser combines the three readings.
type Fuser interface {
	Fuse(text, visual, audio sentiment.ModalityResult) sentiment.FusionResult
}

// ProgressSink receives progress updates. Implementations must not block.
type ProgressSink func(fraction float64, label string)

// Progress labels in emission order.
const (
	LabelExtracting = "extracting audio"
	LabelText       = "analyzing text"
	LabelFace       = "analyzing face"
	LabelVoice      = "analyzing voice"
	LabelCombining  = "combining"
	LabelDone       = "done"
)

// ReportTranscriptLen bounds the transcript excerpt in a report.
const ReportTranscriptLen = 200

// Report is the result of one request.
type Report struct {
	RequestID  string                   `json:"request_id"`
	Video      string                   `json:"video"`
	Duration   float64                  `json:"duration_seconds"`
	Fusion     sentiment.FusionResult   `json:"fusion"`
	Text       sentiment.ModalityResult `json:"text"`
	Visual     sentiment.ModalityResult `json:"visual"`
	Audio      sentiment.ModalityResult `json:"audio"`
	Transcript string                   `json:"transcript"`
	StartedAt  time.Time                `json:"started_at"`
	Elapsed    time.Duration            `json:"elapsed_ns"`
}

// Modalities returns the readings in triplet order.
func (r Report) Modalities() [sentiment.ModalityCount]sentiment.ModalityResult {
	return [sentiment.ModalityCount]sentiment.ModalityResult{r.Text, r.Visual, r.Audio}
}
