package analyzer

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"valence/internal/sentiment"
	"valence/internal/testsupport"
)

func TestTextAnalyzerFallbacks(t *testing.T) {
	calls := 0
	classifier := SentimentClassifierFunc(func(context.Context, string) (string, float64, error) {
		calls++
		return "POSITIVE", 0.9, nil
	})
	a := NewTextAnalyzer(classifier, sentiment.DefaultScale(), nil)

	tests := []struct {
		name       string
		transcript string
		want       sentiment.Degradation
	}{
		{"empty", "", sentiment.DegradedNoTranscript},
		{"blank", "   \n", sentiment.DegradedNoTranscript},
		{"too short", " hi ", sentiment.DegradedNoTranscript},
		{"no audio sentinel", "[transcription unavailable: no audio track]", sentiment.DegradedTranscriptError},
		{"error sentinel", "[transcription unavailable: whisperx: exit status 1]", sentiment.DegradedTranscriptError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(context.Background(), tt.transcript)
			if got.Degraded != tt.want {
				t.Fatalf("degraded = %q, want %q", got.Degraded, tt.want)
			}
			if got.Sentiment != sentiment.Neutral || got.Score != 3 || got.Confidence != 0 {
				t.Fatalf("expected neutral fallback, got %+v", got)
			}
		})
	}
	if calls != 0 {
		t.Fatalf("classifier should not run for fallbacks, ran %d times", calls)
	}
}

func TestTextAnalyzerLabels(t *testing.T) {
	tests := []struct {
		label string
		prob  float64
		want  sentiment.Sentiment
		score float64
	}{
		{"POSITIVE", 0.92, sentiment.Positive, 4.5},
		{"very_negative", 0.8, sentiment.Negative, 1.5},
		{"Neutral", 0.6, sentiment.Neutral, 3},
		{"LABEL_1", 0.4, sentiment.Neutral, 3},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			a := NewTextAnalyzer(SentimentClassifierFunc(func(context.Context, string) (string, float64, error) {
				return tt.label, tt.prob, nil
			}), sentiment.DefaultScale(), nil)
			got := a.Analyze(context.Background(), "This is a sentence about the weather.")
			if got.Sentiment != tt.want || got.Score != tt.score || got.Confidence != tt.prob {
				t.Fatalf("unexpected result %+v", got)
			}
			if got.Label != tt.label || got.IsDegraded() {
				t.Fatalf("unexpected metadata %+v", got)
			}
			if !sentiment.DefaultScale().Consistent(got) {
				t.Fatal("sentiment does not follow score")
			}
		})
	}
}

func TestTextAnalyzerTruncatesInputAndPreview(t *testing.T) {
	var seen string
	a := NewTextAnalyzer(SentimentClassifierFunc(func(_ context.Context, text string) (string, float64, error) {
		seen = text
		return "positive", 0.7, nil
	}), sentiment.DefaultScale(), nil)
	long := strings.Repeat("é", 800)
	got := a.Analyze(context.Background(), long)
	if n := len([]rune(seen)); n != DefaultMaxChars {
		t.Fatalf("classifier saw %d runes, want %d", n, DefaultMaxChars)
	}
	if n := len([]rune(got.Transcript)); n != TranscriptPreviewLen {
		t.Fatalf("preview has %d runes, want %d", n, TranscriptPreviewLen)
	}
}

func TestTextAnalyzerClassifierFailures(t *testing.T) {
	a := NewTextAnalyzer(SentimentClassifierFunc(func(context.Context, string) (string, float64, error) {
		return "", 0, errors.New("service down")
	}), sentiment.DefaultScale(), nil)
	got := a.Analyze(context.Background(), "a perfectly ordinary sentence")
	if got.Degraded != sentiment.DegradedClassifierFailed || got.Confidence != 0 {
		t.Fatalf("unexpected result %+v", got)
	}

	a = NewTextAnalyzer(nil, sentiment.DefaultScale(), nil)
	got = a.Analyze(context.Background(), "a perfectly ordinary sentence")
	if got.Degraded != sentiment.DegradedNoClassifier {
		t.Fatalf("expected classifier_unavailable, got %+v", got)
	}
}

func TestTextAnalyzerClampsProbability(t *testing.T) {
	a := NewTextAnalyzer(testsupport.StaticSentiment{Label: "POSITIVE", Probability: 1.4}, sentiment.DefaultScale(), nil)
	got := a.Analyze(context.Background(), "what a wonderful evening this was")
	if got.Sentiment != sentiment.Positive || got.Confidence != 1 {
		t.Fatalf("expected positive at confidence 1, got %+v", got)
	}
	if got.Label != "POSITIVE" {
		t.Fatalf("label = %q", got.Label)
	}
}

func TestTextAnalyzerClassifierErrorKeepsPreview(t *testing.T) {
	a := NewTextAnalyzer(testsupport.StaticSentiment{Err: errors.New("model offline")}, sentiment.DefaultScale(), nil)
	got := a.Analyze(context.Background(), "  the weather report ran long today  ")
	if got.Degraded != sentiment.DegradedClassifierFailed {
		t.Fatalf("degraded = %q", got.Degraded)
	}
	if got.Transcript != "the weather report ran long today" {
		t.Fatalf("transcript preview = %q", got.Transcript)
	}
}

func TestTextAnalyzerNaNProbabilityIsClassifierFailure(t *testing.T) {
	a := NewTextAnalyzer(testsupport.StaticSentiment{Label: "positive", Probability: math.NaN()}, sentiment.DefaultScale(), nil)
	got := a.Analyze(context.Background(), "what a wonderful evening this was")
	if got.Degraded != sentiment.DegradedClassifierFailed {
		t.Fatalf("expected classifier_failed, got %+v", got)
	}
	if got.Confidence != 0 || got.Score != sentiment.NeutralScore || math.IsNaN(got.Score) {
		t.Fatalf("expected neutral fallback, got %+v", got)
	}
}
