package fusion

import (
	"math"
	"testing"

	"valence/internal/sentiment"
)

func reading(m sentiment.Modality, s sentiment.Sentiment, confidence float64) sentiment.ModalityResult {
	scale := sentiment.DefaultScale()
	return sentiment.ModalityResult{Modality: m, Sentiment: s, Score: scale.ScoreOf(s), Confidence: confidence}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFuseAllZeroConfidence(t *testing.T) {
	engine := New(nil)
	got := engine.Fuse(
		sentiment.Fallback(sentiment.Text, sentiment.DegradedNoTranscript),
		sentiment.Fallback(sentiment.Visual, sentiment.DegradedNoFrames),
		sentiment.Fallback(sentiment.Audio, sentiment.DegradedAudioTooShort),
	)
	want := sentiment.FusionResult{Sentiment: sentiment.Neutral, Score: 3}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFuseDegenerateWeights(t *testing.T) {
	engine := New(nil)
	engine.Weights = [sentiment.ModalityCount]float64{}
	got := engine.Fuse(
		reading(sentiment.Text, sentiment.Positive, 0.9),
		reading(sentiment.Visual, sentiment.Negative, 0.9),
		reading(sentiment.Audio, sentiment.Neutral, 0.9),
	)
	want := sentiment.FusionResult{Sentiment: sentiment.Neutral, Score: 3}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFuseInconsistency(t *testing.T) {
	engine := New(nil)
	got := engine.Fuse(
		reading(sentiment.Text, sentiment.Positive, 0.9),
		reading(sentiment.Visual, sentiment.Negative, 0.9),
		reading(sentiment.Audio, sentiment.Neutral, 0.9),
	)
	if !got.Inconsistency {
		t.Fatal("expected inconsistency")
	}
	if !approx(got.Confidence, 0.9) {
		t.Fatalf("expected confidence 0.9, got %v", got.Confidence)
	}
}

func TestFuseAgreementIsConsistent(t *testing.T) {
	engine := New(nil)
	got := engine.Fuse(
		reading(sentiment.Text, sentiment.Positive, 0.9),
		reading(sentiment.Visual, sentiment.Neutral, 0.1),
		reading(sentiment.Audio, sentiment.Positive, 0.8),
	)
	if got.Inconsistency {
		t.Fatal("did not expect inconsistency")
	}
	if !approx(got.Confidence, 0.6) {
		t.Fatalf("expected confidence 0.6, got %v", got.Confidence)
	}
}

func TestGatedWeightsHalvesLowConfidence(t *testing.T) {
	engine := New(nil)
	inputs := [sentiment.ModalityCount]sentiment.ModalityResult{
		reading(sentiment.Text, sentiment.Positive, 0.2),
		reading(sentiment.Visual, sentiment.Positive, 0.5),
		reading(sentiment.Audio, sentiment.Positive, 0.7),
	}
	weights := engine.GatedWeights(inputs)
	want := [sentiment.ModalityCount]float64{0.2, 0.35, 0.25}
	for i := range want {
		if !approx(weights[i], want[i]) {
			t.Fatalf("weight[%d] = %v, want %v", i, weights[i], want[i])
		}
	}
}

func TestFuseWeightedScore(t *testing.T) {
	engine := New(nil)
	got := engine.Fuse(
		reading(sentiment.Text, sentiment.Positive, 0.2),
		reading(sentiment.Visual, sentiment.Positive, 1),
		reading(sentiment.Audio, sentiment.Negative, 0.7),
	)
	// Gated weights 0.2/0.35/0.25 renormalize by 0.8.
	w := [3]float64{0.25, 0.4375, 0.3125}
	raw := w[0]*5*0.2 + w[1]*5*1 + w[2]*1*0.7
	if !approx(got.Score, raw) {
		t.Fatalf("expected score %v, got %v", raw, got.Score)
	}
	for i := range w {
		if !approx(got.Weights[i], w[i]) {
			t.Fatalf("weights[%d] = %v, want %v", i, got.Weights[i], w[i])
		}
	}
	if got.Sentiment != sentiment.DefaultScale().SentimentOf(got.Score) {
		t.Fatalf("fused sentiment %s does not follow score %v", got.Sentiment, got.Score)
	}
}

func TestFuseBoundsHold(t *testing.T) {
	engine := New(nil)
	sentiments := []sentiment.Sentiment{sentiment.Negative, sentiment.Neutral, sentiment.Positive}
	confidences := []float64{0, 0.1, 0.3, 0.75, 1}
	for _, ts := range sentiments {
		for _, vs := range sentiments {
			for _, as := range sentiments {
				for _, c := range confidences {
					got := engine.Fuse(
						reading(sentiment.Text, ts, c),
						reading(sentiment.Visual, vs, 1-c),
						reading(sentiment.Audio, as, c),
					)
					if got.Score < 1 || got.Score > 5 {
						t.Fatalf("score out of range: %+v", got)
					}
					if got.Confidence < 0 || got.Confidence > 1 {
						t.Fatalf("confidence out of range: %+v", got)
					}
					if got.Sentiment != engine.Scale.SentimentOf(got.Score) {
						t.Fatalf("sentiment not derived from score: %+v", got)
					}
				}
			}
		}
	}
}

func TestFuseOrderOfNeutralsNeverInconsistent(t *testing.T) {
	inputs := [sentiment.ModalityCount]sentiment.ModalityResult{
		reading(sentiment.Text, sentiment.Negative, 1),
		reading(sentiment.Visual, sentiment.Neutral, 1),
		reading(sentiment.Audio, sentiment.Negative, 1),
	}
	if Inconsistent(inputs) {
		t.Fatal("agreeing negatives flagged as inconsistent")
	}
}
