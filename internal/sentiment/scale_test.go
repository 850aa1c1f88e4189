package sentiment

import (
	"encoding/json"
	"testing"
)

func TestScoreOf(t *testing.T) {
	scale := DefaultScale()
	cases := map[Sentiment]float64{Negative: 1, Neutral: 3, Positive: 5}
	for s, want := range cases {
		if got := scale.ScoreOf(s); got != want {
			t.Fatalf("ScoreOf(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestSentimentOfThresholds(t *testing.T) {
	scale := DefaultScale()
	tests := []struct {
		score float64
		want  Sentiment
	}{
		{1, Negative},
		{2.49, Negative},
		{2.5, Neutral},
		{3, Neutral},
		{3.5, Neutral},
		{3.51, Positive},
		{5, Positive},
	}
	for _, tc := range tests {
		if got := scale.SentimentOf(tc.score); got != tc.want {
			t.Fatalf("SentimentOf(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestScaleRoundTripsAnchors(t *testing.T) {
	scale := DefaultScale()
	for _, s := range []Sentiment{Negative, Neutral, Positive} {
		if got := scale.SentimentOf(scale.ScoreOf(s)); got != s {
			t.Fatalf("round trip of %s produced %s", s, got)
		}
	}
}

func TestFallbackIsConsistent(t *testing.T) {
	scale := DefaultScale()
	r := Fallback(Audio, DegradedAudioTooShort)
	if r.Confidence != 0 || r.Score != NeutralScore || r.Sentiment != Neutral {
		t.Fatalf("unexpected fallback %+v", r)
	}
	if !r.IsDegraded() {
		t.Fatal("expected fallback to report degraded")
	}
	if !scale.Consistent(r) {
		t.Fatal("fallback violates the scale")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(0.2) != MinScore || Clamp(7) != MaxScore || Clamp(2.2) != 2.2 {
		t.Fatal("clamp out of range")
	}
}

func TestSentimentJSON(t *testing.T) {
	payload, err := json.Marshal(map[string]Sentiment{"s": Negative})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"s":"negative"}` {
		t.Fatalf("unexpected json %s", payload)
	}
	var decoded map[string]Sentiment
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["s"] != Negative {
		t.Fatalf("unexpected decoded %v", decoded["s"])
	}
	if _, err := Parse("ecstatic"); err == nil {
		t.Fatal("expected parse error")
	}
}
