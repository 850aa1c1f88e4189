package main

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"valence/internal/logging"
	"valence/internal/pipeline"
	"valence/internal/sentiment"
	"valence/internal/services"
)

type fakeAnalyzer struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	fail     map[string]error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, video string, sink pipeline.ProgressSink) (pipeline.Report, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	// Earlier arguments finish later so ordering cannot come from completion.
	time.Sleep(time.Duration(10-len(video)) * time.Millisecond)
	if err := f.fail[video]; err != nil {
		return pipeline.Report{Video: video}, err
	}
	if sink != nil {
		sink(0.5, pipeline.LabelFace)
		sink(1, pipeline.LabelDone)
	}
	return pipeline.Report{Video: video, RequestID: "id-" + video}, nil
}

func TestRunAnalysesKeepsArgumentOrder(t *testing.T) {
	fake := &fakeAnalyzer{}
	videos := []string{"a", "bb", "ccc", "dddd"}
	outcomes := runAnalyses(context.Background(), fake, videos, 2, logging.NewNop())

	if len(outcomes) != len(videos) {
		t.Fatalf("expected %d outcomes, got %d", len(videos), len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.Video != videos[i] || outcome.Report == nil || outcome.Report.RequestID != "id-"+videos[i] {
			t.Fatalf("outcome %d out of order: %+v", i, outcome)
		}
	}
	if peak := fake.peak.Load(); peak > 2 {
		t.Fatalf("expected at most 2 concurrent analyses, saw %d", peak)
	}
}

func TestSummarizeOutcomesUsesWorstExitCode(t *testing.T) {
	inputErr := services.Wrap(services.ErrInput, "validate", "duration", "too long", nil)
	fake := &fakeAnalyzer{fail: map[string]error{
		"long": inputErr,
		"bad":  errors.New("boom"),
	}}
	outcomes := runAnalyses(context.Background(), fake, []string{"ok", "long", "bad"}, 1, logging.NewNop())

	err := summarizeOutcomes(outcomes)
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := services.ExitCode(err); code != services.ExitInput {
		t.Fatalf("expected exit code %d, got %d", services.ExitInput, code)
	}
	requireContains(t, err.Error(), "2 of 3 videos failed")
	if outcomes[0].Report == nil || outcomes[1].Error == "" {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}

	if err := summarizeOutcomes(outcomes[:1]); err != nil {
		t.Fatalf("expected nil for all-success, got %v", err)
	}
}

func TestAnalyzeMissingVideoIsInputError(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.mp4")

	out, _, err := runCLI(t, []string{"analyze", "--json", missing}, env.configPath)
	if err == nil {
		t.Fatal("expected analyze to fail")
	}
	if code := services.ExitCode(err); code != services.ExitInput {
		t.Fatalf("expected input exit code, got %d (%v)", code, err)
	}

	var outcomes []analysisOutcome
	if decodeErr := json.Unmarshal([]byte(out), &outcomes); decodeErr != nil {
		t.Fatalf("decode output %q: %v", out, decodeErr)
	}
	if len(outcomes) != 1 || outcomes[0].Video != missing || !strings.Contains(outcomes[0].Error, "does not exist") {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
}

func TestRenderReportShowsVerdict(t *testing.T) {
	report := pipeline.Report{
		RequestID: "req-1",
		Video:     "clip.mp4",
		Duration:  12.5,
		Fusion: sentiment.FusionResult{
			Sentiment:     sentiment.Positive,
			Score:         3.9,
			Confidence:    0.8,
			Inconsistency: true,
			Weights:       [sentiment.ModalityCount]float64{0.4, 0.35, 0.25},
		},
		Text:       sentiment.ModalityResult{Modality: sentiment.Text, Sentiment: sentiment.Positive, Score: 4.5, Confidence: 0.9, Label: "POSITIVE"},
		Visual:     sentiment.ModalityResult{Modality: sentiment.Visual, Sentiment: sentiment.Negative, Score: 2, Confidence: 0.9, Frames: 12},
		Audio:      sentiment.ModalityResult{Modality: sentiment.Audio, Score: 3, Degraded: sentiment.DegradedAudioTooShort},
		Transcript: "what a great day",
	}
	out := renderReport(report, false)
	for _, want := range []string{"positive (score 3.90, confidence 0.80)", "modalities disagree", "12 frames", "degraded: audio_too_short", "what a great day", "req-1"} {
		requireContains(t, out, want)
	}
}
