// Package testsupport holds fakes and fixtures shared by the test suites.
package testsupport

import (
	"context"
	"image"
	"strconv"
	"sync"

	"valence/internal/media/ffprobe"
)

// FakeProber returns a canned ffprobe result built from a duration and the
// presence of audio and video streams.
type FakeProber struct {
	Duration float64
	Audio    bool
	Video    bool
	FPS      int
	Err      error
}

// Probe implements the ffprobe-style inspection used by extraction and frames.
func (p FakeProber) Probe(context.Context, string) (ffprobe.Result, error) {
	if p.Err != nil {
		return ffprobe.Result{}, p.Err
	}
	fps := p.FPS
	if fps <= 0 {
		fps = 25
	}
	result := ffprobe.Result{Format: ffprobe.Format{Duration: formatSeconds(p.Duration)}}
	if p.Video {
		result.Streams = append(result.Streams, ffprobe.Stream{
			CodecType:    "video",
			AvgFrameRate: strconv.Itoa(fps) + "/1",
		})
	}
	if p.Audio {
		result.Streams = append(result.Streams, ffprobe.Stream{CodecType: "audio", SampleRate: "16000", Channels: 1})
	}
	return result, nil
}

// ProbeDuration implements the pipeline prober.
func (p FakeProber) ProbeDuration(context.Context, string) (float64, error) {
	return p.Duration, p.Err
}

// EmotionSequence returns labels in order, cycling once exhausted. It is
// safe for concurrent use.
type EmotionSequence struct {
	mu     sync.Mutex
	Labels []string
	next   int
}

// ClassifyEmotion implements an emotion classifier.
func (s *EmotionSequence) ClassifyEmotion(context.Context, image.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Labels) == 0 {
		return "neutral", nil
	}
	label := s.Labels[s.next%len(s.Labels)]
	s.next++
	return label, nil
}

// StaticSentiment always returns the same label and probability.
type StaticSentiment struct {
	Label       string
	Probability float64
	Err         error
}

// ClassifySentiment implements a text classifier.
func (s StaticSentiment) ClassifySentiment(context.Context, string) (string, float64, error) {
	return s.Label, s.Probability, s.Err
}

func formatSeconds(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
