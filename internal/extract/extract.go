// Package extract pulls the speech track out of a video, decodes it to mono
// samples and transcribes it.
//
// Extraction failures are reported to the caller, which substitutes a
// sentinel transcript. A transcription failure after a successful decode
// keeps the decoded audio and only replaces the transcript.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"valence/internal/logging"
	"valence/internal/media/ffprobe"
	"valence/internal/media/pcm"
	"valence/internal/services"
	"valence/internal/services/whisperx"
)

// TranscriptErrorMarker prefixes every sentinel transcript.
const TranscriptErrorMarker = "[transcription unavailable"

// Sentinel reasons.
const (
	ReasonNoAudioTrack = "no audio track"
	ReasonDisabled     = "transcription disabled"
)

// UnavailableTranscript builds the sentinel transcript for reason.
func UnavailableTranscript(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown error"
	}
	return TranscriptErrorMarker + ": " + reason + "]"
}

// IsUnavailable reports whether transcript is a sentinel.
func IsUnavailable(transcript string) bool {
	return strings.HasPrefix(strings.TrimSpace(transcript), TranscriptErrorMarker)
}

// Result carries the decoded audio and transcript of one video.
type Result struct {
	Samples       []float64
	SampleRate    int
	Transcript    string
	TranscriptErr error
	HasAudio      bool

	// Release removes transient files. It is never nil and is safe to call
	// more than once.
	Release func()
}

// Prober inspects a video's streams.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Result, error)
}

// AudioExtractor writes the speech track of source to a WAV file.
type AudioExtractor interface {
	ExtractFullAudio(ctx context.Context, source, dest string) error
}

// Transcriber converts a WAV file to text.
type Transcriber interface {
	TranscribeFile(ctx context.Context, source, outputDir string) (whisperx.Transcript, error)
}

// Extractor performs audio extraction and transcription.
type Extractor struct {
	prober      Prober
	audio       AudioExtractor
	transcriber Transcriber
	workDir     string
	logger      *slog.Logger
}

// New returns an extractor. A nil transcriber disables transcription.
func New(prober Prober, audio AudioExtractor, transcriber Transcriber, workDir string, logger *slog.Logger) *Extractor {
	return &Extractor{
		prober:      prober,
		audio:       audio,
		transcriber: transcriber,
		workDir:     workDir,
		logger:      logging.NewComponentLogger(logger, "extract"),
	}
}

func noRelease() {}

// Extract decodes the first audio stream of path and transcribes it.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	result := Result{Release: noRelease}
	if e.prober == nil || e.audio == nil {
		return result, services.Wrap(services.ErrConfiguration, "extract", "init", "extractor not configured", nil)
	}

	probe, err := e.prober.Probe(ctx, path)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "extract", "ffprobe", "inspect streams", err)
	}
	if !probe.HasAudio() {
		result.Transcript = UnavailableTranscript(ReasonNoAudioTrack)
		return result, nil
	}
	result.HasAudio = true

	if err := os.MkdirAll(e.workDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "extract", "work dir", "create work directory", err)
	}
	tempDir, err := os.MkdirTemp(e.workDir, "extract-")
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "extract", "work dir", "create temp directory", err)
	}
	release := releaseOnce(func() {
		if err := os.RemoveAll(tempDir); err != nil {
			e.logger.Debug("temp cleanup failed", logging.String("path", tempDir), logging.Error(err))
		}
	})
	result.Release = release

	wavPath := filepath.Join(tempDir, "audio.wav")
	if err := e.audio.ExtractFullAudio(ctx, path, wavPath); err != nil {
		release()
		return Result{Release: noRelease}, services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", "extract audio", err)
	}
	audio, err := pcm.ReadWAVFile(wavPath)
	if err != nil {
		release()
		return Result{Release: noRelease}, services.Wrap(services.ErrExternalTool, "extract", "decode", "decode wav", err)
	}
	result.Samples = audio.Samples
	result.SampleRate = audio.SampleRate

	if e.transcriber == nil {
		result.Transcript = UnavailableTranscript(ReasonDisabled)
		return result, nil
	}
	transcript, err := e.transcriber.TranscribeFile(ctx, wavPath, tempDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			release()
			return Result{Release: noRelease}, err
		}
		result.TranscriptErr = services.Wrap(services.ErrExternalTool, "extract", "whisperx", "transcribe", err)
		result.Transcript = UnavailableTranscript(err.Error())
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "transcription failed; keeping decoded audio",
			"transcription_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the WhisperX installation and uvx cache"),
			logging.String(logging.FieldImpact, "text modality falls back to neutral"),
		)
		return result, nil
	}
	result.Transcript = transcript.Text
	return result, nil
}

func releaseOnce(fn func()) func() {
	var once sync.Once
	return func() { once.Do(fn) }
}
