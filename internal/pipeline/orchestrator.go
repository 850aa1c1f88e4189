package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"valence/internal/extract"
	"valence/internal/logging"
	"valence/internal/sentiment"
	"valence/internal/services"
)

// DefaultMaxDurationSeconds is the longest accepted input.
const DefaultMaxDurationSeconds = 60.0

// Options controls validation and scheduling.
type Options struct {
	MaxDurationSeconds float64
	Parallel           bool
}

// Dependencies are the collaborators of an Orchestrator.
type Dependencies struct {
	Prober    Prober
	Extractor Extractor
	Text      TextAnalyzer
	Visual    VisualAnalyzer
	Audio     AudioAnalyzer
	Fusion    Fuser
}

// Orchestrator runs analysis requests. It holds no per-request state and is
// safe for concurrent use.
type Orchestrator struct {
	opts   Options
	deps   Dependencies
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// New returns an orchestrator.
func New(opts Options, deps Dependencies, logger *slog.Logger) (*Orchestrator, error) {
	switch {
	case deps.Prober == nil:
		return nil, errors.New("pipeline: prober is required")
	case deps.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case deps.Text == nil || deps.Visual == nil || deps.Audio == nil:
		return nil, errors.New("pipeline: all three analyzers are required")
	case deps.Fusion == nil:
		return nil, errors.New("pipeline: fusion engine is required")
	}
	if opts.MaxDurationSeconds <= 0 {
		opts.MaxDurationSeconds = DefaultMaxDurationSeconds
	}
	return &Orchestrator{
		opts:   opts,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}, nil
}

// Analyze runs one request for video. The only returned errors are input
// errors (matching services.ErrInput) and context cancellation.
func (o *Orchestrator) Analyze(ctx context.Context, video string, sink ProgressSink) (Report, error) {
	started := o.now()
	report := Report{
		RequestID: o.newID(),
		Video:     video,
		StartedAt: started,
	}
	ctx = services.WithRequestID(ctx, report.RequestID)
	ctx = services.WithVideo(ctx, video)
	logger := logging.WithContext(ctx, o.logger)
	prog := &progress{sink: sink}

	err := runStage(ctx, o.logger, "validate", func(stageCtx context.Context) error {
		duration, err := o.validate(stageCtx, video)
		report.Duration = duration
		return err
	})
	if err != nil {
		return report, err
	}
	prog.report(0.1, LabelExtracting)

	var extracted extract.Result
	_ = runStage(ctx, o.logger, "extract", func(stageCtx context.Context) error {
		extracted = o.extract(stageCtx, video)
		return nil
	})
	defer extracted.Release()
	if err := ctx.Err(); err != nil {
		return report, err
	}
	prog.report(0.3, LabelText)

	var results [sentiment.ModalityCount]sentiment.ModalityResult
	_ = runStage(ctx, o.logger, "analyze", func(stageCtx context.Context) error {
		results = o.analyze(stageCtx, video, extracted, prog)
		return nil
	})
	if err := ctx.Err(); err != nil {
		return report, err
	}

	_ = runStage(ctx, o.logger, "fuse", func(context.Context) error {
		report.Fusion = o.deps.Fusion.Fuse(results[sentiment.Text], results[sentiment.Visual], results[sentiment.Audio])
		return nil
	})

	report.Text = results[sentiment.Text]
	report.Visual = results[sentiment.Visual]
	report.Audio = results[sentiment.Audio]
	report.Transcript = excerpt(extracted.Transcript, ReportTranscriptLen)
	report.Elapsed = o.now().Sub(started)
	prog.report(1.0, LabelDone)

	logger.Info("analysis complete",
		logging.String(logging.FieldEventType, "analysis_complete"),
		logging.String("sentiment", report.Fusion.Sentiment.String()),
		logging.Float64("score", report.Fusion.Score),
		logging.Float64("confidence", report.Fusion.Confidence),
		logging.Bool("inconsistency", report.Fusion.Inconsistency),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (o *Orchestrator) validate(ctx context.Context, video string) (float64, error) {
	if strings.TrimSpace(video) == "" {
		return 0, services.Wrap(services.ErrInput, "validate", "path", "video path is empty", nil)
	}
	info, err := os.Stat(video)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, services.Wrap(services.ErrInput, "validate", "path", fmt.Sprintf("video %q does not exist", video), nil)
		}
		return 0, services.Wrap(services.ErrInput, "validate", "path", "stat video", err)
	}
	if info.IsDir() {
		return 0, services.Wrap(services.ErrInput, "validate", "path", fmt.Sprintf("%q is a directory", video), nil)
	}
	duration, err := o.deps.Prober.ProbeDuration(ctx, video)
	if err != nil {
		return 0, services.Wrap(services.ErrInput, "validate", "probe", "read duration", err)
	}
	if math.IsNaN(duration) || duration <= 0 {
		return 0, services.Wrap(services.ErrInput, "validate", "probe", "video has no usable duration", nil)
	}
	if duration > o.opts.MaxDurationSeconds {
		return duration, services.Wrap(services.ErrInput, "validate", "duration",
			fmt.Sprintf("video is %.1fs, limit is %.0fs", duration, o.opts.MaxDurationSeconds), nil)
	}
	return duration, nil
}

func (o *Orchestrator) extract(ctx context.Context, video string) extract.Result {
	result, err := o.deps.Extractor.Extract(ctx, video)
	if result.Release == nil {
		result.Release = func() {}
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "extraction failed; continuing without audio",
			"extraction_degraded",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ffmpeg and the audio track of the input"),
			logging.String(logging.FieldImpact, "text and audio modalities fall back to neutral"),
		)
		release := result.Release
		return extract.Result{
			Transcript: extract.UnavailableTranscript(err.Error()),
			Release:    release,
		}
	}
	if result.TranscriptErr != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "transcript unavailable",
			"extraction_degraded",
			logging.Error(result.TranscriptErr),
			logging.String(logging.FieldImpact, "text modality falls back to neutral"),
		)
	}
	return result
}

func (o *Orchestrator) analyze(ctx context.Context, video string, extracted extract.Result, prog *progress) [sentiment.ModalityCount]sentiment.ModalityResult {
	var results [sentiment.ModalityCount]sentiment.ModalityResult
	tasks := [sentiment.ModalityCount]func(context.Context) sentiment.ModalityResult{
		sentiment.Text: func(c context.Context) sentiment.ModalityResult {
			return o.deps.Text.Analyze(c, extracted.Transcript)
		},
		sentiment.Visual: func(c context.Context) sentiment.ModalityResult {
			return o.deps.Visual.Analyze(c, video)
		},
		sentiment.Audio: func(c context.Context) sentiment.ModalityResult {
			return o.deps.Audio.Analyze(c, extracted.Samples, extracted.SampleRate)
		},
	}

	var mu sync.Mutex
	run := func(m sentiment.Modality) {
		result := tasks[m](services.WithModality(ctx, m.String()))
		result.Modality = m
		mu.Lock()
		results[m] = result
		prog.analyzerDone()
		mu.Unlock()
	}

	if !o.opts.Parallel {
		for _, m := range sentiment.Modalities {
			run(m)
		}
		return results
	}

	var wg sync.WaitGroup
	for _, m := range sentiment.Modalities {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(m)
		}()
	}
	wg.Wait()
	return results
}

func excerpt(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
