package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"valence/internal/logging"
	"valence/internal/pipeline"
)

// videoAnalyzer is the slice of the orchestrator the command drives.
type videoAnalyzer interface {
	Analyze(ctx context.Context, video string, sink pipeline.ProgressSink) (pipeline.Report, error)
}

type analysisOutcome struct {
	Video  string           `json:"video"`
	Report *pipeline.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
	err    error
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var quiet bool
	var jobs int

	cmd := &cobra.Command{
		Use:   "analyze <video>...",
		Short: "Analyze the sentiment of one or more short videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr(), quiet || jsonOutput)
			if err != nil {
				return err
			}
			orchestrator, err := buildOrchestrator(cfg, logger)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("jobs") {
				jobs = cfg.Pipeline.Jobs
			}

			outcomes := runAnalyses(cmd.Context(), orchestrator, args, jobs, logger)
			if jsonOutput {
				if err := writeJSON(cmd, outcomes); err != nil {
					return err
				}
			} else {
				renderOutcomes(cmd.OutOrStdout(), outcomes, shouldColorize(cmd.OutOrStdout()))
			}
			return summarizeOutcomes(outcomes)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit reports as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "Number of videos analyzed concurrently")
	return cmd
}

// runAnalyses analyzes videos with at most jobs requests in flight. Outcomes
// are returned in argument order.
func runAnalyses(ctx context.Context, a videoAnalyzer, videos []string, jobs int, logger *slog.Logger) []analysisOutcome {
	if jobs <= 0 {
		jobs = 1
	}
	outcomes := make([]analysisOutcome, len(videos))
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for i, video := range videos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report, err := a.Analyze(ctx, video, progressLogger(logger, video))
			outcome := analysisOutcome{Video: video, err: err}
			if err != nil {
				outcome.Error = err.Error()
			} else {
				outcome.Report = &report
			}
			outcomes[i] = outcome
		}()
	}
	wg.Wait()
	return outcomes
}

// progressLogger logs request progress in quarter steps.
func progressLogger(logger *slog.Logger, video string) pipeline.ProgressSink {
	sampler := logging.NewProgressSampler(0.25)
	return func(fraction float64, label string) {
		if !sampler.ShouldLog(fraction, "") {
			return
		}
		logger.Info("analysis progress",
			logging.String(logging.FieldVideo, video),
			logging.String(logging.FieldStage, label),
			logging.Float64(logging.FieldProgress, fraction*100),
		)
	}
}

// summarizeOutcomes joins the per-video failures. The exit code follows the
// most severe one.
func summarizeOutcomes(outcomes []analysisOutcome) error {
	var errs []error
	for _, outcome := range outcomes {
		if outcome.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", outcome.Video, outcome.err))
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("%d of %d videos failed: %w", len(errs), len(outcomes), errors.Join(errs...))
	}
}
