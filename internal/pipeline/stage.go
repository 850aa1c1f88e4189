package pipeline

import (
	"context"
	"log/slog"
	"time"

	"valence/internal/logging"
	"valence/internal/services"
)

// runStage executes fn with the stage stamped on the context and logs its
// start and outcome.
func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)
	started := time.Now()

	stageLogger.Debug("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
	)
	if err := fn(stageCtx); err != nil {
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.Error(err),
			logging.Duration("elapsed", time.Since(started)),
		)
		return err
	}
	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// progress serializes sink calls and drops any fraction that would not
// advance the request.
type progress struct {
	sink ProgressSink
	last float64
	next int
}

var analyzerSteps = [...]struct {
	fraction float64
	label    string
}{
	{0.5, LabelFace},
	{0.7, LabelVoice},
	{0.9, LabelCombining},
}

func (p *progress) report(fraction float64, label string) {
	if p.sink == nil || fraction <= p.last {
		return
	}
	p.last = fraction
	p.sink(fraction, label)
}

// analyzerDone advances to the next analyzer step. Callers hold the lock
// guarding p.
func (p *progress) analyzerDone() {
	if p.next >= len(analyzerSteps) {
		return
	}
	step := analyzerSteps[p.next]
	p.next++
	p.report(step.fraction, step.label)
}
