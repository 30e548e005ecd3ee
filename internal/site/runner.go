package site

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pressgen/internal/errors"
	"git.home.luguber.info/inful/pressgen/internal/metrics"
	"git.home.luguber.info/inful/pressgen/internal/observability"
)

// runStages executes stages in order, recording timing and stopping on the
// first failing stage. Individual stages are responsible for collecting all
// their diagnostics before returning; the runner never truncates them.
func runStages(ctx context.Context, bs *BuildState, rec metrics.Recorder, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			rec.IncStageResult(string(st.Name), "canceled")
			return errors.Wrap(ctx.Err(), errors.CategoryRuntime, errors.SeverityFatal,
				"build canceled before stage "+string(st.Name))
		default:
		}

		stageCtx := observability.WithStage(ctx, string(st.Name))
		observability.DebugContext(stageCtx, "Stage starting")

		t0 := time.Now()
		err := st.Fn(stageCtx, bs)
		dur := time.Since(t0)

		bs.StageDurations[st.Name] = dur
		rec.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			rec.IncStageResult(string(st.Name), "error")
			observability.ErrorContext(stageCtx, "Stage failed",
				slog.Duration("duration", dur), slog.Any("error", err))
			return err
		}
		rec.IncStageResult(string(st.Name), "ok")
		observability.DebugContext(stageCtx, "Stage finished", slog.Duration("duration", dur))
	}
	return nil
}
