// Package observability carries nodeflow's telemetry: slog helpers used by
// the engine itself, plus OpenTelemetry tracing and metrics delivered as
// lifecycle hooks. Tracing and metrics are opt-in through
// nodeflow.WithHooks.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Log attribute keys.
const (
	KeyWorkflowID = "workflow_id"
	KeyUnitID     = "unit_id"
	KeyUnitName   = "unit_name"
	KeyUnit       = "unit"
	KeyError      = "error"
	KeyDuration   = "duration_ms"
)

// emit logs through logger when it is non-nil.
func emit(logger *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func errAttr(err error) slog.Attr { return slog.String(KeyError, err.Error()) }

// EnrichLogger returns logger scoped to one unit of one run.
//
//	EnrichLogger(logger, "wf-123", "a1b2", "fetch").Info("doing work")
func EnrichLogger(logger *slog.Logger, workflowID, unitID, unitName string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String(KeyWorkflowID, workflowID),
		slog.String(KeyUnitID, unitID),
		slog.String(KeyUnitName, unitName),
	)
}

// LogRunStart logs a run starting. parentID is set for subflow runs.
func LogRunStart(logger *slog.Logger, workflowID, name, parentID string) {
	attrs := []slog.Attr{slog.String(KeyWorkflowID, workflowID), slog.String("workflow", name)}
	if parentID != "" {
		attrs = append(attrs, slog.String("parent_id", parentID))
	}
	emit(logger, slog.LevelInfo, "workflow starting", attrs...)
}

func LogRunComplete(logger *slog.Logger, workflowID string, durationMs float64, unitCount int) {
	emit(logger, slog.LevelInfo, "workflow completed",
		slog.String(KeyWorkflowID, workflowID),
		slog.Float64(KeyDuration, durationMs),
		slog.Int("units_executed", unitCount))
}

// LogRunError logs a failed run and the last unit it reached.
func LogRunError(logger *slog.Logger, workflowID string, err error, durationMs float64, lastUnit string) {
	emit(logger, slog.LevelError, "workflow failed",
		slog.String(KeyWorkflowID, workflowID),
		errAttr(err),
		slog.Float64(KeyDuration, durationMs),
		slog.String("last_unit", lastUnit))
}

func LogUnitStart(logger *slog.Logger, unitName, kind string) {
	emit(logger, slog.LevelDebug, "unit starting", slog.String(KeyUnit, unitName), slog.String("kind", kind))
}

func LogUnitComplete(logger *slog.Logger, unitName string, durationMs float64) {
	emit(logger, slog.LevelDebug, "unit completed", slog.String(KeyUnit, unitName), slog.Float64(KeyDuration, durationMs))
}

func LogUnitError(logger *slog.Logger, unitName string, err error) {
	emit(logger, slog.LevelError, "unit failed", slog.String(KeyUnit, unitName), errAttr(err))
}

// LogTransition logs the edge taken between two units.
func LogTransition(logger *slog.Logger, from, to string) {
	emit(logger, slog.LevelDebug, "transition", slog.String("from", from), slog.String("to", to))
}

// LogStatePatchError logs a failed hook patch computation. Hooks then
// receive an empty patch.
func LogStatePatchError(logger *slog.Logger, unitName string, err error) {
	emit(logger, slog.LevelWarn, "state patch failed", slog.String(KeyUnit, unitName), errAttr(err))
}

// TimedOperation starts a stopwatch; the returned func reports elapsed
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 { return millis(time.Since(start)) }
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
