package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricUnitExecutions  = "nodeflow.unit.executions"
	MetricUnitErrors      = "nodeflow.unit.errors"
	MetricUnitLatency     = "nodeflow.unit.latency_ms"
	MetricWorkflowRuns    = "nodeflow.workflow.runs"
	MetricWorkflowLatency = "nodeflow.workflow.latency_ms"
)

// MetricsRecorder receives unit and workflow completions.
type MetricsRecorder interface {
	RecordUnitExecution(ctx context.Context, unitName, kind string, duration time.Duration, err error)
	RecordWorkflowRun(ctx context.Context, workflowName string, success bool, duration time.Duration)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordUnitExecution(context.Context, string, string, time.Duration, error) {}
func (NoopMetrics) RecordWorkflowRun(context.Context, string, bool, time.Duration)            {}

type otelMetrics struct {
	unitRuns        metric.Int64Counter
	unitErrors      metric.Int64Counter
	unitLatency     metric.Float64Histogram
	workflowRuns    metric.Int64Counter
	workflowLatency metric.Float64Histogram
}

var (
	_ MetricsRecorder = NoopMetrics{}
	_ MetricsRecorder = (*otelMetrics)(nil)
)

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ms"))
		errs = append(errs, err)
		return h
	}

	m := &otelMetrics{
		unitRuns:        counter(MetricUnitExecutions, "Unit executions"),
		unitErrors:      counter(MetricUnitErrors, "Unit executions that returned an error"),
		unitLatency:     histogram(MetricUnitLatency, "Unit execution latency"),
		workflowRuns:    counter(MetricWorkflowRuns, "Workflow runs"),
		workflowLatency: histogram(MetricWorkflowLatency, "Workflow run latency"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("create nodeflow instruments: %w", err)
	}
	return m, nil
}

var globalMetrics = sync.OnceValues(func() (*otelMetrics, error) {
	return newOtelMetrics(otel.Meter(TracerName))
})

// NewMetricsRecorder returns a recorder on the global meter provider, or
// NoopMetrics if the instruments cannot be created.
func NewMetricsRecorder() MetricsRecorder {
	m, err := globalMetrics()
	if err != nil {
		slog.Warn("nodeflow metrics disabled", slog.String(KeyError, err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMeterRecorder returns a recorder bound to meter.
func NewMeterRecorder(meter metric.Meter) (MetricsRecorder, error) {
	return newOtelMetrics(meter)
}

func (m *otelMetrics) RecordUnitExecution(ctx context.Context, unitName, kind string, duration time.Duration, err error) {
	attrs := metric.WithAttributeSet(attribute.NewSet(
		attribute.String("unit", unitName),
		attribute.String("kind", kind),
	))
	m.unitRuns.Add(ctx, 1, attrs)
	m.unitLatency.Record(ctx, millis(duration), attrs)
	if err != nil {
		m.unitErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordWorkflowRun(ctx context.Context, workflowName string, success bool, duration time.Duration) {
	attrs := metric.WithAttributeSet(attribute.NewSet(
		attribute.String("workflow", workflowName),
		attribute.Bool("success", success),
	))
	m.workflowRuns.Add(ctx, 1, attrs)
	m.workflowLatency.Record(ctx, millis(duration), attrs)
}

// MetricsHooks feeds unit and workflow completions into a MetricsRecorder.
type MetricsHooks struct {
	hook.Noop
	recorder MetricsRecorder
}

var _ hook.Hooks = (*MetricsHooks)(nil)

// NewMetricsHooks wraps recorder. A nil recorder uses NewMetricsRecorder().
func NewMetricsHooks(recorder MetricsRecorder) *MetricsHooks {
	if recorder == nil {
		recorder = NewMetricsRecorder()
	}
	return &MetricsHooks{recorder: recorder}
}

func (h *MetricsHooks) AfterWorkflow(ctx context.Context, info hook.WorkflowEnd) {
	h.recorder.RecordWorkflowRun(ctx, info.Name, info.Err == nil, info.Duration)
}

func (h *MetricsHooks) AfterNode(ctx context.Context, info hook.NodeEnd) {
	h.recorder.RecordUnitExecution(ctx, info.Name, info.Kind, info.Duration, info.Err)
}
