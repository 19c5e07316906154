package observability

import (
	"context"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used for nodeflow spans.
const TracerName = "nodeflow"

// Span attribute keys.
const (
	AttrSpanType   = attribute.Key("nodeflow.span_type")
	AttrID         = attribute.Key("nodeflow.id")
	AttrName       = attribute.Key("nodeflow.name")
	AttrParentID   = attribute.Key("nodeflow.parent_id")
	AttrWorkflowID = attribute.Key("nodeflow.workflow_id")
	AttrStateStart = attribute.Key("nodeflow.state_start")
	AttrStateEnd   = attribute.Key("nodeflow.state_end")
	AttrGraphJSON  = attribute.Key("nodeflow.graph_json")
	AttrStatePatch = attribute.Key("nodeflow.state_patch")
)

// TracingHooks opens one span per workflow run and one per unit execution.
// Unit spans are children of the workflow span (or of the enclosing
// concurrent group span), and subflow runs nest under their subflow unit.
type TracingHooks struct {
	tracer       trace.Tracer
	recordStates bool
}

// Compile-time interface check.
var _ hook.Hooks = (*TracingHooks)(nil)

// TracingOption configures TracingHooks.
type TracingOption func(*TracingHooks)

// WithTracer sets the tracer. Default: otel.Tracer(TracerName) from the
// global provider at construction time.
func WithTracer(t trace.Tracer) TracingOption {
	return func(h *TracingHooks) {
		if t != nil {
			h.tracer = t
		}
	}
}

// WithStateAttributes controls whether state JSON, graph JSON and state
// patches are attached to spans. Default: true.
func WithStateAttributes(enabled bool) TracingOption {
	return func(h *TracingHooks) {
		h.recordStates = enabled
	}
}

// NewTracingHooks returns hooks that emit OpenTelemetry spans.
//
// Configure the global provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewTracingHooks(opts ...TracingOption) *TracingHooks {
	h := &TracingHooks{
		tracer:       otel.Tracer(TracerName),
		recordStates: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BeforeWorkflow starts the workflow span.
func (h *TracingHooks) BeforeWorkflow(ctx context.Context, info hook.WorkflowStart) context.Context {
	attrs := []attribute.KeyValue{
		AttrSpanType.String(hook.KindWorkflow),
		AttrID.String(info.ID),
		AttrName.String(info.Name),
	}
	if info.ParentID != "" {
		attrs = append(attrs, AttrParentID.String(info.ParentID))
	}
	if h.recordStates {
		attrs = append(attrs,
			AttrStateStart.String(info.StateJSON),
			AttrGraphJSON.String(info.GraphJSON),
		)
	}
	ctx, _ = h.tracer.Start(ctx, info.Name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx
}

// AfterWorkflow ends the workflow span.
func (h *TracingHooks) AfterWorkflow(ctx context.Context, info hook.WorkflowEnd) {
	span := trace.SpanFromContext(ctx)
	if h.recordStates {
		span.SetAttributes(AttrStateEnd.String(info.StateJSON))
	}
	EndSpanWithError(span, info.Err)
}

// BeforeNode starts a unit span.
func (h *TracingHooks) BeforeNode(ctx context.Context, info hook.NodeStart) context.Context {
	ctx, _ = h.tracer.Start(ctx, info.Name,
		trace.WithAttributes(
			AttrSpanType.String(info.Kind),
			AttrID.String(info.ID),
			AttrName.String(info.Name),
			AttrWorkflowID.String(info.WorkflowID),
			AttrParentID.String(info.ParentID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx
}

// AfterNode ends the unit span.
func (h *TracingHooks) AfterNode(ctx context.Context, info hook.NodeEnd) {
	span := trace.SpanFromContext(ctx)
	if h.recordStates && info.StatePatch != "" {
		span.SetAttributes(AttrStatePatch.String(info.StatePatch))
	}
	EndSpanWithError(span, info.Err)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
// Node services can use it to mark interesting points inside a unit span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
