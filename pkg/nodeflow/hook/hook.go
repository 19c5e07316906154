// Package hook defines the lifecycle hook points nodeflow calls while a
// workflow runs. Telemetry exporters, loggers and test recorders implement
// Hooks; the engine does not care what they do.
package hook

import (
	"context"
	"time"
)

// Span types reported in NodeStart.Kind and used by telemetry hooks.
const (
	KindWorkflow   = "workflow"
	KindNode       = "node"
	KindConcurrent = "concurrent"
	KindSubflow    = "subflow"
)

// WorkflowStart describes a workflow run that is about to begin.
type WorkflowStart struct {
	// ID is the run identifier, unique per Execute call.
	ID string
	// Name is the workflow name.
	Name string
	// ParentID is the subflow unit ID for subflow runs, empty for root runs.
	ParentID string
	// StateJSON is the initial state.
	StateJSON string
	// GraphJSON is the exported topology of the graph being run.
	GraphJSON string
}

// WorkflowEnd describes a finished (or failed) workflow run.
type WorkflowEnd struct {
	ID        string
	Name      string
	ParentID  string
	StateJSON string
	Err       error
	Duration  time.Duration
}

// NodeStart describes a unit about to execute.
type NodeStart struct {
	ID         string
	Name       string
	Kind       string
	WorkflowID string
	// ParentID is the enclosing concurrent group ID for group members,
	// otherwise the workflow run ID.
	ParentID string
}

// NodeEnd describes a unit that finished executing.
type NodeEnd struct {
	ID         string
	Name       string
	Kind       string
	WorkflowID string
	// StatePatch is an RFC 7386 merge patch from the state before the unit
	// ran to the state after it. Writes by concurrently running siblings
	// may appear in it.
	StatePatch string
	Err        error
	Duration   time.Duration
}

// Hooks receives workflow lifecycle callbacks.
//
// Before* methods return the context that the engine uses for everything
// that happens inside the workflow or unit, which lets tracing hooks nest
// spans. Returning the given ctx unchanged is always valid.
//
// Implementations must be safe for concurrent use: members of a concurrent
// group report from separate goroutines.
type Hooks interface {
	BeforeWorkflow(ctx context.Context, info WorkflowStart) context.Context
	AfterWorkflow(ctx context.Context, info WorkflowEnd)
	BeforeNode(ctx context.Context, info NodeStart) context.Context
	AfterNode(ctx context.Context, info NodeEnd)
}

// Noop is a Hooks that does nothing.
type Noop struct{}

// Compile-time interface check.
var _ Hooks = Noop{}

// BeforeWorkflow returns ctx unchanged.
func (Noop) BeforeWorkflow(ctx context.Context, _ WorkflowStart) context.Context { return ctx }

// AfterWorkflow does nothing.
func (Noop) AfterWorkflow(_ context.Context, _ WorkflowEnd) {}

// BeforeNode returns ctx unchanged.
func (Noop) BeforeNode(ctx context.Context, _ NodeStart) context.Context { return ctx }

// AfterNode does nothing.
func (Noop) AfterNode(_ context.Context, _ NodeEnd) {}

// multi fans every callback out to a list of hooks in order.
type multi []Hooks

// Multi combines hooks into one. Before* callbacks run in order and thread
// the returned context through; After* callbacks run in reverse order so
// the innermost hook is closed first. Nil entries are skipped.
func Multi(hooks ...Hooks) Hooks {
	var hs multi
	for _, h := range hooks {
		if h == nil {
			continue
		}
		if m, ok := h.(multi); ok {
			hs = append(hs, m...)
			continue
		}
		hs = append(hs, h)
	}
	switch len(hs) {
	case 0:
		return Noop{}
	case 1:
		return hs[0]
	}
	return hs
}

func (m multi) BeforeWorkflow(ctx context.Context, info WorkflowStart) context.Context {
	for _, h := range m {
		ctx = h.BeforeWorkflow(ctx, info)
	}
	return ctx
}

func (m multi) AfterWorkflow(ctx context.Context, info WorkflowEnd) {
	for i := len(m) - 1; i >= 0; i-- {
		m[i].AfterWorkflow(ctx, info)
	}
}

func (m multi) BeforeNode(ctx context.Context, info NodeStart) context.Context {
	for _, h := range m {
		ctx = h.BeforeNode(ctx, info)
	}
	return ctx
}

func (m multi) AfterNode(ctx context.Context, info NodeEnd) {
	for i := len(m) - 1; i >= 0; i-- {
		m[i].AfterNode(ctx, info)
	}
}
