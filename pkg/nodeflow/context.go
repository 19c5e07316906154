package nodeflow

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
	"github.com/randalmurphal/nodeflow/pkg/nodeflow/observability"
)

// Context provides execution context to units.
// It extends context.Context with nodeflow-specific services and metadata.
//
// The store a unit operates on is always passed explicitly to Execute; the
// context never carries state.
type Context interface {
	context.Context

	// Logger returns the run logger, enriched with workflow and unit fields.
	// Never returns nil.
	Logger() *slog.Logger

	// RunID returns the identifier of the current workflow execution.
	RunID() string

	// UnitID returns the unit being executed. Outside any unit it is the
	// workflow execution ID.
	UnitID() string

	// ParentID returns the identifier of the enclosing scope: the workflow
	// execution for top-level units, the group for concurrent members, and
	// the subflow unit for a child workflow.
	ParentID() string
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	base     *slog.Logger
	logger   *slog.Logger
	hooks    hook.Hooks
	runID    string
	unitID   string
	parentID string
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// RunID returns the workflow execution identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// UnitID returns the current unit identifier.
func (c *executionContext) UnitID() string {
	return c.unitID
}

// ParentID returns the enclosing scope identifier.
func (c *executionContext) ParentID() string {
	return c.parentID
}

// withContext returns a copy wrapping a different context.Context, typically
// the one returned by a hook or a group's errgroup.
func (c *executionContext) withContext(ctx context.Context) *executionContext {
	cp := *c
	cp.Context = ctx
	return &cp
}

// withUnit returns a copy scoped to the given unit with an enriched logger.
func (c *executionContext) withUnit(id, name string) *executionContext {
	cp := *c
	cp.parentID = c.unitID
	cp.unitID = id
	cp.logger = observability.EnrichLogger(c.base, c.runID, id, name)
	return &cp
}

// newRunContext builds the context for one workflow execution. When ctx
// already belongs to a running unit, hooks and logger are inherited unless
// overridden and the enclosing unit becomes the parent.
func newRunContext(ctx context.Context, runID string, cfg *workflowConfig) *executionContext {
	ec := &executionContext{
		Context: ctx,
		base:    slog.Default(),
		hooks:   hook.Noop{},
		runID:   runID,
		unitID:  runID,
	}

	if parent, ok := ctx.(*executionContext); ok {
		ec.Context = parent.Context
		ec.base = parent.base
		ec.hooks = parent.hooks
		ec.parentID = parent.unitID
	}

	if cfg.logger != nil {
		ec.base = cfg.logger
	}
	if cfg.hooks != nil {
		ec.hooks = cfg.hooks
	}
	ec.logger = ec.base.With(slog.String("workflow_id", runID))
	return ec
}

// ContextOption configures a Context created with NewContext.
type ContextOption func(*executionContext)

// WithContextLogger sets the logger for the context.
func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		if logger != nil {
			c.base = logger
		}
	}
}

// WithContextRunID sets the run identifier for the context.
// If not set, a UUID is generated.
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		if id != "" {
			c.runID = id
		}
	}
}

// WithContextHooks sets the hooks units executed under the context report to.
func WithContextHooks(hooks ...hook.Hooks) ContextOption {
	return func(c *executionContext) {
		c.hooks = hook.Multi(hooks...)
	}
}

// NewContext creates a Context for executing units outside a workflow,
// typically to exercise a single node, group, or subflow in a test.
//
// Example:
//
//	ctx := nodeflow.NewContext(context.Background())
//	err := node.Execute(ctx, nodeflow.NewStore(State{}))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		base:    slog.Default(),
		hooks:   hook.Noop{},
		runID:   newUnitID(),
	}
	for _, opt := range opts {
		opt(ec)
	}
	ec.unitID = ec.runID
	ec.logger = ec.base.With(slog.String("workflow_id", ec.runID))
	return ec
}

// asExecutionContext returns ctx as the internal implementation, adopting a
// foreign Context implementation if necessary.
func asExecutionContext(ctx Context) *executionContext {
	if ec, ok := ctx.(*executionContext); ok {
		return ec
	}
	logger := ctx.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return &executionContext{
		Context:  ctx,
		base:     logger,
		logger:   logger,
		hooks:    hook.Noop{},
		runID:    ctx.RunID(),
		unitID:   ctx.UnitID(),
		parentID: ctx.ParentID(),
	}
}
