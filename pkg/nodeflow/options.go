package nodeflow

import (
	"log/slog"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/config"
	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
)

// DefaultMaxIterations is the default per-unit execution budget.
const DefaultMaxIterations = config.DefaultMaxIterations

// workflowConfig holds configuration for workflow execution.
type workflowConfig struct {
	maxIterations int
	hooks         hook.Hooks
	logger        *slog.Logger
}

// defaultWorkflowConfig returns the default execution configuration.
func defaultWorkflowConfig() workflowConfig {
	return workflowConfig{
		maxIterations: DefaultMaxIterations,
	}
}

// WorkflowOption configures a Workflow or Subflow.
type WorkflowOption func(*workflowConfig)

// WithMaxIterations sets how many times any single unit may execute in one
// run. Default: 100
//
// This prevents infinite loops from hanging forever. Graphs that loop
// legitimately more often must raise the limit. Non-positive values are
// ignored.
//
// Example:
//
//	wf := nodeflow.NewWorkflow("poll", graph, store, nodeflow.WithMaxIterations(500))
func WithMaxIterations(n int) WorkflowOption {
	return func(c *workflowConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithHooks sets the lifecycle hooks. Multiple hooks are combined with
// hook.Multi. Subflows inherit the parent's hooks unless they set their own.
func WithHooks(hooks ...hook.Hooks) WorkflowOption {
	return func(c *workflowConfig) {
		c.hooks = hook.Multi(hooks...)
	}
}

// WithLogger sets the logger. Default: slog.Default(), or the parent's
// logger for subflows.
//
// Units receive it through Context.Logger(), enriched with workflow_id,
// unit_id and unit_name.
func WithLogger(logger *slog.Logger) WorkflowOption {
	return func(c *workflowConfig) {
		c.logger = logger
	}
}

// WithSettings applies engine settings loaded from a config file.
func WithSettings(s config.Settings) WorkflowOption {
	return WithMaxIterations(s.MaxIterations)
}
