package nodeflow

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
)

func TestNewContext(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		ctx := NewContext(context.Background())
		assert.NotEmpty(t, ctx.RunID())
		assert.Equal(t, ctx.RunID(), ctx.UnitID())
		assert.Empty(t, ctx.ParentID())
		assert.NotNil(t, ctx.Logger())
	})

	t.Run("options", func(t *testing.T) {
		logger := discardLogger()
		rec := hook.NewRecorder()
		ctx := NewContext(context.Background(),
			WithContextLogger(logger),
			WithContextRunID("run-1"),
			WithContextHooks(rec),
		)
		assert.Equal(t, "run-1", ctx.RunID())
		assert.Equal(t, "run-1", ctx.UnitID())

		// units executed under the context report to its hooks
		group := NewConcurrentGroup[testState]("g", []Unit[testState]{visit("a")})
		require.NoError(t, group.Execute(ctx, NewStore(testState{})))
		starts := rec.Filter(hook.EventBeforeNode)
		require.Len(t, starts, 1)
		assert.Equal(t, "run-1", starts[0].WorkflowID)
	})

	t.Run("empty overrides are ignored", func(t *testing.T) {
		ctx := NewContext(context.Background(), WithContextRunID(""), WithContextLogger(nil))
		assert.NotEmpty(t, ctx.RunID())
		assert.NotNil(t, ctx.Logger())
	})

	t.Run("cancellation propagates", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		ctx := NewContext(parent)
		cancel()
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context not cancelled")
		}
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}

func TestExecutionContext_WithUnit(t *testing.T) {
	var buf syncBuffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ec := NewContext(context.Background(), WithContextLogger(base), WithContextRunID("run")).(*executionContext)

	unit := ec.withUnit("u1", "first")
	assert.Equal(t, "u1", unit.UnitID())
	assert.Equal(t, "run", unit.ParentID())
	assert.Equal(t, "run", unit.RunID())

	nested := unit.withUnit("u2", "second")
	assert.Equal(t, "u1", nested.ParentID())

	nested.Logger().Info("hi")
	out := buf.String()
	assert.Contains(t, out, "unit_id=u2")
	assert.Contains(t, out, "unit_name=second")
	assert.NotContains(t, out, "unit_id=u1", "enrichment replaces, not stacks")
}

// foreignContext is a Context implementation outside the engine.
type foreignContext struct {
	context.Context
}

func (foreignContext) Logger() *slog.Logger { return discardLogger() }
func (foreignContext) RunID() string        { return "foreign-run" }
func (foreignContext) UnitID() string       { return "foreign-unit" }
func (foreignContext) ParentID() string     { return "" }

func TestAsExecutionContext(t *testing.T) {
	ec := asExecutionContext(foreignContext{context.Background()})
	assert.Equal(t, "foreign-run", ec.RunID())
	assert.Equal(t, "foreign-unit", ec.UnitID())
	assert.NotNil(t, ec.Logger())

	group := NewConcurrentGroup[testState]("g", []Unit[testState]{visit("a")})
	store := NewStore(testState{})
	require.NoError(t, group.Execute(foreignContext{context.Background()}, store))
	assert.Equal(t, []string{"a"}, store.State().Path)
}

func TestNewRunContext_InheritsFromParent(t *testing.T) {
	rec := hook.NewRecorder()
	parent := NewContext(context.Background(), WithContextHooks(rec), WithContextLogger(discardLogger())).(*executionContext)
	unit := parent.withUnit("sub", "subflow")

	child := newRunContext(unit, "child-run", &workflowConfig{})
	assert.Equal(t, "sub", child.ParentID())
	assert.Equal(t, "child-run", child.RunID())
	assert.Equal(t, "child-run", child.UnitID())
	assert.Same(t, rec, child.hooks)

	override := hook.NewRecorder()
	child = newRunContext(unit, "child-run", &workflowConfig{hooks: override})
	assert.Same(t, override, child.hooks)
}
