package nodeflow

import (
	"encoding/json"
	"runtime/debug"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
	"github.com/randalmurphal/nodeflow/pkg/nodeflow/observability"
)

// run wraps the loop with workflow-level hooks and logging.
func (w *Workflow[S]) run(ec *executionContext, exec *Execution[S], graph *Graph[S], store *Store[S]) (runErr error) {
	tracking := hooksEnabled(ec.hooks)
	done := observability.TimedOperation()

	start := hook.WorkflowStart{ID: exec.id, Name: w.name, ParentID: ec.parentID}
	if tracking {
		start.StateJSON = stateJSONOrEmpty(ec, store)
		start.GraphJSON = graphJSONOrEmpty(ec, graph)
	}
	hctx := ec.hooks.BeforeWorkflow(ec.Context, start)
	rc := ec.withContext(hctx)

	observability.LogRunStart(ec.base, exec.id, w.name, ec.parentID)
	exec.start()

	runErr = w.loop(rc, exec, graph, store)
	exec.finish(runErr)

	end := hook.WorkflowEnd{
		ID:       exec.id,
		Name:     w.name,
		ParentID: ec.parentID,
		Err:      runErr,
		Duration: exec.Duration(),
	}
	if tracking {
		end.StateJSON = stateJSONOrEmpty(ec, store)
	}
	ec.hooks.AfterWorkflow(hctx, end)

	if runErr != nil {
		observability.LogRunError(ec.base, exec.id, runErr, done(), exec.lastUnit())
	} else {
		observability.LogRunComplete(ec.base, exec.id, done(), len(exec.Path()))
	}
	return runErr
}

// runUnit executes one unit with cancellation check, hooks, logging and
// panic recovery. Workflows and concurrent groups both dispatch through it.
func runUnit[S any](ec *executionContext, u Unit[S], store *Store[S]) error {
	if err := ec.Err(); err != nil {
		return &CancellationError{UnitID: u.ID(), UnitName: u.Name(), Cause: err}
	}

	tracking := hooksEnabled(ec.hooks)
	var before []byte
	if tracking {
		before = stateBytes(ec, store)
	}

	start := time.Now()
	hctx := ec.hooks.BeforeNode(ec.Context, hook.NodeStart{
		ID:         u.ID(),
		Name:       u.Name(),
		Kind:       string(u.Kind()),
		WorkflowID: ec.runID,
		ParentID:   ec.unitID,
	})
	uctx := ec.withContext(hctx).withUnit(u.ID(), u.Name())

	observability.LogUnitStart(uctx.logger, u.Name(), string(u.Kind()))
	err := executeUnit(uctx, u, store)
	duration := time.Since(start)

	end := hook.NodeEnd{
		ID:         u.ID(),
		Name:       u.Name(),
		Kind:       string(u.Kind()),
		WorkflowID: ec.runID,
		Err:        err,
		Duration:   duration,
	}
	if tracking {
		end.StatePatch = statePatch(uctx, u, before, stateBytes(ec, store))
	}
	ec.hooks.AfterNode(hctx, end)

	if err != nil {
		observability.LogUnitError(uctx.logger, u.Name(), err)
		return err
	}
	observability.LogUnitComplete(uctx.logger, u.Name(), float64(duration.Microseconds())/1000)
	return nil
}

// executeUnit calls u.Execute, converting a panic into a *PanicError.
func executeUnit[S any](ctx *executionContext, u Unit[S], store *Store[S]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				UnitID:   u.ID(),
				UnitName: u.Name(),
				Value:    r,
				Stack:    string(debug.Stack()),
			}
		}
	}()
	return u.Execute(ctx, store)
}

// hooksEnabled reports whether hooks need state and graph JSON.
func hooksEnabled(h hook.Hooks) bool {
	_, noop := h.(hook.Noop)
	return !noop
}

func logTransition[S any](ec *executionContext, from, to Unit[S]) {
	observability.LogTransition(ec.logger, from.Name(), to.Name())
}

// stateBytes encodes the store's current state for patch computation.
func stateBytes[S any](ec *executionContext, store *Store[S]) []byte {
	data, err := json.Marshal(*store.current.Load())
	if err != nil {
		ec.logger.Warn("state encode failed", "error", err.Error())
		return nil
	}
	return data
}

// statePatch returns the RFC 7386 merge patch between two encoded states,
// or "" when either side is unavailable.
func statePatch[S any](ec *executionContext, u Unit[S], before, after []byte) string {
	if before == nil || after == nil {
		return ""
	}
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		observability.LogStatePatchError(ec.logger, u.Name(), err)
		return ""
	}
	return string(patch)
}

func stateJSONOrEmpty[S any](ec *executionContext, store *Store[S]) string {
	s, err := store.StateJSON()
	if err != nil {
		ec.logger.Warn("state encode failed", "error", err.Error())
		return ""
	}
	return s
}

func graphJSONOrEmpty[S any](ec *executionContext, graph *Graph[S]) string {
	s, err := graph.TopologyJSON()
	if err != nil {
		ec.logger.Warn("topology encode failed", "error", err.Error())
		return ""
	}
	return s
}
