/*
Package nodeflow provides a graph-based workflow engine with a shared,
immutable, concurrency-safe state store.

# Overview

A workflow is a directed graph of executable units wired by conditional
edges and run against one store:

  - Node: the atomic unit of work, wrapping a Service
  - ConcurrentGroup: runs several units at once and joins them
  - Subflow: a nested workflow with its own graph and store, bridged to the
    parent store before and after it runs

Units never hold state. Everything lives in the Store, which is passed
explicitly to every unit.

# Basic Usage

	type State struct {
	    Count int    `json:"count"`
	    Path  string `json:"path"`
	}

	increment := nodeflow.Func("increment", func(ctx nodeflow.Context, s *nodeflow.Store[State]) error {
	    return s.Update(ctx, func(st State) (State, error) {
	        st.Count++
	        return st, nil
	    })
	})
	big := nodeflow.Func("big", markPath("big"))
	small := nodeflow.Func("small", markPath("small"))
	done := nodeflow.Func("done", finish)

	graph := nodeflow.NewGraph[State](increment, done,
	    nodeflow.NewEdge[State](increment, big, nodeflow.MustExpr[State]("count > 10")),
	    nodeflow.NewEdge[State](increment, small, nil),
	    nodeflow.NewEdge[State](big, done, nil),
	    nodeflow.NewEdge[State](small, done, nil),
	)
	if err := graph.Validate(); err != nil {
	    log.Fatal(err)
	}

	wf := nodeflow.NewWorkflow("counter", nodeflow.StaticGraph(graph), nodeflow.InitialState(State{}))
	exec, err := wf.Execute(context.Background())
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(exec.Path(), exec.State().Path) // [increment small done] small

# Transitions

Edges sharing a tail are tried in declaration order; the first whose
condition holds wins. Every unit except the sink should end with an
unconditional fallback edge, otherwise a run that matches nothing fails
with a *NoValidTransitionError.

Conditions are pure predicates over a state snapshot: ConditionFunc, When,
Not, All, Any, FieldEquals, or Expr for string expressions over the state's
JSON fields.

# Store

Store.State returns a deep copy. Update, Merge and Set are atomic
read-modify-write operations under one lock; results equal to the current
state are no-ops. Subscribers are called after the lock is released.
Committed states are checked against `validate` struct tags.

# Cycle Guard

Every unit may execute at most WithMaxIterations times per run (default
100). The next attempt fails with a *CycleGuardError.

# Concurrency

A ConcurrentGroup runs its members on goroutines against the same store.
The default policy is fail-fast: the first failure cancels the siblings'
context. WithWaitAll lets every member finish. Failures are reported as a
*ConcurrentGroupError.

# Error Handling

Nothing is retried or rolled back by the engine. Errors surface from
Workflow.Execute:

  - *ServiceError: a node's service returned an error
  - *PanicError: a unit panicked
  - *NoValidTransitionError: no edge resolved
  - *CycleGuardError: a unit exceeded its execution budget
  - *ConcurrentGroupError: one or more group members failed
  - *SubflowError: a subflow's pre_run, run, or post_run failed
  - *CancellationError: the context ended before a unit started

The Execution returned alongside the error keeps the last committed state.
Services that need retries use the retry package around their own calls.

# Observability

Lifecycle hooks (package hook) are called before and after every workflow
run and unit execution. The observability package provides OpenTelemetry
tracing and metrics hooks; hook.Recorder captures events for tests.
Graph.Topology exports the graph shape as JSON for visualization tools.
*/
package nodeflow
