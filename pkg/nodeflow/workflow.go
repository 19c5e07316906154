package nodeflow

import (
	"context"
)

// GraphFactory produces the graph for one run.
type GraphFactory[S any] func() *Graph[S]

// StoreFactory produces the store for one run.
type StoreFactory[S any] func() *Store[S]

// StaticGraph reuses one graph for every run. Graphs are immutable, so this
// is safe as long as the units themselves are stateless.
func StaticGraph[S any](g *Graph[S]) GraphFactory[S] {
	return func() *Graph[S] { return g }
}

// InitialState gives every run a fresh store seeded with a copy of initial.
// Use it whenever a workflow definition runs more than once or concurrently.
func InitialState[S any](initial S, opts ...StoreOption) StoreFactory[S] {
	return func() *Store[S] { return NewStore(initial, opts...) }
}

// SharedStore hands the same store to every run. Runs then see each other's
// writes; prefer InitialState unless that is the point.
func SharedStore[S any](store *Store[S]) StoreFactory[S] {
	return func() *Store[S] { return store }
}

// Workflow walks a graph from source to sink against one store.
//
// Each Execute call asks the factories for a graph and a store, so a single
// Workflow definition can run many times, including concurrently, when the
// factories return fresh instances.
type Workflow[S any] struct {
	name  string
	graph GraphFactory[S]
	store StoreFactory[S]
	cfg   workflowConfig
}

// NewWorkflow creates a workflow.
//
// Panics if either factory is nil. This indicates a programming error.
//
// Example:
//
//	wf := nodeflow.NewWorkflow("orders",
//	    nodeflow.StaticGraph(graph),
//	    nodeflow.InitialState(State{}),
//	    nodeflow.WithHooks(observability.NewTracingHooks()))
//	exec, err := wf.Execute(ctx)
func NewWorkflow[S any](name string, graph GraphFactory[S], store StoreFactory[S], opts ...WorkflowOption) *Workflow[S] {
	if graph == nil || store == nil {
		panic("nodeflow: workflow graph and store factories cannot be nil")
	}
	cfg := defaultWorkflowConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Workflow[S]{name: name, graph: graph, store: store, cfg: cfg}
}

// Name returns the workflow name.
func (w *Workflow[S]) Name() string { return w.name }

// Topology returns the topology of a graph produced by the graph factory.
func (w *Workflow[S]) Topology() Topology {
	g := w.graph()
	if g == nil {
		return newTopologyBuilder().topology()
	}
	return g.Topology()
}

// Execute runs the workflow to completion.
//
// Execution flow:
//  1. Start at the graph's source
//  2. Check the cycle guard and cancellation
//  3. Execute the current unit
//  4. Stop if it was the sink
//  5. Otherwise resolve the next unit from the graph and repeat
//
// Any error aborts the run immediately and is returned unmodified. Nothing
// is retried or rolled back. The returned Execution is non-nil whenever ctx
// is non-nil, even on failure.
func (w *Workflow[S]) Execute(ctx context.Context) (*Execution[S], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	exec := newExecution[S](newUnitID(), w.name)
	ec := newRunContext(ctx, exec.id, &w.cfg)
	exec.parentID = ec.parentID

	graph := w.graph()
	if graph == nil {
		exec.finish(ErrNilGraph)
		return exec, ErrNilGraph
	}
	store := w.store()
	if store == nil {
		exec.finish(ErrNilStore)
		return exec, ErrNilStore
	}
	exec.setStore(store)

	err := w.run(ec, exec, graph, store)
	return exec, err
}

// loop is the run-loop proper.
func (w *Workflow[S]) loop(ec *executionContext, exec *Execution[S], graph *Graph[S], store *Store[S]) error {
	current := graph.Source()
	sinkID := graph.Sink().ID()

	for {
		if exec.Count(current.ID()) >= w.cfg.maxIterations {
			return &CycleGuardError{
				UnitID:   current.ID(),
				UnitName: current.Name(),
				Max:      w.cfg.maxIterations,
			}
		}
		exec.record(current.ID(), current.Name())

		if err := runUnit(ec, current, store); err != nil {
			return err
		}

		if current.ID() == sinkID {
			return nil
		}

		next, err := graph.Next(store, current)
		if err != nil {
			return err
		}
		logTransition(ec, current, next)
		current = next
	}
}
