package nodeflow

// Bridge moves state between a parent store and a subflow's child store.
type Bridge[P, C any] func(ctx Context, parent *Store[P], child *Store[C]) error

// Subflow nests a workflow inside a parent graph as a single unit. It owns
// its own graph and store (state type C) and bridges to the parent store
// (state type P):
//
//  1. preRun seeds the child store from the parent
//  2. the child workflow runs to completion
//  3. postRun lifts results from the child into the parent store
//
// postRun writes are committed before the parent graph resolves its next
// unit. Subflows may contain concurrent groups and further subflows.
type Subflow[P, C any] struct {
	id      string
	name    string
	graph   GraphFactory[C]
	store   StoreFactory[C]
	preRun  Bridge[P, C]
	postRun Bridge[P, C]
	opts    []WorkflowOption
}

// Compile-time interface check.
var _ Unit[struct{}] = (*Subflow[struct{}, struct{}])(nil)

// NewSubflow creates a subflow. Either bridge may be nil. The child run
// inherits hooks and logger from the parent run unless opts override them.
//
// Panics if either factory is nil. This indicates a programming error.
func NewSubflow[P, C any](
	name string,
	graph GraphFactory[C],
	store StoreFactory[C],
	preRun, postRun Bridge[P, C],
	opts ...WorkflowOption,
) *Subflow[P, C] {
	if graph == nil || store == nil {
		panic("nodeflow: subflow graph and store factories cannot be nil")
	}
	return &Subflow[P, C]{
		id:      newUnitID(),
		name:    name,
		graph:   graph,
		store:   store,
		preRun:  preRun,
		postRun: postRun,
		opts:    opts,
	}
}

// ID returns the subflow identity.
func (s *Subflow[P, C]) ID() string { return s.id }

// Name returns the subflow name.
func (s *Subflow[P, C]) Name() string { return s.name }

// Kind returns KindSubflow.
func (s *Subflow[P, C]) Kind() UnitKind { return KindSubflow }

// Execute runs pre_run, the child workflow, and post_run in sequence.
// Failures are wrapped in a *SubflowError naming the phase.
func (s *Subflow[P, C]) Execute(ctx Context, parent *Store[P]) error {
	child := s.store()
	if child == nil {
		return &SubflowError{UnitID: s.id, UnitName: s.name, Phase: PhasePreRun, Err: ErrNilStore}
	}

	if s.preRun != nil {
		if err := s.preRun(ctx, parent, child); err != nil {
			return &SubflowError{UnitID: s.id, UnitName: s.name, Phase: PhasePreRun, Err: err}
		}
	}

	wf := NewWorkflow(s.name, s.graph, SharedStore(child), s.opts...)
	if _, err := wf.Execute(ctx); err != nil {
		return &SubflowError{UnitID: s.id, UnitName: s.name, Phase: PhaseRun, Err: err}
	}

	if s.postRun != nil {
		if err := s.postRun(ctx, parent, child); err != nil {
			return &SubflowError{UnitID: s.id, UnitName: s.name, Phase: PhasePostRun, Err: err}
		}
	}
	return nil
}

func (s *Subflow[P, C]) contributeTopology(b *topologyBuilder) []string {
	g := s.graph()
	if g == nil {
		return nil
	}
	return g.appendTo(b)
}
