package nodeflow

// Edge is a directed link from tail to head, optionally gated by a condition.
type Edge[S any] struct {
	tail      Unit[S]
	head      Unit[S]
	condition Condition[S]
}

// NewEdge creates an edge. A nil condition always resolves.
//
// Panics if tail or head is nil, or if they are the same unit.
// These indicate programming errors.
func NewEdge[S any](tail, head Unit[S], condition Condition[S]) *Edge[S] {
	if tail == nil || head == nil {
		panic("nodeflow: edge tail and head cannot be nil")
	}
	if tail.ID() == head.ID() {
		panic("nodeflow: edge tail and head must be different units: " + tail.Name())
	}
	return &Edge[S]{tail: tail, head: head, condition: condition}
}

// Tail returns the unit the edge leaves from.
func (e *Edge[S]) Tail() Unit[S] { return e.tail }

// Head returns the unit the edge leads to.
func (e *Edge[S]) Head() Unit[S] { return e.head }

// Condition returns the gate, or nil for an unconditional edge.
func (e *Edge[S]) Condition() Condition[S] { return e.condition }

// Resolve returns the head when the edge is unconditional or its condition
// holds for the store's current state, and nil otherwise.
func (e *Edge[S]) Resolve(store *Store[S]) Unit[S] {
	if e.condition == nil {
		return e.head
	}
	if e.condition.Evaluate(store.State()) {
		return e.head
	}
	return nil
}
