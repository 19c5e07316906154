package nodeflow

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Graph is an immutable topology: a source unit, a sink unit, and an ordered
// edge list. Edges sharing a tail are evaluated in declaration order and the
// first one that resolves wins.
type Graph[S any] struct {
	source Unit[S]
	sink   Unit[S]
	edges  []*Edge[S]

	// outgoing indexes edges by tail ID, preserving declaration order.
	outgoing map[string][]*Edge[S]
}

// NewGraph creates a graph. The edge slice is copied.
//
// Panics if source or sink is nil, or an edge is nil.
// These indicate programming errors.
func NewGraph[S any](source, sink Unit[S], edges ...*Edge[S]) *Graph[S] {
	if source == nil || sink == nil {
		panic("nodeflow: graph source and sink cannot be nil")
	}
	g := &Graph[S]{
		source:   source,
		sink:     sink,
		edges:    make([]*Edge[S], len(edges)),
		outgoing: make(map[string][]*Edge[S]),
	}
	for i, e := range edges {
		if e == nil {
			panic(fmt.Sprintf("nodeflow: edge %d is nil", i))
		}
		g.edges[i] = e
		tail := e.tail.ID()
		g.outgoing[tail] = append(g.outgoing[tail], e)
	}
	return g
}

// Source returns the first unit to execute.
func (g *Graph[S]) Source() Unit[S] { return g.source }

// Sink returns the terminal unit. Executing it ends the workflow.
func (g *Graph[S]) Sink() Unit[S] { return g.sink }

// Edges returns a copy of the edge list in declaration order.
func (g *Graph[S]) Edges() []*Edge[S] {
	out := make([]*Edge[S], len(g.edges))
	copy(out, g.edges)
	return out
}

// Units returns every unit in the graph once, in discovery order: source,
// then edge endpoints in declaration order, then sink.
func (g *Graph[S]) Units() []Unit[S] {
	seen := make(map[string]bool)
	var units []Unit[S]
	add := func(u Unit[S]) {
		if !seen[u.ID()] {
			seen[u.ID()] = true
			units = append(units, u)
		}
	}
	add(g.source)
	for _, e := range g.edges {
		add(e.tail)
		add(e.head)
	}
	add(g.sink)
	return units
}

// Next resolves the unit that follows current. Outgoing edges are tried in
// declaration order against the store's current state; the head of the first
// edge that resolves is returned. When none resolves the error is a
// *NoValidTransitionError.
func (g *Graph[S]) Next(store *Store[S], current Unit[S]) (Unit[S], error) {
	edges := g.outgoing[current.ID()]
	for _, e := range edges {
		if next := e.Resolve(store); next != nil {
			return next, nil
		}
	}
	return nil, &NoValidTransitionError{
		UnitID:       current.ID(),
		UnitName:     current.Name(),
		EdgesChecked: len(edges),
	}
}

// Validate checks the graph structure. Multiple errors are joined together.
//
// Errors:
//   - two different units share an ID (ErrDuplicateUnitID)
//   - the sink is not reachable from the source (ErrNoPathToSink)
//
// Units unreachable from the source, units that cannot reach the sink, and
// units whose outgoing edges are all conditional are logged as warnings but
// do not fail validation.
func (g *Graph[S]) Validate() error {
	return g.validate(slog.Default())
}

func (g *Graph[S]) validate(logger *slog.Logger) error {
	var errs []error

	// 1. Unit identity
	byID := make(map[string]Unit[S])
	check := func(u Unit[S]) {
		if prev, ok := byID[u.ID()]; ok {
			if !sameUnit(prev, u) {
				errs = append(errs, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateUnitID, u.ID(), prev.Name(), u.Name()))
			}
			return
		}
		byID[u.ID()] = u
	}
	check(g.source)
	for _, e := range g.edges {
		check(e.tail)
		check(e.head)
	}
	check(g.sink)

	// 2. Sink reachable from source
	reachable := g.reachableFromSource()
	if !reachable[g.sink.ID()] {
		errs = append(errs, ErrNoPathToSink)
	}

	// Warnings only
	canReachSink := g.canReachSink()
	for _, u := range g.Units() {
		id := u.ID()
		if !reachable[id] {
			logger.Warn("unit is unreachable from source", slog.String("unit_id", id), slog.String("unit", u.Name()))
			continue
		}
		if !canReachSink[id] {
			logger.Warn("unit cannot reach sink", slog.String("unit_id", id), slog.String("unit", u.Name()))
			continue
		}
		if id != g.sink.ID() && !g.hasFallback(id) {
			logger.Warn("unit has no unconditional fallback edge", slog.String("unit_id", id), slog.String("unit", u.Name()))
		}
	}

	return errors.Join(errs...)
}

// reachableFromSource returns the set of unit IDs reachable from the source,
// treating every edge as traversable.
func (g *Graph[S]) reachableFromSource() map[string]bool {
	reachable := map[string]bool{g.source.ID(): true}
	queue := []string{g.source.ID()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == g.sink.ID() {
			continue
		}
		for _, e := range g.outgoing[current] {
			head := e.head.ID()
			if !reachable[head] {
				reachable[head] = true
				queue = append(queue, head)
			}
		}
	}
	return reachable
}

// canReachSink returns the set of unit IDs with some edge path to the sink.
func (g *Graph[S]) canReachSink() map[string]bool {
	can := map[string]bool{g.sink.ID(): true}
	changed := true
	for changed {
		changed = false
		for _, e := range g.edges {
			tail := e.tail.ID()
			if !can[tail] && can[e.head.ID()] {
				can[tail] = true
				changed = true
			}
		}
	}
	return can
}

func (g *Graph[S]) hasFallback(id string) bool {
	for _, e := range g.outgoing[id] {
		if e.condition == nil {
			return true
		}
	}
	return false
}

// sameUnit reports whether a and b are the same unit instance.
func sameUnit(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	return va.Type().Comparable() && a == b
}
