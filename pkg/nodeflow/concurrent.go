package nodeflow

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/config"
	"golang.org/x/sync/errgroup"
)

// ConcurrentGroup runs several units at once against the same store and
// joins them before the graph continues. To the graph it is one opaque unit.
//
// Members start in declaration order, each on its own goroutine; completion
// order is unspecified. Because members share the store, their updates are
// serialized by the store lock: no update is lost, but the final state is
// deterministic only when members write disjoint fields.
//
// Failure policy, fail-fast by default: the first member failure cancels the
// context seen by the others and the group returns once every member has
// settled. Cancellation errors caused by that are not reported. With
// WithWaitAll every member runs to completion regardless and all failures
// are reported. Either way failures come back as a *ConcurrentGroupError in
// declaration order.
type ConcurrentGroup[S any] struct {
	id             string
	name           string
	units          []Unit[S]
	failFast       bool
	maxConcurrency int
}

// Compile-time interface check.
var _ Unit[struct{}] = (*ConcurrentGroup[struct{}])(nil)

// GroupOption configures a ConcurrentGroup.
type GroupOption func(*groupConfig)

type groupConfig struct {
	failFast       bool
	maxConcurrency int
}

// WithFailFast selects the fail-fast policy. This is the default.
func WithFailFast() GroupOption {
	return func(c *groupConfig) { c.failFast = true }
}

// WithWaitAll selects the wait-for-all policy: sibling failures do not
// cancel the remaining members.
func WithWaitAll() GroupOption {
	return func(c *groupConfig) { c.failFast = false }
}

// WithMaxConcurrency limits how many members run at once. Zero or negative
// means no limit.
func WithMaxConcurrency(n int) GroupOption {
	return func(c *groupConfig) {
		if n < 0 {
			n = 0
		}
		c.maxConcurrency = n
	}
}

// GroupSettings turns engine settings into group options.
func GroupSettings(s config.Settings) []GroupOption {
	opts := []GroupOption{WithMaxConcurrency(s.MaxConcurrency)}
	if s.FailFast {
		opts = append(opts, WithFailFast())
	} else {
		opts = append(opts, WithWaitAll())
	}
	return opts
}

// NewConcurrentGroup creates a group over units.
//
// Panics if units is empty or contains nil. These indicate programming errors.
func NewConcurrentGroup[S any](name string, units []Unit[S], opts ...GroupOption) *ConcurrentGroup[S] {
	if len(units) == 0 {
		panic("nodeflow: concurrent group needs at least one unit")
	}
	for _, u := range units {
		if u == nil {
			panic("nodeflow: concurrent group unit cannot be nil")
		}
	}
	cfg := groupConfig{failFast: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	members := make([]Unit[S], len(units))
	copy(members, units)
	return &ConcurrentGroup[S]{
		id:             newUnitID(),
		name:           name,
		units:          members,
		failFast:       cfg.failFast,
		maxConcurrency: cfg.maxConcurrency,
	}
}

// ID returns the group identity.
func (g *ConcurrentGroup[S]) ID() string { return g.id }

// Name returns the group name.
func (g *ConcurrentGroup[S]) Name() string { return g.name }

// Kind returns KindConcurrent.
func (g *ConcurrentGroup[S]) Kind() UnitKind { return KindConcurrent }

// Units returns a copy of the members in declaration order.
func (g *ConcurrentGroup[S]) Units() []Unit[S] {
	out := make([]Unit[S], len(g.units))
	copy(out, g.units)
	return out
}

// Execute runs every member and waits for all of them.
func (g *ConcurrentGroup[S]) Execute(ctx Context, store *Store[S]) error {
	ec := asExecutionContext(ctx)

	var eg *errgroup.Group
	gctx := context.Context(ec)
	if g.failFast {
		eg, gctx = errgroup.WithContext(ec.Context)
	} else {
		eg = &errgroup.Group{}
		gctx = ec.Context
	}
	if g.maxConcurrency > 0 {
		eg.SetLimit(g.maxConcurrency)
	}

	mctx := ec.withContext(gctx)
	errs := make([]error, len(g.units))
	// first is the index of the member whose failure cancelled the others.
	var first atomic.Int64
	first.Store(-1)
	for i, u := range g.units {
		eg.Go(func() error {
			err := runUnit(mctx, u, store)
			errs[i] = err
			if err != nil {
				first.CompareAndSwap(-1, int64(i))
			}
			return err
		})
	}
	_ = eg.Wait()

	return g.collect(ec, int(first.Load()), errs)
}

// collect builds the group error from member results. Under fail-fast,
// members other than first that only failed with context.Canceled were
// cancelled by the group and are dropped, unless nothing else failed or the
// parent context itself ended.
func (g *ConcurrentGroup[S]) collect(ec *executionContext, first int, errs []error) error {
	var all, primary []MemberFailure
	for i, err := range errs {
		if err == nil {
			continue
		}
		f := MemberFailure{UnitID: g.units[i].ID(), UnitName: g.units[i].Name(), Err: err}
		all = append(all, f)
		if g.failFast && ec.Err() == nil && i != first && errors.Is(err, context.Canceled) {
			continue
		}
		primary = append(primary, f)
	}
	if len(all) == 0 {
		return nil
	}
	if len(primary) == 0 {
		primary = all
	}
	return &ConcurrentGroupError{GroupID: g.id, GroupName: g.name, Failures: primary}
}

func (g *ConcurrentGroup[S]) contributeTopology(b *topologyBuilder) []string {
	children := make([]string, len(g.units))
	for i, u := range g.units {
		children[i] = b.addUnit(u)
	}
	return children
}
