package nodeflow

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a workflow execution.
type Status int

// Execution states. Finished and Failed are terminal.
const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusFinished
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Execution records one run of a workflow. It is returned even when the run
// fails, so the last committed state stays readable for diagnostics.
type Execution[S any] struct {
	id       string
	name     string
	parentID string

	mu       sync.Mutex
	status   Status
	path     []pathEntry
	counts   map[string]int
	store    *Store[S]
	err      error
	started  time.Time
	finished time.Time
}

type pathEntry struct {
	id   string
	name string
}

func newExecution[S any](id, name string) *Execution[S] {
	return &Execution[S]{
		id:     id,
		name:   name,
		counts: make(map[string]int),
	}
}

// ID returns the run identifier.
func (e *Execution[S]) ID() string { return e.id }

// Name returns the workflow name.
func (e *Execution[S]) Name() string { return e.name }

// ParentID returns the enclosing subflow unit ID, or "" for a root run.
func (e *Execution[S]) ParentID() string { return e.parentID }

// Status returns the current lifecycle state.
func (e *Execution[S]) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Path returns the names of the units executed, in order.
func (e *Execution[S]) Path() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, len(e.path))
	for i, p := range e.path {
		names[i] = p.name
	}
	return names
}

// PathIDs returns the IDs of the units executed, in order.
func (e *Execution[S]) PathIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, len(e.path))
	for i, p := range e.path {
		ids[i] = p.id
	}
	return ids
}

// Count returns how many times the unit with the given ID executed.
func (e *Execution[S]) Count(unitID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[unitID]
}

// Store returns the run's store, or nil if the store factory failed.
func (e *Execution[S]) Store() *Store[S] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store
}

// State returns a copy of the run's current state. The zero value is
// returned when there is no store.
func (e *Execution[S]) State() S {
	store := e.Store()
	if store == nil {
		var zero S
		return zero
	}
	return store.State()
}

// Err returns the error that failed the run, if any.
func (e *Execution[S]) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Duration returns the run time so far, or the total once terminal.
func (e *Execution[S]) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.started.IsZero():
		return 0
	case e.finished.IsZero():
		return time.Since(e.started)
	default:
		return e.finished.Sub(e.started)
	}
}

func (e *Execution[S]) setStore(store *Store[S]) {
	e.mu.Lock()
	e.store = store
	e.mu.Unlock()
}

func (e *Execution[S]) start() {
	e.mu.Lock()
	e.status = StatusRunning
	e.started = time.Now()
	e.mu.Unlock()
}

func (e *Execution[S]) finish(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started.IsZero() {
		e.started = time.Now()
	}
	e.finished = time.Now()
	e.err = err
	if err != nil {
		e.status = StatusFailed
	} else {
		e.status = StatusFinished
	}
}

// record counts one execution of the unit and appends it to the path.
func (e *Execution[S]) record(id, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.counts[id]++
	e.path = append(e.path, pathEntry{id: id, name: name})
}

func (e *Execution[S]) lastUnit() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.path) == 0 {
		return ""
	}
	return e.path[len(e.path)-1].name
}
