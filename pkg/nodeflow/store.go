package nodeflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"dario.cat/mergo"
	"golang.org/x/sync/semaphore"
)

// Listener is notified with a copy of every newly committed state.
type Listener[S any] func(state S)

// Store owns the current state of one workflow run.
//
// The state is immutable: every change commits a new snapshot. Reads return
// deep copies and never block. Writes are read-modify-write operations
// serialized by a single lock, so concurrent writers never lose updates and
// readers never observe a partial merge. Listeners run after the lock is
// released, in registration order.
type Store[S any] struct {
	// lock serializes writers. A weighted semaphore of size 1 is a mutex
	// whose acquisition honors context cancellation.
	lock    *semaphore.Weighted
	current atomic.Pointer[S]
	version atomic.Uint64

	validate func(S) error

	listenersMu  sync.Mutex
	listeners    []listenerEntry[S]
	nextListener uint64
}

type listenerEntry[S any] struct {
	id uint64
	fn Listener[S]
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	validate func(any) error
}

// WithValidator replaces the default `validate` struct tag check with fn.
// It runs on every commit; a non-nil error rejects the update.
func WithValidator[S any](fn func(S) error) StoreOption {
	return func(c *storeConfig) {
		c.validate = func(v any) error {
			if err := fn(v.(S)); err != nil {
				return newStateValidationError(err)
			}
			return nil
		}
	}
}

// WithoutValidation disables state validation.
func WithoutValidation() StoreOption {
	return func(c *storeConfig) {
		c.validate = nil
	}
}

// NewStore creates a store holding a copy of initial.
//
// By default every committed state is checked against its `validate` struct
// tags (github.com/go-playground/validator). The initial state is not
// validated; call Validate to check it.
//
// Panics if initial cannot be copied (see Cloner). This indicates a
// programming error.
func NewStore[S any](initial S, opts ...StoreOption) *Store[S] {
	cfg := storeConfig{validate: validateStruct}
	for _, opt := range opts {
		opt(&cfg)
	}

	snapshot, err := cloneState(initial)
	if err != nil {
		panic(fmt.Sprintf("nodeflow: state is not copyable: %v", err))
	}

	s := &Store[S]{lock: semaphore.NewWeighted(1)}
	if cfg.validate != nil {
		validate := cfg.validate
		s.validate = func(state S) error { return validate(state) }
	}
	s.current.Store(&snapshot)
	return s
}

// State returns an independent copy of the current state.
func (s *Store[S]) State() S {
	current := *s.current.Load()
	snapshot, err := cloneState(current)
	if err != nil {
		// Unreachable for states that were copyable at construction.
		slog.Warn("state copy failed, returning shallow copy", slog.String("error", err.Error()))
		return current
	}
	return snapshot
}

// StateJSON returns the current state encoded as JSON.
func (s *Store[S]) StateJSON() (string, error) {
	data, err := json.Marshal(*s.current.Load())
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

// Version returns the number of committed changes. It starts at zero and
// does not advance for no-op updates. NaN equals NaN and a nil slice or map
// equals an empty one when deciding whether an update changed anything.
func (s *Store[S]) Version() uint64 {
	return s.version.Load()
}

// Validate checks the current state with the store's validator.
func (s *Store[S]) Validate() error {
	if s.validate == nil {
		return nil
	}
	return s.validate(*s.current.Load())
}

// Update applies fn to a private copy of the current state and commits the
// result. The whole read-modify-write happens under the store lock.
//
// If fn returns an error, or the result equals the current state, nothing is
// committed and listeners are not called. If the result fails validation the
// error is a *StateValidationError and the previous state is kept.
//
// fn must not retain its argument or result. Waiting for the lock honors ctx.
func (s *Store[S]) Update(ctx context.Context, fn func(state S) (S, error)) error {
	if err := s.lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}

	next, changed, err := s.commitLocked(fn)
	if err != nil || !changed {
		s.lock.Release(1)
		return err
	}

	s.listenersMu.Lock()
	listeners := make([]listenerEntry[S], len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	s.lock.Release(1)

	for _, l := range listeners {
		snapshot, err := cloneState(next)
		if err != nil {
			slog.Warn("state copy for listener failed", slog.String("error", err.Error()))
			snapshot = next
		}
		l.fn(snapshot)
	}
	return nil
}

// commitLocked runs fn and swaps in its result. Caller holds the lock.
func (s *Store[S]) commitLocked(fn func(state S) (S, error)) (S, bool, error) {
	current := *s.current.Load()

	draft, err := cloneState(current)
	if err != nil {
		var zero S
		return zero, false, err
	}

	next, err := fn(draft)
	if err != nil {
		var zero S
		return zero, false, err
	}

	if statesEqual(current, next) {
		return next, false, nil
	}

	if s.validate != nil {
		if err := s.validate(next); err != nil {
			var zero S
			return zero, false, err
		}
	}

	s.current.Store(&next)
	s.version.Add(1)
	return next, true, nil
}

// Merge deep-merges partial into the current state and commits the result.
// Non-zero fields of partial override; zero fields leave the current value
// unchanged. Nested structs and maps merge recursively. Use Update to reset
// a field to its zero value.
//
// S must be a struct or map type.
func (s *Store[S]) Merge(ctx context.Context, partial S) error {
	// mergo assigns slices and map values by reference.
	src, err := cloneState(partial)
	if err != nil {
		return err
	}
	return s.Update(ctx, func(state S) (S, error) {
		if err := mergo.Merge(&state, src, mergo.WithOverride); err != nil {
			return state, fmt.Errorf("merge state: %w", err)
		}
		return state, nil
	})
}

// Set replaces the current state with a copy of state.
func (s *Store[S]) Set(ctx context.Context, state S) error {
	next, err := cloneState(state)
	if err != nil {
		return err
	}
	return s.Update(ctx, func(S) (S, error) {
		return next, nil
	})
}

// Subscribe registers a listener and returns a function that removes it.
// Calling the returned function more than once is safe.
func (s *Store[S]) Subscribe(listener Listener[S]) (unsubscribe func()) {
	s.listenersMu.Lock()
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, listenerEntry[S]{id: id, fn: listener})
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
