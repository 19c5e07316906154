package nodeflow

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
)

// testState is the state used across tests.
type testState struct {
	Count  int      `json:"count"`
	Path   []string `json:"path,omitempty"`
	Items  []string `json:"items,omitempty"`
	Result *string  `json:"result,omitempty"`
	Status string   `json:"status,omitempty"`
}

// childState is the state of subflows in tests.
type childState struct {
	Input  int    `json:"input"`
	Output string `json:"output"`
}

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCtx creates a quiet test context.
func testCtx() Context {
	return NewContext(context.Background(), WithContextLogger(discardLogger()))
}

// visit returns a node that appends its name to Path.
func visit(name string) *Node[testState] {
	return Func(name, func(ctx Context, s *Store[testState]) error {
		return s.Update(ctx, func(st testState) (testState, error) {
			st.Path = append(st.Path, name)
			return st, nil
		})
	})
}

// incrementNode returns a node that adds one to Count.
func incrementNode(name string) *Node[testState] {
	return Func(name, func(ctx Context, s *Store[testState]) error {
		return s.Update(ctx, func(st testState) (testState, error) {
			st.Count++
			return st, nil
		})
	})
}

// appendItem returns a node that appends item to Items.
func appendItem(item string) *Node[testState] {
	return Func(item, func(ctx Context, s *Store[testState]) error {
		return s.Update(ctx, func(st testState) (testState, error) {
			st.Items = append(st.Items, item)
			return st, nil
		})
	})
}

// failing returns a node whose service returns err.
func failing(name string, err error) *Node[testState] {
	return Func(name, func(Context, *Store[testState]) error {
		return err
	})
}

// panicking returns a node that panics with value.
func panicking(name string, value any) *Node[testState] {
	return Func(name, func(Context, *Store[testState]) error {
		panic(value)
	})
}

// quietWorkflow builds a workflow that logs nowhere.
func quietWorkflow(name string, g *Graph[testState], initial testState, opts ...WorkflowOption) *Workflow[testState] {
	opts = append([]WorkflowOption{WithLogger(discardLogger())}, opts...)
	return NewWorkflow(name, StaticGraph(g), InitialState(initial), opts...)
}

// fixedUnit is a unit with a caller-chosen ID.
type fixedUnit struct {
	id   string
	name string
}

func (u *fixedUnit) ID() string                             { return u.id }
func (u *fixedUnit) Name() string                           { return u.name }
func (u *fixedUnit) Kind() UnitKind                         { return KindNode }
func (u *fixedUnit) Execute(Context, *Store[testState]) error { return nil }

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func ptr[T any](v T) *T { return &v }
