package hook

import (
	"context"
	"sync"
)

// EventType identifies a recorded lifecycle callback.
type EventType string

// Recorded event types.
const (
	EventBeforeWorkflow EventType = "before_workflow"
	EventAfterWorkflow  EventType = "after_workflow"
	EventBeforeNode     EventType = "before_node"
	EventAfterNode      EventType = "after_node"
)

// Event is one recorded callback. Only the fields relevant to Type are set.
type Event struct {
	Type       EventType
	ID         string
	Name       string
	Kind       string
	WorkflowID string
	ParentID   string
	StateJSON  string
	GraphJSON  string
	StatePatch string
	Err        error
}

// Recorder keeps every callback in memory, in the order received.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Compile-time interface check.
var _ Hooks = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// BeforeWorkflow implements Hooks.
func (r *Recorder) BeforeWorkflow(ctx context.Context, info WorkflowStart) context.Context {
	r.add(Event{
		Type:      EventBeforeWorkflow,
		ID:        info.ID,
		Name:      info.Name,
		Kind:      KindWorkflow,
		ParentID:  info.ParentID,
		StateJSON: info.StateJSON,
		GraphJSON: info.GraphJSON,
	})
	return ctx
}

// AfterWorkflow implements Hooks.
func (r *Recorder) AfterWorkflow(_ context.Context, info WorkflowEnd) {
	r.add(Event{
		Type:      EventAfterWorkflow,
		ID:        info.ID,
		Name:      info.Name,
		Kind:      KindWorkflow,
		ParentID:  info.ParentID,
		StateJSON: info.StateJSON,
		Err:       info.Err,
	})
}

// BeforeNode implements Hooks.
func (r *Recorder) BeforeNode(ctx context.Context, info NodeStart) context.Context {
	r.add(Event{
		Type:       EventBeforeNode,
		ID:         info.ID,
		Name:       info.Name,
		Kind:       info.Kind,
		WorkflowID: info.WorkflowID,
		ParentID:   info.ParentID,
	})
	return ctx
}

// AfterNode implements Hooks.
func (r *Recorder) AfterNode(_ context.Context, info NodeEnd) {
	r.add(Event{
		Type:       EventAfterNode,
		ID:         info.ID,
		Name:       info.Name,
		Kind:       info.Kind,
		WorkflowID: info.WorkflowID,
		StatePatch: info.StatePatch,
		Err:        info.Err,
	})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of the given type.
func (r *Recorder) Filter(t EventType) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
