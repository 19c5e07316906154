package nodeflow

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for graph building and validation.
var (
	// ErrNoPathToSink indicates the sink cannot be reached from the source.
	ErrNoPathToSink = errors.New("no path from source to sink")

	// ErrDuplicateUnitID indicates two different units in a graph share an ID.
	ErrDuplicateUnitID = errors.New("duplicate unit id")

	// ErrNilGraph indicates a graph factory returned nil.
	ErrNilGraph = errors.New("graph factory returned nil")

	// ErrNilStore indicates a store factory returned nil.
	ErrNilStore = errors.New("store factory returned nil")
)

// Sentinel errors for execution.
var (
	// ErrNoValidTransition indicates no edge resolved for the current unit.
	ErrNoValidTransition = errors.New("no valid transition")

	// ErrCycleGuard indicates a unit exceeded its execution budget.
	ErrCycleGuard = errors.New("cycle guard tripped")

	// ErrNilContext indicates Execute() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// ServiceError wraps an error returned by a node's service.
type ServiceError struct {
	// UnitID is the identifier of the node that failed.
	UnitID string
	// UnitName is the human-readable node name.
	UnitName string
	// Err is the underlying error from the service.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("node %s: service: %v", e.UnitName, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from unit execution.
// It includes the stack trace for debugging.
type PanicError struct {
	// UnitID is the identifier of the unit that panicked.
	UnitID string
	// UnitName is the human-readable unit name.
	UnitName string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("unit %s panicked: %v", e.UnitName, e.Value)
}

// CancellationError reports that the run stopped because its context ended.
type CancellationError struct {
	// UnitID is the unit that was about to execute.
	UnitID string
	// UnitName is the human-readable unit name.
	UnitName string
	// Cause is context.Canceled, context.DeadlineExceeded, or a custom cause.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before unit %s: %v", e.UnitName, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// NoValidTransitionError reports a unit with no edge that resolved.
// It indicates a malformed graph, usually a missing unconditional fallback edge.
type NoValidTransitionError struct {
	// UnitID is the unit that just executed.
	UnitID string
	// UnitName is the human-readable unit name.
	UnitName string
	// EdgesChecked is the number of outgoing edges that were evaluated.
	EdgesChecked int
}

// Error implements the error interface.
func (e *NoValidTransitionError) Error() string {
	if e.EdgesChecked == 0 {
		return fmt.Sprintf("no valid transition from %s: unit has no outgoing edges", e.UnitName)
	}
	return fmt.Sprintf("no valid transition from %s: none of %d edges resolved", e.UnitName, e.EdgesChecked)
}

// Unwrap returns ErrNoValidTransition for errors.Is support.
func (e *NoValidTransitionError) Unwrap() error {
	return ErrNoValidTransition
}

// CycleGuardError reports a unit that would exceed its execution budget.
// The unit ran Max times; the run stopped before the next execution.
type CycleGuardError struct {
	// UnitID is the looping unit.
	UnitID string
	// UnitName is the human-readable unit name.
	UnitName string
	// Max is the configured per-unit budget.
	Max int
}

// Error implements the error interface.
func (e *CycleGuardError) Error() string {
	return fmt.Sprintf("unit %s exceeded max iterations (%d)", e.UnitName, e.Max)
}

// Unwrap returns ErrCycleGuard for errors.Is support.
func (e *CycleGuardError) Unwrap() error {
	return ErrCycleGuard
}

// MemberFailure is one failed member of a concurrent group.
type MemberFailure struct {
	UnitID   string
	UnitName string
	Err      error
}

// ConcurrentGroupError collects member failures from a concurrent group.
// Failures are listed in member declaration order.
type ConcurrentGroupError struct {
	// GroupID is the identifier of the group.
	GroupID string
	// GroupName is the human-readable group name.
	GroupName string
	// Failures holds each failed member.
	Failures []MemberFailure
}

// Error implements the error interface.
func (e *ConcurrentGroupError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("concurrent group %s: member %s failed: %v", e.GroupName, f.UnitName, f.Err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "concurrent group %s: %d members failed", e.GroupName, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %s: %v", f.UnitName, f.Err)
	}
	return b.String()
}

// Unwrap returns the member errors for errors.Is/As support.
func (e *ConcurrentGroupError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// SubflowPhase names the step of a subflow that failed.
type SubflowPhase string

// Subflow phases.
const (
	PhasePreRun  SubflowPhase = "pre_run"
	PhaseRun     SubflowPhase = "run"
	PhasePostRun SubflowPhase = "post_run"
)

// SubflowError wraps a failure inside a subflow with the subflow's identity.
type SubflowError struct {
	// UnitID is the identifier of the subflow unit in the parent graph.
	UnitID string
	// UnitName is the human-readable subflow name.
	UnitName string
	// Phase is the step that failed.
	Phase SubflowPhase
	// Err is the underlying error. For PhaseRun it is the child workflow's error.
	Err error
}

// Error implements the error interface.
func (e *SubflowError) Error() string {
	return fmt.Sprintf("subflow %s: %s: %v", e.UnitName, e.Phase, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SubflowError) Unwrap() error {
	return e.Err
}
