package nodeflow

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Cloner lets a state type provide its own deep copy. States that do not
// implement it are copied by a JSON round trip, so every field that matters
// must be exported and JSON-encodable.
type Cloner[S any] interface {
	Clone() S
}

// cloneState returns an independent deep copy of state.
func cloneState[S any](state S) (S, error) {
	if c, ok := any(state).(Cloner[S]); ok {
		return c.Clone(), nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		var zero S
		return zero, fmt.Errorf("clone state: marshal: %w", err)
	}

	var clone S
	if err := json.Unmarshal(data, &clone); err != nil {
		var zero S
		return zero, fmt.Errorf("clone state: unmarshal: %w", err)
	}
	return clone, nil
}

var stateEquality = []cmp.Option{
	cmpopts.EquateNaNs(),
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// statesEqual reports whether two snapshots hold the same data. NaN equals
// NaN and nil collections equal empty ones, so copying a state never counts
// as a change.
func statesEqual[S any](a, b S) bool {
	return cmp.Equal(a, b, stateEquality...)
}
