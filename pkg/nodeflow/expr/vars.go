package expr

import (
	"encoding/json"
	"fmt"
)

// Vars converts a value into an expression variable map using its JSON
// encoding. Maps are returned as-is. Values that do not encode to a JSON
// object are rejected.
func Vars(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode vars: %w", err)
	}
	var vars map[string]any
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("vars must encode to a JSON object: %w", err)
	}
	return vars, nil
}
