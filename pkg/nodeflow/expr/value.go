package expr

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// lookup resolves a variable. An exact key wins over a dotted path into
// nested maps.
func lookup(vars map[string]any, path string) (any, bool) {
	if v, ok := vars[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}
	var cur any = vars
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// truthy: nil, false, "", zero and empty collections are false.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	if n, ok := number(v); ok {
		return n != 0
	}
	return true
}

// number converts numeric kinds to float64. Strings are not numbers.
func number(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	}
	return 0, false
}

// equal compares numbers numerically, booleans by value, and everything
// else by its formatted text. null equals only null.
func equal(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	if ln, ok := number(l); ok {
		if rn, ok := number(r); ok {
			return ln == rn
		}
	}
	if lb, ok := l.(bool); ok {
		rb, ok := r.(bool)
		return ok && lb == rb
	}
	return fmt.Sprint(l) == fmt.Sprint(r)
}

// order compares numerically when both sides are numbers or numeric
// strings, lexically when both are strings, and fails otherwise.
func order(l, r any) (int, error) {
	ln, lok := orderNumber(l)
	rn, rok := orderNumber(r)
	if lok && rok {
		return cmp.Compare(ln, rn), nil
	}
	ls, lok := l.(string)
	rs, rok := r.(string)
	if lok && rok {
		return strings.Compare(ls, rs), nil
	}
	return 0, fmt.Errorf("cannot order %s and %s", describe(l), describe(r))
}

func orderNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return number(v)
}

// contains reports list membership, map key presence, or substring
// containment, depending on the left operand.
func contains(l, r any) bool {
	switch c := l.(type) {
	case nil:
		return false
	case []any:
		for _, item := range c {
			if equal(item, r) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range c {
			if equal(item, r) {
				return true
			}
		}
		return false
	case map[string]any:
		_, ok := c[fmt.Sprint(r)]
		return ok
	}
	return strings.Contains(fmt.Sprint(l), fmt.Sprint(r))
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
