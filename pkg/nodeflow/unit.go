package nodeflow

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
)

// UnitKind identifies the variant of an executable unit.
type UnitKind string

// Unit kinds. The values double as the span_type reported to hooks.
const (
	KindNode       UnitKind = hook.KindNode
	KindConcurrent UnitKind = hook.KindConcurrent
	KindSubflow    UnitKind = hook.KindSubflow
)

// Unit is anything a graph can execute: a Node, a ConcurrentGroup, or a
// Subflow. Units are stateless between executions; all mutable data lives in
// the store passed to Execute.
type Unit[S any] interface {
	// ID returns the identity assigned at construction.
	ID() string
	// Name returns the human-readable name.
	Name() string
	// Kind returns the unit variant.
	Kind() UnitKind
	// Execute runs the unit against store.
	Execute(ctx Context, store *Store[S]) error
}

// UnitOption configures a unit at construction.
type UnitOption func(*unitConfig)

type unitConfig struct {
	name string
}

// WithName overrides the default unit name.
func WithName(name string) UnitOption {
	return func(c *unitConfig) {
		if name != "" {
			c.name = name
		}
	}
}

func applyUnitOptions(defaultName string, opts []UnitOption) unitConfig {
	cfg := unitConfig{name: defaultName}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// newUnitID returns a fresh unit identity.
func newUnitID() string {
	return uuid.NewString()
}

// typeName returns the bare type name of v, without package path or type
// parameters. Function values report their function name.
func typeName(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	if rt.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
			return trimName(fn.Name())
		}
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	name := rt.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// trimName strips the package path and closure suffixes from a function name:
// "github.com/x/pkg.(*T).Method-fm" becomes "Method".
func trimName(full string) string {
	name := full
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	parts := strings.Split(name, ".")
	// Closures are reported as pkg.outer.func1; keep the enclosing name.
	for i := len(parts) - 1; i > 0; i-- {
		if !strings.HasPrefix(parts[i], "func") && !strings.HasPrefix(parts[i], "gowrap") {
			return parts[i]
		}
	}
	return parts[len(parts)-1]
}
