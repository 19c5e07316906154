package nodeflow

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/expr"
)

// Condition gates an edge. Evaluate must be pure: it receives a snapshot of
// the current state and is called fresh on every resolution attempt.
type Condition[S any] interface {
	Evaluate(state S) bool
}

// ConditionFunc adapts a predicate to Condition.
type ConditionFunc[S any] func(state S) bool

// Evaluate calls f.
func (f ConditionFunc[S]) Evaluate(state S) bool {
	return f(state)
}

// labeled attaches a display label to a condition for topology export.
type labeled[S any] struct {
	label string
	cond  Condition[S]
}

func (l labeled[S]) Evaluate(state S) bool { return l.cond.Evaluate(state) }
func (l labeled[S]) String() string        { return l.label }

// When builds a labeled condition from a predicate.
//
//	overTen := nodeflow.When("count > 10", func(s State) bool { return s.Count > 10 })
func When[S any](label string, fn func(state S) bool) Condition[S] {
	return labeled[S]{label: label, cond: ConditionFunc[S](fn)}
}

// Not negates a condition.
func Not[S any](c Condition[S]) Condition[S] {
	return labeled[S]{
		label: "not " + conditionLabel(c),
		cond:  ConditionFunc[S](func(s S) bool { return !c.Evaluate(s) }),
	}
}

// All is true when every condition is true. An empty All is true.
func All[S any](conds ...Condition[S]) Condition[S] {
	return labeled[S]{
		label: joinLabels(conds, " and "),
		cond: ConditionFunc[S](func(s S) bool {
			for _, c := range conds {
				if !c.Evaluate(s) {
					return false
				}
			}
			return true
		}),
	}
}

// Any is true when at least one condition is true. An empty Any is false.
func Any[S any](conds ...Condition[S]) Condition[S] {
	return labeled[S]{
		label: joinLabels(conds, " or "),
		cond: ConditionFunc[S](func(s S) bool {
			for _, c := range conds {
				if c.Evaluate(s) {
					return true
				}
			}
			return false
		}),
	}
}

// FieldEquals is true when the named struct field of the state equals value.
// Pointer states are dereferenced. Unknown fields never match.
func FieldEquals[S any](field string, value any) Condition[S] {
	return labeled[S]{
		label: fmt.Sprintf("%s == %v", field, value),
		cond: ConditionFunc[S](func(s S) bool {
			rv := reflect.ValueOf(s)
			for rv.Kind() == reflect.Pointer {
				if rv.IsNil() {
					return false
				}
				rv = rv.Elem()
			}
			if rv.Kind() != reflect.Struct {
				return false
			}
			fv := rv.FieldByName(field)
			if !fv.IsValid() || !fv.CanInterface() {
				return false
			}
			return reflect.DeepEqual(fv.Interface(), value)
		}),
	}
}

// exprCondition evaluates a compiled expression against the state's JSON
// fields.
type exprCondition[S any] struct {
	prog *expr.Program
}

func (c exprCondition[S]) Evaluate(state S) bool {
	vars, err := expr.Vars(state)
	if err != nil {
		return false
	}
	ok, err := c.prog.Eval(vars)
	return err == nil && ok
}

func (c exprCondition[S]) String() string { return c.prog.String() }

// Expr compiles a condition over the state's JSON field names, for example
// "count > 10 and status == 'ready'". Malformed expressions are rejected
// here. At evaluation time, states that fail to encode and expressions that
// fail to evaluate are false.
func Expr[S any](expression string, opts ...expr.Option) (Condition[S], error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, errors.New("empty condition expression")
	}
	prog, err := expr.New(opts...).Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", expression, err)
	}
	return exprCondition[S]{prog: prog}, nil
}

// MustExpr is like Expr but panics on error.
func MustExpr[S any](expression string, opts ...expr.Option) Condition[S] {
	c, err := Expr[S](expression, opts...)
	if err != nil {
		panic("nodeflow: " + err.Error())
	}
	return c
}

// conditionLabel returns the display label of a condition: its String()
// when it implements fmt.Stringer, otherwise its type name.
func conditionLabel[S any](c Condition[S]) string {
	if c == nil {
		return ""
	}
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return typeName(c)
}

func joinLabels[S any](conds []Condition[S], sep string) string {
	labels := make([]string, len(conds))
	for i, c := range conds {
		labels[i] = "(" + conditionLabel(c) + ")"
	}
	return strings.Join(labels, sep)
}
