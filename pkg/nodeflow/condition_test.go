package nodeflow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/expr"
)

type statusIs string

func (s statusIs) Evaluate(state testState) bool { return state.Status == string(s) }

func TestConditions(t *testing.T) {
	big := When("count > 10", func(s testState) bool { return s.Count > 10 })
	ready := FieldEquals[testState]("Status", "ready")

	tests := []struct {
		name  string
		cond  Condition[testState]
		state testState
		want  bool
	}{
		{"when true", big, testState{Count: 11}, true},
		{"when false", big, testState{Count: 10}, false},
		{"field equals", ready, testState{Status: "ready"}, true},
		{"field differs", ready, testState{Status: "new"}, false},
		{"unknown field", FieldEquals[testState]("Missing", 1), testState{}, false},
		{"not", Not(big), testState{Count: 1}, true},
		{"all true", All(big, ready), testState{Count: 11, Status: "ready"}, true},
		{"all false", All(big, ready), testState{Count: 11}, false},
		{"empty all", All[testState](), testState{}, true},
		{"any true", Any(big, ready), testState{Status: "ready"}, true},
		{"any false", Any(big, ready), testState{}, false},
		{"empty any", Any[testState](), testState{}, false},
		{"func", ConditionFunc[testState](func(s testState) bool { return s.Result != nil }), testState{Result: ptr("x")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Evaluate(tt.state))
		})
	}
}

func TestFieldEquals_PointerState(t *testing.T) {
	cond := FieldEquals[*testState]("Count", 3)
	assert.True(t, cond.Evaluate(&testState{Count: 3}))
	assert.False(t, cond.Evaluate(nil))
}

func TestExpr(t *testing.T) {
	cond, err := Expr[testState]("count > 10 and status == 'ready'")
	require.NoError(t, err)

	assert.True(t, cond.Evaluate(testState{Count: 11, Status: "ready"}))
	assert.False(t, cond.Evaluate(testState{Count: 11}))
	assert.False(t, cond.Evaluate(testState{Count: 1, Status: "ready"}))

	t.Run("empty expression", func(t *testing.T) {
		_, err := Expr[testState]("  ")
		assert.Error(t, err)
		assert.Panics(t, func() { MustExpr[testState]("") })
	})

	t.Run("malformed expression", func(t *testing.T) {
		_, err := Expr[testState]("count >")
		var se *expr.SyntaxError
		assert.ErrorAs(t, err, &se)
		assert.Contains(t, err.Error(), `condition "count >"`)
	})

	t.Run("evaluation error is false", func(t *testing.T) {
		cond := MustExpr[testState]("status > 3")
		assert.False(t, cond.Evaluate(testState{Status: "ready"}))
	})

	t.Run("custom operator", func(t *testing.T) {
		cond, err := Expr[testState]("status startswith 'rea'", expr.WithCustomOperator("startswith",
			func(l, r any) bool { return strings.HasPrefix(fmt.Sprint(l), fmt.Sprint(r)) }))
		require.NoError(t, err)
		assert.True(t, cond.Evaluate(testState{Status: "ready"}))
	})

	t.Run("unencodable state is false", func(t *testing.T) {
		type chanState struct{ C chan int }
		cond := MustExpr[chanState]("anything")
		assert.False(t, cond.Evaluate(chanState{C: make(chan int)}))
	})
}

func TestConditionLabel(t *testing.T) {
	big := When("count > 10", func(s testState) bool { return s.Count > 10 })

	tests := []struct {
		cond Condition[testState]
		want string
	}{
		{big, "count > 10"},
		{Not(big), "not count > 10"},
		{All(big, FieldEquals[testState]("Status", "ok")), "(count > 10) and (Status == ok)"},
		{Any(big, statusIs("x")), "(count > 10) or (statusIs)"},
		{MustExpr[testState]("status == 'x'"), "status == 'x'"},
		{nil, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, conditionLabel(tt.cond))
		})
	}
}
