package expr

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestEval(t *testing.T) {
	vars := map[string]any{
		"status":  "ready",
		"count":   float64(5),
		"n":       7,
		"enabled": true,
		"empty":   "",
		"zero":    0,
		"tags":    []any{"a", "b"},
		"labels":  map[string]any{"team": "core"},
		"order": map[string]any{
			"customer": map[string]any{"tier": "gold"},
		},
		"version": "10",
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"status == 'ready'", true},
		{`status == "ready"`, true},
		{"status != 'ready'", false},
		{"count == 5", true},
		{"n == 7.0", true},
		{"count < 10", true},
		{"count <= 5", true},
		{"count > 5", false},
		{"count >= -1", true},
		{"version > 9", true},
		{"'abc' < 'abd'", true},
		{"enabled", true},
		{"enabled == true", true},
		{"empty", false},
		{"zero", false},
		{"tags", true},
		{"missing", false},
		{"missing == null", true},
		{"status == null", false},
		{"not enabled", false},
		{"!enabled", false},
		{"not not enabled", true},
		{"!(count > 10)", true},
		{"tags contains 'b'", true},
		{"tags contains 'c'", false},
		{"labels contains 'team'", true},
		{"status contains 'ead'", true},
		{"missing contains 'x'", false},
		{"order.customer.tier == 'gold'", true},
		{"order.customer.name == null", true},
		{"enabled and count > 1", true},
		{"enabled and count > 10", false},
		{"count > 10 or status == 'ready'", true},
		{"false or false", false},
		// and binds tighter than or
		{"true or false and false", true},
		{"(true or false) and false", false},
		// not binds tighter than and
		{"not false and false", false},
		{"not (false and false)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr, vars)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEval_ShortCircuit(t *testing.T) {
	// the right side would fail to order a bool against a number
	vars := map[string]any{"flag": true}
	if got, err := Eval("flag or flag > 1", vars); err != nil || !got {
		t.Errorf("or = %v, %v; want true, nil", got, err)
	}
	if got, err := Eval("not flag and flag > 1", vars); err != nil || got {
		t.Errorf("and = %v, %v; want false, nil", got, err)
	}
}

func TestEval_Errors(t *testing.T) {
	vars := map[string]any{"status": "ready", "flag": true, "count": 3}

	tests := []string{
		"status > 3",
		"flag < 1",
		"missing >= 0",
		"count > 1 and flag > 0",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Eval(src, vars)
			if err == nil {
				t.Fatalf("Eval(%q) expected error", src)
			}
			if !strings.Contains(err.Error(), "cannot order") {
				t.Errorf("error = %v, want ordering error", err)
			}
		})
	}
}

func TestCompile_SyntaxErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"", "empty expression"},
		{"   ", "empty expression"},
		{"count >", "unexpected end"},
		{"count = 1", "use '=='"},
		{"(count > 1", "expected ')'"},
		{"count > 1)", `unexpected ")"`},
		{"'open", "unterminated string"},
		{"a and", "unexpected end"},
		{"and a", "unexpected keyword"},
		{"a b", `unexpected "b"`},
		{"a..b == 1", "invalid path"},
		{"count > 1.2.3", "invalid number"},
		{"count # 1", "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Compile(tt.src)
			if err == nil {
				t.Fatalf("Compile(%q) expected error", tt.src)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if !strings.Contains(se.Msg, tt.msg) {
				t.Errorf("Msg = %q, want it to contain %q", se.Msg, tt.msg)
			}
		})
	}
}

func TestCompile_Escapes(t *testing.T) {
	got, err := Eval(`name == 'it\'s'`, map[string]any{"name": "it's"})
	if err != nil || !got {
		t.Errorf("escaped quote = %v, %v; want true, nil", got, err)
	}
}

func TestProgram_Reuse(t *testing.T) {
	prog, err := Compile("count > 10")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if prog.String() != "count > 10" {
		t.Errorf("String() = %q", prog.String())
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := prog.Eval(map[string]any{"count": i})
			if err != nil {
				t.Errorf("Eval error = %v", err)
				return
			}
			if want := i > 10; got != want {
				t.Errorf("Eval(count=%d) = %v, want %v", i, got, want)
			}
		}(i)
	}
	wg.Wait()
}

func TestCustomOperator(t *testing.T) {
	hasPrefix := func(l, r any) bool {
		ls, _ := l.(string)
		rs, _ := r.(string)
		return strings.HasPrefix(ls, rs)
	}
	e := New(
		WithCustomOperator("startswith", hasPrefix),
		WithCustomOperator("and", hasPrefix), // keywords cannot be replaced
		WithCustomOperator("nothing", nil),
	)

	got, err := e.Evaluate("name startswith 'test' and ok", map[string]any{"name": "testing", "ok": true})
	if err != nil || !got {
		t.Errorf("startswith = %v, %v; want true, nil", got, err)
	}

	if _, err := Compile("name startswith 'test'"); err == nil {
		t.Error("default evaluator should not know startswith")
	}
	if _, err := e.Compile("name nothing 'x'"); err == nil {
		t.Error("nil operator should not be registered")
	}
}
