package expr

import (
	"testing"
)

type orderState struct {
	Count    int      `json:"count"`
	Status   string   `json:"status"`
	Tags     []string `json:"tags"`
	Customer struct {
		Tier string `json:"tier"`
	} `json:"customer"`
}

func TestVars(t *testing.T) {
	t.Run("struct uses json field names", func(t *testing.T) {
		s := orderState{Count: 20, Status: "ready"}
		s.Customer.Tier = "gold"

		vars, err := Vars(s)
		if err != nil {
			t.Fatalf("Vars() error = %v", err)
		}
		if got := vars["count"]; got != float64(20) {
			t.Errorf("count = %v, want 20", got)
		}
		if got := vars["status"]; got != "ready" {
			t.Errorf("status = %v, want ready", got)
		}
	})

	t.Run("map passes through", func(t *testing.T) {
		in := map[string]any{"a": 1}
		vars, err := Vars(in)
		if err != nil {
			t.Fatalf("Vars() error = %v", err)
		}
		if vars["a"] != 1 {
			t.Errorf("a = %v, want 1", vars["a"])
		}
	})

	t.Run("non-object rejected", func(t *testing.T) {
		if _, err := Vars(42); err == nil {
			t.Error("Vars(42) expected error")
		}
	})

	t.Run("unencodable rejected", func(t *testing.T) {
		if _, err := Vars(map[string]any{"ch": make(chan int)}); err != nil {
			t.Errorf("maps pass through without encoding, got %v", err)
		}
		if _, err := Vars(struct{ Ch chan int }{}); err == nil {
			t.Error("expected encode error")
		}
	})
}

func TestEval_StateConditions(t *testing.T) {
	s := orderState{Count: 20, Status: "ready", Tags: []string{"rush"}}
	s.Customer.Tier = "gold"
	vars, err := Vars(s)
	if err != nil {
		t.Fatalf("Vars() error = %v", err)
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"count > 10", true},
		{"count > 30", false},
		{"count == 20", true},
		{"status == 'ready' and count >= 20", true},
		{"customer.tier == 'gold'", true},
		{"customer.tier == 'silver'", false},
		{"customer.missing == 'x'", false},
		{"tags contains 'rush'", true},
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

func TestLookup(t *testing.T) {
	vars := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": "deep"},
		},
		"flat.key": "flat",
		"n":        3,
	}

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"a.b.c", "deep", true},
		{"flat.key", "flat", true},
		{"a.x.c", nil, false},
		{"n.x", nil, false},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		got, ok := lookup(vars, tt.path)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("lookup(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}
