package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow"
	"github.com/randalmurphal/nodeflow/pkg/nodeflow/hook"
)

func benchmarkLinear(b *testing.B, n int, opts ...nodeflow.WorkflowOption) {
	g := linearGraph(linearUnits(n))
	opts = append([]nodeflow.WorkflowOption{nodeflow.WithLogger(quiet)}, opts...)
	run(b, nodeflow.NewWorkflow("linear", nodeflow.StaticGraph(g), nodeflow.InitialState(State{}), opts...))
}

// BenchmarkExecute_Linear_5 runs a 5-node linear graph.
func BenchmarkExecute_Linear_5(b *testing.B) { benchmarkLinear(b, 5) }

// BenchmarkExecute_Linear_10 runs a 10-node linear graph.
func BenchmarkExecute_Linear_10(b *testing.B) { benchmarkLinear(b, 10) }

// BenchmarkExecute_Linear_50 runs a 50-node linear graph.
func BenchmarkExecute_Linear_50(b *testing.B) { benchmarkLinear(b, 50) }

// BenchmarkExecute_Linear_10_Hooks measures the cost of state snapshots and
// patches when a hook is installed.
func BenchmarkExecute_Linear_10_Hooks(b *testing.B) {
	benchmarkLinear(b, 10, nodeflow.WithHooks(hook.NewRecorder()))
}

// BenchmarkExecute_Branching runs a graph with conditional edges.
func BenchmarkExecute_Branching(b *testing.B) {
	g, _ := branchingGraph()
	run(b, nodeflow.NewWorkflow("branching", nodeflow.StaticGraph(g), nodeflow.InitialState(State{}), nodeflow.WithLogger(quiet)))
}

// BenchmarkExecute_Loop_10 runs a graph that loops ten times before exiting.
func BenchmarkExecute_Loop_10(b *testing.B) {
	step, done := nodeflow.Func("step", increment), nodeflow.Func("done", noop)
	check := nodeflow.Func("check", noop)
	g := nodeflow.NewGraph[State](step, done,
		nodeflow.NewEdge[State](step, check, nil),
		nodeflow.NewEdge[State](check, done, nodeflow.When("value >= 10", func(s State) bool { return s.Value >= 10 })),
		nodeflow.NewEdge[State](check, step, nil),
	)
	run(b, nodeflow.NewWorkflow("loop", nodeflow.StaticGraph(g), nodeflow.InitialState(State{}), nodeflow.WithLogger(quiet)))
}

// BenchmarkExecute_Concurrent_8 fans out to eight members writing one store.
func BenchmarkExecute_Concurrent_8(b *testing.B) {
	members := make([]nodeflow.Unit[State], 8)
	for i := range members {
		members[i] = nodeflow.Func("member", increment)
	}
	group := nodeflow.NewConcurrentGroup("fanout", members)
	start, end := nodeflow.Func("start", noop), nodeflow.Func("end", noop)
	g := nodeflow.NewGraph[State](start, end,
		nodeflow.NewEdge[State](start, group, nil),
		nodeflow.NewEdge[State](group, end, nil),
	)
	run(b, nodeflow.NewWorkflow("concurrent", nodeflow.StaticGraph(g), nodeflow.InitialState(State{}), nodeflow.WithLogger(quiet)))
}

// BenchmarkContextCreation measures context creation overhead.
func BenchmarkContextCreation(b *testing.B) {
	bg := context.Background()
	for i := 0; i < b.N; i++ {
		nodeflow.NewContext(bg)
	}
}
