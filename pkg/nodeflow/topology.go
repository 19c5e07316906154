package nodeflow

import (
	"encoding/json"
	"fmt"
)

// TopologyVersion is the schema version of exported topologies.
const TopologyVersion = 1

// Edge types in exported topologies.
const (
	EdgeTypeDirect      = "direct"
	EdgeTypeConditional = "conditional"
)

// Topology is the serialized shape of a graph for external visualization.
// It is descriptive only; execution always consults the live Graph.
//
// Concurrent group members and subflow graphs are flattened into Nodes and
// Edges; the containing node lists their IDs in Children.
type Topology struct {
	Version int            `json:"v"`
	Nodes   []TopologyNode `json:"nodes"`
	Edges   []TopologyEdge `json:"edges"`
}

// TopologyNode is one unit in an exported topology.
type TopologyNode struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Label      string   `json:"label"`
	IsSubgraph bool     `json:"isSubgraph,omitempty"`
	Children   []string `json:"children,omitempty"`
	IsSubflow  bool     `json:"isSubflow,omitempty"`
}

// TopologyEdge is one edge in an exported topology. Condition is null for
// direct edges.
type TopologyEdge struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Condition *string `json:"condition"`
	Type      string  `json:"type"`
}

// topologyUnit is the type-parameter-free view of a unit.
type topologyUnit interface {
	ID() string
	Name() string
	Kind() UnitKind
}

// topologyContributor is implemented by composite units. It adds the unit's
// inner nodes and edges to b and returns the direct children IDs.
type topologyContributor interface {
	contributeTopology(b *topologyBuilder) []string
}

// topologyBuilder accumulates nodes and edges, skipping units already added.
type topologyBuilder struct {
	nodes []TopologyNode
	edges []TopologyEdge
	index map[string]int
}

func newTopologyBuilder() *topologyBuilder {
	return &topologyBuilder{index: make(map[string]int)}
}

// addUnit adds u (and, for composites, everything inside it) and returns its ID.
func (b *topologyBuilder) addUnit(u topologyUnit) string {
	id := u.ID()
	if _, ok := b.index[id]; ok {
		return id
	}
	b.index[id] = len(b.nodes)
	b.nodes = append(b.nodes, TopologyNode{
		ID:    id,
		Type:  string(u.Kind()),
		Label: u.Name(),
	})

	if c, ok := u.(topologyContributor); ok {
		children := c.contributeTopology(b)
		n := &b.nodes[b.index[id]]
		n.Children = children
		switch u.Kind() {
		case KindConcurrent:
			n.IsSubgraph = true
		case KindSubflow:
			n.IsSubflow = true
		}
	}
	return id
}

func (b *topologyBuilder) addEdge(source, target string, condition *string) {
	edgeType := EdgeTypeDirect
	if condition != nil {
		edgeType = EdgeTypeConditional
	}
	b.edges = append(b.edges, TopologyEdge{
		ID:        fmt.Sprintf("e%d", len(b.edges)),
		Source:    source,
		Target:    target,
		Condition: condition,
		Type:      edgeType,
	})
}

func (b *topologyBuilder) topology() Topology {
	t := Topology{Version: TopologyVersion, Nodes: b.nodes, Edges: b.edges}
	if t.Nodes == nil {
		t.Nodes = []TopologyNode{}
	}
	if t.Edges == nil {
		t.Edges = []TopologyEdge{}
	}
	return t
}

// appendTo adds the graph's units and edges to b and returns the unit IDs in
// discovery order.
func (g *Graph[S]) appendTo(b *topologyBuilder) []string {
	units := g.Units()
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = b.addUnit(u)
	}
	for _, e := range g.edges {
		var cond *string
		if e.condition != nil {
			label := conditionLabel(e.condition)
			cond = &label
		}
		b.addEdge(e.tail.ID(), e.head.ID(), cond)
	}
	return ids
}

// Topology returns the graph's exportable topology.
func (g *Graph[S]) Topology() Topology {
	b := newTopologyBuilder()
	g.appendTo(b)
	return b.topology()
}

// MarshalJSON encodes the graph as its topology.
func (g *Graph[S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Topology())
}

// TopologyJSON returns the topology as a JSON string.
func (g *Graph[S]) TopologyJSON() (string, error) {
	data, err := json.Marshal(g.Topology())
	if err != nil {
		return "", fmt.Errorf("marshal topology: %w", err)
	}
	return string(data), nil
}
