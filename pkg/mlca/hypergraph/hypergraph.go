package hypergraph

import (
	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// Node is a factor taking part in a structure.
type Node struct {
	ID    mlca.Identifier
	Level int
	Rank  int
	// Explained is set when some hyperedge ends in this node.
	Explained bool
}

// Hyperedge is one relation: every tail is a conjunct of cause
// literals, and the head is the outcome literal.
type Hyperedge struct {
	Tails []mlca.Conjunct
	Head  mlca.Literal
	Kind  mlca.RelationKind
}

// Sources returns the distinct cause factors of the hyperedge.
func (e Hyperedge) Sources() []mlca.Identifier {
	return mlca.Condition(e.Tails).Factors()
}

type Level struct {
	Index int
	Nodes []Node
}

// Graph is a read-only hierarchical hypergraph of one structure.
type Graph struct {
	levels []Level
	edges  []Hyperedge
	nodes  map[mlca.Identifier]Node
}

// New lays out the factors used by s on the levels of schema. Levels
// are in ascending order and nodes keep schema column order; levels
// without any used factor are left out.
func New(schema *table.Schema, s assemble.Structure) *Graph {
	g := Graph{nodes: map[mlca.Identifier]Node{}}
	used := map[mlca.Identifier]bool{}
	for _, r := range s.Relations() {
		tails := make([]mlca.Conjunct, len(r.Condition))
		for i, conj := range r.Condition {
			tails[i] = append(mlca.Conjunct(nil), conj...)
		}
		g.edges = append(g.edges, Hyperedge{Tails: tails, Head: r.Outcome, Kind: schema.KindOf(r)})
		used[r.Outcome.Factor] = true
		for _, id := range r.Causes() {
			if _, ok := used[id]; !ok {
				used[id] = false
			}
		}
	}

	for lvl := 0; lvl < schema.LevelCount(); lvl++ {
		var nodes []Node
		for _, f := range schema.Level(lvl) {
			explained, ok := used[f.ID]
			if !ok {
				continue
			}
			n := Node{ID: f.ID, Level: f.Level, Rank: f.Rank, Explained: explained}
			g.nodes[f.ID] = n
			nodes = append(nodes, n)
		}
		if len(nodes) > 0 {
			g.levels = append(g.levels, Level{Index: lvl, Nodes: nodes})
		}
	}
	return &g
}

// Levels returns the non-empty levels, lowest first.
func (g *Graph) Levels() []Level {
	out := make([]Level, len(g.levels))
	for i, l := range g.levels {
		out[i] = Level{Index: l.Index, Nodes: append([]Node(nil), l.Nodes...)}
	}
	return out
}

// Nodes returns every node, level by level.
func (g *Graph) Nodes() []Node {
	var out []Node
	for _, l := range g.levels {
		out = append(out, l.Nodes...)
	}
	return out
}

func (g *Graph) Node(id mlca.Identifier) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) Edges() []Hyperedge {
	return append([]Hyperedge(nil), g.edges...)
}

// Incoming returns the hyperedge whose head is factor id.
func (g *Graph) Incoming(id mlca.Identifier) (Hyperedge, bool) {
	for _, e := range g.edges {
		if e.Head.Factor == id {
			return e, true
		}
	}
	return Hyperedge{}, false
}

// Roots returns the nodes that no hyperedge explains.
func (g *Graph) Roots() []Node {
	var out []Node
	for _, n := range g.Nodes() {
		if !n.Explained {
			out = append(out, n)
		}
	}
	return out
}
