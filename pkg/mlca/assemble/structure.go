package assemble

import (
	"sort"
	"strings"

	"github.com/mlca-go/mlca/pkg/mlca"
)

// Structure is a complex solution formula: one relation per explained
// outcome factor, with an acyclic induced graph. It is immutable.
type Structure struct {
	relations []mlca.Relation
	key       string
}

func newStructure(relations []mlca.Relation) Structure {
	keys := make([]string, len(relations))
	for i, r := range relations {
		keys[i] = r.Key()
	}
	sort.Strings(keys)
	return Structure{
		relations: append([]mlca.Relation(nil), relations...),
		key:       strings.Join(keys, "; "),
	}
}

// Relations returns the relations in outcome order.
func (s Structure) Relations() []mlca.Relation {
	return append([]mlca.Relation(nil), s.relations...)
}

// Outcomes returns the explained factors in outcome order.
func (s Structure) Outcomes() []mlca.Identifier {
	out := make([]mlca.Identifier, len(s.relations))
	for i, r := range s.relations {
		out[i] = r.Outcome.Factor
	}
	return out
}

// Relation returns the relation explaining factor id, if any.
func (s Structure) Relation(id mlca.Identifier) (mlca.Relation, bool) {
	for _, r := range s.relations {
		if r.Outcome.Factor == id {
			return r, true
		}
	}
	return mlca.Relation{}, false
}

// Key identifies the structure independently of relation order.
func (s Structure) Key() string {
	return s.key
}

func (s Structure) String() string {
	parts := make([]string, len(s.relations))
	for i, r := range s.relations {
		parts[i] = "(" + r.String() + ")"
	}
	return strings.Join(parts, "*")
}

// Edge is a causal link from a literal of a condition to the outcome it
// explains.
type Edge struct {
	Cause   mlca.Literal
	Outcome mlca.Literal
}

// Edges returns the distinct edges of the induced graph.
func (s Structure) Edges() []Edge {
	var edges []Edge
	seen := map[Edge]struct{}{}
	for _, r := range s.relations {
		for _, conj := range r.Condition {
			for _, l := range conj {
				e := Edge{Cause: l, Outcome: r.Outcome}
				if _, ok := seen[e]; ok {
					continue
				}
				seen[e] = struct{}{}
				edges = append(edges, e)
			}
		}
	}
	return edges
}
