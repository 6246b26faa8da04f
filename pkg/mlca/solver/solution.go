package solver

import (
	"iter"

	"github.com/go-logr/logr"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/hypergraph"
	"github.com/mlca-go/mlca/pkg/mlca/search"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// Solution holds the per-outcome relations found for a table and
// enumerates the structures built from them on demand.
type Solution struct {
	schema    *table.Schema
	results   []*search.Result
	clusters  [][]mlca.Identifier
	assembler *assemble.Assembler
	logger    logr.Logger
}

func (s *Solution) Schema() *table.Schema {
	return s.schema
}

// Outcomes returns the searched outcome literals in search order.
func (s *Solution) Outcomes() []mlca.Literal {
	out := make([]mlca.Literal, len(s.results))
	for i, r := range s.results {
		out[i] = r.Outcome
	}
	return out
}

// Candidates returns the relations found for factor id.
func (s *Solution) Candidates(id mlca.Identifier) []mlca.Relation {
	for _, r := range s.results {
		if r.Outcome.Factor == id {
			return append([]mlca.Relation(nil), r.Relations...)
		}
	}
	return nil
}

// Unexplained returns the outcomes without any relation within bounds.
func (s *Solution) Unexplained() []mlca.Identifier {
	var out []mlca.Identifier
	for _, r := range s.results {
		if len(r.Relations) == 0 {
			out = append(out, r.Outcome.Factor)
		}
	}
	return out
}

// Coextensive returns the groups of factors that take the same value in
// every configuration.
func (s *Solution) Coextensive() [][]mlca.Identifier {
	return s.clusters
}

// All returns the structures in enumeration order. It may be iterated
// any number of times.
func (s *Solution) All() iter.Seq[assemble.Structure] {
	return s.assembler.All()
}

// Each calls fn for every structure until it returns false, and returns
// the counters of the pass.
func (s *Solution) Each(fn func(assemble.Structure) bool) assemble.Stats {
	var stats assemble.Stats
	for st := range s.assembler.Seq(&stats) {
		if !fn(st) {
			break
		}
	}
	s.logger.V(1).Info("assembled structures",
		"examined", stats.Examined,
		"accepted", stats.Accepted,
		"cyclic", stats.Cyclic,
		"violating", stats.Violating,
		"duplicate", stats.Duplicate,
		"fragment", stats.Fragment)
	return stats
}

// Stats runs a full pass over the structures and returns its counters.
func (s *Solution) Stats() assemble.Stats {
	return s.Each(func(assemble.Structure) bool { return true })
}

// Graph returns the hypergraph of a structure of this solution.
func (s *Solution) Graph(st assemble.Structure) *hypergraph.Graph {
	return hypergraph.New(s.schema, st)
}
