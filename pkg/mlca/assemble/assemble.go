package assemble

import (
	"errors"
	"fmt"
	"iter"

	"github.com/go-logr/logr"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// Unbounded disables the structure cap.
const Unbounded = -1

var ErrInvalidCap = errors.New("invalid solution cap")

// Outcome lists the alternative relations for one outcome factor.
type Outcome struct {
	Factor    mlca.Identifier
	Relations []mlca.Relation
	// Optional outcomes may be left unexplained by a structure, but only
	// when none of their relations fits the rest of the structure.
	Optional bool
}

// Stats aggregates what happened to the examined combinations.
type Stats struct {
	Examined  int
	Accepted  int
	Cyclic    int
	Violating int
	Duplicate int
	// Fragment counts combinations leaving an optional outcome
	// unexplained although one of its relations would have fit.
	Fragment int
}

func (s Stats) Rejected() int {
	return s.Cyclic + s.Violating + s.Duplicate + s.Fragment
}

// Assembler enumerates causal structures from per-outcome relations.
type Assembler struct {
	schema   *table.Schema
	outcomes []Outcome
	cap      int
	kinds    bool
	logger   logr.Logger
}

type Option func(a *Assembler) error

// WithCap stops enumeration after k structures. Use Unbounded for all.
func WithCap(k int) Option {
	return func(a *Assembler) error {
		if k == 0 || k < Unbounded {
			return fmt.Errorf("%w: %d", ErrInvalidCap, k)
		}
		a.cap = k
		return nil
	}
}

// WithLevelKinds rejects relations that are neither causal nor
// constitution relations. They count as level violations.
func WithLevelKinds() Option {
	return func(a *Assembler) error {
		a.kinds = true
		return nil
	}
}

func WithLogger(l logr.Logger) Option {
	return func(a *Assembler) error {
		a.logger = l
		return nil
	}
}

var defaults = []Option{
	func(a *Assembler) error {
		if a.logger.GetSink() == nil {
			a.logger = logr.Discard()
		}
		return nil
	},
}

// New validates that every relation belongs to its outcome and names
// only factors of the schema.
func New(schema *table.Schema, outcomes []Outcome, options ...Option) (*Assembler, error) {
	a := Assembler{schema: schema, cap: Unbounded}
	for _, option := range append(options, defaults...) {
		if err := option(&a); err != nil {
			return nil, err
		}
	}

	seen := map[mlca.Identifier]struct{}{}
	for _, o := range outcomes {
		if _, ok := schema.Factor(o.Factor); !ok {
			return nil, fmt.Errorf("%w: unknown outcome factor %q", mlca.ErrInvalidCondition, o.Factor)
		}
		if _, ok := seen[o.Factor]; ok {
			return nil, fmt.Errorf("%w: outcome %q listed more than once", mlca.ErrInvalidCondition, o.Factor)
		}
		seen[o.Factor] = struct{}{}
		for _, r := range o.Relations {
			if r.Outcome.Factor != o.Factor {
				return nil, fmt.Errorf("%w: relation %q does not explain %q", mlca.ErrInvalidCondition, r, o.Factor)
			}
			if len(r.Condition) == 0 {
				return nil, fmt.Errorf("%w: relation %q has an empty condition", mlca.ErrInvalidCondition, r)
			}
			for _, id := range r.Condition.Factors() {
				if _, ok := schema.Factor(id); !ok {
					return nil, fmt.Errorf("%w: unknown factor %q in %q", mlca.ErrInvalidCondition, id, r)
				}
			}
		}
	}
	a.outcomes = append([]Outcome(nil), outcomes...)
	return &a, nil
}

// All returns the structures in enumeration order. Each iteration
// starts over, and yields the same sequence.
func (a *Assembler) All() iter.Seq[Structure] {
	return a.Seq(nil)
}

// Seq is All, accumulating counters into stats when it is not nil.
func (a *Assembler) Seq(stats *Stats) iter.Seq[Structure] {
	return func(yield func(Structure) bool) {
		st := stats
		if st == nil {
			st = &Stats{}
		}
		a.run(st, yield)
	}
}

// choices returns the number of alternatives for outcome i. The last
// alternative of an optional outcome leaves it unexplained.
func (a *Assembler) choices(i int) int {
	n := len(a.outcomes[i].Relations)
	if a.outcomes[i].Optional {
		n++
	}
	return n
}

func (a *Assembler) run(stats *Stats, yield func(Structure) bool) {
	if len(a.outcomes) == 0 {
		return
	}
	for i := range a.outcomes {
		if a.choices(i) == 0 {
			a.logger.V(1).Info("outcome has no candidate relations", "outcome", a.outcomes[i].Factor)
			return
		}
	}

	odometer := make([]int, len(a.outcomes))
	seen := map[string]struct{}{}
	chosen := make([]mlca.Relation, 0, len(a.outcomes))
	emitted := 0
	for {
		stats.Examined++
		chosen = chosen[:0]
		var unexplained []int
		for i, c := range odometer {
			if c == len(a.outcomes[i].Relations) {
				unexplained = append(unexplained, i)
				continue
			}
			chosen = append(chosen, a.outcomes[i].Relations[c])
		}

		switch {
		case len(chosen) == 0:
			stats.Fragment++
		case !a.respectsLevels(chosen):
			stats.Violating++
			a.logger.V(2).Info("combination violates levels", "relations", fmt.Sprint(chosen))
		case a.cyclic(chosen):
			stats.Cyclic++
			a.logger.V(2).Info("combination is cyclic", "relations", fmt.Sprint(chosen))
		case !a.maximal(chosen, unexplained):
			stats.Fragment++
		default:
			s := newStructure(chosen)
			if _, ok := seen[s.Key()]; ok {
				stats.Duplicate++
				break
			}
			seen[s.Key()] = struct{}{}
			stats.Accepted++
			emitted++
			if !yield(s) {
				return
			}
			if a.cap != Unbounded && emitted >= a.cap {
				return
			}
		}

		if !a.advance(odometer) {
			return
		}
	}
}

// advance moves to the next combination, last outcome fastest, and
// reports false once every combination has been visited.
func (a *Assembler) advance(odometer []int) bool {
	for i := len(odometer) - 1; i >= 0; i-- {
		odometer[i]++
		if odometer[i] < a.choices(i) {
			return true
		}
		odometer[i] = 0
	}
	return false
}

func (a *Assembler) respectsLevels(relations []mlca.Relation) bool {
	for _, r := range relations {
		if a.kinds && a.schema.KindOf(r) == mlca.Mixed {
			return false
		}
		for _, id := range r.Causes() {
			if !a.schema.MayCause(id, r.Outcome.Factor) {
				return false
			}
		}
	}
	return true
}

// maximal reports whether no relation of an unexplained outcome could
// be added to relations without a cycle or a level violation.
func (a *Assembler) maximal(relations []mlca.Relation, unexplained []int) bool {
	for _, i := range unexplained {
		for _, r := range a.outcomes[i].Relations {
			extended := append(append(make([]mlca.Relation, 0, len(relations)+1), relations...), r)
			if a.respectsLevels(extended) && !a.cyclic(extended) {
				return false
			}
		}
	}
	return true
}

// cyclic reports whether the graph induced by relations has a directed
// cycle.
func (a *Assembler) cyclic(relations []mlca.Relation) bool {
	n := a.schema.Len()
	edges := make([][]int, n)
	for _, r := range relations {
		to, _ := a.schema.Factor(r.Outcome.Factor)
		for _, id := range r.Causes() {
			from, _ := a.schema.Factor(id)
			edges[from.Index] = append(edges[from.Index], to.Index)
		}
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, n)
	var visit func(v int) bool
	visit = func(v int) bool {
		state[v] = active
		for _, w := range edges[v] {
			switch state[w] {
			case active:
				return true
			case unvisited:
				if visit(w) {
					return true
				}
			}
		}
		state[v] = done
		return false
	}
	for v := 0; v < n; v++ {
		if state[v] == unvisited && visit(v) {
			return true
		}
	}
	return false
}
