package search

import (
	"context"
	"fmt"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// Verifier independently checks a relation found by the search.
type Verifier interface {
	Verify(r mlca.Relation) error
}

// Result holds every minimal sufficient and necessary condition found
// for one outcome literal, in enumeration order.
type Result struct {
	Outcome   mlca.Literal
	Relations []mlca.Relation
	// Tested counts the candidates whose rows were scored.
	Tested int
}

// Searcher finds minimal sufficient and necessary conditions over a
// table. It holds no mutable state, so Search may be called from
// several goroutines at once.
type Searcher struct {
	table    *table.Table
	bounds   Bounds
	tracer   Tracer
	verifier Verifier
}

type Option func(s *Searcher) error

func WithTracer(t Tracer) Option {
	return func(s *Searcher) error {
		s.tracer = t
		return nil
	}
}

// WithVerifier certifies every accepted relation before it is returned.
func WithVerifier(v Verifier) Option {
	return func(s *Searcher) error {
		s.verifier = v
		return nil
	}
}

var defaults = []Option{
	func(s *Searcher) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
}

func New(t *table.Table, bounds Bounds, options ...Option) (*Searcher, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	s := Searcher{table: t, bounds: bounds}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

type literal struct {
	factor  int
	negated bool
}

type conjunct struct {
	lits    []int
	factors []int
	rows    table.RowSet
}

type disjunction struct {
	members []int
	factors []int
	rows    table.RowSet
}

type run struct {
	*Searcher
	outcome mlca.Literal
	out     table.RowSet
	lits    []literal
	result  *Result
	quiet   bool
}

// Search returns the minimal sufficient and necessary conditions for
// outcome within the configured bounds. An outcome that cannot be
// explained, constant outcomes included, yields an empty result, not an
// error.
func (s *Searcher) Search(ctx context.Context, outcome mlca.Literal) (*Result, error) {
	f, ok := s.table.Factor(outcome.Factor)
	if !ok {
		return nil, fmt.Errorf("%w: unknown outcome factor %q", mlca.ErrInvalidCondition, outcome.Factor)
	}
	// A constant outcome makes every instantiated condition sufficient.
	if s.table.IsConstant(f.Index) {
		return &Result{Outcome: outcome}, nil
	}
	_, quiet := s.tracer.(DefaultTracer)
	r := run{
		Searcher: s,
		outcome:  outcome,
		out:      s.table.RowsOf(f.Index, outcome.Negated),
		lits:     s.eligible(f.Index),
		result:   &Result{Outcome: outcome},
		quiet:    quiet,
	}

	pool, err := r.conjuncts(ctx)
	if err != nil {
		return nil, err
	}
	accepted, err := r.disjunctions(ctx, pool)
	if err != nil {
		return nil, err
	}

	for _, d := range accepted {
		rel := mlca.Relation{Condition: r.condition(pool, d.members), Outcome: outcome}
		if s.verifier != nil {
			if err := s.verifier.Verify(rel); err != nil {
				return nil, fmt.Errorf("certifying %s: %w", rel, err)
			}
		}
		r.result.Relations = append(r.result.Relations, rel)
	}
	return r.result, nil
}

// eligible returns the literals that may appear in a condition for the
// factor at column effect, in column order with the affirmed literal
// first. Constant factors never discriminate between rows and are left
// out.
func (s *Searcher) eligible(effect int) []literal {
	var lits []literal
	for i := 0; i < s.table.Len(); i++ {
		if s.table.IsConstant(i) || !s.table.MayCauseAt(i, effect) {
			continue
		}
		lits = append(lits, literal{factor: i}, literal{factor: i, negated: true})
	}
	return lits
}

// conjuncts collects the minimal sufficient conjuncts, smallest first.
// Candidates are built level-wise by extending insufficient conjuncts
// of the previous size with a later literal; a candidate containing a
// sufficient conjunct is skipped without being scored.
func (r *run) conjuncts(ctx context.Context) ([]conjunct, error) {
	maxSize := r.bounds.MaxConjunctSize
	if r.bounds.MaxFactors < maxSize {
		maxSize = r.bounds.MaxFactors
	}

	var pool []conjunct
	open := []conjunct{{rows: r.table.All()}}
	for size := 1; size <= maxSize && len(open) > 0; size++ {
		var next []conjunct
		for _, parent := range open {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := 0
			if n := len(parent.lits); n > 0 {
				start = parent.lits[n-1] + 1
			}
			for k := start; k < len(r.lits); k++ {
				l := r.lits[k]
				if n := len(parent.lits); n > 0 && r.lits[parent.lits[n-1]].factor == l.factor {
					continue
				}
				lits := append(append(make([]int, 0, size), parent.lits...), k)
				if containsConjunct(pool, lits) {
					continue
				}
				rows := parent.rows.And(r.table.RowsOf(l.factor, l.negated))
				if rows.IsEmpty() {
					continue
				}
				c := conjunct{
					lits:    lits,
					factors: append(append(make([]int, 0, size), parent.factors...), l.factor),
					rows:    rows,
				}
				sufficient := rows.SubsetOf(r.out)
				r.trace(c, sufficient)
				if sufficient {
					pool = append(pool, c)
				} else {
					next = append(next, c)
				}
			}
		}
		open = next
	}
	return pool, nil
}

// disjunctions collects the minimal covering disjunctions of pool
// members, fewest disjuncts first.
func (r *run) disjunctions(ctx context.Context, pool []conjunct) ([]disjunction, error) {
	var accepted []disjunction
	open := []disjunction{{rows: table.EmptyRowSet(r.table.Rows())}}
	for size := 1; size <= r.bounds.MaxDisjuncts && len(open) > 0; size++ {
		var next []disjunction
		for _, parent := range open {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := 0
			if n := len(parent.members); n > 0 {
				start = parent.members[n-1] + 1
			}
			for k := start; k < len(pool); k++ {
				members := append(append(make([]int, 0, size), parent.members...), k)
				if containsDisjunction(accepted, members) {
					continue
				}
				factors := union(parent.factors, pool[k].factors)
				if len(factors) > r.bounds.MaxFactors {
					continue
				}
				d := disjunction{
					members: members,
					factors: factors,
					rows:    parent.rows.Or(pool[k].rows),
				}
				covers := r.out.SubsetOf(d.rows)
				r.traceDisjunction(pool, d, covers)
				if covers {
					accepted = append(accepted, d)
				} else {
					next = append(next, d)
				}
			}
		}
		open = next
	}
	return accepted, nil
}

func (r *run) trace(c conjunct, accepted bool) {
	r.result.Tested++
	if r.quiet {
		return
	}
	r.tracer.Trace(position{
		outcome:   r.outcome,
		candidate: mlca.Condition{r.conjunct(c.lits)},
		rows:      c.rows,
		out:       r.out,
		accepted:  accepted,
	})
}

func (r *run) traceDisjunction(pool []conjunct, d disjunction, accepted bool) {
	r.result.Tested++
	if r.quiet {
		return
	}
	r.tracer.Trace(position{
		outcome:   r.outcome,
		candidate: r.condition(pool, d.members),
		rows:      d.rows,
		out:       r.out,
		accepted:  accepted,
	})
}

func (r *run) conjunct(lits []int) mlca.Conjunct {
	c := make(mlca.Conjunct, len(lits))
	for i, k := range lits {
		l := r.lits[k]
		c[i] = mlca.Literal{Factor: r.table.At(l.factor).ID, Negated: l.negated}
	}
	return c
}

func (r *run) condition(pool []conjunct, members []int) mlca.Condition {
	c := make(mlca.Condition, len(members))
	for i, m := range members {
		c[i] = r.conjunct(pool[m].lits)
	}
	return c
}

func containsConjunct(pool []conjunct, lits []int) bool {
	for _, p := range pool {
		if subset(p.lits, lits) {
			return true
		}
	}
	return false
}

func containsDisjunction(accepted []disjunction, members []int) bool {
	for _, a := range accepted {
		if subset(a.members, members) {
			return true
		}
	}
	return false
}

// subset reports whether sorted a is contained in sorted b.
func subset(a, b []int) bool {
	i := 0
	for _, x := range b {
		if i < len(a) && a[i] == x {
			i++
		}
	}
	return i == len(a)
}

// union merges two sorted slices without duplicates.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
