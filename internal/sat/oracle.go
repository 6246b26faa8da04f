package sat

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
	unknown       = 0
)

// Uncertified is returned by Oracle.Verify when a relation does not
// hold over the table.
type Uncertified struct {
	Relation mlca.Relation
	Reason   string
}

func (e Uncertified) Error() string {
	return fmt.Sprintf("relation %q not certified: %s", e.Relation, e.Reason)
}

// Oracle answers sufficiency and necessity questions about a
// coincidence table by SAT queries over a circuit encoding of its rows.
// Each query uses a fresh solver, so an Oracle may be shared between
// goroutines.
type Oracle struct {
	table *table.Table
}

func New(t *table.Table) *Oracle {
	return &Oracle{table: t}
}

// query solves the circuit of d under the given assumptions with a
// fresh solver. The circuit of d may be reused by later queries.
func (o *Oracle) query(d *litMapping, assumptions ...z.Lit) (bool, error) {
	// This likely indicates a bug in the caller, so the outcome of
	// the query is meaningless.
	if err := d.Error(); err != nil {
		return false, err
	}

	g := gini.New()
	d.AddConstraints(g)
	g.Assume(d.table)
	g.Assume(assumptions...)
	switch g.Solve() {
	case satisfiable:
		return true, nil
	case unsatisfiable:
		return false, nil
	}
	return false, fmt.Errorf("oracle query returned an unknown result")
}

// Instantiated reports whether some row satisfies the condition.
func (o *Oracle) Instantiated(c mlca.Condition) (bool, error) {
	return o.instantiated(newLitMapping(o.table), c)
}

func (o *Oracle) instantiated(d *litMapping, c mlca.Condition) (bool, error) {
	return o.query(d, d.ConditionOf(c))
}

// Sufficient reports whether no row satisfies the condition without
// the outcome literal.
func (o *Oracle) Sufficient(c mlca.Condition, outcome mlca.Literal) (bool, error) {
	return o.sufficient(newLitMapping(o.table), c, outcome)
}

func (o *Oracle) sufficient(d *litMapping, c mlca.Condition, outcome mlca.Literal) (bool, error) {
	sat, err := o.query(d, d.ConditionOf(c), d.LitOf(outcome.Not()))
	return !sat, err
}

// Necessary reports whether no row satisfies the outcome literal without
// the condition.
func (o *Oracle) Necessary(c mlca.Condition, outcome mlca.Literal) (bool, error) {
	return o.necessary(newLitMapping(o.table), c, outcome)
}

func (o *Oracle) necessary(d *litMapping, c mlca.Condition, outcome mlca.Literal) (bool, error) {
	sat, err := o.query(d, d.LitOf(outcome), d.ConditionOf(c).Not())
	return !sat, err
}

// Verify checks that every conjunct of the relation's condition is
// instantiated and sufficient for its outcome, and that the condition
// as a whole is necessary. The table is encoded once for all checks.
func (o *Oracle) Verify(r mlca.Relation) error {
	d := newLitMapping(o.table)
	for _, conj := range r.Condition {
		single := mlca.Condition{conj}
		ok, err := o.instantiated(d, single)
		if err != nil {
			return err
		}
		if !ok {
			return Uncertified{Relation: r, Reason: fmt.Sprintf("%s has no instance", conj)}
		}
		ok, err = o.sufficient(d, single, r.Outcome)
		if err != nil {
			return err
		}
		if !ok {
			return Uncertified{Relation: r, Reason: fmt.Sprintf("%s is not sufficient", conj)}
		}
	}
	ok, err := o.necessary(d, r.Condition, r.Outcome)
	if err != nil {
		return err
	}
	if !ok {
		return Uncertified{Relation: r, Reason: "condition is not necessary"}
	}
	return nil
}
