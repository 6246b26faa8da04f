package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

type inconsistentLitMapping []error

func (inconsistentLitMapping) Error() string {
	return "internal oracle failure"
}

// litMapping performs translation between the factors of a coincidence
// table and the variables that appear in the SAT formula. The table
// itself is encoded as a disjunction of one conjunction per row, so a
// model of the circuit is always one of the observed configurations.
type litMapping struct {
	lits  map[mlca.Identifier]z.Lit
	c     *logic.C
	table z.Lit
	errs  inconsistentLitMapping
}

func newLitMapping(t *table.Table) *litMapping {
	d := litMapping{
		lits: make(map[mlca.Identifier]z.Lit, t.Len()),
		c:    logic.NewCCap(t.Len() * (t.Rows() + 1)),
	}

	ms := make([]z.Lit, t.Len())
	for i, f := range t.Factors() {
		ms[i] = d.c.Lit()
		d.lits[f.ID] = ms[i]
	}

	d.table = z.LitNull
	for r := 0; r < t.Rows(); r++ {
		row := z.LitNull
		for i, m := range ms {
			if !t.Value(r, i) {
				m = m.Not()
			}
			row = d.and(row, m)
		}
		d.table = d.or(d.table, row)
	}
	return &d
}

func (d *litMapping) and(a, b z.Lit) z.Lit {
	if a == z.LitNull {
		return b
	}
	return d.c.And(a, b)
}

func (d *litMapping) or(a, b z.Lit) z.Lit {
	if a == z.LitNull {
		return b
	}
	return d.c.Or(a, b)
}

// LitOf returns the circuit literal of a factor literal.
func (d *litMapping) LitOf(l mlca.Literal) z.Lit {
	m, ok := d.lits[l.Factor]
	if !ok {
		d.errs = append(d.errs, fmt.Errorf("factor %q referenced but not provided", l.Factor))
		return z.LitNull
	}
	if l.Negated {
		return m.Not()
	}
	return m
}

// ConjunctOf returns a literal that holds exactly when every literal of
// c holds.
func (d *litMapping) ConjunctOf(c mlca.Conjunct) z.Lit {
	if len(c) == 0 {
		d.errs = append(d.errs, fmt.Errorf("empty conjunct"))
		return z.LitNull
	}
	m := z.LitNull
	for _, l := range c {
		m = d.and(m, d.LitOf(l))
	}
	return m
}

// ConditionOf returns a literal that holds exactly when some conjunct of
// c holds.
func (d *litMapping) ConditionOf(c mlca.Condition) z.Lit {
	if len(c) == 0 {
		d.errs = append(d.errs, fmt.Errorf("empty condition"))
		return z.LitNull
	}
	m := z.LitNull
	for _, conj := range c {
		m = d.or(m, d.ConjunctOf(conj))
	}
	return m
}

// Error returns a single error value that is an aggregation of all
// errors encountered during a litMapping's lifetime, or nil if there have
// been no errors.
func (d *litMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	s := make([]string, len(d.errs))
	for i, err := range d.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}

// AddConstraints teaches the encoded circuit to the solver g.
func (d *litMapping) AddConstraints(g inter.S) {
	d.c.ToCnf(g)
}
