package table

import (
	"fmt"

	"github.com/mlca-go/mlca/pkg/mlca"
)

// Table is an immutable coincidence table: a Schema plus an ordered
// sequence of configurations.
type Table struct {
	*Schema
	rows [][]bool
	pos  []RowSet
	neg  []RowSet
	all  RowSet
}

// New builds a Table from factor names and rows of boolean values in
// column order.
func New(ids []mlca.Identifier, rows [][]bool, options ...Option) (*Table, error) {
	schema, err := NewSchema(ids, options...)
	if err != nil {
		return nil, err
	}
	return FromSchema(schema, rows)
}

// FromSchema attaches rows to an existing schema.
func FromSchema(schema *Schema, rows [][]bool) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no configurations", ErrMalformedTable)
	}
	n := schema.Len()
	t := &Table{
		Schema: schema,
		rows:   make([][]bool, len(rows)),
		pos:    make([]RowSet, n),
		neg:    make([]RowSet, n),
		all:    FullRowSet(len(rows)),
	}
	for i := 0; i < n; i++ {
		t.pos[i] = newRowSet(len(rows))
		t.neg[i] = newRowSet(len(rows))
	}
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrMalformedTable, r, len(row), n)
		}
		t.rows[r] = append([]bool(nil), row...)
		for i, v := range row {
			if v {
				t.pos[i].add(r)
			} else {
				t.neg[i].add(r)
			}
		}
	}
	return t, nil
}

// Rows returns the number of configurations.
func (t *Table) Rows() int {
	return len(t.rows)
}

// Row returns a copy of configuration r in column order.
func (t *Table) Row(r int) []bool {
	return append([]bool(nil), t.rows[r]...)
}

// Value returns the value of column i in configuration r.
func (t *Table) Value(r, i int) bool {
	return t.rows[r][i]
}

// All returns the set of every row.
func (t *Table) All() RowSet {
	return t.all
}

// RowsOf returns the rows where the literal of column i with the given
// polarity holds. The result must not be modified.
func (t *Table) RowsOf(i int, negated bool) RowSet {
	if negated {
		return t.neg[i]
	}
	return t.pos[i]
}

// LiteralRows returns the rows where l holds.
func (t *Table) LiteralRows(l mlca.Literal) (RowSet, error) {
	f, ok := t.Factor(l.Factor)
	if !ok {
		return nil, fmt.Errorf("%w: unknown factor %q", mlca.ErrInvalidCondition, l.Factor)
	}
	return t.RowsOf(f.Index, l.Negated), nil
}

// ConjunctRows returns the rows where every literal of c holds.
func (t *Table) ConjunctRows(c mlca.Conjunct) (RowSet, error) {
	rows := t.all
	for _, l := range c {
		lr, err := t.LiteralRows(l)
		if err != nil {
			return nil, err
		}
		rows = rows.And(lr)
	}
	return rows, nil
}

// ConditionRows returns the rows where at least one conjunct of c holds.
func (t *Table) ConditionRows(c mlca.Condition) (RowSet, error) {
	rows := newRowSet(len(t.rows))
	for _, conj := range c {
		cr, err := t.ConjunctRows(conj)
		if err != nil {
			return nil, err
		}
		rows = rows.Or(cr)
	}
	return rows, nil
}

// IsConstant reports whether column i has the same value in every row.
func (t *Table) IsConstant(i int) bool {
	return t.pos[i].IsEmpty() || t.neg[i].IsEmpty()
}
