package table

import "math/bits"

// RowSet is a set of configuration (row) indices of a Table.
type RowSet []uint64

func newRowSet(n int) RowSet {
	return make(RowSet, (n+63)/64)
}

// EmptyRowSet returns a set over n rows with no members.
func EmptyRowSet(n int) RowSet {
	return newRowSet(n)
}

// FullRowSet returns the set of all n rows.
func FullRowSet(n int) RowSet {
	s := newRowSet(n)
	for i := 0; i < n; i++ {
		s.add(i)
	}
	return s
}

func (s RowSet) add(i int) {
	s[i/64] |= 1 << (uint(i) % 64)
}

// Has reports whether row i is in the set.
func (s RowSet) Has(i int) bool {
	return s[i/64]&(1<<(uint(i)%64)) != 0
}

// And returns the intersection of s and o.
func (s RowSet) And(o RowSet) RowSet {
	r := make(RowSet, len(s))
	for i := range s {
		r[i] = s[i] & o[i]
	}
	return r
}

// Or returns the union of s and o.
func (s RowSet) Or(o RowSet) RowSet {
	r := make(RowSet, len(s))
	for i := range s {
		r[i] = s[i] | o[i]
	}
	return r
}

// AndNot returns the rows of s that are not in o.
func (s RowSet) AndNot(o RowSet) RowSet {
	r := make(RowSet, len(s))
	for i := range s {
		r[i] = s[i] &^ o[i]
	}
	return r
}

// Count returns the number of rows in the set.
func (s RowSet) Count() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s RowSet) IsEmpty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// Intersects reports whether s and o share at least one row.
func (s RowSet) Intersects(o RowSet) bool {
	for i := range s {
		if s[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every row of s is also in o.
func (s RowSet) SubsetOf(o RowSet) bool {
	for i := range s {
		if s[i]&^o[i] != 0 {
			return false
		}
	}
	return true
}

func (s RowSet) Equal(o RowSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}
