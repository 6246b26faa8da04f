package mlca

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidCondition is returned when a Condition references a
	// factor that does not exist, or cannot be parsed.
	ErrInvalidCondition = errors.New("invalid condition")
	// ErrSelfCausation is returned when an outcome factor appears inside
	// the condition it is evaluated against.
	ErrSelfCausation = errors.New("outcome factor appears in its own condition")
)

// RelationKind places a relation on the constitutive levels.
type RelationKind int

const (
	// Causal relations have their condition on the level of the outcome.
	Causal RelationKind = iota
	// Constitution relations have their whole condition on the level
	// right below the outcome.
	Constitution
	// Mixed relations spread their condition over several levels, or
	// skip a level.
	Mixed
)

func (k RelationKind) String() string {
	switch k {
	case Causal:
		return "causal"
	case Constitution:
		return "constitution"
	case Mixed:
		return "mixed"
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

// Identifier values uniquely identify a causal factor within a
// coincidence table.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Literal is a factor paired with a polarity.
type Literal struct {
	Factor  Identifier
	Negated bool
}

// Affirm returns the positive literal of a factor.
func Affirm(id Identifier) Literal {
	return Literal{Factor: id}
}

// Negate returns the negative literal of a factor.
func Negate(id Identifier) Literal {
	return Literal{Factor: id, Negated: true}
}

// Not returns the literal with the opposite polarity.
func (l Literal) Not() Literal {
	return Literal{Factor: l.Factor, Negated: !l.Negated}
}

// Holds reports whether the literal is true for a factor value.
func (l Literal) Holds(value bool) bool {
	return value != l.Negated
}

func (l Literal) String() string {
	if l.Negated {
		return "~" + string(l.Factor)
	}
	return string(l.Factor)
}

// Conjunct is a conjunction of literals over distinct factors.
type Conjunct []Literal

func (c Conjunct) String() string {
	s := make([]string, len(c))
	for i, l := range c {
		s[i] = l.String()
	}
	return strings.Join(s, "*")
}

// Contains reports whether l is one of the conjunct's literals.
func (c Conjunct) Contains(l Literal) bool {
	for _, each := range c {
		if each == l {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every literal of c also appears in o.
func (c Conjunct) SubsetOf(o Conjunct) bool {
	for _, l := range c {
		if !o.Contains(l) {
			return false
		}
	}
	return true
}

// Mentions reports whether the factor appears in the conjunct with
// either polarity.
func (c Conjunct) Mentions(id Identifier) bool {
	for _, l := range c {
		if l.Factor == id {
			return true
		}
	}
	return false
}

func (c Conjunct) key() string {
	s := make([]string, len(c))
	for i, l := range c {
		s[i] = l.String()
	}
	sort.Strings(s)
	return strings.Join(s, "*")
}

// Condition is a disjunction of conjuncts.
type Condition []Conjunct

// Size measures a condition along the three search bounds.
type Size struct {
	Conjuncts   int
	MaxLiterals int
	Factors     int
}

func (c Condition) String() string {
	s := make([]string, len(c))
	for i, conj := range c {
		s[i] = conj.String()
	}
	return strings.Join(s, " + ")
}

// Factors returns the distinct factors used by the condition in order
// of first appearance.
func (c Condition) Factors() []Identifier {
	var ids []Identifier
	seen := map[Identifier]struct{}{}
	for _, conj := range c {
		for _, l := range conj {
			if _, ok := seen[l.Factor]; ok {
				continue
			}
			seen[l.Factor] = struct{}{}
			ids = append(ids, l.Factor)
		}
	}
	return ids
}

// Mentions reports whether the factor appears anywhere in the condition.
func (c Condition) Mentions(id Identifier) bool {
	for _, conj := range c {
		if conj.Mentions(id) {
			return true
		}
	}
	return false
}

func (c Condition) Size() Size {
	s := Size{Conjuncts: len(c), Factors: len(c.Factors())}
	for _, conj := range c {
		if len(conj) > s.MaxLiterals {
			s.MaxLiterals = len(conj)
		}
	}
	return s
}

// Complexity is the total number of literal occurrences.
func (c Condition) Complexity() int {
	n := 0
	for _, conj := range c {
		n += len(conj)
	}
	return n
}

// Key returns a canonical representation that is independent of the
// order of conjuncts and literals.
func (c Condition) Key() string {
	s := make([]string, len(c))
	for i, conj := range c {
		s[i] = conj.key()
	}
	sort.Strings(s)
	return strings.Join(s, " + ")
}

// Relation states that Condition is a minimal sufficient and necessary
// condition for Outcome.
type Relation struct {
	Condition Condition
	Outcome   Literal
}

func (r Relation) String() string {
	return fmt.Sprintf("%s <-> %s", r.Condition, r.Outcome)
}

// Causes returns the factors with an edge into the outcome.
func (r Relation) Causes() []Identifier {
	return r.Condition.Factors()
}

// Key returns a canonical representation of the relation.
func (r Relation) Key() string {
	return r.Condition.Key() + " <-> " + r.Outcome.String()
}
