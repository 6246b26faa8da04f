package mlca

import (
	"fmt"
	"strings"
)

// ParseLiteral reads a literal written as "A" or "~A".
func ParseLiteral(s string) (Literal, error) {
	s = strings.TrimSpace(s)
	negated := false
	for strings.HasPrefix(s, "~") {
		negated = !negated
		s = strings.TrimSpace(s[1:])
	}
	if s == "" || strings.ContainsAny(s, "*+~<>() \t") {
		return Literal{}, fmt.Errorf("%w: malformed literal %q", ErrInvalidCondition, s)
	}
	return Literal{Factor: Identifier(s), Negated: negated}, nil
}

// ParseCondition reads a condition in disjunctive normal form, with
// "+" separating disjuncts and "*" separating the literals of each
// conjunct, e.g. "A*~B + C".
func ParseCondition(s string) (Condition, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty condition", ErrInvalidCondition)
	}
	var cond Condition
	for _, disj := range strings.Split(s, "+") {
		var conj Conjunct
		seen := map[Identifier]struct{}{}
		for _, term := range strings.Split(disj, "*") {
			lit, err := ParseLiteral(term)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[lit.Factor]; ok {
				return nil, fmt.Errorf("%w: factor %s repeated in conjunct %q", ErrInvalidCondition, lit.Factor, strings.TrimSpace(disj))
			}
			seen[lit.Factor] = struct{}{}
			conj = append(conj, lit)
		}
		cond = append(cond, conj)
	}
	return cond, nil
}

// ParseRelation reads an equivalence of the form "A*B + C <-> D".
func ParseRelation(s string) (Relation, error) {
	parts := strings.Split(s, "<->")
	if len(parts) != 2 {
		return Relation{}, fmt.Errorf("%w: expected exactly one '<->' in %q", ErrInvalidCondition, s)
	}
	cond, err := ParseCondition(parts[0])
	if err != nil {
		return Relation{}, err
	}
	outcome, err := ParseLiteral(parts[1])
	if err != nil {
		return Relation{}, err
	}
	if cond.Mentions(outcome.Factor) {
		return Relation{}, fmt.Errorf("%w: %s", ErrSelfCausation, outcome.Factor)
	}
	return Relation{Condition: cond, Outcome: outcome}, nil
}
