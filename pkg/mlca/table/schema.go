package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mlca-go/mlca/pkg/mlca"
)

// ErrMalformedTable is the error all table validation failures match
// with errors.Is.
var ErrMalformedTable = errors.New("malformed table")

type DuplicateFactor mlca.Identifier

func (e DuplicateFactor) Error() string {
	return fmt.Sprintf("duplicate factor %q in input", mlca.Identifier(e))
}

func (e DuplicateFactor) Is(target error) bool {
	return target == ErrMalformedTable
}

// SubstringFactor reports a factor name that is contained in another
// factor's name, which makes textual formulae ambiguous.
type SubstringFactor struct {
	Name mlca.Identifier
	Of   mlca.Identifier
}

func (e SubstringFactor) Error() string {
	return fmt.Sprintf("factor name %q is a substring of factor name %q", e.Name, e.Of)
}

func (e SubstringFactor) Is(target error) bool {
	return target == ErrMalformedTable
}

// Layout partitions factors into constitutive levels, lowest first.
// Each level is a chain of order groups: factors of a later group are
// causally downstream of factors of an earlier group of the same level.
type Layout [][][]mlca.Identifier

// UnleveledPolicy decides where factors missing from a Layout go.
type UnleveledPolicy int

const (
	// UnleveledLowest places unleveled factors on the lowest level.
	UnleveledLowest UnleveledPolicy = iota
	// UnleveledHighest places unleveled factors on the highest level.
	UnleveledHighest
)

func (p UnleveledPolicy) String() string {
	switch p {
	case UnleveledLowest:
		return "lowest"
	case UnleveledHighest:
		return "highest"
	}
	return fmt.Sprintf("UnleveledPolicy(%d)", int(p))
}

// ParseUnleveledPolicy maps "lowest" and "highest" to a policy.
func ParseUnleveledPolicy(s string) (UnleveledPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lowest":
		return UnleveledLowest, nil
	case "highest":
		return UnleveledHighest, nil
	}
	return UnleveledLowest, fmt.Errorf("unknown unleveled policy %q", s)
}

// Factor is a named boolean variable of a table.
type Factor struct {
	ID    mlca.Identifier
	Index int
	Level int
	// Rank is the position of the factor's order group within its level,
	// or -1 when the factor is unordered.
	Rank int
}

type config struct {
	layout    Layout
	unleveled UnleveledPolicy
}

type Option func(c *config) error

// WithLayout assigns factors to levels and order groups.
func WithLayout(layout Layout) Option {
	return func(c *config) error {
		c.layout = layout
		return nil
	}
}

func WithUnleveled(p UnleveledPolicy) Option {
	return func(c *config) error {
		if p != UnleveledLowest && p != UnleveledHighest {
			return fmt.Errorf("invalid unleveled policy %d", int(p))
		}
		c.unleveled = p
		return nil
	}
}

// Schema holds the factors of a table together with their level and
// ordering metadata. It is immutable.
type Schema struct {
	factors []Factor
	index   map[mlca.Identifier]int
	levels  [][]int
	ordered bool
}

// NewSchema validates factor names and applies the layout options.
func NewSchema(ids []mlca.Identifier, options ...Option) (*Schema, error) {
	cfg := config{}
	for _, option := range options {
		if err := option(&cfg); err != nil {
			return nil, err
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no factors", ErrMalformedTable)
	}
	s := &Schema{
		factors: make([]Factor, len(ids)),
		index:   make(map[mlca.Identifier]int, len(ids)),
	}
	for i, id := range ids {
		if strings.TrimSpace(string(id)) == "" {
			return nil, fmt.Errorf("%w: factor %d has an empty name", ErrMalformedTable, i)
		}
		if _, ok := s.index[id]; ok {
			return nil, DuplicateFactor(id)
		}
		s.index[id] = i
		s.factors[i] = Factor{ID: id, Index: i, Rank: -1}
	}
	for _, a := range ids {
		for _, b := range ids {
			if a != b && strings.Contains(string(b), string(a)) {
				return nil, SubstringFactor{Name: a, Of: b}
			}
		}
	}

	if err := s.applyLayout(cfg.layout, cfg.unleveled); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) applyLayout(layout Layout, policy UnleveledPolicy) error {
	placed := make([]bool, len(s.factors))
	for lvl, groups := range layout {
		if len(groups) > 1 {
			s.ordered = true
		}
		for rank, group := range groups {
			for _, id := range group {
				i, ok := s.index[id]
				if !ok {
					return fmt.Errorf("%w: layout references unknown factor %q", ErrMalformedTable, id)
				}
				if placed[i] {
					return fmt.Errorf("%w: factor %q appears more than once in layout", ErrMalformedTable, id)
				}
				placed[i] = true
				s.factors[i].Level = lvl
				s.factors[i].Rank = rank
			}
		}
	}

	levelCount := len(layout)
	if levelCount == 0 {
		levelCount = 1
	}
	for i := range s.factors {
		if placed[i] {
			continue
		}
		s.factors[i].Rank = -1
		if policy == UnleveledHighest {
			s.factors[i].Level = levelCount - 1
		} else {
			s.factors[i].Level = 0
		}
	}

	s.levels = make([][]int, levelCount)
	for i, f := range s.factors {
		s.levels[f.Level] = append(s.levels[f.Level], i)
	}
	// a declared level may end up empty only if the layout listed an empty level
	for lvl, members := range s.levels {
		if len(members) == 0 {
			return fmt.Errorf("%w: level %d has no factors", ErrMalformedTable, lvl)
		}
	}
	return nil
}

// Len returns the number of factors.
func (s *Schema) Len() int {
	return len(s.factors)
}

// At returns the factor at column i.
func (s *Schema) At(i int) Factor {
	return s.factors[i]
}

// Factor looks up a factor by name.
func (s *Schema) Factor(id mlca.Identifier) (Factor, bool) {
	i, ok := s.index[id]
	if !ok {
		return Factor{}, false
	}
	return s.factors[i], true
}

// Factors returns all factors in column order.
func (s *Schema) Factors() []Factor {
	out := make([]Factor, len(s.factors))
	copy(out, s.factors)
	return out
}

// Identifiers returns all factor names in column order.
func (s *Schema) Identifiers() []mlca.Identifier {
	out := make([]mlca.Identifier, len(s.factors))
	for i, f := range s.factors {
		out[i] = f.ID
	}
	return out
}

// LevelCount returns the number of constitutive levels, at least one.
func (s *Schema) LevelCount() int {
	return len(s.levels)
}

// Level returns the factors of a level in column order.
func (s *Schema) Level(lvl int) []Factor {
	out := make([]Factor, 0, len(s.levels[lvl]))
	for _, i := range s.levels[lvl] {
		out = append(out, s.factors[i])
	}
	return out
}

// Ordered reports whether an intra-level ordering was declared.
func (s *Schema) Ordered() bool {
	return s.ordered
}

// MayCause reports whether cause is allowed to appear in a condition
// for effect: it must be a different factor on the same or a lower
// level, and within the same level it must not be downstream of effect.
func (s *Schema) MayCause(cause, effect mlca.Identifier) bool {
	c, ok := s.index[cause]
	if !ok {
		return false
	}
	e, ok := s.index[effect]
	if !ok {
		return false
	}
	return s.MayCauseAt(c, e)
}

// MayCauseAt is MayCause over column indices.
func (s *Schema) MayCauseAt(cause, effect int) bool {
	if cause == effect {
		return false
	}
	c, e := s.factors[cause], s.factors[effect]
	if c.Level > e.Level {
		return false
	}
	if c.Level == e.Level && c.Rank >= 0 && e.Rank >= 0 && c.Rank > e.Rank {
		return false
	}
	return true
}

// KindOf classifies r by the levels of its condition relative to the
// level of its outcome. Relations over unknown factors are Mixed.
func (s *Schema) KindOf(r mlca.Relation) mlca.RelationKind {
	out, ok := s.Factor(r.Outcome.Factor)
	ids := r.Condition.Factors()
	if !ok || len(ids) == 0 {
		return mlca.Mixed
	}
	level := -1
	for _, id := range ids {
		f, ok := s.Factor(id)
		if !ok || (level >= 0 && f.Level != level) {
			return mlca.Mixed
		}
		level = f.Level
	}
	switch level {
	case out.Level:
		return mlca.Causal
	case out.Level - 1:
		return mlca.Constitution
	}
	return mlca.Mixed
}
