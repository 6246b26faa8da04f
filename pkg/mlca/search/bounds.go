package search

import (
	"errors"
	"fmt"
)

var ErrInvalidBounds = errors.New("invalid search bounds")

// Bounds limit the size of the conditions considered for an outcome.
type Bounds struct {
	// MaxConjunctSize is the largest number of literals in a conjunct.
	MaxConjunctSize int `yaml:"maxConjunctSize" validate:"gte=1"`
	// MaxDisjuncts is the largest number of conjuncts in a condition.
	MaxDisjuncts int `yaml:"maxDisjuncts" validate:"gte=1"`
	// MaxFactors is the largest number of distinct factors in a condition.
	MaxFactors int `yaml:"maxFactors" validate:"gte=1"`
}

// DefaultBounds returns the bounds used when none are configured.
func DefaultBounds() Bounds {
	return Bounds{MaxConjunctSize: 3, MaxDisjuncts: 4, MaxFactors: 8}
}

func (b Bounds) Validate() error {
	if b.MaxConjunctSize < 1 {
		return fmt.Errorf("%w: max conjunct size %d", ErrInvalidBounds, b.MaxConjunctSize)
	}
	if b.MaxDisjuncts < 1 {
		return fmt.Errorf("%w: max disjuncts %d", ErrInvalidBounds, b.MaxDisjuncts)
	}
	if b.MaxFactors < 1 {
		return fmt.Errorf("%w: max factors %d", ErrInvalidBounds, b.MaxFactors)
	}
	return nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("conjunct<=%d disjuncts<=%d factors<=%d", b.MaxConjunctSize, b.MaxDisjuncts, b.MaxFactors)
}
