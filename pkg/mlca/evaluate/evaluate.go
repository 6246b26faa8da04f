package evaluate

import (
	"fmt"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// Score holds the row counts a condition is judged by.
type Score struct {
	// Instances is the number of rows where the condition holds.
	Instances int
	// Counterexamples is the number of rows where the condition holds
	// and the outcome literal does not.
	Counterexamples int
	// Covered is the number of rows where both the condition and the
	// outcome literal hold.
	Covered int
	// Outcomes is the number of rows where the outcome literal holds.
	Outcomes int
}

// Consistency is the share of condition rows that also show the
// outcome. It is zero for a condition without instances.
func (s Score) Consistency() float64 {
	if s.Instances == 0 {
		return 0
	}
	return float64(s.Instances-s.Counterexamples) / float64(s.Instances)
}

// Coverage is the share of outcome rows that the condition accounts for.
func (s Score) Coverage() float64 {
	if s.Outcomes == 0 {
		return 1
	}
	return float64(s.Covered) / float64(s.Outcomes)
}

// Sufficient reports zero counterexamples over at least one instance.
func (s Score) Sufficient() bool {
	return s.Instances > 0 && s.Counterexamples == 0
}

// Necessary reports full coverage.
func (s Score) Necessary() bool {
	return s.Covered == s.Outcomes
}

func (s Score) String() string {
	return fmt.Sprintf("consistency=%.3f coverage=%.3f", s.Consistency(), s.Coverage())
}

// Rows scores precomputed row sets of a condition and an outcome literal.
func Rows(condition, outcome table.RowSet) Score {
	covered := condition.And(outcome).Count()
	instances := condition.Count()
	return Score{
		Instances:       instances,
		Counterexamples: instances - covered,
		Covered:         covered,
		Outcomes:        outcome.Count(),
	}
}

// Evaluate scores condition as an explanation of outcome over t.
func Evaluate(t *table.Table, condition mlca.Condition, outcome mlca.Literal) (Score, error) {
	if len(condition) == 0 {
		return Score{}, fmt.Errorf("%w: empty condition", mlca.ErrInvalidCondition)
	}
	if condition.Mentions(outcome.Factor) {
		return Score{}, fmt.Errorf("%w: %s <-> %s", mlca.ErrSelfCausation, condition, outcome)
	}
	out, err := t.LiteralRows(outcome)
	if err != nil {
		return Score{}, err
	}
	for _, conj := range condition {
		if len(conj) == 0 {
			return Score{}, fmt.Errorf("%w: empty conjunct in %q", mlca.ErrInvalidCondition, condition)
		}
	}
	cond, err := t.ConditionRows(condition)
	if err != nil {
		return Score{}, err
	}
	return Rows(cond, out), nil
}
