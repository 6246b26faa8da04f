package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlca-go/mlca/pkg/mlca/search"
)

// BindFlags registers the settings of s as flags of cmd, so that a
// single scenario can be given on the command line.
func (s *Scenario) BindFlags(cmd *cobra.Command) {
	bounds := search.DefaultBounds()
	certify := true
	s.Bounds, s.Certify = &bounds, &certify

	f := cmd.Flags()
	f.StringSliceVar(&s.Outcomes, "outcome", nil, "factors to explain; every potential outcome when empty")
	f.StringSliceVar(&s.Negated, "negate", nil, "outcomes explained by their negative literal")
	f.BoolVar(&s.NegateAll, "negate-all", false, "explain every outcome by its negative literal")
	f.StringVar(&s.Unleveled, "unleveled", "lowest", "level of factors missing from the marker line: lowest or highest")
	f.IntVar(&s.Cap, "cap", 0, "maximum number of structures; -1 or 0 for all")
	f.BoolVar(&s.MinimalOnly, "minimal", false, "keep only the least complex relations of every outcome")
	f.BoolVar(s.Certify, "certify", true, "check every relation with the SAT oracle")
	f.IntVar(&bounds.MaxConjunctSize, "max-conjunct", bounds.MaxConjunctSize, "maximum literals per conjunct")
	f.IntVar(&bounds.MaxDisjuncts, "max-disjuncts", bounds.MaxDisjuncts, "maximum conjuncts per condition")
	f.IntVar(&bounds.MaxFactors, "max-factors", bounds.MaxFactors, "maximum distinct factors per condition")
}

// Validate checks s the way a configuration file is checked.
func (s *Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
