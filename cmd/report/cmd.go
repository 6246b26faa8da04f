package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/mlca-go/mlca/cmd/solve"
	reportinput "github.com/mlca-go/mlca/pkg/mlca/input/report"
	"github.com/mlca-go/mlca/pkg/mlca/solver"
)

func NewReportCommand() *cobra.Command {
	var (
		dotDir  string
		limit   int
		minimal bool
	)
	cmd := &cobra.Command{
		Use:   "report <path>",
		Short: "Assembles structures from the solutions of a cna or QCA report",
		Long: `Assembles structures from the atomic solution formulas printed by the R
packages cna or QCA. The causal ordering of a cna report, or an
'ordering = "A, B < C"' line added to a QCA report, assigns the factors to
levels. Lowercase factors of a cna report are read as negations.
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logr.FromContextOrDiscard(cmd.Context())
			rep, err := reportinput.ParseFile(args[0])
			if err != nil {
				return err
			}
			log.V(1).Info("read report", "format", rep.Format.String(), "relations", len(rep.Relations), "discarded", rep.Discarded)

			options := []solver.Option{solver.WithLogger(log)}
			if limit != 0 {
				options = append(options, solver.WithCap(limit))
			}
			if minimal {
				options = append(options, solver.WithMinimalOnly())
			}
			solution, err := solver.FromCandidates(rep.Schema, rep.Relations, options...)
			if err != nil {
				return err
			}
			return solve.Print(cmd, solution, dotDir)
		},
	}
	cmd.Flags().StringVar(&dotDir, "dot", "", "directory to write one Graphviz file per structure to")
	cmd.Flags().IntVar(&limit, "cap", 0, "maximum number of structures; -1 or 0 for all")
	cmd.Flags().BoolVar(&minimal, "minimal", false, "keep only the least complex relations of every outcome")
	return cmd
}
