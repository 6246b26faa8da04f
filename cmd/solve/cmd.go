package solve

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/mlca-go/mlca/internal/config"
	"github.com/mlca-go/mlca/internal/render"
	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/input/csv"
	"github.com/mlca-go/mlca/pkg/mlca/search"
	"github.com/mlca-go/mlca/pkg/mlca/solver"
)

func NewSolveCommand() *cobra.Command {
	var (
		scenario config.Scenario
		dotDir   string
		workers  int
		trace    bool
	)
	cmd := &cobra.Command{
		Use:   "solve <path>",
		Short: "Infers the causal structures of a coincidence table",
		Long: `Infers the causal structures of a coincidence table given as CSV. For instance:
A,B,C,D
,,,<<
1,1,1,1
0,1,0,0
1,0,0,0
0,0,0,0
The first line names the factors. An optional marker line starts a new
order group with "<" and a new constitutive level with "<<" at its column.
Cells may be separated by , ; : | _ or a tab.
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			scenario.Table = args[0]
			return scenario.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			topts, err := scenario.TableOptions()
			if err != nil {
				return err
			}
			t, err := csv.ReadFile(scenario.Table, topts...)
			if err != nil {
				return err
			}

			options := append(scenario.SolverOptions(), solver.WithLogger(logr.FromContextOrDiscard(cmd.Context())))
			if workers > 0 {
				options = append(options, solver.WithWorkers(workers))
			}
			if trace {
				options = append(options, solver.WithTracer(search.LoggingTracer{Writer: cmd.ErrOrStderr()}))
			}
			s, err := solver.New(options...)
			if err != nil {
				return err
			}
			solution, err := s.Solve(cmd.Context(), t)
			if err != nil {
				return fmt.Errorf("error solving %s: %w", scenario.Table, err)
			}
			return Print(cmd, solution, dotDir)
		},
	}
	scenario.BindFlags(cmd)
	cmd.Flags().StringVar(&dotDir, "dot", "", "directory to write one Graphviz file per structure to")
	cmd.Flags().IntVar(&workers, "workers", 0, "outcomes searched at once; the number of CPUs when 0")
	cmd.Flags().BoolVar(&trace, "trace", false, "print every tested candidate to stderr")
	return cmd
}

// Print writes the candidates and structures of a solution to the
// command output, and the structure graphs to dotDir when it is set.
func Print(cmd *cobra.Command, solution *solver.Solution, dotDir string) error {
	out := cmd.OutOrStdout()
	render.Candidates(out, solution)
	var each func(int, assemble.Structure) error
	if dotDir != "" {
		each = func(n int, st assemble.Structure) error {
			return render.DOTFile(dotDir, n, solution.Graph(st))
		}
	}
	stats, err := render.Structures(out, solution, each)
	if err != nil {
		return err
	}
	if stats.Accepted == 0 {
		fmt.Fprintln(out, "no structure found")
	}
	return nil
}
