package root

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/mlca-go/mlca/cmd/batch"
	"github.com/mlca-go/mlca/cmd/report"
	"github.com/mlca-go/mlca/cmd/solve"
)

func NewRootCmd() *cobra.Command {
	var verbosity int
	rootCmd := &cobra.Command{
		Use:   "mlca",
		Short: "mlca infers multi-level causal structures from coincidence data",
		Long: `mlca searches a crisp-set coincidence table for minimally sufficient and
necessary conditions of its outcomes, and combines them into acyclic causal
structures that respect the constitutive levels of the factors.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			stderr := cmd.ErrOrStderr()
			logger := funcr.New(func(prefix, args string) {
				if prefix != "" {
					fmt.Fprintf(stderr, "%s: %s\n", prefix, args)
					return
				}
				fmt.Fprintln(stderr, args)
			}, funcr.Options{Verbosity: verbosity})
			cmd.SetContext(logr.NewContext(cmd.Context(), logger))
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log verbosity; repeat for more detail")

	// add sub-commands
	rootCmd.AddCommand(solve.NewSolveCommand())
	rootCmd.AddCommand(report.NewReportCommand())
	rootCmd.AddCommand(batch.NewBatchCommand())

	return rootCmd
}
