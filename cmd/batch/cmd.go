package batch

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/mlca-go/mlca/internal/config"
	"github.com/mlca-go/mlca/internal/render"
	runner "github.com/mlca-go/mlca/pkg/mlca/batch"
	"github.com/mlca-go/mlca/pkg/mlca/batch/idprovider"
)

func NewBatchCommand() *cobra.Command {
	var (
		workers int
		ids     string
	)
	cmd := &cobra.Command{
		Use:   "batch <config>",
		Short: "Solves every scenario of a YAML configuration",
		Long: `Solves every scenario of a YAML configuration concurrently. For instance:
workers: 4
scenarios:
  - id: water
    table: water.csv
    outcomes: [E]
    bounds: {maxConjunctSize: 2, maxDisjuncts: 3, maxFactors: 5}
  - table: other.csv
    negateAll: true
    cap: 10
Table paths are relative to the configuration file. A failing scenario is
reported without stopping the others.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(args[0])
			if err != nil {
				return err
			}
			scenarios, err := c.Batch()
			if err != nil {
				return err
			}

			options := []runner.Option{runner.WithLogger(logr.FromContextOrDiscard(cmd.Context()))}
			if workers == 0 {
				workers = c.Workers
			}
			if workers > 0 {
				options = append(options, runner.WithWorkers(workers))
			}
			switch ids {
			case "count":
				options = append(options, runner.WithIDProvider(idprovider.NewCounter()))
			case "uuid":
				options = append(options, runner.WithIDProvider(idprovider.NewUUID()))
			default:
				return fmt.Errorf("unknown id provider %q", ids)
			}
			r, err := runner.New(options...)
			if err != nil {
				return err
			}
			results, err := r.Run(cmd.Context(), scenarios)
			if err != nil {
				return err
			}
			render.Batch(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "scenarios solved at once; taken from the configuration when 0")
	cmd.Flags().StringVar(&ids, "ids", "count", "names of scenarios without an id: count or uuid")
	return cmd
}
