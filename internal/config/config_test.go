package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlca-go/mlca/internal/config"
	"github.com/mlca-go/mlca/pkg/mlca/batch"
	"github.com/mlca-go/mlca/pkg/mlca/search"
)

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		Name   string
		YAML   string
		Error  error
		Assert func(t *testing.T, c *config.Config)
	}{
		{
			Name: "complete",
			YAML: `
workers: 2
scenarios:
  - id: first
    table: first.csv
    outcomes: [C, D]
    negated: [D]
    unleveled: highest
    cap: 3
    minimalOnly: true
    certify: false
    bounds:
      maxConjunctSize: 2
      maxDisjuncts: 2
      maxFactors: 4
`,
			Assert: func(t *testing.T, c *config.Config) {
				assert.Equal(t, 2, c.Workers)
				require.Len(t, c.Scenarios, 1)
				s := c.Scenarios[0]
				assert.Equal(t, "first", s.ID)
				assert.Equal(t, []string{"C", "D"}, s.Outcomes)
				assert.Equal(t, &search.Bounds{MaxConjunctSize: 2, MaxDisjuncts: 2, MaxFactors: 4}, s.Bounds)
				require.NotNil(t, s.Certify)
				assert.False(t, *s.Certify)
				assert.Len(t, s.SolverOptions(), 6)
			},
		},
		{
			Name:  "no scenarios",
			YAML:  "workers: 1\n",
			Error: config.ErrInvalidConfig,
		},
		{
			Name:  "missing table",
			YAML:  "scenarios:\n  - id: x\n",
			Error: config.ErrInvalidConfig,
		},
		{
			Name:  "unknown unleveled policy",
			YAML:  "scenarios:\n  - table: a.csv\n    unleveled: middle\n",
			Error: config.ErrInvalidConfig,
		},
		{
			Name:  "zero bounds",
			YAML:  "scenarios:\n  - table: a.csv\n    bounds: {maxConjunctSize: 0, maxDisjuncts: 1, maxFactors: 1}\n",
			Error: config.ErrInvalidConfig,
		},
		{
			Name:  "malformed yaml",
			YAML:  "scenarios: [",
			Error: config.ErrInvalidConfig,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			c, err := config.Parse([]byte(tt.YAML))
			if tt.Error != nil {
				assert.ErrorIs(t, err, tt.Error)
				return
			}
			require.NoError(t, err)
			tt.Assert(t, c)
		})
	}
}

func TestLoadAndRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conjunction.csv"), []byte("A,B,C\n0,0,0\n1,1,1\n1,0,0\n0,1,0\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batch.yaml"), []byte(`
scenarios:
  - id: conjunction
    table: conjunction.csv
  - id: missing
    table: missing.csv
`), 0o600))

	c, err := config.Load(filepath.Join(dir, "batch.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conjunction.csv"), c.Scenarios[0].Table)

	scenarios, err := c.Batch()
	require.NoError(t, err)
	r, err := batch.New()
	require.NoError(t, err)
	results, err := r.Run(context.Background(), scenarios)
	require.NoError(t, err)
	require.NoError(t, results["conjunction"].Err)
	require.Len(t, results["conjunction"].Structures, 1)
	assert.Equal(t, "(A*B <-> C)", results["conjunction"].Structures[0].String())
	assert.ErrorIs(t, results["missing"].Err, os.ErrNotExist)
}
