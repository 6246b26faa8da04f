// Package config reads the YAML files that describe a batch of
// scenarios.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/batch"
	"github.com/mlca-go/mlca/pkg/mlca/input/csv"
	"github.com/mlca-go/mlca/pkg/mlca/search"
	"github.com/mlca-go/mlca/pkg/mlca/solver"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Scenario configures the solving of one table.
type Scenario struct {
	ID string `yaml:"id"`
	// Table is the path of a CSV table, relative to the configuration
	// file.
	Table       string         `yaml:"table" validate:"required"`
	Outcomes    []string       `yaml:"outcomes" validate:"dive,required"`
	Negated     []string       `yaml:"negated" validate:"dive,required"`
	NegateAll   bool           `yaml:"negateAll"`
	Unleveled   string         `yaml:"unleveled" validate:"omitempty,oneof=lowest highest"`
	Cap         int            `yaml:"cap" validate:"gte=-1"`
	MinimalOnly bool           `yaml:"minimalOnly"`
	Certify     *bool          `yaml:"certify"`
	Bounds      *search.Bounds `yaml:"bounds"`
}

type Config struct {
	Workers   int        `yaml:"workers" validate:"gte=0"`
	Scenarios []Scenario `yaml:"scenarios" validate:"required,min=1,dive"`
}

// Parse decodes and validates a configuration.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &c, nil
}

// Load reads the configuration at path and resolves the table paths
// against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range c.Scenarios {
		if !filepath.IsAbs(c.Scenarios[i].Table) {
			c.Scenarios[i].Table = filepath.Join(dir, c.Scenarios[i].Table)
		}
	}
	return c, nil
}

func identifiers(names []string) []mlca.Identifier {
	out := make([]mlca.Identifier, len(names))
	for i, n := range names {
		out[i] = mlca.Identifier(n)
	}
	return out
}

// TableOptions returns the options used to read the scenario's table.
func (s Scenario) TableOptions() ([]table.Option, error) {
	p, err := table.ParseUnleveledPolicy(s.Unleveled)
	if err != nil {
		return nil, err
	}
	return []table.Option{table.WithUnleveled(p)}, nil
}

// SolverOptions translates the scenario into solver options.
func (s Scenario) SolverOptions() []solver.Option {
	var options []solver.Option
	if len(s.Outcomes) > 0 {
		options = append(options, solver.WithOutcomes(identifiers(s.Outcomes)...))
	}
	switch {
	case s.NegateAll:
		options = append(options, solver.WithNegatedOutcomes())
	case len(s.Negated) > 0:
		options = append(options, solver.WithNegatedOutcomes(identifiers(s.Negated)...))
	}
	if s.Cap != 0 {
		options = append(options, solver.WithCap(s.Cap))
	}
	if s.MinimalOnly {
		options = append(options, solver.WithMinimalOnly())
	}
	if s.Certify != nil && !*s.Certify {
		options = append(options, solver.WithoutCertification())
	}
	if s.Bounds != nil {
		options = append(options, solver.WithBounds(*s.Bounds))
	}
	return options
}

// Batch returns the scenarios of c ready for a batch.Runner. Tables
// are read by the worker that solves them.
func (c *Config) Batch() ([]batch.Scenario, error) {
	out := make([]batch.Scenario, len(c.Scenarios))
	for i, s := range c.Scenarios {
		topts, err := s.TableOptions()
		if err != nil {
			return nil, fmt.Errorf("%w: scenario %d: %w", ErrInvalidConfig, i+1, err)
		}
		path := s.Table
		out[i] = batch.Scenario{
			ID:      batch.ID(s.ID),
			Load:    func() (*table.Table, error) { return csv.ReadFile(path, topts...) },
			Options: s.SolverOptions(),
		}
	}
	return out, nil
}
