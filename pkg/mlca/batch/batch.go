// Package batch solves many independent scenarios concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/solver"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

type ID string

type IDProvider interface {
	NextID() ID
}

var ErrDuplicateScenario = errors.New("duplicate scenario id")

// Scenario is one table to solve. When Table is nil, Load is called
// from the worker that runs the scenario.
type Scenario struct {
	ID      ID
	Table   *table.Table
	Load    func() (*table.Table, error)
	Options []solver.Option
}

// Result is the outcome of one scenario. Err is set when the scenario
// failed; the other scenarios are unaffected.
type Result struct {
	ID         ID
	Solution   *solver.Solution
	Structures []assemble.Structure
	Stats      assemble.Stats
	Err        error
}

type Runner struct {
	workers int
	ids     IDProvider
	logger  logr.Logger
}

type Option func(r *Runner) error

// WithWorkers bounds the number of scenarios solved at once.
func WithWorkers(n int) Option {
	return func(r *Runner) error {
		if n < 1 {
			return fmt.Errorf("invalid worker count %d", n)
		}
		r.workers = n
		return nil
	}
}

// WithIDProvider names the scenarios that have no id. Without it they
// are named after their position.
func WithIDProvider(p IDProvider) Option {
	return func(r *Runner) error {
		r.ids = p
		return nil
	}
}

func WithLogger(l logr.Logger) Option {
	return func(r *Runner) error {
		r.logger = l
		return nil
	}
}

var defaults = []Option{
	func(r *Runner) error {
		if r.workers == 0 {
			r.workers = runtime.GOMAXPROCS(0)
		}
		return nil
	},
}

func New(options ...Option) (*Runner, error) {
	r := Runner{logger: logr.Discard()}
	for _, option := range append(options, defaults...) {
		if err := option(&r); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

// Run solves every scenario and returns the results keyed by scenario
// id. It only fails when the scenarios cannot be named.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (map[ID]*Result, error) {
	results := make(map[ID]*Result, len(scenarios))
	ordered := make([]*Result, len(scenarios))
	for i, sc := range scenarios {
		id := sc.ID
		if id == "" {
			if r.ids != nil {
				id = r.ids.NextID()
			} else {
				id = ID(strconv.Itoa(i + 1))
			}
		}
		if _, ok := results[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScenario, id)
		}
		ordered[i] = &Result{ID: id}
		results[id] = ordered[i]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, sc := range scenarios {
		res := ordered[i]
		g.Go(func() error {
			if err := r.run(gctx, sc, res); err != nil {
				res.Err = err
				r.logger.Error(err, "scenario failed", "scenario", res.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) run(ctx context.Context, sc Scenario, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := sc.Table
	if t == nil {
		if sc.Load == nil {
			return fmt.Errorf("%w: scenario has no table", table.ErrMalformedTable)
		}
		var err error
		if t, err = sc.Load(); err != nil {
			return err
		}
	}

	options := append([]solver.Option{solver.WithLogger(r.logger.WithValues("scenario", res.ID))}, sc.Options...)
	s, err := solver.New(options...)
	if err != nil {
		return err
	}
	solution, err := s.Solve(ctx, t)
	if err != nil {
		return err
	}
	res.Solution = solution
	res.Stats = solution.Each(func(st assemble.Structure) bool {
		res.Structures = append(res.Structures, st)
		return ctx.Err() == nil
	})
	return ctx.Err()
}
