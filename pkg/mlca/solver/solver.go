package solver

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/mlca-go/mlca/internal/sat"
	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/search"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// Unbounded disables the structure cap.
const Unbounded = assemble.Unbounded

var ErrInvalidCap = assemble.ErrInvalidCap

// Solver infers the causal structures compatible with a table.
type Solver struct {
	bounds      search.Bounds
	cap         int
	minimalOnly bool
	mixedLevels bool
	outcomes    []mlca.Identifier
	negated     map[mlca.Identifier]struct{}
	negateAll   bool
	workers     int
	certify     bool
	tracer      search.Tracer
	logger      logr.Logger
}

type Option func(s *Solver) error

func WithBounds(b search.Bounds) Option {
	return func(s *Solver) error {
		if err := b.Validate(); err != nil {
			return err
		}
		s.bounds = b
		return nil
	}
}

// WithCap limits the number of structures. Use Unbounded for all.
func WithCap(k int) Option {
	return func(s *Solver) error {
		if k == 0 || k < Unbounded {
			return fmt.Errorf("%w: %d", ErrInvalidCap, k)
		}
		s.cap = k
		return nil
	}
}

// WithMinimalOnly keeps, for every outcome, only the relations with the
// fewest literal occurrences.
func WithMinimalOnly() Option {
	return func(s *Solver) error {
		s.minimalOnly = true
		return nil
	}
}

// WithMixedLevels keeps relations whose condition spans several levels
// or skips a level. By default a structure only holds causal relations
// within a level and constitution relations from the level below.
func WithMixedLevels() Option {
	return func(s *Solver) error {
		s.mixedLevels = true
		return nil
	}
}

// WithOutcomes names the factors to explain. Every listed factor must be
// explained by each structure. Without it, the potential outcomes of the
// table are used and may be left unexplained.
func WithOutcomes(ids ...mlca.Identifier) Option {
	return func(s *Solver) error {
		s.outcomes = append(s.outcomes, ids...)
		return nil
	}
}

// WithNegatedOutcomes explains the listed factors by their negative
// literal. Without arguments every outcome is negated.
func WithNegatedOutcomes(ids ...mlca.Identifier) Option {
	return func(s *Solver) error {
		if len(ids) == 0 {
			s.negateAll = true
		}
		for _, id := range ids {
			s.negated[id] = struct{}{}
		}
		return nil
	}
}

// WithWorkers bounds the number of outcomes searched concurrently.
func WithWorkers(n int) Option {
	return func(s *Solver) error {
		if n < 1 {
			return fmt.Errorf("invalid worker count %d", n)
		}
		s.workers = n
		return nil
	}
}

// WithoutCertification skips the SAT check of every found relation.
func WithoutCertification() Option {
	return func(s *Solver) error {
		s.certify = false
		return nil
	}
}

// WithTracer reports every tested candidate. Outcomes are searched one
// at a time while a tracer is set.
func WithTracer(t search.Tracer) Option {
	return func(s *Solver) error {
		s.tracer = t
		return nil
	}
}

func WithLogger(l logr.Logger) Option {
	return func(s *Solver) error {
		s.logger = l
		return nil
	}
}

var defaults = []Option{
	func(s *Solver) error {
		if s.workers == 0 {
			s.workers = runtime.GOMAXPROCS(0)
		}
		return nil
	},
}

func New(options ...Option) (*Solver, error) {
	s := Solver{
		bounds:  search.DefaultBounds(),
		cap:     Unbounded,
		negated: map[mlca.Identifier]struct{}{},
		certify: true,
	}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func (s *Solver) log(ctx context.Context) logr.Logger {
	if s.logger.GetSink() != nil {
		return s.logger
	}
	return logr.FromContextOrDiscard(ctx)
}

func (s *Solver) outcomeLiteral(id mlca.Identifier) mlca.Literal {
	if _, ok := s.negated[id]; ok || s.negateAll {
		return mlca.Negate(id)
	}
	return mlca.Affirm(id)
}

// Solve searches every outcome of t and prepares the lazy sequence of
// structures. Unexplainable outcomes are reported on the solution, not
// as errors.
func (s *Solver) Solve(ctx context.Context, t *table.Table) (*Solution, error) {
	log := s.log(ctx)

	ids, optional := s.outcomes, false
	if len(ids) == 0 {
		ids, optional = t.PotentialOutcomes(), true
	}
	for _, id := range ids {
		if _, ok := t.Factor(id); !ok {
			return nil, fmt.Errorf("%w: unknown outcome factor %q", mlca.ErrInvalidCondition, id)
		}
	}

	options := []search.Option{}
	workers := s.workers
	if s.tracer != nil {
		options = append(options, search.WithTracer(s.tracer))
		workers = 1
	}
	if s.certify {
		options = append(options, search.WithVerifier(sat.New(t)))
	}
	searcher, err := search.New(t, s.bounds, options...)
	if err != nil {
		return nil, err
	}

	results := make([]*search.Result, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			r, err := searcher.Search(gctx, s.outcomeLiteral(id))
			if err != nil {
				return fmt.Errorf("searching %s: %w", id, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if s.minimalOnly {
			r.Relations = minimal(r.Relations)
		}
		log.V(1).Info("searched outcome", "outcome", r.Outcome.String(), "tested", r.Tested, "relations", len(r.Relations))
	}

	return s.solution(t.Schema, results, optional, t.CoextensiveClusters(), log)
}

// FromCandidates assembles structures from relations computed
// elsewhere, such as an imported report. Every explained factor is a
// required outcome.
func FromCandidates(schema *table.Schema, relations []mlca.Relation, options ...Option) (*Solution, error) {
	s, err := New(options...)
	if err != nil {
		return nil, err
	}
	log := s.log(context.Background())

	byFactor := map[mlca.Identifier]*search.Result{}
	for _, r := range relations {
		if _, ok := schema.Factor(r.Outcome.Factor); !ok {
			return nil, fmt.Errorf("%w: unknown outcome factor %q", mlca.ErrInvalidCondition, r.Outcome.Factor)
		}
		res, ok := byFactor[r.Outcome.Factor]
		if !ok {
			res = &search.Result{Outcome: r.Outcome}
			byFactor[r.Outcome.Factor] = res
		}
		res.Relations = append(res.Relations, r)
	}
	var results []*search.Result
	for _, id := range schema.Identifiers() {
		if r, ok := byFactor[id]; ok {
			if s.minimalOnly {
				r.Relations = minimal(r.Relations)
			}
			results = append(results, r)
		}
	}
	return s.solution(schema, results, false, nil, log)
}

func (s *Solver) solution(schema *table.Schema, results []*search.Result, optional bool, clusters [][]mlca.Identifier, log logr.Logger) (*Solution, error) {
	outcomes := make([]assemble.Outcome, len(results))
	for i, r := range results {
		outcomes[i] = assemble.Outcome{
			Factor:    r.Outcome.Factor,
			Relations: r.Relations,
			Optional:  optional,
		}
	}
	options := []assemble.Option{assemble.WithCap(s.cap), assemble.WithLogger(log)}
	if !s.mixedLevels {
		options = append(options, assemble.WithLevelKinds())
	}
	a, err := assemble.New(schema, outcomes, options...)
	if err != nil {
		return nil, err
	}
	return &Solution{
		schema:    schema,
		results:   results,
		clusters:  clusters,
		assembler: a,
		logger:    log,
	}, nil
}

// minimal keeps the relations of lowest complexity, in order.
func minimal(relations []mlca.Relation) []mlca.Relation {
	best := -1
	for _, r := range relations {
		if c := r.Condition.Complexity(); best < 0 || c < best {
			best = c
		}
	}
	var out []mlca.Relation
	for _, r := range relations {
		if r.Condition.Complexity() == best {
			out = append(out, r)
		}
	}
	return out
}
