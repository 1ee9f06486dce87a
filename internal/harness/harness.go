package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pregel/internal/algo"
	"github.com/roach88/pregel/internal/config"
	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/pregel"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool
	// Errors holds one message per failed assertion.
	Errors []string

	Run       *pregel.Result
	Graph     graph.Graph
	Algorithm algo.Algorithm
	Config    *config.Run
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Option configures scenario execution.
type Option func(*runner)

type runner struct {
	logger   *slog.Logger
	registry *algo.Registry
}

// WithLogger sets the engine logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		r.logger = l
	}
}

// WithRegistry sets the algorithm registry. Default: algo.NewRegistry().
func WithRegistry(reg *algo.Registry) Option {
	return func(r *runner) {
		r.registry = reg
	}
}

// Run executes a scenario and evaluates its assertions.
//
// Setup problems (invalid config, unknown algorithm, engine construction)
// and failed or cancelled runs are returned as errors. Assertion failures
// are reported in Result.Errors.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	r := &runner{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: algo.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	cfg, err := config.FromMap(s.Config)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	g := s.BuildGraph()
	computation, algorithm, err := r.registry.New(cfg.Algorithm, g, cfg.AlgoParams())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	p, err := pregel.New(g, computation, cfg.EngineConfig(), pregel.WithLogger(r.logger.With("scenario", s.Name)))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	res, err := p.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := &Result{
		Pass:      true,
		Errors:    []string{},
		Run:       res,
		Graph:     g,
		Algorithm: algorithm,
		Config:    cfg,
	}
	for i, a := range s.Assertions {
		if err := checkAssertion(result, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}
