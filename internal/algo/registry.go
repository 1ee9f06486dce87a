// Package algo holds example computations for the pregel engine and the
// registry the CLI and test harness select them from.
package algo

import (
	"fmt"
	"sort"

	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/pregel"
)

// Params are the algorithm-specific settings of a run.
type Params struct {
	// SourceNode is the original id of the SSSP source.
	SourceNode *int64
	// DampingFactor and Tolerance configure PageRank. Zero means default.
	DampingFactor float64
	Tolerance     float64
	// SeedProperty names the node property seeding label propagation.
	SeedProperty string
}

// Factory builds a computation for a graph.
type Factory func(g graph.Graph, p Params) (pregel.Computation, error)

// Algorithm describes one registered computation.
type Algorithm struct {
	Name        string
	Description string
	// ResultSlot is the slot reported as the algorithm's output.
	ResultSlot string
	New        Factory
}

// Registry maps algorithm names to their descriptions.
type Registry struct {
	algorithms map[string]Algorithm
}

// NewRegistry returns a registry with wcc, sssp, labelprop and pagerank.
func NewRegistry() *Registry {
	r := &Registry{algorithms: make(map[string]Algorithm)}
	r.Register(Algorithm{
		Name:        "wcc",
		Description: "weakly connected components (smallest node id per component)",
		ResultSlot:  ComponentSlot,
		New: func(graph.Graph, Params) (pregel.Computation, error) {
			return WCC{}, nil
		},
	})
	r.Register(Algorithm{
		Name:        "sssp",
		Description: "single-source shortest paths by hop count",
		ResultSlot:  DistanceSlot,
		New: func(g graph.Graph, p Params) (pregel.Computation, error) {
			if p.SourceNode == nil {
				return nil, fmt.Errorf("sssp requires a source node")
			}
			source, ok := g.ToMappedID(*p.SourceNode)
			if !ok {
				return nil, fmt.Errorf("sssp source node %d is not in the graph", *p.SourceNode)
			}
			return SSSP{Source: source}, nil
		},
	})
	r.Register(Algorithm{
		Name:        "labelprop",
		Description: "label propagation communities",
		ResultSlot:  LabelSlot,
		New: func(_ graph.Graph, p Params) (pregel.Computation, error) {
			return LabelPropagation{SeedProperty: p.SeedProperty}, nil
		},
	})
	r.Register(Algorithm{
		Name:        "pagerank",
		Description: "PageRank scores",
		ResultSlot:  RankSlot,
		New: func(_ graph.Graph, p Params) (pregel.Computation, error) {
			pr := PageRank{DampingFactor: p.DampingFactor, Tolerance: p.Tolerance}
			if pr.DampingFactor == 0 {
				pr.DampingFactor = DefaultDampingFactor
			}
			if pr.Tolerance == 0 {
				pr.Tolerance = DefaultTolerance
			}
			if pr.DampingFactor < 0 || pr.DampingFactor >= 1 {
				return nil, fmt.Errorf("pagerank damping factor must be in [0, 1), got %g", pr.DampingFactor)
			}
			return pr, nil
		},
	})
	return r
}

// Register adds or replaces an algorithm.
func (r *Registry) Register(a Algorithm) {
	r.algorithms[a.Name] = a
}

// Lookup returns the algorithm registered under name.
func (r *Registry) Lookup(name string) (Algorithm, error) {
	a, ok := r.algorithms[name]
	if !ok {
		return Algorithm{}, fmt.Errorf("unknown algorithm %q (known: %v)", name, r.Names())
	}
	return a, nil
}

// New builds the computation registered under name.
func (r *Registry) New(name string, g graph.Graph, p Params) (pregel.Computation, Algorithm, error) {
	a, err := r.Lookup(name)
	if err != nil {
		return nil, Algorithm{}, err
	}
	c, err := a.New(g, p)
	if err != nil {
		return nil, Algorithm{}, err
	}
	return c, a, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.algorithms))
	for name := range r.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
