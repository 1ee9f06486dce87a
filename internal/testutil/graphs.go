package testutil

import (
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/pregel/internal/graph"
)

// RandomGraph builds a graph with nodes nodes and relationships random
// relationships from a seeded source. The same seed always yields the same
// graph. Original ids are a shuffled range starting at 1000, so dense and
// original ids disagree. The graph carries an inverse index and weights in
// [0.5, 2).
func RandomGraph(seed uint64, nodes int64, relationships int) *graph.CSR {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := graph.NewBuilder().WithInverseIndex()

	originals := make([]int64, nodes)
	for i, p := range rng.Perm(int(nodes)) {
		originals[i] = 1000 + int64(p)
		b.AddNode(originals[i])
	}
	if nodes == 0 {
		return b.Build()
	}
	for range relationships {
		source := originals[rng.Int64N(nodes)]
		target := originals[rng.Int64N(nodes)]
		b.AddWeightedRelationship(source, target, 0.5+rng.Float64()*1.5)
	}
	return b.Build()
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
