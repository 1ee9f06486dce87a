package algo

import (
	"math"

	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/pregel"
	"github.com/roach88/pregel/internal/values"
)

const (
	// RankSlot holds the PageRank score of each node.
	RankSlot = "pagerank"
	// outWeightSlot holds the total outgoing weight a node divides its rank by.
	outWeightSlot = "out_weight"

	DefaultDampingFactor = 0.85
	DefaultTolerance     = 1e-7
)

// PageRank computes PageRank scores along outgoing relationships.
//
// After the first full update nodes send the change in their rank rather
// than the rank itself. A node halts once its change falls below Tolerance
// and wakes again when a neighbor's change reaches it. With
// Config.UseWeights, a node's rank is split across its relationships in
// proportion to their weights.
type PageRank struct {
	DampingFactor float64
	Tolerance     float64
}

var (
	_ pregel.Computation          = PageRank{}
	_ pregel.Initializer          = PageRank{}
	_ pregel.Reducible            = PageRank{}
	_ pregel.RelationshipWeighter = PageRank{}
)

func (PageRank) Schema(pregel.Config) (*values.Schema, error) {
	return values.NewSchemaBuilder().
		Add(RankSlot, values.Double).
		Add(outWeightSlot, values.Double, values.WithVisibility(values.Private)).
		Build()
}

func (PageRank) Init(ctx pregel.InitContext) error {
	if err := ctx.SetDouble(RankSlot, 1/float64(ctx.NodeCount())); err != nil {
		return err
	}

	total := float64(ctx.Degree(graph.Outgoing))
	if ctx.Config().UseWeights {
		total = 0
		ctx.ForEachNeighbor(graph.Outgoing, func(_ int64, weight float64) bool {
			total += weight
			return true
		})
	}
	return ctx.SetDouble(outWeightSlot, total)
}

func (pr PageRank) Compute(ctx pregel.ComputeContext, msgs *messages.Iterator) error {
	rank, err := ctx.Double(RankSlot)
	if err != nil {
		return err
	}

	// Superstep 0 sends the whole initial rank and superstep 1 rebuilds rank
	// from it. From then on only changes travel, so a halted node's share
	// stays in its neighbors' ranks.
	delta := rank
	if !ctx.IsInitialSuperstep() {
		var sum float64
		for m := range msgs.All() {
			sum += m
		}
		next := rank + pr.DampingFactor*sum
		if ctx.Superstep() == 1 {
			next = (1-pr.DampingFactor)/float64(ctx.NodeCount()) + pr.DampingFactor*sum
		}
		if err := ctx.SetDouble(RankSlot, next); err != nil {
			return err
		}
		delta = next - rank
		if math.Abs(delta) < pr.Tolerance {
			return ctx.VoteToHalt()
		}
	}

	outWeight, err := ctx.Double(outWeightSlot)
	if err != nil {
		return err
	}
	if outWeight > 0 {
		return ctx.SendToNeighbors(delta / outWeight)
	}
	return nil
}

// ApplyRelationshipWeight scales the per-unit-weight share by the weight of
// the relationship it travels along.
func (PageRank) ApplyRelationshipWeight(payload, weight float64) float64 {
	return payload * weight
}

func (PageRank) Reducer() messages.Reducer { return messages.Sum{} }
