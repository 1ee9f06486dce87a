package algo

import (
	"math"

	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/pregel"
	"github.com/roach88/pregel/internal/values"
)

// DistanceSlot holds the hop distance from the source.
const DistanceSlot = "distance"

// Unreachable is the distance of nodes the source cannot reach.
const Unreachable = math.MaxInt64

// SSSP computes hop distances from a single source along outgoing
// relationships.
type SSSP struct {
	// Source is the dense id of the source node.
	Source int64
}

var (
	_ pregel.Computation  = SSSP{}
	_ pregel.Initializer  = SSSP{}
	_ pregel.Reducible    = SSSP{}
	_ pregel.AsyncCapable = SSSP{}
)

func (SSSP) Schema(pregel.Config) (*values.Schema, error) {
	return values.NewSchemaBuilder().Add(DistanceSlot, values.Long).Build()
}

func (s SSSP) Init(ctx pregel.InitContext) error {
	if ctx.NodeID() == s.Source {
		return ctx.SetLong(DistanceSlot, 0)
	}
	return ctx.SetLong(DistanceSlot, Unreachable)
}

func (s SSSP) Compute(ctx pregel.ComputeContext, msgs *messages.Iterator) error {
	if ctx.IsInitialSuperstep() {
		if ctx.NodeID() == s.Source {
			if err := ctx.SendToNeighbors(1); err != nil {
				return err
			}
		}
		return ctx.VoteToHalt()
	}

	current, err := ctx.Long(DistanceSlot)
	if err != nil {
		return err
	}
	best := current
	for m := range msgs.All() {
		best = min(best, int64(m))
	}
	if best < current {
		if err := ctx.SetLong(DistanceSlot, best); err != nil {
			return err
		}
		if err := ctx.SendToNeighbors(float64(best + 1)); err != nil {
			return err
		}
	}
	return ctx.VoteToHalt()
}

func (SSSP) Reducer() messages.Reducer { return messages.Min{} }

func (SSSP) SupportsAsync() bool { return true }
