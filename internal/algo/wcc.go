package algo

import (
	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/pregel"
	"github.com/roach88/pregel/internal/values"
)

// ComponentSlot holds the component id of each node.
const ComponentSlot = "component"

// WCC labels weakly connected components with the smallest node id they
// contain. Relationships are followed in both directions.
type WCC struct{}

var (
	_ pregel.Computation     = WCC{}
	_ pregel.Initializer     = WCC{}
	_ pregel.MessageDirector = WCC{}
	_ pregel.Reducible       = WCC{}
	_ pregel.AsyncCapable    = WCC{}
)

func (WCC) Schema(pregel.Config) (*values.Schema, error) {
	return values.NewSchemaBuilder().Add(ComponentSlot, values.Long).Build()
}

func (WCC) Init(ctx pregel.InitContext) error {
	return ctx.SetLong(ComponentSlot, ctx.NodeID())
}

func (WCC) Compute(ctx pregel.ComputeContext, msgs *messages.Iterator) error {
	current, err := ctx.Long(ComponentSlot)
	if err != nil {
		return err
	}

	if ctx.IsInitialSuperstep() {
		if err := ctx.SendToNeighbors(float64(current)); err != nil {
			return err
		}
		return ctx.VoteToHalt()
	}

	smallest := current
	for m := range msgs.All() {
		smallest = min(smallest, int64(m))
	}
	if smallest < current {
		if err := ctx.SetLong(ComponentSlot, smallest); err != nil {
			return err
		}
		if err := ctx.SendToNeighbors(float64(smallest)); err != nil {
			return err
		}
	}
	return ctx.VoteToHalt()
}

func (WCC) MessageDirection() graph.Direction { return graph.Undirected }

func (WCC) Reducer() messages.Reducer { return messages.Min{} }

func (WCC) SupportsAsync() bool { return true }
