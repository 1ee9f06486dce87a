package algo

import (
	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/pregel"
	"github.com/roach88/pregel/internal/values"
)

const (
	// LabelSlot holds the community label of each node.
	LabelSlot = "label"
	// changedSlot is 1 if the label changed in the last superstep.
	changedSlot = "changed"
)

// LabelPropagation assigns every node the most frequent label among its
// neighbors, ties going to the smallest label, until no label changes.
//
// Every node sends its label to all neighbors each superstep, so each tally
// sees the complete neighborhood. Master compute ends the run once a
// superstep changes nothing.
type LabelPropagation struct {
	// SeedProperty names a node property holding initial labels. Nodes
	// without it start with their own id.
	SeedProperty string
}

var (
	_ pregel.Computation     = LabelPropagation{}
	_ pregel.Initializer     = LabelPropagation{}
	_ pregel.MessageDirector = LabelPropagation{}
	_ pregel.MasterComputer  = LabelPropagation{}
	_ pregel.PartitionLocal  = LabelPropagation{}
)

// labelTally is per-partition scratch space, reused for every node.
type labelTally struct {
	counts map[int64]int
}

func (LabelPropagation) Schema(pregel.Config) (*values.Schema, error) {
	return values.NewSchemaBuilder().
		Add(LabelSlot, values.Long).
		Add(changedSlot, values.Long, values.WithVisibility(values.Private)).
		Build()
}

func (lp LabelPropagation) Init(ctx pregel.InitContext) error {
	label := ctx.NodeID()
	if lp.SeedProperty != "" {
		if seed, ok := ctx.NodeProperty(lp.SeedProperty); ok {
			label = int64(seed)
		}
	}
	return ctx.SetLong(LabelSlot, label)
}

func (LabelPropagation) NewPartitionState(pregel.Partition) any {
	return &labelTally{counts: make(map[int64]int)}
}

func (LabelPropagation) Compute(ctx pregel.ComputeContext, msgs *messages.Iterator) error {
	label, err := ctx.Long(LabelSlot)
	if err != nil {
		return err
	}

	if !ctx.IsInitialSuperstep() && !msgs.IsEmpty() {
		tally := ctx.Local().(*labelTally)
		clear(tally.counts)
		for m := range msgs.All() {
			tally.counts[int64(m)]++
		}

		best, bestCount := label, 0
		for l, n := range tally.counts {
			if n > bestCount || (n == bestCount && l < best) {
				best, bestCount = l, n
			}
		}

		changed := int64(0)
		if best != label {
			changed = 1
			label = best
			if err := ctx.SetLong(LabelSlot, label); err != nil {
				return err
			}
		}
		if err := ctx.SetLong(changedSlot, changed); err != nil {
			return err
		}
	}

	return ctx.SendToNeighbors(float64(label))
}

// MasterCompute stops the run after the first superstep in which no label
// changed.
func (LabelPropagation) MasterCompute(ctx *pregel.MasterContext) (bool, error) {
	if ctx.IsInitialSuperstep() {
		return false, nil
	}
	stable := true
	var err error
	ctx.ForEachNode(func(node int64) bool {
		var changed int64
		changed, err = ctx.Long(node, changedSlot)
		if err != nil || changed != 0 {
			stable = false
			return false
		}
		return true
	})
	if err != nil {
		return false, err
	}
	if !stable {
		ctx.ForEachNode(func(node int64) bool {
			err = ctx.SetLong(node, changedSlot, 0)
			return err == nil
		})
	}
	return stable, err
}

func (LabelPropagation) MessageDirection() graph.Direction { return graph.Undirected }
