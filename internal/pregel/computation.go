package pregel

import (
	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/values"
)

// Computation is the vertex program run by the engine.
//
// Compute is called once per active node per superstep. It is called
// concurrently for nodes of different partitions and must only touch the
// node it was called for through ctx. msgs holds the messages sent to the
// node in the previous superstep; it is the same iterator ctx.Messages
// returns.
//
// Optional behaviour is declared by also implementing Initializer,
// MasterComputer, Reducible, MessageDirector, AsyncCapable,
// RelationshipWeighter or PartitionLocal.
type Computation interface {
	Schema(cfg Config) (*values.Schema, error)
	Compute(ctx ComputeContext, msgs *messages.Iterator) error
}

// Initializer sets initial node values before superstep 0.
type Initializer interface {
	Init(ctx InitContext) error
}

// MasterComputer runs single-threaded after every superstep barrier.
// Returning true stops the run and reports it as converged.
type MasterComputer interface {
	MasterCompute(ctx *MasterContext) (bool, error)
}

// Reducible computations have their messages folded per target.
// Reducers only apply to synchronous runs.
type Reducible interface {
	Reducer() messages.Reducer
}

// MessageDirector selects the relationships SendToNeighbors follows.
// Incoming and Undirected require a graph with an inverse index.
// The default is graph.Outgoing.
type MessageDirector interface {
	MessageDirection() graph.Direction
}

// AsyncCapable computations may be run with Config.Asynchronous set.
// Runs of computations that do not implement it, or return false, are
// rejected in asynchronous mode.
type AsyncCapable interface {
	SupportsAsync() bool
}

// RelationshipWeighter transforms a payload sent along a weighted
// relationship. It is applied by SendToNeighbors when Config.UseWeights is
// set and the graph has relationship weights.
type RelationshipWeighter interface {
	ApplyRelationshipWeight(payload, weight float64) float64
}

// PartitionLocal computations get one state value per partition task,
// created before the init phase and reachable through ComputeContext.Local.
// The state is only ever used by one goroutine at a time. If it implements
// io.Closer it is closed when the run ends.
type PartitionLocal interface {
	NewPartitionState(p Partition) any
}

func messageDirection(c Computation) graph.Direction {
	if md, ok := c.(MessageDirector); ok {
		return md.MessageDirection()
	}
	return graph.Outgoing
}

func reducerOf(c Computation) messages.Reducer {
	if r, ok := c.(Reducible); ok {
		return r.Reducer()
	}
	return nil
}

func supportsAsync(c Computation) bool {
	ac, ok := c.(AsyncCapable)
	return ok && ac.SupportsAsync()
}
