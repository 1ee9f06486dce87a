// Package pregel implements a vertex-centric bulk synchronous parallel
// engine.
//
// A run is a sequence of supersteps. In each superstep every active node
// executes the computation's Compute function once, reading the messages
// sent to it in the previous superstep, updating its own values and
// sending messages to other nodes. A barrier separates supersteps.
//
// ARCHITECTURE:
//
//   - values.Store holds node state, one column per schema slot.
//   - messages.Messenger holds the in-flight messages (double-buffered in
//     synchronous mode).
//   - The node id space is split into contiguous Partitions; one task per
//     partition runs per superstep on an errgroup limited to
//     Config.Concurrency goroutines.
//   - The scheduler (Pregel.Run) moves through Initializing, Computing,
//     BarrierWaiting and Deciding until it reaches Halted, Failed or
//     Cancelled.
//
// HALTING:
//
// A node that calls VoteToHalt is skipped in later supersteps until a
// message arrives for it. The run converges when no node stayed active and
// no message was sent in the last superstep. It stops without converging
// when Config.MaxSupersteps supersteps have run.
//
// CONCURRENCY:
//
// Nodes are owned by exactly one partition, so value writes need no locks.
// Sends cross partitions; each Messenger implementation documents how it
// makes them safe. Cancellation is cooperative: the termination flag and
// the context are polled before each partition task and between
// supersteps, never in the middle of a partition.
package pregel
