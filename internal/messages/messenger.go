// Package messages implements the message buffers of the superstep engine.
//
// Three Messenger implementations exist:
//   - SyncQueues: strict BSP. Each partition appends to its own outbox shard
//     without locking; InitSuperstep merges the shards into a compact inbox.
//     Messages sent in superstep k are visible only in superstep k+1.
//   - AsyncQueues: one queue per node guarded by striped mutexes. A message
//     becomes visible as soon as it is sent, so a node processed later in
//     the same superstep may observe it.
//   - Reducing: keeps a single reduced value per target (Sum, Min, Max,
//     Count), updated with compare-and-swap. Synchronous only.
//
// All messages carry a float64 payload. Compound messages must be encoded
// into that payload by the computation.
package messages

import (
	"fmt"
	"sort"
	"sync"
)

// Messenger is the message substrate used by the engine for one run.
//
// Send may be called concurrently from every partition task; shard is the
// index of the calling partition and is always in [0, shards). Drain and
// HasMessages are only called for nodes owned by the calling partition.
// InitSuperstep is called by the scheduler between supersteps, after all
// partition tasks have joined.
type Messenger interface {
	// InitSuperstep prepares the buffers for superstep k.
	InitSuperstep(superstep int)
	// Send queues payload for target.
	Send(shard int, target int64, payload float64)
	// HasMessages reports whether node has undrained messages.
	HasMessages(node int64) bool
	// Drain binds it to node's messages and empties node's inbox.
	Drain(node int64, it *Iterator)
	// Footprint estimates the bytes currently held by the buffers.
	Footprint() uint64
	// Release frees all buffers. The Messenger must not be used afterwards.
	Release()
}

// Recycler is implemented by messengers that can reuse the storage of a
// drained queue once the compute invocation that read it has returned.
type Recycler interface {
	Recycle(it *Iterator)
}

// Kind names a Messenger implementation.
type Kind string

const (
	KindSync     Kind = "sync"
	KindAsync    Kind = "async"
	KindReducing Kind = "reducing"
)

// Factory creates a Messenger for nodeCount nodes and shards partitions.
// reducer is nil unless the kind requires one.
type Factory func(nodeCount int64, shards int, reducer Reducer) (Messenger, error)

// Registry maps messenger kinds to factories. It is built once at engine
// setup and passed explicitly to the scheduler.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry returns a registry with the three built-in kinds registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[Kind]Factory)}
	r.Register(KindSync, func(n int64, shards int, _ Reducer) (Messenger, error) {
		return NewSyncQueues(n, shards), nil
	})
	r.Register(KindAsync, func(n int64, _ int, _ Reducer) (Messenger, error) {
		return NewAsyncQueues(n), nil
	})
	r.Register(KindReducing, func(n int64, _ int, reducer Reducer) (Messenger, error) {
		if reducer == nil {
			return nil, fmt.Errorf("messenger %q requires a reducer", KindReducing)
		}
		return NewReducing(n, reducer), nil
	})
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// New creates a Messenger of the given kind.
func (r *Registry) New(kind Kind, nodeCount int64, shards int, reducer Reducer) (Messenger, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown messenger kind %q", kind)
	}
	return f(nodeCount, shards, reducer)
}

// SelectKind picks the messenger kind for a run. Reducers only apply in
// synchronous mode; asynchronous runs deliver every message.
func SelectKind(asynchronous bool, reducer Reducer) Kind {
	switch {
	case asynchronous:
		return KindAsync
	case reducer != nil:
		return KindReducing
	default:
		return KindSync
	}
}
