package messages

import (
	"sync"
	"sync/atomic"
)

// stripes is the number of mutexes guarding the per-node queues.
const stripes = 64

// AsyncQueues is the asynchronous messenger.
//
// Every node owns a queue. A send is visible to the target immediately, so a
// target processed later in the same superstep receives it in that
// superstep; otherwise it is delivered in the next one. Concurrent sends to
// the same target are all kept, in arrival order, and the receiving compute
// function decides how to combine them.
type AsyncQueues struct {
	locks   [stripes]sync.Mutex
	queues  [][]float64
	pending atomic.Int64
	spare   sync.Pool
}

var (
	_ Messenger = (*AsyncQueues)(nil)
	_ Recycler  = (*AsyncQueues)(nil)
)

// NewAsyncQueues creates one queue per node.
func NewAsyncQueues(nodeCount int64) *AsyncQueues {
	return &AsyncQueues{queues: make([][]float64, nodeCount)}
}

func (q *AsyncQueues) lock(node int64) *sync.Mutex {
	return &q.locks[node%stripes]
}

// InitSuperstep is a no-op: undrained messages carry over.
func (q *AsyncQueues) InitSuperstep(int) {}

// Send implements Messenger.
func (q *AsyncQueues) Send(_ int, target int64, payload float64) {
	mu := q.lock(target)
	mu.Lock()
	if q.queues[target] == nil {
		if buf, ok := q.spare.Get().(*[]float64); ok {
			q.queues[target] = (*buf)[:0]
		}
	}
	q.queues[target] = append(q.queues[target], payload)
	mu.Unlock()
	q.pending.Add(1)
}

// HasMessages implements Messenger.
func (q *AsyncQueues) HasMessages(node int64) bool {
	mu := q.lock(node)
	mu.Lock()
	defer mu.Unlock()
	return len(q.queues[node]) > 0
}

// Drain takes ownership of node's queue. Messages that arrive afterwards
// start a fresh queue.
func (q *AsyncQueues) Drain(node int64, it *Iterator) {
	mu := q.lock(node)
	mu.Lock()
	taken := q.queues[node]
	q.queues[node] = nil
	mu.Unlock()

	q.pending.Add(-int64(len(taken)))
	it.reset(taken)
}

// Recycle returns a drained queue to the pool once its iterator is done.
func (q *AsyncQueues) Recycle(it *Iterator) {
	if cap(it.payloads) == 0 {
		return
	}
	buf := it.payloads[:0]
	it.Clear()
	q.spare.Put(&buf)
}

// Pending returns the number of sent but undrained messages.
func (q *AsyncQueues) Pending() int64 {
	return q.pending.Load()
}

// Footprint implements Messenger.
func (q *AsyncQueues) Footprint() uint64 {
	var n uint64
	for i := range q.queues {
		mu := q.lock(int64(i))
		mu.Lock()
		n += uint64(cap(q.queues[i])) * 8
		mu.Unlock()
	}
	return n + uint64(cap(q.queues))*24
}

// Release implements Messenger.
func (q *AsyncQueues) Release() {
	q.queues = nil
}
