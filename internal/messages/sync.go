package messages

import "unsafe"

type envelope struct {
	target  int64
	payload float64
}

// shrinkFactor controls when an idle buffer is reallocated: a buffer whose
// capacity exceeds shrinkFactor times what the last superstep needed is
// dropped instead of recycled.
const shrinkFactor = 4

// minRetained is the capacity below which buffers are always recycled.
const minRetained = 1024

// SyncQueues is the strict BSP messenger.
//
// Each partition appends to its own outbox shard, so Send takes no lock.
// InitSuperstep merges the shards into a compact inbox laid out by target
// (offsets/inbox, like a CSR), then recycles the shards as the next outbox.
// At most two supersteps of messages are held at once: the inbox being
// drained and the outbox being filled.
type SyncQueues struct {
	nodeCount int64
	shards    [][]envelope

	offsets []int64 // len nodeCount+1
	heads   []int64 // next undrained position per node
	inbox   []float64
}

var _ Messenger = (*SyncQueues)(nil)

// NewSyncQueues creates buffers for nodeCount nodes and shards senders.
func NewSyncQueues(nodeCount int64, shards int) *SyncQueues {
	if shards < 1 {
		shards = 1
	}
	return &SyncQueues{
		nodeCount: nodeCount,
		shards:    make([][]envelope, shards),
		offsets:   make([]int64, nodeCount+1),
		heads:     make([]int64, nodeCount),
	}
}

// InitSuperstep swaps the outbox into the read role. Superstep 0 always
// starts with an empty inbox.
func (q *SyncQueues) InitSuperstep(superstep int) {
	clear(q.offsets)
	total := 0
	for _, shard := range q.shards {
		total += len(shard)
		for _, e := range shard {
			q.offsets[e.target+1]++
		}
	}
	for i := int64(1); i <= q.nodeCount; i++ {
		q.offsets[i] += q.offsets[i-1]
	}
	copy(q.heads, q.offsets[:q.nodeCount])

	q.inbox = resize(q.inbox, total)
	// heads doubles as the fill cursor, then is reset for draining.
	for _, shard := range q.shards {
		for _, e := range shard {
			q.inbox[q.heads[e.target]] = e.payload
			q.heads[e.target]++
		}
	}
	copy(q.heads, q.offsets[:q.nodeCount])

	for i, shard := range q.shards {
		if cap(shard) > minRetained && cap(shard) > shrinkFactor*len(shard) {
			q.shards[i] = nil
			continue
		}
		q.shards[i] = shard[:0]
	}

	if superstep == 0 {
		q.discardInbox()
	}
}

func (q *SyncQueues) discardInbox() {
	clear(q.offsets)
	clear(q.heads)
	q.inbox = q.inbox[:0]
}

// resize returns a slice of length n, reusing buf when its capacity fits
// and is not grossly oversized.
func resize(buf []float64, n int) []float64 {
	if cap(buf) >= n && (cap(buf) <= minRetained || cap(buf) <= shrinkFactor*n) {
		return buf[:n]
	}
	return make([]float64, n)
}

// Send appends to the outbox shard of the calling partition.
func (q *SyncQueues) Send(shard int, target int64, payload float64) {
	q.shards[shard] = append(q.shards[shard], envelope{target: target, payload: payload})
}

// HasMessages implements Messenger.
func (q *SyncQueues) HasMessages(node int64) bool {
	return q.heads[node] < q.offsets[node+1]
}

// Drain implements Messenger.
func (q *SyncQueues) Drain(node int64, it *Iterator) {
	end := q.offsets[node+1]
	it.reset(q.inbox[q.heads[node]:end:end])
	q.heads[node] = end
}

// Footprint implements Messenger.
func (q *SyncQueues) Footprint() uint64 {
	var n uint64
	for _, shard := range q.shards {
		n += uint64(cap(shard)) * uint64(unsafe.Sizeof(envelope{}))
	}
	n += uint64(cap(q.inbox)) * 8
	n += uint64(cap(q.offsets)+cap(q.heads)) * 8
	return n
}

// Release implements Messenger.
func (q *SyncQueues) Release() {
	q.shards = nil
	q.offsets = nil
	q.heads = nil
	q.inbox = nil
}
