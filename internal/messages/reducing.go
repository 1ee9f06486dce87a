package messages

import (
	"math"
	"sync/atomic"
)

// Reducing is a synchronous messenger that stores one reduced value per
// target instead of a queue.
//
// Send folds the payload into the target's next-superstep slot with a
// compare-and-swap loop on the float bits, so concurrent senders never
// block each other. InitSuperstep swaps the next slots into the read role.
type Reducing struct {
	reducer  Reducer
	identity uint64

	current []float64
	has     []bool

	next    []atomic.Uint64
	nextHas []atomic.Bool
}

var _ Messenger = (*Reducing)(nil)

// NewReducing creates a reducing messenger for nodeCount nodes.
func NewReducing(nodeCount int64, reducer Reducer) *Reducing {
	r := &Reducing{
		reducer:  reducer,
		identity: math.Float64bits(reducer.Identity()),
		current:  make([]float64, nodeCount),
		has:      make([]bool, nodeCount),
		next:     make([]atomic.Uint64, nodeCount),
		nextHas:  make([]atomic.Bool, nodeCount),
	}
	r.resetNext()
	return r
}

func (r *Reducing) resetNext() {
	for i := range r.next {
		r.next[i].Store(r.identity)
		r.nextHas[i].Store(false)
	}
}

// InitSuperstep moves the values reduced during the previous superstep into
// the inbox. Superstep 0 always starts empty.
func (r *Reducing) InitSuperstep(superstep int) {
	for i := range r.next {
		r.current[i] = math.Float64frombits(r.next[i].Load())
		r.has[i] = superstep > 0 && r.nextHas[i].Load()
	}
	r.resetNext()
}

// Send implements Messenger.
func (r *Reducing) Send(_ int, target int64, payload float64) {
	slot := &r.next[target]
	for {
		old := slot.Load()
		reduced := math.Float64bits(r.reducer.Reduce(math.Float64frombits(old), payload))
		if slot.CompareAndSwap(old, reduced) {
			break
		}
	}
	r.nextHas[target].Store(true)
}

// HasMessages implements Messenger.
func (r *Reducing) HasMessages(node int64) bool {
	return r.has[node]
}

// Drain yields at most one value: the reduction of every message sent to
// node in the previous superstep.
func (r *Reducing) Drain(node int64, it *Iterator) {
	if !r.has[node] {
		it.Clear()
		return
	}
	r.has[node] = false
	it.resetSingle(r.current[node])
}

// Footprint implements Messenger.
func (r *Reducing) Footprint() uint64 {
	return uint64(len(r.current))*(8+1) + uint64(len(r.next))*(8+4)
}

// Release implements Messenger.
func (r *Reducing) Release() {
	r.current = nil
	r.has = nil
	r.next = nil
	r.nextHas = nil
}
