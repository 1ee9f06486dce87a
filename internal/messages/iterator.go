package messages

import "iter"

// Iterator is a consuming, non-restartable sequence of message payloads for
// one node in one superstep.
//
// The zero value is an empty iterator. An Iterator is owned by a single
// partition task and is rebound for every node it processes; it must not be
// retained after the compute invocation that received it returns.
type Iterator struct {
	payloads []float64
	pos      int
	single   [1]float64
}

// Next returns the next payload, or false once the sequence is exhausted.
func (it *Iterator) Next() (float64, bool) {
	if it.pos >= len(it.payloads) {
		return 0, false
	}
	v := it.payloads[it.pos]
	it.pos++
	return v, true
}

// Len returns the number of payloads not yet consumed.
func (it *Iterator) Len() int {
	return len(it.payloads) - it.pos
}

// IsEmpty reports whether no payloads remain.
func (it *Iterator) IsEmpty() bool {
	return it.Len() == 0
}

// All returns a range-over-func view that consumes the iterator.
//
//	for m := range msgs.All() {
//	    best = min(best, m)
//	}
func (it *Iterator) All() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Collect consumes the remaining payloads into a new slice.
func (it *Iterator) Collect() []float64 {
	out := make([]float64, 0, it.Len())
	for v := range it.All() {
		out = append(out, v)
	}
	return out
}

func (it *Iterator) reset(payloads []float64) {
	it.payloads = payloads
	it.pos = 0
}

func (it *Iterator) resetSingle(v float64) {
	it.single[0] = v
	it.payloads = it.single[:]
	it.pos = 0
}

// Clear empties the iterator.
func (it *Iterator) Clear() {
	it.payloads = nil
	it.pos = 0
}
