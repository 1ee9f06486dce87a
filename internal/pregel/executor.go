package pregel

import (
	"context"
	"io"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/pregel/internal/messages"
)

// worker is the state of one partition task. It lives for the whole run and
// is only used by the goroutine currently running its partition.
type worker struct {
	p    *Pregel
	part Partition

	// gen is bumped after every invocation; contexts carrying an older
	// generation are out of scope. Read by stray goroutines, hence atomic.
	gen atomic.Uint64

	iter  messages.Iterator
	local any

	// per invocation
	voted bool
	fault error

	// per superstep
	sent      int64
	active    bool
	processed int64
}

func (w *worker) send(target int64, payload float64) {
	w.p.messenger.Send(w.part.Index, target, payload)
	w.sent++
}

func (w *worker) resetSuperstep() {
	w.sent = 0
	w.active = false
	w.processed = 0
}

// invoke runs fn with panics converted into PanicError.
func (w *worker) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// endInvocation closes the scope of the current context and folds a
// dropped schema or index error into the result.
func (w *worker) endInvocation(err error) error {
	w.gen.Add(1)
	if err == nil {
		err = w.fault
	}
	w.fault = nil
	w.voted = false
	return err
}

func (w *worker) computeError(node int64, superstep int, err error) *ComputeError {
	return &ComputeError{
		Node:      node,
		Original:  w.p.graph.ToOriginalID(node),
		Superstep: superstep,
		Partition: w.part.Index,
		Err:       err,
	}
}

// initPartition runs Initializer.Init for every node of the partition.
func (w *worker) initPartition(init Initializer) (PartitionSummary, error) {
	for node := w.part.Start; node < w.part.End(); node++ {
		ctx := InitContext{nodeContext{w: w, gen: w.gen.Load(), node: node, superstep: -1}}
		err := w.endInvocation(w.invoke(func() error { return init.Init(ctx) }))
		if err != nil {
			return PartitionSummary{}, w.computeError(node, -1, err)
		}
		w.processed++
	}
	w.p.progress.LogProgress(w.part.Count)
	return PartitionSummary{Processed: w.processed}, nil
}

// computePartition runs one superstep over the partition. Halted nodes
// without new messages are skipped; a message reactivates a halted node.
// A failing node stops the partition at that node.
func (w *worker) computePartition(superstep int) (PartitionSummary, error) {
	p := w.p
	recycler, _ := p.messenger.(messages.Recycler)

	for node := w.part.Start; node < w.part.End(); node++ {
		hasMessages := superstep > 0 && p.messenger.HasMessages(node)
		if p.halted[node] && !hasMessages {
			continue
		}
		p.halted[node] = false

		if hasMessages {
			p.messenger.Drain(node, &w.iter)
		} else {
			w.iter.Clear()
		}

		ctx := ComputeContext{nodeContext{w: w, gen: w.gen.Load(), node: node, superstep: superstep}}
		voted := false
		err := w.invoke(func() error {
			err := p.computation.Compute(ctx, &w.iter)
			voted = w.voted
			return err
		})
		err = w.endInvocation(err)
		if recycler != nil {
			recycler.Recycle(&w.iter)
		}
		if err != nil {
			return w.summary(), w.computeError(node, superstep, err)
		}

		w.processed++
		if voted {
			p.halted[node] = true
		} else {
			w.active = true
		}
	}

	p.progress.LogProgress(w.part.Count)
	return w.summary(), nil
}

func (w *worker) summary() PartitionSummary {
	return PartitionSummary{
		AnyActive:      w.active,
		AnyMessageSent: w.sent > 0,
		Processed:      w.processed,
		Sent:           w.sent,
	}
}

func (w *worker) close() error {
	if c, ok := w.local.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// executor runs one task per partition on a pool of at most concurrency
// goroutines and joins them before returning. It is the only barrier
// between supersteps.
type executor struct {
	workers     []*worker
	concurrency int
	termination TerminationFlag
}

// run submits task for every worker. Every submitted task runs to
// completion even if a sibling fails; the first error returned by any task
// is reported. Tasks that have not started when termination is requested
// are skipped and the phase reports ErrCancelled, unless a task failed.
//
// Partitions usually number no more than concurrency, so every task starts
// at once and a request made mid-phase takes effect at the next superstep.
func (e *executor) run(ctx context.Context, onSubmitted func(), task func(w *worker) (PartitionSummary, error)) ([]PartitionSummary, error) {
	summaries := make([]PartitionSummary, len(e.workers))
	var skipped atomic.Bool

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, w := range e.workers {
		g.Go(func() error {
			if stopRequested(ctx, e.termination) {
				skipped.Store(true)
				return nil
			}
			w.resetSuperstep()
			s, err := task(w)
			summaries[i] = s
			return err
		})
	}
	if onSubmitted != nil {
		onSubmitted()
	}

	if err := g.Wait(); err != nil {
		return summaries, err
	}
	if skipped.Load() {
		return summaries, ErrCancelled
	}
	return summaries, nil
}
