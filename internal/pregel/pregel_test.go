package pregel

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/values"
)

func TestPregel_TerminatesAfterOneSuperstepWhenAllHalt(t *testing.T) {
	c := &testComputation{compute: haltImmediately}

	res, err := runTest(t, nodesOnly(10), c, Config{MaxSupersteps: 10, Concurrency: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RanSupersteps)
	assert.True(t, res.DidConverge)
	assert.Equal(t, StateHalted, res.State)
	require.NotNil(t, res.Values)
}

func TestPregel_HardCap(t *testing.T) {
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		return ctx.SetLong("value", int64(ctx.Superstep()))
	}}

	res, err := runTest(t, nodesOnly(7), c, Config{MaxSupersteps: 5, Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, res.RanSupersteps)
	assert.False(t, res.DidConverge)

	v, err := res.Values.Long(6, "value")
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestPregel_ConvergesExactlyAtCap(t *testing.T) {
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		if ctx.Superstep() == 2 {
			return ctx.VoteToHalt()
		}
		return nil
	}}

	res, err := runTest(t, nodesOnly(3), c, Config{MaxSupersteps: 3, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.RanSupersteps)
	assert.True(t, res.DidConverge)
}

func TestPregel_EmptyGraph(t *testing.T) {
	c := &testComputation{compute: haltImmediately}

	res, err := runTest(t, nodesOnly(0), c, Config{MaxSupersteps: 3, Concurrency: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RanSupersteps)
	assert.True(t, res.DidConverge)
}

func TestPregel_MessagesVisibleOnlyAfterBarrier(t *testing.T) {
	const n, steps = 50, 6

	for _, tc := range []struct {
		seed         uint64
		concurrency  int
		partitioning Partitioning
	}{
		{1, 1, PartitionRange},
		{2, 4, PartitionRange},
		{3, 4, PartitionDegree},
		{42, 8, PartitionAuto},
	} {
		t.Run(fmt.Sprintf("seed_%d_workers_%d", tc.seed, tc.concurrency), func(t *testing.T) {
			var mu sync.Mutex
			sent := make([]map[int64][]float64, steps)
			for k := range sent {
				sent[k] = make(map[int64][]float64)
			}
			rec := newRecorder()

			c := &testComputation{compute: func(ctx ComputeContext, msgs *messages.Iterator) error {
				k, node := ctx.Superstep(), ctx.NodeID()
				rec.received(node, k, msgs.Collect())

				rng := rand.New(rand.NewPCG(tc.seed, uint64(k)*n+uint64(node)))
				for i := range rng.IntN(5) {
					target := rng.Int64N(n)
					payload := float64(k*1_000_000 + int(node)*100 + i)
					mu.Lock()
					sent[k][target] = append(sent[k][target], payload)
					mu.Unlock()
					if err := ctx.SendTo(target, payload); err != nil {
						return err
					}
				}
				return nil
			}}

			res, err := runTest(t, nodesOnly(n), c, Config{
				MaxSupersteps: steps,
				Concurrency:   tc.concurrency,
				Partitioning:  tc.partitioning,
			})
			require.NoError(t, err)
			require.Equal(t, steps, res.RanSupersteps)

			for node := int64(0); node < n; node++ {
				assert.Empty(t, rec.messagesAt(node, 0), "superstep 0 inbox of node %d", node)
				for k := 1; k < steps; k++ {
					assert.Equal(t, sorted(sent[k-1][node]), rec.messagesAt(node, k),
						"node %d superstep %d", node, k)
				}
			}
		})
	}
}

func TestPregel_HaltAndReactivation(t *testing.T) {
	rec := newRecorder()
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		rec.invoked(ctx.NodeID(), ctx.Superstep())
		if ctx.NodeID() == 0 {
			if ctx.Superstep() == 2 {
				if err := ctx.SendTo(1, 1); err != nil {
					return err
				}
				return ctx.VoteToHalt()
			}
			return nil
		}
		return ctx.VoteToHalt()
	}}

	res, err := runTest(t, nodesOnly(2), c, Config{MaxSupersteps: 10, Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, rec.supersteps(0))
	assert.Equal(t, []int{0, 3}, rec.supersteps(1), "halted node must only run again once a message arrives")
	assert.Equal(t, 4, res.RanSupersteps)
	assert.True(t, res.DidConverge)
}

func TestPregel_ReactivatedNodeStaysActiveUnlessItHaltsAgain(t *testing.T) {
	rec := newRecorder()
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		rec.invoked(ctx.NodeID(), ctx.Superstep())
		switch {
		case ctx.NodeID() == 0 && ctx.Superstep() == 0:
			if err := ctx.SendTo(1, 1); err != nil {
				return err
			}
			return ctx.VoteToHalt()
		case ctx.NodeID() == 1 && ctx.Superstep() == 0:
			return ctx.VoteToHalt()
		case ctx.NodeID() == 1 && ctx.Superstep() < 3:
			return nil
		default:
			return ctx.VoteToHalt()
		}
	}}

	res, err := runTest(t, nodesOnly(2), c, Config{MaxSupersteps: 10, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, rec.supersteps(1))
	assert.Equal(t, 4, res.RanSupersteps)
}

func TestPregel_MessagesDrainIsConsuming(t *testing.T) {
	var first, second []float64
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		switch {
		case ctx.Superstep() == 0 && ctx.NodeID() == 0:
			_ = ctx.SendTo(1, 1)
			_ = ctx.SendTo(1, 2)
		case ctx.Superstep() == 1 && ctx.NodeID() == 1:
			it, err := ctx.Messages()
			assert.NoError(t, err)
			first = sorted(it.Collect())
			it, err = ctx.Messages()
			assert.NoError(t, err)
			second = it.Collect()
		}
		return ctx.VoteToHalt()
	}}

	_, err := runTest(t, nodesOnly(2), c, Config{MaxSupersteps: 5, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, first)
	assert.Empty(t, second)
}

func TestPregel_SynchronousVsAsynchronousVisibility(t *testing.T) {
	program := func(rec *recorder) *testComputation {
		return &testComputation{compute: func(ctx ComputeContext, msgs *messages.Iterator) error {
			rec.received(ctx.NodeID(), ctx.Superstep(), msgs.Collect())
			if ctx.NodeID() == 0 {
				switch ctx.Superstep() {
				case 0:
					return ctx.SendTo(1, 7)
				case 1:
					if err := ctx.SendTo(1, 8); err != nil {
						return err
					}
					return ctx.VoteToHalt()
				}
			}
			return ctx.VoteToHalt()
		}}
	}

	t.Run("sync", func(t *testing.T) {
		rec := newRecorder()
		res, err := runTest(t, nodesOnly(2), program(rec), Config{MaxSupersteps: 10, Concurrency: 1})
		require.NoError(t, err)
		assert.Empty(t, rec.messagesAt(1, 0))
		assert.Equal(t, []float64{7}, rec.messagesAt(1, 1))
		assert.Equal(t, []float64{8}, rec.messagesAt(1, 2))
		assert.Equal(t, 3, res.RanSupersteps)
	})

	t.Run("async", func(t *testing.T) {
		rec := newRecorder()
		c := asyncComputation{program(rec)}
		res, err := runTest(t, nodesOnly(2), c, Config{MaxSupersteps: 10, Concurrency: 1, Asynchronous: true})
		require.NoError(t, err)
		assert.Empty(t, rec.messagesAt(1, 0), "superstep 0 never sees messages")
		assert.Equal(t, []float64{7, 8}, rec.messagesAt(1, 1), "same-superstep message must be visible")
		assert.Equal(t, 3, res.RanSupersteps)
		assert.True(t, res.DidConverge)
	})
}

func TestPregel_ReducerFoldsMessages(t *testing.T) {
	rec := newRecorder()
	c := reducingComputation{
		testComputation: &testComputation{compute: func(ctx ComputeContext, msgs *messages.Iterator) error {
			rec.received(ctx.NodeID(), ctx.Superstep(), msgs.Collect())
			if ctx.Superstep() == 0 && ctx.NodeID() > 0 {
				if err := ctx.SendTo(0, float64(10-ctx.NodeID())); err != nil {
					return err
				}
			}
			return ctx.VoteToHalt()
		}},
		reducer: messages.Min{},
	}

	_, err := runTest(t, nodesOnly(4), c, Config{MaxSupersteps: 5, Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, rec.messagesAt(0, 1))
}

func TestPregel_ComputeErrorLetsSiblingsFinish(t *testing.T) {
	boom := errors.New("boom")
	rec := newRecorder()
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		rec.invoked(ctx.NodeID(), ctx.Superstep())
		if ctx.NodeID() == 0 {
			return boom
		}
		return ctx.VoteToHalt()
	}}

	res, err := runTest(t, nodesOnly(8), c, Config{MaxSupersteps: 5, Concurrency: 4, Partitioning: PartitionRange})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ce *ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, int64(0), ce.Node)
	assert.Equal(t, 0, ce.Superstep)
	assert.Equal(t, 0, ce.Partition)

	for node := int64(2); node < 8; node++ {
		assert.Equal(t, []int{0}, rec.supersteps(node), "sibling node %d must finish", node)
	}
	assert.Empty(t, rec.supersteps(1), "failing partition stops at the failing node")

	assert.Equal(t, StateFailed, res.State)
	assert.Nil(t, res.Values)
}

func TestPregel_PanicBecomesComputeError(t *testing.T) {
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		if ctx.Superstep() == 1 && ctx.NodeID() == 1 {
			panic("kaboom")
		}
		return nil
	}}

	res, err := runTest(t, nodesOnly(3), c, Config{MaxSupersteps: 5, Concurrency: 2})
	require.Error(t, err)
	assert.True(t, IsComputeError(err))
	assert.True(t, IsPanic(err))
	assert.Contains(t, err.Error(), "kaboom")

	var ce *ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Superstep)
	assert.Equal(t, int64(1), ce.Node)
	assert.Equal(t, StateFailed, res.State)
}

func TestPregel_CancelledBeforeStart(t *testing.T) {
	var calls atomic.Int64
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		calls.Add(1)
		return nil
	}}

	res, err := runTest(t, nodesOnly(4), c, Config{MaxSupersteps: 5},
		WithTermination(TerminationFunc(func() bool { return false })))
	require.ErrorIs(t, err, ErrCancelled)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, StateCancelled, res.State)
	assert.Equal(t, 0, res.RanSupersteps)
	assert.Nil(t, res.Values)
	assert.Zero(t, calls.Load())
}

func TestPregel_CancelledBetweenSupersteps(t *testing.T) {
	var running atomic.Bool
	running.Store(true)

	c := masterComputation{
		testComputation: &testComputation{compute: func(ComputeContext, *messages.Iterator) error { return nil }},
		master: func(ctx *MasterContext) (bool, error) {
			if ctx.Superstep() == 1 {
				running.Store(false)
			}
			return false, nil
		},
	}

	res, err := runTest(t, nodesOnly(4), c, Config{MaxSupersteps: 10, Concurrency: 2},
		WithTermination(TerminationFunc(running.Load)))
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StateCancelled, res.State)
	assert.Equal(t, 2, res.RanSupersteps)
}

func TestPregel_ContextCancellation(t *testing.T) {
	c := &testComputation{compute: func(ComputeContext, *messages.Iterator) error { return nil }}
	p := newTestPregel(t, nodesOnly(4), c, Config{MaxSupersteps: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx)
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StateCancelled, res.State)
}

func TestPregel_UseAfterScope(t *testing.T) {
	var stale ComputeContext
	var lateErr error
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		if ctx.Superstep() == 0 {
			stale = ctx
			return nil
		}
		lateErr = stale.SetLong("value", 5)
		_, msgErr := stale.Messages()
		assert.True(t, IsUseAfterScopeError(msgErr))
		return nil
	}}

	res, err := runTest(t, nodesOnly(1), c, Config{MaxSupersteps: 5, Concurrency: 1})
	require.Error(t, err)
	assert.True(t, IsUseAfterScopeError(err))
	assert.Equal(t, StateFailed, res.State)

	var ue *UseAfterScopeError
	require.ErrorAs(t, lateErr, &ue)
	assert.Equal(t, "SetLong", ue.Op)
	assert.Equal(t, 0, ue.Superstep)
	assert.Equal(t, int64(0), ue.Node)
}

func TestPregel_DroppedSchemaErrorFailsRun(t *testing.T) {
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		_, _ = ctx.Double("value")
		return ctx.VoteToHalt()
	}}

	_, err := runTest(t, nodesOnly(2), c, Config{MaxSupersteps: 5})
	require.Error(t, err)
	assert.True(t, IsComputeError(err))
	assert.True(t, values.IsSchemaError(err))
}

func TestPregel_SendToOutOfRange(t *testing.T) {
	c := &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		return ctx.SendTo(99, 1)
	}}

	_, err := runTest(t, nodesOnly(2), c, Config{MaxSupersteps: 5})
	require.Error(t, err)
	assert.True(t, values.IsIndexError(err))
}

func TestNew_SchemaError(t *testing.T) {
	c := &testComputation{
		slots: func() (*values.Schema, error) {
			return values.NewSchemaBuilder().Add("x", values.Long).Add("x", values.Double).Build()
		},
		compute: haltImmediately,
	}

	_, err := New(nodesOnly(1), c, Config{})
	require.Error(t, err)
	assert.True(t, values.IsSchemaError(err))
}

func TestNew_RequiresInverseIndex(t *testing.T) {
	c := directedComputation{&testComputation{compute: haltImmediately}, graph.Undirected}

	_, err := New(nodesOnly(2), c, Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inverse index")

	b := graph.NewBuilder().WithInverseIndex()
	b.AddRelationship(0, 1)
	_, err = New(b.Build(), c, Config{})
	require.NoError(t, err)
}

func TestNew_AsyncRequiresCapability(t *testing.T) {
	_, err := New(nodesOnly(2), &testComputation{compute: haltImmediately}, Config{Asynchronous: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asynchronous")
}

func TestPregel_RunTwice(t *testing.T) {
	p := newTestPregel(t, nodesOnly(2), &testComputation{compute: haltImmediately}, Config{})
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
}

type countingComputation struct{ *testComputation }

func (countingComputation) Init(ctx InitContext) error { return ctx.SetLong("value", 1) }

func (countingComputation) MasterCompute(ctx *MasterContext) (bool, error) {
	return ctx.Superstep() == 1, nil
}

func TestPregel_MasterComputeStopsWithConvergence(t *testing.T) {
	c := countingComputation{&testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		v, err := ctx.Long("value")
		if err != nil {
			return err
		}
		return ctx.SetLong("value", v+1)
	}}}

	res, err := runTest(t, nodesOnly(3), c, Config{MaxSupersteps: 4, Concurrency: 2})
	require.NoError(t, err)
	assert.True(t, res.DidConverge)
	assert.Equal(t, 2, res.RanSupersteps)
	for node := int64(0); node < 3; node++ {
		v, err := res.Values.Long(node, "value")
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)
	}
}

func TestPregel_MasterComputeError(t *testing.T) {
	c := masterComputation{
		testComputation: &testComputation{compute: func(ComputeContext, *messages.Iterator) error { return nil }},
		master:          func(*MasterContext) (bool, error) { return false, errors.New("master failed") },
	}

	res, err := runTest(t, nodesOnly(2), c, Config{MaxSupersteps: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "master failed")
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, 1, res.RanSupersteps)
}

func TestPregel_InitReadsNodeProperties(t *testing.T) {
	b := graph.NewBuilder()
	b.AddNode(100)
	b.AddNode(200)
	b.SetNodeProperty("seed", 100, 7)

	c := initComputation{
		testComputation: &testComputation{compute: haltImmediately},
		init: func(ctx InitContext) error {
			if seed, ok := ctx.NodeProperty("seed"); ok {
				return ctx.SetLong("value", int64(seed))
			}
			return ctx.SetLong("value", -ctx.OriginalID())
		},
	}

	res, err := runTest(t, b.Build(), c, Config{MaxSupersteps: 2})
	require.NoError(t, err)

	v, _ := res.Values.Long(0, "value")
	assert.Equal(t, int64(7), v)
	v, _ = res.Values.Long(1, "value")
	assert.Equal(t, int64(-200), v)
}

func TestPregel_InitErrorFailsRun(t *testing.T) {
	c := initComputation{
		testComputation: &testComputation{compute: haltImmediately},
		init:            func(ctx InitContext) error { return ctx.SetDouble("value", 1) },
	}

	_, err := runTest(t, nodesOnly(2), c, Config{})
	require.Error(t, err)
	var ce *ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, -1, ce.Superstep)
	assert.Contains(t, err.Error(), "in init")
}

func TestPregel_RelationshipWeights(t *testing.T) {
	build := func() graph.Graph {
		b := graph.NewBuilder()
		b.AddWeightedRelationship(0, 1, 2.5)
		b.AddWeightedRelationship(0, 2, 4)
		return b.Build()
	}
	program := func(rec *recorder) weightedComputation {
		return weightedComputation{&testComputation{compute: func(ctx ComputeContext, msgs *messages.Iterator) error {
			rec.received(ctx.NodeID(), ctx.Superstep(), msgs.Collect())
			if ctx.Superstep() == 0 && ctx.NodeID() == 0 {
				if err := ctx.SendToNeighbors(2); err != nil {
					return err
				}
			}
			return ctx.VoteToHalt()
		}}}
	}

	rec := newRecorder()
	_, err := runTest(t, build(), program(rec), Config{MaxSupersteps: 3, UseWeights: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, rec.messagesAt(1, 1))
	assert.Equal(t, []float64{8}, rec.messagesAt(2, 1))

	rec = newRecorder()
	_, err = runTest(t, build(), program(rec), Config{MaxSupersteps: 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, rec.messagesAt(1, 1))
}

func TestPregel_SendToNeighborsUndirected(t *testing.T) {
	b := graph.NewBuilder().WithInverseIndex()
	b.AddRelationship(0, 1)
	b.AddRelationship(2, 0)

	rec := newRecorder()
	c := directedComputation{&testComputation{compute: func(ctx ComputeContext, msgs *messages.Iterator) error {
		rec.received(ctx.NodeID(), ctx.Superstep(), msgs.Collect())
		if ctx.Superstep() == 0 && ctx.NodeID() == 0 {
			return ctx.SendToNeighbors(1)
		}
		return ctx.VoteToHalt()
	}}, graph.Undirected}

	_, err := runTest(t, b.Build(), c, Config{MaxSupersteps: 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, rec.messagesAt(1, 1))
	assert.Equal(t, []float64{1}, rec.messagesAt(2, 1))
}

func TestPregel_PartitionLocalState(t *testing.T) {
	c := &localComputation{testComputation: &testComputation{compute: func(ctx ComputeContext, _ *messages.Iterator) error {
		ctx.Local().(*partitionCounter).n++
		return ctx.VoteToHalt()
	}}}

	_, err := runTest(t, nodesOnly(10), c, Config{MaxSupersteps: 3, Concurrency: 3, Partitioning: PartitionRange})
	require.NoError(t, err)

	require.Len(t, c.states, 3)
	var total int64
	for _, s := range c.states {
		assert.Equal(t, s.part.Count, s.n)
		assert.True(t, s.closed)
		total += s.n
	}
	assert.Equal(t, int64(10), total)
}

func TestPregel_PrivateSlotsExcludedFromResult(t *testing.T) {
	c := &testComputation{
		slots: func() (*values.Schema, error) {
			return values.NewSchemaBuilder().
				Add("value", values.Long).
				Add("scratch", values.DoubleArray, values.WithVisibility(values.Private)).
				Build()
		},
		compute: haltImmediately,
	}

	res, err := runTest(t, nodesOnly(2), c, Config{})
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, "value", res.Slots[0].Name)
}

type recordingSink struct {
	mu       sync.Mutex
	begins   []string
	ends     []string
	progress int64
}

func (s *recordingSink) BeginSubtask(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins = append(s.begins, name)
}

func (s *recordingSink) LogProgress(delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress += delta
}

func (s *recordingSink) EndSubtask(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ends = append(s.ends, name)
}

type panickingSink struct{}

func (panickingSink) BeginSubtask(string) { panic("begin") }
func (panickingSink) LogProgress(int64)   { panic("progress") }
func (panickingSink) EndSubtask(string)   { panic("end") }

func TestPregel_ProgressSubtasks(t *testing.T) {
	sink := &recordingSink{}
	c := &testComputation{compute: func(ComputeContext, *messages.Iterator) error { return nil }}

	_, err := runTest(t, nodesOnly(4), c, Config{MaxSupersteps: 3, Concurrency: 2}, WithProgress(sink))
	require.NoError(t, err)

	want := []string{"Compute iteration 1 of 3", "Compute iteration 2 of 3", "Compute iteration 3 of 3"}
	assert.Equal(t, want, sink.begins)
	assert.Equal(t, want, sink.ends)
	assert.Equal(t, int64(12), sink.progress)
}

func TestPregel_ProgressSinkFailureIgnored(t *testing.T) {
	c := &testComputation{compute: haltImmediately}

	res, err := runTest(t, nodesOnly(4), c, Config{MaxSupersteps: 3, Concurrency: 2}, WithProgress(panickingSink{}))
	require.NoError(t, err)
	assert.True(t, res.DidConverge)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "barrier_waiting", StateBarrierWaiting.String())
	assert.True(t, StateCancelled.IsTerminal())
	assert.False(t, StateDeciding.IsTerminal())
}
