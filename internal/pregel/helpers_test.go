package pregel

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/values"
)

// testComputation declares a single "value" long slot unless slots is set.
type testComputation struct {
	slots   func() (*values.Schema, error)
	compute func(ctx ComputeContext, msgs *messages.Iterator) error
}

func (c *testComputation) Schema(Config) (*values.Schema, error) {
	if c.slots != nil {
		return c.slots()
	}
	return values.NewSchemaBuilder().Add("value", values.Long).Build()
}

func (c *testComputation) Compute(ctx ComputeContext, msgs *messages.Iterator) error {
	return c.compute(ctx, msgs)
}

type asyncComputation struct{ *testComputation }

func (asyncComputation) SupportsAsync() bool { return true }

type directedComputation struct {
	*testComputation
	dir graph.Direction
}

func (c directedComputation) MessageDirection() graph.Direction { return c.dir }

type masterComputation struct {
	*testComputation
	master func(ctx *MasterContext) (bool, error)
}

func (c masterComputation) MasterCompute(ctx *MasterContext) (bool, error) { return c.master(ctx) }

type initComputation struct {
	*testComputation
	init func(ctx InitContext) error
}

func (c initComputation) Init(ctx InitContext) error { return c.init(ctx) }

type weightedComputation struct{ *testComputation }

func (weightedComputation) ApplyRelationshipWeight(payload, weight float64) float64 {
	return payload * weight
}

type reducingComputation struct {
	*testComputation
	reducer messages.Reducer
}

func (c reducingComputation) Reducer() messages.Reducer { return c.reducer }

type localComputation struct {
	*testComputation
	mu     sync.Mutex
	states []*partitionCounter
}

type partitionCounter struct {
	part   Partition
	n      int64
	closed bool
}

func (c *partitionCounter) Close() error {
	c.closed = true
	return nil
}

func (c *localComputation) NewPartitionState(p Partition) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &partitionCounter{part: p}
	c.states = append(c.states, s)
	return s
}

// recorder collects per-node, per-superstep observations from concurrent
// compute calls.
type recorder struct {
	mu   sync.Mutex
	seen map[int64][]int
	msgs map[[2]int64][]float64
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[int64][]int), msgs: make(map[[2]int64][]float64)}
}

func (r *recorder) invoked(node int64, superstep int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[node] = append(r.seen[node], superstep)
}

func (r *recorder) received(node int64, superstep int, got []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs[[2]int64{node, int64(superstep)}] = sorted(got)
}

func (r *recorder) supersteps(node int64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.seen[node])
	slices.Sort(out)
	return out
}

func (r *recorder) messagesAt(node int64, superstep int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.msgs[[2]int64{node, int64(superstep)}]; ok {
		return m
	}
	return []float64{}
}

func sorted(xs []float64) []float64 {
	out := append([]float64{}, xs...)
	slices.Sort(out)
	return out
}

func nodesOnly(n int) *graph.CSR {
	b := graph.NewBuilder()
	for i := 0; i < n; i++ {
		b.AddNode(int64(i))
	}
	return b.Build()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPregel(t *testing.T, g graph.Graph, c Computation, cfg Config, opts ...Option) *Pregel {
	t.Helper()
	p, err := New(g, c, cfg, append([]Option{WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, err)
	return p
}

func runTest(t *testing.T, g graph.Graph, c Computation, cfg Config, opts ...Option) (*Result, error) {
	t.Helper()
	return newTestPregel(t, g, c, cfg, opts...).Run(context.Background())
}

func haltImmediately(ctx ComputeContext, _ *messages.Iterator) error {
	return ctx.VoteToHalt()
}
