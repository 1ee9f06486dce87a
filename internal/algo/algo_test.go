package algo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/pregel"
	"github.com/roach88/pregel/internal/testutil"
)

func run(t *testing.T, g graph.Graph, c pregel.Computation, cfg pregel.Config) *pregel.Result {
	t.Helper()
	p, err := pregel.New(g, c, cfg, pregel.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	return res
}

func longs(t *testing.T, res *pregel.Result, slot string) []int64 {
	t.Helper()
	out := make([]int64, res.Values.NodeCount())
	for node := range out {
		v, err := res.Values.Long(int64(node), slot)
		require.NoError(t, err)
		out[node] = v
	}
	return out
}

// ccGraph is a→b, b→a, a→c, c→d, c→c with an isolated e; a..e have
// original ids 0..4.
func ccGraph() graph.Graph {
	b := graph.NewBuilder().WithInverseIndex()
	for id := int64(0); id < 5; id++ {
		b.AddNode(id)
	}
	b.AddRelationship(0, 1)
	b.AddRelationship(1, 0)
	b.AddRelationship(0, 2)
	b.AddRelationship(2, 3)
	b.AddRelationship(2, 2)
	return b.Build()
}

func modes() []pregel.Config {
	var cfgs []pregel.Config
	for _, async := range []bool{false, true} {
		for _, workers := range []int{1, 4} {
			cfgs = append(cfgs, pregel.Config{MaxSupersteps: 20, Concurrency: workers, Asynchronous: async})
		}
	}
	return cfgs
}

func TestWCC_ConnectedComponentsScenario(t *testing.T) {
	for _, cfg := range modes() {
		t.Run(fmt.Sprintf("async_%t_workers_%d", cfg.Asynchronous, cfg.Concurrency), func(t *testing.T) {
			res := run(t, ccGraph(), WCC{}, cfg)
			require.True(t, res.DidConverge)

			got := longs(t, res, ComponentSlot)
			a, b, c, d, e := got[0], got[1], got[2], got[3], got[4]
			assert.Equal(t, a, b)
			assert.Equal(t, a, c)
			assert.Equal(t, a, d)
			assert.NotEqual(t, a, e)
			assert.Equal(t, int64(0), a)
			assert.Equal(t, int64(4), e)
		})
	}
}

func TestWCC_RequiresInverseIndex(t *testing.T) {
	b := graph.NewBuilder()
	b.AddRelationship(0, 1)

	_, err := pregel.New(b.Build(), WCC{}, pregel.Config{})
	require.Error(t, err)
}

// ssspGraph: a→b, b→c, a→c, c→d, f→a, e isolated.
func ssspGraph() graph.Graph {
	b := graph.NewBuilder()
	for _, id := range []int64{10, 11, 12, 13, 14, 15} {
		b.AddNode(id)
	}
	b.AddRelationship(10, 11)
	b.AddRelationship(11, 12)
	b.AddRelationship(10, 12)
	b.AddRelationship(12, 13)
	b.AddRelationship(15, 10)
	return b.Build()
}

func TestSSSP_HopDistances(t *testing.T) {
	g := ssspGraph()
	c, _, err := NewRegistry().New("sssp", g, Params{SourceNode: ptr(int64(10))})
	require.NoError(t, err)

	for _, cfg := range modes() {
		t.Run(fmt.Sprintf("async_%t_workers_%d", cfg.Asynchronous, cfg.Concurrency), func(t *testing.T) {
			res := run(t, g, c, cfg)
			require.True(t, res.DidConverge)
			assert.Equal(t, []int64{0, 1, 1, 2, Unreachable, Unreachable}, longs(t, res, DistanceSlot))
		})
	}
}

func TestWCC_MatchesUnionFindOnRandomGraphs(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		g := testutil.RandomGraph(seed, 200, 150)
		want := testutil.Components(g)

		for _, cfg := range modes() {
			t.Run(fmt.Sprintf("seed_%d_async_%t_workers_%d", seed, cfg.Asynchronous, cfg.Concurrency), func(t *testing.T) {
				cfg.MaxSupersteps = 1000
				res := run(t, g, WCC{}, cfg)
				require.True(t, res.DidConverge)
				assert.Equal(t, want, longs(t, res, ComponentSlot))
			})
		}
	}
}

func TestSSSP_MatchesBFSOnRandomGraphs(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		g := testutil.RandomGraph(seed, 150, 300)
		source := int64(seed * 7 % 150)
		want := testutil.HopDistances(g, source)

		for _, cfg := range modes() {
			t.Run(fmt.Sprintf("seed_%d_async_%t_workers_%d", seed, cfg.Asynchronous, cfg.Concurrency), func(t *testing.T) {
				cfg.MaxSupersteps = 1000
				res := run(t, g, SSSP{Source: source}, cfg)
				require.True(t, res.DidConverge)
				assert.Equal(t, want, longs(t, res, DistanceSlot))
			})
		}
	}
}

func TestLabelPropagation_Triangles(t *testing.T) {
	b := graph.NewBuilder().WithInverseIndex()
	b.AddRelationship(0, 1)
	b.AddRelationship(1, 2)
	b.AddRelationship(2, 0)
	b.AddRelationship(3, 4)
	b.AddRelationship(4, 5)
	b.AddRelationship(5, 3)

	res := run(t, b.Build(), LabelPropagation{}, pregel.Config{MaxSupersteps: 20, Concurrency: 2})
	assert.True(t, res.DidConverge)
	assert.Equal(t, 4, res.RanSupersteps)
	assert.Equal(t, []int64{0, 0, 0, 3, 3, 3}, longs(t, res, LabelSlot))

	require.Len(t, res.Slots, 1, "changed flag is private")
	assert.Equal(t, LabelSlot, res.Slots[0].Name)
}

func TestLabelPropagation_SeedProperty(t *testing.T) {
	b := graph.NewBuilder().WithInverseIndex()
	b.AddRelationship(0, 1)
	b.AddRelationship(1, 2)
	b.AddRelationship(2, 0)
	for _, id := range []int64{0, 1, 2} {
		b.SetNodeProperty("seed", id, 100)
	}

	res := run(t, b.Build(), LabelPropagation{SeedProperty: "seed"}, pregel.Config{MaxSupersteps: 20})
	assert.True(t, res.DidConverge)
	assert.Equal(t, []int64{100, 100, 100}, longs(t, res, LabelSlot))
}

func TestPageRank_SymmetricCycle(t *testing.T) {
	b := graph.NewBuilder()
	b.AddRelationship(0, 1)
	b.AddRelationship(1, 0)
	g := b.Build()

	c, _, err := NewRegistry().New("pagerank", g, Params{})
	require.NoError(t, err)

	res := run(t, g, c, pregel.Config{MaxSupersteps: 20, Concurrency: 2})
	assert.True(t, res.DidConverge)
	assert.Equal(t, 2, res.RanSupersteps)
	for node := int64(0); node < 2; node++ {
		v, err := res.Values.Double(node, RankSlot)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, v, 1e-12)
	}
}

func TestPageRank_RelationshipWeights(t *testing.T) {
	build := func() graph.Graph {
		b := graph.NewBuilder()
		b.AddWeightedRelationship(0, 1, 3)
		b.AddWeightedRelationship(0, 2, 1)
		b.AddWeightedRelationship(1, 0, 1)
		b.AddWeightedRelationship(2, 0, 1)
		return b.Build()
	}
	pr := PageRank{DampingFactor: 0.85, Tolerance: 1e-9}
	rank := func(res *pregel.Result, node int64) float64 {
		v, err := res.Values.Double(node, RankSlot)
		require.NoError(t, err)
		return v
	}

	weighted := run(t, build(), pr, pregel.Config{MaxSupersteps: 2, UseWeights: true})
	assert.InDelta(t, 0.05+0.85*(0.75/3), rank(weighted, 1), 1e-12)
	assert.InDelta(t, 0.05+0.85*(0.25/3), rank(weighted, 2), 1e-12)

	plain := run(t, build(), pr, pregel.Config{MaxSupersteps: 2})
	assert.InDelta(t, 0.05+0.85*(0.5/3), rank(plain, 1), 1e-12)
	assert.InDelta(t, rank(plain, 1), rank(plain, 2), 1e-12)
}

func doubles(t *testing.T, res *pregel.Result, slot string) []float64 {
	t.Helper()
	out := make([]float64, res.Values.NodeCount())
	for node := range out {
		v, err := res.Values.Double(int64(node), slot)
		require.NoError(t, err)
		out[node] = v
	}
	return out
}

// syncModes are the modes PageRank supports.
func syncModes() []pregel.Config {
	var cfgs []pregel.Config
	for _, cfg := range modes() {
		if !cfg.Asynchronous {
			cfgs = append(cfgs, cfg)
		}
	}
	return cfgs
}

func TestPageRank_StarConverges(t *testing.T) {
	// The leaves settle a superstep before the hub, so the hub keeps
	// receiving nothing from them while it is still moving.
	b := graph.NewBuilder()
	b.AddRelationship(0, 1)
	b.AddRelationship(0, 2)
	b.AddRelationship(1, 0)
	b.AddRelationship(2, 0)
	g := b.Build()
	want := testutil.PageRank(g, 0.85, false)

	for _, cfg := range syncModes() {
		t.Run(fmt.Sprintf("workers_%d", cfg.Concurrency), func(t *testing.T) {
			cfg.MaxSupersteps = 500
			res := run(t, g, PageRank{DampingFactor: 0.85, Tolerance: 1e-10}, cfg)
			require.True(t, res.DidConverge)
			assert.Greater(t, res.RanSupersteps, 2)
			assert.Less(t, res.RanSupersteps, 500)

			got := doubles(t, res, RankSlot)
			assert.InDeltaSlice(t, want, got, 1e-8)
			assert.InDelta(t, 0.486486, got[0], 1e-6)
			assert.InDelta(t, got[1], got[2], 1e-12)
		})
	}
}

func TestPageRank_MatchesPowerIterationOnRandomGraphs(t *testing.T) {
	pr := PageRank{DampingFactor: 0.85, Tolerance: 1e-10}
	for seed := uint64(1); seed <= 5; seed++ {
		g := testutil.RandomGraph(seed, 100, 400)

		for _, weighted := range []bool{false, true} {
			want := testutil.PageRank(g, 0.85, weighted)

			for _, cfg := range syncModes() {
				name := fmt.Sprintf("seed_%d_weighted_%t_workers_%d", seed, weighted, cfg.Concurrency)
				t.Run(name, func(t *testing.T) {
					cfg.MaxSupersteps = 1000
					cfg.UseWeights = weighted
					res := run(t, g, pr, cfg)
					require.True(t, res.DidConverge)
					assert.InDeltaSlice(t, want, doubles(t, res, RankSlot), 1e-6)
				})
			}
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"labelprop", "pagerank", "sssp", "wcc"}, r.Names())

	_, err := r.Lookup("bfs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown algorithm")

	g := ssspGraph()
	_, _, err = r.New("sssp", g, Params{})
	assert.ErrorContains(t, err, "requires a source")
	_, _, err = r.New("sssp", g, Params{SourceNode: ptr(int64(99))})
	assert.ErrorContains(t, err, "not in the graph")

	_, _, err = r.New("pagerank", g, Params{DampingFactor: 1.5})
	assert.ErrorContains(t, err, "damping factor")

	_, a, err := r.New("wcc", g, Params{})
	require.NoError(t, err)
	assert.Equal(t, ComponentSlot, a.ResultSlot)
}

func ptr[T any](v T) *T { return &v }
