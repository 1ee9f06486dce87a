package testutil

import (
	"math"

	"github.com/roach88/pregel/internal/graph"
)

// Components returns, for every dense node id, the smallest dense id in its
// weakly connected component. Only outgoing adjacency is read.
func Components(g graph.Graph) []int64 {
	n := g.NodeCount()
	parent := make([]int64, n)
	for i := range parent {
		parent[i] = int64(i)
	}
	var find func(int64) int64
	find = func(x int64) int64 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for node := range n {
		g.ForEachRelationship(node, graph.Outgoing, func(source, target int64, _ float64) bool {
			a, b := find(source), find(target)
			// The root of every set is its smallest member.
			if a < b {
				parent[b] = a
			} else if b < a {
				parent[a] = b
			}
			return true
		})
	}

	out := make([]int64, n)
	for i := range out {
		out[i] = find(int64(i))
	}
	return out
}

// HopDistances returns breadth-first hop counts from source along outgoing
// relationships. Unreachable nodes get math.MaxInt64.
func HopDistances(g graph.Graph, source int64) []int64 {
	dist := make([]int64, g.NodeCount())
	for i := range dist {
		dist[i] = math.MaxInt64
	}
	dist[source] = 0
	queue := []int64{source}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		g.ForEachRelationship(node, graph.Outgoing, func(_, target int64, _ float64) bool {
			if dist[target] == math.MaxInt64 {
				dist[target] = dist[node] + 1
				queue = append(queue, target)
			}
			return true
		})
	}
	return dist
}

// PageRank returns scores by power iteration along outgoing relationships,
// stopping once no score moves by more than 1e-15. The rank of nodes
// without outgoing relationships is not redistributed. With weighted set,
// a node's rank is split in proportion to relationship weights.
func PageRank(g graph.Graph, damping float64, weighted bool) []float64 {
	n := g.NodeCount()
	outWeight := make([]float64, n)
	for node := range n {
		g.ForEachRelationship(node, graph.Outgoing, func(_, _ int64, w float64) bool {
			if !weighted {
				w = 1
			}
			outWeight[node] += w
			return true
		})
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}
	next := make([]float64, n)
	for range 10000 {
		for i := range next {
			next[i] = (1 - damping) / float64(n)
		}
		for node := range n {
			if outWeight[node] == 0 {
				continue
			}
			share := damping * rank[node] / outWeight[node]
			g.ForEachRelationship(node, graph.Outgoing, func(_, target int64, w float64) bool {
				if !weighted {
					w = 1
				}
				next[target] += share * w
				return true
			})
		}

		var diff float64
		for i := range rank {
			diff = max(diff, math.Abs(next[i]-rank[i]))
		}
		rank, next = next, rank
		if diff < 1e-15 {
			break
		}
	}
	return rank
}
