package pregel

import (
	"fmt"

	"github.com/roach88/pregel/internal/graph"
)

// Partition is a contiguous range of node ids processed by one task.
type Partition struct {
	Index int
	Start int64
	Count int64
}

// End returns one past the last node id of the partition.
func (p Partition) End() int64 {
	return p.Start + p.Count
}

// Contains reports whether node belongs to the partition.
func (p Partition) Contains(node int64) bool {
	return node >= p.Start && node < p.End()
}

// String implements fmt.Stringer.
func (p Partition) String() string {
	return fmt.Sprintf("partition %d [%d, %d)", p.Index, p.Start, p.End())
}

// Partitions splits [0, g.NodeCount()) into at most concurrency contiguous,
// non-empty ranges that together cover every node exactly once.
//
// Degree partitioning balances the sum of degree+1 per range, counting
// relationships in dir, so that nodes without relationships still carry
// weight.
func Partitions(g graph.Graph, strategy Partitioning, dir graph.Direction, concurrency int) []Partition {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if int64(concurrency) > n {
		concurrency = int(n)
	}

	if strategy == PartitionAuto {
		strategy = PartitionRange
		if concurrency > 1 {
			strategy = PartitionDegree
		}
	}
	if strategy == PartitionDegree && concurrency > 1 {
		return degreePartitions(g, dir, concurrency)
	}
	return rangePartitions(n, concurrency)
}

func rangePartitions(n int64, k int) []Partition {
	parts := make([]Partition, 0, k)
	size := n / int64(k)
	rem := n % int64(k)
	start := int64(0)
	for i := 0; i < k; i++ {
		count := size
		if int64(i) < rem {
			count++
		}
		parts = append(parts, Partition{Index: i, Start: start, Count: count})
		start += count
	}
	return parts
}

func degreePartitions(g graph.Graph, dir graph.Direction, k int) []Partition {
	n := g.NodeCount()
	weights := make([]int64, n)
	var total int64
	for node := int64(0); node < n; node++ {
		weights[node] = int64(g.Degree(node, dir)) + 1
		total += weights[node]
	}

	target := (total + int64(k) - 1) / int64(k)
	parts := make([]Partition, 0, k)
	start := int64(0)
	var acc int64
	for node := int64(0); node < n; node++ {
		acc += weights[node]
		remainingNodes := n - node - 1
		remainingParts := int64(k - len(parts) - 1)
		if remainingParts == 0 {
			break
		}
		// Close the range once it reaches its share, or when every remaining
		// partition needs at least one of the remaining nodes.
		if acc >= target || remainingNodes == remainingParts {
			parts = append(parts, Partition{Index: len(parts), Start: start, Count: node - start + 1})
			start = node + 1
			acc = 0
		}
	}
	parts = append(parts, Partition{Index: len(parts), Start: start, Count: n - start})
	return parts
}
