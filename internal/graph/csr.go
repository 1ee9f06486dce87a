package graph

import (
	"cmp"
	"fmt"
	"slices"
)

// CSR is an in-memory compressed-sparse-row Graph.
//
// Adjacency for each node is sorted by target id. The inverse index is
// only built when requested via Builder.WithInverseIndex.
type CSR struct {
	originals []int64
	mapping   map[int64]int64

	outOffsets []int64
	outTargets []int64
	outWeights []float64

	inOffsets []int64
	inTargets []int64
	inWeights []float64

	weighted bool
	inverse  bool
	multi    bool

	properties map[string]nodeProperty
}

type nodeProperty struct {
	values  []float64
	present []bool
}

var _ Graph = (*CSR)(nil)

// NodeCount implements Graph.
func (g *CSR) NodeCount() int64 {
	return int64(len(g.originals))
}

// RelationshipCount implements Graph.
func (g *CSR) RelationshipCount() int64 {
	return int64(len(g.outTargets))
}

// Degree implements Graph.
func (g *CSR) Degree(node int64, dir Direction) int {
	switch dir {
	case Outgoing:
		return int(g.outOffsets[node+1] - g.outOffsets[node])
	case Incoming:
		g.requireInverse(dir)
		return int(g.inOffsets[node+1] - g.inOffsets[node])
	default:
		g.requireInverse(dir)
		return int(g.outOffsets[node+1]-g.outOffsets[node]) + int(g.inOffsets[node+1]-g.inOffsets[node])
	}
}

// ForEachRelationship implements Graph.
func (g *CSR) ForEachRelationship(node int64, dir Direction, fn RelationshipConsumer) {
	switch dir {
	case Outgoing:
		forEach(node, g.outOffsets, g.outTargets, g.outWeights, fn)
	case Incoming:
		g.requireInverse(dir)
		forEach(node, g.inOffsets, g.inTargets, g.inWeights, fn)
	default:
		g.requireInverse(dir)
		if !forEach(node, g.outOffsets, g.outTargets, g.outWeights, fn) {
			return
		}
		forEach(node, g.inOffsets, g.inTargets, g.inWeights, fn)
	}
}

// forEach returns false if fn stopped the iteration.
func forEach(node int64, offsets, targets []int64, weights []float64, fn RelationshipConsumer) bool {
	for i := offsets[node]; i < offsets[node+1]; i++ {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if !fn(node, targets[i], w) {
			return false
		}
	}
	return true
}

func (g *CSR) requireInverse(dir Direction) {
	if !g.inverse {
		panic(fmt.Sprintf("graph: %s traversal requires an inverse index", dir))
	}
}

// HasRelationshipWeights implements Graph.
func (g *CSR) HasRelationshipWeights() bool { return g.weighted }

// HasInverseIndex implements Graph.
func (g *CSR) HasInverseIndex() bool { return g.inverse }

// IsMultiGraph implements Graph.
func (g *CSR) IsMultiGraph() bool { return g.multi }

// ToOriginalID implements Graph.
func (g *CSR) ToOriginalID(node int64) int64 {
	return g.originals[node]
}

// ToMappedID implements Graph.
func (g *CSR) ToMappedID(original int64) (int64, bool) {
	id, ok := g.mapping[original]
	return id, ok
}

// NodeProperty implements Graph.
func (g *CSR) NodeProperty(key string, node int64) (float64, bool) {
	p, ok := g.properties[key]
	if !ok || node < 0 || node >= int64(len(p.values)) || !p.present[node] {
		return 0, false
	}
	return p.values[node], true
}

type relationship struct {
	source int64
	target int64
	weight float64
}

// Builder assembles a CSR from original node ids.
//
// Nodes are assigned dense ids in the order they are first seen, either via
// AddNode or as an endpoint of a relationship.
type Builder struct {
	originals []int64
	mapping   map[int64]int64
	rels      []relationship
	weighted  bool
	inverse   bool
	props     map[string]map[int64]float64
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		mapping: make(map[int64]int64),
		props:   make(map[string]map[int64]float64),
	}
}

// WithInverseIndex makes Build also construct incoming adjacency.
func (b *Builder) WithInverseIndex() *Builder {
	b.inverse = true
	return b
}

// AddNode registers an original id and returns its dense id.
// Adding the same original id twice returns the existing dense id.
func (b *Builder) AddNode(original int64) int64 {
	if id, ok := b.mapping[original]; ok {
		return id
	}
	id := int64(len(b.originals))
	b.originals = append(b.originals, original)
	b.mapping[original] = id
	return id
}

// AddRelationship adds an unweighted relationship between two original ids.
func (b *Builder) AddRelationship(source, target int64) {
	b.rels = append(b.rels, relationship{
		source: b.AddNode(source),
		target: b.AddNode(target),
		weight: 1.0,
	})
}

// AddWeightedRelationship adds a weighted relationship between two original ids.
// A graph with at least one weighted relationship reports HasRelationshipWeights.
func (b *Builder) AddWeightedRelationship(source, target int64, weight float64) {
	b.weighted = true
	b.rels = append(b.rels, relationship{
		source: b.AddNode(source),
		target: b.AddNode(target),
		weight: weight,
	})
}

// SetNodeProperty sets a numeric property for an original id, adding the node if needed.
func (b *Builder) SetNodeProperty(key string, original int64, value float64) {
	b.AddNode(original)
	m, ok := b.props[key]
	if !ok {
		m = make(map[int64]float64)
		b.props[key] = m
	}
	m[original] = value
}

// Build produces the immutable CSR. The Builder must not be reused.
func (b *Builder) Build() *CSR {
	n := int64(len(b.originals))
	g := &CSR{
		originals: b.originals,
		mapping:   b.mapping,
		weighted:  b.weighted,
		inverse:   b.inverse,
	}

	rels := slices.Clone(b.rels)
	slices.SortStableFunc(rels, func(x, y relationship) int {
		if x.source != y.source {
			return cmp.Compare(x.source, y.source)
		}
		return cmp.Compare(x.target, y.target)
	})
	for i := 1; i < len(rels); i++ {
		if rels[i].source == rels[i-1].source && rels[i].target == rels[i-1].target {
			g.multi = true
			break
		}
	}

	g.outOffsets, g.outTargets, g.outWeights = compress(n, rels, b.weighted, false)
	if b.inverse {
		inv := slices.Clone(b.rels)
		slices.SortStableFunc(inv, func(x, y relationship) int {
			if x.target != y.target {
				return cmp.Compare(x.target, y.target)
			}
			return cmp.Compare(x.source, y.source)
		})
		g.inOffsets, g.inTargets, g.inWeights = compress(n, inv, b.weighted, true)
	}

	g.properties = make(map[string]nodeProperty, len(b.props))
	for key, byOriginal := range b.props {
		p := nodeProperty{values: make([]float64, n), present: make([]bool, n)}
		for original, v := range byOriginal {
			id := b.mapping[original]
			p.values[id] = v
			p.present[id] = true
		}
		g.properties[key] = p
	}

	return g
}

// compress builds offsets/targets/weights from relationships sorted by their
// key endpoint (source, or target when inverse is set).
func compress(n int64, rels []relationship, weighted, inverse bool) ([]int64, []int64, []float64) {
	offsets := make([]int64, n+1)
	targets := make([]int64, len(rels))
	var weights []float64
	if weighted {
		weights = make([]float64, len(rels))
	}

	for i, r := range rels {
		key, other := r.source, r.target
		if inverse {
			key, other = r.target, r.source
		}
		offsets[key+1]++
		targets[i] = other
		if weighted {
			weights[i] = r.weight
		}
	}
	for i := int64(1); i <= n; i++ {
		offsets[i] += offsets[i-1]
	}
	return offsets, targets, weights
}
