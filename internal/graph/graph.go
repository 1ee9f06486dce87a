// Package graph defines the read-only topology the Pregel engine runs on.
//
// Node ids are dense: 0..NodeCount()-1. Callers that load graphs from
// external sources keep their own ids as "original ids"; the Graph maps
// between the two.
//
// A Graph is immutable for the lifetime of any computation using it and is
// safe for concurrent readers.
package graph

import "fmt"

// Direction selects which relationships of a node are traversed.
type Direction int

const (
	// Outgoing follows relationships from the node to its targets.
	Outgoing Direction = iota
	// Incoming follows relationships pointing at the node (requires an inverse index).
	Incoming
	// Undirected follows outgoing then incoming relationships.
	Undirected
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Undirected:
		return "undirected"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// NeedsInverseIndex reports whether traversing in d requires incoming adjacency.
func (d Direction) NeedsInverseIndex() bool {
	return d == Incoming || d == Undirected
}

// ParseDirection converts a lowercase direction name into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "outgoing", "":
		return Outgoing, nil
	case "incoming":
		return Incoming, nil
	case "undirected":
		return Undirected, nil
	default:
		return Outgoing, fmt.Errorf("unknown direction %q: must be one of outgoing, incoming, undirected", s)
	}
}

// RelationshipConsumer visits one relationship. Source is always the node
// being iterated and target the neighbor, regardless of direction.
// Returning false stops the iteration.
type RelationshipConsumer func(source, target int64, weight float64) bool

// Graph is the read-only graph handle consumed by the engine.
type Graph interface {
	// NodeCount returns the number of nodes. Node ids are 0..NodeCount()-1.
	NodeCount() int64

	// RelationshipCount returns the number of stored (outgoing) relationships.
	RelationshipCount() int64

	// Degree returns the number of relationships of node in the given direction.
	Degree(node int64, dir Direction) int

	// ForEachRelationship calls fn for each relationship of node in dir.
	// Unweighted graphs report a weight of 1.0.
	ForEachRelationship(node int64, dir Direction, fn RelationshipConsumer)

	// HasRelationshipWeights reports whether weights were loaded.
	HasRelationshipWeights() bool

	// HasInverseIndex reports whether Incoming traversal is available.
	HasInverseIndex() bool

	// IsMultiGraph reports whether any (source, target) pair occurs twice.
	IsMultiGraph() bool

	// ToOriginalID maps a dense node id back to the id it was loaded with.
	ToOriginalID(node int64) int64

	// ToMappedID maps an original id to its dense node id.
	ToMappedID(original int64) (int64, bool)

	// NodeProperty returns the value of a numeric node property, if set.
	NodeProperty(key string, node int64) (float64, bool)
}
