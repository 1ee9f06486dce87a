package pregel

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxSupersteps caps a run when the configuration leaves it unset.
	DefaultMaxSupersteps = 20
	// DefaultConcurrency is the worker pool size when unset.
	DefaultConcurrency = 4
)

// Partitioning selects how the node id space is split across workers.
type Partitioning string

const (
	// PartitionRange splits nodes into ranges of equal size.
	PartitionRange Partitioning = "range"
	// PartitionDegree splits nodes into contiguous ranges of roughly equal
	// total degree.
	PartitionDegree Partitioning = "degree"
	// PartitionAuto uses degree partitioning when more than one worker runs
	// and range partitioning otherwise.
	PartitionAuto Partitioning = "auto"
)

// ParsePartitioning parses a partitioning name. The empty string means auto.
func ParsePartitioning(s string) (Partitioning, error) {
	switch p := Partitioning(strings.ToLower(s)); p {
	case "":
		return PartitionAuto, nil
	case PartitionRange, PartitionDegree, PartitionAuto:
		return p, nil
	default:
		return "", fmt.Errorf("unknown partitioning %q (expected range, degree or auto)", s)
	}
}

// Config is the run configuration consumed by the engine.
//
// The engine does not validate it beyond normalizing zero values; range
// checks belong to the configuration layer.
type Config struct {
	// MaxSupersteps is the hard cap on compute supersteps.
	MaxSupersteps int
	// Concurrency is the worker pool size and the number of partitions.
	Concurrency int
	// Asynchronous makes messages visible within the superstep they are sent in.
	Asynchronous bool
	// Partitioning selects the partitioning strategy.
	Partitioning Partitioning
	// UseWeights applies relationship weights in SendToNeighbors.
	UseWeights bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		MaxSupersteps: DefaultMaxSupersteps,
		Concurrency:   DefaultConcurrency,
		Partitioning:  PartitionAuto,
	}
}

func (c Config) normalized() Config {
	if c.MaxSupersteps < 1 {
		c.MaxSupersteps = DefaultMaxSupersteps
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Partitioning == "" {
		c.Partitioning = PartitionAuto
	}
	return c
}
