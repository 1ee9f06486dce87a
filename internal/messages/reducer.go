package messages

import (
	"fmt"
	"math"
	"strings"
)

// Reducer folds all messages sent to one target in one superstep into a
// single value. Reduce must be commutative and associative because senders
// run concurrently in no particular order.
type Reducer interface {
	// Identity is the value of an empty fold.
	Identity() float64
	// Reduce combines the current fold with one more message.
	Reduce(current, message float64) float64
	// Name identifies the reducer in logs and configuration.
	Name() string
}

// Sum adds all messages.
type Sum struct{}

func (Sum) Identity() float64 { return 0 }
func (Sum) Reduce(current, m float64) float64 { return current + m }
func (Sum) Name() string { return "sum" }

// Min keeps the smallest message.
type Min struct{}

func (Min) Identity() float64 { return math.Inf(1) }
func (Min) Reduce(current, m float64) float64 { return math.Min(current, m) }
func (Min) Name() string { return "min" }

// Max keeps the largest message.
type Max struct{}

func (Max) Identity() float64 { return math.Inf(-1) }
func (Max) Reduce(current, m float64) float64 { return math.Max(current, m) }
func (Max) Name() string { return "max" }

// Count counts messages, ignoring their payloads.
type Count struct{}

func (Count) Identity() float64 { return 0 }
func (Count) Reduce(current, _ float64) float64 { return current + 1 }
func (Count) Name() string { return "count" }

// ParseReducer returns the reducer with the given name. The empty string
// and "none" mean no reducer.
func ParseReducer(name string) (Reducer, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return nil, nil
	case "sum":
		return Sum{}, nil
	case "min":
		return Min{}, nil
	case "max":
		return Max{}, nil
	case "count":
		return Count{}, nil
	default:
		return nil, fmt.Errorf("unknown reducer %q (expected sum, min, max, count or none)", name)
	}
}
