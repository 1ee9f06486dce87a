package harness

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/pregel/internal/values"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func checkAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertConverged:
		if r.Run.DidConverge != *a.Value {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("did_converge=%t", *a.Value),
				Actual:   fmt.Sprintf("did_converge=%t after %d supersteps", r.Run.DidConverge, r.Run.RanSupersteps),
			}
		}
		return nil
	case AssertSupersteps:
		if r.Run.RanSupersteps != *a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d supersteps", *a.Count),
				Actual:   fmt.Sprintf("%d supersteps", r.Run.RanSupersteps),
			}
		}
		return nil
	case AssertValues:
		return assertValues(r, a)
	case AssertSameValue:
		return assertSame(r, a)
	case AssertDistinctValue:
		return assertDistinct(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// lookup returns the value of a node given by original id.
func lookup(r *Result, original int64, slot string) (values.Value, error) {
	node, ok := r.Graph.ToMappedID(original)
	if !ok {
		return values.Value{}, fmt.Errorf("node %d is not in the graph", original)
	}
	return r.Run.Values.Get(node, slot)
}

func assertValues(r *Result, a Assertion) error {
	var mismatches []string
	for _, original := range sortedKeys(a.Expect) {
		got, err := lookup(r, original, a.Slot)
		if err != nil {
			return err
		}
		if !matchValue(a.Expect[original], got.Plain(), a.Tolerance) {
			mismatches = append(mismatches, fmt.Sprintf("node %d: %v != %s", original, a.Expect[original], got))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("slot %q values", a.Slot),
			Actual:   strings.Join(mismatches, "; "),
		}
	}
	return nil
}

func assertSame(r *Result, a Assertion) error {
	first, err := lookup(r, a.Nodes[0], a.Slot)
	if err != nil {
		return err
	}
	for _, original := range a.Nodes[1:] {
		got, err := lookup(r, original, a.Slot)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(first.Plain(), got.Plain()) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("node %d to hold %s like node %d", original, first, a.Nodes[0]),
				Actual:   got.String(),
			}
		}
	}
	return nil
}

func assertDistinct(r *Result, a Assertion) error {
	seen := make(map[string]int64, len(a.Nodes))
	for _, original := range a.Nodes {
		got, err := lookup(r, original, a.Slot)
		if err != nil {
			return err
		}
		key := got.String()
		if other, dup := seen[key]; dup {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("nodes %d and %d to differ", other, original),
				Actual:   fmt.Sprintf("both hold %s", key),
			}
		}
		seen[key] = original
	}
	return nil
}

// matchValue compares a YAML-decoded expectation with Value.Plain output.
func matchValue(expected, actual any, tol float64) bool {
	switch act := actual.(type) {
	case int64:
		if e, ok := expected.(int); ok {
			return int64(e) == act
		}
		e, ok := toFloat(expected)
		return ok && withinTolerance(e, float64(act), tol)
	case float64:
		e, ok := toFloat(expected)
		return ok && withinTolerance(e, act, tol)
	case string:
		e, ok := expected.(string)
		return ok && e == act
	case []int64:
		list, ok := expected.([]any)
		if !ok || len(list) != len(act) {
			return false
		}
		for i := range act {
			if !matchValue(list[i], act[i], tol) {
				return false
			}
		}
		return true
	case []any:
		list, ok := expected.([]any)
		if !ok || len(list) != len(act) {
			return false
		}
		for i := range act {
			if !matchValue(list[i], act[i], tol) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func withinTolerance(expected, actual, tol float64) bool {
	if expected == actual {
		return true
	}
	return math.Abs(expected-actual) <= tol
}

func sortedKeys[V any](m map[int64]V) []int64 {
	return slices.Sorted(maps.Keys(m))
}
