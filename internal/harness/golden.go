package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pregel/internal/canonical"
)

// Snapshot renders a result as canonical JSON. Nodes are listed by dense id
// and labelled with their original ids; only public slots appear.
//
// Asynchronous runs omit ran_supersteps, which depends on scheduling.
func Snapshot(name string, r *Result) ([]byte, error) {
	snap := map[string]any{
		"scenario":     name,
		"algorithm":    r.Algorithm.Name,
		"config":       r.Config.Map(),
		"state":        r.Run.State.String(),
		"did_converge": r.Run.DidConverge,
	}
	if !r.Config.Asynchronous {
		snap["ran_supersteps"] = r.Run.RanSupersteps
	}

	nodes := []any{}
	if r.Run.Values != nil {
		for node := int64(0); node < r.Run.Values.NodeCount(); node++ {
			slots := make(map[string]any, len(r.Run.Slots))
			for _, e := range r.Run.Slots {
				v, err := r.Run.Values.Get(node, e.Name)
				if err != nil {
					return nil, fmt.Errorf("snapshot node %d: %w", node, err)
				}
				slots[e.Name] = v.Plain()
			}
			nodes = append(nodes, map[string]any{
				"id":     r.Graph.ToOriginalID(node),
				"values": slots,
			})
		}
	}
	snap["nodes"] = nodes

	return canonical.Marshal(snap)
}

// RunWithGolden executes a scenario, fails the test on assertion errors and
// compares the snapshot against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
