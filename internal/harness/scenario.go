package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pregel/internal/graph"
)

// Scenario is one graph, one run configuration and the expectations on the
// result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Graph GraphSpec `yaml:"graph"`

	// Config is a run configuration in the same shape as a run file.
	Config map[string]any `yaml:"config"`

	Assertions []Assertion `yaml:"assertions"`
}

// GraphSpec is an inline graph keyed by original ids.
type GraphSpec struct {
	// Nodes are added first, in order, so their dense ids follow the list.
	Nodes         []int64            `yaml:"nodes,omitempty"`
	Relationships []RelationshipSpec `yaml:"relationships,omitempty"`
	// Properties maps property key to original id to value.
	Properties map[string]map[int64]float64 `yaml:"properties,omitempty"`
}

// RelationshipSpec is one directed relationship.
type RelationshipSpec struct {
	Source int64    `yaml:"source"`
	Target int64    `yaml:"target"`
	Weight *float64 `yaml:"weight,omitempty"`
}

// Assertion validates the run result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Slot is the value slot (values, same_value, distinct_value).
	Slot string `yaml:"slot,omitempty"`

	// Nodes are original ids (same_value, distinct_value).
	Nodes []int64 `yaml:"nodes,omitempty"`

	// Expect maps original id to expected value (values).
	Expect map[int64]any `yaml:"expect,omitempty"`

	// Tolerance bounds numeric differences (values). Zero means exact.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Value is the expected convergence flag (converged).
	Value *bool `yaml:"value,omitempty"`

	// Count is the expected number of supersteps (supersteps).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertConverged     = "converged"
	AssertSupersteps    = "supersteps"
	AssertValues        = "values"
	AssertSameValue     = "same_value"
	AssertDistinctValue = "distinct_value"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted. A
// non-empty filter is a glob matched against file names without extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// BuildGraph builds the scenario graph.
func (s *Scenario) BuildGraph() graph.Graph {
	return s.Graph.Build()
}

// Build builds the graph with an inverse index.
func (gs GraphSpec) Build() graph.Graph {
	b := graph.NewBuilder().WithInverseIndex()
	for _, id := range gs.Nodes {
		b.AddNode(id)
	}
	for _, r := range gs.Relationships {
		if r.Weight != nil {
			b.AddWeightedRelationship(r.Source, r.Target, *r.Weight)
		} else {
			b.AddRelationship(r.Source, r.Target)
		}
	}

	keys := make([]string, 0, len(gs.Properties))
	for k := range gs.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		props := gs.Properties[key]
		ids := make([]int64, 0, len(props))
		for id := range props {
			ids = append(ids, id)
		}
		// Sorted so nodes first seen here get stable dense ids.
		slices.Sort(ids)
		for _, id := range ids {
			b.SetNodeProperty(key, id, props[id])
		}
	}
	return b.Build()
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Config) == 0 {
		return fmt.Errorf("config is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertConverged:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: converged requires value", index)
		}
	case AssertSupersteps:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: supersteps requires count", index)
		}
	case AssertValues:
		if a.Slot == "" || len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: values requires slot and expect", index)
		}
	case AssertSameValue, AssertDistinctValue:
		if a.Slot == "" || len(a.Nodes) < 2 {
			return fmt.Errorf("assertions[%d]: %s requires slot and at least two nodes", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must not be negative", index)
	}
	return nil
}

// LoadGraph reads a YAML graph file in the GraphSpec shape.
func LoadGraph(path string) (graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	var spec GraphSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse graph YAML: %w", err)
	}
	return spec.Build(), nil
}
