// Package harness runs YAML scenario files against the pregel engine.
//
// # Scenario Format
//
//	name: connected_components
//	description: "Two components, one isolated node"
//	graph:
//	  nodes: [0, 1, 2, 3, 4]
//	  relationships:
//	    - {source: 0, target: 1}
//	    - {source: 2, target: 3, weight: 0.5}
//	  properties:
//	    seed: {0: 7}
//	config:
//	  algorithm: wcc
//	  concurrency: 2
//	assertions:
//	  - type: converged
//	    value: true
//	  - type: supersteps
//	    count: 4
//	  - type: values
//	    slot: component
//	    expect: {0: 0, 4: 4}
//	  - type: same_value
//	    slot: component
//	    nodes: [0, 1, 2, 3]
//	  - type: distinct_value
//	    slot: component
//	    nodes: [0, 4]
//
// Node ids in a scenario are original ids. The graph is always built with an
// inverse index. The config block is validated by internal/config exactly
// like a run file.
//
// # Assertion Types
//
//   - converged: did_converge equals value
//   - supersteps: the run completed exactly count supersteps
//   - values: the listed nodes hold the expected values (numeric values
//     within tolerance)
//   - same_value: all listed nodes hold one value
//   - distinct_value: the listed nodes hold pairwise different values
//
// # Golden Snapshots
//
// RunWithGolden compares a canonical JSON snapshot of the final values with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
