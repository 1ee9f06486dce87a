// Package store persists Pregel run results in SQLite.
//
// Two tables are kept:
//   - runs: one row per run (id, seq, algorithm, canonical config, terminal
//     state, supersteps, convergence, node count)
//   - node_values: the public slot values of every node of a halted run,
//     encoded as canonical JSON
//
// # Ordering
//
// Runs are stamped with seq from a logical clock seeded from MAX(seq) on
// Open. Every listing query orders by seq ASC, id ASC COLLATE BINARY, so
// results do not depend on wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
