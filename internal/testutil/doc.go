// Package testutil provides deterministic fixtures for engine and algorithm
// tests: seeded random graphs, reference results computed without the
// engine, and a discarding logger.
package testutil
