package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, algorithm, config, state, ran_supersteps, did_converge, node_count, result_slot`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Seq, &r.Algorithm, &r.Config, &r.State,
		&r.RanSupersteps, &r.DidConverge, &r.NodeCount, &r.ResultSlot)
	return r, err
}

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns runs oldest first. A limit <= 0 returns every run;
// otherwise the most recent limit runs are returned, still oldest first.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq ASC, id COLLATE BINARY ASC`
	var args []any
	if limit > 0 {
		query = `SELECT ` + runColumns + ` FROM (
			SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?
		) ORDER BY seq ASC, id COLLATE BINARY ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadNodeValues returns the stored values of a run ordered by node id, then
// slot. An empty slot returns every slot.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadNodeValues(ctx context.Context, runID, slot string) ([]NodeValue, error) {
	query := `
		SELECT node_id, original_id, slot, value_type, value
		FROM node_values
		WHERE run_id = ?`
	args := []any{runID}
	if slot != "" {
		query += ` AND slot = ?`
		args = append(args, slot)
	}
	query += ` ORDER BY node_id ASC, slot COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query node values: %w", err)
	}
	defer rows.Close()

	out := []NodeValue{}
	for rows.Next() {
		var nv NodeValue
		if err := rows.Scan(&nv.NodeID, &nv.OriginalID, &nv.Slot, &nv.Type, &nv.Value); err != nil {
			return nil, fmt.Errorf("scan node value: %w", err)
		}
		out = append(out, nv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate node values: %w", err)
	}
	return out, nil
}
