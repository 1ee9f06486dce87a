package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run and its node values in one transaction. The run is
// given a fresh id when ID is empty and is always stamped with the next seq.
// The stored record is returned.
func (s *Store) WriteRun(ctx context.Context, run Run, nodeValues []NodeValue) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	run.Seq = s.clock.Next()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, algorithm, config, state, ran_supersteps, did_converge, node_count, result_slot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Algorithm,
		run.Config,
		run.State,
		run.RanSupersteps,
		run.DidConverge,
		run.NodeCount,
		run.ResultSlot,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO node_values (run_id, node_id, original_id, slot, value_type, value)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write node values: %w", err)
	}
	defer stmt.Close()

	for _, nv := range nodeValues {
		if _, err := stmt.ExecContext(ctx, run.ID, nv.NodeID, nv.OriginalID, nv.Slot, nv.Type, nv.Value); err != nil {
			return Run{}, fmt.Errorf("write node %d slot %q: %w", nv.NodeID, nv.Slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	return run, nil
}
