package sqlite

import (
	"database/sql"

	"railio/internal/domain"
	"railio/internal/ports"
)

// runTx implements ports.RunTx
type runTx struct {
	tx *sql.Tx
}

// Ensure runTx implements RunTx
var _ ports.RunTx = (*runTx)(nil)

// InsertRun stores a run row
func (t *runTx) InsertRun(run *domain.Run) error {
	_, err := t.tx.Exec(`
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.Version, run.Policy, run.CreatedAt.UnixNano(),
		run.Tracks, run.Nodes, run.Edges, run.Objects, run.Warnings, run.Dump)
	return err
}

// InsertCounts stores the per-kind object counts of a run
func (t *runTx) InsertCounts(runID string, counts map[domain.ObjectKind]int) error {
	stmt, err := t.tx.Prepare(`INSERT OR REPLACE INTO run_counts (run_id, kind, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for kind, n := range counts {
		if _, err := stmt.Exec(runID, string(kind), n); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRun removes a run and its counts
func (t *runTx) DeleteRun(id string) error {
	if _, err := t.tx.Exec(`DELETE FROM run_counts WHERE run_id = ?`, id); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM runs WHERE id = ?`, id)
	return err
}

// Commit commits the transaction
func (t *runTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *runTx) Rollback() error {
	return t.tx.Rollback()
}
