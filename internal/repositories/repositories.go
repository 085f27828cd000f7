// package repositories provides persistence layer implementations for curation data.
//
// RunRepository implements models.Repository[*models.CurationRun] for run
// history, handling CRUD operations, soft deletes, and sequence generation.
// NeighborRepository persists fetched sonic neighbor lists so later runs can
// warm their similarity caches without re-querying the catalog.
package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence atomically increments and returns the counter in
// <table>_sequence. Sequence numbers give runs the short human-readable
// handles shown in CLI output (run #42), independent of their UUIDs.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	counter := table + "_sequence"
	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", counter)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", counter)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}
	return sequence, nil
}
