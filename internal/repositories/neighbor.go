package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// NeighborRepository persists sonic neighbor lists fetched from the catalog.
//
// Later runs warm their similarity caches from here instead of re-querying
// the catalog for every track. Lists are stored per (track, neighbor) pair
// with the position in the ranked list and the limit they were fetched with;
// a list fetched with a smaller limit than requested is treated as a miss so
// it gets refreshed at full depth.
type NeighborRepository struct {
	db *sql.DB
}

// NewNeighborRepository creates a new NeighborRepository with the given database connection
func NewNeighborRepository(db *sql.DB) *NeighborRepository {
	return &NeighborRepository{db: db}
}

// Neighbors returns the cached neighbor list for a track, closest first, or
// nil when no list fetched at this limit or deeper exists.
func (r *NeighborRepository) Neighbors(trackID string, limit int) ([]string, error) {
	query := `
		SELECT neighbor_id
		FROM neighbors
		WHERE track_id = ? AND fetch_limit >= ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, trackID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	defer rows.Close()

	var neighbors []string
	for rows.Next() {
		var neighborID string
		if err := rows.Scan(&neighborID); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor: %w", err)
		}
		neighbors = append(neighbors, neighborID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	// A list stored at a deeper limit satisfies the query but carries extra
	// entries; callers get at most limit neighbors.
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// SaveNeighbors replaces the stored neighbor list for a track.
func (r *NeighborRepository) SaveNeighbors(trackID string, neighbors []string, limit int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM neighbors WHERE track_id = ?", trackID); err != nil {
		return fmt.Errorf("failed to clear neighbors: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO neighbors (track_id, neighbor_id, position, fetch_limit, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, neighborID := range neighbors {
		if _, err := tx.Exec(query, trackID, neighborID, i, limit, now); err != nil {
			return fmt.Errorf("failed to insert neighbor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit neighbors: %w", err)
	}

	return nil
}

// Prune removes neighbor lists older than the given age so stale similarity
// data eventually refreshes.
func (r *NeighborRepository) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)

	result, err := r.db.Exec("DELETE FROM neighbors WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune neighbors: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
