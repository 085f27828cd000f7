package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
)

// RunRepository implements models.Repository[*models.CurationRun] for run history.
//
// Handles run CRUD operations with soft delete support and period-based lookups.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record builds a run from the curation output, allocating its sequence
// number and ID, and persists it. Satisfies the engine's run store.
func (r *RunRepository) Record(period, title, description string, trackIDs []string) (*models.CurationRun, error) {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	run := models.NewCurationRun(sequence, period, title, description, trackIDs)
	if err := r.insert(run); err != nil {
		return nil, err
	}
	return run, nil
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.CurationRun) error {
	return r.insert(run)
}

func (r *RunRepository) insert(run *models.CurationRun) error {
	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	trackIDs, err := json.Marshal(run.TrackIDs())
	if err != nil {
		return fmt.Errorf("failed to encode track IDs: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, period, title, description, track_ids, track_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		run.Sequence(),
		run.Period(),
		run.Title(),
		run.Description(),
		string(trackIDs),
		run.TrackCount(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.CurationRun, error) {
	query := `
		SELECT id, sequence, period, title, description, track_ids, created_at, updated_at, deleted_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Latest retrieves the most recent run, optionally restricted to a period.
func (r *RunRepository) Latest(period string) (*models.CurationRun, error) {
	query := `
		SELECT id, sequence, period, title, description, track_ids, created_at, updated_at, deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if period != "" {
		query += " AND period = ?"
		args = append(args, period)
	}
	query += " ORDER BY sequence DESC LIMIT 1"

	return r.scanOne(r.db.QueryRow(query, args...))
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.CurationRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	trackIDs, err := json.Marshal(run.TrackIDs())
	if err != nil {
		return fmt.Errorf("failed to encode track IDs: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET title = ?, description = ?, track_ids = ?, track_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Title(),
		run.Description(),
		string(trackIDs),
		run.TrackCount(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run not found or already deleted: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run not found or already deleted: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves all runs matching the given criteria, excluding soft-deleted runs
func (r *RunRepository) List(criteria map[string]any) ([]*models.CurationRun, error) {
	query := `
		SELECT id, sequence, period, title, description, track_ids, created_at, updated_at, deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if period, ok := criteria["period"].(string); ok && period != "" {
		query += " AND period = ?"
		args = append(args, period)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.CurationRun
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanOne scans a single row into a [models.CurationRun]
func (r *RunRepository) scanOne(row *sql.Row) (*models.CurationRun, error) {
	var (
		id          string
		sequence    int
		period      string
		title       string
		description sql.NullString
		trackIDsRaw string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &period, &title, &description, &trackIDsRaw, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return restoreRun(id, sequence, period, title, description, trackIDsRaw, createdAt, updatedAt, deletedAt)
}

// scanRow scans a row from [sql.Rows] into a [models.CurationRun]
func (r *RunRepository) scanRow(rows *sql.Rows) (*models.CurationRun, error) {
	var (
		id          string
		sequence    int
		period      string
		title       string
		description sql.NullString
		trackIDsRaw string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &period, &title, &description, &trackIDsRaw, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return restoreRun(id, sequence, period, title, description, trackIDsRaw, createdAt, updatedAt, deletedAt)
}

func restoreRun(id string, sequence int, period, title string, description sql.NullString, trackIDsRaw string, createdAt, updatedAt time.Time, deletedAt sql.NullTime) (*models.CurationRun, error) {
	var trackIDs []string
	if err := json.Unmarshal([]byte(trackIDsRaw), &trackIDs); err != nil {
		return nil, fmt.Errorf("failed to decode track IDs: %w", err)
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestoreCurationRun(id, sequence, period, title, description.String, trackIDs, createdAt, updatedAt, deleted), nil
}
