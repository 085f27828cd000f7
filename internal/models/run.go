package models

import (
	"fmt"
	"time"
)

// CurationRun is the persisted record of one completed curation run.
//
// Implements [Model]. The track listing is stored as an ordered ID slice;
// track metadata itself is not persisted (the catalog owns it).
type CurationRun struct {
	id          string
	sequence    int
	period      string
	title       string
	description string
	trackIDs    []string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewCurationRun creates a CurationRun for the given period and playlist naming.
// The ID is assigned by the repository on Create.
func NewCurationRun(sequence int, period, title, description string, trackIDs []string) *CurationRun {
	now := time.Now()
	return &CurationRun{
		sequence:    sequence,
		period:      period,
		title:       title,
		description: description,
		trackIDs:    trackIDs,
		createdAt:   now,
		updatedAt:   now,
	}
}

// RestoreCurationRun rebuilds a CurationRun from persisted row data.
func RestoreCurationRun(id string, sequence int, period, title, description string, trackIDs []string, createdAt, updatedAt time.Time, deletedAt *time.Time) *CurationRun {
	return &CurationRun{
		id:          id,
		sequence:    sequence,
		period:      period,
		title:       title,
		description: description,
		trackIDs:    trackIDs,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		deletedAt:   deletedAt,
	}
}

func (r *CurationRun) ID() string           { return r.id }
func (r *CurationRun) Sequence() int        { return r.sequence }
func (r *CurationRun) Period() string       { return r.period }
func (r *CurationRun) Title() string        { return r.title }
func (r *CurationRun) Description() string  { return r.description }
func (r *CurationRun) TrackIDs() []string   { return r.trackIDs }
func (r *CurationRun) TrackCount() int      { return len(r.trackIDs) }
func (r *CurationRun) CreatedAt() time.Time { return r.createdAt }
func (r *CurationRun) UpdatedAt() time.Time { return r.updatedAt }
func (r *CurationRun) DeletedAt() *time.Time {
	return r.deletedAt
}

// SetID assigns the unique identifier. Called by the repository on Create.
func (r *CurationRun) SetID(id string) { r.id = id }

// SetUpdatedAt updates the modification timestamp.
func (r *CurationRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Validate checks the run's data before persistence.
func (r *CurationRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("curation run missing id")
	}
	if r.period == "" {
		return fmt.Errorf("curation run missing period")
	}
	if r.title == "" {
		return fmt.Errorf("curation run missing title")
	}
	if len(r.trackIDs) == 0 {
		return fmt.Errorf("curation run has no tracks")
	}

	seen := make(map[string]struct{}, len(r.trackIDs))
	for _, id := range r.trackIDs {
		if id == "" {
			return fmt.Errorf("curation run contains empty track id")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("curation run contains duplicate track id %s", id)
		}
		seen[id] = struct{}{}
	}

	return nil
}
