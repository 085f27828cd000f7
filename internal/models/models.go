// package models defines the data model for the playlist curation service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the curation service.
// Implementations include CurationRun.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Track is an immutable value snapshot of a catalog track for the duration of a curation run.
//
// Catalogs represent compilation albums inconsistently: the performer field may
// read "Various Artists" while the real artist sits in the per-track credit, so
// both are carried along with a last-resort artist record title.
type Track struct {
	ID            string     // Opaque unique catalog identifier
	Title         string     // Raw track title as stored in the catalog
	Artist        string     // Performer field (may be "Various Artists" on compilations)
	OriginalTitle string     // Per-track artist credit on compilations, when present
	ArtistTitle   string     // Artist record title from the catalog, last-resort fallback
	Album         string     // Album title
	AlbumArtist   string     // Album-level artist name
	AlbumSubtype  string     // Album subtype/classification string (may be empty)
	Genres        []string   // Ordered genre labels, primary first
	Moods         []string   // Ordered mood labels
	Labels        []string   // Track-level labels (sharing exclusions etc.)
	AlbumLabels   []string   // Album-level labels
	Collections   []string   // Album collection memberships (seasonal gating)
	Rating        *float64   // Explicit user rating, nil when unrated
	AlbumRating   *float64   // Album user rating, nil when unrated
	ArtistRating  *float64   // Artist user rating, nil when unrated
	LastPlayedAt  *time.Time // Last play timestamp, nil when never played
	PlayCount     int        // Plays within the history lookback window
}

// PrimaryGenre returns the first genre label, or "Unknown" when the track has none.
func (t Track) PrimaryGenre() string {
	if len(t.Genres) == 0 {
		return "Unknown"
	}
	return t.Genres[0]
}

// CuratedPlaylist is the ordered output of a curation run.
//
// Invariants: no track repeats, length never exceeds the configured maximum,
// and when anchors exist they are the first and last elements.
type CuratedPlaylist struct {
	Period      string
	Title       string
	Description string
	Tracks      []Track
}

// TrackIDs returns the ordered track identifiers of the playlist.
func (p CuratedPlaylist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}
