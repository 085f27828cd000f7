// package services defines interface CatalogProvider for interacting with music catalog HTTP APIs
//
// Plex is the only concrete implementation
package services

import (
	"context"
	"time"

	"github.com/desertthunder/meloday/internal/models"
)

// CatalogProvider defines the interface for music catalogs that can supply
// curation candidates, listening history and acoustic-similarity data.
type CatalogProvider interface {
	// FetchCandidates returns candidate tracks drawn from listening history
	// whose plays fall within the given daypart hours, looking back the given
	// number of days. Play counts and last-played timestamps are populated.
	FetchCandidates(ctx context.Context, hours []int, lookbackDays int) ([]models.Track, error)

	// SonicNeighbors returns the IDs of up to limit acoustically nearest
	// tracks for the given track, best match first.
	SonicNeighbors(ctx context.Context, trackID string, limit int) ([]string, error)

	// RecentlyPlayed returns last-play timestamps for all tracks played since
	// the given time, keyed by track ID.
	RecentlyPlayed(ctx context.Context, since time.Time) (map[string]time.Time, error)

	// Track retrieves a full track snapshot by ID, including album metadata.
	Track(ctx context.Context, trackID string) (*models.Track, error)

	// Name returns the name of the catalog (e.g., "Plex")
	Name() string
}
