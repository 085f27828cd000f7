package curate

import (
	"fmt"
	"testing"

	"github.com/desertthunder/meloday/internal/models"
)

func TestArtistLimit(t *testing.T) {
	tests := []struct {
		maxTracks int
		fraction  float64
		want      int
	}{
		{50, 0.05, 3},  // 2.5 rounds up
		{20, 0.05, 1},  // Scenario: tiny playlists still allow one per artist
		{100, 0.05, 5},
		{10, 0.05, 1},  // 0.5 rounds to 1
		{1, 0.05, 1},   // floor of one
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_tracks", tt.maxTracks), func(t *testing.T) {
			if got := ArtistLimit(tt.maxTracks, tt.fraction); got != tt.want {
				t.Errorf("ArtistLimit(%d, %v) = %d, want %d", tt.maxTracks, tt.fraction, got, tt.want)
			}
		})
	}
}

func TestGenreLimit(t *testing.T) {
	tests := []struct {
		maxTracks int
		fraction  float64
		want      int
	}{
		{50, 0.15, 7}, // 7.5 truncates down
		{20, 0.15, 3},
		{10, 0.15, 1}, // 1.5 truncates to 1
		{5, 0.15, 1},  // floor of one
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_tracks", tt.maxTracks), func(t *testing.T) {
			if got := GenreLimit(tt.maxTracks, tt.fraction); got != tt.want {
				t.Errorf("GenreLimit(%d, %v) = %d, want %d", tt.maxTracks, tt.fraction, got, tt.want)
			}
		})
	}
}

func TestEnforceDiversitySameArtistCapped(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Title: "One", Artist: "Same Artist", Genres: []string{"Rock"}},
		{ID: "2", Title: "Two", Artist: "Same Artist", Genres: []string{"Pop"}},
	}

	got := EnforceDiversity(tracks, 20, 0.05, 0.15)

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 track, got %d", len(got))
	}
	if got[0].ID != "1" {
		t.Errorf("expected first-seen track to survive, got %q", got[0].ID)
	}
}

func TestEnforceDiversityBounds(t *testing.T) {
	var tracks []models.Track
	for i := 0; i < 100; i++ {
		tracks = append(tracks, models.Track{
			ID:     fmt.Sprintf("t%d", i),
			Title:  fmt.Sprintf("Song %d", i),
			Artist: fmt.Sprintf("Artist %d", i%10),
			Genres: []string{fmt.Sprintf("Genre %d", i%5)},
		})
	}

	maxTracks := 50
	got := EnforceDiversity(tracks, maxTracks, 0.05, 0.15)

	if len(got) > maxTracks {
		t.Fatalf("output %d exceeds max %d", len(got), maxTracks)
	}

	artistLimit := ArtistLimit(maxTracks, 0.05)
	genreLimit := GenreLimit(maxTracks, 0.15)
	artistCounts := make(map[string]int)
	genreCounts := make(map[string]int)
	for _, track := range got {
		artistCounts[ArtistKeyOf(track)]++
		genreCounts[NormalizeText(track.PrimaryGenre())]++
	}

	for artist, count := range artistCounts {
		if count > artistLimit {
			t.Errorf("artist %q appears %d times, limit %d", artist, count, artistLimit)
		}
	}
	for genre, count := range genreCounts {
		if count > genreLimit {
			t.Errorf("genre %q appears %d times, limit %d", genre, count, genreLimit)
		}
	}
}

func TestEnforceDiversityPreservesOrder(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Title: "One", Artist: "A", Genres: []string{"Rock"}},
		{ID: "2", Title: "Two", Artist: "B", Genres: []string{"Pop"}},
		{ID: "3", Title: "Three", Artist: "C", Genres: []string{"Jazz"}},
	}

	got := EnforceDiversity(tracks, 50, 0.05, 0.15)

	for i, track := range got {
		if track.ID != tracks[i].ID {
			t.Errorf("position %d: expected %q, got %q", i, tracks[i].ID, track.ID)
		}
	}
}

func TestEnforceDiversityMissingGenre(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Title: "One", Artist: "A"},
		{ID: "2", Title: "Two", Artist: "B"},
	}

	got := EnforceDiversity(tracks, 10, 0.5, 0.15)

	// Both default to the "Unknown" genre bucket, whose cap is 1 here.
	if len(got) != 1 {
		t.Errorf("expected unknown-genre cap to apply, got %d tracks", len(got))
	}
}

func TestEnforceDiversityZeroMax(t *testing.T) {
	tracks := []models.Track{{ID: "1", Title: "One", Artist: "A"}}
	if got := EnforceDiversity(tracks, 0, 0.05, 0.15); len(got) != 0 {
		t.Errorf("expected empty output, got %d tracks", len(got))
	}
}
