package curate

import (
	"math"

	"github.com/desertthunder/meloday/internal/models"
)

// ArtistLimit is the per-artist cap for a playlist of maxTracks tracks,
// rounded half away from zero with a floor of one.
func ArtistLimit(maxTracks int, fraction float64) int {
	limit := int(math.Round(float64(maxTracks) * fraction))
	if limit < 1 {
		limit = 1
	}
	return limit
}

// GenreLimit is the per-genre cap for a playlist of maxTracks tracks,
// truncated toward zero with a floor of one.
func GenreLimit(maxTracks int, fraction float64) int {
	limit := int(float64(maxTracks) * fraction)
	if limit < 1 {
		limit = 1
	}
	return limit
}

// EnforceDiversity walks tracks in order and keeps each one only while its
// primary artist and primary genre stay under their caps, stopping once
// maxTracks tracks are kept. Input order decides which copies survive.
func EnforceDiversity(tracks []models.Track, maxTracks int, artistFraction, genreFraction float64) []models.Track {
	if maxTracks <= 0 {
		return nil
	}

	artistLimit := ArtistLimit(maxTracks, artistFraction)
	genreLimit := GenreLimit(maxTracks, genreFraction)

	artistCounts := make(map[string]int)
	genreCounts := make(map[string]int)
	kept := make([]models.Track, 0, maxTracks)

	for _, track := range tracks {
		if len(kept) >= maxTracks {
			break
		}

		artist := ArtistKeyOf(track)
		genre := NormalizeText(track.PrimaryGenre())

		if artistCounts[artist] >= artistLimit {
			continue
		}
		if genreCounts[genre] >= genreLimit {
			continue
		}

		artistCounts[artist]++
		genreCounts[genre]++
		kept = append(kept, track)
	}

	return kept
}
