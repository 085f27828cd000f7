package curate

import (
	"math/rand"
	"sort"

	"github.com/desertthunder/meloday/internal/models"
)

// BalanceHistory mixes well-worn favorites with rarer plays. Tracks are
// sorted by play count, the top quarter is treated as popular and the rest
// as rare, then up to 75% of maxTracks is sampled from the rare pool and up
// to 25% from the popular pool. A non-nil rng makes the sampling
// reproducible.
func BalanceHistory(tracks []models.Track, maxTracks int, rng *rand.Rand) []models.Track {
	if len(tracks) == 0 || maxTracks <= 0 {
		return nil
	}

	sorted := make([]models.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlayCount > sorted[j].PlayCount
	})

	splitIdx := len(sorted) / 4
	if splitIdx < 1 {
		splitIdx = 1
	}
	popular := sorted[:splitIdx]
	rare := sorted[splitIdx:]

	rareQuota := int(float64(maxTracks) * 0.75)
	popularQuota := int(float64(maxTracks) * 0.25)

	selection := sampleTracks(rare, rareQuota, rng)
	selection = append(selection, sampleTracks(popular, popularQuota, rng)...)

	return capDominantGenre(selection, maxTracks)
}

// sampleTracks picks up to n tracks without replacement.
func sampleTracks(tracks []models.Track, n int, rng *rand.Rand) []models.Track {
	if n > len(tracks) {
		n = len(tracks)
	}
	if n <= 0 {
		return nil
	}

	indices := make([]int, len(tracks))
	for i := range indices {
		indices[i] = i
	}
	swap := func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	}
	if rng != nil {
		rng.Shuffle(len(indices), swap)
	} else {
		rand.Shuffle(len(indices), swap)
	}

	picked := make([]models.Track, 0, n)
	for _, idx := range indices[:n] {
		picked = append(picked, tracks[idx])
	}
	return picked
}

// capDominantGenre keeps a single genre from swamping the selection: when
// one genre exceeds a quarter of maxTracks, its tracks are capped at that
// limit and pushed behind everything else.
func capDominantGenre(tracks []models.Track, maxTracks int) []models.Track {
	counts := make(map[string]int)
	for _, track := range tracks {
		for _, g := range track.Genres {
			counts[g]++
		}
	}
	if len(counts) == 0 {
		return tracks
	}

	dominant, dominantCount := "", 0
	for genre, count := range counts {
		if count > dominantCount || (count == dominantCount && genre < dominant) {
			dominant, dominantCount = genre, count
		}
	}

	limit := int(float64(maxTracks) * 0.25)
	if dominantCount <= limit {
		return tracks
	}

	others := make([]models.Track, 0, len(tracks))
	capped := make([]models.Track, 0, limit)
	for _, track := range tracks {
		if hasGenre(track, dominant) {
			if len(capped) < limit {
				capped = append(capped, track)
			}
			continue
		}
		others = append(others, track)
	}
	return append(others, capped...)
}

func hasGenre(track models.Track, genre string) bool {
	for _, g := range track.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
