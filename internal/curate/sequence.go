package curate

import (
	"github.com/desertthunder/meloday/internal/models"
)

// sequencer holds the per-run state for ordering one working set. Artist keys
// are computed once up front so cost evaluation stays map-lookup cheap.
type sequencer struct {
	cache      *SimilarityCache
	limit      int
	artistKeys map[string]string
}

func newSequencer(tracks []models.Track, first, last models.Track, cache *SimilarityCache, limit int) *sequencer {
	keys := make(map[string]string, len(tracks)+2)
	keys[first.ID] = ArtistKeyOf(first)
	keys[last.ID] = ArtistKeyOf(last)
	for _, t := range tracks {
		keys[t.ID] = ArtistKeyOf(t)
	}

	return &sequencer{cache: cache, limit: limit, artistKeys: keys}
}

// adjDist is the adjacency cost between two tracks. Placing the same artist
// back to back costs an extra limit*100, which dwarfs any similarity rank so
// clustering only happens when no alternative order exists.
func (s *sequencer) adjDist(a, b models.Track) int {
	cost := s.cache.Distance(a.ID, b.ID)
	if s.artistKeys[a.ID] == s.artistKeys[b.ID] {
		cost += s.limit * 100
	}
	return cost
}

// pathCost totals the adjacency cost of first -> path... -> last.
func (s *sequencer) pathCost(path []models.Track, first, last models.Track) int {
	if len(path) == 0 {
		return s.adjDist(first, last)
	}

	cost := s.adjDist(first, path[0])
	for i := 0; i < len(path)-1; i++ {
		cost += s.adjDist(path[i], path[i+1])
	}
	cost += s.adjDist(path[len(path)-1], last)
	return cost
}

// greedy builds an initial path by nearest-neighbor construction: starting
// from first as the tail, always append the cheapest unplaced track.
func (s *sequencer) greedy(middle []models.Track, first models.Track) []models.Track {
	remaining := make([]models.Track, len(middle))
	copy(remaining, middle)

	path := make([]models.Track, 0, len(middle))
	tail := first

	for len(remaining) > 0 {
		bestIdx := 0
		bestCost := s.adjDist(tail, remaining[0])
		for i := 1; i < len(remaining); i++ {
			if cost := s.adjDist(tail, remaining[i]); cost < bestCost {
				bestIdx, bestCost = i, cost
			}
		}

		tail = remaining[bestIdx]
		path = append(path, tail)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return path
}

// twoOpt refines the path by segment reversal. Any strictly improving
// reversal is accepted and restarts the scan; the loop ends at a local
// optimum, which is guaranteed because each accepted move lowers a
// nonnegative cost.
func (s *sequencer) twoOpt(path []models.Track, first, last models.Track) []models.Track {
	if len(path) < 2 {
		return path
	}

	best := s.pathCost(path, first, last)

	improved := true
	for improved {
		improved = false

	scan:
		for i := 0; i < len(path)-1; i++ {
			for j := i + 1; j < len(path); j++ {
				reverseSegment(path, i, j)
				if cost := s.pathCost(path, first, last); cost < best {
					best = cost
					improved = true
					break scan
				}
				reverseSegment(path, i, j)
			}
		}
	}

	return path
}

func reverseSegment(path []models.Track, i, j int) {
	for i < j {
		path[i], path[j] = path[j], path[i]
		i, j = i+1, j-1
	}
}

// Sequence orders middle between the fixed first and last anchors,
// minimizing artist-aware adjacency cost with greedy construction followed
// by 2-opt refinement. The result always starts with first, ends with last,
// and contains every middle track exactly once.
func Sequence(middle []models.Track, first, last models.Track, cache *SimilarityCache, limit int) []models.Track {
	if len(middle) == 0 {
		return []models.Track{first, last}
	}

	s := newSequencer(middle, first, last, cache, limit)

	path := s.greedy(middle, first)
	if s.pathCost(middle, first, last) < s.pathCost(path, first, last) {
		// Greedy can lose to the given order; 2-opt never makes its
		// starting path worse, so begin from the cheaper of the two.
		path = make([]models.Track, len(middle))
		copy(path, middle)
	}
	path = s.twoOpt(path, first, last)

	ordered := make([]models.Track, 0, len(path)+2)
	ordered = append(ordered, first)
	ordered = append(ordered, path...)
	ordered = append(ordered, last)
	return ordered
}
