package curate

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/meloday/internal/models"
)

// NeighborSource yields sonic neighbors for a track, closest first.
type NeighborSource interface {
	SonicNeighbors(ctx context.Context, trackID string, limit int) ([]string, error)
}

// NeighborStore is a warm cache of previously fetched neighbor lists.
type NeighborStore interface {
	Neighbors(trackID string, limit int) ([]string, error)
	SaveNeighbors(trackID string, neighbors []string, limit int) error
}

// NeighborPruner expires stored neighbor lists older than maxAge, returning
// the number of rows removed. Stores that never go stale need not implement
// it.
type NeighborPruner interface {
	Prune(maxAge time.Duration) (int64, error)
}

// SimilarityCache memoizes sonic neighbor ranks so the sequencer can look up
// pair distances without further catalog calls. A neighbor's rank is its
// zero-based position in the owner's neighbor list; each missing direction of
// a pair costs a fixed penalty of limit*20.
type SimilarityCache struct {
	limit  int
	mu     sync.RWMutex
	ranks  map[string]map[string]int
	logger *log.Logger
}

func NewSimilarityCache(limit int, logger *log.Logger) *SimilarityCache {
	return &SimilarityCache{
		limit:  limit,
		ranks:  make(map[string]map[string]int),
		logger: logger,
	}
}

// Seed records a track's neighbor list directly, closest first.
func (c *SimilarityCache) Seed(trackID string, neighbors []string) {
	ranked := make(map[string]int, len(neighbors))
	for i, id := range neighbors {
		ranked[id] = i
	}

	c.mu.Lock()
	c.ranks[trackID] = ranked
	c.mu.Unlock()
}

// Has reports whether a track's neighbors are already cached.
func (c *SimilarityCache) Has(trackID string) bool {
	c.mu.RLock()
	_, ok := c.ranks[trackID]
	c.mu.RUnlock()
	return ok
}

// Distance is the symmetric similarity cost between a and b, summing each
// track's rank in the other's neighbor list. A direction without a ranked
// entry, including tracks with no cached list at all, contributes limit*20.
func (c *SimilarityCache) Distance(a, b string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.directedRank(a, b) + c.directedRank(b, a)
}

func (c *SimilarityCache) directedRank(from, to string) int {
	if neighbors, ok := c.ranks[from]; ok {
		if rank, ok := neighbors[to]; ok {
			return rank
		}
	}
	return c.limit * 20
}

// MissingPenalty is the cost one unranked direction contributes to Distance.
func (c *SimilarityCache) MissingPenalty() int {
	return c.limit * 20
}

// populateJob carries one track through the fetch pool.
type populateJob struct {
	trackID string
}

const populateWorkers = 4

// Populate fills the cache for every track, consulting store before source
// and writing fresh fetches back through store. Per-track failures are logged
// and the track is seeded empty so Distance stays total.
func (c *SimilarityCache) Populate(ctx context.Context, tracks []models.Track, store NeighborStore, source NeighborSource, limiter *rate.Limiter) error {
	jobs := make(chan populateJob)
	var wg sync.WaitGroup

	for i := 0; i < populateWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				c.populateOne(ctx, job.trackID, store, source, limiter)
			}
		}()
	}

	for _, track := range tracks {
		if track.ID == "" || c.Has(track.ID) {
			continue
		}

		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- populateJob{trackID: track.ID}:
		}
	}

	close(jobs)
	wg.Wait()
	return ctx.Err()
}

func (c *SimilarityCache) populateOne(ctx context.Context, trackID string, store NeighborStore, source NeighborSource, limiter *rate.Limiter) {
	if store != nil {
		if cached, err := store.Neighbors(trackID, c.limit); err == nil && cached != nil {
			c.Seed(trackID, cached)
			return
		}
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			c.Seed(trackID, nil)
			return
		}
	}

	neighbors, err := source.SonicNeighbors(ctx, trackID, c.limit)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("sonic neighbor fetch failed", "track", trackID, "error", err)
		}
		c.Seed(trackID, nil)
		return
	}

	c.Seed(trackID, neighbors)

	if store != nil {
		if err := store.SaveNeighbors(trackID, neighbors, c.limit); err != nil && c.logger != nil {
			c.logger.Warn("neighbor cache write failed", "track", trackID, "error", err)
		}
	}
}
