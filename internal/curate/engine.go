package curate

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/services"
	"github.com/desertthunder/meloday/internal/shared"
)

// RunStore persists completed curation runs. The store allocates the run's
// identifier and sequence number.
type RunStore interface {
	Record(period, title, description string, trackIDs []string) (*models.CurationRun, error)
}

// RunResult contains all data from a completed curation run.
type RunResult struct {
	Period      string                  // Resolved listening period
	Playlist    *models.CuratedPlaylist // Ordered playlist with title and description
	Run         *models.CurationRun     // Persisted run record (nil when persistence is disabled)
	Candidates  int                     // Candidate tracks fetched from history
	Resolved    int                     // Unique tracks after duplicate resolution
	Sequenced   int                     // Tracks in the final order
	ElapsedTime time.Duration           // Wall-clock pipeline duration
}

// Engine orchestrates a full curation run: fetch, filter, resolve, diversify,
// similarity, sequence, describe, persist. Operations emit progress updates
// via channels for non-blocking status reporting to CLI/UI layers.
type Engine struct {
	catalog   services.CatalogProvider
	neighbors NeighborStore
	runs      RunStore
	config    *shared.Config
	schedule  *Schedule
	moods     MoodMap
	logger    *log.Logger
	rng       *rand.Rand
	limiter   *rate.Limiter
}

// EngineOpt customizes Engine construction.
type EngineOpt func(*Engine)

// WithNeighborStore attaches a warm neighbor cache consulted before the
// catalog during similarity population.
func WithNeighborStore(store NeighborStore) EngineOpt {
	return func(e *Engine) { e.neighbors = store }
}

// WithRunStore attaches persistence for completed runs.
func WithRunStore(store RunStore) EngineOpt {
	return func(e *Engine) { e.runs = store }
}

// WithRand fixes the random source used for sampling and naming.
func WithRand(rng *rand.Rand) EngineOpt {
	return func(e *Engine) { e.rng = rng }
}

// WithRateLimit caps catalog similarity requests per second.
func WithRateLimit(rps float64) EngineOpt {
	return func(e *Engine) { e.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func NewEngine(catalog services.CatalogProvider, config *shared.Config, moods MoodMap, logger *log.Logger, opts ...EngineOpt) *Engine {
	e := &Engine{
		catalog:  catalog,
		config:   config,
		schedule: NewSchedule(config.Periods),
		moods:    moods,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schedule exposes the engine's period schedule.
func (e *Engine) Schedule() *Schedule {
	return e.schedule
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run executes the full curation pipeline for the given period. An empty
// period resolves from the current hour. The persist flag controls whether
// the finished run is written through the run store.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, period string, persist bool) (*RunResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog provider not initialized", shared.ErrCatalogUnavailable)
	}

	start := time.Now()
	now := start

	if period == "" {
		period = e.schedule.PeriodFor(now.Hour())
	}
	hours := e.schedule.HoursFor(period)
	if len(hours) == 0 {
		return nil, fmt.Errorf("%w: unknown period %q", shared.ErrInvalidArgument, period)
	}

	result := &RunResult{Period: period}

	e.pruneNeighborCache()

	e.sendProgress(progress, fetchCandidatesUpdate(period))

	candidates, err := e.catalog.FetchCandidates(ctx, hours, e.config.Playlist.HistoryLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch candidates: %v", shared.ErrAPIRequest, err)
	}
	result.Candidates = len(candidates)
	e.sendProgress(progress, fetchedCandidatesUpdate(len(candidates)))

	if len(candidates) == 0 {
		return nil, shared.ErrNothingToCurate
	}

	eligible := e.excludeCandidates(candidates, now)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: every candidate is excluded or low rated", shared.ErrNothingToCurate)
	}

	filtered := e.dropRecent(ctx, eligible, now)
	e.sendProgress(progress, filterExclusionsUpdate(len(candidates), len(filtered)))

	if len(filtered) == 0 {
		// Everything eligible was played recently; relax only the recency
		// exclusion. Labels, the seasonal collection and low ratings hold.
		filtered = eligible
	}

	balanced := BalanceHistory(filtered, e.config.Playlist.MaxTracks*2, e.rng)

	resolved := ResolveDuplicates(balanced)
	result.Resolved = len(resolved)
	e.sendProgress(progress, resolveDuplicatesUpdate(len(balanced), len(resolved)))

	if len(resolved) == 0 {
		return nil, shared.ErrNothingToCurate
	}

	if len(resolved) < e.config.Playlist.MaxTracks {
		e.sendProgress(progress, expandPoolUpdate(len(resolved), e.config.Playlist.MaxTracks))
		if expanded := e.expandPool(ctx, resolved, now); len(expanded) > len(resolved) {
			resolved = ResolveDuplicates(expanded)
			result.Resolved = len(resolved)
		}
	}

	diverse := EnforceDiversity(resolved,
		e.config.Playlist.MaxTracks,
		e.config.Playlist.ArtistFraction,
		e.config.Playlist.GenreFraction)
	e.sendProgress(progress, enforceDiversityUpdate(len(diverse)))

	limit := e.config.Playlist.SonicSimilarLimit
	cache := NewSimilarityCache(limit, e.logger)
	e.sendProgress(progress, buildSimilarityUpdate(0, len(diverse)))
	if err := cache.Populate(ctx, diverse, e.neighbors, e.catalog, e.limiter); err != nil {
		return nil, fmt.Errorf("%w: similarity population aborted: %v", shared.ErrAPIRequest, err)
	}
	e.sendProgress(progress, buildSimilarityUpdate(len(diverse), len(diverse)))

	e.sendProgress(progress, sequenceTracksUpdate(len(diverse)))
	ordered := sequenceWorkingSet(diverse, hours, cache, limit)
	result.Sequenced = len(ordered)

	title, description := Describe(period, e.schedule.Phrase(period), ordered, e.moods, now, e.rng)
	e.sendProgress(progress, describePlaylistUpdate(title))

	playlist := &models.CuratedPlaylist{
		Period:      period,
		Title:       title,
		Description: description,
		Tracks:      ordered,
	}
	result.Playlist = playlist

	if persist && e.runs != nil {
		run, err := e.runs.Record(period, title, description, playlist.TrackIDs())
		if err != nil {
			return result, fmt.Errorf("curation completed but failed to persist run: %w", err)
		}
		result.Run = run
		e.sendProgress(progress, persistRunUpdate(playlist))
	}

	result.ElapsedTime = time.Since(start)
	return result, nil
}

// excludeCandidates applies the hard exclusions: the exclusion label, the
// seasonal collection outside its window, and tracks the listener rated
// down. These never relax, even when they empty the pool.
func (e *Engine) excludeCandidates(candidates []models.Track, now time.Time) []models.Track {
	collection := e.config.Plex.ChristmasCollection
	if InWindow(e.config.Seasonal.Christmas, now) {
		// Inside the seasonal window the collection plays like any other.
		collection = ""
	}
	return FilterLowRated(FilterExcluded(candidates, e.config.Plex.ExcludeLabel, collection))
}

// dropRecent removes tracks played within the configured exclusion window,
// preferring the catalog's play log over per-track timestamps.
func (e *Engine) dropRecent(ctx context.Context, tracks []models.Track, now time.Time) []models.Track {
	cutoff := now.AddDate(0, 0, -e.config.Playlist.ExcludePlayedDays)

	recent, err := e.catalog.RecentlyPlayed(ctx, cutoff)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("recent-play exclusion unavailable", "error", err)
		}
		return FilterRecentlyPlayed(tracks, cutoff)
	}
	return dropRecentlyPlayed(tracks, recent)
}

// expandPool grows a sparse pool toward the playlist size by fetching sonic
// neighbors of sampled pool tracks. Fetched tracks pass through the same
// exclusions as history candidates. Roughly a third of the pool seeds the
// expansion.
func (e *Engine) expandPool(ctx context.Context, pool []models.Track, now time.Time) []models.Track {
	target := e.config.Playlist.MaxTracks
	limit := e.config.Playlist.SonicSimilarLimit
	cutoff := now.AddDate(0, 0, -e.config.Playlist.ExcludePlayedDays)

	seen := make(map[string]bool, len(pool))
	for _, track := range pool {
		seen[track.ID] = true
	}

	seedCount := len(pool) * 3 / 10
	if seedCount < 1 {
		seedCount = 1
	}
	seeds := sampleTracks(pool, seedCount, e.rng)

	expanded := pool
	for _, seed := range seeds {
		if len(expanded) >= target {
			break
		}
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				break
			}
		}

		neighbors, err := e.catalog.SonicNeighbors(ctx, seed.ID, limit)
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("pool expansion fetch failed", "track", seed.ID, "error", err)
			}
			continue
		}

		for _, id := range neighbors {
			if len(expanded) >= target {
				break
			}
			if seen[id] {
				continue
			}
			seen[id] = true

			track, err := e.catalog.Track(ctx, id)
			if err != nil {
				continue
			}
			kept := FilterRecentlyPlayed(e.excludeCandidates([]models.Track{*track}, now), cutoff)
			if len(kept) == 0 {
				continue
			}
			expanded = append(expanded, kept[0])
		}
	}
	return expanded
}

// neighborMaxAge bounds how long stored neighbor lists are trusted before a
// run refreshes them from the catalog.
const neighborMaxAge = 30 * 24 * time.Hour

// pruneNeighborCache expires stale stored neighbor lists when the attached
// store supports it. Failures only warn; the run proceeds on the catalog.
func (e *Engine) pruneNeighborCache() {
	pruner, ok := e.neighbors.(NeighborPruner)
	if !ok {
		return
	}

	pruned, err := pruner.Prune(neighborMaxAge)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("neighbor cache prune failed", "error", err)
		}
		return
	}
	if pruned > 0 && e.logger != nil {
		e.logger.Debug("pruned stale neighbor lists", "rows", pruned)
	}
}

func dropRecentlyPlayed(tracks []models.Track, recent map[string]time.Time) []models.Track {
	kept := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		if _, played := recent[track.ID]; played {
			continue
		}
		kept = append(kept, track)
	}
	return kept
}

// sequenceWorkingSet anchors the playlist on the earliest and latest played
// tracks and orders everything between them.
func sequenceWorkingSet(tracks []models.Track, hours []int, cache *SimilarityCache, limit int) []models.Track {
	if len(tracks) < 3 {
		return tracks
	}

	first, last := findAnchors(tracks, hours)

	middle := make([]models.Track, 0, len(tracks)-2)
	droppedFirst, droppedLast := false, false
	for _, track := range tracks {
		if !droppedFirst && track.ID == first.ID {
			droppedFirst = true
			continue
		}
		if !droppedLast && track.ID == last.ID {
			droppedLast = true
			continue
		}
		middle = append(middle, track)
	}

	return Sequence(middle, first, last, cache, limit)
}

// findAnchors picks the earliest and latest played tracks whose last play fell
// inside the period's hours. Tracks never played, or only played outside the
// period, lose to any in-period play; with no in-period plays at all the
// overall earliest and latest stand in.
func findAnchors(tracks []models.Track, hours []int) (first, last models.Track) {
	sorted := make([]models.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return playedBefore(sorted[i], sorted[j])
	})

	inPeriod := make(map[int]bool, len(hours))
	for _, h := range hours {
		inPeriod[h] = true
	}

	first = sorted[0]
	for _, track := range sorted {
		if track.LastPlayedAt != nil && inPeriod[track.LastPlayedAt.Hour()] {
			first = track
			break
		}
	}

	last = sorted[len(sorted)-1]
	for i := len(sorted) - 1; i >= 0; i-- {
		track := sorted[i]
		if track.LastPlayedAt != nil && inPeriod[track.LastPlayedAt.Hour()] {
			last = track
			break
		}
	}

	if first.ID == last.ID {
		// Both searches landed on the same track; fall back to the other end
		// of the play-time ordering so the playlist keeps two anchors.
		for i := len(sorted) - 1; i >= 0; i-- {
			if sorted[i].ID != first.ID {
				last = sorted[i]
				break
			}
		}
	}

	return first, last
}

// playedBefore orders by last play time, never-played tracks last.
func playedBefore(a, b models.Track) bool {
	switch {
	case a.LastPlayedAt == nil:
		return false
	case b.LastPlayedAt == nil:
		return true
	default:
		return a.LastPlayedAt.Before(*b.LastPlayedAt)
	}
}
