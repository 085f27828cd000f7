package curate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
)

type mockCatalog struct {
	candidates    []models.Track
	candidatesErr error
	neighbors     map[string][]string
	neighborsErr  error
	recent        map[string]time.Time
	recentErr     error
	tracks        map[string]*models.Track
}

func (m *mockCatalog) FetchCandidates(ctx context.Context, hours []int, lookbackDays int) ([]models.Track, error) {
	if m.candidatesErr != nil {
		return nil, m.candidatesErr
	}
	return m.candidates, nil
}

func (m *mockCatalog) SonicNeighbors(ctx context.Context, trackID string, limit int) ([]string, error) {
	if m.neighborsErr != nil {
		return nil, m.neighborsErr
	}
	return m.neighbors[trackID], nil
}

func (m *mockCatalog) RecentlyPlayed(ctx context.Context, since time.Time) (map[string]time.Time, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	return m.recent, nil
}

func (m *mockCatalog) Track(ctx context.Context, trackID string) (*models.Track, error) {
	if track, ok := m.tracks[trackID]; ok {
		return track, nil
	}
	return nil, shared.ErrTrackNotFound
}

func (m *mockCatalog) Name() string { return "mock" }

type mockRunStore struct {
	created   []*models.CurationRun
	createErr error
	sequence  int
}

func (m *mockRunStore) Record(period, title, description string, trackIDs []string) (*models.CurationRun, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.sequence++
	run := models.NewCurationRun(m.sequence, period, title, description, trackIDs)
	m.created = append(m.created, run)
	return run, nil
}

func engineCandidates(n int) []models.Track {
	var tracks []models.Track
	for i := 0; i < n; i++ {
		tracks = append(tracks, models.Track{
			ID:        fmt.Sprintf("t%d", i),
			Title:     fmt.Sprintf("Song %d", i),
			Artist:    fmt.Sprintf("Artist %d", i),
			Album:     fmt.Sprintf("Album %d", i),
			Genres:    []string{fmt.Sprintf("Genre %d", i%8)},
			Moods:     []string{"Upbeat"},
			PlayCount: i % 5,
		})
	}
	return tracks
}

func testEngine(catalog *mockCatalog, runs RunStore) *Engine {
	config := shared.DefaultConfig()
	config.Playlist.MaxTracks = 10

	opts := []EngineOpt{WithRand(rand.New(rand.NewSource(1))), WithRateLimit(1000)}
	if runs != nil {
		opts = append(opts, WithRunStore(runs))
	}
	return NewEngine(catalog, config, MoodMap{}, shared.NewLogger(io.Discard), opts...)
}

func TestEngineRun(t *testing.T) {
	catalog := &mockCatalog{candidates: engineCandidates(30)}
	runs := &mockRunStore{}
	engine := testEngine(catalog, runs)

	progress := make(chan ProgressUpdate, 100)
	result, err := engine.Run(context.Background(), progress, "", true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Period == "" {
		t.Error("expected period to resolve from current hour")
	}
	if result.Playlist == nil {
		t.Fatal("expected a playlist")
	}
	if len(result.Playlist.Tracks) == 0 {
		t.Fatal("expected a non-empty playlist")
	}
	if len(result.Playlist.Tracks) > 10 {
		t.Errorf("playlist has %d tracks, max 10", len(result.Playlist.Tracks))
	}
	if result.Playlist.Title == "" || result.Playlist.Description == "" {
		t.Error("expected title and description")
	}

	seen := make(map[string]bool)
	for _, track := range result.Playlist.Tracks {
		if seen[track.ID] {
			t.Errorf("track %q repeats in playlist", track.ID)
		}
		seen[track.ID] = true
	}

	if result.Run == nil {
		t.Fatal("expected a persisted run")
	}
	if len(runs.created) != 1 {
		t.Fatalf("expected 1 created run, got %d", len(runs.created))
	}
	if runs.created[0].TrackCount() != len(result.Playlist.Tracks) {
		t.Errorf("persisted %d track IDs, playlist has %d", runs.created[0].TrackCount(), len(result.Playlist.Tracks))
	}

	close(progress)
	var phases []Phase
	for update := range progress {
		phases = append(phases, update.Phase)
	}
	if len(phases) == 0 {
		t.Error("expected progress updates")
	}
	if phases[0] != PhaseFetchCandidates {
		t.Errorf("first phase = %v, want %v", phases[0], PhaseFetchCandidates)
	}
}

func TestEngineRunExplicitPeriod(t *testing.T) {
	catalog := &mockCatalog{candidates: engineCandidates(15)}
	engine := testEngine(catalog, nil)

	result, err := engine.Run(context.Background(), nil, "Morning", false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Period != "Morning" {
		t.Errorf("period = %q, want %q", result.Period, "Morning")
	}
	if result.Run != nil {
		t.Error("expected no persisted run when persist is false")
	}
}

func TestEngineRunUnknownPeriod(t *testing.T) {
	catalog := &mockCatalog{candidates: engineCandidates(5)}
	engine := testEngine(catalog, nil)

	_, err := engine.Run(context.Background(), nil, "Tea Time", false)
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestEngineRunNothingToCurate(t *testing.T) {
	catalog := &mockCatalog{}
	engine := testEngine(catalog, nil)

	_, err := engine.Run(context.Background(), nil, "", false)
	if !errors.Is(err, shared.ErrNothingToCurate) {
		t.Errorf("expected ErrNothingToCurate, got %v", err)
	}
}

func TestEngineRunCatalogFailure(t *testing.T) {
	catalog := &mockCatalog{candidatesErr: errors.New("plex unreachable")}
	engine := testEngine(catalog, nil)

	_, err := engine.Run(context.Background(), nil, "", false)
	if !errors.Is(err, shared.ErrAPIRequest) {
		t.Errorf("expected ErrAPIRequest, got %v", err)
	}
}

func TestEngineRunMissingCatalog(t *testing.T) {
	config := shared.DefaultConfig()
	engine := NewEngine(nil, config, MoodMap{}, shared.NewLogger(io.Discard))

	_, err := engine.Run(context.Background(), nil, "", false)
	if !errors.Is(err, shared.ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestEngineRunDropsRecentlyPlayed(t *testing.T) {
	candidates := engineCandidates(20)
	recent := map[string]time.Time{
		"t0": time.Now().Add(-24 * time.Hour),
		"t1": time.Now().Add(-48 * time.Hour),
	}
	catalog := &mockCatalog{candidates: candidates, recent: recent}
	engine := testEngine(catalog, nil)

	result, err := engine.Run(context.Background(), nil, "", false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, track := range result.Playlist.Tracks {
		if track.ID == "t0" || track.ID == "t1" {
			t.Errorf("recently played track %q in playlist", track.ID)
		}
	}
}

func TestEngineRunAllExcludedFallsBack(t *testing.T) {
	candidates := engineCandidates(10)
	candidates[0].Labels = []string{"noshare"}
	recent := make(map[string]time.Time)
	for _, track := range candidates {
		recent[track.ID] = time.Now().Add(-time.Hour)
	}
	catalog := &mockCatalog{candidates: candidates, recent: recent}
	engine := testEngine(catalog, nil)

	result, err := engine.Run(context.Background(), nil, "", false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Playlist.Tracks) == 0 {
		t.Error("expected fallback to the eligible candidate pool")
	}
	for _, track := range result.Playlist.Tracks {
		if track.ID == candidates[0].ID {
			t.Error("fallback relaxed the exclusion label along with recency")
		}
	}
}

func TestEngineRunLabeledTracksNeverRelax(t *testing.T) {
	candidates := engineCandidates(10)
	for i := range candidates {
		candidates[i].Labels = []string{"noshare"}
	}
	catalog := &mockCatalog{candidates: candidates}
	engine := testEngine(catalog, nil)

	_, err := engine.Run(context.Background(), nil, "", false)
	if !errors.Is(err, shared.ErrNothingToCurate) {
		t.Errorf("expected ErrNothingToCurate for a fully excluded pool, got %v", err)
	}
}

func TestEngineRunLowRatedNeverRelax(t *testing.T) {
	candidates := engineCandidates(10)
	low := 2.0
	for i := range candidates {
		candidates[i].Rating = &low
	}
	catalog := &mockCatalog{candidates: candidates}
	engine := testEngine(catalog, nil)

	_, err := engine.Run(context.Background(), nil, "", false)
	if !errors.Is(err, shared.ErrNothingToCurate) {
		t.Errorf("expected ErrNothingToCurate for a fully low-rated pool, got %v", err)
	}
}

type mockNeighborStore struct {
	lists  map[string][]string
	pruned []time.Duration
}

func (m *mockNeighborStore) Neighbors(trackID string, limit int) ([]string, error) {
	return m.lists[trackID], nil
}

func (m *mockNeighborStore) SaveNeighbors(trackID string, neighbors []string, limit int) error {
	if m.lists == nil {
		m.lists = make(map[string][]string)
	}
	m.lists[trackID] = neighbors
	return nil
}

func (m *mockNeighborStore) Prune(maxAge time.Duration) (int64, error) {
	m.pruned = append(m.pruned, maxAge)
	return 0, nil
}

func TestEngineRunExpandsSparsePool(t *testing.T) {
	candidates := engineCandidates(3)

	neighborIDs := []string{"nx", "nr", "n0", "n1", "n2", "n3", "n4", "n5", "n6", "n7"}
	neighbors := make(map[string][]string)
	for _, track := range candidates {
		neighbors[track.ID] = neighborIDs
	}

	recently := time.Now().Add(-time.Hour)
	tracks := map[string]*models.Track{
		"nx": {ID: "nx", Title: "Shared Secret", Artist: "Private Artist", Genres: []string{"NGenre x"}, Labels: []string{"noshare"}},
		"nr": {ID: "nr", Title: "Just Heard", Artist: "Fresh Artist", Genres: []string{"NGenre r"}, LastPlayedAt: &recently},
	}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("n%d", i)
		tracks[id] = &models.Track{
			ID:     id,
			Title:  fmt.Sprintf("Neighbor %d", i),
			Artist: fmt.Sprintf("Neighbor Artist %d", i),
			Genres: []string{fmt.Sprintf("NGenre %d", i)},
		}
	}

	catalog := &mockCatalog{candidates: candidates, neighbors: neighbors, tracks: tracks}
	engine := testEngine(catalog, nil)

	result, err := engine.Run(context.Background(), nil, "", false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Resolved <= 3 {
		t.Errorf("resolved pool = %d, expected growth beyond the 3 history tracks", result.Resolved)
	}
	if len(result.Playlist.Tracks) <= 3 {
		t.Errorf("playlist has %d tracks, expected expansion beyond sparse history", len(result.Playlist.Tracks))
	}
	for _, track := range result.Playlist.Tracks {
		if track.ID == "nx" {
			t.Error("expansion admitted a track carrying the exclusion label")
		}
		if track.ID == "nr" {
			t.Error("expansion admitted a recently played track")
		}
	}
}

func TestEngineRunSkipsExpansionWhenPoolIsFull(t *testing.T) {
	catalog := &mockCatalog{candidates: engineCandidates(30)}
	engine := testEngine(catalog, nil)

	progress := make(chan ProgressUpdate, 100)
	if _, err := engine.Run(context.Background(), progress, "", false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	close(progress)
	for update := range progress {
		if update.Phase == PhaseExpandPool {
			t.Error("expansion ran despite a full candidate pool")
		}
	}
}

func TestEngineRunPrunesNeighborCache(t *testing.T) {
	store := &mockNeighborStore{}
	catalog := &mockCatalog{candidates: engineCandidates(15)}
	engine := testEngine(catalog, nil)
	WithNeighborStore(store)(engine)

	if _, err := engine.Run(context.Background(), nil, "", false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(store.pruned) != 1 {
		t.Fatalf("expected one prune per run, got %d", len(store.pruned))
	}
	if store.pruned[0] <= 0 {
		t.Errorf("prune age = %v, want a positive retention window", store.pruned[0])
	}
}

func playedTrack(id string, playedAt time.Time) models.Track {
	return models.Track{ID: id, Title: id, Artist: "Artist " + id, LastPlayedAt: &playedAt}
}

func TestFindAnchors(t *testing.T) {
	day := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	morning := []int{8, 9, 10, 11}

	t.Run("PrefersInPeriodPlays", func(t *testing.T) {
		tracks := []models.Track{
			playedTrack("late", day.Add(22*time.Hour)),
			playedTrack("mid", day.Add(10*time.Hour)),
			playedTrack("early", day.Add(8*time.Hour)),
			playedTrack("predawn", day.Add(4*time.Hour)),
		}

		first, last := findAnchors(tracks, morning)
		if first.ID != "early" {
			t.Errorf("first = %q, want %q", first.ID, "early")
		}
		if last.ID != "mid" {
			t.Errorf("last = %q, want %q", last.ID, "mid")
		}
	})

	t.Run("FallsBackToPlayOrder", func(t *testing.T) {
		tracks := []models.Track{
			playedTrack("b", day.Add(20*time.Hour)),
			playedTrack("a", day.Add(2*time.Hour)),
			{ID: "never", Title: "never"},
		}

		first, last := findAnchors(tracks, morning)
		if first.ID != "a" {
			t.Errorf("first = %q, want %q", first.ID, "a")
		}
		if last.ID != "never" {
			t.Errorf("last = %q, want %q", last.ID, "never")
		}
	})

	t.Run("SplitsSingleInPeriodPlay", func(t *testing.T) {
		tracks := []models.Track{
			playedTrack("only", day.Add(9*time.Hour)),
			playedTrack("outside", day.Add(15*time.Hour)),
			{ID: "never", Title: "never"},
		}

		first, last := findAnchors(tracks, morning)
		if first.ID != "only" {
			t.Errorf("first = %q, want %q", first.ID, "only")
		}
		if last.ID == first.ID {
			t.Errorf("last collapsed onto first anchor %q", last.ID)
		}
	})
}

func TestSequenceWorkingSet(t *testing.T) {
	day := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	tracks := []models.Track{
		playedTrack("c", day.Add(18*time.Hour)),
		playedTrack("a", day.Add(8*time.Hour)),
		playedTrack("b", day.Add(10*time.Hour)),
		playedTrack("d", day.Add(9*time.Hour)),
	}

	cache := NewSimilarityCache(20, shared.NewLogger(io.Discard))
	ordered := sequenceWorkingSet(tracks, []int{8, 9, 10, 11}, cache, 20)

	if len(ordered) != len(tracks) {
		t.Fatalf("sequenced %d tracks, want %d", len(ordered), len(tracks))
	}
	if ordered[0].ID != "a" {
		t.Errorf("opener = %q, want %q", ordered[0].ID, "a")
	}
	if ordered[len(ordered)-1].ID != "b" {
		t.Errorf("closer = %q, want %q", ordered[len(ordered)-1].ID, "b")
	}
}

func TestEngineRunPersistFailure(t *testing.T) {
	catalog := &mockCatalog{candidates: engineCandidates(15)}
	runs := &mockRunStore{createErr: errors.New("disk full")}
	engine := testEngine(catalog, runs)

	result, err := engine.Run(context.Background(), nil, "", true)
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if result == nil || result.Playlist == nil {
		t.Error("expected the curated playlist alongside the persistence error")
	}
}
