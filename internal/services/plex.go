// Plex Media Server implementation of [CatalogProvider]
//
// Response types based on the Plex media container JSON envelope.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
)

// plexTag represents a tagged attribute (genre, mood, label, collection).
type plexTag struct {
	Tag string `json:"tag"`
}

// plexMetadata represents a track, album or artist item in a media container.
type plexMetadata struct {
	RatingKey            string    `json:"ratingKey"`
	Key                  string    `json:"key"`
	Type                 string    `json:"type"`
	Title                string    `json:"title"`
	OriginalTitle        string    `json:"originalTitle"`
	ParentTitle          string    `json:"parentTitle"`
	GrandparentTitle     string    `json:"grandparentTitle"`
	ParentRatingKey      string    `json:"parentRatingKey"`
	GrandparentRatingKey string    `json:"grandparentRatingKey"`
	Subtype              string    `json:"subtype"`
	UserRating           *float64  `json:"userRating"`
	LastViewedAt         int64     `json:"lastViewedAt"`
	ViewedAt             int64     `json:"viewedAt"`
	Genre                []plexTag `json:"Genre"`
	Mood                 []plexTag `json:"Mood"`
	Label                []plexTag `json:"Label"`
	Collection           []plexTag `json:"Collection"`
}

// plexContainer is the top-level MediaContainer envelope.
type plexContainer struct {
	MediaContainer struct {
		Size      int            `json:"size"`
		Metadata  []plexMetadata `json:"Metadata"`
		Directory []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"Directory"`
	} `json:"MediaContainer"`
}

// PlexService implements [CatalogProvider] against a Plex Media Server.
//
// Album and artist metadata lookups are memoized per service instance so a
// curation run never fetches the same album twice. Construct one PlexService
// per run to keep the cache scoped (stale album edits surface next run).
type PlexService struct {
	baseURL      string
	token        string
	library      string
	httpClient   *http.Client
	mu           sync.Mutex
	albumCache   map[string]*plexMetadata
	artistCache  map[string]*plexMetadata
	sectionKey   string
	sectionKeyMu sync.Once
	sectionErr   error
}

// NewPlexService creates a PlexService for the given server URL, token and music library name.
func NewPlexService(baseURL, token, library string, client *http.Client) *PlexService {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	return &PlexService{
		baseURL:     baseURL,
		token:       token,
		library:     library,
		httpClient:  client,
		albumCache:  make(map[string]*plexMetadata),
		artistCache: make(map[string]*plexMetadata),
	}
}

func (s *PlexService) Name() string {
	return "Plex"
}

// doRequest performs an authenticated GET against the Plex API and decodes the
// media container envelope.
func (s *PlexService) doRequest(ctx context.Context, endpoint string, params url.Values) (*plexContainer, error) {
	if s.token == "" {
		return nil, fmt.Errorf("%w: no Plex token configured", shared.ErrMissingToken)
	}

	apiURL := s.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Plex-Token", s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: plex API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var container plexContainer
	if err := json.NewDecoder(resp.Body).Decode(&container); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &container, nil
}

// librarySectionKey resolves and caches the section key for the configured music library.
func (s *PlexService) librarySectionKey(ctx context.Context) (string, error) {
	s.sectionKeyMu.Do(func() {
		container, err := s.doRequest(ctx, "/library/sections", nil)
		if err != nil {
			s.sectionErr = err
			return
		}

		for _, dir := range container.MediaContainer.Directory {
			if dir.Type == "artist" && dir.Title == s.library {
				s.sectionKey = dir.Key
				return
			}
		}
		s.sectionErr = fmt.Errorf("%w: music library %q not found", shared.ErrInvalidConfig, s.library)
	})

	return s.sectionKey, s.sectionErr
}

// FetchCandidates returns tracks from listening history played during the
// given daypart hours within the lookback window, with play counts aggregated
// across history entries.
func (s *PlexService) FetchCandidates(ctx context.Context, hours []int, lookbackDays int) ([]models.Track, error) {
	sectionKey, err := s.librarySectionKey(ctx)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -lookbackDays)
	params := url.Values{}
	params.Set("librarySectionID", sectionKey)
	params.Set("viewedAt>", fmt.Sprintf("%d", since.Unix()))

	container, err := s.doRequest(ctx, "/status/sessions/history/all", params)
	if err != nil {
		return nil, err
	}

	hourSet := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		hourSet[h] = struct{}{}
	}

	playCounts := make(map[string]int)
	lastPlayed := make(map[string]time.Time)
	var order []string

	for _, entry := range container.MediaContainer.Metadata {
		if entry.Type != "" && entry.Type != "track" {
			continue
		}
		if entry.ViewedAt == 0 {
			continue
		}

		viewed := time.Unix(entry.ViewedAt, 0)
		if _, ok := hourSet[viewed.Hour()]; !ok {
			continue
		}

		key := entry.RatingKey
		if key == "" {
			continue
		}

		if _, seen := playCounts[key]; !seen {
			order = append(order, key)
		}
		playCounts[key]++
		if viewed.After(lastPlayed[key]) {
			lastPlayed[key] = viewed
		}
	}

	tracks := make([]models.Track, 0, len(order))
	for _, key := range order {
		track, err := s.Track(ctx, key)
		if err != nil {
			// A single missing track never fails the batch.
			continue
		}

		track.PlayCount = playCounts[key]
		if played, ok := lastPlayed[key]; ok {
			t := played
			track.LastPlayedAt = &t
		}
		tracks = append(tracks, *track)
	}

	return tracks, nil
}

// SonicNeighbors returns the IDs of up to limit sonically nearest tracks, best match first.
func (s *PlexService) SonicNeighbors(ctx context.Context, trackID string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf("/library/metadata/%s/nearest", trackID)
	container, err := s.doRequest(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(container.MediaContainer.Metadata))
	for _, item := range container.MediaContainer.Metadata {
		if item.RatingKey != "" {
			ids = append(ids, item.RatingKey)
		}
	}

	return ids, nil
}

// RecentlyPlayed returns last-play timestamps for tracks played since the given time.
func (s *PlexService) RecentlyPlayed(ctx context.Context, since time.Time) (map[string]time.Time, error) {
	sectionKey, err := s.librarySectionKey(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("librarySectionID", sectionKey)
	params.Set("viewedAt>", fmt.Sprintf("%d", since.Unix()))

	container, err := s.doRequest(ctx, "/status/sessions/history/all", params)
	if err != nil {
		return nil, err
	}

	played := make(map[string]time.Time)
	for _, entry := range container.MediaContainer.Metadata {
		if entry.RatingKey == "" || entry.ViewedAt == 0 {
			continue
		}
		viewed := time.Unix(entry.ViewedAt, 0)
		if viewed.After(played[entry.RatingKey]) {
			played[entry.RatingKey] = viewed
		}
	}

	return played, nil
}

// Track retrieves one track with album and artist metadata folded in.
func (s *PlexService) Track(ctx context.Context, trackID string) (*models.Track, error) {
	endpoint := fmt.Sprintf("/library/metadata/%s", trackID)
	container, err := s.doRequest(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if len(container.MediaContainer.Metadata) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	meta := container.MediaContainer.Metadata[0]
	track := &models.Track{
		ID:            meta.RatingKey,
		Title:         meta.Title,
		Artist:        meta.GrandparentTitle,
		OriginalTitle: meta.OriginalTitle,
		Album:         meta.ParentTitle,
		Genres:        tagStrings(meta.Genre),
		Moods:         tagStrings(meta.Mood),
		Labels:        tagStrings(meta.Label),
		Rating:        meta.UserRating,
	}

	if meta.LastViewedAt > 0 {
		t := time.Unix(meta.LastViewedAt, 0)
		track.LastPlayedAt = &t
	}

	if album := s.fetchAlbum(ctx, meta.ParentRatingKey); album != nil {
		track.Album = album.Title
		track.AlbumArtist = album.ParentTitle
		track.AlbumSubtype = album.Subtype
		track.AlbumLabels = tagStrings(album.Label)
		track.Collections = tagStrings(album.Collection)
		track.AlbumRating = album.UserRating
	}

	if artist := s.fetchArtist(ctx, meta.GrandparentRatingKey); artist != nil {
		track.ArtistTitle = artist.Title
		track.ArtistRating = artist.UserRating
	}

	return track, nil
}

// fetchAlbum retrieves album metadata with per-instance caching. Lookup
// failures degrade to nil; the caller falls back to track-level fields.
func (s *PlexService) fetchAlbum(ctx context.Context, albumKey string) *plexMetadata {
	if albumKey == "" {
		return nil
	}

	s.mu.Lock()
	if cached, ok := s.albumCache[albumKey]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	var album *plexMetadata
	container, err := s.doRequest(ctx, fmt.Sprintf("/library/metadata/%s", albumKey), nil)
	if err == nil && len(container.MediaContainer.Metadata) > 0 {
		album = &container.MediaContainer.Metadata[0]
	}

	s.mu.Lock()
	s.albumCache[albumKey] = album
	s.mu.Unlock()

	return album
}

// fetchArtist retrieves artist metadata with per-instance caching.
func (s *PlexService) fetchArtist(ctx context.Context, artistKey string) *plexMetadata {
	if artistKey == "" {
		return nil
	}

	s.mu.Lock()
	if cached, ok := s.artistCache[artistKey]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	var artist *plexMetadata
	container, err := s.doRequest(ctx, fmt.Sprintf("/library/metadata/%s", artistKey), nil)
	if err == nil && len(container.MediaContainer.Metadata) > 0 {
		artist = &container.MediaContainer.Metadata[0]
	}

	s.mu.Lock()
	s.artistCache[artistKey] = artist
	s.mu.Unlock()

	return artist
}

func tagStrings(tags []plexTag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Tag != "" {
			out = append(out, t.Tag)
		}
	}
	return out
}
