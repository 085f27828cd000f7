// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
)

// MockCatalog is a test double for [services.CatalogProvider]
type MockCatalog struct {
	Tracks    []models.Track
	Neighbors map[string][]string
	Recent    map[string]time.Time
	Err       error
}

func (m *MockCatalog) FetchCandidates(ctx context.Context, hours []int, lookbackDays int) ([]models.Track, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

func (m *MockCatalog) SonicNeighbors(ctx context.Context, trackID string, limit int) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Neighbors[trackID], nil
}

func (m *MockCatalog) RecentlyPlayed(ctx context.Context, since time.Time) (map[string]time.Time, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Recent, nil
}

func (m *MockCatalog) Track(ctx context.Context, trackID string) (*models.Track, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Tracks {
		if m.Tracks[i].ID == trackID {
			return &m.Tracks[i], nil
		}
	}
	return nil, shared.ErrTrackNotFound
}

func (m *MockCatalog) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
