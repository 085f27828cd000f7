package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// In-memory SQLite exists per connection; keep the pool at one.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Record", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run, err := repo.Record("Morning", "Test Playlist", "A test run", []string{"t1", "t2", "t3"})
		if err != nil {
			t.Fatalf("failed to record run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("sequence = %d, want 1", run.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		created, err := repo.Record("Morning", "Test Playlist", "A test run", []string{"t1", "t2"})
		if err != nil {
			t.Fatalf("failed to record run: %v", err)
		}

		got, err := repo.Get(created.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if got.Period() != "Morning" || got.Title() != "Test Playlist" {
			t.Errorf("unexpected run: period=%q title=%q", got.Period(), got.Title())
		}
		ids := got.TrackIDs()
		if len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
			t.Errorf("track IDs round-trip failed: %v", ids)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Get("nonexistent"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Latest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Record("Morning", "First", "", []string{"t1"}); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.Record("Evening", "Second", "", []string{"t2"}); err != nil {
			t.Fatal(err)
		}

		latest, err := repo.Latest("")
		if err != nil {
			t.Fatalf("failed to get latest run: %v", err)
		}
		if latest.Title() != "Second" {
			t.Errorf("latest run = %q, want %q", latest.Title(), "Second")
		}

		morning, err := repo.Latest("Morning")
		if err != nil {
			t.Fatalf("failed to get latest morning run: %v", err)
		}
		if morning.Title() != "First" {
			t.Errorf("latest morning run = %q, want %q", morning.Title(), "First")
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run, err := repo.Record("Morning", "Before", "", []string{"t1"})
		if err != nil {
			t.Fatal(err)
		}

		renamed := models.RestoreCurationRun(run.ID(), run.Sequence(), run.Period(),
			"After", run.Description(), []string{"t1", "t2"},
			run.CreatedAt(), run.UpdatedAt(), nil)
		if err := repo.Update(renamed); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		fresh, err := repo.Get(run.ID())
		if err != nil {
			t.Fatal(err)
		}
		if fresh.Title() != "After" {
			t.Errorf("title = %q, want %q", fresh.Title(), "After")
		}
		if fresh.TrackCount() != 2 {
			t.Errorf("track count = %d, want 2", fresh.TrackCount())
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		ghost := models.RestoreCurationRun("ghost", 1, "Morning", "Ghost", "", []string{"t1"},
			time.Now(), time.Now(), nil)
		if err := repo.Update(ghost); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run, err := repo.Record("Morning", "Doomed", "", []string{"t1"})
		if err != nil {
			t.Fatal(err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound after delete, got %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on double delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for i, period := range []string{"Morning", "Morning", "Evening"} {
			if _, err := repo.Record(period, "Run", "", []string{"t1"}); err != nil {
				t.Fatalf("failed to record run %d: %v", i, err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 runs, got %d", len(all))
		}
		if len(all) > 1 && all[0].Sequence() < all[1].Sequence() {
			t.Error("expected newest-first ordering")
		}

		mornings, err := repo.List(map[string]any{"period": "Morning"})
		if err != nil {
			t.Fatal(err)
		}
		if len(mornings) != 2 {
			t.Errorf("expected 2 morning runs, got %d", len(mornings))
		}

		limited, err := repo.List(map[string]any{"limit": 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 run with limit, got %d", len(limited))
		}
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Record("", "", "", nil); err == nil {
			t.Error("expected validation error for empty run")
		}
	})
}

func TestNeighborRepository(t *testing.T) {
	t.Run("SaveAndFetch", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewNeighborRepository(db)
		if err := repo.SaveNeighbors("t1", []string{"n1", "n2", "n3"}, 20); err != nil {
			t.Fatalf("failed to save neighbors: %v", err)
		}

		got, err := repo.Neighbors("t1", 20)
		if err != nil {
			t.Fatalf("failed to fetch neighbors: %v", err)
		}
		want := []string{"n1", "n2", "n3"}
		if len(got) != len(want) {
			t.Fatalf("expected %d neighbors, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("MissReturnsNil", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewNeighborRepository(db)
		got, err := repo.Neighbors("unknown", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for cache miss, got %v", got)
		}
	})

	t.Run("DeepListTruncatedToLimit", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewNeighborRepository(db)
		if err := repo.SaveNeighbors("t1", []string{"n1", "n2", "n3", "n4", "n5"}, 5); err != nil {
			t.Fatal(err)
		}

		got, err := repo.Neighbors("t1", 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 neighbors at limit 2, got %d", len(got))
		}
		if got[0] != "n1" || got[1] != "n2" {
			t.Errorf("expected the closest neighbors, got %v", got)
		}
	})

	t.Run("ShallowListTreatedAsMiss", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewNeighborRepository(db)
		if err := repo.SaveNeighbors("t1", []string{"n1"}, 10); err != nil {
			t.Fatal(err)
		}

		got, err := repo.Neighbors("t1", 20)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Errorf("expected miss for deeper limit, got %v", got)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewNeighborRepository(db)
		if err := repo.SaveNeighbors("t1", []string{"old1", "old2"}, 20); err != nil {
			t.Fatal(err)
		}
		if err := repo.SaveNeighbors("t1", []string{"new1"}, 20); err != nil {
			t.Fatal(err)
		}

		got, err := repo.Neighbors("t1", 20)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0] != "new1" {
			t.Errorf("expected replacement list, got %v", got)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewNeighborRepository(db)
		if err := repo.SaveNeighbors("t1", []string{"n1"}, 20); err != nil {
			t.Fatal(err)
		}

		// Nothing is older than an hour yet.
		pruned, err := repo.Prune(time.Hour)
		if err != nil {
			t.Fatalf("failed to prune: %v", err)
		}
		if pruned != 0 {
			t.Errorf("expected 0 pruned, got %d", pruned)
		}

		// Everything is older than a zero-age cutoff.
		pruned, err = repo.Prune(-time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if pruned != 1 {
			t.Errorf("expected 1 pruned, got %d", pruned)
		}
	})
}
