package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestMatchRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Put and Get", func(t *testing.T) {
		repo := NewMatchRepository(setupTestDB(t))

		m := &TrackMatch{Service: "Spotify", Artist: " Queen", Title: "Bohemian Rhapsody", TrackID: "t1", TrackTitle: "Bohemian Rhapsody", TrackArtist: "Queen"}
		if err := repo.Put(ctx, m); err != nil {
			t.Fatalf("failed to put match: %v", err)
		}
		if m.ID == "" {
			t.Error("match ID should be set after Put")
		}

		got, err := repo.Get(ctx, "Spotify", " Queen", "Bohemian Rhapsody")
		if err != nil {
			t.Fatalf("failed to get match: %v", err)
		}
		if got.TrackID != "t1" || got.TrackArtist != "Queen" {
			t.Errorf("unexpected match %+v", got)
		}
		if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be stored")
		}
	})

	t.Run("keys are exact", func(t *testing.T) {
		repo := NewMatchRepository(setupTestDB(t))
		repo.Put(ctx, &TrackMatch{Service: "Spotify", Artist: " Queen", Title: "Bohemian Rhapsody", TrackID: "t1"})

		tests := []struct {
			name, service, artist, title string
		}{
			{"other service", "Deezer", " Queen", "Bohemian Rhapsody"},
			{"without leading space", "Spotify", "Queen", "Bohemian Rhapsody"},
			{"other title", "Spotify", " Queen", "Radio Ga Ga"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := repo.Get(ctx, tt.service, tt.artist, tt.title)
				if !errors.Is(err, ErrMatchNotFound) {
					t.Errorf("expected ErrMatchNotFound, got %v", err)
				}
			})
		}
	})

	t.Run("Put replaces the stored track", func(t *testing.T) {
		repo := NewMatchRepository(setupTestDB(t))

		repo.Put(ctx, &TrackMatch{Service: "Spotify", Artist: "Sia", Title: "Chandelier", TrackID: "old"})
		if err := repo.Put(ctx, &TrackMatch{Service: "Spotify", Artist: "Sia", Title: "Chandelier", TrackID: "new"}); err != nil {
			t.Fatalf("failed to replace match: %v", err)
		}

		matches, err := repo.List(ctx, "")
		if err != nil {
			t.Fatalf("failed to list matches: %v", err)
		}
		if len(matches) != 1 || matches[0].TrackID != "new" {
			t.Errorf("expected one replaced match, got %+v", matches)
		}
	})

	t.Run("Put validates", func(t *testing.T) {
		repo := NewMatchRepository(setupTestDB(t))
		if err := repo.Put(ctx, &TrackMatch{Service: "Spotify", Artist: "Sia", Title: "Chandelier"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("List filters by service", func(t *testing.T) {
		repo := NewMatchRepository(setupTestDB(t))
		repo.Put(ctx, &TrackMatch{Service: "Spotify", Artist: "Sia", Title: "Chandelier", TrackID: "t1"})
		repo.Put(ctx, &TrackMatch{Service: "Spotify", Artist: "Queen", Title: "Bohemian Rhapsody", TrackID: "t2"})
		repo.Put(ctx, &TrackMatch{Service: "Deezer", Artist: "Sia", Title: "Chandelier", TrackID: "d1"})

		all, err := repo.List(ctx, "")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 matches, got %d", len(all))
		}

		spotify, err := repo.List(ctx, "Spotify")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(spotify) != 2 {
			t.Errorf("expected 2 Spotify matches, got %d", len(spotify))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewMatchRepository(setupTestDB(t))
		m := &TrackMatch{Service: "Spotify", Artist: "Sia", Title: "Chandelier", TrackID: "t1"}
		repo.Put(ctx, m)

		if err := repo.Delete(ctx, m.ID); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(ctx, "Spotify", "Sia", "Chandelier"); !errors.Is(err, ErrMatchNotFound) {
			t.Errorf("expected ErrMatchNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, m.ID); !errors.Is(err, ErrMatchNotFound) {
			t.Errorf("expected ErrMatchNotFound on second delete, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewMatchRepository(setupTestDB(t))
		repo.Put(ctx, &TrackMatch{Service: "Spotify", Artist: "Sia", Title: "Chandelier", TrackID: "t1"})
		repo.Put(ctx, &TrackMatch{Service: "Deezer", Artist: "Sia", Title: "Chandelier", TrackID: "d1"})

		n, err := repo.Clear(ctx, "Spotify")
		if err != nil || n != 1 {
			t.Fatalf("expected 1 row cleared, got %d (err %v)", n, err)
		}

		n, err = repo.Clear(ctx, "")
		if err != nil || n != 1 {
			t.Fatalf("expected 1 row cleared, got %d (err %v)", n, err)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMatchRepository(db)
		db.Close()

		if _, err := repo.Get(ctx, "Spotify", "Sia", "Chandelier"); err == nil || errors.Is(err, ErrMatchNotFound) {
			t.Errorf("expected a database error, got %v", err)
		}
		if err := repo.Put(ctx, &TrackMatch{Service: "Spotify", TrackID: "t1"}); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(ctx, ""); err == nil {
			t.Error("expected error on closed database")
		}
	})
}

func TestMatchCacheAdapter(t *testing.T) {
	ctx := context.Background()
	adapter := NewMatchCacheAdapter(NewMatchRepository(setupTestDB(t)))

	track, err := adapter.GetMatch(ctx, "Spotify", "Sia", "Chandelier")
	if err != nil || track != nil {
		t.Fatalf("expected (nil, nil) on a miss, got %v, %v", track, err)
	}

	record := models.TrackRecord{SourceItemID: "id1", Artist: "Sia", Title: "Chandelier"}
	if err := adapter.PutMatch(ctx, "Spotify", record, models.Track{ID: "t1", Title: "Chandelier", Artist: "Sia"}); err != nil {
		t.Fatalf("failed to put match: %v", err)
	}

	track, err = adapter.GetMatch(ctx, "Spotify", "Sia", "Chandelier")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if track == nil || track.ID != "t1" || track.Artist != "Sia" {
		t.Errorf("unexpected track %+v", track)
	}
}
