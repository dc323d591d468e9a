package shared

import (
	"database/sql"
	"testing"
	"time"
)

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func appliedVersions(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to query schema_migrations: %v", err)
	}
	return count
}

func insertMatch(db *sql.DB, id, service, artist, title, trackID string) error {
	now := time.Now()
	_, err := db.Exec(`INSERT INTO track_matches (id, service, artist, title, track_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, id, service, artist, title, trackID, now, now)
	return err
}

func TestMigrations(t *testing.T) {
	t.Run("embedded scripts are ordered and paired", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected the track_matches migration")
		}

		for i, m := range migrations {
			if i > 0 && m.Version <= migrations[i-1].Version {
				t.Errorf("version %d listed after %d", m.Version, migrations[i-1].Version)
			}
			if m.Up == "" || m.Down == "" {
				t.Errorf("version %d needs both up and down SQL", m.Version)
			}
		}
	})

	t.Run("running twice applies each version once", func(t *testing.T) {
		db := migratedDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		migrations, _ := loadMigrations()
		if got := appliedVersions(t, db); got != len(migrations) {
			t.Errorf("expected %d applied versions, got %d", len(migrations), got)
		}
	})

	t.Run("rollback drops the match table", func(t *testing.T) {
		db := migratedDB(t)
		before := appliedVersions(t, db)

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if after := appliedVersions(t, db); after != before-1 {
			t.Errorf("expected %d applied versions after rollback, got %d", before-1, after)
		}
		if _, err := db.Exec("SELECT 1 FROM track_matches LIMIT 1"); err == nil {
			t.Error("track_matches should be gone after rollback")
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected an error with nothing left to roll back")
		}
	})
}

func TestTrackMatchesSchema(t *testing.T) {
	t.Run("one row per service, artist and title", func(t *testing.T) {
		db := migratedDB(t)

		if err := insertMatch(db, "m1", "Spotify", " Queen", "Bohemian Rhapsody", "t1"); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}
		if err := insertMatch(db, "m2", "Spotify", " Queen", "Bohemian Rhapsody", "t2"); err == nil {
			t.Error("expected the unique constraint to reject a second row for the same key")
		}
	})

	t.Run("key parts are compared exactly", func(t *testing.T) {
		db := migratedDB(t)
		insertMatch(db, "m1", "Spotify", " Queen", "Bohemian Rhapsody", "t1")

		tests := []struct {
			name    string
			service string
			artist  string
			title   string
		}{
			{name: "other service", service: "Deezer", artist: " Queen", title: "Bohemian Rhapsody"},
			{name: "without the leading space", service: "Spotify", artist: "Queen", title: "Bohemian Rhapsody"},
			{name: "different case", service: "Spotify", artist: " queen", title: "Bohemian Rhapsody"},
			{name: "other title", service: "Spotify", artist: " Queen", title: "Bohemian Rhapsody Live"},
		}

		for i, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				id := string(rune('a' + i))
				if err := insertMatch(db, id, tt.service, tt.artist, tt.title, "t1"); err != nil {
					t.Errorf("expected a distinct key, got %v", err)
				}
			})
		}
	})

	t.Run("conflicting insert can upsert", func(t *testing.T) {
		db := migratedDB(t)
		insertMatch(db, "m1", "Spotify", "Sia", "Chandelier", "t1")

		now := time.Now()
		_, err := db.Exec(`INSERT INTO track_matches (id, service, artist, title, track_id, track_title, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (service, artist, title) DO UPDATE SET track_id = excluded.track_id, track_title = excluded.track_title`,
			"m2", "Spotify", "Sia", "Chandelier", "t9", "Chandelier", now, now)
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		var id, trackID, trackTitle, trackArtist string
		err = db.QueryRow(`SELECT id, track_id, track_title, track_artist FROM track_matches
			WHERE service = 'Spotify' AND artist = 'Sia' AND title = 'Chandelier'`).Scan(&id, &trackID, &trackTitle, &trackArtist)
		if err != nil {
			t.Fatalf("failed to read row: %v", err)
		}
		if id != "m1" || trackID != "t9" || trackTitle != "Chandelier" {
			t.Errorf("expected row m1 updated to t9, got %s/%s/%q", id, trackID, trackTitle)
		}
		if trackArtist != "" {
			t.Errorf("expected empty default track_artist, got %q", trackArtist)
		}
	})

	t.Run("track id index exists", func(t *testing.T) {
		db := migratedDB(t)

		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_track_matches_track_id'`).Scan(&name)
		if err != nil {
			t.Errorf("expected idx_track_matches_track_id: %v", err)
		}
	})
}
