package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
)

// ErrMatchNotFound is returned when no cached match exists for a lookup.
var ErrMatchNotFound = errors.New("match not found")

// TrackMatch is a cached destination hit for a normalized (artist, title) pair.
type TrackMatch struct {
	ID          string    `json:"id"`
	Service     string    `json:"service"`
	Artist      string    `json:"artist"`
	Title       string    `json:"title"`
	TrackID     string    `json:"track_id"`
	TrackTitle  string    `json:"track_title"`
	TrackArtist string    `json:"track_artist"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Track returns the cached destination track.
func (m *TrackMatch) Track() models.Track {
	return models.Track{ID: m.TrackID, Title: m.TrackTitle, Artist: m.TrackArtist}
}

// MatchRepository persists track matches in the track_matches table.
//
// Rows are unique per service, artist and title; [MatchRepository.Put] replaces the stored track.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new MatchRepository with the given database connection
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `id, service, artist, title, track_id, track_title, track_artist, created_at, updated_at`

// Get retrieves the match for a normalized pair. Returns [ErrMatchNotFound] on a miss.
func (r *MatchRepository) Get(ctx context.Context, service, artist, title string) (*TrackMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM track_matches WHERE service = ? AND artist = ? AND title = ?`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, service, artist, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s - %s", ErrMatchNotFound, artist, title)
	}
	return m, err
}

// Put inserts the match, or updates the stored track when the pair is already cached.
func (r *MatchRepository) Put(ctx context.Context, m *TrackMatch) error {
	if m.Service == "" || m.TrackID == "" {
		return fmt.Errorf("%w: service and track id are required", shared.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = shared.GenerateID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	query := `
		INSERT INTO track_matches (` + matchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (service, artist, title) DO UPDATE SET
			track_id = excluded.track_id,
			track_title = excluded.track_title,
			track_artist = excluded.track_artist,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Service, m.Artist, m.Title,
		m.TrackID, m.TrackTitle, m.TrackArtist,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store match: %w", err)
	}
	return nil
}

// Delete removes a match by ID
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM track_matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return nil
}

// Clear removes every match for a service, or all matches when service is empty. Returns the number removed.
func (r *MatchRepository) Clear(ctx context.Context, service string) (int64, error) {
	query := `DELETE FROM track_matches`
	args := []any{}
	if service != "" {
		query += ` WHERE service = ?`
		args = append(args, service)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear matches: %w", err)
	}
	return result.RowsAffected()
}

// List returns matches oldest first, filtered by service when it is not empty.
func (r *MatchRepository) List(ctx context.Context, service string) ([]*TrackMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM track_matches`
	args := []any{}
	if service != "" {
		query += ` WHERE service = ?`
		args = append(args, service)
	}
	query += ` ORDER BY created_at, artist, title`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*TrackMatch
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (*TrackMatch, error) {
	var m TrackMatch
	err := s.Scan(&m.ID, &m.Service, &m.Artist, &m.Title, &m.TrackID, &m.TrackTitle, &m.TrackArtist, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return &m, nil
}

// MatchCacheAdapter implements tasks.MatchCacher using [MatchRepository].
//
// A miss is reported as (nil, nil).
type MatchCacheAdapter struct {
	repo *MatchRepository
}

// NewMatchCacheAdapter creates a new MatchCacheAdapter with the given repository
func NewMatchCacheAdapter(repo *MatchRepository) *MatchCacheAdapter {
	return &MatchCacheAdapter{repo: repo}
}

func (a *MatchCacheAdapter) GetMatch(ctx context.Context, service, artist, title string) (*models.Track, error) {
	m, err := a.repo.Get(ctx, service, artist, title)
	if errors.Is(err, ErrMatchNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	track := m.Track()
	return &track, nil
}

func (a *MatchCacheAdapter) PutMatch(ctx context.Context, service string, record models.TrackRecord, track models.Track) error {
	return a.repo.Put(ctx, &TrackMatch{
		Service:     service,
		Artist:      record.Artist,
		Title:       record.Title,
		TrackID:     track.ID,
		TrackTitle:  track.Title,
		TrackArtist: track.Artist,
	})
}
