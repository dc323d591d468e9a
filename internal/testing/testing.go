// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
)

// MockSource is a test double for [services.SourceCatalog]
//
// Lookup is case-insensitive over Playlists, the first match wins.
type MockSource struct {
	Playlists []models.PlaylistDescriptor
	Items     map[string][]models.SourceItem
	ListErr   error // returned by ListPlaylists and FindPlaylistByName
	ItemsErr  error // returned by ListItems

	mu    sync.Mutex
	Calls []string
}

func (m *MockSource) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockSource) Name() string { return "mock-source" }

func (m *MockSource) ListPlaylists(ctx context.Context) ([]models.PlaylistDescriptor, error) {
	m.record("ListPlaylists")
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Playlists, nil
}

func (m *MockSource) FindPlaylistByName(ctx context.Context, name string) (*models.PlaylistDescriptor, error) {
	m.record("FindPlaylistByName:" + name)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	for _, pl := range m.Playlists {
		if strings.EqualFold(pl.Name, name) {
			found := pl
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
}

func (m *MockSource) ListItems(ctx context.Context, playlistID string) ([]models.SourceItem, error) {
	m.record("ListItems:" + playlistID)
	if m.ItemsErr != nil {
		return nil, m.ItemsErr
	}
	return m.Items[playlistID], nil
}

// SearchFunc lets a test decide each search outcome.
type SearchFunc func(ctx context.Context, artist, title string) (*models.Track, error)

// MockDestination is a test double for [services.DestinationCatalog]
//
// Without a Search func every query misses. Searches are recorded as "artist|title".
type MockDestination struct {
	Search    SearchFunc
	CreateErr error
	AppendErr error
	Playlist  models.PlaylistDescriptor // returned by CreatePlaylist; ID defaults to "dest-1"

	mu       sync.Mutex
	Searches []string
	Created  []models.PlaylistDescriptor
	Owners   []string
	Appended [][]string
}

func (m *MockDestination) Name() string { return "mock-destination" }

func (m *MockDestination) SearchTrack(ctx context.Context, artist, title string) (*models.Track, error) {
	m.mu.Lock()
	m.Searches = append(m.Searches, artist+"|"+title)
	m.mu.Unlock()

	if m.Search == nil {
		return nil, shared.ErrNoMatch
	}
	return m.Search(ctx, artist, title)
}

func (m *MockDestination) CreatePlaylist(ctx context.Context, ownerID, name string) (*models.PlaylistDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Owners = append(m.Owners, ownerID)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	pl := m.Playlist
	if pl.ID == "" {
		pl.ID = "dest-1"
	}
	pl.Name = name
	m.Created = append(m.Created, pl)
	return &pl, nil
}

func (m *MockDestination) AppendTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Appended = append(m.Appended, append([]string(nil), trackIDs...))
	return m.AppendErr
}

// SearchTable answers searches from a map keyed by "artist|title"; missing keys are [shared.ErrNoMatch].
func SearchTable(hits map[string]string) SearchFunc {
	return func(ctx context.Context, artist, title string) (*models.Track, error) {
		id, ok := hits[artist+"|"+title]
		if !ok {
			return nil, fmt.Errorf("%w: %s - %s", shared.ErrNoMatch, artist, title)
		}
		return &models.Track{ID: id, Title: title, Artist: artist}, nil
	}
}

// Item builds a [models.SourceItem]; an empty artist or title is treated as absent.
func Item(id, artist, title string) models.SourceItem {
	item := models.SourceItem{ID: id}
	if artist != "" {
		item.Artist = models.StringPtr(artist)
	}
	if title != "" {
		item.Title = models.StringPtr(title)
	}
	return item
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
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
