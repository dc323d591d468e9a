// Catalog interfaces driven by the migration engine
//
// YouTube (proxy or Data API) is the source and Spotify is the destination.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
)

// SourceCatalog reads playlists and their items from the source platform.
type SourceCatalog interface {
	// Name returns the name of the platform (e.g., "YouTube Music")
	Name() string

	// ListPlaylists returns the first page of the authenticated user's playlists.
	ListPlaylists(ctx context.Context) ([]models.PlaylistDescriptor, error)

	// FindPlaylistByName returns the first playlist whose title equals name, ignoring case.
	// Returns [shared.ErrPlaylistNotFound] when nothing matches.
	FindPlaylistByName(ctx context.Context, name string) (*models.PlaylistDescriptor, error)

	// ListItems returns the first page of items of a playlist.
	// Any transport or auth failure is reported as [shared.ErrSourceUnavailable].
	ListItems(ctx context.Context, playlistID string) ([]models.SourceItem, error)
}

// DestinationCatalog searches the destination platform and assembles playlists on it.
type DestinationCatalog interface {
	// Name returns the name of the platform (e.g., "Spotify")
	Name() string

	// SearchTrack returns the top-ranked track for the artist and title, or [shared.ErrNoMatch].
	SearchTrack(ctx context.Context, artist, title string) (*models.Track, error)

	// CreatePlaylist creates a public playlist owned by ownerID.
	CreatePlaylist(ctx context.Context, ownerID, name string) (*models.PlaylistDescriptor, error)

	// AppendTracks adds trackIDs, in order, to the playlist in a single call.
	AppendTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

type playlistLister interface {
	ListPlaylists(ctx context.Context) ([]models.PlaylistDescriptor, error)
}

// findPlaylistByName scans the listed playlists for a case-insensitive title match. The first match wins.
func findPlaylistByName(ctx context.Context, src playlistLister, name string) (*models.PlaylistDescriptor, error) {
	playlists, err := src.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	for _, pl := range playlists {
		if strings.EqualFold(pl.Name, name) {
			found := pl
			return &found, nil
		}
	}

	return nil, fmt.Errorf("%w: no playlist named '%s'", shared.ErrPlaylistNotFound, name)
}

// unavailable wraps err with kind unless it already carries it. Deadline errors get [shared.ErrTimeout] as context.
func unavailable(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %v", kind, shared.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}
