// YouTube Music [SourceCatalog] implementation
//
// Communicates with the FastAPI proxy server (music/) running on port 8080.
// The proxy wraps ytmusicapi Python library for YouTube Music operations.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
)

const (
	defaultYTBaseURL        string = "http://localhost:8080"
	defaultPlaylistPageSize int    = 25
	defaultItemPageSize     int    = 35
)

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID string          `json:"videoId"`
	Title   string          `json:"title"`
	Artists []YouTubeArtist `json:"artists"`
}

// YouTubePlaylist represents a playlist from YouTube Music.
type YouTubePlaylist struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Tracks []YouTubeTrack `json:"tracks,omitempty"`
}

type youtubeLibraryPlaylist struct {
	PlaylistID string `json:"playlistId"`
	Title      string `json:"title"`
}

// YouTubeService implements [SourceCatalog] for YouTube Music via proxy.
type YouTubeService struct {
	baseURL      string
	authFile     string
	httpClient   *http.Client
	playlistPage int
	itemPage     int
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:      baseURL,
		httpClient:   http.DefaultClient,
		playlistPage: defaultPlaylistPageSize,
		itemPage:     defaultItemPageSize,
	}
}

// WithHTTPClient replaces the client used for proxy requests.
func (y *YouTubeService) WithHTTPClient(client *http.Client) *YouTubeService {
	if client != nil {
		y.httpClient = client
	}
	return y
}

// WithPageSizes sets how many playlists and items a single listing returns.
// Non-positive values leave the current size in place.
func (y *YouTubeService) WithPageSizes(playlists, items int) *YouTubeService {
	if playlists > 0 {
		y.playlistPage = playlists
	}
	if items > 0 {
		y.itemPage = items
	}
	return y
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the authentication file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: missing auth_file in credentials", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrSourceUnavailable, err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return unavailable(shared.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music API error (status %d): %s", shared.ErrSourceUnavailable, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music API error: status %d", shared.ErrSourceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrSourceUnavailable, err)
	}

	return nil
}

// ListPlaylists retrieves the first page of playlists for the authenticated user.
//
// Calls GET /api/library/playlists?limit=N on the proxy.
func (y *YouTubeService) ListPlaylists(ctx context.Context) ([]models.PlaylistDescriptor, error) {
	var library []youtubeLibraryPlaylist

	endpoint := "/api/library/playlists?" + url.Values{"limit": {strconv.Itoa(y.playlistPage)}}.Encode()
	if err := y.doRequest(ctx, endpoint, &library); err != nil {
		return nil, err
	}

	if len(library) > y.playlistPage {
		library = library[:y.playlistPage]
	}

	playlists := make([]models.PlaylistDescriptor, len(library))
	for i, p := range library {
		playlists[i] = models.PlaylistDescriptor{ID: p.PlaylistID, Name: p.Title}
	}
	return playlists, nil
}

// FindPlaylistByName returns the first listed playlist whose title matches name, ignoring case.
func (y *YouTubeService) FindPlaylistByName(ctx context.Context, name string) (*models.PlaylistDescriptor, error) {
	return findPlaylistByName(ctx, y, name)
}

// ListItems retrieves the first page of tracks in a playlist.
//
// Calls GET /api/playlists/{id}?limit=M on the proxy. Tracks without a title or
// without a named artist are returned with the corresponding field absent.
func (y *YouTubeService) ListItems(ctx context.Context, playlistID string) ([]models.SourceItem, error) {
	var playlist YouTubePlaylist

	endpoint := fmt.Sprintf("/api/playlists/%s?%s",
		url.PathEscape(playlistID), url.Values{"limit": {strconv.Itoa(y.itemPage)}}.Encode())
	if err := y.doRequest(ctx, endpoint, &playlist); err != nil {
		return nil, err
	}

	tracks := playlist.Tracks
	if len(tracks) > y.itemPage {
		tracks = tracks[:y.itemPage]
	}

	items := make([]models.SourceItem, 0, len(tracks))
	for _, t := range tracks {
		items = append(items, convertYouTubeTrack(t))
	}
	return items, nil
}

func convertYouTubeTrack(t YouTubeTrack) models.SourceItem {
	item := models.SourceItem{ID: t.VideoID}
	if t.Title != "" {
		item.Title = models.StringPtr(t.Title)
	}
	if len(t.Artists) > 0 && t.Artists[0].Name != "" {
		item.Artist = models.StringPtr(t.Artists[0].Name)
	}
	return item
}
