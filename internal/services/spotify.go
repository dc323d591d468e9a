// Spotify Web API [DestinationCatalog] implementation
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
)

const (
	spotifyBaseURL     = "https://api.spotify.com/v1"
	DefaultDescription = "Playlist imported from Youtube through HeardItSomewhere"
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Total int            `json:"total"`
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type appendTracksRequest struct {
	URIs []string `json:"uris"`
}

// SpotifyOpts configures a [SpotifyService].
//
// HTTPClient is expected to attach the bearer token, as returned by [shared.SpotifyConfig.Client].
type SpotifyOpts struct {
	BaseURL     string
	HTTPClient  *http.Client
	Description string
}

// SpotifyService implements [DestinationCatalog] against the Spotify Web API.
type SpotifyService struct {
	baseURL     string
	httpClient  *http.Client
	description string
}

// NewSpotifyService creates a Spotify service. Empty options fall back to the public API and [DefaultDescription].
func NewSpotifyService(opts SpotifyOpts) *SpotifyService {
	s := &SpotifyService{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		description: opts.Description,
	}
	if s.baseURL == "" {
		s.baseURL = spotifyBaseURL
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.description == "" {
		s.description = DefaultDescription
	}
	return s
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an HTTP request against the API and returns the status with the raw body.
//
// Only transport failures are errors here; callers classify status codes.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrDestinationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, unavailable(shared.ErrDestinationUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, unavailable(shared.ErrDestinationUnavailable, err)
	}
	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// SearchTrack asks the search endpoint for the single best track matching title and artist.
//
// Calls GET /search?q=track:<title> artist:<artist>&type=track&limit=1.
func (s *SpotifyService) SearchTrack(ctx context.Context, artist, title string) (*models.Track, error) {
	query := url.Values{
		"q":     {fmt.Sprintf("track:%s artist:%s", title, artist)},
		"type":  {"track"},
		"limit": {"1"},
	}

	status, body, err := s.doRequest(ctx, http.MethodGet, "/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: search failed with status %d", shared.ErrDestinationUnavailable, status)
	}

	var resp spotifySearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode search response: %v", shared.ErrDestinationUnavailable, err)
	}

	if resp.Tracks.Total == 0 || len(resp.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrNoMatch, artist, title)
	}

	top := resp.Tracks.Items[0]
	track := &models.Track{ID: top.ID, Title: top.Name}
	if len(top.Artists) > 0 {
		track.Artist = top.Artists[0].Name
	}
	return track, nil
}

// CreatePlaylist creates a public playlist for the user with the configured description.
//
// Calls POST /users/{owner}/playlists. Client errors are reported as [shared.ErrInvalidOwner].
func (s *SpotifyService) CreatePlaylist(ctx context.Context, ownerID, name string) (*models.PlaylistDescriptor, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: empty owner id", shared.ErrInvalidOwner)
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(ownerID))
	payload := createPlaylistRequest{Name: name, Description: s.description, Public: true}

	status, body, err := s.doRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	switch {
	case isSuccess(status):
	case status == http.StatusBadRequest, status == http.StatusForbidden, status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: '%s' (status %d): %s", shared.ErrInvalidOwner, ownerID, status, body)
	default:
		return nil, fmt.Errorf("%w: create playlist failed with status %d", shared.ErrDestinationUnavailable, status)
	}

	var created SpotifyPlaylist
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("%w: failed to decode playlist: %v", shared.ErrDestinationUnavailable, err)
	}
	if created.Name == "" {
		created.Name = name
	}
	return &models.PlaylistDescriptor{ID: created.ID, Name: created.Name}, nil
}

// AppendTracks adds the tracks to the playlist in one request, preserving order.
//
// Calls POST /playlists/{id}/tracks. A non-2xx response yields [*shared.AppendRejectedError]
// carrying the raw response. No request is sent for an empty list.
func (s *SpotifyService) AppendTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	status, body, err := s.doRequest(ctx, http.MethodPost, endpoint, appendTracksRequest{URIs: uris})
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return &shared.AppendRejectedError{StatusCode: status, Body: body}
	}
	return nil
}
