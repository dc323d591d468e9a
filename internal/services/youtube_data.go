// YouTube Data API v3 [SourceCatalog] implementation
//
// Reads playlists straight from the Google API instead of the ytmusicapi proxy.
// Track metadata is derived from the video snippet: auto-generated "Artist - Topic"
// channels name the artist, otherwise the title is split on " - ".
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const topicSuffix = " - Topic"

// YouTubeDataService implements [SourceCatalog] on the YouTube Data API.
type YouTubeDataService struct {
	svc          *youtube.Service
	playlistPage int
	itemPage     int
}

// NewYouTubeDataService builds the Data API client on top of an authorized http client.
// An empty endpoint keeps the Google default.
func NewYouTubeDataService(ctx context.Context, client *http.Client, endpoint string) (*YouTubeDataService, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create youtube client: %v", shared.ErrSourceUnavailable, err)
	}

	return &YouTubeDataService{
		svc:          svc,
		playlistPage: defaultPlaylistPageSize,
		itemPage:     defaultItemPageSize,
	}, nil
}

// WithPageSizes sets how many playlists and items a single listing returns.
func (y *YouTubeDataService) WithPageSizes(playlists, items int) *YouTubeDataService {
	if playlists > 0 {
		y.playlistPage = playlists
	}
	if items > 0 {
		y.itemPage = items
	}
	return y
}

func (y *YouTubeDataService) Name() string {
	return "YouTube"
}

// ListPlaylists returns the first page of the authorized user's playlists.
func (y *YouTubeDataService) ListPlaylists(ctx context.Context) ([]models.PlaylistDescriptor, error) {
	resp, err := y.svc.Playlists.List([]string{"snippet", "contentDetails"}).
		Mine(true).
		MaxResults(int64(y.playlistPage)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable(shared.ErrSourceUnavailable, err)
	}

	items := resp.Items
	if len(items) > y.playlistPage {
		items = items[:y.playlistPage]
	}

	playlists := make([]models.PlaylistDescriptor, 0, len(items))
	for _, p := range items {
		name := ""
		if p.Snippet != nil {
			name = p.Snippet.Title
		}
		playlists = append(playlists, models.PlaylistDescriptor{ID: p.Id, Name: name})
	}
	return playlists, nil
}

func (y *YouTubeDataService) FindPlaylistByName(ctx context.Context, name string) (*models.PlaylistDescriptor, error) {
	return findPlaylistByName(ctx, y, name)
}

// ListItems returns the first page of a playlist's items.
func (y *YouTubeDataService) ListItems(ctx context.Context, playlistID string) ([]models.SourceItem, error) {
	resp, err := y.svc.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(int64(y.itemPage)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable(shared.ErrSourceUnavailable, err)
	}

	entries := resp.Items
	if len(entries) > y.itemPage {
		entries = entries[:y.itemPage]
	}

	items := make([]models.SourceItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, convertPlaylistItem(entry))
	}
	return items, nil
}

func convertPlaylistItem(entry *youtube.PlaylistItem) models.SourceItem {
	item := models.SourceItem{ID: entry.Id}

	snippet := entry.Snippet
	if snippet == nil {
		return item
	}
	if snippet.ResourceId != nil && snippet.ResourceId.VideoId != "" {
		item.ID = snippet.ResourceId.VideoId
	}

	switch snippet.Title {
	case "", "Deleted video", "Private video":
		return item
	}

	if channel, ok := strings.CutSuffix(snippet.VideoOwnerChannelTitle, topicSuffix); ok && channel != "" {
		item.Artist = models.StringPtr(channel)
		item.Title = models.StringPtr(snippet.Title)
		return item
	}

	if artist, title, ok := strings.Cut(snippet.Title, " - "); ok && artist != "" && title != "" {
		item.Artist = models.StringPtr(artist)
		item.Title = models.StringPtr(title)
		return item
	}

	item.Title = models.StringPtr(snippet.Title)
	return item
}
