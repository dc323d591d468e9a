// Package services defines the [SourceCatalog] and [DestinationCatalog] interfaces and implements
// them for YouTube (source) and Spotify (destination).
//
// # Source Catalogs
//
// [YouTubeService] communicates with the FastAPI proxy server (music/) wrapping ytmusicapi.
// The auth_file path is sent via X-Auth-File header on each request.
//
// [YouTubeDataService] reads the same data through the YouTube Data API v3. Artist and title
// are derived from the video snippet since the Data API has no music metadata.
//
// Both read a single page: up to 25 playlists and up to 35 items per playlist by default.
// Playlist lookup by name is case-insensitive and the first listed match wins.
//
// # Spotify Implementation
//
// [SpotifyService] talks to the Web API with an injected [http.Client]. The client is expected
// to carry the bearer token; [shared.SpotifyConfig.Client] builds one that refreshes it.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrSourceUnavailable] : any source transport, auth or decode failure
//   - [shared.ErrPlaylistNotFound] : no playlist with the requested title
//   - [shared.ErrNoMatch] : the destination search returned zero tracks
//   - [shared.ErrInvalidOwner] : the destination refused the playlist owner
//   - [shared.ErrDestinationUnavailable] : any other destination failure
//   - [*shared.AppendRejectedError] : the append call returned a non-success status
//
// Timeouts surface as the unavailable error of the side that timed out, with [shared.ErrTimeout] attached.
package services
