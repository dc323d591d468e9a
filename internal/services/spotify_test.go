package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/hearditsomewhere/internal/shared"
)

func newSpotifyServer(t *testing.T, handler http.HandlerFunc) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSpotifyService(SpotifyOpts{BaseURL: server.URL, HTTPClient: server.Client()}), server
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("defaults", func(t *testing.T) {
			srv := NewSpotifyService(SpotifyOpts{})
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected base URL %s, got %s", spotifyBaseURL, srv.baseURL)
			}
			if srv.description != DefaultDescription {
				t.Errorf("expected default description, got %q", srv.description)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("trims trailing slash", func(t *testing.T) {
			srv := NewSpotifyService(SpotifyOpts{BaseURL: "http://localhost:9000/v1/"})
			if srv.baseURL != "http://localhost:9000/v1" {
				t.Errorf("unexpected base URL %s", srv.baseURL)
			}
		})
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("returns the top result", func(t *testing.T) {
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("expected /search, got %s", r.URL.Path)
				}
				q := r.URL.Query()
				if got := q.Get("q"); got != "track:Bohemian Rhapsody artist:Queen" {
					t.Errorf("unexpected query %q", got)
				}
				if q.Get("type") != "track" || q.Get("limit") != "1" {
					t.Errorf("unexpected type/limit %q/%q", q.Get("type"), q.Get("limit"))
				}
				json.NewEncoder(w).Encode(map[string]any{
					"tracks": map[string]any{
						"total": 12,
						"items": []map[string]any{
							{"id": "4u7EnebtmKWzUH433cf5Qv", "name": "Bohemian Rhapsody", "artists": []map[string]any{{"name": "Queen"}}},
						},
					},
				})
			})

			track, err := srv.SearchTrack(context.Background(), "Queen", "Bohemian Rhapsody")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track.ID != "4u7EnebtmKWzUH433cf5Qv" || track.Artist != "Queen" {
				t.Errorf("unexpected track %+v", track)
			}
		})

		t.Run("zero results is ErrNoMatch", func(t *testing.T) {
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"tracks": map[string]any{"total": 0, "items": []any{}}})
			})

			_, err := srv.SearchTrack(context.Background(), "Nobody", "Nothing")
			if !errors.Is(err, shared.ErrNoMatch) {
				t.Fatalf("expected ErrNoMatch, got %v", err)
			}
		})

		t.Run("server error is ErrDestinationUnavailable", func(t *testing.T) {
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})

			_, err := srv.SearchTrack(context.Background(), "Queen", "Bohemian Rhapsody")
			if !errors.Is(err, shared.ErrDestinationUnavailable) {
				t.Fatalf("expected ErrDestinationUnavailable, got %v", err)
			}
		})

		t.Run("transport error is ErrDestinationUnavailable", func(t *testing.T) {
			srv, server := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {})
			server.Close()

			_, err := srv.SearchTrack(context.Background(), "Queen", "Bohemian Rhapsody")
			if !errors.Is(err, shared.ErrDestinationUnavailable) {
				t.Fatalf("expected ErrDestinationUnavailable, got %v", err)
			}
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		t.Run("creates a public playlist", func(t *testing.T) {
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/users/alice/playlists" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				var body createPlaylistRequest
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body.Name != "Road Trip" || !body.Public || body.Description != DefaultDescription {
					t.Errorf("unexpected body %+v", body)
				}
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(map[string]any{"id": "sp-pl-1", "name": "Road Trip"})
			})

			pl, err := srv.CreatePlaylist(context.Background(), "alice", "Road Trip")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pl.ID != "sp-pl-1" || pl.Name != "Road Trip" {
				t.Errorf("unexpected playlist %+v", pl)
			}
		})

		t.Run("empty owner is rejected without a request", func(t *testing.T) {
			var calls atomic.Int32
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})

			_, err := srv.CreatePlaylist(context.Background(), "  ", "Road Trip")
			if !errors.Is(err, shared.ErrInvalidOwner) {
				t.Fatalf("expected ErrInvalidOwner, got %v", err)
			}
			if calls.Load() != 0 {
				t.Errorf("expected no requests, got %d", calls.Load())
			}
		})

		tests := []struct {
			name    string
			status  int
			wantErr error
		}{
			{name: "not found owner", status: http.StatusNotFound, wantErr: shared.ErrInvalidOwner},
			{name: "forbidden owner", status: http.StatusForbidden, wantErr: shared.ErrInvalidOwner},
			{name: "bad request", status: http.StatusBadRequest, wantErr: shared.ErrInvalidOwner},
			{name: "unauthorized", status: http.StatusUnauthorized, wantErr: shared.ErrDestinationUnavailable},
			{name: "server error", status: http.StatusInternalServerError, wantErr: shared.ErrDestinationUnavailable},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				})

				_, err := srv.CreatePlaylist(context.Background(), "ghost", "Road Trip")
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("AppendTracks", func(t *testing.T) {
		t.Run("sends uris in order", func(t *testing.T) {
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/playlists/sp-pl-1/tracks" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				var body appendTracksRequest
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				want := []string{"spotify:track:t1", "spotify:track:t2", "spotify:track:t1"}
				if len(body.URIs) != len(want) {
					t.Fatalf("expected %d uris, got %d", len(want), len(body.URIs))
				}
				for i := range want {
					if body.URIs[i] != want[i] {
						t.Errorf("uri %d: expected %s, got %s", i, want[i], body.URIs[i])
					}
				}
				w.WriteHeader(http.StatusCreated)
			})

			if err := srv.AppendTracks(context.Background(), "sp-pl-1", []string{"t1", "t2", "t1"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("empty list sends nothing", func(t *testing.T) {
			var calls atomic.Int32
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})

			if err := srv.AppendTracks(context.Background(), "sp-pl-1", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if calls.Load() != 0 {
				t.Errorf("expected no requests, got %d", calls.Load())
			}
		})

		t.Run("non-success status is AppendRejectedError", func(t *testing.T) {
			srv, _ := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":{"status":400,"message":"Invalid track uri"}}`))
			})

			err := srv.AppendTracks(context.Background(), "sp-pl-1", []string{"bad"})
			var rejected *shared.AppendRejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("expected AppendRejectedError, got %v", err)
			}
			if rejected.StatusCode != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rejected.StatusCode)
			}
			if string(rejected.Body) != `{"error":{"status":400,"message":"Invalid track uri"}}` {
				t.Errorf("unexpected body %s", rejected.Body)
			}
			if !errors.Is(err, shared.ErrAppendRejected) {
				t.Error("expected errors.Is ErrAppendRejected")
			}
		})
	})
}
