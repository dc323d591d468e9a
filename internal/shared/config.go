package shared

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

const spotifyTokenURL = "https://accounts.spotify.com/api/token"

// YouTubeMaxResults is the largest page the YouTube Data API returns (maxResults).
const YouTubeMaxResults = 50

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Source      SourceConfig      `toml:"source" envPrefix:"SOURCE_"`
	Destination DestinationConfig `toml:"destination" envPrefix:"DESTINATION_"`
	Migration   MigrationConfig   `toml:"migration" envPrefix:"MIGRATION_"`
	Cache       CacheConfig       `toml:"cache" envPrefix:"CACHE_"`
}

// SourceConfig selects and configures the platform playlists are read from.
type SourceConfig struct {
	Provider         string `toml:"provider" env:"PROVIDER"`
	ProxyURL         string `toml:"proxy_url" env:"PROXY_URL"`
	AuthFile         string `toml:"auth_file" env:"AUTH_FILE"`
	AccessToken      string `toml:"access_token" env:"ACCESS_TOKEN"`
	PlaylistPageSize int    `toml:"playlist_page_size" env:"PLAYLIST_PAGE_SIZE"`
	ItemPageSize     int    `toml:"item_page_size" env:"ITEM_PAGE_SIZE"`
}

// DestinationConfig contains destination platform settings.
type DestinationConfig struct {
	Spotify SpotifyConfig `toml:"spotify" envPrefix:"SPOTIFY_"`
}

// SpotifyConfig contains Spotify API credentials.
//
// Credentials are obtained elsewhere; a refresh token plus client credentials enables automatic refresh.
type SpotifyConfig struct {
	BaseURL      string `toml:"base_url" env:"BASE_URL"`
	AccessToken  string `toml:"access_token" env:"ACCESS_TOKEN"`
	RefreshToken string `toml:"refresh_token" env:"REFRESH_TOKEN"`
	ClientID     string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"CLIENT_SECRET"`
}

// MigrationConfig tunes the resolve phase and the created playlist.
type MigrationConfig struct {
	Concurrency         int           `toml:"concurrency" env:"CONCURRENCY"`
	RateLimit           float64       `toml:"rate_limit" env:"RATE_LIMIT"`
	CallTimeout         time.Duration `toml:"call_timeout" env:"CALL_TIMEOUT"`
	PlaylistDescription string        `toml:"playlist_description" env:"PLAYLIST_DESCRIPTION"`
}

// CacheConfig contains match cache database settings.
type CacheConfig struct {
	Enabled      bool   `toml:"enabled" env:"ENABLED"`
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides configuration values from HEARD_* environment variables,
// e.g. HEARD_DESTINATION_SPOTIFY_ACCESS_TOKEN.
func ApplyEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: "HEARD_"}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Token returns the stored credentials as an [oauth2.Token].
func (c SpotifyConfig) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
}

// Client builds an authenticated [http.Client] for the Spotify Web API.
//
// With a refresh token and client credentials the client refreshes expired tokens; otherwise the access token is used as-is.
func (c SpotifyConfig) Client(ctx context.Context) (*http.Client, error) {
	if c.AccessToken == "" && c.RefreshToken == "" {
		return nil, fmt.Errorf("%w: spotify access_token or refresh_token must be set", ErrMissingCredentials)
	}

	if c.RefreshToken != "" && c.ClientID != "" && c.ClientSecret != "" {
		conf := &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: spotifyTokenURL},
		}
		return conf.Client(ctx, c.Token()), nil
	}

	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(c.Token())), nil
}

// Validate checks that the values needed for a migration run are present and in range.
func (c *Config) Validate() error {
	switch c.Source.Provider {
	case "ytmusic", "youtube":
	default:
		return fmt.Errorf("%w: unknown source provider %q", ErrInvalidConfig, c.Source.Provider)
	}

	if c.Migration.Concurrency < 1 {
		return fmt.Errorf("%w: migration.concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.Source.PlaylistPageSize < 1 || c.Source.ItemPageSize < 1 {
		return fmt.Errorf("%w: page sizes must be positive", ErrInvalidConfig)
	}
	if c.Source.Provider == "youtube" && (c.Source.PlaylistPageSize > YouTubeMaxResults || c.Source.ItemPageSize > YouTubeMaxResults) {
		return fmt.Errorf("%w: page sizes above %d are rejected by the youtube provider", ErrInvalidConfig, YouTubeMaxResults)
	}
	if c.Migration.CallTimeout <= 0 {
		return fmt.Errorf("%w: migration.call_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
