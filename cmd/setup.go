package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the match cache database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Cache.Path)

	db, err := shared.NewDatabase(r.config.Cache.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Cache.MaxOpenConns, r.config.Cache.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Match cache ready at %s\n", r.config.Cache.Path)
	if !r.config.Cache.Enabled {
		r.writePlain("Set cache.enabled = true (or HEARD_CACHE_ENABLED=true) to use it during migrations.\n")
	}
	return nil
}

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("force") {
		if err := shared.SaveConfig(r.configPath, shared.DefaultConfig()); err != nil {
			return err
		}
	} else if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Configuration written to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set destination.spotify.access_token (or HEARD_DESTINATION_SPOTIFY_ACCESS_TOKEN)\n")
	r.writePlain("2. Point [source] at your ytmusicapi proxy, or set provider = \"youtube\" with an access token\n")
	r.writePlain("3. Run 'heard playlists' to check the source connection\n")
	return nil
}
