package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CacheList prints the cached destination matches.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openMatches()
	if err != nil {
		return err
	}
	defer closeDB()

	service := cmd.String("service")
	matches, err := repo.List(ctx, service)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(matches, cmd.Bool("pretty"))
	}

	if len(matches) == 0 {
		r.writePlain("No cached matches\n")
		return nil
	}

	for _, m := range matches {
		r.writePlain("%s - %s → %s - %s [%s] (%s)\n", m.Artist, m.Title, m.TrackArtist, m.TrackTitle, m.TrackID, m.Service)
	}
	r.writePlainln("%d cached matches", len(matches))
	return nil
}

// CacheClear removes cached matches: a single entry with --id, otherwise one service or all of them.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openMatches()
	if err != nil {
		return err
	}
	defer closeDB()

	if id := cmd.String("id"); id != "" {
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		r.writePlain("✓ Removed cached match %s\n", id)
		return nil
	}

	service := cmd.String("service")
	removed, err := repo.Clear(ctx, service)
	if err != nil {
		return err
	}

	r.logger.Info("cleared match cache", "service", service, "removed", removed)
	r.writePlain("✓ Removed %d cached matches\n", removed)
	return nil
}
