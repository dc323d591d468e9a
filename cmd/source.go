package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/desertthunder/hearditsomewhere/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Playlists lists the first page of source playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	source, err := r.sourceCatalog(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists", "service", source.Name())

	playlists, err := source.ListPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists found on %s\n", source.Name())
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("%s Playlists", source.Name()))
	for i, pl := range playlists {
		r.writePlain("%d. %s (ID: %s)\n", i+1, pl.Name, pl.ID)
	}
	return nil
}

// Tracks gathers a source playlist without touching the destination, showing what a migration would search for.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	source, err := r.sourceCatalog(ctx)
	if err != nil {
		return err
	}

	engine, err := tasks.NewMigrationEngine(tasks.EngineOpts{
		Source:      source,
		Destination: offlineDestination{},
		Logger:      r.logger,
		CallTimeout: r.config.Migration.CallTimeout,
		PageSize:    r.config.Source.ItemPageSize,
	})
	if err != nil {
		return err
	}

	pl, err := engine.ResolvePlaylist(ctx, name)
	if err != nil {
		return err
	}
	collection, err := engine.Gather(ctx)
	if err != nil {
		return err
	}

	records := collection.Records()
	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (ID: %s)", pl.Name, pl.ID))
	for i, rec := range records {
		r.writePlain("%d. %s - %s\n", i+1, rec.Artist, rec.Title)
	}
	r.writePlainln("%d tracks, %d skipped for missing metadata", len(records), engine.Result().SkippedMissing)
	return nil
}
