package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/hearditsomewhere/internal/formatter"
	"github.com/desertthunder/hearditsomewhere/internal/repositories"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/desertthunder/hearditsomewhere/internal/tasks"
	"github.com/desertthunder/hearditsomewhere/internal/ui"
	"github.com/urfave/cli/v3"
)

const (
	playlistQuestion = "Insert the name of a Youtube playlist you would like to export to Spotify"
	notFoundNotice   = "Playlist not found :(. Try another one"
	ownerQuestion    = "Please type in your Spotify user id"
	nameQuestion     = "What would you like to call your Spotify playlist?"
	farewell         = "Thank you for using HeardItSomewhere! See you next time!"
)

// Migrate copies a source playlist into a new destination playlist.
//
// Missing inputs are prompted for. An unknown playlist title is asked again until one is found.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("no-input") {
		r.prompter = nil
	}

	source, err := r.sourceCatalog(ctx)
	if err != nil {
		return err
	}
	destination, err := r.destinationCatalog(ctx)
	if err != nil {
		return err
	}

	var cache tasks.MatchCacher
	if r.config.Cache.Enabled {
		repo, closeDB, err := r.openMatches()
		if err != nil {
			return err
		}
		defer closeDB()
		cache = repositories.NewMatchCacheAdapter(repo)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	engine, err := tasks.NewMigrationEngine(tasks.EngineOpts{
		Source:      source,
		Destination: destination,
		Logger:      r.logger,
		Cache:       cache,
		Progress:    progressCh,
		Concurrency: r.config.Migration.Concurrency,
		RateLimit:   r.config.Migration.RateLimit,
		CallTimeout: r.config.Migration.CallTimeout,
		PageSize:    r.config.Source.ItemPageSize,
	})
	if err != nil {
		close(progressCh)
		return err
	}

	r.logger.Info("starting migration", "run_id", engine.RunID(), "source", source.Name(), "destination", destination.Name())
	result, err := r.runMigration(ctx, engine, cmd)
	close(progressCh)
	<-printed

	if path := cmd.String("report"); path != "" || cmd.IsSet("format") {
		written, werr := formatter.WriteReport(result, format, path)
		if werr != nil {
			r.logger.Error("failed to write report", "error", werr)
		} else {
			r.writePlain("Report written to %s\n", written)
		}
	}

	if err != nil {
		r.warnIncomplete(result)
		return err
	}

	r.printSummary(result)
	r.writePlainln(farewell)
	return nil
}

// runMigration drives the engine phase by phase, asking for input between them.
func (r *Runner) runMigration(ctx context.Context, engine *tasks.MigrationEngine, cmd *cli.Command) (*tasks.MigrationResult, error) {
	name, err := r.ask(ctx, cmd.String("source"), ui.Question{Label: playlistQuestion, Placeholder: "Road Trip"})
	if err != nil {
		return engine.Result(), err
	}

	pl, err := engine.ResolvePlaylist(ctx, name)
	for errors.Is(err, shared.ErrPlaylistNotFound) && r.prompter != nil {
		r.logger.Warn("playlist not found", "name", name)
		if name, err = r.ask(ctx, "", ui.Question{Label: playlistQuestion, Notice: notFoundNotice}); err != nil {
			return engine.Result(), err
		}
		pl, err = engine.ResolvePlaylist(ctx, name)
	}
	if err != nil {
		return engine.Result(), err
	}

	if _, err := engine.Gather(ctx); err != nil {
		return engine.Result(), err
	}

	owner, err := r.ask(ctx, cmd.String("owner"), ui.Question{Label: ownerQuestion})
	if err != nil {
		return engine.Result(), err
	}

	destName, err := r.ask(ctx, cmd.String("name"), ui.Question{Label: nameQuestion, Default: pl.Name})
	if err != nil {
		return engine.Result(), err
	}

	if _, err := engine.Resolve(ctx); err != nil {
		return engine.Result(), err
	}
	if _, err := engine.Export(ctx, owner, destName); err != nil {
		return engine.Result(), err
	}
	return engine.Result(), nil
}

// warnIncomplete points at the destination playlist a failed run left behind.
func (r *Runner) warnIncomplete(result *tasks.MigrationResult) {
	if result == nil || result.Destination == nil {
		return
	}
	r.writePlainln("%s", ui.Warning(fmt.Sprintf("Playlist '%s' was created on %s (ID: %s) but is incomplete.",
		result.Destination.Name, result.DestinationService, result.Destination.ID)))
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FindPlaylist, tasks.FetchItems:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.SearchTracks:
		if update.Step == 0 {
			r.writePlain("\n🔍 %s\n", update.Message)
		} else {
			r.writePlain("   %s\n", update.Message)
		}
	case tasks.CreatePlaylist, tasks.AppendTracks:
		r.writePlain("\n📝 %s\n", update.Message)
	}
}

func (r *Runner) printSummary(result *tasks.MigrationResult) {
	r.writePlain("\n")
	r.writePlainHeader(ui.Success("Migration Complete!"))
	r.writePlain("Source: %s on %s (%d tracks, %d skipped)\n",
		result.Source.Name, result.SourceService, result.Gathered, result.SkippedMissing)
	r.writePlain("Destination: %s on %s (ID: %s)\n",
		result.Destination.Name, result.DestinationService, result.Destination.ID)
	r.writePlain("Success rate: %d/%d (%.1f%%)\n", result.Matched, result.Gathered, result.MatchPercentage)
	if result.CacheHits > 0 {
		r.writePlain("Cache hits: %d\n", result.CacheHits)
	}

	if result.NoMatch > 0 {
		r.writePlain("\n%s\n", ui.Warning(fmt.Sprintf("Not found on %s (%d):", result.DestinationService, result.NoMatch)))
		for _, match := range result.Matches {
			if !match.Matched() {
				r.writePlain("  - %s - %s\n", match.Record.Artist, match.Record.Title)
			}
		}
	}
}
