package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hearditsomewhere/internal/repositories"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/desertthunder/hearditsomewhere/internal/tasks"
	"github.com/desertthunder/hearditsomewhere/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist migration.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	source, err := r.sourceCatalog(ctx)
	if err != nil {
		return err
	}
	destination, err := r.destinationCatalog(ctx)
	if err != nil {
		return err
	}

	// Logs would be drawn over the TUI, so they go to a file or nowhere.
	var logOutput io.Writer = io.Discard
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	logger := shared.NewLogger(logOutput)
	shared.SetLogLevel(logger, r.logger.GetLevel())

	opts := tasks.EngineOpts{
		Source:      source,
		Destination: destination,
		Logger:      logger,
		Concurrency: r.config.Migration.Concurrency,
		RateLimit:   r.config.Migration.RateLimit,
		CallTimeout: r.config.Migration.CallTimeout,
		PageSize:    r.config.Source.ItemPageSize,
	}
	if r.config.Cache.Enabled {
		repo, closeDB, err := r.openMatches()
		if err != nil {
			return err
		}
		defer closeDB()
		opts.Cache = repositories.NewMatchCacheAdapter(repo)
	}

	model := ui.NewModel(ctx, opts, cmd.String("owner"))
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return r.finishTUI(model.Result(), model.Err())
}

// finishTUI reports the last run once the alt screen is gone. A failed run is returned as the command error.
func (r *Runner) finishTUI(result *tasks.MigrationResult, err error) error {
	if result == nil {
		return err
	}
	if result.Err != nil {
		r.warnIncomplete(result)
		return result.Err
	}

	r.writePlain("Migrated %d of %d tracks to %s (ID: %s)\n", result.Matched, result.Gathered, result.Destination.Name, result.Destination.ID)
	r.writePlainln(farewell)
	return nil
}
