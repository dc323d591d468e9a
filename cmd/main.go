package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/desertthunder/hearditsomewhere/internal/ui"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Logger:   logger,
		Prompter: ui.TerminalPrompter{Options: []tea.ProgramOption{tea.WithOutput(os.Stderr)}},
	})

	app := &cli.Command{
		Name:     "heard",
		Usage:    "Migrate YouTube playlists to Spotify",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.before,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, ui.ErrAborted) || errors.Is(err, context.Canceled) {
			logger.Warn("cancelled")
			os.Exit(130)
		}
		logger.Fatalf("application error: %v", err)
	}
}
