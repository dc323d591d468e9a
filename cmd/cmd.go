// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// globalFlags are inherited by every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// migrateCommand runs a full source → Spotify migration
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"run"},
		Usage:   "Copy a YouTube playlist into a new Spotify playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Source playlist title (case-insensitive); prompted when missing",
			},
			&cli.StringFlag{
				Name:    "owner",
				Aliases: []string{"o"},
				Usage:   "Spotify user id that owns the new playlist; prompted when missing",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Name of the new playlist (default: source title)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a run report to this path",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: json, yaml, csv or txt",
				Value: "json",
			},
			&cli.BoolFlag{
				Name:  "no-input",
				Usage: "Fail instead of prompting for missing values",
			},
		},
		Action: r.Migrate,
	}
}

// playlistsCommand lists source playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List source playlists (first page)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

// tracksCommand previews the gathered tracks of a source playlist
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Show the normalized tracks a migration of NAME would search for",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Tracks,
	}
}

// searchCommand searches the destination catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search Spotify for ARTIST TITLE after normalization",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artist"},
			&cli.StringArg{Name: "title"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// tuiCommand returns the top-level TUI command for interactive migrations.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist migration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "owner",
				Usage: "Pre-fill the Spotify user id",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file while the TUI runs",
			},
		},
		Action: r.TUI,
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the match cache database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config file to the --config path",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// cacheCommand manages the match cache
func cacheCommand(r *Runner) *cli.Command {
	serviceFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "service",
			Usage: "Destination service name (empty for all)",
		}
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear cached destination matches",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached matches",
				Flags: []cli.Flag{
					serviceFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove cached matches",
				Flags: []cli.Flag{
					serviceFlag(),
					&cli.StringFlag{
						Name:  "id",
						Usage: "Remove a single cached match by ID",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
