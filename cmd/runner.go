package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hearditsomewhere/internal/repositories"
	"github.com/desertthunder/hearditsomewhere/internal/services"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/desertthunder/hearditsomewhere/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Prompter asks the user for a single value.
type Prompter interface {
	Prompt(ctx context.Context, q ui.Question) (string, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Catalogs are built from the configuration on first use unless injected.
type Runner struct {
	config      *shared.Config
	configPath  string
	logger      *log.Logger
	output      io.Writer
	prompter    Prompter
	source      services.SourceCatalog
	destination services.DestinationCatalog
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Logger      *log.Logger
	Output      io.Writer
	Prompter    Prompter
	Source      services.SourceCatalog
	Destination services.DestinationCatalog
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		logger:      opts.Logger,
		output:      opts.Output,
		prompter:    opts.Prompter,
		source:      opts.Source,
		destination: opts.Destination,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		migrateCommand, playlistsCommand, tracksCommand, searchCommand, tuiCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the configuration named by --config, applies HEARD_* overrides and the log level.
//
// A missing file falls back to the embedded defaults. An injected config is kept as-is.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.config != nil {
		return ctx, nil
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return ctx, err
		}
		r.logger.Debug("loaded config", "path", r.configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := shared.ApplyEnv(config); err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// sourceCatalog builds the configured [services.SourceCatalog].
func (r *Runner) sourceCatalog(ctx context.Context) (services.SourceCatalog, error) {
	if r.source != nil {
		return r.source, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	cfg := r.config.Source
	switch cfg.Provider {
	case "youtube":
		if cfg.AccessToken == "" {
			return nil, fmt.Errorf("%w: source.access_token is required for the youtube provider", shared.ErrMissingCredentials)
		}
		client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}))
		svc, err := services.NewYouTubeDataService(ctx, client, "")
		if err != nil {
			return nil, err
		}
		r.source = svc.WithPageSizes(cfg.PlaylistPageSize, cfg.ItemPageSize)
	default:
		svc := services.NewYouTubeService(cfg.ProxyURL).WithPageSizes(cfg.PlaylistPageSize, cfg.ItemPageSize)
		if cfg.AuthFile != "" {
			if err := svc.Authenticate(ctx, map[string]string{"auth_file": cfg.AuthFile}); err != nil {
				return nil, err
			}
		}
		r.source = svc
	}

	r.logger.Debug("source catalog ready", "service", r.source.Name())
	return r.source, nil
}

// destinationCatalog builds the Spotify [services.DestinationCatalog].
func (r *Runner) destinationCatalog(ctx context.Context) (services.DestinationCatalog, error) {
	if r.destination != nil {
		return r.destination, nil
	}

	cfg := r.config.Destination.Spotify
	client, err := cfg.Client(ctx)
	if err != nil {
		return nil, err
	}

	r.destination = services.NewSpotifyService(services.SpotifyOpts{
		BaseURL:     cfg.BaseURL,
		HTTPClient:  client,
		Description: r.config.Migration.PlaylistDescription,
	})
	return r.destination, nil
}

// openMatches opens the match cache database and applies pending migrations.
func (r *Runner) openMatches() (*repositories.MatchRepository, func(), error) {
	cfg := r.config.Cache
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate cache: %w", err)
	}
	return repositories.NewMatchRepository(db), func() { db.Close() }, nil
}

// ask returns value when set, otherwise prompts for it.
// Without a prompter the question's default is used, and a question without one is a missing argument.
func (r *Runner) ask(ctx context.Context, value string, q ui.Question) (string, error) {
	if value != "" {
		return value, nil
	}
	if r.prompter == nil {
		if q.Default != "" {
			return q.Default, nil
		}
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, q.Label)
	}
	return r.prompter.Prompt(ctx, q)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
