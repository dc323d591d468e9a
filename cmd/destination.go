package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search normalizes an artist and title the way a migration does and searches the destination.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.StringArg("artist")
	title := cmd.StringArg("title")
	if artist == "" || title == "" {
		return fmt.Errorf("%w: artist and title are required", shared.ErrMissingArgument)
	}

	destination, err := r.destinationCatalog(ctx)
	if err != nil {
		return err
	}

	artist, title = shared.Normalize(artist), shared.Normalize(title)
	r.logger.Info("searching destination", "service", destination.Name(), "artist", artist, "title", title)

	track, err := destination.SearchTrack(ctx, artist, title)
	if errors.Is(err, shared.ErrNoMatch) {
		r.writePlain("No match for %s - %s on %s\n", artist, title, destination.Name())
		return nil
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, cmd.Bool("pretty"))
	}

	r.writePlain("Found track:\n\n")
	r.writePlain("Title: %s\n", track.Title)
	if track.Artist != "" {
		r.writePlain("Artist: %s\n", track.Artist)
	}
	r.writePlain("ID: %s\n", track.ID)
	return nil
}

// offlineDestination stands in for the destination when only the source phases run.
type offlineDestination struct{}

func (offlineDestination) Name() string { return "offline" }

func (offlineDestination) SearchTrack(context.Context, string, string) (*models.Track, error) {
	return nil, shared.ErrDestinationUnavailable
}

func (offlineDestination) CreatePlaylist(context.Context, string, string) (*models.PlaylistDescriptor, error) {
	return nil, shared.ErrDestinationUnavailable
}

func (offlineDestination) AppendTracks(context.Context, string, []string) error {
	return shared.ErrDestinationUnavailable
}
