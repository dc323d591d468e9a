package ui

import (
	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/tasks"
)

// playlistsFetchedMsg carries the first page of source playlists.
type playlistsFetchedMsg struct {
	playlists []models.PlaylistDescriptor
	err       error
}

// recordsGatheredMsg carries the gathered collection of the selected playlist.
type recordsGatheredMsg struct {
	engine   *tasks.MigrationEngine
	playlist *models.PlaylistDescriptor
	records  []models.TrackRecord
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

// migrationCompleteMsg is sent once the progress channel of a run is closed.
type migrationCompleteMsg struct {
	result *tasks.MigrationResult
	err    error
}
