package tasks

import (
	"fmt"

	"github.com/desertthunder/hearditsomewhere/internal/models"
)

// ProgressUpdate represents a progress event during a migration run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FindPlaylist Phase = iota
	FetchItems
	SearchTracks
	CreatePlaylist
	AppendTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case FindPlaylist:
		return "find_playlist"
	case FetchItems:
		return "fetch_items"
	case SearchTracks:
		return "search_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AppendTracks:
		return "append_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func findPlaylistUpdate(name, service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FindPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up playlist %q on %s...", name, service),
	}
}

func foundPlaylistUpdate(pl *models.PlaylistDescriptor) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FindPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func gatheredUpdate(kept, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    kept,
		Total:   kept + skipped,
		Message: fmt.Sprintf("Collected %d tracks (%d skipped for missing metadata)", kept, skipped),
	}
}

func searchTracksUpdate(step, total int, res *models.MatchResult) ProgressUpdate {
	if res == nil {
		return ProgressUpdate{
			Phase:   SearchTracks,
			Step:    step,
			Total:   total,
			Message: "Searching for tracks on the destination...",
		}
	}

	mark := "✓"
	if !res.Matched() {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, res.Record.Artist, res.Record.Title),
		Data:    res,
	}
}

func createPlaylistUpdate(name, service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q on %s...", name, service),
	}
}

func appendTracksUpdate(pl *models.PlaylistDescriptor, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s (ID: %s)...", count, pl.Name, pl.ID),
		Data:    pl,
	}
}

func completeUpdate(result *MigrationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    result.Matched,
		Total:   result.Gathered,
		Message: fmt.Sprintf("Migrated %d of %d tracks", result.Matched, result.Gathered),
		Data:    result,
	}
}
