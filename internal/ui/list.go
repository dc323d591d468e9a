package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/hearditsomewhere/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = recordItem{}
)

// playlistItem wraps [models.PlaylistDescriptor] to implement [list.Item].
type playlistItem struct {
	playlist models.PlaylistDescriptor
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string { return fmt.Sprintf("ID: %s", i.playlist.ID) }

// recordItem wraps [models.TrackRecord] to implement [list.Item].
//
// The description shows the raw source values when normalization changed them.
type recordItem struct {
	record models.TrackRecord
}

func (i recordItem) FilterValue() string { return i.record.Title }
func (i recordItem) Title() string       { return i.record.Title }
func (i recordItem) Description() string {
	desc := i.record.Artist
	if i.record.RawArtist != i.record.Artist || i.record.RawTitle != i.record.Title {
		desc = fmt.Sprintf("%s • from %s - %s", desc, i.record.RawArtist, i.record.RawTitle)
	}
	return desc
}
