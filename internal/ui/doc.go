// Package ui implements the terminal surface of heard using bubbletea's Elm architecture.
//
// Two entry points are provided:
//   - [Prompt] / [Ask] : a single line text input used by the CLI to ask for missing values
//     such as the source playlist title or the destination owner
//   - [Model] : an interactive migration workflow
//
// The [Model] walks through these views:
//  1. [PlaylistListView] : Browse the source playlists
//  2. [TrackListView] : Preview the gathered (normalized) tracks
//  3. [OwnerView] : Enter the destination account
//  4. [ConfirmView] : Confirm the migration
//  5. [MigrateView] : Monitor progress updates while tracks are searched and exported
//  6. [ResultView] : Display the match rate and the tracks that were not found
//
// A fresh [tasks.MigrationEngine] is built for every selected playlist. Its progress channel is drained
// by a tea.Cmd so updates never block the run.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, r, q) with contextual help
// rendered by charmbracelet/bubbles/help. Colors come from a small lipgloss [Palette].
package ui
