package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/tasks"
)

const progressBuffer = 50

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	OwnerView
	ConfirmView
	MigrateView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	opts   tasks.EngineOpts
	width  int
	height int

	playlistList list.Model
	trackList    list.Model
	ownerInput   textinput.Model
	notice       string
	loading      bool

	engine       *tasks.MigrationEngine
	selected     *models.PlaylistDescriptor
	records      []models.TrackRecord
	progressChan chan tasks.ProgressUpdate
	done         chan migrationCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.MigrationResult
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a TUI model. Every selected playlist gets a fresh engine built from opts,
// owner pre-fills the destination account prompt.
func NewModel(ctx context.Context, opts tasks.EngineOpts, owner string) *Model {
	ti := textinput.New()
	ti.Placeholder = "spotify user id"
	ti.CharLimit = 128
	ti.SetValue(owner)

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		opts:         opts,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		trackList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		ownerInput:   ti,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

// Err is the error that ended the program, if any.
func (m *Model) Err() error { return m.err }

// Result is the last finished run, if any.
func (m *Model) Result() *tasks.MigrationResult { return m.result }

// Init fetches the source playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.listSize()
		m.playlistList.SetSize(w, h)
		m.trackList.SetSize(w, h)
		m.ownerInput.Width = min(w, 50)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case OwnerView:
			return m.handleOwnerKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case MigrateView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList.Title = fmt.Sprintf("%s Playlists", m.opts.Source.Name())
		return m, m.playlistList.SetItems(items)

	case recordsGatheredMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.reset()
			return m, nil
		}
		m.engine = msg.engine
		m.selected = msg.playlist
		m.records = msg.records
		items := make([]list.Item, len(msg.records))
		for i, r := range msg.records {
			items[i] = recordItem{record: r}
		}
		w, h := m.listSize()
		m.trackList = list.New(items, list.NewDefaultDelegate(), w, h)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", msg.playlist.Name)
		m.view = TrackListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, waitForProgress(m.progressChan, m.done)

	case migrationCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case OwnerView:
		return m.renderOwner()
	case ConfirmView:
		return m.renderConfirm()
	case MigrateView:
		return m.renderMigrate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// reset discards the selected playlist and its engine.
func (m *Model) reset() {
	m.view = PlaylistListView
	m.engine = nil
	m.selected = nil
	m.records = nil
	m.result = nil
	m.notice = ""
	m.progress = tasks.ProgressUpdate{}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering || m.loading {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.err = nil
			m.loading = true
			return m, m.gather(pl.playlist)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.reset()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = OwnerView
		m.notice = ""
		return m, m.ownerInput.Focus()
	}
	return m.updateLists(msg)
}

func (m *Model) handleOwnerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.ownerInput.Blur()
		m.view = TrackListView
		return m, nil
	case "enter":
		if strings.TrimSpace(m.ownerInput.Value()) == "" {
			m.notice = "An owner is required"
			return m, nil
		}
		m.ownerInput.Blur()
		m.notice = ""
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.ownerInput, cmd = m.ownerInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = MigrateView
		return m, m.startMigration()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.reset()
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	source, ctx := m.opts.Source, m.ctx
	return func() tea.Msg {
		playlists, err := source.ListPlaylists(ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

// gather starts a new engine for pl and runs it up to the Gathered state.
func (m *Model) gather(pl models.PlaylistDescriptor) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, progressBuffer)
	opts := m.opts
	opts.Progress = m.progressChan
	ctx := m.ctx

	return func() tea.Msg {
		engine, err := tasks.NewMigrationEngine(opts)
		if err != nil {
			return recordsGatheredMsg{err: err}
		}

		found, err := engine.ResolvePlaylist(ctx, pl.Name)
		if err != nil {
			return recordsGatheredMsg{err: err}
		}

		collection, err := engine.Gather(ctx)
		if err != nil {
			return recordsGatheredMsg{err: err}
		}
		return recordsGatheredMsg{engine: engine, playlist: found, records: collection.Records()}
	}
}

// startMigration resolves and exports in the background. Progress is read until the channel closes.
func (m *Model) startMigration() tea.Cmd {
	engine, progress := m.engine, m.progressChan
	owner := strings.TrimSpace(m.ownerInput.Value())
	name := m.selected.Name
	ctx := m.ctx

	done := make(chan migrationCompleteMsg, 1)
	m.done = done

	go func() {
		defer close(progress)

		if _, err := engine.Resolve(ctx); err != nil {
			done <- migrationCompleteMsg{result: engine.Result(), err: err}
			return
		}
		_, err := engine.Export(ctx, owner, name)
		done <- migrationCompleteMsg{result: engine.Result(), err: err}
	}()

	return waitForProgress(progress, done)
}

func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan migrationCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) renderPlaylistList() string {
	var status string
	switch {
	case m.loading:
		status = Muted("Gathering tracks...") + "\n"
	case m.err != nil:
		status = Failure(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", status, m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	migrateKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "migrate"),
	)
	helpKeys := []key.Binding{migrateKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderOwner() string {
	title := Title(fmt.Sprintf("Who owns the new playlist on %s?", m.opts.Destination.Name()))

	var notice string
	if m.notice != "" {
		notice = Warning(m.notice) + "\n"
	}

	continueKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue"))
	helpView := m.help.ShortHelpView([]key.Binding{continueKey, m.keys.back})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, notice, m.ownerInput.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := Title(fmt.Sprintf("Migrate '%s' to %s?", m.selected.Name, m.opts.Destination.Name()))
	info := fmt.Sprintf("\nPlaylist: %s\nOwner: %s\nTracks: %d\n",
		m.selected.Name, strings.TrimSpace(m.ownerInput.Value()), len(m.records))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderMigrate() string {
	title := Title("Migrating Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.SearchTracks:
		phase = fmt.Sprintf("Searching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreatePlaylist:
		phase = fmt.Sprintf("Creating playlist on %s...", m.opts.Destination.Name())
	case tasks.AppendTracks:
		phase = "Adding tracks..."
	case tasks.Complete:
		phase = "Finishing..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, Muted(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		out := Failure(fmt.Sprintf("Migration failed: %v", m.err))
		if m.result != nil && m.result.Destination != nil {
			out += fmt.Sprintf("\n\nPlaylist '%s' was created (ID: %s) and kept.", m.result.Destination.Name, m.result.Destination.ID)
		}
		return fmt.Sprintf("%s\n\n%s", out, helpView)
	}

	if m.result == nil {
		return Failure("No result available") + "\n\n" + helpView
	}

	r := m.result
	title := Success("✓ Migration Complete!")
	info := fmt.Sprintf(
		"\nSource: %s (%d tracks, %d skipped)\nDestination: %s (ID: %s)\nMatched: %d/%d (%.1f%%)",
		r.Source.Name, r.Gathered, r.SkippedMissing,
		r.Destination.Name, r.Destination.ID,
		r.Matched, r.Gathered, r.MatchPercentage,
	)

	var missing string
	if r.NoMatch > 0 {
		missing = "\n\n" + Warning(fmt.Sprintf("Not found on %s (%d):", r.DestinationService, r.NoMatch))
		for _, match := range r.Matches {
			if !match.Matched() {
				missing += fmt.Sprintf("\n  • %s - %s", match.Record.Artist, match.Record.Title)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, missing, helpView)
}
