package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hearditsomewhere/internal/models"
	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/desertthunder/hearditsomewhere/internal/tasks"
	th "github.com/desertthunder/hearditsomewhere/internal/testing"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func roadTripSource() *th.MockSource {
	return &th.MockSource{
		Playlists: []models.PlaylistDescriptor{{ID: "PL1", Name: "Road Trip"}},
		Items: map[string][]models.SourceItem{
			"PL1": {
				th.Item("v1", "Sia", "Chandelier"),
				th.Item("v2", "", "Untitled"),
				th.Item("v3", "안녕 Queen", "Bohemian Rhapsody"),
			},
		},
	}
}

func newTestModel(source *th.MockSource, dest *th.MockDestination, owner string) *Model {
	m := NewModel(context.Background(), tasks.EngineOpts{Source: source, Destination: dest}, owner)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m.Update(m.Init()())
	return m
}

// drain runs commands until the model stops producing them.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("migration did not finish")
		}
		_, cmd = m.Update(cmd())
	}
}

func TestModel(t *testing.T) {
	t.Run("Init lists source playlists", func(t *testing.T) {
		m := newTestModel(roadTripSource(), &th.MockDestination{}, "")

		if got := len(m.playlistList.Items()); got != 1 {
			t.Fatalf("expected 1 playlist, got %d", got)
		}
		if !strings.Contains(m.View(), "Road Trip") {
			t.Errorf("expected playlist in view:\n%s", m.View())
		}
	})

	t.Run("playlist fetch failure quits", func(t *testing.T) {
		source := roadTripSource()
		source.ListErr = shared.ErrSourceUnavailable
		m := NewModel(context.Background(), tasks.EngineOpts{Source: source, Destination: &th.MockDestination{}}, "")

		_, cmd := m.Update(m.Init()())
		if !isQuit(cmd) {
			t.Error("expected quit command")
		}
		if !errors.Is(m.Err(), shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", m.Err())
		}
	})

	t.Run("full migration", func(t *testing.T) {
		dest := &th.MockDestination{Search: th.SearchTable(map[string]string{"Sia|Chandelier": "t1"})}
		m := newTestModel(roadTripSource(), dest, "alice")

		_, cmd := m.Update(keyPress("enter"))
		m.Update(cmd())
		if m.view != TrackListView {
			t.Fatalf("expected track list, got view %d (err %v)", m.view, m.err)
		}
		if len(m.records) != 2 {
			t.Fatalf("expected 2 gathered records, got %d", len(m.records))
		}
		if !strings.Contains(m.View(), "from 안녕 Queen - Bohemian Rhapsody") {
			t.Errorf("expected raw values for a normalized record:\n%s", m.View())
		}

		m.Update(keyPress("enter"))
		if m.view != OwnerView {
			t.Fatalf("expected owner view, got %d", m.view)
		}
		m.Update(keyPress("enter"))
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Owner: alice") {
			t.Errorf("expected owner in confirmation:\n%s", m.View())
		}

		_, cmd = m.Update(keyPress("y"))
		if m.view != MigrateView {
			t.Fatalf("expected migrate view, got %d", m.view)
		}
		drain(t, m, cmd)

		if m.view != ResultView {
			t.Fatalf("expected result view, got %d", m.view)
		}
		if m.Err() != nil {
			t.Fatalf("unexpected error: %v", m.Err())
		}
		if m.Result().Matched != 1 || m.Result().NoMatch != 1 {
			t.Errorf("unexpected result %+v", m.Result())
		}
		if len(dest.Appended) != 1 || dest.Appended[0][0] != "t1" {
			t.Errorf("unexpected appends %v", dest.Appended)
		}
		if dest.Owners[0] != "alice" {
			t.Errorf("expected owner alice, got %v", dest.Owners)
		}

		view := m.View()
		for _, want := range []string{"Migration Complete", "Matched: 1/2", "Queen - Bohemian Rhapsody"} {
			if !strings.Contains(view, want) {
				t.Errorf("result view missing %q:\n%s", want, view)
			}
		}

		m.Update(keyPress("r"))
		if m.view != PlaylistListView || m.engine != nil || m.Result() != nil {
			t.Error("expected restart to return to a clean playlist list")
		}
	})

	t.Run("owner is required", func(t *testing.T) {
		m := newTestModel(roadTripSource(), &th.MockDestination{}, "")
		_, cmd := m.Update(keyPress("enter"))
		m.Update(cmd())
		m.Update(keyPress("enter"))

		m.Update(keyPress("enter"))
		if m.view != OwnerView {
			t.Fatalf("expected to stay on owner view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "An owner is required") {
			t.Errorf("expected notice:\n%s", m.View())
		}

		m.Update(keyPress("bob"))
		m.Update(keyPress("enter"))
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
	})

	t.Run("declining returns to the track list", func(t *testing.T) {
		m := newTestModel(roadTripSource(), &th.MockDestination{}, "alice")
		_, cmd := m.Update(keyPress("enter"))
		m.Update(cmd())
		m.Update(keyPress("enter"))
		m.Update(keyPress("enter"))

		m.Update(keyPress("n"))
		if m.view != TrackListView {
			t.Errorf("expected track list, got %d", m.view)
		}

		m.Update(keyPress("esc"))
		if m.view != PlaylistListView || m.engine != nil {
			t.Error("expected back to discard the engine")
		}
	})

	t.Run("gather failure stays on the playlist list", func(t *testing.T) {
		source := roadTripSource()
		source.ItemsErr = shared.ErrSourceUnavailable
		m := newTestModel(source, &th.MockDestination{}, "alice")

		_, cmd := m.Update(keyPress("enter"))
		m.Update(cmd())
		if m.view != PlaylistListView {
			t.Fatalf("expected playlist list, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Errorf("expected error in view:\n%s", m.View())
		}
	})

	t.Run("export failure reports the kept playlist", func(t *testing.T) {
		dest := &th.MockDestination{
			Search:    th.SearchTable(map[string]string{"Sia|Chandelier": "t1"}),
			AppendErr: &shared.AppendRejectedError{StatusCode: 400, Body: []byte(`{"error":"bad"}`)},
		}
		m := newTestModel(roadTripSource(), dest, "alice")
		_, cmd := m.Update(keyPress("enter"))
		m.Update(cmd())
		m.Update(keyPress("enter"))
		m.Update(keyPress("enter"))
		_, cmd = m.Update(keyPress("y"))
		drain(t, m, cmd)

		if !errors.Is(m.Err(), shared.ErrAppendRejected) {
			t.Fatalf("expected ErrAppendRejected, got %v", m.Err())
		}
		view := m.View()
		if !strings.Contains(view, "Migration failed") || !strings.Contains(view, "(ID: dest-1) and kept") {
			t.Errorf("unexpected failure view:\n%s", view)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(roadTripSource(), &th.MockDestination{}, "")
		if _, cmd := m.Update(keyPress("q")); !isQuit(cmd) {
			t.Error("expected q to quit from the playlist list")
		}
	})
}

func TestPrompt(t *testing.T) {
	t.Run("refuses empty values", func(t *testing.T) {
		p := NewPrompt("Playlist", "Road Trip")

		_, cmd := p.Update(keyPress("enter"))
		if isQuit(cmd) {
			t.Fatal("expected prompt to stay open")
		}
		if !strings.Contains(p.View(), "A value is required") {
			t.Errorf("expected notice:\n%s", p.View())
		}
	})

	t.Run("submits trimmed input", func(t *testing.T) {
		p := NewPrompt("Playlist", "")
		p.Update(keyPress(" Road Trip "))

		_, cmd := p.Update(keyPress("enter"))
		if !isQuit(cmd) {
			t.Fatal("expected quit after submit")
		}
		if p.Value() != "Road Trip" {
			t.Errorf("expected 'Road Trip', got %q", p.Value())
		}
		if !strings.Contains(p.View(), "Road Trip") {
			t.Errorf("expected answer in final view:\n%s", p.View())
		}
	})

	t.Run("empty submit takes the default", func(t *testing.T) {
		p := NewPrompt("Name", "").WithDefault("Road Trip")
		if !strings.Contains(p.View(), "Road Trip") {
			t.Errorf("expected default as placeholder:\n%s", p.View())
		}

		_, cmd := p.Update(keyPress("enter"))
		if !isQuit(cmd) {
			t.Fatal("expected quit after submit")
		}
		if p.Value() != "Road Trip" {
			t.Errorf("expected 'Road Trip', got %q", p.Value())
		}
	})

	t.Run("typed value wins over the default", func(t *testing.T) {
		p := NewPrompt("Name", "").WithDefault("Road Trip")
		p.Update(keyPress("Summer"))
		p.Update(keyPress("enter"))

		if p.Value() != "Summer" {
			t.Errorf("expected 'Summer', got %q", p.Value())
		}
	})

	t.Run("cancel", func(t *testing.T) {
		for _, k := range []string{"esc", "ctrl+c"} {
			p := NewPrompt("Owner", "")
			if _, cmd := p.Update(keyPress(k)); !isQuit(cmd) {
				t.Errorf("%s: expected quit", k)
			}
			if !p.Aborted() || p.Value() != "" {
				t.Errorf("%s: expected aborted prompt", k)
			}
		}
	})

	t.Run("notice", func(t *testing.T) {
		p := NewPrompt("Playlist", "").WithNotice("Playlist not found :(. Try another one")
		if !strings.Contains(p.View(), "Try another one") {
			t.Errorf("expected notice:\n%s", p.View())
		}
	})
}

func TestStyles(t *testing.T) {
	for name, render := range map[string]func(string) string{
		"Title":   Title,
		"Success": Success,
		"Failure": Failure,
		"Warning": Warning,
		"Muted":   Muted,
	} {
		if got := render("heard"); !strings.Contains(got, "heard") {
			t.Errorf("%s dropped its text: %q", name, got)
		}
	}
}
