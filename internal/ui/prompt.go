package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt cancelled")

// Question describes a single prompt. An empty answer falls back to Default when it is set.
type Question struct {
	Label       string
	Placeholder string
	Default     string
	Notice      string
}

// Prompt is a single line text input. Submitting an empty value is refused unless a default is set.
type Prompt struct {
	label    string
	notice   string
	fallback string
	input   textinput.Model
	keys    promptKeyMap
	help    help.Model
	value   string
	aborted bool
}

var _ tea.Model = (*Prompt)(nil)

func NewPrompt(label, placeholder string) *Prompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return &Prompt{label: label, input: ti, keys: newPromptKeyMap(), help: help.New()}
}

// WithNotice shows s above the label, e.g. why the previous answer was not accepted.
func (p *Prompt) WithNotice(s string) *Prompt {
	p.notice = s
	return p
}

// WithDefault accepts an empty submit as s. s is shown as the placeholder when none was given.
func (p *Prompt) WithDefault(s string) *Prompt {
	p.fallback = s
	if p.input.Placeholder == "" {
		p.input.Placeholder = s
	}
	return p
}

// Value is the submitted text with surrounding whitespace removed.
func (p *Prompt) Value() string { return p.value }

func (p *Prompt) Aborted() bool { return p.aborted }

func (p *Prompt) Init() tea.Cmd {
	return textinput.Blink
}

func (p *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, p.keys.cancel):
			p.aborted = true
			return p, tea.Quit
		case key.Matches(msg, p.keys.submit):
			value := strings.TrimSpace(p.input.Value())
			if value == "" {
				value = p.fallback
			}
			if value == "" {
				p.notice = "A value is required"
				return p, nil
			}
			p.value = value
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Prompt) View() string {
	if p.value != "" {
		return fmt.Sprintf("%s %s\n", Muted(p.label+":"), p.value)
	}
	if p.aborted {
		return ""
	}

	var b strings.Builder
	if p.notice != "" {
		b.WriteString(Warning(p.notice) + "\n")
	}
	b.WriteString(Title(p.label) + "\n")
	b.WriteString(p.input.View() + "\n\n")
	b.WriteString(p.help.View(p.keys) + "\n")
	return b.String()
}

// Ask runs p on the terminal until the user submits or cancels.
// A cancelled prompt returns [ErrAborted].
func Ask(ctx context.Context, p *Prompt, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)

	final, err := tea.NewProgram(p, opts...).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	answered, ok := final.(*Prompt)
	if !ok || answered.Aborted() {
		return "", ErrAborted
	}
	return answered.Value(), nil
}

// TerminalPrompter asks questions with a bubbletea [Prompt].
type TerminalPrompter struct {
	Options []tea.ProgramOption
}

func (t TerminalPrompter) Prompt(ctx context.Context, q Question) (string, error) {
	return Ask(ctx, NewPrompt(q.Label, q.Placeholder).WithDefault(q.Default).WithNotice(q.Notice), t.Options...)
}
