package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#1DB954", "#04B575", "#FF4D4D", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders a heading.
func Title(s string) string { return styles.title.Render(s) }

// Success renders a positive status line.
func Success(s string) string { return styles.ok.Render(s) }

// Failure renders an error line.
func Failure(s string) string { return styles.err.Render(s) }

// Warning renders a caution line, used for skipped and unmatched tracks.
func Warning(s string) string { return styles.warn.Render(s) }

// Muted renders secondary text such as hints.
func Muted(s string) string { return styles.help.Render(s) }
