// Package editor provides the editing pane. Two widgets satisfy Widget: a
// built-in textarea and an embedded Neovim running in a PTY.
package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/mdr/internal/search"
)

// Widget is the editing surface the app talks to.
type Widget interface {
	search.Target

	Update(msg tea.Msg) tea.Cmd
	View() string
	// SetSize may return a command, e.g. to start a backing process on
	// the first layout.
	SetSize(width, height int) tea.Cmd
	Focus() tea.Cmd
	Blur()

	Value() string
	SetValue(content string)
	// CursorLine returns the zero-based cursor line and its text.
	CursorLine() (int, string)
	// Mode is a short label for the status bar.
	Mode() string
	Close()
}

// ChangedMsg is emitted after the user edits the buffer.
type ChangedMsg struct{}

// SaveRequestedMsg asks the app to save, e.g. from :w inside Neovim.
type SaveRequestedMsg struct{}

// QuitRequestedMsg asks the app to quit, e.g. from :q inside Neovim.
type QuitRequestedMsg struct{}

// ErrorMsg reports a widget failure the app should surface.
type ErrorMsg struct{ Err error }

func changed() tea.Msg { return ChangedMsg{} }
