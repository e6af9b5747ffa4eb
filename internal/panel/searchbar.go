package panel

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/mdr/internal/ui"
)

// SearchChangedMsg carries the search term after each edit.
type SearchChangedMsg struct {
	Term string
}

// SearchStepMsg asks for the next (or previous) match.
type SearchStepMsg struct {
	Backward bool
}

// SearchClosedMsg is sent when the bar is dismissed.
type SearchClosedMsg struct{}

// SearchBar is the one-line find input shown above the status bar.
type SearchBar struct {
	ctx     *ui.Context
	input   textinput.Model
	visible bool
	width   int

	current int
	total   int
}

func NewSearchBar(ctx *ui.Context) SearchBar {
	ti := textinput.New()
	ti.Prompt = "Find: "
	ti.Placeholder = "text in document"
	ti.CharLimit = 256
	return SearchBar{ctx: ctx, input: ti, current: -1}
}

// Show opens the bar keeping the previous term selected.
func (s *SearchBar) Show() tea.Cmd {
	s.visible = true
	s.input.CursorEnd()
	return s.input.Focus()
}

func (s *SearchBar) Hide() {
	s.visible = false
	s.input.Blur()
}

func (s SearchBar) Visible() bool { return s.visible }

func (s SearchBar) Term() string { return s.input.Value() }

// SetCounts updates the "n of m" indicator. current is -1 when no match
// is focused.
func (s *SearchBar) SetCounts(current, total int) {
	s.current, s.total = current, total
}

func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd) {
	if !s.visible {
		return s, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+f":
			s.Hide()
			return s, func() tea.Msg { return SearchClosedMsg{} }
		case "enter", "down", "ctrl+n":
			return s, func() tea.Msg { return SearchStepMsg{} }
		case "shift+enter", "up", "ctrl+p":
			return s, func() tea.Msg { return SearchStepMsg{Backward: true} }
		}
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if term := s.input.Value(); term != before {
		return s, tea.Batch(cmd, func() tea.Msg { return SearchChangedMsg{Term: term} })
	}
	return s, cmd
}

func (s SearchBar) View() string {
	if !s.visible || s.width <= 0 {
		return ""
	}
	c := s.ctx

	var info string
	switch {
	case s.input.Value() == "":
	case s.total == 0:
		info = c.Error().Render("No matches")
	case s.current < 0:
		info = c.Dim().Render(fmt.Sprintf("%d matches", s.total))
	default:
		info = c.Dim().Render(fmt.Sprintf("%d of %d", s.current+1, s.total))
	}
	hint := c.Dim().Render("  enter next · shift+enter prev · esc close")
	if lipgloss.Width(hint)+lipgloss.Width(info)+30 > s.width {
		hint = ""
	}

	s.input.Width = max(s.width-lipgloss.Width(info)-lipgloss.Width(hint)-lipgloss.Width(s.input.Prompt)-3, 1)
	left := s.input.View()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(info)-lipgloss.Width(hint), 1)
	line := left + lipgloss.NewStyle().Width(gap).Render("") + info + hint
	return lipgloss.NewStyle().MaxWidth(s.width).Render(line)
}

func (s *SearchBar) SetWidth(width int) {
	s.width = width
}
