package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/mdr/internal/ui"
)

// FinderItem represents an item in the finder results.
type FinderItem struct {
	Title string
	Path  string
	Extra string // relative path or a content snippet
}

// FinderResultMsg is sent when a finder item is selected.
type FinderResultMsg struct {
	Path string
}

// FinderClosedMsg is sent when the finder is dismissed.
type FinderClosedMsg struct{}

// SearchFunc is called to get results for a query.
type SearchFunc func(query string) []FinderItem

// Finder is the folder-wide search overlay.
type Finder struct {
	ctx      *ui.Context
	input    textinput.Model
	items    []FinderItem
	cursor   int
	width    int
	height   int
	visible  bool
	searchFn SearchFunc
}

func NewFinder(ctx *ui.Context) Finder {
	ti := textinput.New()
	ti.Placeholder = "Search folder..."
	ti.CharLimit = 256
	ti.Width = 50

	return Finder{ctx: ctx, input: ti}
}

func (f *Finder) SetSearchFunc(fn SearchFunc) {
	f.searchFn = fn
}

func (f *Finder) Show() tea.Cmd {
	f.visible = true
	f.input.SetValue("")
	f.cursor = 0
	if f.searchFn != nil {
		f.items = f.searchFn("")
	}
	return f.input.Focus()
}

func (f *Finder) Hide() {
	f.visible = false
	f.input.Blur()
}

func (f Finder) Visible() bool {
	return f.visible
}

// Items returns the current results.
func (f Finder) Items() []FinderItem { return f.items }

func (f Finder) Update(msg tea.Msg) (Finder, tea.Cmd) {
	if !f.visible {
		return f, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			f.Hide()
			return f, func() tea.Msg { return FinderClosedMsg{} }

		case "enter":
			if f.cursor < len(f.items) {
				item := f.items[f.cursor]
				f.Hide()
				return f, func() tea.Msg {
					return FinderResultMsg{Path: item.Path}
				}
			}
			return f, nil

		case "up", "ctrl+p", "ctrl+k":
			if f.cursor > 0 {
				f.cursor--
			}
			return f, nil

		case "down", "ctrl+n", "ctrl+j":
			if f.cursor < len(f.items)-1 {
				f.cursor++
			}
			return f, nil
		}
	}

	var cmd tea.Cmd
	prevValue := f.input.Value()
	f.input, cmd = f.input.Update(msg)

	// Re-search on input change
	if f.input.Value() != prevValue && f.searchFn != nil {
		f.items = f.searchFn(f.input.Value())
		f.cursor = 0
	}

	return f, cmd
}

func (f Finder) View() string {
	if !f.visible {
		return ""
	}

	c := f.ctx
	width := f.width
	if width == 0 {
		width = 60
	}
	innerWidth := width - 6

	header := "Find in Folder"
	if n := len(f.items); n > 0 {
		header += c.Dim().Render(fmt.Sprintf("  %d/%d", f.cursor+1, n))
	}
	lines := []string{c.Title().Render(header), f.input.View(), ""}

	if len(f.items) == 0 {
		lines = append(lines, c.Dim().Render("No results"))
		return c.Overlay(innerWidth).Render(strings.Join(lines, "\n"))
	}

	// keep the cursor inside the window
	rows := max(f.height/2-4, 5)
	first := max(f.cursor-rows+1, 0)
	last := min(first+rows, len(f.items))

	normal := lipgloss.NewStyle().Foreground(c.Theme.Text)
	for i := first; i < last; i++ {
		item := f.items[i]
		prefix, style := "  ", normal
		if i == f.cursor {
			prefix, style = "> ", c.Selected()
		}
		title := item.Title
		if title == "" {
			title = item.Path
		}
		line := style.Render(prefix + title)
		if item.Extra != "" {
			line += " " + c.Dim().Render(item.Extra)
		}
		lines = append(lines, ansi.Truncate(line, innerWidth, "…"))
	}
	if rest := len(f.items) - last; rest > 0 {
		lines = append(lines, c.Dim().Render(fmt.Sprintf("  %d more", rest)))
	}

	return c.Overlay(innerWidth).Render(strings.Join(lines, "\n"))
}

func (f *Finder) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.input.Width = max(width-10, 10)
}
