package panel

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/mdr/internal/ui"
)

// WhichKeyEntry represents a single key binding for display.
type WhichKeyEntry struct {
	Key   string
	Label string
}

// WhichKey renders a which-key style popup showing available bindings.
type WhichKey struct {
	ctx     *ui.Context
	entries []WhichKeyEntry
	prefix  string
	width   int
}

func NewWhichKey(ctx *ui.Context) WhichKey {
	return WhichKey{ctx: ctx}
}

// SetEntries replaces the listed bindings. Groups (labels starting with
// "+") sort after plain actions.
func (w *WhichKey) SetEntries(prefix string, entries []WhichKeyEntry) {
	w.prefix = prefix
	w.entries = slices.Clone(entries)
	slices.SortFunc(w.entries, func(a, b WhichKeyEntry) int {
		ag, bg := strings.HasPrefix(a.Label, "+"), strings.HasPrefix(b.Label, "+")
		if ag != bg {
			if ag {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Key, b.Key)
	})
}

func (w *WhichKey) SetWidth(width int) {
	w.width = width
}

func (w *WhichKey) Clear() {
	w.entries = nil
	w.prefix = ""
}

func (w WhichKey) Visible() bool { return len(w.entries) > 0 }

func (w WhichKey) View() string {
	if len(w.entries) == 0 {
		return ""
	}

	width := w.width
	if width == 0 {
		width = 60
	}
	inner := width - 4

	c := w.ctx
	keyStyle := lipgloss.NewStyle().Foreground(c.Theme.Success).Bold(true)
	groupStyle := lipgloss.NewStyle().Foreground(c.Theme.Accent)

	cells := make([]string, len(w.entries))
	cellWidth := 0
	for i, e := range w.entries {
		label := c.Normal().Render(e.Label)
		if strings.HasPrefix(e.Label, "+") {
			label = groupStyle.Render(e.Label)
		}
		cells[i] = keyStyle.Render(e.Key) + " " + label
		cellWidth = max(cellWidth, lipgloss.Width(cells[i]))
	}

	// as many columns as fit, filled top to bottom
	cols := max(inner/(cellWidth+2), 1)
	perCol := (len(cells) + cols - 1) / cols
	var columns []string
	for i := 0; i < len(cells); i += perCol {
		col := strings.Join(cells[i:min(i+perCol, len(cells))], "\n")
		columns = append(columns, lipgloss.NewStyle().Width(cellWidth+2).Render(col))
	}

	title := "Leader"
	if w.prefix != "" {
		title = "Leader > " + w.prefix
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return c.Overlay(inner).Render(c.Title().Render(title) + "\n" + body)
}
