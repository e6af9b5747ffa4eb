package panel

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/mdr/internal/markdown"
	"github.com/pfassina/mdr/internal/ui"
)

// OutlineJumpMsg asks the editor to move to a heading's line (0-based).
type OutlineJumpMsg struct {
	Line int
}

// OutlineClosedMsg is sent when the outline is dismissed.
type OutlineClosedMsg struct{}

// Outline is an overlay listing the headings of the current document.
type Outline struct {
	ctx      *ui.Context
	headings []markdown.Heading
	cursor   int
	width    int
	height   int
	visible  bool
}

func NewOutline(ctx *ui.Context) Outline {
	return Outline{ctx: ctx}
}

// Show lists the headings of content.
func (o *Outline) Show(content string) {
	o.headings = markdown.ExtractHeadings([]byte(content))
	o.cursor = 0
	o.visible = true
}

func (o *Outline) Hide() { o.visible = false }

func (o Outline) Visible() bool { return o.visible }

func (o Outline) Update(msg tea.Msg) (Outline, tea.Cmd) {
	if !o.visible {
		return o, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, nil
	}
	switch key.String() {
	case "esc", "q":
		o.visible = false
		return o, func() tea.Msg { return OutlineClosedMsg{} }
	case "j", "down", "ctrl+n":
		if o.cursor < len(o.headings)-1 {
			o.cursor++
		}
	case "k", "up", "ctrl+p":
		if o.cursor > 0 {
			o.cursor--
		}
	case "enter":
		if o.cursor < len(o.headings) {
			line := o.headings[o.cursor].Line - 1
			o.visible = false
			return o, func() tea.Msg { return OutlineJumpMsg{Line: line} }
		}
	}
	return o, nil
}

func (o Outline) View() string {
	if !o.visible {
		return ""
	}
	c := o.ctx
	width := o.width
	if width == 0 {
		width = 60
	}
	inner := width - 6

	lines := []string{c.Title().Render("Outline"), ""}
	if len(o.headings) == 0 {
		lines = append(lines, c.Dim().Render("No headings"))
	}

	limit := max(o.height/2, 5)
	start := 0
	if o.cursor >= limit {
		start = o.cursor - limit + 1
	}
	for i := start; i < len(o.headings) && i-start < limit; i++ {
		h := o.headings[i]
		text := strings.Repeat("  ", max(h.Level-1, 0)) + h.Text
		style := c.Normal()
		prefix := "  "
		if i == o.cursor {
			style, prefix = c.Selected(), "> "
		}
		line := style.Render(prefix+text) + " " + c.Dim().Render(fmt.Sprintf(":%d", h.Line))
		lines = append(lines, ansi.Truncate(line, inner, "…"))
	}
	return c.Overlay(inner).Render(strings.Join(lines, "\n"))
}

func (o *Outline) SetSize(width, height int) {
	o.width = width
	o.height = height
}
