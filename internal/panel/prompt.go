package panel

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/mdr/internal/ui"
)

// PromptResultMsg is sent when the prompt is confirmed. Purpose echoes the
// value given to Show so the app knows which dialog answered.
type PromptResultMsg struct {
	Purpose string
	Value   string
}

// PromptCancelledMsg is sent when the prompt is dismissed.
type PromptCancelledMsg struct {
	Purpose string
}

// Prompt is a centered overlay text input dialog. It stands in for the
// native open/save/directory dialogs.
type Prompt struct {
	ctx     *ui.Context
	input   textinput.Model
	purpose string
	title   string
	width   int
	height  int
	visible bool
}

func NewPrompt(ctx *ui.Context) Prompt {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = 40

	return Prompt{ctx: ctx, input: ti}
}

// Show opens the dialog. initial prefills the input, for example with a
// suggested file name.
func (p *Prompt) Show(purpose, title, placeholder, initial string) tea.Cmd {
	p.visible = true
	p.purpose = purpose
	p.title = title
	p.input.Placeholder = placeholder
	p.input.SetValue(initial)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *Prompt) Hide() {
	p.visible = false
	p.input.Blur()
}

func (p Prompt) Visible() bool {
	return p.visible
}

func (p Prompt) Purpose() string { return p.purpose }

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.visible {
		return p, nil
	}

	purpose := p.purpose
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(p.input.Value())
			p.Hide()
			if value == "" {
				return p, func() tea.Msg { return PromptCancelledMsg{Purpose: purpose} }
			}
			return p, func() tea.Msg { return PromptResultMsg{Purpose: purpose, Value: value} }

		case "esc", "ctrl+c":
			p.Hide()
			return p, func() tea.Msg { return PromptCancelledMsg{Purpose: purpose} }
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Prompt) View() string {
	if !p.visible {
		return ""
	}

	width := p.width
	if width == 0 {
		width = 60
	}

	c := p.ctx
	lines := []string{
		c.Title().Render(p.title),
		p.input.View(),
		"",
		c.Dim().Render("Enter to confirm, Esc to cancel"),
	}
	return c.Overlay(width - 6).Render(strings.Join(lines, "\n"))
}

func (p *Prompt) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(width-10, 10)
}
