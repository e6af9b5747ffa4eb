// Package ui carries what every panel needs from the application: the
// active palette, the toast center and the logger.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pfassina/mdr/internal/logging"
	"github.com/pfassina/mdr/internal/notify"
	"github.com/pfassina/mdr/internal/theme"
)

// Context is created once at startup and passed down explicitly.
type Context struct {
	Theme  *theme.Theme
	Toasts *notify.Center
	Log    *log.Logger
}

// NewContext fills nil fields with defaults.
func NewContext(th *theme.Theme, toasts *notify.Center, logger *log.Logger) *Context {
	if th == nil {
		d := theme.DefaultTheme()
		th = &d
	}
	if toasts == nil {
		toasts = notify.NewCenter(0)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Context{Theme: th, Toasts: toasts, Log: logger}
}

// SetTheme swaps the palette in place so panels holding the pointer pick
// it up.
func (c *Context) SetTheme(t theme.Theme) {
	*c.Theme = t
}

func (c *Context) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(c.Theme.Accent)
}

func (c *Context) Subtitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c.Theme.Subtle)
}

func (c *Context) Selected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c.Theme.Accent).Bold(true)
}

func (c *Context) Normal() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c.Theme.Text)
}

func (c *Context) Dim() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c.Theme.Dim)
}

func (c *Context) Error() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c.Theme.Error)
}

// Overlay is the bordered box used by prompts, the finder and which-key.
func (c *Context) Overlay(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c.Theme.Accent).
		Padding(0, 1).
		Width(width)
}

// Toast renders one notification line.
func (c *Context) Toast(t notify.Toast) string {
	color := c.Theme.Accent
	icon := "i"
	switch t.Level {
	case notify.Success:
		color, icon = c.Theme.Success, "✓"
	case notify.Error:
		color, icon = c.Theme.Error, "✗"
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(c.Theme.Text).
		Padding(0, 1).
		MaxWidth(60).
		Render(lipgloss.NewStyle().Foreground(color).Render(icon) + " " + t.Message)
}

// RenderToasts renders the toast stack, newest at the bottom, or "".
func (c *Context) RenderToasts() string {
	toasts := c.Toasts.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, len(toasts))
	for i, t := range toasts {
		rendered[i] = c.Toast(t)
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}
