package app

import tea "github.com/charmbracelet/bubbletea"

// mouseCapture implements layout.Capture on top of the terminal's mouse
// modes. While a splitter is dragged the app asks for all-motion events
// so the drag keeps tracking the pointer; release goes back to cell
// motion. The mode switch is a command, so the request is queued and
// handed to the runtime at the end of Update.
type mouseCapture struct {
	held    bool
	pending tea.Cmd
}

func (c *mouseCapture) Acquire() {
	if c.held {
		return
	}
	c.held = true
	c.pending = tea.EnableMouseAllMotion
}

func (c *mouseCapture) Release() {
	if !c.held {
		return
	}
	c.held = false
	c.pending = tea.EnableMouseCellMotion
}

// Held reports whether a drag owns the pointer.
func (c *mouseCapture) Held() bool { return c.held }

// flush returns the queued mode switch, if any.
func (c *mouseCapture) flush() tea.Cmd {
	cmd := c.pending
	c.pending = nil
	return cmd
}
