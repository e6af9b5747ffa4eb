// Package notify keeps the short-lived toast notifications shown in the
// corner of the screen.
package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTTL is how long a toast stays on screen.
const DefaultTTL = 4 * time.Second

// maxVisible caps the stack; older toasts are dropped first.
const maxVisible = 5

// Level is the severity of a toast.
type Level int

const (
	Info Level = iota
	Success
	Error
)

// Toast is one notification.
type Toast struct {
	ID      int
	Level   Level
	Message string
}

// ExpiredMsg removes the toast with the given ID.
type ExpiredMsg struct{ ID int }

// Center is the process-wide toast stack. It is owned by the UI goroutine.
type Center struct {
	toasts []Toast
	nextID int
	ttl    time.Duration
}

// NewCenter returns an empty center. A non-positive ttl uses DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl}
}

// Push adds a toast and returns the command that expires it.
func (c *Center) Push(level Level, msg string) tea.Cmd {
	c.nextID++
	id := c.nextID
	c.toasts = append(c.toasts, Toast{ID: id, Level: level, Message: msg})
	if len(c.toasts) > maxVisible {
		c.toasts = c.toasts[len(c.toasts)-maxVisible:]
	}
	return tea.Tick(c.ttl, func(time.Time) tea.Msg {
		return ExpiredMsg{ID: id}
	})
}

func (c *Center) Info(msg string) tea.Cmd    { return c.Push(Info, msg) }
func (c *Center) Success(msg string) tea.Cmd { return c.Push(Success, msg) }

// Error pushes err's message. A nil error pushes nothing.
func (c *Center) Error(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return c.Push(Error, err.Error())
}

// Dismiss removes a toast. Unknown IDs are ignored.
func (c *Center) Dismiss(id int) {
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}

// Update handles ExpiredMsg and reports whether msg was one.
func (c *Center) Update(msg tea.Msg) bool {
	if m, ok := msg.(ExpiredMsg); ok {
		c.Dismiss(m.ID)
		return true
	}
	return false
}

// Toasts returns the visible toasts, oldest first.
func (c *Center) Toasts() []Toast {
	return c.toasts
}
