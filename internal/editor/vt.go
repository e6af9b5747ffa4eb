package editor

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/vt"
)

type vtScreen struct {
	term       *vt.SafeEmulator
	done       chan struct{}
	showCursor bool
}

// newVTScreen creates a VT emulator and starts a goroutine that drains
// terminal responses (DA1, DECRQM, etc.) back to the PTY. Without this,
// the emulator's internal io.Pipe blocks on Write when nvim sends queries.
func newVTScreen(width, height int, ptyFile *os.File) *vtScreen {
	term := vt.NewSafeEmulator(width, height)
	done := make(chan struct{})

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := term.Read(buf)
			if n > 0 {
				ptyFile.Write(buf[:n]) //nolint:errcheck // pty closed on shutdown
			}
			if err != nil {
				return
			}
			select {
			case <-done:
				return
			default:
			}
		}
	}()

	return &vtScreen{term: term, done: done, showCursor: true}
}

func (v *vtScreen) write(p []byte) (int, error) {
	return v.term.Write(p)
}

func (v *vtScreen) resize(width, height int) {
	v.term.Resize(width, height)
}

func (v *vtScreen) render() string {
	rendered := v.term.Render()
	// Render() uses \r\n; Bubble Tea expects \n
	rendered = strings.ReplaceAll(rendered, "\r\n", "\n")
	if v.showCursor {
		pos := v.term.CursorPosition()
		return overlayCursor(rendered, pos.X, pos.Y)
	}
	return rendered
}

func (v *vtScreen) setShowCursor(show bool) {
	v.showCursor = show
}

func (v *vtScreen) close() error {
	close(v.done)
	return v.term.Close()
}

// overlayCursor draws a reverse-video cell at column cx of row cy.
func overlayCursor(s string, cx, cy int) string {
	lines := strings.Split(s, "\n")
	if cy < 0 || cy >= len(lines) || cx < 0 {
		return s
	}
	lines[cy] = insertCursor(lines[cy], cx)
	return strings.Join(lines, "\n")
}

// insertCursor reverses the cell at visual column col, keeping the styling
// of the cells around it. A cursor past the end pads with spaces.
func insertCursor(line string, col int) string {
	width := ansi.StringWidth(line)
	if col >= width {
		return line + strings.Repeat(" ", col-width) + "\x1b[7m \x1b[27m"
	}
	cell := ansi.Strip(ansi.Cut(line, col, col+1))
	if cell == "" {
		cell = " "
	}
	return ansi.Cut(line, 0, col) + "\x1b[7m" + cell + "\x1b[27m" + ansi.Cut(line, col+1, width)
}

// Compile-time check that SafeEmulator implements io.Reader.
var _ io.Reader = (*vt.SafeEmulator)(nil)
