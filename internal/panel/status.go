package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/mdr/internal/ui"
)

// Status is the status bar at the bottom.
type Status struct {
	ctx      *ui.Context
	width    int
	mode     string
	view     string
	file     string
	folder   string
	dirty    bool
	resizing bool
	busy     string
	matches  string
	hint     string
}

func NewStatus(ctx *ui.Context) Status {
	return Status{ctx: ctx, mode: "VIEW"}
}

func (s *Status) SetMode(mode string) { s.mode = mode }

func (s *Status) SetView(view string) { s.view = view }

// SetFile sets the document name and whether it has unsaved changes.
func (s *Status) SetFile(name string, dirty bool) {
	s.file = name
	s.dirty = dirty
}

func (s *Status) SetFolder(folder string) { s.folder = folder }

// SetResizing shows the resize indicator while a splitter is dragged.
func (s *Status) SetResizing(resizing bool) { s.resizing = resizing }

// SetBusy names the operation in flight, or "" when idle.
func (s *Status) SetBusy(op string) { s.busy = op }

// SetMatches sets the search summary shown on the right.
func (s *Status) SetMatches(info string) { s.matches = info }

// SetHint shows a transient key hint, such as the pending leader.
func (s *Status) SetHint(hint string) { s.hint = hint }

func (s *Status) SetWidth(width int) { s.width = width }

func (s Status) modeColor() lipgloss.Color {
	th := s.ctx.Theme
	switch s.mode {
	case "INSERT", "EDIT":
		return th.InsertMode
	case "VISUAL":
		return th.VisualMode
	case "COMMAND":
		return th.CmdMode
	case "REPLACE":
		return th.Error
	default:
		return th.NormalMode
	}
}

func (s Status) View() string {
	if s.width == 0 {
		return ""
	}
	th := s.ctx.Theme

	bg := lipgloss.NewStyle().Background(th.StatusBg)
	seg := bg.Foreground(th.StatusFg).Padding(0, 1)

	mode := lipgloss.NewStyle().
		Background(s.modeColor()).
		Foreground(th.Bg).
		Bold(true).
		Padding(0, 1).
		Render(s.mode)

	name := s.file
	if name == "" {
		name = "Untitled.md"
	}
	if s.dirty {
		name += " ●"
	}
	left := mode + seg.Render(name)

	var right []string
	if s.resizing {
		right = append(right, bg.Foreground(th.Accent).Bold(true).Padding(0, 1).Render("RESIZE"))
	}
	if s.busy != "" {
		right = append(right, seg.Render(s.busy+"…"))
	}
	if s.hint != "" {
		right = append(right, bg.Foreground(th.Accent).Padding(0, 1).Render(s.hint))
	}
	if s.matches != "" {
		right = append(right, seg.Render(s.matches))
	}
	if s.view != "" {
		right = append(right, seg.Render(s.view))
	}
	if s.folder != "" {
		right = append(right, bg.Foreground(th.Dim).Padding(0, 1).Render(s.folder))
	}
	r := strings.Join(right, "")

	// drop the right side before squeezing the file name
	if lipgloss.Width(left)+lipgloss.Width(r) > s.width {
		r = ""
	}
	if lipgloss.Width(left) > s.width {
		left = ansi.Truncate(left, s.width, "…")
	}
	pad := max(s.width-lipgloss.Width(left)-lipgloss.Width(r), 0)
	return left + bg.Render(strings.Repeat(" ", pad)) + r
}

// MatchSummary formats search counts for the status bar.
func MatchSummary(current, total int) string {
	switch {
	case total == 0:
		return "no matches"
	case current < 0:
		return fmt.Sprintf("%d matches", total)
	default:
		return fmt.Sprintf("match %d/%d", current+1, total)
	}
}
