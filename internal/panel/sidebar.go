package panel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"

	"github.com/pfassina/mdr/internal/scan"
	"github.com/pfassina/mdr/internal/ui"
)

// FileSelectedMsg is sent when a file is chosen in the sidebar.
type FileSelectedMsg struct {
	Path string
}

// ToggleSidebarMsg is sent when the collapse glyph is clicked.
type ToggleSidebarMsg struct{}

// PathCopiedMsg reports the result of copying an entry path.
type PathCopiedMsg struct {
	Path string
	Err  error
}

const (
	collapseGlyph = "«"
	expandGlyph   = "»"
	// header rows: folder name, file count
	headerRows = 2
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

// Sidebar lists the markdown files of the open folder.
type Sidebar struct {
	ctx *ui.Context

	manifest scan.Manifest
	hasRoot  bool
	loading  bool
	visible  []scan.Entry
	active   string

	filterText string
	filter     glob.Glob
	filtering  bool
	input      textinput.Model

	cursor    int
	offset    int
	width     int
	height    int
	focused   bool
	collapsed bool
}

func NewSidebar(ctx *ui.Context) Sidebar {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "glob"
	ti.CharLimit = 128
	return Sidebar{ctx: ctx, input: ti}
}

// SetLoading shows the scanning state until the next SetManifest.
func (s *Sidebar) SetLoading(loading bool) {
	s.loading = loading
}

// SetManifest replaces the listed files with a new scan result.
func (s *Sidebar) SetManifest(m scan.Manifest) {
	s.manifest = m
	s.hasRoot = m.Root != ""
	s.loading = false
	s.applyFilter()
}

func (s Sidebar) Manifest() scan.Manifest { return s.manifest }

// SetActive marks the file currently open in the editor.
func (s *Sidebar) SetActive(path string) {
	s.active = path
	for i, e := range s.visible {
		if e.AbsolutePath == path {
			s.cursor = i
			s.scrollToCursor()
			return
		}
	}
}

// SetFilter restricts the list to entries whose relative path matches the
// glob. Plain text without wildcards matches as a substring. Case is
// ignored.
func (s *Sidebar) SetFilter(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		s.filterText, s.filter = "", nil
		s.applyFilter()
		return nil
	}
	expr := strings.ToLower(pattern)
	if !strings.ContainsAny(expr, "*?[{") {
		expr = "*" + expr + "*"
	}
	g, err := glob.Compile(expr)
	if err != nil {
		return fmt.Errorf("filter %q: %w", pattern, err)
	}
	s.filterText, s.filter = pattern, g
	s.applyFilter()
	return nil
}

func (s Sidebar) Filter() string { return s.filterText }

func (s *Sidebar) applyFilter() {
	visible := make([]scan.Entry, 0, len(s.manifest.Files))
	for _, e := range s.manifest.Files {
		if s.filter != nil && !s.filter.Match(strings.ToLower(filepath.ToSlash(e.RelativePath))) {
			continue
		}
		visible = append(visible, e)
	}
	s.visible = visible
	if s.cursor >= len(s.visible) {
		s.cursor = len(s.visible) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.scrollToCursor()
}

// Visible returns the entries currently listed.
func (s Sidebar) Visible() []scan.Entry { return s.visible }

// Selected returns the entry under the cursor.
func (s Sidebar) Selected() (scan.Entry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.visible) {
		return scan.Entry{}, false
	}
	return s.visible[s.cursor], true
}

// Filtering reports whether the filter input has the keyboard.
func (s Sidebar) Filtering() bool { return s.filtering }

func (s Sidebar) listHeight() int {
	h := s.height - headerRows - 1
	if s.filtering || s.filterText != "" {
		h--
	}
	return max(h, 0)
}

func (s *Sidebar) scrollToCursor() {
	h := s.listHeight()
	if h == 0 {
		s.offset = s.cursor
		return
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+h {
		s.offset = s.cursor - h + 1
	}
}

func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	if !s.focused || s.collapsed {
		return s, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	if s.filtering {
		switch key.String() {
		case "enter":
			s.filtering = false
			s.input.Blur()
			return s, nil
		case "esc":
			s.filtering = false
			s.input.Blur()
			s.input.SetValue("")
			_ = s.SetFilter("")
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if err := s.SetFilter(s.input.Value()); err != nil {
			// half-typed patterns like "[a" are expected; keep the last good filter
			s.ctx.Log.Debug("sidebar filter", "err", err)
		}
		return s, cmd
	}

	switch key.String() {
	case "j", "down":
		if s.cursor < len(s.visible)-1 {
			s.cursor++
			s.scrollToCursor()
		}
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
			s.scrollToCursor()
		}
	case "g", "home":
		s.cursor, s.offset = 0, 0
	case "G", "end":
		if len(s.visible) > 0 {
			s.cursor = len(s.visible) - 1
			s.scrollToCursor()
		}
	case "enter":
		if e, ok := s.Selected(); ok {
			return s, selectFile(e.AbsolutePath)
		}
	case "y":
		if e, ok := s.Selected(); ok {
			return s, copyPath(e.AbsolutePath)
		}
	case "/":
		s.filtering = true
		s.input.SetValue(s.filterText)
		s.input.CursorEnd()
		return s, s.input.Focus()
	case "esc":
		if s.filterText != "" {
			s.input.SetValue("")
			_ = s.SetFilter("")
		}
	}
	return s, nil
}

func selectFile(path string) tea.Cmd {
	return func() tea.Msg { return FileSelectedMsg{Path: path} }
}

func copyPath(path string) tea.Cmd {
	return func() tea.Msg {
		return PathCopiedMsg{Path: path, Err: writeClipboard(path)}
	}
}

// Click handles a mouse press at panel-relative coordinates.
func (s *Sidebar) Click(x, y int) tea.Cmd {
	if s.collapsed {
		if y == 0 {
			return func() tea.Msg { return ToggleSidebarMsg{} }
		}
		return nil
	}
	if y == 0 && x >= s.width-3 {
		return func() tea.Msg { return ToggleSidebarMsg{} }
	}
	row := y - headerRows
	if s.filtering || s.filterText != "" {
		row--
	}
	if row < 0 {
		return nil
	}
	i := s.offset + row
	if i >= len(s.visible) {
		return nil
	}
	s.cursor = i
	return selectFile(s.visible[i].AbsolutePath)
}

func (s Sidebar) View() string {
	if s.width <= 0 || s.height <= 0 {
		return ""
	}
	if s.collapsed {
		return s.collapsedView()
	}

	// one column is the drag bar drawn by the app
	inner := max(s.width-1, 1)
	c := s.ctx

	name := "No folder"
	if s.hasRoot {
		name = filepath.Base(s.manifest.Root)
	}
	titleStyle := c.Title()
	if !s.focused {
		titleStyle = titleStyle.Foreground(c.Theme.Subtle)
	}
	glyph := c.Dim().Render(collapseGlyph)
	title := titleStyle.Render(ansi.Truncate(name, max(inner-3, 1), "…"))
	gap := max(inner-lipgloss.Width(title)-lipgloss.Width(glyph)-1, 1)

	var lines []string
	lines = append(lines, title+strings.Repeat(" ", gap)+glyph)
	lines = append(lines, c.Dim().Render(s.summary()))
	if s.filtering {
		lines = append(lines, s.input.View())
	} else if s.filterText != "" {
		lines = append(lines, c.Subtitle().Render("/"+s.filterText))
	}

	switch {
	case s.loading:
		lines = append(lines, c.Dim().Render("Scanning…"))
	case !s.hasRoot:
		lines = append(lines, c.Dim().Render("Open a folder to list"), c.Dim().Render("its markdown files."))
	case s.manifest.Err != nil:
		lines = append(lines, c.Error().Render(ansi.Wrap(s.manifest.Err.Error(), inner, "")))
	case len(s.visible) == 0 && s.filterText != "":
		lines = append(lines, c.Dim().Render("No matches"))
	case len(s.visible) == 0:
		lines = append(lines, c.Dim().Render("No markdown files"))
	default:
		h := s.listHeight()
		for i := s.offset; i < len(s.visible) && i-s.offset < h; i++ {
			lines = append(lines, s.renderEntry(s.visible[i], i == s.cursor, inner))
		}
	}

	return lipgloss.NewStyle().Width(inner).Height(s.height).MaxHeight(s.height).
		Render(strings.Join(lines, "\n"))
}

func (s Sidebar) summary() string {
	switch {
	case s.loading || !s.hasRoot:
		return ""
	case len(s.manifest.Files) == 1:
		return "1 markdown file"
	default:
		return fmt.Sprintf("%d markdown files", len(s.manifest.Files))
	}
}

func (s Sidebar) renderEntry(e scan.Entry, selected bool, width int) string {
	c := s.ctx
	size := humanize.Bytes(uint64(max(e.Size, 0)))
	label := e.DisplayTitle()
	if dir := filepath.Dir(e.RelativePath); dir != "." {
		label = filepath.ToSlash(dir) + "/" + label
	}

	marker := "  "
	if e.AbsolutePath == s.active {
		marker = "• "
	}
	room := width - len(marker) - lipgloss.Width(size) - 1
	if room < 4 {
		// too narrow for the size column
		size, room = "", width-len(marker)
	}
	label = ansi.Truncate(label, max(room, 1), "…")
	pad := max(width-len(marker)-lipgloss.Width(label)-lipgloss.Width(size), 0)

	style := c.Normal()
	if selected && s.focused {
		style = c.Selected()
	} else if e.AbsolutePath == s.active {
		style = lipgloss.NewStyle().Foreground(c.Theme.Accent)
	}
	return style.Render(marker+label) + strings.Repeat(" ", pad) + c.Dim().Render(size)
}

func (s Sidebar) collapsedView() string {
	lines := make([]string, 0, s.height)
	lines = append(lines, s.ctx.Dim().Render(expandGlyph))
	return lipgloss.NewStyle().Height(s.height).MaxHeight(s.height).Render(strings.Join(lines, "\n"))
}

func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.input.Width = max(width-4, 1)
	s.scrollToCursor()
}

func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
	if !focused && s.filtering {
		s.filtering = false
		s.input.Blur()
	}
}

func (s Sidebar) Focused() bool { return s.focused }

func (s *Sidebar) SetCollapsed(collapsed bool) {
	s.collapsed = collapsed
}
