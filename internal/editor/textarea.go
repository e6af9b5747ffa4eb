package editor

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/mdr/internal/search"
	"github.com/pfassina/mdr/internal/theme"
)

// The textarea pads line numbers to the digit count of MaxHeight but only
// reserves 4 gutter columns in SetWidth, so the extra is taken off the
// width we hand it.
const (
	maxLines      = 9999
	lineNumDigits = 4
	gutterWidth   = lineNumDigits + 2
	gutterExtra   = gutterWidth - 4
)

// Textarea is the built-in editor.
type Textarea struct {
	ta    textarea.Model
	theme *theme.Theme

	pattern string
	matches []search.Range
	current int
}

// NewTextarea returns an empty, blurred editor.
func NewTextarea(th *theme.Theme) *Textarea {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = true
	ta.MaxHeight = maxLines
	ta.MaxWidth = 0
	ta.CharLimit = 0
	ta.Placeholder = "Start writing markdown…"

	t := &Textarea{ta: ta, theme: th, current: -1}
	t.applyTheme()
	return t
}

func (t *Textarea) applyTheme() {
	th := t.theme
	focused, blurred := textarea.DefaultStyles()
	focused.Text = lipgloss.NewStyle().Foreground(th.Text)
	focused.CursorLine = lipgloss.NewStyle().Foreground(th.Text)
	focused.LineNumber = lipgloss.NewStyle().Foreground(th.Dim)
	focused.CursorLineNumber = lipgloss.NewStyle().Foreground(th.Accent)
	focused.Placeholder = lipgloss.NewStyle().Foreground(th.Subtle)
	blurred.Text = lipgloss.NewStyle().Foreground(th.Text)
	blurred.CursorLine = lipgloss.NewStyle().Foreground(th.Text)
	blurred.LineNumber = lipgloss.NewStyle().Foreground(th.Dim)
	blurred.CursorLineNumber = lipgloss.NewStyle().Foreground(th.Dim)
	blurred.Placeholder = lipgloss.NewStyle().Foreground(th.Subtle)
	t.ta.FocusedStyle = focused
	t.ta.BlurredStyle = blurred
}

// Update forwards input to the textarea and emits ChangedMsg when the text
// changed.
func (t *Textarea) Update(msg tea.Msg) tea.Cmd {
	before := t.ta.Value()
	var cmd tea.Cmd
	t.ta, cmd = t.ta.Update(msg)
	if t.ta.Value() != before {
		return tea.Batch(cmd, changed)
	}
	return cmd
}

func (t *Textarea) View() string {
	t.applyTheme()
	return t.decorate(t.ta.View())
}

func (t *Textarea) SetSize(width, height int) tea.Cmd {
	t.ta.SetWidth(max(width-gutterExtra, 1))
	t.ta.SetHeight(max(height, 1))
	return nil
}

func (t *Textarea) Focus() tea.Cmd { return t.ta.Focus() }
func (t *Textarea) Blur()          { t.ta.Blur() }

func (t *Textarea) Value() string { return t.ta.Value() }

// SetValue replaces the buffer and puts the cursor at the top.
func (t *Textarea) SetValue(content string) {
	t.ta.SetValue(content)
	t.moveTo(0, 0)
}

func (t *Textarea) CursorLine() (int, string) {
	row := t.ta.Line()
	lines := strings.Split(t.ta.Value(), "\n")
	if row < len(lines) {
		return row, lines[row]
	}
	return row, ""
}

func (t *Textarea) Mode() string {
	if t.ta.Focused() {
		return "EDIT"
	}
	return "VIEW"
}

func (t *Textarea) Close() {}

// FindMatches implements search.Target.
func (t *Textarea) FindMatches(pattern string) []search.Range {
	t.pattern = pattern
	return search.FindInText(t.ta.Value(), pattern)
}

// Highlight implements search.Target.
func (t *Textarea) Highlight(matches []search.Range, current int) {
	t.matches = matches
	t.current = current
}

// ClearHighlights implements search.Target.
func (t *Textarea) ClearHighlights() {
	t.pattern = ""
	t.matches = nil
	t.current = -1
}

// Reveal implements search.Target by moving the cursor to the match.
func (t *Textarea) Reveal(r search.Range) {
	t.moveTo(r.Line, r.Start)
}

// moveTo places the cursor at line/col and scrolls it into view. The
// textarea only repositions its viewport inside Update, and only while
// focused.
func (t *Textarea) moveTo(line, col int) {
	focused := t.ta.Focused()
	if !focused {
		t.ta.Focus()
	}

	// CursorUp/Down step over soft-wrapped rows, so bound the loop by the
	// buffer length rather than the line distance.
	limit := t.ta.LineCount() * 4
	for i := 0; t.ta.Line() > line && i < limit; i++ {
		t.ta.CursorUp()
	}
	for i := 0; t.ta.Line() < line && i < limit; i++ {
		t.ta.CursorDown()
	}
	t.ta.SetCursor(col)
	t.ta, _ = t.ta.Update(nil)

	if !focused {
		t.ta.Blur()
	}
}

// decorate repaints rows holding search matches. Rows are mapped back to
// buffer lines through the line-number gutter; wrapped continuation rows
// have a blank gutter.
func (t *Textarea) decorate(view string) string {
	if len(t.matches) == 0 || strings.TrimSpace(t.pattern) == "" {
		return view
	}

	cur := t.currentRef()
	gutterStyle := lipgloss.NewStyle().Foreground(t.theme.Dim)
	textStyle := lipgloss.NewStyle().Foreground(t.theme.Text)
	matchStyle := lipgloss.NewStyle().Background(t.theme.Match).Foreground(t.theme.MatchFg)
	currentStyle := lipgloss.NewStyle().Background(t.theme.CurrentMatch).Foreground(t.theme.MatchFg).Bold(true)

	rows := strings.Split(view, "\n")
	docLine, occ := -1, 0
	for i, row := range rows {
		plain := []rune(ansi.Strip(row))
		if len(plain) < gutterWidth {
			continue
		}
		gutter, text := string(plain[:gutterWidth]), string(plain[gutterWidth:])
		if n, err := strconv.Atoi(strings.TrimSpace(gutter)); err == nil {
			docLine, occ = n-1, 0
		}

		found := search.FindInLines([]string{text}, t.pattern)
		if len(found) == 0 {
			continue
		}

		runes := []rune(text)
		var b strings.Builder
		b.WriteString(gutterStyle.Render(gutter))
		last := 0
		for _, r := range found {
			b.WriteString(textStyle.Render(string(runes[last:r.Start])))
			st := matchStyle
			if docLine == cur.line && occ == cur.occurrence {
				st = currentStyle
			}
			b.WriteString(st.Render(string(runes[r.Start:r.End])))
			last = r.End
			occ++
		}
		b.WriteString(textStyle.Render(string(runes[last:])))
		rows[i] = b.String()
	}
	return strings.Join(rows, "\n")
}

type matchRef struct {
	line       int
	occurrence int
}

// currentRef locates the focused match as "n-th match on line L".
func (t *Textarea) currentRef() matchRef {
	if t.current < 0 || t.current >= len(t.matches) {
		return matchRef{line: -1}
	}
	m := t.matches[t.current]
	ref := matchRef{line: m.Line}
	for _, other := range t.matches[:t.current] {
		if other.Line == m.Line {
			ref.occurrence++
		}
	}
	return ref
}
