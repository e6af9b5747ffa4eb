package panel

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/mdr/internal/markdown"
	"github.com/pfassina/mdr/internal/search"
	"github.com/pfassina/mdr/internal/ui"
)

// Preview renders the current document with glamour in a scrollable
// viewport. It is also a search target over the rendered text.
type Preview struct {
	ctx *ui.Context
	vp  viewport.Model

	source   string
	rendered []string
	plain    []string

	renderer *glamour.TermRenderer
	style    string
	wrap     int

	pattern string
	matches []search.Range
	current int

	focused bool
}

func NewPreview(ctx *ui.Context) *Preview {
	return &Preview{ctx: ctx, vp: viewport.New(0, 0), current: -1}
}

// SetContent re-renders the preview for new markdown source.
func (p *Preview) SetContent(src string) {
	p.source = src
	p.render()
}

// Refresh re-renders with the current theme.
func (p *Preview) Refresh() {
	p.render()
}

func (p *Preview) render() {
	if p.vp.Width <= 0 {
		return
	}
	body := string(markdown.StripFrontmatter([]byte(p.source)))

	out := body
	if r := p.termRenderer(); r != nil {
		if s, err := r.Render(body); err == nil {
			out = s
		} else {
			p.ctx.Log.Warn("preview render", "err", err)
		}
	}
	out = strings.TrimRight(out, "\n")
	p.rendered = strings.Split(out, "\n")
	p.plain = make([]string, len(p.rendered))
	for i, l := range p.rendered {
		p.plain[i] = ansi.Strip(l)
	}
	if p.pattern != "" {
		p.matches = search.FindInLines(p.plain, p.pattern)
		if p.current >= len(p.matches) {
			p.current = -1
		}
	}
	p.sync()
}

// termRenderer builds the glamour renderer lazily and rebuilds it when the
// theme or width changes.
func (p *Preview) termRenderer() *glamour.TermRenderer {
	style := p.ctx.Theme.GlamourStyle
	wrap := max(p.vp.Width-2, 10)
	if p.renderer != nil && p.style == style && p.wrap == wrap {
		return p.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
		glamour.WithTableWrap(true),
	)
	if err != nil {
		p.ctx.Log.Warn("preview renderer", "style", style, "err", err)
		return nil
	}
	p.renderer, p.style, p.wrap = r, style, wrap
	return r
}

// sync pushes the rendered lines, with search highlights, into the
// viewport.
func (p *Preview) sync() {
	if len(p.matches) == 0 {
		p.vp.SetContent(strings.Join(p.rendered, "\n"))
		return
	}

	th := p.ctx.Theme
	text := lipgloss.NewStyle().Foreground(th.Text)
	match := lipgloss.NewStyle().Background(th.Match).Foreground(th.MatchFg)
	cur := lipgloss.NewStyle().Background(th.CurrentMatch).Foreground(th.MatchFg).Bold(true)

	byLine := make(map[int][]int)
	for i, m := range p.matches {
		byLine[m.Line] = append(byLine[m.Line], i)
	}

	lines := make([]string, len(p.rendered))
	copy(lines, p.rendered)
	for line, idx := range byLine {
		if line >= len(p.plain) {
			continue
		}
		runes := []rune(p.plain[line])
		var b strings.Builder
		last := 0
		for _, i := range idx {
			m := p.matches[i]
			b.WriteString(text.Render(string(runes[last:m.Start])))
			st := match
			if i == p.current {
				st = cur
			}
			b.WriteString(st.Render(string(runes[m.Start:m.End])))
			last = m.End
		}
		b.WriteString(text.Render(string(runes[last:])))
		lines[line] = b.String()
	}
	p.vp.SetContent(strings.Join(lines, "\n"))
}

// FindMatches implements search.Target.
func (p *Preview) FindMatches(pattern string) []search.Range {
	p.pattern = pattern
	return search.FindInLines(p.plain, pattern)
}

// Highlight implements search.Target.
func (p *Preview) Highlight(matches []search.Range, current int) {
	p.matches = matches
	p.current = current
	p.sync()
}

// ClearHighlights implements search.Target.
func (p *Preview) ClearHighlights() {
	p.pattern = ""
	p.matches = nil
	p.current = -1
	p.sync()
}

// Reveal implements search.Target by scrolling the match into the middle
// of the viewport.
func (p *Preview) Reveal(r search.Range) {
	p.vp.SetYOffset(max(r.Line-p.vp.Height/2, 0))
}

// SetTerm highlights a term without moving the viewport. Used when the
// editor owns the search session and the preview mirrors it.
func (p *Preview) SetTerm(term string) {
	if term == "" {
		p.ClearHighlights()
		return
	}
	p.Highlight(p.FindMatches(term), -1)
}

// Matches returns the highlighted ranges.
func (p *Preview) Matches() []search.Range { return p.matches }

func (p *Preview) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return nil
		}
		switch msg.String() {
		case "g", "home":
			p.vp.GotoTop()
			return nil
		case "G", "end":
			p.vp.GotoBottom()
			return nil
		}
	case tea.MouseMsg:
	default:
		return nil
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

func (p *Preview) View() string {
	return p.vp.View()
}

func (p *Preview) SetSize(width, height int) {
	resized := p.vp.Width != width
	p.vp.Width = max(width, 0)
	p.vp.Height = max(height, 0)
	if resized || p.rendered == nil {
		p.render()
	}
}

func (p *Preview) SetFocused(focused bool) { p.focused = focused }

// YOffset is the first visible rendered line.
func (p *Preview) YOffset() int { return p.vp.YOffset }

// ScrollPercent reports how far the preview is scrolled.
func (p *Preview) ScrollPercent() float64 { return p.vp.ScrollPercent() }

// ScrollToPercent keeps the preview roughly aligned with the editor.
func (p *Preview) ScrollToPercent(f float64) {
	f = min(max(f, 0), 1)
	maxOffset := max(len(p.rendered)-p.vp.Height, 0)
	p.vp.SetYOffset(int(f * float64(maxOffset)))
}
