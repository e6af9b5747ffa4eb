package panel

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/mdr/internal/scan"
	"github.com/pfassina/mdr/internal/search"
	"github.com/pfassina/mdr/internal/ui"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testManifest() scan.Manifest {
	title := "Alpha Notes"
	return scan.Manifest{
		Root: "/docs",
		Files: []scan.Entry{
			{Name: "alpha.md", AbsolutePath: "/docs/alpha.md", RelativePath: "alpha.md", Size: 2048, Modified: time.Now(), Title: &title},
			{Name: "beta.md", AbsolutePath: "/docs/guide/beta.md", RelativePath: "guide/beta.md", Size: 10},
			{Name: "gamma.md", AbsolutePath: "/docs/gamma.md", RelativePath: "gamma.md", Size: 0},
		},
	}
}

func newSidebar() Sidebar {
	s := NewSidebar(ui.NewContext(nil, nil, nil))
	s.SetSize(40, 20)
	s.SetFocused(true)
	s.SetManifest(testManifest())
	return s
}

func TestSidebar_EmptyStates(t *testing.T) {
	s := NewSidebar(ui.NewContext(nil, nil, nil))
	s.SetSize(40, 10)
	assert.Contains(t, ansi.Strip(s.View()), "Open a folder")

	s.SetLoading(true)
	assert.Contains(t, ansi.Strip(s.View()), "Scanning")

	s.SetManifest(scan.Manifest{Root: "/empty"})
	view := ansi.Strip(s.View())
	assert.Contains(t, view, "No markdown files")
	assert.Contains(t, view, "0 markdown files")

	s.SetManifest(scan.Manifest{Root: "/gone", Err: errors.New("permission denied")})
	assert.Contains(t, ansi.Strip(s.View()), "permission denied")
}

func TestSidebar_ListsEntries(t *testing.T) {
	s := newSidebar()
	view := ansi.Strip(s.View())
	assert.Contains(t, view, "docs")
	assert.Contains(t, view, "3 markdown files")
	assert.Contains(t, view, "Alpha Notes")
	assert.Contains(t, view, "guide/beta.md")
	assert.Contains(t, view, "2.0 kB")
}

func TestSidebar_EmptyNavigation(t *testing.T) {
	s := NewSidebar(ui.NewContext(nil, nil, nil))
	s.SetSize(30, 20)
	s.SetFocused(true)

	for _, k := range []string{"G", "j", "enter", "y"} {
		var cmd tea.Cmd
		s, cmd = s.Update(key(k))
		assert.Nil(t, cmd, "key %q", k)
		assert.Equal(t, 0, s.cursor)
	}
}

func TestSidebar_SelectEmitsPath(t *testing.T) {
	s := newSidebar()
	s, _ = s.Update(key("j"))
	_, cmd := s.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, FileSelectedMsg{Path: "/docs/guide/beta.md"}, cmd())
}

func TestSidebar_Filter(t *testing.T) {
	s := newSidebar()

	require.NoError(t, s.SetFilter("GUIDE"))
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, "beta.md", s.Visible()[0].Name)

	require.NoError(t, s.SetFilter("*a.md"))
	assert.Len(t, s.Visible(), 3)

	require.NoError(t, s.SetFilter("g*"))
	assert.Len(t, s.Visible(), 2)

	require.NoError(t, s.SetFilter("nothing"))
	assert.Empty(t, s.Visible())
	assert.Contains(t, ansi.Strip(s.View()), "No matches")

	require.NoError(t, s.SetFilter(""))
	assert.Len(t, s.Visible(), 3)
}

func TestSidebar_FilterInput(t *testing.T) {
	s := newSidebar()
	s, _ = s.Update(key("/"))
	require.True(t, s.Filtering())

	for _, r := range "gam" {
		s, _ = s.Update(key(string(r)))
	}
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, "gamma.md", s.Visible()[0].Name)

	s, _ = s.Update(key("enter"))
	assert.False(t, s.Filtering())
	assert.Equal(t, "gam", s.Filter())

	s, _ = s.Update(key("esc"))
	assert.Len(t, s.Visible(), 3)
}

func TestSidebar_CopyPath(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	s := newSidebar()
	_, cmd := s.Update(key("y"))
	require.NotNil(t, cmd)
	msg := cmd().(PathCopiedMsg)
	assert.NoError(t, msg.Err)
	assert.Equal(t, "/docs/alpha.md", copied)
}

func TestSidebar_Click(t *testing.T) {
	s := newSidebar()

	cmd := s.Click(39, 0)
	require.NotNil(t, cmd)
	assert.Equal(t, ToggleSidebarMsg{}, cmd())

	cmd = s.Click(5, headerRows+2)
	require.NotNil(t, cmd)
	assert.Equal(t, FileSelectedMsg{Path: "/docs/gamma.md"}, cmd())

	assert.Nil(t, s.Click(5, headerRows+10))

	s.SetCollapsed(true)
	cmd = s.Click(0, 0)
	require.NotNil(t, cmd)
	assert.Equal(t, ToggleSidebarMsg{}, cmd())
	assert.Contains(t, s.View(), expandGlyph)
}

func TestSidebar_SetActiveMovesCursor(t *testing.T) {
	s := newSidebar()
	s.SetActive("/docs/gamma.md")
	e, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "gamma.md", e.Name)
}

func TestPreview_SearchTarget(t *testing.T) {
	p := NewPreview(ui.NewContext(nil, nil, nil))
	p.SetSize(60, 5)
	p.SetContent("# Heading\n\nSome text with a needle.\n\nAnother needle here.")

	sess := search.NewSession(p)
	sess.SetTerm("NEEDLE")
	require.Len(t, sess.Matches(), 2)
	assert.Equal(t, 0, sess.Current())
	assert.Contains(t, ansi.Strip(p.View()), "needle")

	sess.Close()
	assert.Empty(t, p.Matches())
}

func TestPreview_SetTermMirrors(t *testing.T) {
	p := NewPreview(ui.NewContext(nil, nil, nil))
	p.SetSize(60, 20)
	p.SetContent("one two one")
	p.SetTerm("one")
	assert.Len(t, p.Matches(), 2)
	p.SetTerm("")
	assert.Empty(t, p.Matches())
}

func TestPreview_StripsFrontmatter(t *testing.T) {
	p := NewPreview(ui.NewContext(nil, nil, nil))
	p.SetSize(60, 20)
	p.SetContent("---\ntitle: Hidden\n---\n# Shown\n")
	view := ansi.Strip(p.View())
	assert.NotContains(t, view, "title: Hidden")
	assert.Contains(t, view, "Shown")
}

func TestSearchBar_Messages(t *testing.T) {
	sb := NewSearchBar(ui.NewContext(nil, nil, nil))
	sb.SetWidth(80)
	sb.Show()

	sb, cmd := sb.Update(key("a"))
	require.NotNil(t, cmd)
	assert.True(t, containsMsg(cmd(), SearchChangedMsg{Term: "a"}))

	_, cmd = sb.Update(key("enter"))
	assert.Equal(t, SearchStepMsg{}, cmd())

	sb.SetCounts(1, 4)
	assert.Contains(t, ansi.Strip(sb.View()), "2 of 4")
	sb.SetCounts(-1, 0)
	assert.Contains(t, ansi.Strip(sb.View()), "No matches")

	sb, cmd = sb.Update(key("esc"))
	assert.Equal(t, SearchClosedMsg{}, cmd())
	assert.False(t, sb.Visible())
}

func TestPrompt_Result(t *testing.T) {
	p := NewPrompt(ui.NewContext(nil, nil, nil))
	p.Show("save", "Save As", "path", "notes.md")

	p, cmd := p.Update(key("enter"))
	assert.False(t, p.Visible())
	assert.Equal(t, PromptResultMsg{Purpose: "save", Value: "notes.md"}, cmd())

	p.Show("open", "Open", "", "")
	_, cmd = p.Update(key("esc"))
	assert.Equal(t, PromptCancelledMsg{Purpose: "open"}, cmd())

	p.Show("open", "Open", "", "  ")
	_, cmd = p.Update(key("enter"))
	assert.Equal(t, PromptCancelledMsg{Purpose: "open"}, cmd())
}

func TestFinder_Selects(t *testing.T) {
	f := NewFinder(ui.NewContext(nil, nil, nil))
	f.SetSearchFunc(func(q string) []FinderItem {
		if q == "" {
			return nil
		}
		return []FinderItem{{Title: "A", Path: "/a.md"}, {Title: "B", Path: "/b.md"}}
	})
	f.Show()
	assert.Empty(t, f.Items())

	f, _ = f.Update(key("x"))
	require.Len(t, f.Items(), 2)
	f, _ = f.Update(key("down"))
	_, cmd := f.Update(key("enter"))
	assert.Equal(t, FinderResultMsg{Path: "/b.md"}, cmd())
}

func TestOutline_Jump(t *testing.T) {
	o := NewOutline(ui.NewContext(nil, nil, nil))
	o.Show("# One\n\ntext\n\n## Two\n")
	assert.Contains(t, ansi.Strip(o.View()), "Two")

	o, _ = o.Update(key("j"))
	_, cmd := o.Update(key("enter"))
	assert.Equal(t, OutlineJumpMsg{Line: 4}, cmd())
}

func TestStatus_View(t *testing.T) {
	s := NewStatus(ui.NewContext(nil, nil, nil))
	s.SetWidth(100)
	s.SetFile("notes.md", true)
	s.SetResizing(true)
	s.SetView("split")
	view := ansi.Strip(s.View())
	assert.Contains(t, view, "notes.md ●")
	assert.Contains(t, view, "RESIZE")
	assert.Equal(t, 100, ansi.StringWidth(view))

	s.SetFile("", false)
	assert.Contains(t, ansi.Strip(s.View()), "Untitled.md")
	assert.True(t, strings.HasPrefix(view, " VIEW"))
}

func TestMatchSummary(t *testing.T) {
	assert.Equal(t, "no matches", MatchSummary(-1, 0))
	assert.Equal(t, "3 matches", MatchSummary(-1, 3))
	assert.Equal(t, "match 2/3", MatchSummary(1, 3))
}

func TestWhichKey_View(t *testing.T) {
	w := NewWhichKey(ui.NewContext(nil, nil, nil))
	assert.False(t, w.Visible())
	w.SetEntries("", []WhichKeyEntry{{Key: "s", Label: "Save as"}, {Key: "f", Label: "Open folder"}})
	view := ansi.Strip(w.View())
	assert.Contains(t, view, "f Open folder")
	w.Clear()
	assert.Empty(t, w.View())
}

func TestWhichKey_GroupsLast(t *testing.T) {
	w := NewWhichKey(ui.NewContext(nil, nil, nil))
	w.SetEntries("ctrl+k", []WhichKeyEntry{{Key: "v", Label: "+view"}, {Key: "t", Label: "Toggle theme"}, {Key: "b", Label: "Toggle sidebar"}})

	assert.Equal(t, []string{"b", "t", "v"}, []string{w.entries[0].Key, w.entries[1].Key, w.entries[2].Key})
	assert.Contains(t, ansi.Strip(w.View()), "Leader > ctrl+k")
}

func TestFinder_ScrollsWithCursor(t *testing.T) {
	items := make([]FinderItem, 20)
	for i := range items {
		items[i] = FinderItem{Title: fmt.Sprintf("note-%02d", i), Path: fmt.Sprintf("/n%02d.md", i)}
	}
	f := NewFinder(ui.NewContext(nil, nil, nil))
	f.SetSize(80, 20)
	f.SetSearchFunc(func(string) []FinderItem { return items })
	f.Show()

	for range 12 {
		f, _ = f.Update(key("down"))
	}
	view := ansi.Strip(f.View())
	assert.Contains(t, view, "> note-12")
	assert.NotContains(t, view, "note-00")
	assert.Contains(t, view, "13/20")
	assert.Contains(t, view, "7 more")
}

func containsMsg(msg tea.Msg, want tea.Msg) bool {
	if msg == want {
		return true
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil && containsMsg(c(), want) {
				return true
			}
		}
	}
	return false
}
