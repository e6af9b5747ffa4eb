package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/mdr/internal/config"
	"github.com/pfassina/mdr/internal/editor"
	"github.com/pfassina/mdr/internal/layout"
	"github.com/pfassina/mdr/internal/panel"
	"github.com/pfassina/mdr/internal/scan"
	"github.com/pfassina/mdr/internal/session"
	"github.com/pfassina/mdr/internal/theme"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	a := New(config.Default(), nil, nil)
	t.Cleanup(a.Close)
	a.Init()
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func writeNote(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// load opens path through the same command the sidebar uses.
func load(t *testing.T, a *App, path string) {
	t.Helper()
	cmd := a.openFile(path)
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, fileOpenedMsg{}, msg)
	a.Update(msg)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func statusText(a *App) string {
	return ansi.Strip(a.status.View())
}

func TestNew_StartsUntitled(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, untitledName, a.doc.name)
	assert.Empty(t, a.doc.path)
	assert.Equal(t, focusEditor, a.focused)
	assert.Equal(t, layout.ViewSplit, a.mode)
	assert.Contains(t, statusText(a), untitledName)
}

func TestOpenFile(t *testing.T) {
	a := newTestApp(t)
	path := writeNote(t, t.TempDir(), "note.md", "# Note\n\nbody\n")

	load(t, a, path)

	assert.Equal(t, path, a.doc.path)
	assert.Equal(t, "note.md", a.doc.name)
	assert.Equal(t, "# Note\n\nbody\n", a.editor.Value())
	assert.False(t, a.doc.dirty)
	assert.Empty(t, a.busy)
	assert.Contains(t, statusText(a), "note.md")
}

func TestOpenFile_FailureKeepsDocument(t *testing.T) {
	a := newTestApp(t)

	cmd := a.openFile(filepath.Join(t.TempDir(), "missing.md"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, opFailedMsg{}, msg)
	a.Update(msg)

	assert.Equal(t, untitledName, a.doc.name)
	assert.Empty(t, a.busy)
	assert.Len(t, a.ctx.Toasts.Toasts(), 1)
}

func TestBusyIgnoresRetrigger(t *testing.T) {
	a := newTestApp(t)
	path := writeNote(t, t.TempDir(), "note.md", "x")

	require.NotNil(t, a.openFile(path))
	assert.Nil(t, a.openFile(path))
	assert.Contains(t, statusText(a), "open")

	a.finish(opOpenFile)
	assert.NotNil(t, a.openFile(path))
}

func TestEditMarksDirty(t *testing.T) {
	a := newTestApp(t)
	path := writeNote(t, t.TempDir(), "note.md", "hello\n")
	load(t, a, path)

	a.Update(keyRunes("x"))
	a.Update(editor.ChangedMsg{})
	assert.True(t, a.doc.dirty)
	assert.Contains(t, statusText(a), "●")

	// typing back to the saved text clears the flag
	a.editor.SetValue("hello")
	a.Update(editor.ChangedMsg{})
	assert.False(t, a.doc.dirty)
}

func TestQuit_WarnsOnceWhenDirty(t *testing.T) {
	a := newTestApp(t)
	a.doc.dirty = true

	cmd := a.quit()
	require.NotNil(t, cmd)
	assert.True(t, a.quitWarned)
	assert.Len(t, a.ctx.Toasts.Toasts(), 1)

	cmd = a.quit()
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuit_CleanExitsImmediately(t *testing.T) {
	a := newTestApp(t)

	cmd := a.quit()
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSave_UntitledAsksForPath(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	a.folder = dir
	a.editor.SetValue("# My Title\n\ntext\n")
	a.Update(editor.ChangedMsg{})

	a.save()
	require.True(t, a.prompt.Visible())
	assert.Equal(t, promptSaveAs, a.prompt.Purpose())
	assert.Equal(t, filepath.Join(dir, "my-title.md"), a.suggestPath(".md"))

	cmd := a.handlePromptResult(panel.PromptResultMsg{Purpose: promptSaveAs, Value: filepath.Join(dir, "saved")})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, fileSavedMsg{}, msg)
	a.Update(msg)

	want := filepath.Join(dir, "saved.md")
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "# My Title\n\ntext\n", string(data))
	assert.Equal(t, want, a.doc.path)
	assert.Equal(t, "saved.md", a.doc.name)
	assert.False(t, a.doc.dirty)
}

func TestSave_EditsDuringWriteStayDirty(t *testing.T) {
	a := newTestApp(t)
	path := writeNote(t, t.TempDir(), "note.md", "one\n")
	load(t, a, path)
	a.editor.SetValue("two\n")
	a.Update(editor.ChangedMsg{})

	cmd := a.save()
	require.NotNil(t, cmd)
	msg := cmd()
	a.editor.SetValue("three\n")
	a.Update(msg)

	assert.True(t, a.doc.dirty)
	assert.Equal(t, "two\n", a.doc.saved)
}

func TestSuggestPath(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, "untitled.html", a.suggestPath(".html"))

	a.doc.path = "/notes/plan.md"
	assert.Equal(t, "/notes/plan.pdf", a.suggestPath(".pdf"))
}

func TestOpenFolder_ScansAndIndexes(t *testing.T) {
	a := newTestApp(t)
	root := t.TempDir()
	writeNote(t, root, "alpha.md", "# Alpha\n\nhello world\n")
	writeNote(t, root, "sub/beta.md", "beta notes\n")

	cmd := a.openFolder(root)
	require.NotNil(t, cmd)
	assert.True(t, a.busy[opScan])
	a.Update(cmd())

	assert.Equal(t, root, a.folder)
	assert.Len(t, a.sidebar.Visible(), 2)
	assert.NotNil(t, a.watcher)
	assert.True(t, a.busy[opIndex])
	assert.Contains(t, statusText(a), filepath.Base(root))

	a.Update(indexCmd(a.indexer, a.sidebar.Manifest())())
	assert.False(t, a.busy[opIndex])

	items := a.searchNotes("hello")
	require.NotEmpty(t, items)
	assert.Equal(t, filepath.Join(root, "alpha.md"), items[0].Path)
	assert.Len(t, a.searchNotes(""), 2)
}

func TestOpenFolder_InvalidPath(t *testing.T) {
	a := newTestApp(t)

	a.openFolder(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, a.busy[opScan])
	assert.Empty(t, a.folder)
	assert.Len(t, a.ctx.Toasts.Toasts(), 1)
}

func TestScanError_KeepsCurrentFolder(t *testing.T) {
	a := newTestApp(t)
	a.folder = "/current"

	a.Update(folderScannedMsg{manifest: scan.Manifest{Root: "/other", Err: errors.New("boom")}})

	assert.Equal(t, "/current", a.folder)
	assert.Len(t, a.ctx.Toasts.Toasts(), 1)
}

func TestRescan_QueuedWhileScanning(t *testing.T) {
	a := newTestApp(t)
	root := t.TempDir()
	writeNote(t, root, "a.md", "a")
	a.folder = root
	a.busy[opScan] = true

	assert.Nil(t, a.rescan())
	assert.True(t, a.rescanPending)

	// stale roots are ignored
	a.Update(rescanMsg{root: "/elsewhere"})

	a.Update(folderScannedMsg{manifest: scan.Manifest{Root: root}, rescan: true})
	assert.False(t, a.rescanPending)
	assert.True(t, a.busy[opScan])
}

func TestFinder_NeedsFolder(t *testing.T) {
	a := newTestApp(t)

	a.toggleFinder()
	assert.False(t, a.finder.Visible())
	assert.Nil(t, a.searchNotes("x"))
}

func TestViewMode(t *testing.T) {
	a := newTestApp(t)

	a.setViewMode(layout.ViewPreview)
	assert.Equal(t, 0, a.geom.EditorWidth)
	assert.Equal(t, focusPreview, a.focused)
	assert.Contains(t, statusText(a), "preview")

	a.Update(tea.KeyMsg{Type: tea.KeyF2})
	assert.Equal(t, layout.ViewEditor, a.mode)
	assert.Equal(t, 0, a.geom.PreviewWidth)
	assert.Equal(t, focusEditor, a.focused)
}

func TestSearch_MirrorsPreview(t *testing.T) {
	a := newTestApp(t)
	a.editor.SetValue("alpha beta\nalpha\n")
	a.Update(editor.ChangedMsg{})

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	require.True(t, a.searchbar.Visible())
	assert.Equal(t, focusSearch, a.focused)

	a.Update(panel.SearchChangedMsg{Term: "alpha"})
	assert.Len(t, a.search.Matches(), 2)
	assert.Equal(t, 0, a.search.Current())
	assert.Len(t, a.preview.Matches(), 2)
	assert.Contains(t, statusText(a), "match 1/2")

	a.Update(panel.SearchStepMsg{})
	assert.Equal(t, 1, a.search.Current())
	line, _ := a.editor.CursorLine()
	assert.Equal(t, 1, line)

	a.Update(panel.SearchClosedMsg{})
	assert.Empty(t, a.search.Matches())
	assert.Empty(t, a.preview.Matches())
	assert.Equal(t, focusEditor, a.focused)
}

func TestSearch_FollowsPreviewMode(t *testing.T) {
	a := newTestApp(t)
	a.editor.SetValue("one two one\n")
	a.Update(editor.ChangedMsg{})
	a.setViewMode(layout.ViewPreview)

	a.toggleSearch()
	a.Update(panel.SearchChangedMsg{Term: "one"})

	assert.Equal(t, a.preview, a.searchTarget())
	assert.Len(t, a.preview.Matches(), 2)
}

func TestLeader_RunsAction(t *testing.T) {
	a := newTestApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	assert.True(t, a.leader.active)

	a.Update(keyRunes("t"))
	assert.False(t, a.leader.active)
	assert.Equal(t, theme.Light, a.ctx.Theme.Name)
}

func TestLeader_GroupAndHelp(t *testing.T) {
	a := newTestApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	a.Update(keyRunes("v"))
	assert.True(t, a.leader.active)

	a.Update(leaderTimeoutMsg{seq: a.leader.seq})
	assert.True(t, a.whichKey.Visible())
	assert.Contains(t, ansi.Strip(a.View()), "Preview only")

	a.Update(keyRunes("p"))
	assert.Equal(t, layout.ViewPreview, a.mode)
	assert.False(t, a.whichKey.Visible())
}

func TestLeader_StaleTimeoutIgnored(t *testing.T) {
	a := newTestApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	stale := a.leader.seq
	a.Update(keyRunes("v"))
	a.Update(leaderTimeoutMsg{seq: stale})
	assert.False(t, a.leader.showHelp)
}

func TestLeader_UnknownKeyCancels(t *testing.T) {
	a := newTestApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	a.Update(keyRunes("z"))
	assert.False(t, a.leader.active)
	assert.Equal(t, "", a.editor.Value())
}

func TestNewBindings(t *testing.T) {
	b := newBindings([]config.Keybind{
		{Sequence: "v e", Action: "view_editor"},
		{Sequence: "v p", Action: "view_preview", Label: "Read"},
		{Sequence: "x", Action: "does_not_exist"},
		{Sequence: "q", Action: "quit"},
	})

	require.Contains(t, b, "v")
	assert.Equal(t, "+view", b["v"].Label)
	assert.Len(t, b["v"].Children, 2)
	assert.Equal(t, "Editor only", b["v"].Children["e"].Label)
	assert.Equal(t, "Read", b["v"].Children["p"].Label)
	assert.NotContains(t, b, "x")
	assert.NotNil(t, b["q"].Action)
}

func TestSidebarDrag(t *testing.T) {
	a := newTestApp(t)
	bar := a.geom.SidebarBar
	require.GreaterOrEqual(t, bar, 0)
	width := a.geom.SidebarWidth

	_, cmd := a.Update(tea.MouseMsg{X: bar, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.NotNil(t, cmd)
	assert.True(t, a.layout.Resizing())
	assert.True(t, a.capture.Held())
	assert.Contains(t, statusText(a), "RESIZE")

	// collapsing is ignored mid-drag
	a.toggleSidebar()
	assert.False(t, a.layout.Collapsed())

	// the drag owns the keyboard too
	before := a.editor.Value()
	a.Update(keyRunes("x"))
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.Equal(t, before, a.editor.Value())
	assert.False(t, a.layout.Collapsed())
	assert.True(t, a.layout.Resizing())

	a.Update(tea.MouseMsg{X: bar + 10, Y: 5, Action: tea.MouseActionMotion})
	assert.Equal(t, width+10, a.geom.SidebarWidth)

	// far past the maximum
	a.Update(tea.MouseMsg{X: 200, Y: 5, Action: tea.MouseActionMotion})
	assert.Equal(t, 60, a.geom.SidebarWidth)

	_, cmd = a.Update(tea.MouseMsg{X: 200, Y: 5, Action: tea.MouseActionRelease})
	assert.NotNil(t, cmd)
	assert.False(t, a.layout.Resizing())
	assert.False(t, a.capture.Held())
	assert.NotContains(t, statusText(a), "RESIZE")
}

func TestBlurCancelsDrag(t *testing.T) {
	a := newTestApp(t)

	a.Update(tea.MouseMsg{X: a.geom.SidebarBar, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, a.layout.Resizing())

	a.Update(tea.BlurMsg{})
	assert.False(t, a.layout.Resizing())
	assert.False(t, a.capture.Held())
}

func TestEscCancelsDrag(t *testing.T) {
	a := newTestApp(t)
	width := a.geom.SidebarWidth

	a.Update(tea.MouseMsg{X: a.geom.SidebarBar, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	a.Update(tea.MouseMsg{X: a.geom.SidebarBar + 5, Y: 2, Action: tea.MouseActionMotion})
	require.True(t, a.layout.Resizing())

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.layout.Resizing())
	assert.False(t, a.capture.Held())
	assert.NotContains(t, statusText(a), "RESIZE")
	assert.Equal(t, width+5, a.geom.SidebarWidth)
}

func TestOverlayBlocksSplitterPress(t *testing.T) {
	a := newTestApp(t)
	a.save()
	require.True(t, a.prompt.Visible())

	a.Update(tea.MouseMsg{X: a.geom.SidebarBar, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, a.layout.Resizing())
	assert.False(t, a.capture.Held())
}

func TestToggleSidebar(t *testing.T) {
	a := newTestApp(t)
	width := a.geom.SidebarWidth
	a.setFocus(focusSidebar)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.True(t, a.layout.Collapsed())
	assert.Equal(t, 3, a.geom.SidebarWidth)
	assert.Equal(t, focusEditor, a.focused)

	a.Update(panel.ToggleSidebarMsg{})
	assert.False(t, a.layout.Collapsed())
	assert.Equal(t, width, a.geom.SidebarWidth)
}

func TestKeyboardResize(t *testing.T) {
	a := newTestApp(t)
	width := a.geom.SidebarWidth

	a.resizeSidebar(sidebarStep)
	assert.Equal(t, width+sidebarStep, a.geom.SidebarWidth)

	editor := a.geom.EditorWidth
	a.resizeSplit(splitStep)
	assert.Greater(t, a.geom.EditorWidth, editor)

	a.setViewMode(layout.ViewEditor)
	assert.Nil(t, a.resizeSplit(splitStep))
}

func TestCycleFocus(t *testing.T) {
	a := newTestApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusPreview, a.focused)
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusSidebar, a.focused)

	a.focusLeft()
	assert.Equal(t, focusSidebar, a.focused)
	a.focusRight()
	assert.Equal(t, focusEditor, a.focused)
}

func TestOutlineJump(t *testing.T) {
	a := newTestApp(t)
	a.editor.SetValue("# A\n\ntext\n## B\nmore\n")
	a.Update(editor.ChangedMsg{})

	a.Update(panel.OutlineJumpMsg{Line: 3})
	line, text := a.editor.CursorLine()
	assert.Equal(t, 3, line)
	assert.Equal(t, "## B", text)
}

func TestFormatDocument(t *testing.T) {
	a := newTestApp(t)
	a.editor.SetValue("Some text\n# Heading\n")
	a.Update(editor.ChangedMsg{})

	a.formatDocument()
	assert.Equal(t, "Some text\n\n# Heading\n", a.editor.Value())
	assert.True(t, a.doc.dirty)

	a.formatDocument()
	assert.Len(t, a.ctx.Toasts.Toasts(), 1)
}

func TestExportHTML(t *testing.T) {
	a := newTestApp(t)
	a.editor.SetValue("# Report\n\nbody\n")
	dst := filepath.Join(t.TempDir(), "report.html")

	cmd := a.exportHTML(dst)
	require.NotNil(t, cmd)
	assert.Nil(t, a.exportHTML(dst))
	msg := cmd()
	require.IsType(t, exportedMsg{}, msg)
	a.Update(msg)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Report</title>")
	assert.Empty(t, a.busy)
}

func TestCloseSavesSession(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	store := session.NewStore(t.TempDir())

	a := New(config.Default(), nil, store)
	a.folder = "/notes"
	a.doc.path = "/notes/a.md"
	a.mode = layout.ViewPreview
	a.Close()
	a.Close()

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, session.State{Folder: "/notes", File: "/notes/a.md", View: "preview", Theme: theme.Dark}, st)
}

func TestView(t *testing.T) {
	a := newTestApp(t)

	lines := strings.Split(a.View(), "\n")
	assert.Len(t, lines, 40)
	for _, l := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(l), 120)
	}

	a.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	assert.Contains(t, ansi.Strip(a.View()), "Window too small")
}

func TestFirstLink(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"see https://example.com/a?b=1 for more", "https://example.com/a?b=1"},
		{"[docs](http://go.dev/doc)", "http://go.dev/doc"},
		{"two http://a.io and https://b.io", "http://a.io"},
		{"no links here", ""},
		{"ftp://files.example.com", ""},
	}
	for _, tt := range tests {
		got, ok := firstLink(tt.line)
		assert.Equal(t, tt.want, got, tt.line)
		assert.Equal(t, tt.want != "", ok, tt.line)
	}
}

func TestOverlayAt(t *testing.T) {
	base := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"

	got := overlayAt(base, "XY\nZ", 1, 3, 10)
	assert.Equal(t, "aaaaaaaaaa\nbbbXYbbbbb\ncccZ ccccc", got)

	// rows past the base are dropped
	got = overlayAt(base, "1\n2\n3", 2, 0, 10)
	assert.Equal(t, "aaaaaaaaaa\nbbbbbbbbbb\n1ccccccccc", got)
}

func TestMouseCapture(t *testing.T) {
	var c mouseCapture

	c.Release()
	assert.Nil(t, c.flush())

	c.Acquire()
	c.Acquire()
	assert.True(t, c.Held())
	require.NotNil(t, c.flush())
	assert.Nil(t, c.flush())

	c.Release()
	assert.False(t, c.Held())
	assert.NotNil(t, c.flush())
}
