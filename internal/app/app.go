package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/pfassina/mdr/internal/config"
	"github.com/pfassina/mdr/internal/editor"
	"github.com/pfassina/mdr/internal/export"
	"github.com/pfassina/mdr/internal/host"
	"github.com/pfassina/mdr/internal/index"
	"github.com/pfassina/mdr/internal/layout"
	"github.com/pfassina/mdr/internal/logging"
	"github.com/pfassina/mdr/internal/notify"
	"github.com/pfassina/mdr/internal/panel"
	"github.com/pfassina/mdr/internal/scan"
	"github.com/pfassina/mdr/internal/search"
	"github.com/pfassina/mdr/internal/session"
	"github.com/pfassina/mdr/internal/theme"
	"github.com/pfassina/mdr/internal/ui"
)

type focusedPanel int

const (
	focusEditor focusedPanel = iota
	focusSidebar
	focusPreview
	focusSearch
)

// Prompt purposes.
const (
	promptOpenFile   = "open-file"
	promptSaveAs     = "save-as"
	promptOpenFolder = "open-folder"
	promptExportHTML = "export-html"
	promptExportPDF  = "export-pdf"
)

const untitledName = "Untitled.md"

// Keyboard resize steps.
const (
	sidebarStep = 2
	splitStep   = 5
)

// document is the file being edited. path is empty for an untitled one.
type document struct {
	path  string
	name  string
	saved string
	dirty bool
}

type App struct {
	cfg    config.Config
	log    *log.Logger
	ctx    *ui.Context
	sender editor.Sender

	editor    editor.Widget
	sidebar   panel.Sidebar
	preview   *panel.Preview
	searchbar panel.SearchBar
	search    *search.Session
	status    panel.Status
	prompt    panel.Prompt
	finder    panel.Finder
	whichKey  panel.WhichKey
	outline   panel.Outline

	layout  *layout.Controller
	capture *mouseCapture
	geom    layout.Geometry
	mode    layout.ViewMode

	scanner  *scan.Scanner
	db       *index.DB
	indexer  *index.Indexer
	watcher  *index.Watcher
	store    *session.Store
	exporter *export.Exporter

	doc    document
	folder string

	busy          map[operation]bool
	rescanPending bool
	pendingIndex  *scan.Manifest
	quitWarned    bool
	closeOnce     sync.Once

	width   int
	height  int
	focused focusedPanel

	// Leader key system
	bindings map[string]*Binding
	leader   LeaderState

	// notices raised before the program started
	notices []tea.Cmd
}

// New builds the application. store may be nil to skip session
// persistence, e.g. for SSH sessions.
func New(cfg config.Config, logger *log.Logger, store *session.Store) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	th, err := theme.ByName(cfg.Theme)
	if err != nil {
		logger.Warn("theme", "err", err)
	}
	mode, err := layout.ParseViewMode(cfg.ViewMode)
	if err != nil {
		logger.Warn("view mode", "err", err)
	}

	toasts := notify.NewCenter(notify.DefaultTTL)
	ctx := ui.NewContext(&th, toasts, logger)
	capture := &mouseCapture{}

	a := &App{
		cfg:       cfg,
		log:       logger,
		ctx:       ctx,
		sidebar:   panel.NewSidebar(ctx),
		preview:   panel.NewPreview(ctx),
		searchbar: panel.NewSearchBar(ctx),
		status:    panel.NewStatus(ctx),
		prompt:    panel.NewPrompt(ctx),
		finder:    panel.NewFinder(ctx),
		whichKey:  panel.NewWhichKey(ctx),
		outline:   panel.NewOutline(ctx),
		layout:    layout.NewController(cfg.Layout(), capture),
		capture:   capture,
		mode:      mode,
		scanner:   scan.New(logger, scan.WithLocale(cfg.Locale)),
		store:     store,
		doc:       document{name: untitledName},
		busy:      map[operation]bool{},
	}
	a.editor = a.newEditor()
	a.search = search.NewSession(a.searchTarget())
	a.finder.SetSearchFunc(a.searchNotes)

	db, err := index.OpenMemory()
	if err != nil {
		// Fail loud (but keep app usable): without an index the finder won't work.
		logger.Error("open index", "err", err)
		a.notices = append(a.notices, toasts.Error(fmt.Errorf("folder search unavailable: %w", err)))
	} else {
		a.db = db
		a.indexer = index.NewIndexer(db, logger)
	}

	// exports are standalone pages and keep the default light code style
	a.exporter = export.New(nil, export.Chrome{ExecPath: cfg.ChromePath}, logger)

	a.initLeader()
	if mode == layout.ViewPreview {
		a.focused = focusPreview
	}
	a.syncStatus()
	return a
}

func (a *App) newEditor() editor.Widget {
	if a.cfg.Editor == config.EditorNvim {
		err := editor.CheckNvimVersion()
		if err == nil {
			dir := a.cfg.Folder
			if dir == "" {
				dir, _ = os.Getwd()
			}
			return editor.NewNvim(dir, a.log)
		}
		a.log.Warn("neovim unavailable, using the built-in editor", "err", err)
		a.notices = append(a.notices, a.ctx.Toasts.Error(fmt.Errorf("neovim unavailable: %w", err)))
	}
	return editor.NewTextarea(a.ctx.Theme)
}

// SetProgram wires background events (folder watcher, Neovim RPC) into p.
func (a *App) SetProgram(p *tea.Program) {
	a.sender = p
	if nv, ok := a.editor.(*editor.Nvim); ok {
		nv.SetSender(p)
	}
}

func (a *App) send(msg tea.Msg) {
	if a.sender != nil {
		a.sender.Send(msg)
	}
}

func (a *App) Init() tea.Cmd {
	cmds := append([]tea.Cmd{tea.SetWindowTitle("mdr")}, a.notices...)
	a.notices = nil
	cmds = append(cmds, a.setFocus(a.focused))
	if a.cfg.Folder != "" {
		cmds = append(cmds, a.openFolder(a.cfg.Folder))
	}
	if a.cfg.File != "" {
		cmds = append(cmds, a.openFile(a.cfg.File))
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	// mouse mode switches requested by the drag capture
	if c := a.capture.flush(); c != nil {
		cmd = tea.Batch(cmd, c)
	}
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.cancelDrag()
		return a.updateLayout()

	case tea.BlurMsg:
		a.cancelDrag()
		return a.updateLayout()

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case leaderTimeoutMsg:
		a.handleLeaderTimeout(msg)
		a.updateWhichKey()
		return nil

	case notify.ExpiredMsg:
		a.ctx.Toasts.Update(msg)
		return nil

	// Panels
	case panel.FileSelectedMsg:
		return a.openFile(msg.Path)

	case panel.ToggleSidebarMsg:
		return a.toggleSidebar()

	case panel.PathCopiedMsg:
		if msg.Err != nil {
			a.log.Warn("copy path", "path", msg.Path, "err", msg.Err)
			return a.ctx.Toasts.Error(fmt.Errorf("copy path: %w", msg.Err))
		}
		return a.ctx.Toasts.Success("Copied " + msg.Path)

	case panel.PromptResultMsg:
		return a.handlePromptResult(msg)

	case panel.PromptCancelledMsg:
		return nil

	case panel.FinderResultMsg:
		return a.openFile(msg.Path)

	case panel.FinderClosedMsg, panel.OutlineClosedMsg:
		return nil

	case panel.OutlineJumpMsg:
		return a.jumpToLine(msg.Line)

	case panel.SearchChangedMsg:
		a.search.SetTerm(msg.Term)
		a.syncSearch()
		return nil

	case panel.SearchStepMsg:
		if msg.Backward {
			a.search.Prev()
		} else {
			a.search.Next()
		}
		a.syncSearch()
		return nil

	case panel.SearchClosedMsg:
		a.search.Close()
		a.syncSearch()
		return tea.Batch(a.setFocus(a.defaultFocus()), a.updateLayout())

	// Editor
	case editor.ChangedMsg:
		return a.contentChanged()

	case editor.SaveRequestedMsg:
		return a.save()

	case editor.QuitRequestedMsg:
		return a.quit()

	case editor.ModeChangedMsg:
		cmd := a.editor.Update(msg)
		a.status.SetMode(a.editor.Mode())
		return cmd

	case editor.ColorsMsg:
		a.ctx.SetTheme(theme.FromExtracted(msg.Colors, *a.ctx.Theme))
		a.preview.Refresh()
		return nil

	case editor.ErrorMsg:
		cmd := a.editor.Update(msg)
		a.log.Error("editor", "err", msg.Err)
		return tea.Batch(cmd, a.ctx.Toasts.Error(msg.Err))

	// Background work
	case fileOpenedMsg:
		a.finish(opOpenFile)
		a.loadDocument(msg.doc)
		return nil

	case fileSavedMsg:
		return a.handleSaved(msg)

	case folderScannedMsg:
		return a.handleScanned(msg)

	case rescanMsg:
		if msg.root != a.folder {
			return nil
		}
		return a.rescan()

	case indexedMsg:
		return a.handleIndexed(msg)

	case exportedMsg:
		a.finish(msg.op)
		return a.ctx.Toasts.Success(fmt.Sprintf("Exported %s", filepath.Base(msg.path)))

	case linkOpenedMsg:
		return a.ctx.Toasts.Info("Opened " + msg.url)

	case opFailedMsg:
		if msg.op != "" {
			a.finish(msg.op)
		}
		a.log.Error("operation failed", "op", msg.op, "err", msg.err)
		return a.ctx.Toasts.Error(msg.err)

	case fatalErrorMsg:
		a.log.Error("background failure", "err", msg.err)
		a.stopWatcher()
		return a.ctx.Toasts.Error(msg.err)
	}

	// Cursor blinks and widget-internal messages.
	cmds := []tea.Cmd{a.editor.Update(msg)}
	if a.prompt.Visible() {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.Update(msg)
		cmds = append(cmds, cmd)
	}
	if a.finder.Visible() {
		var cmd tea.Cmd
		a.finder, cmd = a.finder.Update(msg)
		cmds = append(cmds, cmd)
	}
	if a.searchbar.Visible() {
		var cmd tea.Cmd
		a.searchbar, cmd = a.searchbar.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// searchKeys stay with the search bar while it has focus.
var searchKeys = map[string]bool{
	"esc": true, "ctrl+f": true, "enter": true, "shift+enter": true,
	"up": true, "down": true, "ctrl+n": true, "ctrl+p": true,
}

// nvimKeys are the app shortcuts that still work while Neovim has focus.
// Everything else belongs to Neovim; the leader covers the rest.
var nvimKeys = map[string]bool{
	"ctrl+q": true, "ctrl+s": true, "f2": true, "ctrl+h": true, "ctrl+l": true,
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		a.Close()
		return tea.Quit
	}

	// A drag owns input until the button is released.
	if a.layout.Resizing() {
		if key == "esc" {
			a.cancelDrag()
			return a.updateLayout()
		}
		return nil
	}

	// Overlays take priority when visible
	if a.prompt.Visible() {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.Update(msg)
		return cmd
	}
	if a.finder.Visible() {
		var cmd tea.Cmd
		a.finder, cmd = a.finder.Update(msg)
		return cmd
	}
	if a.outline.Visible() {
		var cmd tea.Cmd
		a.outline, cmd = a.outline.Update(msg)
		return cmd
	}

	if consumed, cmd := a.handleLeaderKey(key); consumed {
		a.updateWhichKey()
		return cmd
	}

	if a.focused == focusSearch && searchKeys[key] {
		var cmd tea.Cmd
		a.searchbar, cmd = a.searchbar.Update(msg)
		return cmd
	}

	_, nvim := a.editor.(*editor.Nvim)
	if !nvim || a.focused != focusEditor || nvimKeys[key] {
		if cmd, ok := a.handleGlobalKey(key); ok {
			return cmd
		}
	}

	switch a.focused {
	case focusSidebar:
		var cmd tea.Cmd
		a.sidebar, cmd = a.sidebar.Update(msg)
		return cmd
	case focusPreview:
		return a.preview.Update(msg)
	case focusSearch:
		var cmd tea.Cmd
		a.searchbar, cmd = a.searchbar.Update(msg)
		return cmd
	}
	return a.editor.Update(msg)
}

func (a *App) handleGlobalKey(key string) (tea.Cmd, bool) {
	switch key {
	case "ctrl+q":
		return a.quit(), true
	case "ctrl+s":
		return a.save(), true
	case "ctrl+n":
		return a.newFile(), true
	case "ctrl+o":
		return a.promptOpenFile(), true
	case "ctrl+b":
		return a.toggleSidebar(), true
	case "ctrl+f":
		return a.toggleSearch(), true
	case "ctrl+p":
		return a.toggleFinder(), true
	case "f2":
		return a.setViewMode(a.mode.Next()), true
	case "tab":
		return a.cycleFocus(1), true
	case "shift+tab":
		return a.cycleFocus(-1), true
	case "ctrl+h":
		return a.focusLeft(), true
	case "ctrl+l":
		return a.focusRight(), true
	case "ctrl+left":
		return a.resizeSidebar(-sidebarStep), true
	case "ctrl+right":
		return a.resizeSidebar(sidebarStep), true
	case "alt+left":
		return a.resizeSplit(-splitStep), true
	case "alt+right":
		return a.resizeSplit(splitStep), true
	}
	return nil, false
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	g := a.geom
	switch msg.Action {
	case tea.MouseActionPress:
		if tea.MouseEvent(msg).IsWheel() {
			if g.InPreview(msg.X) {
				return a.preview.Update(msg)
			}
			return nil
		}
		if msg.Button != tea.MouseButtonLeft || msg.Y >= a.contentHeight() {
			return nil
		}
		if a.modalVisible() {
			return nil
		}
		if a.layout.Press(msg.X) {
			a.status.SetResizing(true)
			return nil
		}
		switch {
		case msg.X < g.SidebarWidth:
			cmd := a.sidebar.Click(msg.X, msg.Y)
			if a.layout.Collapsed() {
				return cmd
			}
			return tea.Batch(a.setFocus(focusSidebar), cmd)
		case g.InEditor(msg.X):
			return a.setFocus(focusEditor)
		case g.InPreview(msg.X):
			return a.setFocus(focusPreview)
		}

	case tea.MouseActionMotion:
		if a.layout.Resizing() && a.layout.Move(msg.X) {
			return a.updateLayout()
		}

	case tea.MouseActionRelease:
		if a.layout.Resizing() {
			a.layout.Release()
			a.status.SetResizing(false)
			return a.updateLayout()
		}
	}
	return nil
}

// modalVisible reports whether an overlay that takes all input is open.
func (a *App) modalVisible() bool {
	return a.prompt.Visible() || a.finder.Visible() || a.outline.Visible()
}

// cancelDrag force-ends a splitter drag, releasing the pointer.
func (a *App) cancelDrag() {
	a.layout.Cancel()
	a.status.SetResizing(false)
}

// minWindowSize is the smallest terminal the layout supports.
func (a *App) minWindowSize() (minW, minH int) {
	return 40, 8
}

func (a *App) contentHeight() int {
	h := a.geom.Height
	if a.searchbar.Visible() {
		h--
	}
	return max(h, 1)
}

// previewWidth excludes the split bar column.
func (a *App) previewWidth() int {
	if a.geom.SplitBar >= 0 {
		return max(a.geom.PreviewWidth-1, 1)
	}
	return a.geom.PreviewWidth
}

func (a *App) updateLayout() tea.Cmd {
	if a.width == 0 || a.height == 0 {
		return nil
	}
	a.geom = a.layout.Compute(a.width, a.height, a.mode)
	h := a.contentHeight()

	a.sidebar.SetCollapsed(a.layout.Collapsed())
	a.sidebar.SetSize(a.geom.SidebarWidth, h)
	a.preview.SetSize(a.previewWidth(), h)
	a.searchbar.SetWidth(a.width)
	a.status.SetWidth(a.width)
	a.status.SetResizing(a.layout.Resizing())
	a.prompt.SetSize(a.width, a.height)
	a.finder.SetSize(a.width, a.height)
	a.outline.SetSize(a.width, a.height)
	a.whichKey.SetWidth(a.width / 2)

	if a.geom.EditorWidth > 0 {
		return a.editor.SetSize(a.geom.EditorWidth, h)
	}
	return nil
}

func (a *App) resizeSidebar(delta int) tea.Cmd {
	if !a.layout.ResizeSidebar(delta) {
		return nil
	}
	return a.updateLayout()
}

func (a *App) resizeSplit(delta float64) tea.Cmd {
	if a.mode != layout.ViewSplit || !a.layout.ResizeSplit(delta) {
		return nil
	}
	return a.updateLayout()
}

func (a *App) setFocus(target focusedPanel) tea.Cmd {
	a.focused = target
	a.sidebar.SetFocused(target == focusSidebar)
	a.preview.SetFocused(target == focusPreview)
	var cmd tea.Cmd
	if target == focusEditor {
		cmd = a.editor.Focus()
	} else {
		a.editor.Blur()
	}
	a.status.SetMode(a.editor.Mode())
	return cmd
}

// defaultFocus is the main pane for the current view mode.
func (a *App) defaultFocus() focusedPanel {
	if a.mode == layout.ViewPreview {
		return focusPreview
	}
	return focusEditor
}

// panes lists the focusable panes left to right.
func (a *App) panes() []focusedPanel {
	var out []focusedPanel
	if !a.layout.Collapsed() {
		out = append(out, focusSidebar)
	}
	if a.mode != layout.ViewPreview {
		out = append(out, focusEditor)
	}
	if a.mode != layout.ViewEditor {
		out = append(out, focusPreview)
	}
	if a.searchbar.Visible() {
		out = append(out, focusSearch)
	}
	return out
}

func (a *App) cycleFocus(dir int) tea.Cmd {
	panes := a.panes()
	i := 0
	for j, p := range panes {
		if p == a.focused {
			i = j
		}
	}
	n := len(panes)
	return a.setFocus(panes[((i+dir)%n+n)%n])
}

// focusLeft and focusRight move between the side-by-side panes without
// wrapping.
func (a *App) focusLeft() tea.Cmd  { return a.focusStep(-1) }
func (a *App) focusRight() tea.Cmd { return a.focusStep(1) }

func (a *App) focusStep(dir int) tea.Cmd {
	var panes []focusedPanel
	for _, p := range a.panes() {
		if p != focusSearch {
			panes = append(panes, p)
		}
	}
	for i, p := range panes {
		if p == a.focused {
			if j := i + dir; j >= 0 && j < len(panes) {
				return a.setFocus(panes[j])
			}
			return nil
		}
	}
	return nil
}

func (a *App) syncStatus() {
	a.status.SetFile(a.doc.name, a.doc.dirty)
	a.status.SetMode(a.editor.Mode())
	a.status.SetView(a.mode.String())
	if a.folder != "" {
		a.status.SetFolder(filepath.Base(a.folder))
	} else {
		a.status.SetFolder("")
	}
}

// syncSearch pushes the session state to the preview mirror, the search
// bar and the status bar.
func (a *App) syncSearch() {
	if a.mode != layout.ViewPreview {
		a.preview.SetTerm(a.search.Term())
	}
	cur, total := a.search.Current(), len(a.search.Matches())
	a.searchbar.SetCounts(cur, total)
	if a.search.Term() == "" {
		a.status.SetMatches("")
		return
	}
	a.status.SetMatches(panel.MatchSummary(cur, total))
}

func (a *App) searchTarget() search.Target {
	if a.mode == layout.ViewPreview {
		return a.preview
	}
	return a.editor
}

// sameText compares buffers ignoring trailing newlines, which Neovim
// always adds.
func sameText(x, y string) bool {
	return strings.TrimRight(x, "\n") == strings.TrimRight(y, "\n")
}

// Close releases everything the app holds and saves the session. It is
// safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(a.close)
}

func (a *App) close() {
	a.layout.Cancel()

	if a.store != nil {
		if err := a.store.Save(a.sessionState()); err != nil {
			a.log.Error("save session state", "err", err)
		}
	}

	a.editor.Close()
	a.stopWatcher()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("close index", "err", err)
		}
	}
}

func (a *App) sessionState() session.State {
	return session.State{
		Folder: a.folder,
		File:   a.doc.path,
		View:   a.mode.String(),
		Theme:  a.ctx.Theme.Name,
	}
}

func (a *App) stopWatcher() {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Stop(); err != nil {
		a.log.Warn("stop watcher", "err", err)
	}
	a.watcher = nil
}

// watch restarts the folder watcher on root.
func (a *App) watch(root string) {
	a.stopWatcher()
	w, err := index.NewWatcher(root, a.log,
		func() { a.send(rescanMsg{root: root}) },
		func(err error) { a.send(fatalErrorMsg{err: fmt.Errorf("folder watching stopped: %w", err)}) },
	)
	if err != nil {
		a.log.Warn("watch folder", "root", root, "err", err)
		return
	}
	a.watcher = w
	go w.Start()
}

// loadDocument replaces the current document.
func (a *App) loadDocument(doc host.Document) {
	a.doc = document{path: doc.Path, name: doc.Name, saved: doc.Content}
	if a.doc.name == "" {
		a.doc.name = untitledName
	}
	a.quitWarned = false
	a.editor.SetValue(doc.Content)
	a.preview.SetContent(doc.Content)
	a.sidebar.SetActive(doc.Path)
	a.search.Refresh()
	a.syncSearch()
	a.syncStatus()
}

func (a *App) contentChanged() tea.Cmd {
	value := a.editor.Value()
	a.doc.dirty = !sameText(value, a.doc.saved)
	a.preview.SetContent(value)
	a.search.Refresh()
	a.syncSearch()
	a.syncStatus()
	return nil
}
