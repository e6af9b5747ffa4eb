package app

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/mdr/internal/export"
	"github.com/pfassina/mdr/internal/host"
	"github.com/pfassina/mdr/internal/layout"
	"github.com/pfassina/mdr/internal/markdown"
	"github.com/pfassina/mdr/internal/notify"
	"github.com/pfassina/mdr/internal/panel"
	"github.com/pfassina/mdr/internal/scan"
	"github.com/pfassina/mdr/internal/search"
)

func (a *App) newFile() tea.Cmd {
	a.loadDocument(host.Document{})
	return nil
}

func (a *App) promptOpenFile() tea.Cmd {
	initial := ""
	if a.folder != "" {
		initial = a.folder + string(filepath.Separator)
	}
	return a.prompt.Show(promptOpenFile, "Open file", "path/to/file.md", initial)
}

func (a *App) openFile(path string) tea.Cmd {
	if !a.start(opOpenFile) {
		return nil
	}
	return openFileCmd(path)
}

// save writes the document to its path. Untitled documents go through
// Save As first.
func (a *App) save() tea.Cmd {
	if a.doc.path == "" {
		return a.promptSaveAs()
	}
	return a.saveTo(a.doc.path)
}

func (a *App) saveTo(path string) tea.Cmd {
	if !a.start(opSave) {
		return nil
	}
	return saveFileCmd(path, a.editor.Value())
}

func (a *App) promptSaveAs() tea.Cmd {
	return a.prompt.Show(promptSaveAs, "Save as", "notes.md", a.suggestPath(".md"))
}

// suggestPath proposes a file name with ext: the current file's name, or
// for an untitled document the slug of its title, in the open folder.
func (a *App) suggestPath(ext string) string {
	var dir, base string
	if a.doc.path != "" {
		dir = filepath.Dir(a.doc.path)
		base = strings.TrimSuffix(filepath.Base(a.doc.path), filepath.Ext(a.doc.path))
	} else {
		dir = a.folder
		base = markdown.Slugify(markdown.Parse([]byte(a.editor.Value())).Title())
	}
	if base == "" {
		base = "untitled"
	}
	if dir == "" {
		return base + ext
	}
	return filepath.Join(dir, base+ext)
}

func (a *App) handleSaved(msg fileSavedMsg) tea.Cmd {
	a.finish(opSave)
	a.doc.path = msg.path
	a.doc.name = filepath.Base(msg.path)
	a.doc.saved = msg.content
	// edits made while the write was in flight stay dirty
	a.doc.dirty = !sameText(a.editor.Value(), msg.content)
	a.quitWarned = false
	a.sidebar.SetActive(msg.path)
	a.syncStatus()
	a.log.Info("saved", "path", msg.path, "bytes", len(msg.content))
	return a.ctx.Toasts.Success("Saved " + a.doc.name)
}

func (a *App) promptOpenFolder() tea.Cmd {
	return a.prompt.Show(promptOpenFolder, "Open folder", "~/notes", a.folder)
}

// openFolder validates path and scans it. The current folder stays in
// place until the scan succeeds.
func (a *App) openFolder(path string) tea.Cmd {
	root, err := host.CheckDirectory(path)
	if err != nil {
		a.log.Warn("open folder", "path", path, "err", err)
		return a.ctx.Toasts.Error(err)
	}
	if !a.start(opScan) {
		return nil
	}
	a.sidebar.SetLoading(true)
	return scanCmd(a.scanner, root, false)
}

// rescan refreshes the open folder. A rescan requested while a scan runs
// is queued behind it.
func (a *App) rescan() tea.Cmd {
	if a.folder == "" {
		return a.ctx.Toasts.Info("No folder open")
	}
	if a.busy[opScan] {
		a.rescanPending = true
		return nil
	}
	a.start(opScan)
	return scanCmd(a.scanner, a.folder, true)
}

func (a *App) handleScanned(msg folderScannedMsg) tea.Cmd {
	a.finish(opScan)
	a.sidebar.SetLoading(false)
	m := msg.manifest

	var cmds []tea.Cmd
	if m.Err != nil {
		a.log.Warn("scan folder", "root", m.Root, "err", m.Err)
		if msg.rescan && m.Root == a.folder {
			// the open folder went away; show why
			a.sidebar.SetManifest(m)
		}
		cmds = append(cmds, a.ctx.Toasts.Error(m.Err))
	} else {
		if m.Root != a.folder {
			a.folder = m.Root
			a.watch(m.Root)
			a.log.Info("opened folder", "root", m.Root, "files", len(m.Files))
		}
		a.sidebar.SetManifest(m)
		a.sidebar.SetActive(a.doc.path)
		a.syncStatus()
		cmds = append(cmds, a.reindex(m))
	}

	if a.rescanPending {
		a.rescanPending = false
		cmds = append(cmds, a.rescan())
	}
	return tea.Batch(cmds...)
}

// reindex brings the folder index in line with m. Only one pass runs at
// a time; the newest waiting manifest runs next.
func (a *App) reindex(m scan.Manifest) tea.Cmd {
	if a.indexer == nil {
		return nil
	}
	if a.busy[opIndex] {
		a.pendingIndex = &m
		return nil
	}
	a.start(opIndex)
	return indexCmd(a.indexer, m)
}

func (a *App) handleIndexed(msg indexedMsg) tea.Cmd {
	a.finish(opIndex)
	var cmds []tea.Cmd
	if msg.err != nil {
		a.log.Error("index folder", "root", msg.root, "err", msg.err)
		cmds = append(cmds, a.ctx.Toasts.Error(fmt.Errorf("folder search: %w", msg.err)))
	}
	if next := a.pendingIndex; next != nil {
		a.pendingIndex = nil
		cmds = append(cmds, a.reindex(*next))
	}
	return tea.Batch(cmds...)
}

func (a *App) toggleFinder() tea.Cmd {
	if a.finder.Visible() {
		a.finder.Hide()
		return nil
	}
	if a.folder == "" {
		return a.ctx.Toasts.Info("Open a folder to search it")
	}
	return a.finder.Show()
}

// toggleSearch opens the search bar, focuses it when it is open but
// unfocused, and closes it otherwise.
func (a *App) toggleSearch() tea.Cmd {
	switch {
	case !a.searchbar.Visible():
		cmd := a.searchbar.Show()
		// the bar keeps its last term
		if term := a.searchbar.Term(); term != "" {
			a.search.SetTerm(term)
			a.syncSearch()
		}
		return tea.Batch(cmd, a.setFocus(focusSearch), a.updateLayout())
	case a.focused != focusSearch:
		return a.setFocus(focusSearch)
	}
	a.searchbar.Hide()
	a.search.Close()
	a.syncSearch()
	return tea.Batch(a.setFocus(a.defaultFocus()), a.updateLayout())
}

func (a *App) showOutline() tea.Cmd {
	a.outline.Show(a.editor.Value())
	return nil
}

// jumpToLine moves the editor cursor to line and scrolls the preview to
// the same relative position.
func (a *App) jumpToLine(line int) tea.Cmd {
	a.editor.Reveal(search.Range{Line: line})
	if total := strings.Count(a.editor.Value(), "\n") + 1; total > 1 {
		a.preview.ScrollToPercent(float64(line) / float64(total-1))
	}
	if a.mode == layout.ViewPreview {
		return nil
	}
	return a.setFocus(focusEditor)
}

func (a *App) promptExportHTML() tea.Cmd {
	if a.busy[opExportHTML] {
		return nil
	}
	return a.prompt.Show(promptExportHTML, "Export HTML", "document.html", a.suggestPath(".html"))
}

func (a *App) promptExportPDF() tea.Cmd {
	if a.busy[opExportPDF] {
		return nil
	}
	return a.prompt.Show(promptExportPDF, "Export PDF", "document.pdf", a.suggestPath(".pdf"))
}

func (a *App) exportHTML(dst string) tea.Cmd {
	if !a.start(opExportHTML) {
		return nil
	}
	src := a.editor.Value()
	return exportHTMLCmd(a.exporter, src, export.Title(src, a.doc.path), dst)
}

func (a *App) exportPDF(dst string) tea.Cmd {
	if !a.start(opExportPDF) {
		return nil
	}
	src := a.editor.Value()
	return exportPDFCmd(a.exporter, src, export.Title(src, a.doc.path), dst)
}

func (a *App) handlePromptResult(msg panel.PromptResultMsg) tea.Cmd {
	switch msg.Purpose {
	case promptOpenFile:
		return a.openFile(msg.Value)
	case promptOpenFolder:
		return a.openFolder(msg.Value)
	case promptSaveAs:
		return a.withSavePath(msg.Value, ".md", a.saveTo)
	case promptExportHTML:
		return a.withSavePath(msg.Value, ".html", a.exportHTML)
	case promptExportPDF:
		return a.withSavePath(msg.Value, ".pdf", a.exportPDF)
	}
	return nil
}

func (a *App) withSavePath(input, ext string, next func(string) tea.Cmd) tea.Cmd {
	path, err := host.ResolveSavePath(input, ext)
	if err != nil {
		a.log.Warn("save path", "input", input, "err", err)
		return a.ctx.Toasts.Error(err)
	}
	return next(path)
}

func (a *App) setViewMode(m layout.ViewMode) tea.Cmd {
	if m == a.mode {
		return nil
	}
	a.mode = m
	a.search.SetTarget(a.searchTarget())
	a.syncSearch()
	a.syncStatus()

	var cmd tea.Cmd
	switch {
	case m == layout.ViewPreview && a.focused == focusEditor:
		cmd = a.setFocus(focusPreview)
	case m == layout.ViewEditor && a.focused == focusPreview:
		cmd = a.setFocus(focusEditor)
	}
	return tea.Batch(cmd, a.updateLayout())
}

func (a *App) toggleTheme() tea.Cmd {
	a.ctx.SetTheme(a.ctx.Theme.Toggled())
	a.preview.Refresh()
	return nil
}

func (a *App) toggleSidebar() tea.Cmd {
	if !a.layout.ToggleSidebar() {
		return nil
	}
	var cmd tea.Cmd
	if a.layout.Collapsed() && a.focused == focusSidebar {
		cmd = a.setFocus(a.defaultFocus())
	}
	return tea.Batch(cmd, a.updateLayout())
}

func (a *App) formatDocument() tea.Cmd {
	src := a.editor.Value()
	formatted := string(markdown.Format([]byte(src)))
	if sameText(formatted, src) {
		return a.ctx.Toasts.Info("Already formatted")
	}
	a.editor.SetValue(formatted)
	return a.contentChanged()
}

// openLink hands the first http(s) URL on the cursor line to the
// desktop.
func (a *App) openLink() tea.Cmd {
	_, line := a.editor.CursorLine()
	url, ok := firstLink(line)
	if !ok {
		return a.ctx.Toasts.Info("No link on this line")
	}
	return openExternalCmd(url)
}

// quit exits, warning once when there are unsaved changes.
func (a *App) quit() tea.Cmd {
	if a.doc.dirty && !a.quitWarned {
		a.quitWarned = true
		return a.ctx.Toasts.Push(notify.Error, "Unsaved changes. Quit again to discard them.")
	}
	a.Close()
	return tea.Quit
}
