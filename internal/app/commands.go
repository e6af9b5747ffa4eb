package app

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/mdr/internal/export"
	"github.com/pfassina/mdr/internal/host"
	"github.com/pfassina/mdr/internal/index"
	"github.com/pfassina/mdr/internal/panel"
	"github.com/pfassina/mdr/internal/scan"
)

// operation names a blocking task. While one is in flight its trigger is
// ignored.
type operation string

const (
	opOpenFile   operation = "open"
	opSave       operation = "save"
	opScan       operation = "scan"
	opIndex      operation = "index"
	opExportHTML operation = "export html"
	opExportPDF  operation = "export pdf"
)

// finderLimit caps the results shown by the folder finder.
const finderLimit = 50

// start marks op busy. It reports false when op is already running.
func (a *App) start(op operation) bool {
	if a.busy[op] {
		a.log.Debug("ignored re-trigger", "op", op)
		return false
	}
	a.busy[op] = true
	a.refreshBusy()
	return true
}

func (a *App) finish(op operation) {
	delete(a.busy, op)
	a.refreshBusy()
}

func (a *App) refreshBusy() {
	// index runs in the background without blocking anything
	for _, op := range []operation{opExportPDF, opExportHTML, opSave, opOpenFile, opScan} {
		if a.busy[op] {
			a.status.SetBusy(string(op))
			return
		}
	}
	a.status.SetBusy("")
}

func openFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := host.OpenFile(path)
		if err != nil {
			return opFailedMsg{op: opOpenFile, err: err}
		}
		return fileOpenedMsg{doc: doc}
	}
}

func saveFileCmd(path, content string) tea.Cmd {
	return func() tea.Msg {
		if err := host.WriteFile(path, []byte(content)); err != nil {
			return opFailedMsg{op: opSave, err: fmt.Errorf("save %s: %w", path, err)}
		}
		return fileSavedMsg{path: path, content: content}
	}
}

func scanCmd(s *scan.Scanner, root string, rescan bool) tea.Cmd {
	return func() tea.Msg {
		return folderScannedMsg{manifest: s.Scan(root), rescan: rescan}
	}
}

func indexCmd(idx *index.Indexer, m scan.Manifest) tea.Cmd {
	return func() tea.Msg {
		return indexedMsg{root: m.Root, err: idx.IndexManifest(m)}
	}
}

func exportHTMLCmd(e *export.Exporter, src, title, dst string) tea.Cmd {
	return func() tea.Msg {
		if err := e.WriteHTML(src, title, dst); err != nil {
			return opFailedMsg{op: opExportHTML, err: err}
		}
		return exportedMsg{op: opExportHTML, path: dst}
	}
}

func exportPDFCmd(e *export.Exporter, src, title, dst string) tea.Cmd {
	return func() tea.Msg {
		if err := e.WritePDF(context.Background(), src, title, dst); err != nil {
			return opFailedMsg{op: opExportPDF, err: err}
		}
		return exportedMsg{op: opExportPDF, path: dst}
	}
}

func openExternalCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := host.OpenExternal(url); err != nil {
			return opFailedMsg{err: err}
		}
		return linkOpenedMsg{url: url}
	}
}

var linkPattern = regexp.MustCompile(`https?://[^\s<>()\[\]"'` + "`" + `]+`)

// firstLink returns the first http(s) URL in line.
func firstLink(line string) (string, bool) {
	url := linkPattern.FindString(line)
	return url, url != ""
}

// searchNotes returns finder items for a query.
func (a *App) searchNotes(query string) []panel.FinderItem {
	if a.indexer == nil || a.folder == "" {
		return nil
	}
	results, err := a.indexer.Find(query, finderLimit)
	if err != nil {
		a.log.Warn("finder search", "query", query, "err", err)
		return nil
	}

	items := make([]panel.FinderItem, len(results))
	for i, r := range results {
		extra := r.Snippet
		if extra == "" {
			extra = r.Path
		}
		title := r.Title
		if title == "" {
			title = filepath.Base(r.Path)
		}
		items[i] = panel.FinderItem{Title: title, Path: r.AbsPath, Extra: extra}
	}
	return items
}
