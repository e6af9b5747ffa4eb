package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/pfassina/mdr/internal/scan"
)

// DebounceDelay coalesces bursts of file events into one rescan.
const DebounceDelay = 200 * time.Millisecond

// Watcher monitors the open folder and asks for a rescan when markdown
// files or directories change.
type Watcher struct {
	watcher *fsnotify.Watcher
	log     *log.Logger
	root    string
	delay   time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	closed   bool
	onChange func()
	onError  func(error)
}

// NewWatcher watches root and its visible subdirectories down to the
// scanner's depth limit. onChange runs on the watcher goroutine after the
// debounce delay; onError runs once if the watcher dies.
func NewWatcher(root string, logger *log.Logger, onChange func(), onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		log:      logger,
		root:     filepath.Clean(root),
		delay:    DebounceDelay,
		onChange: onChange,
		onError:  onError,
	}
	w.addTree(w.root)
	return w, nil
}

func (w *Watcher) depth(dir string) int {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// addTree adds dir and the subdirectories the scanner would descend into,
// including symlinked ones.
func (w *Watcher) addTree(dir string) {
	depth := w.depth(dir)
	if depth > scan.MaxDepth {
		return
	}
	for _, path := range scan.Dirs(dir, scan.MaxDepth-depth) {
		if err := w.watcher.Add(path); err != nil {
			w.log.Debug("watch dir", "path", path, "err", err)
		}
	}
}

// Start begins watching for changes. Blocks until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// events were dropped; a rescan catches up
				w.log.Warn("watcher overflow", "root", w.root)
				w.schedule()
				continue
			}
			w.log.Error("watcher", "root", w.root, "err", err)
			w.fatal(err)
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.addTree(path)
			w.schedule()
			return
		}
	}

	// Removed or renamed directories have no extension we can check, so
	// anything leaving the tree triggers a rescan.
	if scan.IsMarkdown(path) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.schedule()
	}
}

// schedule (re)starts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		closed := w.closed
		w.timer = nil
		w.mu.Unlock()

		if !closed && w.onChange != nil {
			w.onChange()
		}
	})
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
