package index

// fatal reports an unrecoverable watcher error once. Later events are
// ignored.
func (w *Watcher) fatal(err error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	onError := w.onError
	w.mu.Unlock()

	if onError != nil {
		onError(err)
	}
}
