package app

import (
	"github.com/pfassina/mdr/internal/host"
	"github.com/pfassina/mdr/internal/scan"
)

// fatalErrorMsg is sent to the Bubble Tea program when a background subsystem
// encounters an unrecoverable error. The app keeps running and reports it.
type fatalErrorMsg struct{ err error }

// opFailedMsg ends a busy operation with an error.
type opFailedMsg struct {
	op  operation
	err error
}

type fileOpenedMsg struct {
	doc host.Document
}

type fileSavedMsg struct {
	path    string
	content string
}

type folderScannedMsg struct {
	manifest scan.Manifest
	rescan   bool
}

// rescanMsg comes from the folder watcher after its debounce delay.
type rescanMsg struct{ root string }

type indexedMsg struct {
	root string
	err  error
}

type exportedMsg struct {
	op   operation
	path string
}

type linkOpenedMsg struct{ url string }
