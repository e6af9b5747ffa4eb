// Package logging sets up the file-backed structured logger. The terminal is
// owned by the TUI, so diagnostics never go to stderr while it runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// StateDir returns the mdr state directory, respecting XDG_STATE_HOME.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "mdr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "mdr")
}

// ParseLevel maps a config level name to a log level. Unknown names fall
// back to info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Open creates a logger appending to mdr.log in the state directory. The
// returned closer must be called on shutdown.
func Open(level string) (*log.Logger, io.Closer, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "mdr.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, level), f, nil
}

// New returns a logger writing to w.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
		Prefix:          "mdr",
	})
}

// Discard returns a logger that drops everything. Used when no log file can
// be opened and in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
