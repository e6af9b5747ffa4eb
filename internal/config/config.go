package config

import (
	"github.com/pfassina/mdr/internal/layout"
)

// Editor backends.
const (
	EditorBuiltin = "builtin"
	EditorNvim    = "nvim"
)

type Config struct {
	// Folder opened at startup; empty opens nothing.
	Folder string
	// File opened at startup; empty starts with an untitled document.
	File string

	Theme    string
	ViewMode string
	Editor   string

	SidebarWidth    int
	SidebarMinWidth int
	SidebarMaxWidth int
	SplitRatio      int

	Locale   string
	LogLevel string

	Listen string
	Serve  bool

	ChromePath string

	LeaderKey     string
	LeaderTimeout int // milliseconds
	Keybinds      []Keybind
}

func Default() Config {
	lc := layout.DefaultConfig()
	return Config{
		Theme:           "dark",
		ViewMode:        layout.ViewSplit.String(),
		Editor:          EditorBuiltin,
		SidebarWidth:    lc.SidebarWidth,
		SidebarMinWidth: lc.MinSidebarWidth,
		SidebarMaxWidth: lc.MaxSidebarWidth,
		SplitRatio:      int(lc.SplitRatio),
		LogLevel:        "info",
		Listen:          ":2222",
		LeaderKey:       "ctrl+k",
		LeaderTimeout:   500,
		Keybinds:        DefaultKeybinds(),
	}
}

// Layout returns the resize controller settings. Out-of-range values are
// clamped by the controller.
func (c Config) Layout() layout.Config {
	lc := layout.DefaultConfig()
	lc.SidebarWidth = c.SidebarWidth
	lc.MinSidebarWidth = c.SidebarMinWidth
	lc.MaxSidebarWidth = c.SidebarMaxWidth
	lc.SplitRatio = float64(c.SplitRatio)
	return lc
}
