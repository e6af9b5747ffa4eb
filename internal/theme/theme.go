// Package theme holds the light and dark palettes shared by every panel.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	Dark  = "dark"
	Light = "light"
)

// Theme defines a color palette used by all TUI panels.
// Panels hold a *Theme pointer so in-place swaps (toggling light/dark or
// adopting Neovim's colors) are visible on the next View() call.
type Theme struct {
	Name string

	Bg       lipgloss.Color
	Accent   lipgloss.Color
	Subtle   lipgloss.Color
	Text     lipgloss.Color
	Dim      lipgloss.Color
	Border   lipgloss.Color
	StatusBg lipgloss.Color
	StatusFg lipgloss.Color
	Error    lipgloss.Color
	Success  lipgloss.Color

	// Search highlights in the editor and preview.
	Match        lipgloss.Color
	CurrentMatch lipgloss.Color
	MatchFg      lipgloss.Color

	NormalMode lipgloss.Color
	InsertMode lipgloss.Color
	VisualMode lipgloss.Color
	CmdMode    lipgloss.Color

	// GlamourStyle names the glamour standard style for the preview and
	// CodeStyle the chroma style for exported code blocks.
	GlamourStyle string
	CodeStyle    string
}

// DarkTheme returns the dark palette (catppuccin mocha).
func DarkTheme() Theme {
	return Theme{
		Name:         Dark,
		Bg:           lipgloss.Color("#1e1e2e"),
		Accent:       lipgloss.Color("#cba6f7"),
		Subtle:       lipgloss.Color("#6c7086"),
		Text:         lipgloss.Color("#cdd6f4"),
		Dim:          lipgloss.Color("#585b70"),
		Border:       lipgloss.Color("#45475a"),
		StatusBg:     lipgloss.Color("#313244"),
		StatusFg:     lipgloss.Color("#cdd6f4"),
		Error:        lipgloss.Color("#f38ba8"),
		Success:      lipgloss.Color("#a6e3a1"),
		Match:        lipgloss.Color("#f9e2af"),
		CurrentMatch: lipgloss.Color("#fab387"),
		MatchFg:      lipgloss.Color("#1e1e2e"),
		NormalMode:   lipgloss.Color("#89b4fa"),
		InsertMode:   lipgloss.Color("#a6e3a1"),
		VisualMode:   lipgloss.Color("#f9e2af"),
		CmdMode:      lipgloss.Color("#f38ba8"),
		GlamourStyle: "dark",
		CodeStyle:    "monokai",
	}
}

// LightTheme returns the light palette (catppuccin latte).
func LightTheme() Theme {
	return Theme{
		Name:         Light,
		Bg:           lipgloss.Color("#eff1f5"),
		Accent:       lipgloss.Color("#8839ef"),
		Subtle:       lipgloss.Color("#8c8fa1"),
		Text:         lipgloss.Color("#4c4f69"),
		Dim:          lipgloss.Color("#9ca0b0"),
		Border:       lipgloss.Color("#bcc0cc"),
		StatusBg:     lipgloss.Color("#dce0e8"),
		StatusFg:     lipgloss.Color("#4c4f69"),
		Error:        lipgloss.Color("#d20f39"),
		Success:      lipgloss.Color("#40a02b"),
		Match:        lipgloss.Color("#df8e1d"),
		CurrentMatch: lipgloss.Color("#fe640b"),
		MatchFg:      lipgloss.Color("#eff1f5"),
		NormalMode:   lipgloss.Color("#1e66f5"),
		InsertMode:   lipgloss.Color("#40a02b"),
		VisualMode:   lipgloss.Color("#df8e1d"),
		CmdMode:      lipgloss.Color("#d20f39"),
		GlamourStyle: "light",
		CodeStyle:    "github",
	}
}

// DefaultTheme is the dark palette.
func DefaultTheme() Theme { return DarkTheme() }

// ByName returns the palette for "light" or "dark".
func ByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Dark, "":
		return DarkTheme(), nil
	case Light:
		return LightTheme(), nil
	}
	return DarkTheme(), fmt.Errorf("unknown theme %q (want light or dark)", name)
}

// Toggled returns the opposite palette.
func (t Theme) Toggled() Theme {
	if t.Name == Light {
		return DarkTheme()
	}
	return LightTheme()
}
