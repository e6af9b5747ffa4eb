package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pfassina/mdr/internal/host"
)

// fileConfig mirrors Config with pointer fields so we can distinguish
// "not set" from zero values when merging TOML.
type fileConfig struct {
	Folder          *string           `toml:"folder,omitempty"`
	Theme           *string           `toml:"theme,omitempty"`
	ViewMode        *string           `toml:"view_mode,omitempty"`
	Editor          *string           `toml:"editor,omitempty"`
	SidebarWidth    *int              `toml:"sidebar_width,omitempty"`
	SidebarMinWidth *int              `toml:"sidebar_min_width,omitempty"`
	SidebarMaxWidth *int              `toml:"sidebar_max_width,omitempty"`
	SplitRatio      *int              `toml:"split_ratio,omitempty"`
	Locale          *string           `toml:"locale,omitempty"`
	LogLevel        *string           `toml:"log_level,omitempty"`
	Listen          *string           `toml:"listen,omitempty"`
	ChromePath      *string           `toml:"chrome_path,omitempty"`
	LeaderKey       *string           `toml:"leader_key,omitempty"`
	LeaderTimeout   *int              `toml:"leader_timeout,omitempty"`
	Keybinds        map[string]string `toml:"keybinds,omitempty"`
}

// ConfigDir returns the mdr config directory, respecting XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mdr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mdr")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadFile reads config.toml and merges non-nil fields into cfg.
// Returns true if the file existed, false otherwise.
func LoadFile(cfg *Config) (bool, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.Folder, fc.Folder, host.ExpandHome)
	setString(&cfg.Theme, fc.Theme, nil)
	setString(&cfg.ViewMode, fc.ViewMode, nil)
	setString(&cfg.Editor, fc.Editor, nil)
	setString(&cfg.Locale, fc.Locale, nil)
	setString(&cfg.LogLevel, fc.LogLevel, nil)
	setString(&cfg.Listen, fc.Listen, nil)
	setString(&cfg.ChromePath, fc.ChromePath, host.ExpandHome)
	setString(&cfg.LeaderKey, fc.LeaderKey, nil)
	setInt(&cfg.SidebarWidth, fc.SidebarWidth)
	setInt(&cfg.SidebarMinWidth, fc.SidebarMinWidth)
	setInt(&cfg.SidebarMaxWidth, fc.SidebarMaxWidth)
	setInt(&cfg.SplitRatio, fc.SplitRatio)
	setInt(&cfg.LeaderTimeout, fc.LeaderTimeout)

	if len(fc.Keybinds) > 0 {
		kb, err := ApplyKeybinds(cfg.Keybinds, fc.Keybinds)
		if err != nil {
			return true, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Keybinds = kb
	}

	return true, nil
}

func setString(dst *string, v *string, transform func(string) string) {
	if v == nil {
		return
	}
	if transform != nil {
		*dst = transform(*v)
		return
	}
	*dst = *v
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// SaveFile writes config.toml with the folder, theme and editor of cfg.
// Other settings keep their defaults and are left out.
func SaveFile(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	fc := fileConfig{}
	if cfg.Folder != "" {
		// Store with ~ for readability if under home dir.
		display := cfg.Folder
		home, _ := os.UserHomeDir()
		if home != "" && strings.HasPrefix(display, home+string(os.PathSeparator)) {
			display = "~" + display[len(home):]
		}
		fc.Folder = &display
	}
	if cfg.Theme != "" {
		fc.Theme = &cfg.Theme
	}
	if cfg.Editor != "" {
		fc.Editor = &cfg.Editor
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(fc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return host.WriteFile(ConfigPath(), []byte(b.String()))
}
