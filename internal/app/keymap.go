package app

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/mdr/internal/config"
	"github.com/pfassina/mdr/internal/layout"
	"github.com/pfassina/mdr/internal/panel"
)

// Binding represents a leader key binding.
type Binding struct {
	Key      string
	Label    string
	Action   func(a *App) tea.Cmd
	Children map[string]*Binding
}

// LeaderState tracks the leader key sequence.
type LeaderState struct {
	active   bool
	keys     []string
	node     map[string]*Binding
	showHelp bool
	// seq invalidates timeouts from earlier keys
	seq int
}

// leaderTimeoutMsg signals leader key timeout.
type leaderTimeoutMsg struct{ seq int }

type action struct {
	label string
	run   func(a *App) tea.Cmd
}

// actions lists everything a keybind can trigger, by config name.
func actions() map[string]action {
	return map[string]action{
		"new_file":        {"New file", (*App).newFile},
		"open_file":       {"Open file", (*App).promptOpenFile},
		"save":            {"Save", (*App).save},
		"save_as":         {"Save as", (*App).promptSaveAs},
		"open_folder":     {"Open folder", (*App).promptOpenFolder},
		"find_in_folder":  {"Find in folder", (*App).toggleFinder},
		"search":          {"Search document", (*App).toggleSearch},
		"outline":         {"Outline", (*App).showOutline},
		"export_html":     {"Export HTML", (*App).promptExportHTML},
		"export_pdf":      {"Export PDF", (*App).promptExportPDF},
		"view_editor":     {"Editor only", func(a *App) tea.Cmd { return a.setViewMode(layout.ViewEditor) }},
		"view_split":      {"Split", func(a *App) tea.Cmd { return a.setViewMode(layout.ViewSplit) }},
		"view_preview":    {"Preview only", func(a *App) tea.Cmd { return a.setViewMode(layout.ViewPreview) }},
		"toggle_theme":    {"Toggle theme", (*App).toggleTheme},
		"toggle_sidebar":  {"Toggle sidebar", (*App).toggleSidebar},
		"format_document": {"Format document", (*App).formatDocument},
		"open_link":       {"Open link", (*App).openLink},
		"rescan":          {"Rescan folder", (*App).rescan},
		"quit":            {"Quit", (*App).quit},
	}
}

// groupLabels names the prefix keys of multi-key sequences.
var groupLabels = map[string]string{
	"v": "+view",
}

// newBindings builds the leader tree from the configured keybinds.
// Unknown actions are skipped; config validation rejects them earlier.
func newBindings(binds []config.Keybind) map[string]*Binding {
	table := actions()
	root := map[string]*Binding{}
	for _, kb := range binds {
		act, ok := table[kb.Action]
		keys := kb.Keys()
		if !ok || len(keys) == 0 {
			continue
		}
		node := root
		for _, k := range keys[:len(keys)-1] {
			b, ok := node[k]
			if !ok {
				label := groupLabels[k]
				if label == "" {
					label = "+more"
				}
				b = &Binding{Key: k, Label: label, Children: map[string]*Binding{}}
				node[k] = b
			}
			if b.Children == nil {
				// a leaf already sits on this prefix
				node = nil
				break
			}
			node = b.Children
		}
		if node == nil {
			continue
		}
		last := keys[len(keys)-1]
		label := kb.Label
		if label == "" {
			label = act.label
		}
		node[last] = &Binding{Key: last, Label: label, Action: act.run}
	}
	return root
}

func (a *App) initLeader() {
	a.bindings = newBindings(a.cfg.Keybinds)
	a.leader = LeaderState{}
}

func (a *App) leaderTick() tea.Cmd {
	a.leader.seq++
	seq := a.leader.seq
	return tea.Tick(time.Duration(a.cfg.LeaderTimeout)*time.Millisecond, func(time.Time) tea.Msg {
		return leaderTimeoutMsg{seq: seq}
	})
}

// handleLeaderKey processes a key during leader mode.
// Returns true if the key was consumed by the leader system.
func (a *App) handleLeaderKey(key string) (consumed bool, cmd tea.Cmd) {
	if !a.leader.active {
		if key != a.cfg.LeaderKey {
			return false, nil
		}
		a.leader.active = true
		a.leader.keys = nil
		a.leader.node = a.bindings
		a.leader.showHelp = false
		return true, a.leaderTick()
	}

	if key == "esc" {
		a.cancelLeader()
		return true, nil
	}

	a.leader.keys = append(a.leader.keys, key)

	if binding, ok := a.leader.node[key]; ok {
		if binding.Children != nil {
			// This is a group - wait for next key
			a.leader.node = binding.Children
			a.leader.showHelp = false
			return true, a.leaderTick()
		}
		a.cancelLeader()
		if binding.Action != nil {
			return true, binding.Action(a)
		}
		return true, nil
	}

	// No match - cancel leader mode
	a.cancelLeader()
	return true, nil
}

func (a *App) handleLeaderTimeout(msg leaderTimeoutMsg) {
	if a.leader.active && msg.seq == a.leader.seq {
		a.leader.showHelp = true
	}
}

func (a *App) cancelLeader() {
	a.leader.active = false
	a.leader.showHelp = false
	a.leader.keys = nil
}

func (a *App) updateWhichKey() {
	if !a.leader.showHelp || a.leader.node == nil {
		a.whichKey.Clear()
		return
	}

	var entries []panel.WhichKeyEntry
	for _, b := range a.leader.node {
		entries = append(entries, panel.WhichKeyEntry{
			Key:   b.Key,
			Label: b.Label,
		})
	}
	prefix := strings.Join(append([]string{a.cfg.LeaderKey}, a.leader.keys...), " ")
	a.whichKey.SetEntries(prefix, entries)
}
