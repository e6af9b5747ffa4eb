package config

import (
	"fmt"
	"slices"
	"strings"
)

// Keybind maps a key sequence typed after the leader to an action.
type Keybind struct {
	Sequence string
	Action   string
	Label    string
}

// Keys splits the sequence into the individual keys to press.
func (k Keybind) Keys() []string {
	return strings.Fields(k.Sequence)
}

// DefaultKeybinds returns the default leader key bindings.
func DefaultKeybinds() []Keybind {
	return []Keybind{
		{Sequence: "n", Action: "new_file", Label: "New file"},
		{Sequence: "e", Action: "open_file", Label: "Open file"},
		{Sequence: "s", Action: "save", Label: "Save"},
		{Sequence: "S", Action: "save_as", Label: "Save as"},
		{Sequence: "f", Action: "open_folder", Label: "Open folder"},
		{Sequence: "k", Action: "find_in_folder", Label: "Find in folder"},
		{Sequence: "/", Action: "search", Label: "Search document"},
		{Sequence: "o", Action: "outline", Label: "Outline"},
		{Sequence: "h", Action: "export_html", Label: "Export HTML"},
		{Sequence: "p", Action: "export_pdf", Label: "Export PDF"},
		{Sequence: "v e", Action: "view_editor", Label: "Editor only"},
		{Sequence: "v s", Action: "view_split", Label: "Split"},
		{Sequence: "v p", Action: "view_preview", Label: "Preview only"},
		{Sequence: "t", Action: "toggle_theme", Label: "Toggle theme"},
		{Sequence: "b", Action: "toggle_sidebar", Label: "Toggle sidebar"},
		{Sequence: "m", Action: "format_document", Label: "Format document"},
		{Sequence: "l", Action: "open_link", Label: "Open link"},
		{Sequence: "r", Action: "rescan", Label: "Rescan folder"},
		{Sequence: "q", Action: "quit", Label: "Quit"},
	}
}

// ApplyKeybinds returns binds with the sequences in overrides (action ->
// sequence) swapped in. Unknown actions and sequences that would shadow
// each other are errors.
func ApplyKeybinds(binds []Keybind, overrides map[string]string) ([]Keybind, error) {
	out := slices.Clone(binds)
	for action, seq := range overrides {
		i := slices.IndexFunc(out, func(k Keybind) bool { return k.Action == action })
		if i < 0 {
			return nil, fmt.Errorf("keybinds: unknown action %q", action)
		}
		if strings.TrimSpace(seq) == "" {
			return nil, fmt.Errorf("keybinds: empty sequence for %q", action)
		}
		out[i].Sequence = strings.Join(strings.Fields(seq), " ")
	}

	for i, a := range out {
		for _, b := range out[i+1:] {
			if isPrefix(a.Keys(), b.Keys()) || isPrefix(b.Keys(), a.Keys()) {
				return nil, fmt.Errorf("keybinds: %q (%s) conflicts with %q (%s)", a.Sequence, a.Action, b.Sequence, b.Action)
			}
		}
	}
	return out, nil
}

func isPrefix(prefix, keys []string) bool {
	if len(prefix) > len(keys) {
		return false
	}
	return slices.Equal(prefix, keys[:len(prefix)])
}
