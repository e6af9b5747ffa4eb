package session

// State is what mdr remembers between runs. Layout sizes are deliberately
// absent: they reset to the configured defaults on every start.
type State struct {
	Folder string `json:"folder,omitempty"`
	File   string `json:"file,omitempty"`
	View   string `json:"view,omitempty"`
	Theme  string `json:"theme,omitempty"`
}

// Default returns the default session state.
func Default() State {
	return State{}
}

// Empty reports whether nothing is remembered.
func (s State) Empty() bool {
	return s == State{}
}
