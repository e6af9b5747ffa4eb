package editor

import tea "github.com/charmbracelet/bubbletea"

// keySequences are the xterm encodings Neovim expects for named keys.
var keySequences = map[tea.KeyType]string{
	tea.KeyEnter:     "\r",
	tea.KeyBackspace: "\x7f",
	tea.KeyTab:       "\t",
	tea.KeyEsc:       "\x1b",
	tea.KeySpace:     " ",

	tea.KeyUp:    "\x1b[A",
	tea.KeyDown:  "\x1b[B",
	tea.KeyRight: "\x1b[C",
	tea.KeyLeft:  "\x1b[D",

	tea.KeyHome:   "\x1b[H",
	tea.KeyEnd:    "\x1b[F",
	tea.KeyPgUp:   "\x1b[5~",
	tea.KeyPgDown: "\x1b[6~",
	tea.KeyDelete: "\x1b[3~",
	tea.KeyInsert: "\x1b[2~",

	tea.KeyShiftTab:   "\x1b[Z",
	tea.KeyCtrlUp:     "\x1b[1;5A",
	tea.KeyCtrlDown:   "\x1b[1;5B",
	tea.KeyCtrlRight:  "\x1b[1;5C",
	tea.KeyCtrlLeft:   "\x1b[1;5D",
	tea.KeyShiftUp:    "\x1b[1;2A",
	tea.KeyShiftDown:  "\x1b[1;2B",
	tea.KeyShiftRight: "\x1b[1;2C",
	tea.KeyShiftLeft:  "\x1b[1;2D",

	tea.KeyF1:  "\x1bOP",
	tea.KeyF2:  "\x1bOQ",
	tea.KeyF3:  "\x1bOR",
	tea.KeyF4:  "\x1bOS",
	tea.KeyF5:  "\x1b[15~",
	tea.KeyF6:  "\x1b[17~",
	tea.KeyF7:  "\x1b[18~",
	tea.KeyF8:  "\x1b[19~",
	tea.KeyF9:  "\x1b[20~",
	tea.KeyF10: "\x1b[21~",
	tea.KeyF11: "\x1b[23~",
	tea.KeyF12: "\x1b[24~",
}

// ptyBytes encodes a key press the way a terminal would send it, so it
// can be written to Neovim's PTY. Unknown keys return nil.
func ptyBytes(msg tea.KeyMsg) []byte {
	var seq []byte
	switch s, ok := keySequences[msg.Type]; {
	case msg.Type == tea.KeyRunes:
		seq = []byte(string(msg.Runes))
	case ok:
		seq = []byte(s)
	case msg.Type >= 0 && msg.Type <= 31:
		// ctrl+letter and friends are the C0 control codes
		seq = []byte{byte(msg.Type)}
	default:
		return nil
	}
	if msg.Alt {
		return append([]byte{0x1b}, seq...)
	}
	return seq
}
