package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/pfassina/mdr/internal/search"
)

type vtOutputMsg []byte

type vtClosedMsg struct{ err error }

type nvimStartedMsg struct{}

type rpcConnectedMsg struct{}

// ModeChangedMsg reports a Neovim mode switch.
type ModeChangedMsg struct {
	Mode NvimMode
}

// ColorsMsg carries the embedded Neovim's highlight colors once connected.
type ColorsMsg struct {
	Colors map[string][2]string
}

var errNotConnected = errors.New("neovim not connected")

// Nvim embeds Neovim in a PTY, renders it through a VT emulator and drives
// it over RPC. The buffer is a scratch buffer: the app reads and writes the
// file, Neovim only edits text.
type Nvim struct {
	width      int
	height     int
	dir        string
	socketPath string
	nvim       *nvimPTY
	rpc        *RPC
	screen     *vtScreen
	started    bool
	focused    bool
	mode       NvimMode
	err        error
	send       Sender
	log        *log.Logger

	pending  *string
	lines    []string
	matchPos []bytePos
}

// NewNvim returns a widget that starts Neovim in dir on first layout.
func NewNvim(dir string, logger *log.Logger) *Nvim {
	return &Nvim{dir: dir, mode: ModeNormal, log: logger}
}

// SetSender wires RPC events into the running program.
func (n *Nvim) SetSender(s Sender) {
	n.send = s
}

func (n *Nvim) start() tea.Cmd {
	return func() tea.Msg {
		n.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("mdr-%d.sock", os.Getpid()))
		os.Remove(n.socketPath)

		p, err := startNvim(n.width, n.height, n.socketPath, n.dir)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		n.nvim = p
		n.screen = newVTScreen(n.width, n.height, p.file)
		return nvimStartedMsg{}
	}
}

func (n *Nvim) connectRPC() tea.Cmd {
	return func() tea.Msg {
		rpc, err := ConnectRPC(n.socketPath, func(mode NvimMode) {
			if n.send != nil {
				n.send.Send(ModeChangedMsg{Mode: mode})
			}
		})
		if err != nil {
			return ErrorMsg{Err: err}
		}
		if err := rpc.SetupBufferEvents(n.send); err != nil {
			return ErrorMsg{Err: errors.Join(fmt.Errorf("setup buffer events: %w", err), rpc.Close())}
		}
		n.rpc = rpc
		return rpcConnectedMsg{}
	}
}

func (n *Nvim) extractColors() tea.Msg {
	colors, err := n.rpc.ExtractColors()
	if err != nil {
		return ErrorMsg{Err: err}
	}
	return ColorsMsg{Colors: colors}
}

// waitForOutput reads from the PTY and returns the output as a message.
func (n *Nvim) waitForOutput() tea.Msg {
	buf := make([]byte, 32*1024)
	c, err := n.nvim.file.Read(buf)
	if err != nil {
		return vtClosedMsg{err}
	}
	return vtOutputMsg(buf[:c])
}

func (n *Nvim) SetSize(width, height int) tea.Cmd {
	n.width, n.height = max(width, 1), max(height, 1)
	if !n.started {
		n.started = true
		return n.start()
	}
	if n.nvim != nil {
		n.nvim.resize(n.width, n.height) //nolint:errcheck // next frame retries
		n.screen.resize(n.width, n.height)
	}
	return nil
}

func (n *Nvim) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case nvimStartedMsg:
		return tea.Batch(n.waitForOutput, n.connectRPC())

	case rpcConnectedMsg:
		if n.pending != nil {
			n.SetValue(*n.pending)
			n.pending = nil
		}
		return n.extractColors

	case ErrorMsg:
		n.err = msg.Err
		return nil

	case ModeChangedMsg:
		n.mode = msg.Mode
		return nil

	case vtOutputMsg:
		if n.screen != nil {
			n.screen.write([]byte(msg)) //nolint:errcheck // emulator never fails on write
		}
		return n.waitForOutput

	case vtClosedMsg:
		n.err = fmt.Errorf("neovim exited: %v", msg.err)
		n.nvim = nil
		return nil

	case tea.KeyMsg:
		if n.nvim == nil || !n.focused {
			return nil
		}
		if raw := ptyBytes(msg); raw != nil {
			n.nvim.file.Write(raw) //nolint:errcheck // a dead pty surfaces as vtClosedMsg
		}
	}
	return nil
}

func (n *Nvim) View() string {
	if n.err != nil {
		return fmt.Sprintf("Editor error: %v", n.err)
	}
	if n.screen == nil {
		return "Starting Neovim..."
	}
	n.screen.setShowCursor(n.focused)
	return n.screen.render()
}

func (n *Nvim) Focus() tea.Cmd {
	n.focused = true
	return nil
}

func (n *Nvim) Blur() { n.focused = false }

// Value returns the buffer text with a trailing newline.
func (n *Nvim) Value() string {
	if n.rpc == nil {
		if n.pending != nil {
			return *n.pending
		}
		return ""
	}
	raw, err := n.rpc.BufferContent()
	if err != nil {
		n.log.Warn("read nvim buffer", "err", err)
		return strings.Join(n.lines, "\n")
	}
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}
	n.lines = lines
	return strings.Join(lines, "\n") + "\n"
}

// SetValue loads content into the buffer. Before the RPC connection is up
// the content is kept and applied on connect.
func (n *Nvim) SetValue(content string) {
	if n.rpc == nil {
		n.pending = &content
		return
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if err := n.rpc.SetBufferLines(lines); err != nil {
		n.log.Warn("set nvim buffer", "err", err)
		return
	}
	n.lines = lines
}

func (n *Nvim) CursorLine() (int, string) {
	if n.rpc == nil {
		return 0, ""
	}
	line, _, err := n.rpc.CursorPosition()
	if err != nil {
		return 0, ""
	}
	n.Value()
	if line-1 < len(n.lines) {
		return line - 1, n.lines[line-1]
	}
	return line - 1, ""
}

func (n *Nvim) Mode() string { return n.mode.Label() }

// FindMatches implements search.Target.
func (n *Nvim) FindMatches(pattern string) []search.Range {
	text := n.Value()
	return search.FindInText(text, pattern)
}

// Highlight implements search.Target with Neovim match highlights.
func (n *Nvim) Highlight(matches []search.Range, current int) {
	if n.rpc == nil {
		return
	}
	n.matchPos = n.matchPos[:0]
	for _, m := range matches {
		n.matchPos = append(n.matchPos, n.toBytePos(m))
	}
	if err := n.rpc.HighlightMatches(n.matchPos, current); err != nil {
		n.log.Warn("highlight matches", "err", err)
	}
}

// ClearHighlights implements search.Target.
func (n *Nvim) ClearHighlights() {
	if n.rpc == nil {
		return
	}
	if err := n.rpc.ClearMatches(); err != nil {
		n.log.Warn("clear matches", "err", err)
	}
}

// Reveal implements search.Target by moving Neovim's cursor.
func (n *Nvim) Reveal(r search.Range) {
	if n.rpc == nil {
		return
	}
	p := n.toBytePos(r)
	if err := n.rpc.SetCursorPosition(p[0], p[1]-1); err != nil {
		n.log.Warn("reveal match", "err", err)
	}
}

// toBytePos converts a rune range to Neovim's 1-based byte position.
func (n *Nvim) toBytePos(r search.Range) bytePos {
	if r.Line >= len(n.lines) {
		return bytePos{r.Line + 1, r.Start + 1, r.End - r.Start}
	}
	line := n.lines[r.Line]
	start := byteOffset(line, r.Start)
	end := byteOffset(line, r.End)
	return bytePos{r.Line + 1, start + 1, end - start}
}

func byteOffset(s string, runeCol int) int {
	off := 0
	for i := 0; i < runeCol && off < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

// Close stops Neovim.
func (n *Nvim) Close() {
	if n.rpc != nil {
		n.rpc.Quit()
		n.rpc.Close() //nolint:errcheck // shutdown
	}
	if n.screen != nil {
		n.screen.close() //nolint:errcheck // shutdown
	}
	if n.nvim != nil {
		n.nvim.close() //nolint:errcheck // nvim exits non-zero after qa! races
	}
}
