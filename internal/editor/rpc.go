package editor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neovim/go-client/nvim"
)

// NvimMode represents Neovim's current mode.
type NvimMode string

const (
	ModeNormal  NvimMode = "n"
	ModeInsert  NvimMode = "i"
	ModeVisual  NvimMode = "v"
	ModeVisLine NvimMode = "V"
	ModeVisBlk  NvimMode = "\x16"
	ModeCommand NvimMode = "c"
	ModeReplace NvimMode = "R"
	ModeTermnl  NvimMode = "t"
)

// Label is the status bar text for the mode.
func (m NvimMode) Label() string {
	switch m {
	case ModeInsert:
		return "INSERT"
	case ModeVisual, ModeVisLine, ModeVisBlk:
		return "VISUAL"
	case ModeCommand:
		return "COMMAND"
	case ModeReplace:
		return "REPLACE"
	case ModeTermnl:
		return "TERMINAL"
	default:
		return "NORMAL"
	}
}

// Sender delivers messages into the running program; *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// RPC manages the Neovim RPC connection.
type RPC struct {
	client *nvim.Nvim
	mu     sync.RWMutex
	mode   NvimMode
	onMode func(NvimMode)
}

// ConnectRPC dials the Neovim socket and sets up event subscriptions.
// It retries briefly since Neovim may not have the socket ready immediately.
func ConnectRPC(socketPath string, onMode func(NvimMode)) (*RPC, error) {
	var client *nvim.Nvim
	var err error

	for i := 0; i < 50; i++ {
		client, err = nvim.Dial(socketPath)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to nvim socket: %w", err)
	}

	rpc := &RPC{
		client: client,
		mode:   ModeNormal,
		onMode: onMode,
	}

	if err := rpc.setupModeChanged(); err != nil {
		return nil, errors.Join(fmt.Errorf("setup mode events: %w", err), client.Close())
	}

	return rpc, nil
}

func (r *RPC) setupModeChanged() error {
	if err := r.client.RegisterHandler("mode_changed", func(args ...interface{}) {
		if len(args) < 2 {
			return
		}
		newMode, ok := args[1].(string)
		if !ok {
			return
		}

		r.mu.Lock()
		r.mode = NvimMode(newMode)
		r.mu.Unlock()

		if r.onMode != nil {
			r.onMode(NvimMode(newMode))
		}
	}); err != nil {
		return err
	}

	if err := r.client.Subscribe("mode_changed"); err != nil {
		return err
	}

	cid := r.client.ChannelID()
	_, err := r.client.Exec(fmt.Sprintf(`
		augroup MdrMode
			autocmd!
			autocmd ModeChanged * call rpcnotify(%d, 'mode_changed', v:event.old_mode, v:event.new_mode)
		augroup END
	`, cid), false)
	return err
}

// Mode returns the current Neovim mode.
func (r *RPC) Mode() NvimMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// SetupBufferEvents makes the scratch buffer report edits, and turns :w and
// :q into requests to the app, which owns the file on disk.
func (r *RPC) SetupBufferEvents(send Sender) error {
	handlers := map[string]tea.Msg{
		"mdr:changed": ChangedMsg{},
		"mdr:save":    SaveRequestedMsg{},
		"mdr:quit":    QuitRequestedMsg{},
	}
	for event, msg := range handlers {
		msg := msg
		if err := r.client.RegisterHandler(event, func(args ...interface{}) {
			if send != nil {
				send.Send(msg)
			}
		}); err != nil {
			return err
		}
		if err := r.client.Subscribe(event); err != nil {
			return err
		}
	}

	lua := fmt.Sprintf(`
local chan = %d
vim.bo.buftype = 'acwrite'
vim.bo.swapfile = false
vim.bo.filetype = 'markdown'

local group = vim.api.nvim_create_augroup('MdrBuffer', {clear=true})
vim.api.nvim_create_autocmd({'TextChanged', 'TextChangedI'}, {
  group = group,
  buffer = 0,
  callback = function() vim.rpcnotify(chan, 'mdr:changed') end,
})
vim.api.nvim_create_autocmd('BufWriteCmd', {
  group = group,
  buffer = 0,
  callback = function() vim.rpcnotify(chan, 'mdr:save') end,
})

-- Throwing from QuitPre aborts :q, :wq and friends.
vim.api.nvim_create_autocmd('QuitPre', {
  group = group,
  callback = function()
    vim.rpcnotify(chan, 'mdr:quit')
    error('mdr')
  end,
})
`, r.client.ChannelID())

	return r.client.ExecLua(lua, nil)
}

// BufferContent returns all lines of the current buffer.
func (r *RPC) BufferContent() ([][]byte, error) {
	buf, err := r.client.CurrentBuffer()
	if err != nil {
		return nil, err
	}
	return r.client.BufferLines(buf, 0, -1, false)
}

// SetBufferLines replaces the current buffer and marks it unmodified.
func (r *RPC) SetBufferLines(lines []string) error {
	return r.client.ExecLua(`
local lines = ...
local buf = vim.api.nvim_get_current_buf()
vim.api.nvim_buf_set_lines(buf, 0, -1, false, lines)
vim.bo[buf].modified = false
vim.api.nvim_win_set_cursor(0, {1, 0})
`, nil, lines)
}

// ExecLua runs Lua code in Neovim.
func (r *RPC) ExecLua(code string, result interface{}, args ...interface{}) error {
	return r.client.ExecLua(code, result, args...)
}

// CursorPosition returns the current cursor position as (line, col).
// Line is 1-based, col is a 0-based byte offset (Neovim's convention).
func (r *RPC) CursorPosition() (int, int, error) {
	var pos [2]int
	err := r.client.ExecLua("return vim.api.nvim_win_get_cursor(0)", &pos)
	if err != nil {
		return 0, 0, err
	}
	return pos[0], pos[1], nil
}

// SetCursorPosition moves the cursor and centers the line. Line is
// 1-based, col is a 0-based byte offset.
func (r *RPC) SetCursorPosition(line, col int) error {
	return r.client.ExecLua(`
vim.api.nvim_win_set_cursor(0, {...})
vim.cmd('normal! zz')
`, nil, line, col)
}

// bytePos is a 1-based line and byte column with a byte length, the shape
// matchaddpos() takes.
type bytePos [3]int

// HighlightMatches replaces the search highlights: every match gets the
// Search group and the focused one IncSearch.
func (r *RPC) HighlightMatches(all []bytePos, current int) error {
	return r.client.ExecLua(`
local all, current = ...
vim.fn.clearmatches()
-- matchaddpos takes at most 8 positions per call
for i = 1, #all, 8 do
  vim.fn.matchaddpos('Search', vim.list_slice(all, i, i + 7), 10)
end
if current >= 0 and all[current + 1] then
  vim.fn.matchaddpos('IncSearch', {all[current + 1]}, 11)
end
`, nil, all, current)
}

// ClearMatches removes all search highlights.
func (r *RPC) ClearMatches() error {
	return r.client.ExecLua("vim.fn.clearmatches()", nil)
}

// Quit tells Neovim to exit by clearing the quit intercept and running qa!.
func (r *RPC) Quit() {
	if r.client == nil {
		return
	}
	// Errors are expected during shutdown: Neovim may close the connection mid-command.
	r.client.ExecLua("vim.api.nvim_clear_autocmds({event='QuitPre'})", nil) //nolint:errcheck // shutdown
	r.client.Command("qa!")                                                 //nolint:errcheck // shutdown
}

// ExtractColors queries Neovim highlight groups and returns a map of
// group name → [fg, bg] hex color strings. Empty string means the group
// did not define that attribute.
func (r *RPC) ExtractColors() (map[string][2]string, error) {
	groups := []string{
		"Normal", "Function", "Keyword", "Comment",
		"NonText", "LineNr", "WinSeparator",
		"StatusLine", "DiagnosticError", "DiagnosticOk",
		"String", "Visual", "WarningMsg",
		"Search", "IncSearch",
	}

	result := make(map[string][2]string, len(groups))

	for _, g := range groups {
		var raw map[string]interface{}
		err := r.client.ExecLua(
			"return vim.api.nvim_get_hl(0, {name=..., link=false})",
			&raw, g,
		)
		if err != nil {
			continue // group may not exist in this colorscheme
		}
		var pair [2]string
		if fg, ok := raw["fg"]; ok {
			pair[0] = intToHex(fg)
		}
		if bg, ok := raw["bg"]; ok {
			pair[1] = intToHex(bg)
		}
		if pair[0] != "" || pair[1] != "" {
			result[g] = pair
		}
	}

	return result, nil
}

// intToHex converts an integer-typed color value to a #rrggbb hex string.
func intToHex(v interface{}) string {
	switch n := v.(type) {
	case int64:
		return fmt.Sprintf("#%06x", n)
	case uint64:
		return fmt.Sprintf("#%06x", n)
	case float64:
		return fmt.Sprintf("#%06x", int64(n))
	default:
		return ""
	}
}

// Close closes the RPC connection.
func (r *RPC) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
