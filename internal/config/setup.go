package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/mdr/internal/host"
	"github.com/pfassina/mdr/internal/theme"
)

// SetupResult is returned by RunSetup.
type SetupResult struct {
	Config    Config
	Cancelled bool
}

type setupStep int

const (
	stepFolder setupStep = iota
	stepEditor
)

type setupModel struct {
	cfg   Config
	th    theme.Theme
	step  setupStep
	input textinput.Model
	err   string
	done  bool
	quit  bool
}

func newSetupModel(cfg Config) setupModel {
	ti := textinput.New()
	ti.Placeholder = "~/notes (leave empty for none)"
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(cfg.Folder)
	ti.Focus()

	th, err := theme.ByName(cfg.Theme)
	if err != nil {
		th = theme.DefaultTheme()
	}
	return setupModel{cfg: cfg, th: th, input: ti}
}

func (m setupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.confirm()
		case "esc", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m setupModel) confirm() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.step {
	case stepFolder:
		if value != "" {
			dir, err := host.CheckDirectory(value)
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			value = dir
		}
		m.cfg.Folder = value
		m.step = stepEditor
		m.input.Placeholder = EditorBuiltin + " or " + EditorNvim
		m.input.SetValue(m.cfg.Editor)
		m.input.CursorEnd()
		return m, nil

	default:
		if value == "" {
			value = EditorBuiltin
		}
		if value != EditorBuiltin && value != EditorNvim {
			m.err = fmt.Sprintf("editor must be %q or %q", EditorBuiltin, EditorNvim)
			return m, nil
		}
		m.cfg.Editor = value
		m.done = true
		return m, tea.Quit
	}
}

func (m setupModel) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.th.Accent).
		Render("Welcome to mdr")

	question := "Default folder to open:"
	if m.step == stepEditor {
		question = "Editor (builtin or nvim):"
	}

	var s string
	s += "\n " + title + "\n\n"
	s += " " + question + "\n\n"
	s += "   " + m.input.View() + "\n\n"

	if m.err != "" {
		errStyle := lipgloss.NewStyle().Foreground(m.th.Error)
		s += " " + errStyle.Render(m.err) + "\n\n"
	}

	dim := lipgloss.NewStyle().Foreground(m.th.Dim)
	s += " " + dim.Render("Press Enter to confirm, Esc to cancel") + "\n"

	return s
}

// RunSetup asks for the default folder and editor, then writes
// config.toml.
func RunSetup(cfg Config) (SetupResult, error) {
	p := tea.NewProgram(newSetupModel(cfg))
	final, err := p.Run()
	if err != nil {
		return SetupResult{}, err
	}

	fm, ok := final.(setupModel)
	if !ok {
		return SetupResult{}, fmt.Errorf("unexpected model type from setup wizard")
	}
	if fm.quit || !fm.done {
		return SetupResult{Cancelled: true}, nil
	}

	if err := SaveFile(fm.cfg); err != nil {
		return SetupResult{}, fmt.Errorf("saving config: %w", err)
	}
	return SetupResult{Config: fm.cfg}, nil
}
