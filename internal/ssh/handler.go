package ssh

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	bts "github.com/charmbracelet/wish/bubbletea"

	"github.com/pfassina/mdr/internal/app"
	"github.com/pfassina/mdr/internal/config"
)

// NewProgramHandler returns a Bubble Tea program handler for SSH sessions.
// The program is handed back to the app so background work (folder
// rescans, Neovim events) can reach it.
func NewProgramHandler(cfg config.Config, logger *log.Logger) bts.ProgramHandler {
	return func(sess ssh.Session) *tea.Program {
		a := app.New(cfg, logger.With("user", sess.User(), "remote", sess.RemoteAddr().String()), nil)

		opts := []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
			tea.WithReportFocus(),
		}
		opts = append(opts, bts.MakeOptions(sess)...)

		p := tea.NewProgram(a, opts...)
		a.SetProgram(p)
		go func() {
			<-sess.Context().Done()
			a.Close()
		}()
		return p
	}
}
