// Package ssh serves the editor over SSH with Wish. Each session gets its
// own App and program; sessions do not persist state.
package ssh

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bts "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"

	"github.com/pfassina/mdr/internal/config"
)

// HostKeyName is the server key file inside the config directory.
const HostKeyName = "ssh_host_key"

// Server wraps a Wish SSH server.
type Server struct {
	server *ssh.Server
	cfg    config.Config
	log    *log.Logger
}

// New creates a new SSH server.
func New(cfg config.Config, logger *log.Logger) (*Server, error) {
	keyDir := config.ConfigDir()
	if err := os.MkdirAll(keyDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", keyDir, err)
	}

	s, err := wish.NewServer(
		wish.WithAddress(cfg.Listen),
		wish.WithHostKeyPath(filepath.Join(keyDir, HostKeyName)),
		wish.WithMiddleware(
			bts.MiddlewareWithProgramHandler(NewProgramHandler(cfg, logger), termenv.ANSI256),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}

	return &Server{server: s, cfg: cfg, log: logger}, nil
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.cfg.Listen }

// ListenAndServe starts the SSH server.
func (s *Server) ListenAndServe() error {
	s.log.Info("ssh server listening", "addr", s.cfg.Listen)
	return s.server.ListenAndServe()
}

// Close stops the SSH server.
func (s *Server) Close() error {
	return s.server.Close()
}
