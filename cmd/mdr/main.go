package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	gossh "github.com/charmbracelet/ssh"

	"github.com/pfassina/mdr/internal/app"
	"github.com/pfassina/mdr/internal/config"
	"github.com/pfassina/mdr/internal/export"
	"github.com/pfassina/mdr/internal/host"
	"github.com/pfassina/mdr/internal/logging"
	"github.com/pfassina/mdr/internal/scan"
	"github.com/pfassina/mdr/internal/session"
	"github.com/pfassina/mdr/internal/ssh"
)

func main() {
	cfg := config.Default()
	if _, err := config.LoadFile(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(1)
	}

	store := session.NewStore(config.ConfigDir())
	state, err := store.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: ignoring session state:", err)
	}
	applySession(&cfg, state)

	folder := flag.String("folder", cfg.Folder, "folder to open in the sidebar")
	file := flag.String("file", cfg.File, "markdown file to open")
	themeName := flag.String("theme", cfg.Theme, "color theme: light|dark")
	view := flag.String("view", cfg.ViewMode, "view mode: editor|split|preview")
	editorName := flag.String("editor", cfg.Editor, "editor backend: builtin|nvim")
	serve := flag.Bool("serve", cfg.Serve, "run in SSH server mode")
	listen := flag.String("listen", cfg.Listen, "listen address for --serve (e.g. :2222)")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	scanDir := flag.String("scan", "", "print the markdown manifest of a folder as JSON and exit")
	exportHTML := flag.String("export-html", "", "export a markdown file to HTML and exit")
	exportPDF := flag.String("export-pdf", "", "export a markdown file to PDF and exit")
	out := flag.String("out", "", "output path for --export-html/--export-pdf")
	initSetup := flag.Bool("init", false, "run the setup wizard and write config.toml")

	flag.Parse()

	cfg.Folder = *folder
	cfg.File = *file
	cfg.Theme = *themeName
	cfg.ViewMode = *view
	cfg.Editor = *editorName
	cfg.Serve = *serve
	cfg.Listen = *listen
	cfg.LogLevel = *logLevel
	if flag.NArg() > 0 && cfg.File == "" {
		cfg.File = flag.Arg(0)
	}

	logger, closer, err := logging.Open(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: logging disabled:", err)
		logger = logging.Discard()
	} else {
		defer closer.Close()
	}

	switch {
	case *scanDir != "":
		os.Exit(runScan(cfg, logger, *scanDir))
	case *exportHTML != "":
		os.Exit(runExport(cfg, logger, *exportHTML, *out, ".html"))
	case *exportPDF != "":
		os.Exit(runExport(cfg, logger, *exportPDF, *out, ".pdf"))
	}

	if *initSetup {
		res, err := config.RunSetup(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "setup failed:", err)
			os.Exit(1)
		}
		if res.Cancelled {
			os.Exit(0)
		}
		cfg.Folder = res.Config.Folder
		cfg.Editor = res.Config.Editor
	}

	if cfg.Folder != "" {
		cfg.Folder = host.ExpandHome(cfg.Folder)
	}

	if cfg.Serve {
		runServe(cfg, logger)
		return
	}
	if err := runLocal(cfg, logger, store); err != nil {
		logger.Error("program", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applySession reopens the last folder and file and restores the view and
// theme. Flags still override it.
func applySession(cfg *config.Config, state session.State) {
	if state.Empty() {
		return
	}
	if state.Folder != "" {
		cfg.Folder = state.Folder
	}
	if state.File != "" {
		cfg.File = state.File
	}
	if state.View != "" {
		cfg.ViewMode = state.View
	}
	if state.Theme != "" {
		cfg.Theme = state.Theme
	}
}

func runLocal(cfg config.Config, logger *log.Logger, store *session.Store) error {
	if cfg.Editor == config.EditorNvim {
		// Ensure lipgloss/termenv uses truecolor so extracted colorscheme colors
		// render accurately instead of being approximated to the 256-color palette.
		if err := os.Setenv("COLORTERM", "truecolor"); err != nil {
			return fmt.Errorf("set COLORTERM: %w", err)
		}
	}

	a := app.New(cfg, logger, store)
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	a.SetProgram(p)
	_, err := p.Run()
	return err
}

func runServe(cfg config.Config, logger *log.Logger) {
	s, err := ssh.New(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		if err := s.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing server: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "serving mdr over ssh on %s\n", s.Addr())
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runScan prints the manifest of dir. The exit code is 1 when the folder
// could not be read.
func runScan(cfg config.Config, logger *log.Logger, dir string) int {
	root, err := host.Abs(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	m := scan.New(logger, scan.WithLocale(cfg.Locale)).Scan(root)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		fmt.Fprintln(os.Stderr, "encode manifest:", err)
		return 1
	}
	if m.Err != nil {
		return 1
	}
	return 0
}

// runExport renders src to HTML or PDF. dst defaults to src with the
// export extension.
func runExport(cfg config.Config, logger *log.Logger, src, dst, ext string) int {
	doc, err := host.OpenFile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if dst == "" {
		dst = strings.TrimSuffix(doc.Path, filepath.Ext(doc.Path)) + ext
	}
	dst, err = host.ResolveSavePath(dst, ext)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	e := export.New(nil, export.Chrome{ExecPath: cfg.ChromePath}, logger)
	title := export.Title(doc.Content, doc.Path)
	if ext == ".pdf" {
		err = e.WritePDF(context.Background(), doc.Content, title, dst)
	} else {
		err = e.WriteHTML(doc.Content, title, dst)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(dst)
	return 0
}
