package editor

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CheckNvimVersion verifies that nvim is on PATH and at least 0.9, which
// the buffer autocmds need.
func CheckNvimVersion() error {
	out, err := exec.Command("nvim", "--version").Output()
	if err != nil {
		return fmt.Errorf("nvim not found: %w", err)
	}
	return checkVersionOutput(string(out))
}

func checkVersionOutput(out string) error {
	// First line is like "NVIM v0.10.2"
	first, _, _ := strings.Cut(out, "\n")
	version := strings.TrimPrefix(strings.TrimSpace(first), "NVIM v")

	major, minor, err := parseSemver(version)
	if err != nil {
		return fmt.Errorf("could not parse nvim version %q: %w", version, err)
	}
	if major == 0 && minor < 9 {
		return fmt.Errorf("nvim >= 0.9 required, found %d.%d", major, minor)
	}
	return nil
}

func parseSemver(s string) (int, int, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid version: %s", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

// nvimEnv returns extra environment for the embedded Neovim.
func nvimEnv() []string {
	return []string{"TERM=xterm-256color"}
}
