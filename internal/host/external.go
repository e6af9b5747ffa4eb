package host

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// runCommand is swapped out in tests.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenExternal hands a URL to the desktop's default handler. Only http,
// https and mailto URLs are accepted.
func OpenExternal(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("open %s: %w", raw, err)
	}
	if !allowedSchemes[u.Scheme] {
		return fmt.Errorf("open %s: scheme %q not allowed", raw, u.Scheme)
	}

	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{raw}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", raw}
	default:
		name, args = "xdg-open", []string{raw}
	}
	if err := runCommand(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", raw, err)
	}
	return nil
}
