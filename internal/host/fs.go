// Package host is the boundary to the operating system: reading and
// writing documents, validating folders, resolving save paths and handing
// URLs to the desktop.
package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is a file read from disk.
type Document struct {
	Path    string
	Name    string
	Content string
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Abs expands ~ and makes path absolute.
func Abs(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// ReadFile returns the file's content as text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// OpenFile resolves path and reads it as a document.
func OpenFile(path string) (Document, error) {
	abs, err := Abs(path)
	if err != nil {
		return Document{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", abs, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("open %s: is a directory", abs)
	}
	content, err := ReadFile(abs)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: abs, Name: filepath.Base(abs), Content: content}, nil
}

// CheckDirectory resolves path and verifies it is a directory.
func CheckDirectory(path string) (string, error) {
	abs, err := Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("open folder %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("open folder %s: not a directory", abs)
	}
	return abs, nil
}

// ResolveSavePath turns prompt input into an absolute save path. ext (with
// its dot) is appended when the name has no extension. The parent
// directory must already exist.
func ResolveSavePath(input, ext string) (string, error) {
	abs, err := Abs(input)
	if err != nil {
		return "", err
	}
	if strings.HasSuffix(strings.TrimSpace(input), string(os.PathSeparator)) {
		return "", fmt.Errorf("save %s: missing file name", abs)
	}
	if ext != "" && filepath.Ext(abs) == "" {
		abs += ext
	}
	parent := filepath.Dir(abs)
	info, err := os.Stat(parent)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("save %s: %s is not a directory", abs, parent)
	}
	return abs, nil
}

// WriteFile atomically replaces path with data. A failed write leaves any
// existing file untouched and no temp file behind. The existing file's
// permissions are kept; new files get 0644.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("write %s: is a directory", path)
		}
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
