// Package scan walks a folder and builds the sorted manifest of markdown
// files shown in the sidebar.
package scan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MaxDepth is the deepest directory level below the root whose files are
// reported. The root itself is depth 0.
const MaxDepth = 3

// Scanner walks directory trees. It holds no state between calls: every Scan
// re-reads the tree from scratch.
type Scanner struct {
	log      *log.Logger
	maxDepth int
	locale   language.Tag
	readDir  func(string) ([]os.DirEntry, error)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLocale sets the collation locale used to sort entries by name.
// An empty or unparseable locale uses root collation.
func WithLocale(locale string) Option {
	return func(s *Scanner) {
		s.locale = ParseLocale(locale)
	}
}

// WithMaxDepth overrides the traversal depth limit.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// New returns a Scanner. A nil logger discards diagnostics.
func New(logger *log.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Scanner{
		log:      logger,
		maxDepth: MaxDepth,
		locale:   language.Und,
		readDir:  os.ReadDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan lists every markdown file under root, up to the depth limit, and
// returns them sorted by name. If root itself cannot be listed the manifest
// carries the error and no files.
func (s *Scanner) Scan(root string) Manifest {
	// The root listing is read once and fed to the walk, so a folder that
	// vanishes mid-scan still reports its error.
	items, err := s.readDir(root)
	if err != nil {
		s.log.Error("scan root unreadable", "root", root, "err", err)
		return Manifest{Root: root, Files: []Entry{}, Err: fmt.Errorf("read folder %s: %w", root, err)}
	}

	files := []Entry{}
	s.walk(root, root, items, 0, &files)

	col := collate.New(s.locale)
	slices.SortStableFunc(files, func(a, b Entry) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.RelativePath, b.RelativePath)
	})

	return Manifest{Root: root, Files: files}
}

func (s *Scanner) walk(root, dir string, items []os.DirEntry, depth int, out *[]Entry) {
	for _, item := range items {
		full := filepath.Join(dir, item.Name())

		// Follow symlinks so linked folders and files behave like real ones.
		info, err := os.Stat(full)
		if err != nil {
			s.log.Warn("skipping entry", "path", full, "err", err)
			continue
		}

		switch {
		case info.IsDir():
			if strings.HasPrefix(item.Name(), ".") || depth+1 > s.maxDepth {
				continue
			}
			sub, err := s.readDir(full)
			if err != nil {
				s.log.Warn("skipping unreadable directory", "dir", full, "err", err)
				continue
			}
			s.walk(root, full, sub, depth+1, out)
		case info.Mode().IsRegular() && IsMarkdown(item.Name()):
			*out = append(*out, s.entry(root, full, info))
		}
	}
}

// Dirs returns dir followed by the visible subdirectories a scan would
// descend into, at most depth levels below dir. Symlinked directories are
// followed like real ones.
func Dirs(dir string, depth int) []string {
	if depth < 0 {
		return nil
	}
	dirs := []string{dir}
	items, err := os.ReadDir(dir)
	if err != nil {
		return dirs
	}
	for _, item := range items {
		if strings.HasPrefix(item.Name(), ".") {
			continue
		}
		full := filepath.Join(dir, item.Name())
		if info, err := os.Stat(full); err == nil && info.IsDir() && depth > 0 {
			dirs = append(dirs, Dirs(full, depth-1)...)
		}
	}
	return dirs
}

func (s *Scanner) entry(root, full string, info os.FileInfo) Entry {
	rel, err := filepath.Rel(root, full)
	if err != nil {
		rel = filepath.Base(full)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		abs = full
	}

	e := Entry{
		Name:         info.Name(),
		AbsolutePath: abs,
		RelativePath: rel,
		Size:         info.Size(),
		Modified:     info.ModTime(),
	}

	content, err := os.ReadFile(full)
	if err != nil {
		s.log.Warn("could not read file for title extraction", "path", full, "err", err)
		return e
	}
	if title, ok := ExtractTitle(string(content)); ok {
		e.Title = &title
	}
	return e
}

// IsMarkdown reports whether name has a markdown extension (.md or
// .markdown, any case).
func IsMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ParseLocale turns a POSIX locale ("de_DE.UTF-8") or BCP 47 tag ("de-DE")
// into a language tag. Unknown input yields language.Und.
func ParseLocale(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return language.Und
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Und
	}
	return tag
}

// LocaleFromEnv returns the collation locale from LC_ALL, LC_COLLATE or
// LANG, in that order.
func LocaleFromEnv() string {
	for _, k := range []string{"LC_ALL", "LC_COLLATE", "LANG"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
