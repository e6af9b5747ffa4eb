package index

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pfassina/mdr/internal/markdown"
	"github.com/pfassina/mdr/internal/scan"
)

// Indexer keeps the full-text index in step with the scanned folder.
type Indexer struct {
	db   *DB
	log  *log.Logger
	root string
}

func NewIndexer(db *DB, logger *log.Logger) *Indexer {
	return &Indexer{db: db, log: logger}
}

// Root is the folder currently indexed.
func (idx *Indexer) Root() string { return idx.root }

// IndexManifest brings the index in line with a scan result: new and
// changed files are (re)indexed, files no longer listed are dropped.
// Unreadable files are logged and skipped.
func (idx *Indexer) IndexManifest(m scan.Manifest) error {
	if m.Err != nil {
		return fmt.Errorf("index %s: %w", m.Root, m.Err)
	}
	if m.Root != idx.root {
		if err := idx.db.Reset(); err != nil {
			return err
		}
		idx.root = m.Root
	}

	keep := make(map[string]bool, len(m.Files))
	for _, e := range m.Files {
		keep[e.RelativePath] = true
		if err := idx.IndexFile(e); err != nil {
			idx.log.Warn("index file", "path", e.AbsolutePath, "err", err)
		}
	}

	paths, err := idx.db.Paths()
	if err != nil {
		return fmt.Errorf("list indexed notes: %w", err)
	}
	for _, p := range paths {
		if keep[p] {
			continue
		}
		if err := idx.db.DeleteNote(p); err != nil {
			return fmt.Errorf("drop %s: %w", p, err)
		}
	}
	return nil
}

// IndexFile indexes a single markdown file.
func (idx *Indexer) IndexFile(e scan.Entry) error {
	content, err := os.ReadFile(e.AbsolutePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", e.AbsolutePath, err)
	}

	// Check if file has changed
	hash := fmt.Sprintf("%x", sha256.Sum256(content))
	existingHash, _ := idx.db.GetNoteHash(e.RelativePath)
	if hash == existingHash {
		return nil // unchanged
	}

	doc := markdown.Parse(content)
	title := doc.Title()
	if title == "" {
		title = titleFromPath(e.RelativePath)
	}
	var tags []string
	if doc.Frontmatter != nil {
		tags = doc.Frontmatter.Tags
	}

	noteID, err := idx.db.UpsertNote(Note{
		Path:    e.RelativePath,
		AbsPath: e.AbsolutePath,
		Title:   title,
		ModTime: e.Modified.Unix(),
		Size:    e.Size,
		Hash:    hash,
	})
	if err != nil {
		return fmt.Errorf("upsert note: %w", err)
	}

	headingTexts := make([]string, len(doc.Headings))
	for i, h := range doc.Headings {
		headingTexts[i] = h.Text
	}
	if err := idx.db.UpdateFTS(noteID, title, doc.Body(), strings.Join(tags, " "), strings.Join(headingTexts, " ")); err != nil {
		return fmt.Errorf("update FTS: %w", err)
	}

	if err := idx.db.ClearNoteHeadings(noteID); err != nil {
		return fmt.Errorf("clear note headings: %w", err)
	}
	for _, h := range doc.Headings {
		if err := idx.db.InsertHeading(noteID, h.Level, h.Text, h.Line); err != nil {
			return fmt.Errorf("insert heading %q: %w", h.Text, err)
		}
	}
	return nil
}

// Find merges full-text hits with file name matches, full-text first. An
// empty query lists every note.
func (idx *Indexer) Find(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return idx.db.ListAllNotes(limit)
	}

	hits, err := idx.db.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	files, err := idx.db.SearchFiles(query, limit)
	if err != nil {
		return nil, fmt.Errorf("search files %q: %w", query, err)
	}

	seen := make(map[int64]bool, len(hits))
	for _, h := range hits {
		seen[h.ID] = true
	}
	for _, f := range files {
		if !seen[f.ID] {
			hits = append(hits, f)
		}
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	// Convert hyphens/underscores to spaces
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return name
}
