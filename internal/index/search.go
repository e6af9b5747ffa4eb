package index

import (
	"database/sql"
	"strings"
)

// SearchResult represents a single search result.
type SearchResult struct {
	ID      int64
	Path    string
	AbsPath string
	Title   string
	Snippet string
	Rank    float64
}

// HeadingResult represents a heading in a note.
type HeadingResult struct {
	NoteID   int64
	NotePath string
	Level    int
	Text     string
	Line     int
}

// ftsQuery turns free text into an FTS5 query: every word becomes a quoted
// prefix term so punctuation in user input never reaches the MATCH parser.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}

// Search performs a full-text search across notes. The snippet holds
// matched content with the hit wrapped in « ».
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	q := ftsQuery(query)
	if q == "" {
		return nil, nil
	}

	rows, err := db.conn.Query(`
		SELECT n.id, n.path, n.abs_path, n.title,
		       snippet(notes_fts, 1, '«', '»', '…', 8), bm25(notes_fts, 10.0, 1.0, 5.0, 5.0)
		FROM notes_fts
		JOIN notes n ON n.id = notes_fts.rowid
		WHERE notes_fts MATCH ?
		ORDER BY 6
		LIMIT ?
	`, q, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r *SearchResult) []any {
		return []any{&r.ID, &r.Path, &r.AbsPath, &r.Title, &r.Snippet, &r.Rank}
	})
}

// SearchFiles searches note titles/paths (for fuzzy file finding).
func (db *DB) SearchFiles(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, path, abs_path, title, 0 as rank
		FROM notes
		WHERE path LIKE ? OR title LIKE ?
		ORDER BY path
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r *SearchResult) []any {
		return []any{&r.ID, &r.Path, &r.AbsPath, &r.Title, &r.Rank}
	})
}

// ListAllNotes returns all notes, sorted by path.
func (db *DB) ListAllNotes(limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := db.conn.Query(`
		SELECT id, path, abs_path, title, 0 as rank
		FROM notes
		ORDER BY path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r *SearchResult) []any {
		return []any{&r.ID, &r.Path, &r.AbsPath, &r.Title, &r.Rank}
	})
}

// SearchHeadings searches headings across all notes.
func (db *DB) SearchHeadings(query string, limit int) ([]HeadingResult, error) {
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT h.note_id, n.path, h.level, h.text, h.line
		FROM headings h
		JOIN notes n ON n.id = h.note_id
		WHERE h.text LIKE ?
		ORDER BY n.path, h.line
		LIMIT ?
	`, pattern, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r *HeadingResult) []any {
		return []any{&r.NoteID, &r.NotePath, &r.Level, &r.Text, &r.Line}
	})
}

// collect scans every row into a T using the destinations fields returns.
func collect[T any](rows *sql.Rows, fields func(*T) []any) ([]T, error) {
	var results []T
	for rows.Next() {
		var r T
		if err := rows.Scan(fields(&r)...); err != nil {
			_ = rows.Close()
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return results, nil
}
