package index

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    abs_path TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    mod_time INTEGER NOT NULL,
    size INTEGER NOT NULL DEFAULT 0,
    hash TEXT NOT NULL DEFAULT ''
);

CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
    title, content, tags, headings,
    tokenize='porter unicode61 remove_diacritics 2'
);

CREATE TABLE IF NOT EXISTS headings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
    level INTEGER NOT NULL,
    text TEXT NOT NULL,
    line INTEGER NOT NULL
);
`

// Note is one row of the notes table. Path is relative to the folder
// root.
type Note struct {
	Path    string
	AbsPath string
	Title   string
	ModTime int64
	Size    int64
	Hash    string
}

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// OpenMemory opens an in-memory database. The folder index is rebuilt
// whenever a folder is opened, so nothing is kept on disk.
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// every pooled connection would get its own empty :memory: database
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		return nil, errors.Join(fmt.Errorf("init schema: %w", err), conn.Close())
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for advanced queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// UpsertNote inserts or updates a note and returns its ID.
func (db *DB) UpsertNote(n Note) (int64, error) {
	_, err := db.conn.Exec(`
		INSERT INTO notes (path, abs_path, title, mod_time, size, hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			abs_path = excluded.abs_path,
			title = excluded.title,
			mod_time = excluded.mod_time,
			size = excluded.size,
			hash = excluded.hash
	`, n.Path, n.AbsPath, n.Title, n.ModTime, n.Size, n.Hash)
	if err != nil {
		return 0, err
	}

	// Get the ID (either inserted or existing)
	var id int64
	if err := db.conn.QueryRow("SELECT id FROM notes WHERE path = ?", n.Path).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateFTS replaces the full-text row for a note.
func (db *DB) UpdateFTS(noteID int64, title, content, tags, headings string) error {
	if _, err := db.conn.Exec("DELETE FROM notes_fts WHERE rowid = ?", noteID); err != nil {
		return err
	}
	_, err := db.conn.Exec("INSERT INTO notes_fts(rowid, title, content, tags, headings) VALUES(?, ?, ?, ?, ?)",
		noteID, title, content, tags, headings)
	return err
}

// InsertHeading adds a heading record.
func (db *DB) InsertHeading(noteID int64, level int, text string, line int) error {
	_, err := db.conn.Exec("INSERT INTO headings (note_id, level, text, line) VALUES (?, ?, ?, ?)",
		noteID, level, text, line)
	return err
}

// ClearNoteHeadings removes all headings for a note.
func (db *DB) ClearNoteHeadings(noteID int64) error {
	_, err := db.conn.Exec("DELETE FROM headings WHERE note_id = ?", noteID)
	return err
}

// GetNoteHash returns the stored hash for a note path.
func (db *DB) GetNoteHash(path string) (string, error) {
	var hash string
	err := db.conn.QueryRow("SELECT hash FROM notes WHERE path = ?", path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

// DeleteNote removes a note and all its related data.
func (db *DB) DeleteNote(path string) error {
	var id int64
	err := db.conn.QueryRow("SELECT id FROM notes WHERE path = ?", path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := db.conn.Exec("DELETE FROM notes_fts WHERE rowid = ?", id); err != nil {
		return err
	}
	_, err = db.conn.Exec("DELETE FROM notes WHERE id = ?", id)
	return err
}

// Paths returns the relative path of every indexed note.
func (db *DB) Paths() ([]string, error) {
	rows, err := db.conn.Query("SELECT path FROM notes ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Reset drops every indexed note.
func (db *DB) Reset() error {
	for _, stmt := range []string{"DELETE FROM headings", "DELETE FROM notes_fts", "DELETE FROM notes"} {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
	}
	return nil
}
