package index

import (
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenMemory(t *testing.T) {
	db := openTestDB(t)

	id, err := db.UpsertNote(Note{Path: "test.md", AbsPath: "/f/test.md", Title: "Test", Hash: "abc123", ModTime: 1000, Size: 42})
	if err != nil {
		t.Fatal(err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	err = db.UpdateFTS(id, "Test", "Hello world content", "tag1 tag2", "Heading 1")
	if err != nil {
		t.Fatal(err)
	}

	results, err := db.Search("world", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "test.md" || results[0].AbsPath != "/f/test.md" {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected a snippet")
	}
}

func TestUpdateFTSReplaces(t *testing.T) {
	db := openTestDB(t)

	id, _ := db.UpsertNote(Note{Path: "a.md", Title: "A", ModTime: 1})
	if err := db.UpdateFTS(id, "A", "old words", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateFTS(id, "A", "fresh words", "", ""); err != nil {
		t.Fatal(err)
	}

	if r, _ := db.Search("old", 10); len(r) != 0 {
		t.Errorf("stale content still indexed: %+v", r)
	}
	if r, _ := db.Search("fresh", 10); len(r) != 1 {
		t.Errorf("expected 1 hit for new content, got %d", len(r))
	}
}

func TestSearchQuoting(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.UpsertNote(Note{Path: "a.md", Title: "A", ModTime: 1})
	_ = db.UpdateFTS(id, "A", "state-of-the-art parsing", "", "")

	for _, q := range []string{`"unterminated`, "AND", "pars", "state-of"} {
		if _, err := db.Search(q, 10); err != nil {
			t.Errorf("Search(%q): %v", q, err)
		}
	}
	if r, _ := db.Search("pars", 10); len(r) != 1 {
		t.Errorf("prefix search: got %d results", len(r))
	}
	if r, _ := db.Search("   ", 10); r != nil {
		t.Errorf("blank query should return nothing, got %v", r)
	}
}

func TestSearchFiles(t *testing.T) {
	db := openTestDB(t)

	_, _ = db.UpsertNote(Note{Path: "daily/2024-01-01.md", Title: "2024-01-01", Hash: "a", ModTime: 1000, Size: 10})
	_, _ = db.UpsertNote(Note{Path: "inbox/note.md", Title: "Quick Note", Hash: "b", ModTime: 1000, Size: 10})

	results, err := db.SearchFiles("daily", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestDeleteNote(t *testing.T) {
	db := openTestDB(t)

	id, _ := db.UpsertNote(Note{Path: "gone.md", Title: "Gone", ModTime: 1})
	_ = db.UpdateFTS(id, "Gone", "vanishing text", "", "")
	_ = db.InsertHeading(id, 1, "Gone", 1)

	if err := db.DeleteNote("gone.md"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteNote("never-there.md"); err != nil {
		t.Errorf("deleting a missing note: %v", err)
	}

	paths, err := db.Paths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v", paths)
	}
	if r, _ := db.Search("vanishing", 10); len(r) != 0 {
		t.Errorf("deleted note still searchable")
	}
	if h, _ := db.SearchHeadings("Gone", 10); len(h) != 0 {
		t.Errorf("headings not cascaded: %v", h)
	}
}
