package scan

import (
	"encoding/json"
	"time"
)

// Entry is one discovered markdown file. Entries are snapshots: a rescan
// produces new values instead of updating old ones.
type Entry struct {
	Name         string
	AbsolutePath string
	RelativePath string
	Size         int64
	Modified     time.Time
	// Title is the first H1 text, nil when the file has none or could not
	// be read.
	Title *string
}

// DisplayTitle returns the title when present, otherwise the file name.
func (e Entry) DisplayTitle() string {
	if e.Title != nil && *e.Title != "" {
		return *e.Title
	}
	return e.Name
}

// Manifest is the result of one scan.
type Manifest struct {
	Root  string
	Files []Entry
	Err   error
}

// Find returns the entry with the given absolute path.
func (m Manifest) Find(absPath string) (Entry, bool) {
	for _, e := range m.Files {
		if e.AbsolutePath == absPath {
			return e, true
		}
	}
	return Entry{}, false
}

type wireEntry struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	RelativePath string    `json:"relativePath"`
	Size         int64     `json:"size"`
	Modified     time.Time `json:"modified"`
	Title        *string   `json:"title"`
}

type wireManifest struct {
	Files      []wireEntry `json:"files"`
	FolderPath string      `json:"folderPath,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// MarshalJSON encodes the manifest as {files, folderPath} on success and
// {files: [], error} on failure.
func (m Manifest) MarshalJSON() ([]byte, error) {
	w := wireManifest{Files: make([]wireEntry, 0, len(m.Files))}
	if m.Err != nil {
		w.Error = m.Err.Error()
		return json.Marshal(w)
	}
	for _, e := range m.Files {
		w.Files = append(w.Files, wireEntry{
			Name:         e.Name,
			Path:         e.AbsolutePath,
			RelativePath: e.RelativePath,
			Size:         e.Size,
			Modified:     e.Modified,
			Title:        e.Title,
		})
	}
	w.FolderPath = m.Root
	return json.Marshal(w)
}
