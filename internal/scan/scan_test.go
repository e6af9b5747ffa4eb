package scan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func names(m Manifest) []string {
	out := make([]string, len(m.Files))
	for i, e := range m.Files {
		out[i] = e.Name
	}
	return out
}

func TestScan_Scenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "just text\n")
	writeFile(t, root, "sub/b.md", "# Hello\n")
	writeFile(t, root, ".hidden/c.md", "# Hidden\n")
	writeFile(t, root, "sub/sub2/sub3/sub4/d.md", "# Deep\n")

	m := New(nil).Scan(root)
	require.NoError(t, m.Err)
	assert.Equal(t, root, m.Root)
	require.Equal(t, []string{"a.md", "b.md"}, names(m))

	assert.Nil(t, m.Files[0].Title)
	require.NotNil(t, m.Files[1].Title)
	assert.Equal(t, "Hello", *m.Files[1].Title)
	assert.Equal(t, filepath.Join("sub", "b.md"), m.Files[1].RelativePath)
}

func TestScan_DepthLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "d0.md", "")
	writeFile(t, root, "1/d1.md", "")
	writeFile(t, root, "1/2/d2.md", "")
	writeFile(t, root, "1/2/3/d3.md", "")
	writeFile(t, root, "1/2/3/4/d4.md", "")
	writeFile(t, root, "1/2/3/4/5/d5.md", "")

	m := New(nil).Scan(root)
	require.NoError(t, m.Err)
	assert.Equal(t, []string{"d0.md", "d1.md", "d2.md", "d3.md"}, names(m))

	for _, e := range m.Files {
		dirs := strings.Count(e.RelativePath, string(filepath.Separator))
		assert.LessOrEqual(t, dirs, MaxDepth, e.RelativePath)
	}
}

func TestScan_SkipsHiddenDirectoriesOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/notes.md", "")
	writeFile(t, root, "docs/.drafts/x.md", "")
	writeFile(t, root, ".visible.md", "# Dotfile\n")

	m := New(nil).Scan(root)
	require.NoError(t, m.Err)
	// Hidden files are still markdown files; only hidden directories are pruned.
	assert.Equal(t, []string{".visible.md"}, names(m))
}

func TestScan_ExtensionsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "one.MD", "")
	writeFile(t, root, "two.Markdown", "")
	writeFile(t, root, "three.txt", "")
	writeFile(t, root, "four.mdx", "")

	m := New(nil).Scan(root)
	assert.ElementsMatch(t, []string{"one.MD", "two.Markdown"}, names(m))
}

func TestScan_SortedByCollation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x/c.md", "")
	writeFile(t, root, "B.md", "")
	writeFile(t, root, "y/a.md", "")

	m := New(nil, WithLocale("en_US.UTF-8")).Scan(root)
	// Byte order would put "B.md" first.
	assert.Equal(t, []string{"a.md", "B.md", "c.md"}, names(m))
}

func TestScan_SameNameOrderedByRelativePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z/readme.md", "")
	writeFile(t, root, "a/readme.md", "")

	m := New(nil).Scan(root)
	require.Len(t, m.Files, 2)
	assert.Equal(t, filepath.Join("a", "readme.md"), m.Files[0].RelativePath)
	assert.Equal(t, filepath.Join("z", "readme.md"), m.Files[1].RelativePath)
}

func TestScan_EntryMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "note.md", "# Title\nbody\n")

	m := New(nil).Scan(root)
	require.Len(t, m.Files, 1)
	e := m.Files[0]
	assert.Equal(t, "note.md", e.Name)
	assert.Equal(t, filepath.Base(e.AbsolutePath), e.Name)
	assert.True(t, filepath.IsAbs(e.AbsolutePath))
	assert.Equal(t, int64(len("# Title\nbody\n")), e.Size)
	assert.False(t, e.Modified.IsZero())
	assert.Equal(t, "Title", e.DisplayTitle())
}

func TestScan_MissingRoot(t *testing.T) {
	m := New(nil).Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, m.Err)
	assert.NotEmpty(t, m.Err.Error())
	assert.NotNil(t, m.Files)
	assert.Empty(t, m.Files)
}

func TestScan_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.md", "")

	m := New(nil).Scan(filepath.Join(root, "file.md"))
	require.Error(t, m.Err)
	assert.Empty(t, m.Files)
}

func TestScan_ListsRootOnce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "")
	writeFile(t, root, "sub/b.md", "")

	s := New(nil)
	reads := map[string]int{}
	s.readDir = func(dir string) ([]os.DirEntry, error) {
		reads[dir]++
		if dir == root && reads[dir] > 1 {
			return nil, os.ErrNotExist
		}
		return os.ReadDir(dir)
	}

	m := s.Scan(root)
	require.NoError(t, m.Err)
	assert.Equal(t, []string{"a.md", "b.md"}, names(m))
	assert.Equal(t, 1, reads[root])
}

func TestScan_RootListingFails(t *testing.T) {
	s := New(nil)
	s.readDir = func(string) ([]os.DirEntry, error) { return nil, os.ErrPermission }

	m := s.Scan(t.TempDir())
	require.ErrorIs(t, m.Err, os.ErrPermission)
	assert.NotNil(t, m.Files)
	assert.Empty(t, m.Files)
}

func TestScan_FollowsSymlinkedDirectory(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeFile(t, other, "linked.md", "")
	require.NoError(t, os.Symlink(other, filepath.Join(root, "link")))

	m := New(nil).Scan(root)
	require.NoError(t, m.Err)
	require.Equal(t, []string{"linked.md"}, names(m))
	assert.Equal(t, filepath.Join("link", "linked.md"), m.Files[0].RelativePath)
}

func TestDirs(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeFile(t, root, "1/2/3/4/x.md", "")
	writeFile(t, root, ".hidden/x.md", "")
	require.NoError(t, os.Symlink(other, filepath.Join(root, "link")))

	got := Dirs(root, MaxDepth)
	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "1"),
		filepath.Join(root, "1", "2"),
		filepath.Join(root, "1", "2", "3"),
		filepath.Join(root, "link"),
	}, got)
	assert.Equal(t, []string{root}, Dirs(root, 0))
	assert.Nil(t, Dirs(root, -1))
}

func TestScan_UnreadableFileKeepsEntry(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of mode")
	}
	root := t.TempDir()
	writeFile(t, root, "locked.md", "# Secret\n")
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.md"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "locked.md"), 0o644) })

	m := New(nil).Scan(root)
	require.NoError(t, m.Err)
	require.Len(t, m.Files, 1)
	assert.Nil(t, m.Files[0].Title)
}

func TestScan_RescanIsFresh(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# One\n")
	s := New(nil)

	first := s.Scan(root)
	writeFile(t, root, "a.md", "# Two\n")
	writeFile(t, root, "b.md", "")
	second := s.Scan(root)

	require.Len(t, first.Files, 1)
	assert.Equal(t, "One", *first.Files[0].Title)
	require.Len(t, second.Files, 2)
	assert.Equal(t, "Two", *second.Files[0].Title)
}

func TestManifest_MarshalJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "no heading")
	writeFile(t, root, "b.md", "# B\n")

	data, err := json.Marshal(New(nil).Scan(root))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, root, got["folderPath"])
	assert.NotContains(t, got, "error")

	files := got["files"].([]any)
	require.Len(t, files, 2)
	first := files[0].(map[string]any)
	assert.Equal(t, "a.md", first["name"])
	assert.Nil(t, first["title"])
	assert.Contains(t, first, "relativePath")
	assert.Contains(t, first, "modified")
	assert.Equal(t, "B", files[1].(map[string]any)["title"])
}

func TestManifest_MarshalJSON_Error(t *testing.T) {
	data, err := json.Marshal(New(nil).Scan(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Empty(t, got["files"])
	assert.NotEmpty(t, got["error"])
	assert.NotContains(t, got, "folderPath")
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, "de-DE", ParseLocale("de_DE.UTF-8").String())
	assert.Equal(t, "sv", ParseLocale("sv").String())
	assert.Equal(t, "und", ParseLocale("C").String())
	assert.Equal(t, "und", ParseLocale("").String())
	assert.Equal(t, "und", ParseLocale("!!").String())
}
