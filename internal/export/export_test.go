package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePDF struct {
	gotHTML string
	gotOpts PageOptions
	err     error
}

func (f *fakePDF) RenderPDF(_ context.Context, html []byte, opts PageOptions) ([]byte, error) {
	f.gotHTML = string(html)
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func TestHTML_Standalone(t *testing.T) {
	e := New(nil, nil, nil)
	page, err := e.HTML("# Hello\n\nworld **bold**\n", "Hello <&>")
	require.NoError(t, err)

	s := string(page)
	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"))
	assert.Contains(t, s, "<title>Hello &lt;&amp;&gt;</title>")
	assert.Contains(t, s, "max-width: 800px")
	assert.Contains(t, s, `<h1 id="hello">Hello</h1>`)
	assert.Contains(t, s, "<strong>bold</strong>")
}

func TestHTML_DefaultTitle(t *testing.T) {
	page, err := New(nil, nil, nil).HTML("text", "")
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Exported Markdown</title>")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Heading", Title("# Heading\n", "/tmp/x.md"))
	assert.Equal(t, "notes", Title("no heading", "/tmp/notes.md"))
	assert.Equal(t, "Exported Markdown", Title("", ""))
}

func TestWriteHTML(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, New(nil, nil, nil).WriteHTML("# T\n", "T", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1")
}

func TestWritePDF(t *testing.T) {
	fake := &fakePDF{}
	dst := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, New(nil, fake, nil).WritePDF(context.Background(), "# T\n", "T", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Contains(t, fake.gotHTML, "<h1")
	assert.Equal(t, DefaultPageOptions(), fake.gotOpts)
	assert.True(t, fake.gotOpts.PrintBackground)
}

func TestWritePDF_FailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.pdf")
	err := New(nil, &fakePDF{err: errors.New("no browser")}, nil).
		WritePDF(context.Background(), "# T\n", "T", dst)
	require.ErrorContains(t, err, "no browser")

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestWritePDF_NoBackend(t *testing.T) {
	err := New(nil, nil, nil).WritePDF(context.Background(), "x", "", filepath.Join(t.TempDir(), "o.pdf"))
	assert.Error(t, err)
}
