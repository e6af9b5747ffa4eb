package markdown

import (
	"strings"
	"testing"
)

func TestRenderMarkdownToHTML(t *testing.T) {
	src := "---\ntitle: hidden\n---\n# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n- [x] done\n\n~~gone~~\n\n```go\nfunc main() {}\n```\n"
	out, err := RenderMarkdownToHTML(src)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`<h1 id="title">Title</h1>`,
		"<table>",
		`type="checkbox"`,
		"<del>gone</del>",
		"<pre",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("frontmatter should not be rendered")
	}
}

func TestRenderer_RawHTML(t *testing.T) {
	out, err := NewRenderer("monokai").Render([]byte("<kbd>Ctrl</kbd>\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "<kbd>Ctrl</kbd>") {
		t.Errorf("raw html dropped: %s", out)
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"---\ntitle: Front\n---\n# Heading\n", "Front"},
		{"## Sub\n# Heading\n", "Heading"},
		{"plain\n", ""},
	}
	for _, tt := range tests {
		if got := Parse([]byte(tt.input)).Title(); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
