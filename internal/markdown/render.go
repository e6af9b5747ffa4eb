package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown documents to HTML fragments.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a GFM renderer. Fenced code is highlighted with the
// named chroma style, inlined so the output needs no external stylesheet.
func NewRenderer(codeStyle string) *Renderer {
	if codeStyle == "" {
		codeStyle = "github"
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(codeStyle),
					highlighting.WithFormatOptions(
						chromahtml.TabWidth(4),
					),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render returns the HTML body for src. Leading frontmatter is not
// rendered.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(StripFrontmatter(src), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

var defaultRenderer = NewRenderer("")

// RenderMarkdownToHTML renders src with the default renderer.
func RenderMarkdownToHTML(src string) (string, error) {
	out, err := defaultRenderer.Render([]byte(src))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Document holds the metadata pulled out of one markdown file.
type Document struct {
	Content     []byte
	Frontmatter *Frontmatter
	Headings    []Heading
}

// Parse extracts frontmatter and headings from content.
func Parse(content []byte) *Document {
	return &Document{
		Content:     content,
		Frontmatter: ExtractFrontmatter(content),
		Headings:    ExtractHeadings(content),
	}
}

// Title returns the frontmatter title, else the first level-1 heading,
// else "".
func (d *Document) Title() string {
	if d.Frontmatter != nil && d.Frontmatter.Title != "" {
		return d.Frontmatter.Title
	}
	for _, h := range d.Headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

// Body returns the content without frontmatter.
func (d *Document) Body() string {
	return string(StripFrontmatter(d.Content))
}
