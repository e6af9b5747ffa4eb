// Package export renders the current document to standalone HTML or PDF.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pfassina/mdr/internal/host"
	"github.com/pfassina/mdr/internal/logging"
	"github.com/pfassina/mdr/internal/markdown"
)

const defaultTitle = "Exported Markdown"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'Roboto', sans-serif; max-width: 800px; margin: 0 auto; padding: 40px 20px; line-height: 1.6; }
    h1, h2, h3, h4, h5, h6 { color: #2d3748; margin-top: 24px; margin-bottom: 16px; }
    p { margin-bottom: 16px; }
    code { background-color: #f7fafc; padding: 2px 6px; border-radius: 4px; font-family: 'Monaco', 'Menlo', monospace; }
    pre { background-color: #f7fafc; padding: 16px; border-radius: 8px; overflow-x: auto; border-left: 4px solid #3182ce; }
    pre code { padding: 0; background: none; }
    blockquote { border-left: 4px solid #cbd5e0; padding-left: 20px; margin: 16px 0; color: #718096; font-style: italic; }
    table { width: 100%; border-collapse: collapse; margin: 16px 0; }
    th, td { border: 1px solid #e2e8f0; padding: 8px 12px; text-align: left; }
    th { background-color: #f7fafc; font-weight: 600; }
  </style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Exporter turns markdown into export artifacts and writes them to disk.
type Exporter struct {
	md  *markdown.Renderer
	pdf PDFRenderer
	log *log.Logger
}

// New returns an exporter. pdf may be nil when PDF export is unavailable.
func New(md *markdown.Renderer, pdf PDFRenderer, logger *log.Logger) *Exporter {
	if md == nil {
		md = markdown.NewRenderer("")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Exporter{md: md, pdf: pdf, log: logger}
}

// Title picks the document title: frontmatter title, first H1, file name
// without extension, then a generic fallback.
func Title(src, path string) string {
	if t := markdown.Parse([]byte(src)).Title(); t != "" {
		return t
	}
	if path != "" {
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return defaultTitle
}

// HTML renders src into a standalone HTML page.
func (e *Exporter) HTML(src, title string) ([]byte, error) {
	body, err := e.md.Render([]byte(src))
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = defaultTitle
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders src and atomically writes the page to dst.
func (e *Exporter) WriteHTML(src, title, dst string) error {
	page, err := e.HTML(src, title)
	if err != nil {
		e.log.Error("html export failed", "dst", dst, "err", err)
		return err
	}
	if err := host.WriteFile(dst, page); err != nil {
		e.log.Error("html export failed", "dst", dst, "err", err)
		return err
	}
	e.log.Info("exported html", "dst", dst, "bytes", len(page))
	return nil
}

// WritePDF renders src to PDF and atomically writes it to dst. Nothing is
// written when rendering fails.
func (e *Exporter) WritePDF(ctx context.Context, src, title, dst string) error {
	if e.pdf == nil {
		return fmt.Errorf("export pdf: no pdf backend configured")
	}
	page, err := e.HTML(src, title)
	if err != nil {
		return err
	}
	data, err := e.pdf.RenderPDF(ctx, page, DefaultPageOptions())
	if err != nil {
		e.log.Error("pdf export failed", "dst", dst, "err", err)
		return fmt.Errorf("export pdf: %w", err)
	}
	if err := host.WriteFile(dst, data); err != nil {
		e.log.Error("pdf export failed", "dst", dst, "err", err)
		return err
	}
	e.log.Info("exported pdf", "dst", dst, "bytes", len(data))
	return nil
}
