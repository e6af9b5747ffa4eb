package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PageOptions controls PDF page setup. Sizes are in inches.
type PageOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	PrintBackground bool
}

// DefaultPageOptions is A4 with backgrounds printed.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		PaperWidth:      8.27,
		PaperHeight:     11.69,
		PrintBackground: true,
	}
}

// PDFRenderer converts a full HTML page to PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html []byte, opts PageOptions) ([]byte, error)
}

// Chrome renders PDFs with a headless Chrome or Chromium.
type Chrome struct {
	// ExecPath overrides browser discovery when set.
	ExecPath string
	Timeout  time.Duration
}

// RenderPDF loads html into a blank tab and prints it.
func (c Chrome) RenderPDF(ctx context.Context, html []byte, opts PageOptions) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if c.ExecPath != "" {
		allocOpts = append(allocOpts[:len(allocOpts):len(allocOpts)], chromedp.ExecPath(c.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(opts.PrintBackground).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("chrome: empty pdf")
	}
	return pdf, nil
}
