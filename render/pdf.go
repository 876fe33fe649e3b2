package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// A4 in inches.
const (
	PaperWidthInches  = 8.27
	PaperHeightInches = 11.7
)

// Printer turns serialised HTML into a PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromePrinter prints through a headless Chrome instance. Pagination is left
// to Chrome; the stylesheet keeps the pricing block on one page.
type ChromePrinter struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

// ChromePrinterOption is a functional option for ChromePrinter
type ChromePrinterOption func(*chromePrinterConfig)

type chromePrinterConfig struct {
	execPath string
	timeout  time.Duration
	logger   *zap.Logger
}

// WithChromePath sets the Chrome executable. Empty means auto-detect.
func WithChromePath(path string) ChromePrinterOption {
	return func(c *chromePrinterConfig) {
		c.execPath = path
	}
}

// WithPrintTimeout bounds a single print job
func WithPrintTimeout(d time.Duration) ChromePrinterOption {
	return func(c *chromePrinterConfig) {
		c.timeout = d
	}
}

// WithPrinterLogger sets the logger
func WithPrinterLogger(logger *zap.Logger) ChromePrinterOption {
	return func(c *chromePrinterConfig) {
		c.logger = logger
	}
}

// NewChromePrinter starts an allocator shared by all print jobs. Chrome itself
// is launched lazily on the first job. Close releases it.
func NewChromePrinter(opts ...ChromePrinterOption) *ChromePrinter {
	cfg := chromePrinterConfig{timeout: 30 * time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.DisableGPU, chromedp.NoSandbox)
	if cfg.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &ChromePrinter{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		timeout:     cfg.timeout,
		logger:      cfg.logger,
	}
}

// PrintPDF loads html into a fresh tab and prints it on A4 paper.
func (p *ChromePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(p.allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, p.timeout)
	defer cancelTimeout()

	// Abandon the tab if the caller goes away.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	start := time.Now()
	var pdfBuf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(PaperWidthInches).
				WithPaperHeight(PaperHeightInches).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}

	p.logger.Debug("printed proposal PDF",
		zap.Int("bytes", len(pdfBuf)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pdfBuf, nil
}

// Close shuts down the browser allocator.
func (p *ChromePrinter) Close() {
	p.cancelAlloc()
}
