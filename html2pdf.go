package mathcraft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/noirdeleroi/math-problem-craft/internal/fileutil"
	"github.com/noirdeleroi/math-problem-craft/internal/mathjax"
)

// pdfConverter prints a rendered sheet to PDF.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error)
	Close() error
}

// pdfRenderer prints an HTML file already on disk. Tests swap it for a mock.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error)
}

var (
	_ pdfConverter = (*rodConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

type pdfOptions struct {
	Page *PageSettings
	// WaitForTypeset blocks printing until MathJax reports completion.
	WaitForTypeset bool
}

// paperSizes maps page size names to portrait width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// typesetDoneJS is true once the page finished MathJax typesetting.
var typesetDoneJS = "() => window." + mathjax.TypesetDoneFlag + " === true"

// rodRenderer drives one headless Chrome through go-rod. The browser starts
// on first use; rod downloads Chromium when none is installed.
type rodRenderer struct {
	browser  *rod.Browser
	timeout  time.Duration
	fallback bool // print anyway when typesetting never completes
}

func newRodRenderer(timeout time.Duration, fallback bool) *rodRenderer {
	return &rodRenderer{timeout: timeout, fallback: fallback}
}

// browserLauncher configures Chrome from the environment. ROD_BROWSER_BIN
// selects a preinstalled binary; the sandbox is dropped when ROD_NO_SANDBOX=1,
// on CI, or with a custom binary (containers rarely allow it).
func browserLauncher(getenv func(string) string) *launcher.Launcher {
	l := launcher.New()
	bin := getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	if getenv("ROD_NO_SANDBOX") == "1" || getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}
	return l
}

func (r *rodRenderer) connect() error {
	if r.browser != nil {
		return nil
	}

	controlURL, err := browserLauncher(os.Getenv).Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	return nil
}

func (r *rodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome, waits for
// MathJax when asked to, and prints it to PDF.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.connect(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	// One deadline covers loading and typesetting.
	waiting := page.Context(ctx).Timeout(timeout)
	if err := waiting.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if opts != nil && opts.WaitForTypeset {
		if err := waiting.Wait(rod.Eval(typesetDoneJS)); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !r.fallback || !errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", ErrTypesetTimeout, err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// buildPDFOptions constructs proto.PagePrintToPDF from page settings.
// Unknown or missing settings fall back to DefaultPageSettings.
func buildPDFOptions(opts *pdfOptions) *proto.PagePrintToPDF {
	page := DefaultPageSettings()
	if opts != nil && opts.Page != nil {
		page = opts.Page
	}

	size, ok := paperSizes[strings.ToLower(page.Size)]
	if !ok {
		size = paperSizes[PageSizeA4]
	}
	width, height := size[0], size[1]
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		width, height = height, width
	}

	margin := page.Margin
	if margin < MinMargin || margin > MaxMargin {
		margin = DefaultMargin
	}

	return &proto.PagePrintToPDF{
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &margin,
		MarginBottom:    &margin,
		MarginLeft:      &margin,
		MarginRight:     &margin,
		PrintBackground: true,
	}
}

// rodConverter is the production pdfConverter.
type rodConverter struct {
	renderer pdfRenderer
	closer   io.Closer
}

func newRodConverter(timeout time.Duration, fallback bool) *rodConverter {
	r := newRodRenderer(timeout, fallback)
	return &rodConverter{renderer: r, closer: r}
}

// ToPDF writes htmlContent to a temporary file, so that file:// image URLs
// resolve, and prints it.
func (c *rodConverter) ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, opts)
}

func (c *rodConverter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
