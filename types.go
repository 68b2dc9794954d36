package mathcraft

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/noirdeleroi/math-problem-craft/internal/mathjax"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

// Mode selects how LaTeX fields are converted to HTML.
type Mode string

// Render modes.
const (
	// ModeStructural converts lists, tables, centered blocks and display
	// math, leaving everything else for MathJax.
	ModeStructural Mode = "structural"
	// ModeDocument converts whole LaTeX documents (sections, paragraphs,
	// figures).
	ModeDocument Mode = "document"
	// ModeRemote delegates to the conversion service and falls back to the
	// raw LaTeX when it fails.
	ModeRemote Mode = "remote"
)

// ParseMode resolves a mode name, ignoring case. An empty name means
// ModeStructural.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return ModeStructural, nil
	case ModeStructural, ModeDocument, ModeRemote:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (must be structural, document, or remote)", ErrInvalidMode, name)
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns A4 portrait pages with the default margin.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// SheetInput describes one review sheet.
type SheetInput struct {
	Problems      []problem.Problem // records, in sheet order (required)
	Title         string
	Subtitle      string
	Mode          Mode          // empty means the renderer default
	BaseDir       string        // resolves relative image paths (optional)
	CSS           string        // extra CSS appended after the style (optional)
	Page          *PageSettings // nil means DefaultPageSettings
	HideSolutions bool          // omit solution_text and solutiontextexpanded
	HTMLOnly      bool          // skip PDF printing
}

// SheetResult holds the rendered sheet.
type SheetResult struct {
	HTML []byte
	PDF  []byte // nil when HTMLOnly
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeout         time.Duration
	mode            Mode
	styleInput      string
	resolvedStyle   string
	assetPath       string
	latexAssetPath  string
	mathjax         mathjax.Config
	remoteOptions   remote.Options
	typesetFallback bool
	logger          *slog.Logger
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the PDF printing timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mathcraft: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithMode sets the default render mode for sheets that do not set one.
func WithMode(m Mode) Option {
	return func(r *Renderer) {
		r.cfg.mode = m
	}
}

// WithStyle sets the sheet style: a built-in name ("sheet", "compact"), a
// path to a CSS file, or raw CSS content.
func WithStyle(style string) Option {
	return func(r *Renderer) {
		r.cfg.styleInput = style
	}
}

// WithAssetPath overrides built-in styles and templates from a directory
// holding styles/ and templates/.
func WithAssetPath(path string) Option {
	return func(r *Renderer) {
		r.cfg.assetPath = path
	}
}

// WithLatexAssetPath sets the directory \includegraphics images are
// resolved against in document mode.
func WithLatexAssetPath(path string) Option {
	return func(r *Renderer) {
		r.cfg.latexAssetPath = path
	}
}

// WithMathJax sets the MathJax configuration injected into every sheet.
func WithMathJax(cfg mathjax.Config) Option {
	return func(r *Renderer) {
		r.cfg.mathjax = cfg
	}
}

// WithRemote enables ModeRemote through a caching conversion client.
func WithRemote(cache *remote.Cache, opts remote.Options) Option {
	return func(r *Renderer) {
		r.remote = cache
		r.cfg.remoteOptions = opts
	}
}

// WithTypesetFallback prints the page even when MathJax does not report
// completion before the timeout (for offline machines without the CDN).
func WithTypesetFallback(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.typesetFallback = enabled
	}
}

// WithLogger sets the logger used for conversion diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.cfg.logger = l
	}
}
