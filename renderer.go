package mathcraft

import (
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/noirdeleroi/math-problem-craft/internal/assets"
	"github.com/noirdeleroi/math-problem-craft/internal/fileutil"
	"github.com/noirdeleroi/math-problem-craft/internal/latexhtml"
	"github.com/noirdeleroi/math-problem-craft/internal/mathjax"
	"github.com/noirdeleroi/math-problem-craft/internal/pipeline"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.CommentConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector      = (*pipeline.Injection)(nil)
	_ pipeline.HeadInjector     = (*pipeline.Injection)(nil)
	_ latexhtml.Converter       = latexhtml.StructuralConverter{}
)

// Renderer turns problem records into HTML fragments and review sheets.
// Create with NewRenderer, and Close when done. A Renderer owns at most one
// browser and is not safe for concurrent RenderSheet calls; use
// RendererPool for parallel export. RenderField and RenderProblem are safe
// for concurrent use.
type Renderer struct {
	cfg         rendererConfig
	assetLoader assets.AssetLoader
	structural  latexhtml.Converter
	document    latexhtml.Converter
	comments    pipeline.CommentConverter
	injector    *pipeline.Injection
	sheet       *pipeline.SheetTemplate
	remote      *remote.Cache
	mathScript  string
	logger      *slog.Logger
	pdf         pdfConverter
}

// NewRenderer creates a Renderer with default configuration.
// Returns error if asset loading, template parsing or option validation fails.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			timeout: defaultTimeout,
			mode:    ModeStructural,
			mathjax: mathjax.Default(),
		},
		assetLoader: assets.NewEmbeddedLoader(),
		structural:  latexhtml.StructuralConverter{},
		comments:    pipeline.NewGoldmarkConverter(),
		injector:    &pipeline.Injection{},
	}

	for _, opt := range opts {
		opt(r)
	}

	mode, err := ParseMode(string(r.cfg.mode))
	if err != nil {
		return nil, err
	}
	r.cfg.mode = mode
	if mode == ModeRemote && r.remote == nil {
		return nil, ErrRemoteNotConfig
	}

	r.logger = r.cfg.logger
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r.document = latexhtml.NewDocumentConverter(r.cfg.latexAssetPath)

	if r.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(r.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		r.assetLoader = resolver
	}

	if err := r.resolveStyle(); err != nil {
		return nil, err
	}

	tmpl, err := r.assetLoader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading sheet template: %w", err)
	}
	if r.sheet, err = pipeline.NewSheetTemplate(tmpl); err != nil {
		return nil, fmt.Errorf("initializing sheet template: %w", err)
	}

	if r.cfg.mathjax.IsZero() {
		r.cfg.mathjax = mathjax.Default()
	}
	if err := r.cfg.mathjax.Validate(); err != nil {
		return nil, err
	}
	if r.mathScript, err = r.cfg.mathjax.Script(); err != nil {
		return nil, err
	}

	// Create PDF converter if not injected (e.g., by tests)
	if r.pdf == nil {
		r.pdf = newRodConverter(r.cfg.timeout, r.cfg.typesetFallback)
	}

	return r, nil
}

// RenderField converts one LaTeX field to an HTML fragment. Empty text
// renders as empty. Remote conversion failures are logged and the raw
// LaTeX is returned for MathJax to typeset.
func (r *Renderer) RenderField(ctx context.Context, text string, mode Mode) (string, error) {
	if mode == "" {
		mode = r.cfg.mode
	}
	switch mode {
	case ModeStructural:
		return r.structural.Convert(text), nil
	case ModeDocument:
		return r.document.Convert(text), nil
	case ModeRemote:
		if r.remote == nil {
			return "", ErrRemoteNotConfig
		}
		res := r.remote.Convert(ctx, text, r.cfg.remoteOptions)
		if !res.Success {
			r.logger.Warn("remote conversion failed, using raw LaTeX", "error", res.Error)
		}
		return res.HTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
}

// RenderProblem renders the display fields of p, in review order. Empty
// fields are skipped. LaTeX fields go through the mode's converter,
// comments through Markdown, and problem_image becomes one <img> per entry.
func (r *Renderer) RenderProblem(ctx context.Context, p *problem.Problem, mode Mode) ([]pipeline.SheetField, error) {
	return r.renderFields(ctx, p, mode, false)
}

func (r *Renderer) renderFields(ctx context.Context, p *problem.Problem, mode Mode, hideSolutions bool) ([]pipeline.SheetField, error) {
	var fields []pipeline.SheetField
	for _, key := range problem.DisplayFields(p) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if hideSolutions && isSolutionField(key) {
			continue
		}
		value, err := p.Get(key)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(value) == "" {
			continue
		}

		var out string
		switch {
		case key == problem.FieldProblemImage:
			out = renderImages(p.Images())
		case key == problem.FieldComments:
			out, err = r.comments.ToHTML(ctx, value)
		case problem.IsLatexField(key):
			out, err = r.RenderField(ctx, value, mode)
		default:
			out = html.EscapeString(value)
		}
		if err != nil {
			return nil, fmt.Errorf("rendering %s of %s: %w", key, p.QuestionID, err)
		}

		fields = append(fields, pipeline.SheetField{
			Key:   string(key),
			Label: string(key),
			HTML:  template.HTML(out), // #nosec G203 -- converter output
		})
	}
	return fields, nil
}

// RenderSheet renders the problems into an HTML document and, unless
// input.HTMLOnly, prints it to PDF.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) RenderSheet(ctx context.Context, input SheetInput) (result *SheetResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	if err := r.validateInput(input); err != nil {
		return nil, err
	}
	mode := input.Mode
	if mode != "" {
		if mode, err = ParseMode(string(mode)); err != nil {
			return nil, err
		}
	}

	data := &pipeline.SheetData{
		Title:    input.Title,
		Subtitle: input.Subtitle,
		Problems: make([]pipeline.SheetProblem, 0, len(input.Problems)),
	}
	for i := range input.Problems {
		p := &input.Problems[i]
		fields, err := r.renderFields(ctx, p, mode, input.HideSolutions)
		if err != nil {
			return nil, err
		}
		data.Problems = append(data.Problems, pipeline.SheetProblem{
			ID:      p.QuestionID,
			Checked: p.Checked,
			Fields:  fields,
		})
	}

	htmlContent, err := r.sheet.Render(ctx, data)
	if err != nil {
		return nil, err
	}

	// Style first, user CSS last so it can override.
	cssContent := r.cfg.resolvedStyle
	if input.CSS != "" {
		cssContent += "\n" + input.CSS
	}
	htmlContent = r.injector.InjectCSS(ctx, htmlContent, cssContent)
	htmlContent = r.injector.InjectHead(ctx, htmlContent, r.mathScript)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if input.BaseDir != "" {
		htmlContent, err = pipeline.RewriteImagePaths(htmlContent, input.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting image paths: %w", err)
		}
	}

	res := &SheetResult{HTML: []byte(htmlContent)}
	if input.HTMLOnly {
		return res, nil
	}

	pdfBytes, err := r.pdf.ToPDF(ctx, htmlContent, &pdfOptions{
		Page:           input.Page,
		WaitForTypeset: true,
	})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	res.PDF = pdfBytes
	return res, nil
}

// Close releases resources (headless Chrome browser).
func (r *Renderer) Close() error {
	if r.pdf != nil {
		return r.pdf.Close()
	}
	return nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. No style input means the built-in sheet style.
func (r *Renderer) resolveStyle() error {
	input := r.cfg.styleInput
	if input == "" {
		input = assets.DefaultStyleName
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		r.cfg.resolvedStyle = string(content)
		return nil
	}

	// CSS content? (contains {)
	if strings.Contains(input, "{") {
		r.cfg.resolvedStyle = input
		return nil
	}

	css, err := r.assetLoader.LoadStyle(input)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			return fmt.Errorf("%w: %v", ErrStyleNotFound, err)
		}
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	r.cfg.resolvedStyle = css
	return nil
}

// validateInput checks that required fields are present and valid.
func (r *Renderer) validateInput(input SheetInput) error {
	if len(input.Problems) == 0 {
		return ErrEmptySheet
	}
	return input.Page.Validate()
}

func isSolutionField(f problem.FieldKey) bool {
	return f == problem.FieldSolutionText || f == problem.FieldSolutionTextExpanded
}

// renderImages renders one escaped <img> per image entry.
func renderImages(images []string) string {
	var b strings.Builder
	for i, src := range images {
		fmt.Fprintf(&b, `<img src="%s" alt="Problem %d" class="problem-image">`, html.EscapeString(src), i+1)
	}
	return b.String()
}
