package pipeline

import (
	"context"
	"strings"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// HeadInjector places a raw block, such as the MathJax configuration and
// loader, into a document head.
type HeadInjector interface {
	InjectHead(ctx context.Context, htmlContent, block string) string
}

// Injection implements CSSInjector and HeadInjector.
type Injection struct{}

var (
	_ CSSInjector  = (*Injection)(nil)
	_ HeadInjector = (*Injection)(nil)
)

// InjectCSS inserts cssContent as a <style> block. The CSS is sanitized so
// it cannot close the block early.
func (s *Injection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}
	return injectIntoHead(htmlContent, "<style>"+sanitizeCSS(cssContent)+"</style>")
}

// InjectHead inserts block verbatim.
func (s *Injection) InjectHead(ctx context.Context, htmlContent, block string) string {
	if block == "" || ctx.Err() != nil {
		return htmlContent
	}
	return injectIntoHead(htmlContent, block)
}

// injectIntoHead inserts block before </head>, else right after the <body>
// tag, else at the start.
func injectIntoHead(htmlContent, block string) string {
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + "\n" + htmlContent[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.IndexByte(htmlContent[idx:], '>'); end != -1 {
			pos := idx + end + 1
			return htmlContent[:pos] + block + htmlContent[pos:]
		}
	}
	return block + htmlContent
}

// sanitizeCSS escapes "</" so the CSS cannot terminate its <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
