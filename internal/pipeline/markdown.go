package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates Markdown conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// CommentConverter renders reviewer comments, written in Markdown, to an
// HTML fragment.
type CommentConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown with goldmark. Math spans pass through
// untouched for MathJax.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

var _ CommentConverter = (*GoldmarkConverter)(nil)

// NewGoldmarkConverter creates a GoldmarkConverter with GFM and chroma
// highlighting for fenced code.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// Raw HTML stays escaped; reviewers write plain Markdown.
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts content to an HTML fragment. Goldmark has no context
// support, so the conversion runs in a goroutine and ctx is honored with a
// select.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		prepared, spans := PrepareComment(content)
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(prepared), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: FinishComment(buf.String(), spans)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
