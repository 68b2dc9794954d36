package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Placeholders use Private Use Area characters, which goldmark passes
// through unchanged.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
	mathPlaceholder      = "\uE004"
)

// Precompiled regex patterns for performance.
var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)

	// Display forms are listed first so $$ is not read as two empty $ spans.
	mathSpan = regexp.MustCompile(`(?s)\$\$.+?\$\$|\\\[.+?\\\]|\\\(.+?\\\)|\$[^$\n]+?\$`)

	mathRef = regexp.MustCompile(mathPlaceholder + `(\d+)` + mathPlaceholder)
)

// PrepareComment normalizes line endings, limits blank runs, marks
// ==highlights== and replaces math spans with placeholders so Markdown
// emphasis and backslash escapes cannot alter them. The returned spans
// are restored by FinishComment.
func PrepareComment(content string) (string, []string) {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = multipleBlankLines.ReplaceAllString(content, "\n\n")

	var spans []string
	content = mathSpan.ReplaceAllStringFunc(content, func(m string) string {
		spans = append(spans, m)
		return mathPlaceholder + strconv.Itoa(len(spans)-1) + mathPlaceholder
	})

	content = highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	return content, spans
}

// FinishComment turns highlight placeholders into <mark> tags and puts the
// math spans back, HTML-escaped.
func FinishComment(htmlContent string, spans []string) string {
	htmlContent = strings.NewReplacer(
		MarkStartPlaceholder, "<mark>",
		MarkEndPlaceholder, "</mark>",
	).Replace(htmlContent)

	return mathRef.ReplaceAllStringFunc(htmlContent, func(m string) string {
		i, err := strconv.Atoi(mathRef.FindStringSubmatch(m)[1])
		if err != nil || i >= len(spans) {
			return m
		}
		return html.EscapeString(spans[i])
	})
}
