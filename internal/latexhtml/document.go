package latexhtml

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultAssetPath is the directory \includegraphics file names resolve against.
const DefaultAssetPath = "images"

// minSpacerCm is the smallest \vspace that still produces a spacer.
const minSpacerCm = 0.2

// paragraphBreak marks blank-line boundaries between extraction and
// wrapping. It is a Unicode Private Use Area character so it never collides
// with document text.
const paragraphBreak = "\uE002"

// Placeholder tokens shielding math spans from text substitutions.
const (
	mathTokenFormat = "__MATH_BLOCK_%d__"
	mathTokenPrefix = "__MATH_BLOCK_"

	// literalTokenPrefix stands in for mathTokenPrefix text already present
	// in the input while real tokens are live, so it is never restored as math.
	literalTokenPrefix = "\uE003MATH_BLOCK_"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// One or more blank lines between paragraphs
	blankLines = regexp.MustCompile(`\n[ \t]*\n\s*`)

	alignStar = regexp.MustCompile(`(?s)\\begin\{align\*\}(.*?)\\end\{align\*\}`)
	textWrap  = regexp.MustCompile(`\\text\{([^{}]*)\}`)

	vspace         = regexp.MustCompile(`\\vspace\*?\{\s*(-?[0-9]*\.?[0-9]+)\s*cm\s*\}`)
	section        = regexp.MustCompile(`\\section\*?\{([^{}]*)\}`)
	subsection     = regexp.MustCompile(`\\subsection\*?\{([^{}]*)\}`)
	paragraphMacro = regexp.MustCompile(`\\paragraph\*?\{([^{}]*)\}`)
	textbf         = regexp.MustCompile(`\\textbf\{([^{}]*)\}`)
	itemOpen       = regexp.MustCompile(`\\item([A-Za-z]*)\s*`)
	figureOpen     = regexp.MustCompile(`\\begin\{figure\}(?:\[[^\]]*\])?`)
	centering      = regexp.MustCompile(`\\centering\b[ \t]*\n?`)
	caption        = regexp.MustCompile(`\\captionof\{figure\}\{([^{}]*)\}`)
	graphics       = regexp.MustCompile(`\\includegraphics(?:\[([^\]]*)\])?\{([^{}]*)\}`)
	relativeWidth  = regexp.MustCompile(`width\s*=\s*([0-9]*\.?[0-9]+)\s*\\(?:textwidth|linewidth)`)
	absoluteWidth  = regexp.MustCompile(`width\s*=\s*([0-9]*\.?[0-9]+\s*(?:cm|mm|in|pt|em|px))`)

	mathToken = regexp.MustCompile(`__MATH_BLOCK_(\d+)__`)

	completeElement = regexp.MustCompile(`(?s)^<([a-zA-Z][a-zA-Z0-9]*)(?:\s[^>]*)?>.*</([a-zA-Z][a-zA-Z0-9]*)>$`)
	bareInteger     = regexp.MustCompile(`^[0-9]+$`)

	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	// Environment delimiters with direct HTML equivalents.
	environmentTags = strings.NewReplacer(
		`\begin{itemize}`, "<ul>",
		`\end{itemize}`, "</ul>",
		`\end{figure}`, "</figure>",
	)
)

// DocumentConverter converts full LaTeX documents (sections, paragraphs,
// figures) to HTML. The zero value resolves images against DefaultAssetPath.
type DocumentConverter struct {
	// AssetPath is the directory prefixed to \includegraphics file names.
	AssetPath string
}

// NewDocumentConverter creates a DocumentConverter resolving images against assetPath.
func NewDocumentConverter(assetPath string) *DocumentConverter {
	return &DocumentConverter{AssetPath: assetPath}
}

// ConvertDocument converts a LaTeX document with the default asset path.
func ConvertDocument(s string) string {
	return (&DocumentConverter{}).Convert(s)
}

// Convert runs the document pipeline:
//
//  1. $$...$$ and $...$ become \[...\] and \(...\); align* becomes display math
//  2. math spans are replaced by placeholder tokens
//  3. \text{} wrappers are stripped and &, <, > escaped
//  4. structural macros become HTML
//  5. blank lines become paragraph boundaries
//  6. math spans are restored and each paragraph is wrapped in <p>
//
// Order matters: escaping only runs once math is shielded.
func (c *DocumentConverter) Convert(s string) string {
	if s == "" {
		return ""
	}

	s = crlfOrCR.ReplaceAllString(s, "\n")
	s = redelimitDollars(s, true)
	s = alignStar.ReplaceAllString(s, `\[\begin{aligned}$1\end{aligned}\]`)

	s = strings.ReplaceAll(s, mathTokenPrefix, literalTokenPrefix)
	s, spans := extractMath(s)

	s = textWrap.ReplaceAllString(s, "$1")
	s = htmlEscaper.Replace(s)
	s = c.rewriteMacros(s)
	s = blankLines.ReplaceAllString(s, paragraphBreak)

	s = restoreMath(s, spans)
	s = strings.ReplaceAll(s, literalTokenPrefix, mathTokenPrefix)
	return wrapParagraphs(s)
}

// rewriteMacros converts the supported structural macros to HTML.
func (c *DocumentConverter) rewriteMacros(s string) string {
	s = vspace.ReplaceAllStringFunc(s, func(m string) string {
		cm, err := strconv.ParseFloat(vspace.FindStringSubmatch(m)[1], 64)
		if err != nil || cm < minSpacerCm {
			return ""
		}
		return fmt.Sprintf(`<div style="height: %scm"></div>`, formatNumber(cm))
	})
	s = section.ReplaceAllString(s, "<h2>$1</h2>")
	s = subsection.ReplaceAllString(s, "<h3>$1</h3>")
	s = paragraphMacro.ReplaceAllString(s, "<p><strong>$1</strong></p>")
	s = textbf.ReplaceAllString(s, "<strong>$1</strong>")
	s = figureOpen.ReplaceAllString(s, "<figure>")
	s = centering.ReplaceAllString(s, "")
	s = environmentTags.Replace(s)
	// Items are left unclosed; browsers close <li> at the next item or </ul>.
	s = itemOpen.ReplaceAllStringFunc(s, func(m string) string {
		if itemOpen.FindStringSubmatch(m)[1] != "" {
			return m // \itemsep and friends
		}
		return "<li>"
	})
	s = caption.ReplaceAllString(s, "<figcaption>$1</figcaption>")
	s = graphics.ReplaceAllStringFunc(s, func(m string) string {
		sub := graphics.FindStringSubmatch(m)
		return c.renderImage(sub[2], sub[1])
	})
	return s
}

// renderImage builds a centered <img> for an \includegraphics file name and
// its optional argument list.
func (c *DocumentConverter) renderImage(file, options string) string {
	file = strings.TrimSpace(file)
	src := file
	if !strings.Contains(file, "://") && !strings.HasPrefix(file, "/") {
		base := c.AssetPath
		if base == "" {
			base = DefaultAssetPath
		}
		src = strings.TrimSuffix(base, "/") + "/" + file
	}

	style := ""
	if m := relativeWidth.FindStringSubmatch(options); m != nil {
		if w, err := strconv.ParseFloat(m[1], 64); err == nil {
			style = fmt.Sprintf(` style="width: %s%%"`, formatNumber(w*100))
		}
	} else if m := absoluteWidth.FindStringSubmatch(options); m != nil {
		style = fmt.Sprintf(` style="width: %s"`, strings.ReplaceAll(m[1], " ", ""))
	}

	return fmt.Sprintf(`<div class="%s"><img src="%s" alt=""%s></div>`, ClassCenter, src, style)
}

// extractMath replaces each \[...\] and \(...\) span with a placeholder
// token and returns the spans indexed by token number. An unterminated
// opener ends extraction; the remaining text is left as is.
func extractMath(s string) (string, []string) {
	var (
		b     strings.Builder
		spans []string
	)

	pos := 0
	for {
		open, closer := nextMathOpen(s, pos)
		if open < 0 {
			break
		}
		end := indexDelim(s, open+2, closer)
		if end < 0 {
			break
		}
		end += len(closer)

		b.WriteString(s[pos:open])
		fmt.Fprintf(&b, mathTokenFormat, len(spans))
		spans = append(spans, s[open:end])
		pos = end
	}

	if len(spans) == 0 {
		return s, nil
	}
	b.WriteString(s[pos:])
	return b.String(), spans
}

// nextMathOpen finds the earliest unescaped \[ or \( at or after pos and
// returns its index with the matching closing delimiter.
func nextMathOpen(s string, pos int) (int, string) {
	display := indexDelim(s, pos, `\[`)
	inline := indexDelim(s, pos, `\(`)
	switch {
	case display < 0 && inline < 0:
		return -1, ""
	case inline < 0 || (display >= 0 && display < inline):
		return display, `\]`
	default:
		return inline, `\)`
	}
}

// restoreMath substitutes each placeholder token with its span. Each index
// is restored once; a repeated or unknown token stays literal.
func restoreMath(s string, spans []string) string {
	if len(spans) == 0 {
		return s
	}
	used := make([]bool, len(spans))
	return mathToken.ReplaceAllStringFunc(s, func(tok string) string {
		i, err := strconv.Atoi(mathToken.FindStringSubmatch(tok)[1])
		if err != nil || i >= len(spans) || used[i] {
			return tok
		}
		used[i] = true
		return spans[i]
	})
}

// wrapParagraphs wraps each paragraph in <p> unless it is a complete HTML
// element or a bare integer, and joins paragraphs with newlines.
func wrapParagraphs(s string) string {
	var out []string
	for _, para := range strings.Split(s, paragraphBreak) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if isCompleteElement(para) || bareInteger.MatchString(para) {
			out = append(out, para)
			continue
		}
		out = append(out, "<p>"+para+"</p>")
	}
	return strings.Join(out, "\n")
}

// isCompleteElement reports whether s is wrapped in a single opening and
// closing tag pair of the same name, like <h2>...</h2>.
func isCompleteElement(s string) bool {
	m := completeElement.FindStringSubmatch(s)
	return m != nil && strings.EqualFold(m[1], m[2])
}

// formatNumber prints v with at most two decimals and no trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
