package latexhtml

import "strings"

// Block container around display math.
const (
	ClassDisplayMath = "math-display"

	displayOpen  = `<div class="` + ClassDisplayMath + `">`
	displayClose = `</div>`
)

// ConvertDisplayMath wraps display math in a block container.
//
// Bare \[...\] spans are wrapped first, then equation and equation* blocks
// are rewritten to wrapped \[...\]. Spans that already sit directly inside
// the container are left alone, so the function is idempotent.
func ConvertDisplayMath(s string) string {
	s = wrapBareDisplay(s)
	for _, env := range []string{"equation", "equation*"} {
		s = replaceBlocks(s, env, func(body string) (string, bool) {
			return displayOpen + `\[` + strings.TrimSpace(body) + `\]` + displayClose, true
		})
	}
	return s
}

// wrapBareDisplay wraps unescaped \[...\] spans in the display container.
// An unterminated \[ stops the scan and the rest is copied literally.
func wrapBareDisplay(s string) string {
	if !strings.Contains(s, `\[`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 32)

	pos := 0
	for {
		open := indexDelim(s, pos, `\[`)
		if open < 0 {
			break
		}
		closing := indexDelim(s, open+2, `\]`)
		if closing < 0 {
			break
		}
		end := closing + 2

		b.WriteString(s[pos:open])
		span := s[open:end]
		if strings.HasSuffix(s[:open], displayOpen) && strings.HasPrefix(s[end:], displayClose) {
			b.WriteString(span)
		} else {
			b.WriteString(displayOpen + span + displayClose)
		}
		pos = end
	}

	b.WriteString(s[pos:])
	return b.String()
}
