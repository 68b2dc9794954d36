package latexhtml

import (
	"regexp"
	"strings"
)

// controlWord matches a TeX control word. TeX ends the name at the first
// non-letter, so \item2 is \item followed by "2"; a \b boundary would not
// split there.
var controlWord = regexp.MustCompile(`\\[A-Za-z]+`)

// indexDelim returns the index of the first occurrence of delim in s at or
// after from that is not escaped by a backslash, or -1.
// A delimiter preceded by an odd run of backslashes is escaped: in `\\[`
// the `\[` belongs to a line break, not to display math.
func indexDelim(s string, from int, delim string) int {
	for from <= len(s) {
		i := strings.Index(s[from:], delim)
		if i < 0 {
			return -1
		}
		i += from
		if backslashesBefore(s, i)%2 == 0 {
			return i
		}
		from = i + 1
	}
	return -1
}

// backslashesBefore counts consecutive backslashes immediately before s[i].
func backslashesBefore(s string, i int) int {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n
}

// redelimitDollars rewrites $...$ spans to \(...\).
// When display is true, $$...$$ spans become \[...\]; otherwise they are
// copied through untouched. Escaped dollars (\$) and unterminated
// delimiters are kept literally. The text between the delimiters is never modified.
func redelimitDollars(s string, display bool) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)

	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteString(s[i : i+2])
			i += 2
			continue
		}
		if c != '$' {
			b.WriteByte(c)
			i++
			continue
		}

		if strings.HasPrefix(s[i:], "$$") {
			end := indexDelim(s, i+2, "$$")
			if end < 0 {
				// A stray $$ stays literal; later $...$ spans still convert.
				b.WriteString("$$")
				i += 2
				continue
			}
			if display {
				b.WriteString(`\[`)
				b.WriteString(s[i+2 : end])
				b.WriteString(`\]`)
			} else {
				b.WriteString(s[i : end+2])
			}
			i = end + 2
			continue
		}

		end := indexDelim(s, i+1, "$")
		if end < 0 {
			b.WriteString(s[i:])
			return b.String()
		}
		b.WriteString(`\(`)
		b.WriteString(s[i+1 : end])
		b.WriteString(`\)`)
		i = end + 1
	}
	return b.String()
}

// inlineToParens rewrites inline $...$ spans to \(...\), leaving $$...$$ alone.
func inlineToParens(s string) string {
	return redelimitDollars(s, false)
}

// replaceBlocks replaces every \begin{env}...\end{env} block in s with the
// output of render applied to the block body.
//
// When another opener of the same environment appears before the closing
// delimiter, the earlier opener is copied literally and scanning resumes at
// the innermost one. Openers without a closing delimiter are left as is.
// A render returning ok=false keeps the whole block literal.
func replaceBlocks(s, env string, render func(body string) (html string, ok bool)) string {
	begin := `\begin{` + env + `}`
	end := `\end{` + env + `}`
	if !strings.Contains(s, begin) || !strings.Contains(s, end) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	pos := 0
	for {
		start := strings.Index(s[pos:], begin)
		if start < 0 {
			break
		}
		start += pos
		bodyStart := start + len(begin)

		stop := strings.Index(s[bodyStart:], end)
		if stop < 0 {
			break
		}
		stop += bodyStart

		if inner := strings.LastIndex(s[bodyStart:stop], begin); inner >= 0 {
			next := bodyStart + inner
			b.WriteString(s[pos:next])
			pos = next
			continue
		}

		b.WriteString(s[pos:start])
		if html, ok := render(s[bodyStart:stop]); ok {
			b.WriteString(html)
		} else {
			b.WriteString(s[start : stop+len(end)])
		}
		pos = stop + len(end)
	}

	b.WriteString(s[pos:])
	return b.String()
}

// splitUnescaped splits s on sep bytes that are not preceded by a backslash,
// so that \& stays inside a table cell.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// isControlWordAt reports whether the control word \name starts at s[i]
// and is not continued by further letters.
func isControlWordAt(s string, i int, name string) bool {
	if i >= len(s) || s[i] != '\\' || !strings.HasPrefix(s[i+1:], name) {
		return false
	}
	j := i + 1 + len(name)
	return j == len(s) || !isASCIILetter(s[j])
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
