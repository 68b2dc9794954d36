package latexhtml

import (
	"regexp"
	"strings"
)

// Row rule classes applied when a horizontal rule touches a body row.
const (
	ClassBorderTop    = "border-top"
	ClassBorderBottom = "border-bottom"
)

// ruleWords are the horizontal rules: \hline plus the booktabs variants.
var ruleWords = map[string]bool{
	`\hline`:      true,
	`\toprule`:    true,
	`\midrule`:    true,
	`\bottomrule`: true,
}

// rowSeparator matches \\ with an optional spacing argument (\\[2pt]).
var rowSeparator = regexp.MustCompile(`\\\\(?:\[[^\]]*\])?`)

// ConvertTabular replaces every tabular environment with a <table>.
// A block whose column spec is missing or unbalanced stays literal.
func ConvertTabular(s string) string {
	return replaceBlocks(s, "tabular", renderTabular)
}

// renderTabular converts a tabular body (column spec included) to HTML.
//
// Rules are recorded as row boundaries: boundary i sits above row i and
// boundary i+1 below it. A row with a rule on both sides is a header row.
func renderTabular(body string) (string, bool) {
	content, ok := stripColumnSpec(body)
	if !ok {
		return "", false
	}

	rules := ruleBoundaries(content)
	content = stripRules(content)

	var b strings.Builder
	b.WriteString("<table>")
	for i, row := range rowSeparator.Split(content, -1) {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}

		top, bottom := rules[i], rules[i+1]
		cellTag := "td"
		b.WriteString("\n  <tr")
		switch {
		case top && bottom:
			cellTag = "th"
		case top:
			b.WriteString(` class="` + ClassBorderTop + `"`)
		case bottom:
			b.WriteString(` class="` + ClassBorderBottom + `"`)
		}
		b.WriteString(">")

		for _, cell := range splitUnescaped(row, '&') {
			b.WriteString("<" + cellTag + ">")
			b.WriteString(inlineToParens(strings.TrimSpace(cell)))
			b.WriteString("</" + cellTag + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("\n</table>")
	return b.String(), true
}

// stripColumnSpec removes the optional [pos] argument and the {spec}
// argument that follow \begin{tabular}. Braces inside the spec may nest,
// as in p{3cm}.
func stripColumnSpec(body string) (string, bool) {
	rest := strings.TrimLeft(body, " \t")
	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", false
		}
		rest = strings.TrimLeft(rest[end+1:], " \t")
	}
	if !strings.HasPrefix(rest, "{") {
		return "", false
	}

	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[i+1:], true
			}
		}
	}
	return "", false
}

// ruleBoundaries records the row boundary of every rule in content.
// A rule sitting after the text of a row without a \\ still closes it.
func ruleBoundaries(content string) map[int]bool {
	rules := make(map[int]bool)
	for _, loc := range findRules(content) {
		prefix := content[:loc[0]]
		seps := rowSeparator.FindAllStringIndex(prefix, -1)

		boundary := len(seps)
		tail := prefix
		if boundary > 0 {
			tail = prefix[seps[boundary-1][1]:]
		}
		if strings.TrimSpace(stripRules(tail)) != "" {
			boundary++
		}
		rules[boundary] = true
	}
	return rules
}

// findRules returns the index pairs of the horizontal rules in s. Matching
// whole control words keeps \hlineskip out and lets \hline2 count.
func findRules(s string) [][]int {
	var locs [][]int
	for _, loc := range controlWord.FindAllStringIndex(s, -1) {
		if ruleWords[s[loc[0]:loc[1]]] {
			locs = append(locs, loc)
		}
	}
	return locs
}

func stripRules(s string) string {
	locs := findRules(s)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
