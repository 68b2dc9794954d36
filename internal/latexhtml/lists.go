package latexhtml

import "strings"

// List environments whose items belong to the nested list, not the one
// being split.
var (
	listOpeners = []string{`\begin{enumerate}`, `\begin{itemize}`}
	listClosers = []string{`\end{enumerate}`, `\end{itemize}`}
)

// ConvertEnumerate replaces every enumerate environment with an <ol> list.
// Returns s unchanged when it holds no complete \begin{enumerate}...\end{enumerate} pair.
func ConvertEnumerate(s string) string {
	return replaceBlocks(s, "enumerate", func(body string) (string, bool) {
		return renderList(body, "ol"), true
	})
}

// ConvertItemize replaces every itemize environment with a <ul> list.
// Returns s unchanged when it holds no complete \begin{itemize}...\end{itemize} pair.
func ConvertItemize(s string) string {
	return replaceBlocks(s, "itemize", func(body string) (string, bool) {
		return renderList(body, "ul"), true
	})
}

// renderList splits body on \item and wraps each non-empty segment in <li>.
// The segment before the first \item counts as an item when it is not blank.
func renderList(body, tag string) string {
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, item := range splitItems(body) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		b.WriteString("\n  <li>")
		b.WriteString(inlineToParens(item))
		b.WriteString("</li>")
	}
	b.WriteString("\n</" + tag + ">")
	return b.String()
}

// splitItems splits body on the \item control words of the outer list.
// Items of a list nested inside an item stay with that item, so the nested
// list is converted whole by its own pass. An escaped backslash (\\item) is
// a line break followed by text, not a marker.
func splitItems(body string) []string {
	var items []string
	depth, last := 0, 0
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			i++
			continue
		}
		switch {
		case hasAnyPrefix(body[i:], listOpeners):
			depth++
		case hasAnyPrefix(body[i:], listClosers):
			if depth > 0 {
				depth--
			}
		case depth == 0 && isControlWordAt(body, i, "item"):
			items = append(items, body[last:i])
			i += len(`\item`)
			last = i
			continue
		}
		i += 2
	}
	return append(items, body[last:])
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
