package latexhtml

import "strings"

// ClassCenter is the class of the <div> produced for center environments
// and centered figures.
const ClassCenter = "text-center"

// ConvertCenter replaces every center environment with a centered <div>.
func ConvertCenter(s string) string {
	return replaceBlocks(s, "center", func(body string) (string, bool) {
		return `<div class="` + ClassCenter + `">` + inlineToParens(strings.TrimSpace(body)) + `</div>`, true
	})
}
