package latexhtml

// Notes:
// - Exact-output cases pin the serialization; the goquery cases check the
//   table shape the review page styles against (row classes, header cells).
// - A rule is tied to a row boundary, so \hline at the very end of a row
//   without a trailing \\ still closes that row.

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestConvertTabular
// ---------------------------------------------------------------------------

func TestConvertTabular(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no environment returns input",
			input: `x & y`,
			want:  `x & y`,
		},
		{
			name:  "plain rows",
			input: `\begin{tabular}{ll}a & b\\c & d\end{tabular}`,
			want:  "<table>\n  <tr><td>a</td><td>b</td></tr>\n  <tr><td>c</td><td>d</td></tr>\n</table>",
		},
		{
			name:  "single ruled row is a header",
			input: `\begin{tabular}{|c|c|}\hline $x$ & 1 \\ \hline\end{tabular}`,
			want:  "<table>\n  <tr><th>\\(x\\)</th><th>1</th></tr>\n</table>",
		},
		{
			name:  "header, top and bottom rules",
			input: "\\begin{tabular}{cc}\n\\hline\nx & y \\\\\n\\hline\n1 & 2 \\\\\n3 & 4 \\\\\n\\hline\n\\end{tabular}",
			want: "<table>\n" +
				"  <tr><th>x</th><th>y</th></tr>\n" +
				"  <tr class=\"border-top\"><td>1</td><td>2</td></tr>\n" +
				"  <tr class=\"border-bottom\"><td>3</td><td>4</td></tr>\n" +
				"</table>",
		},
		{
			name:  "rule after last row without separator",
			input: `\begin{tabular}{c}a \\ b \hline\end{tabular}`,
			want:  "<table>\n  <tr><td>a</td></tr>\n  <tr class=\"border-bottom\"><td>b</td></tr>\n</table>",
		},
		{
			name:  "rule directly followed by a digit",
			input: `\begin{tabular}{cc}\hline1 & 2 \\\hline\end{tabular}`,
			want:  "<table>\n  <tr><th>1</th><th>2</th></tr>\n</table>",
		},
		{
			name:  "longer control word is not a rule",
			input: `\begin{tabular}{c}a \hlinex\end{tabular}`,
			want:  "<table>\n  <tr><td>a \\hlinex</td></tr>\n</table>",
		},
		{
			name:  "booktabs rules",
			input: `\begin{tabular}{cc}\toprule h & k \\ \midrule 1 & 2 \\ \bottomrule\end{tabular}`,
			want:  "<table>\n  <tr><th>h</th><th>k</th></tr>\n  <tr><th>1</th><th>2</th></tr>\n</table>",
		},
		{
			name:  "escaped ampersand stays in cell",
			input: `\begin{tabular}{cc}A \& B & C\end{tabular}`,
			want:  "<table>\n  <tr><td>A \\& B</td><td>C</td></tr>\n</table>",
		},
		{
			name:  "empty cells kept",
			input: `\begin{tabular}{ccc}a & & c\end{tabular}`,
			want:  "<table>\n  <tr><td>a</td><td></td><td>c</td></tr>\n</table>",
		},
		{
			name:  "nested braces in column spec",
			input: `\begin{tabular}{|p{3cm}|c|}a & b\end{tabular}`,
			want:  "<table>\n  <tr><td>a</td><td>b</td></tr>\n</table>",
		},
		{
			name:  "position argument before spec",
			input: `\begin{tabular}[t]{c}a\end{tabular}`,
			want:  "<table>\n  <tr><td>a</td></tr>\n</table>",
		},
		{
			name:  "row separator with spacing",
			input: `\begin{tabular}{c}a\\[2pt]b\end{tabular}`,
			want:  "<table>\n  <tr><td>a</td></tr>\n  <tr><td>b</td></tr>\n</table>",
		},
		{
			name:  "missing column spec left literal",
			input: `\begin{tabular}a & b\end{tabular}`,
			want:  `\begin{tabular}a & b\end{tabular}`,
		},
		{
			name:  "unbalanced column spec left literal",
			input: `\begin{tabular}{|c|a & b\end{tabular}`,
			want:  `\begin{tabular}{|c|a & b\end{tabular}`,
		},
		{
			name:  "unterminated block left literal",
			input: `\begin{tabular}{c}a`,
			want:  `\begin{tabular}{c}a`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ConvertTabular(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ConvertTabular() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvertTabular_Structure
// ---------------------------------------------------------------------------

func TestConvertTabular_Structure(t *testing.T) {
	t.Parallel()

	input := `Fill in the table:
\begin{tabular}{|c|c|c|}
\hline
$x$ & $-1$ & $0$ \\
$y$ & $2$ & $4$ \\
$z$ & $5$ & $9$ \\
\hline
\end{tabular}`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ConvertTabular(input)))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	rows := doc.Find("table tr")
	if rows.Length() != 3 {
		t.Fatalf("rows = %d, want 3", rows.Length())
	}
	if n := doc.Find("th").Length(); n != 0 {
		t.Errorf("th cells = %d, want 0", n)
	}

	rows.Each(func(i int, row *goquery.Selection) {
		if n := row.Find("td").Length(); n != 3 {
			t.Errorf("row %d td cells = %d, want 3", i, n)
		}
	})

	if !rows.Eq(0).HasClass(ClassBorderTop) {
		t.Errorf("first row missing %q", ClassBorderTop)
	}
	if _, ok := rows.Eq(1).Attr("class"); ok {
		t.Error("interior row should carry no rule class")
	}
	if !rows.Eq(2).HasClass(ClassBorderBottom) {
		t.Errorf("last row missing %q", ClassBorderBottom)
	}
	if got := rows.Eq(0).Find("td").First().Text(); got != `\(x\)` {
		t.Errorf("first cell = %q, want %q", got, `\(x\)`)
	}
}

// ---------------------------------------------------------------------------
// TestRuleBoundaries
// ---------------------------------------------------------------------------

func TestRuleBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    map[int]bool
	}{
		{
			name:    "no rules",
			content: `a \\ b`,
			want:    map[int]bool{},
		},
		{
			name:    "rule before first row",
			content: `\hline a \\ b`,
			want:    map[int]bool{0: true},
		},
		{
			name:    "rule after separator",
			content: `a \\ \hline b`,
			want:    map[int]bool{1: true},
		},
		{
			name:    "stacked rules share a boundary",
			content: `a \\ \hline\hline b`,
			want:    map[int]bool{1: true},
		},
		{
			name:    "rule trailing row text",
			content: `a \\ b \hline`,
			want:    map[int]bool{2: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ruleBoundaries(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ruleBoundaries() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
