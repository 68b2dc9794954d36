// Package latexhtml converts LaTeX fragments from problem records into HTML
// that a MathJax page can typeset.
//
// Two entry points are provided:
//   - ConvertStructural handles the environments found in problem and
//     solution fields (enumerate, itemize, tabular, center, equation and
//     bare display math). Each environment also has its own converter.
//   - ConvertDocument handles longer source documents with sections, bold
//     text, figures and paragraphs.
//
// Math content is never rewritten beyond its delimiters. Inline $...$ spans
// found inside converted blocks become \(...\) so that a dollar sign used as
// currency elsewhere in the text cannot open a formula by accident.
//
// All converters are total: absent or malformed environments pass through
// as literal text and no converter returns an error. They hold no state and
// are safe for concurrent use.
//
// Nested blocks of the same environment resolve innermost first: the inner
// pair is converted and the outer opener stays literal. Blocks of different
// environments compose through pass order (lists, then tables, then center,
// then display math), so a table inside a center block is converted before
// the center block wraps it. A list nested in an item of another list kind
// stays inside that item: the outer list only splits on its own \item
// markers, and the inner list is converted by its own pass.
//
// \item and \hline are matched as whole control words: \item2 is an item
// holding "2", while \itemsep is not an item.
package latexhtml
