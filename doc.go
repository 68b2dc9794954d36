// Package mathcraft renders math-problem records to review sheets.
//
// # Quick Start
//
// Create a renderer, render a sheet, and close when done:
//
//	r, err := mathcraft.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	result, err := r.RenderSheet(ctx, mathcraft.SheetInput{
//	    Title:    "OGE 100",
//	    Problems: problems,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("sheet.pdf", result.PDF, 0644)
//
// The result contains both the PDF bytes (result.PDF) and the HTML document
// (result.HTML). Use SheetInput.HTMLOnly to skip PDF printing.
//
// # Rendering Pipeline
//
//  1. LaTeX fields are converted to HTML by internal/latexhtml (structural
//     or document mode) or by a remote conversion service
//  2. Reviewer comments are converted from Markdown with goldmark
//  3. The sheet template is executed, then CSS and the MathJax
//     configuration are injected into <head>
//  4. Relative image paths are rewritten to file:// URLs
//  5. Headless Chrome (go-rod) waits for MathJax to finish and prints to PDF
//
// # Configuration
//
//	r, err := mathcraft.NewRenderer(
//	    mathcraft.WithTimeout(2 * time.Minute),
//	    mathcraft.WithStyle("compact"),
//	    mathcraft.WithMathJax(cfg),
//	)
//
// # Parallel Processing
//
// For batch export, RendererPool manages several renderers, each with its
// own browser:
//
//	pool := mathcraft.NewRendererPool(4, opts...)
//	defer pool.Close()
//
//	r, err := pool.Acquire()
//	defer pool.Release(r)
//
// # Browser Requirements
//
// PDF printing requires Chrome/Chromium. go-rod downloads a managed Chromium
// on first run. Set ROD_BROWSER_BIN to use a specific binary.
package mathcraft
