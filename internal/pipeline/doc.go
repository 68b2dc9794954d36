// Package pipeline assembles problem sheets from rendered fields.
//
// Stages, in the order the root package runs them:
//   - reviewer comments: Markdown to HTML via goldmark, math spans shielded
//   - sheet template: html/template over the rendered problems
//   - head injection: CSS <style> block and MathJax configuration
//   - image paths: relative <img src> rewritten to file:// URLs
//
// LaTeX fields are converted by internal/latexhtml before they reach this
// package. PDF printing is handled by the root package with headless
// Chrome.
package pipeline
