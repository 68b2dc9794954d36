// Package remote converts LaTeX to HTML with pandoc, either in-process or
// through the convert-latex HTTP endpoint.
//
// The pieces compose around the Converter interface:
//
//	PandocConverter  runs the pandoc CLI on a temporary .tex file
//	Handler          serves a Converter over HTTP as JSON
//	Client           calls such an endpoint and is itself a Converter
//	Cache            memoizes any Converter and never fails: on error it
//	                 returns the LaTeX unchanged with Success false
//
// The review tool uses a Cache over a Client; `mathcraft serve` runs a
// Handler over a PandocConverter.
package remote
