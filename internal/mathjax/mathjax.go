// Package mathjax describes the MathJax setup that rendered pages load.
//
// A Config is a plain value passed to every render. Nothing here keeps
// global state: Script renders the configuration block and loader tag for a
// single document, and two documents may use different configurations.
package mathjax

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
)

// DefaultScriptURL is the MathJax 3 combined TeX/MathML/CHTML bundle.
const DefaultScriptURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"

// ScriptID is the id of the loader <script> element.
const ScriptID = "MathJax-script"

// TypesetDoneFlag is the window property set to true once the page has been
// typeset. Headless renderers wait on it before printing.
const TypesetDoneFlag = "mathTypesetDone"

// Sentinel errors for configuration validation.
var (
	ErrInvalidDelimiter = errors.New("invalid math delimiter")
	ErrInvalidTags      = errors.New("invalid equation tags mode")
	ErrInvalidScriptURL = errors.New("invalid MathJax script URL")
)

// Delimiter is an opening and closing math delimiter pair.
type Delimiter struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// Config is the MathJax configuration for one rendered document.
type Config struct {
	InlineMath          []Delimiter `yaml:"inlineMath"`
	DisplayMath         []Delimiter `yaml:"displayMath"`
	ProcessEscapes      bool        `yaml:"processEscapes"`
	ProcessEnvironments bool        `yaml:"processEnvironments"`
	Packages            []string    `yaml:"packages"`
	Tags                string      `yaml:"tags"` // "none", "ams", "all"
	ProcessHTMLClass    string      `yaml:"processHtmlClass"`
	Load                []string    `yaml:"load"`
	ScriptURL           string      `yaml:"scriptURL"`
	TypesetOnStartup    bool        `yaml:"typesetOnStartup"`
	SVGFontCache        string      `yaml:"svgFontCache"`
}

// Default returns the configuration the review pages are built for: $...$
// and \(...\) inline, $$...$$ and \[...\] display, AMS environments and
// numbering.
func Default() Config {
	return Config{
		InlineMath:          []Delimiter{{"$", "$"}, {`\(`, `\)`}},
		DisplayMath:         []Delimiter{{"$$", "$$"}, {`\[`, `\]`}},
		ProcessEscapes:      true,
		ProcessEnvironments: true,
		Packages:            []string{"base", "ams", "newcommand", "require", "autoload", "configmacros"},
		Tags:                "ams",
		ProcessHTMLClass:    "tex2jax_process",
		Load:                []string{"[tex]/ams", "[tex]/newcommand", "[tex]/configmacros"},
		ScriptURL:           DefaultScriptURL,
		TypesetOnStartup:    false,
		SVGFontCache:        "global",
	}
}

// IsZero reports whether c was never set, so callers can fall back to Default.
func (c Config) IsZero() bool {
	return len(c.InlineMath) == 0 && len(c.DisplayMath) == 0 && c.ScriptURL == ""
}

// Validate checks delimiters, tag mode and script URL.
func (c Config) Validate() error {
	if len(c.InlineMath) == 0 {
		return fmt.Errorf("%w: at least one inline delimiter required", ErrInvalidDelimiter)
	}
	for _, group := range [][]Delimiter{c.InlineMath, c.DisplayMath} {
		for _, d := range group {
			if d.Open == "" || d.Close == "" {
				return fmt.Errorf("%w: %q ... %q", ErrInvalidDelimiter, d.Open, d.Close)
			}
		}
	}

	switch c.Tags {
	case "", "none", "ams", "all":
	default:
		return fmt.Errorf("%w: %q (must be none, ams, or all)", ErrInvalidTags, c.Tags)
	}

	if !strings.HasPrefix(c.ScriptURL, "https://") &&
		!strings.HasPrefix(c.ScriptURL, "http://") &&
		!strings.HasPrefix(c.ScriptURL, "file://") {
		return fmt.Errorf("%w: %q", ErrInvalidScriptURL, c.ScriptURL)
	}
	return nil
}

// Script returns the configuration block and the loader tag to place in a
// document's <head>. Once loaded, MathJax typesets the page and sets
// window[TypesetDoneFlag].
func (c Config) Script() (string, error) {
	block, err := json.Marshal(c.options())
	if err != nil {
		return "", fmt.Errorf("encoding MathJax config: %w", err)
	}

	onload := "window.MathJax.startup.promise" +
		".then(function(){return window.MathJax.typesetPromise();})" +
		".then(function(){window." + TypesetDoneFlag + "=true;})"

	var b strings.Builder
	b.WriteString("<script>window.MathJax = ")
	b.Write(block)
	b.WriteString(";</script>\n")
	fmt.Fprintf(&b, `<script id="%s" async src="%s" onload="%s"></script>`,
		ScriptID, html.EscapeString(c.ScriptURL), onload)
	return b.String(), nil
}

// options builds the window.MathJax object.
func (c Config) options() map[string]any {
	tex := map[string]any{
		"inlineMath":          pairs(c.InlineMath),
		"displayMath":         pairs(c.DisplayMath),
		"processEscapes":      c.ProcessEscapes,
		"processEnvironments": c.ProcessEnvironments,
	}
	if len(c.Packages) > 0 {
		tex["packages"] = c.Packages
	}
	if c.Tags != "" {
		tex["tags"] = c.Tags
	}

	opts := map[string]any{
		"tex":     tex,
		"startup": map[string]any{"typeset": c.TypesetOnStartup},
	}
	if c.ProcessHTMLClass != "" {
		opts["options"] = map[string]any{"processHtmlClass": c.ProcessHTMLClass}
	}
	if len(c.Load) > 0 {
		opts["loader"] = map[string]any{"load": c.Load}
	}
	if c.SVGFontCache != "" {
		opts["svg"] = map[string]any{"fontCache": c.SVGFontCache}
	}
	return opts
}

func pairs(ds []Delimiter) [][2]string {
	out := make([][2]string, len(ds))
	for i, d := range ds {
		out[i] = [2]string{d.Open, d.Close}
	}
	return out
}
