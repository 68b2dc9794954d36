package main

import (
	flag "github.com/spf13/pflag"

	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds LaTeX conversion flags.
type renderFlags struct {
	mode           string
	latexAssetPath string
	endpoint       string
	pandoc         string
	timeout        string
}

// recordFlags holds flags that describe the CSV records.
type recordFlags struct {
	table    string
	encoding string
	images   string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// sheetFlags holds problem sheet flags.
type sheetFlags struct {
	title         string
	subtitle      string
	style         string
	assetPath     string
	hideSolutions bool
	htmlOnly      bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common commonFlags
	render renderFlags
	output string
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common  commonFlags
	render  renderFlags
	records recordFlags
	sheet   sheetFlags
	page    pageFlags
	output  string
	workers int
}

// reviewFlags holds all flags for the review command.
type reviewFlags struct {
	common  commonFlags
	records recordFlags
	output  string
	raw     bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	addr   string
	pandoc string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addRenderFlags adds LaTeX conversion flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.mode, "mode", "m", "", "conversion mode: structural, document, remote")
	fs.StringVar(&f.latexAssetPath, "latex-assets", "", "folder for \\includegraphics targets (default: images)")
	fs.StringVar(&f.endpoint, "endpoint", "", "convert-latex service URL for remote mode")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc binary for remote mode without endpoint")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "conversion and PDF timeout (e.g., 30s, 2m)")
}

// addRecordFlags adds CSV record flags to a FlagSet.
func addRecordFlags(fs *flag.FlagSet, f *recordFlags) {
	fs.StringVar(&f.table, "table", "", "record table profile")
	fs.StringVarP(&f.encoding, "encoding", "e", "", "CSV encoding: utf-8, windows-1251, koi8-r")
	fs.StringVar(&f.images, "images", "", "YAML map from image name to uploaded URL")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addSheetFlags adds problem sheet flags to a FlagSet.
func addSheetFlags(fs *flag.FlagSet, f *sheetFlags) {
	fs.StringVar(&f.title, "title", "", "sheet title")
	fs.StringVar(&f.subtitle, "subtitle", "", "sheet subtitle (default: table name)")
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.hideSolutions, "hide-solutions", false, "omit solution fields")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "output HTML only, skip PDF")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, env *Environment) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: stdout)")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printConvertUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, env *Environment) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &exportFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to each CSV)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addRecordFlags(fs, &f.records)
	addSheetFlags(fs, &f.sheet)
	addPageFlags(fs, &f.page)

	fs.Usage = func() { printExportUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseReviewFlags parses review command flags and returns positional args.
func parseReviewFlags(args []string, env *Environment) (*reviewFlags, []string, error) {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &reviewFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "CSV written after set/check (default: "+problem.DefaultExportName+")")
	fs.BoolVar(&f.raw, "raw", false, "dump the record structure (show)")
	addCommonFlags(fs, &f.common)
	addRecordFlags(fs, &f.records)

	fs.Usage = func() { printReviewUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, env *Environment) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", defaultServeAddr, "listen address")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc binary")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printServeUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// mergeRenderFlags applies explicitly set render flags over cfg.
func mergeRenderFlags(f *renderFlags, cfg *config.Config) {
	if f.mode != "" {
		cfg.Render.Mode = f.mode
	}
	if f.latexAssetPath != "" {
		cfg.Render.AssetPath = f.latexAssetPath
	}
	if f.endpoint != "" {
		cfg.Remote.Endpoint = f.endpoint
	}
	if f.pandoc != "" {
		cfg.Remote.Pandoc = f.pandoc
	}
	if f.timeout != "" {
		cfg.Remote.Timeout = f.timeout
	}
}

// mergeRecordFlags applies explicitly set record flags over cfg.
func mergeRecordFlags(f *recordFlags, cfg *config.Config) {
	if f.table != "" {
		cfg.Table = f.table
	}
	if f.encoding != "" {
		cfg.Input.Encoding = f.encoding
	}
	if f.images != "" {
		cfg.Input.Images = f.images
	}
}

// mergeSheetFlags applies explicitly set sheet and page flags over cfg.
// Boolean flags can only enable.
func mergeSheetFlags(f *sheetFlags, p *pageFlags, cfg *config.Config) {
	if f.title != "" {
		cfg.Sheet.Title = f.title
	}
	if f.style != "" {
		cfg.Sheet.Style = f.style
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.hideSolutions {
		cfg.Sheet.HideSolutions = true
	}
	if f.htmlOnly {
		cfg.Sheet.HTMLOnly = true
	}
	if p.size != "" {
		cfg.Sheet.Page.Size = p.size
	}
	if p.orientation != "" {
		cfg.Sheet.Page.Orientation = p.orientation
	}
	if p.margin > 0 {
		cfg.Sheet.Page.Margin = p.margin
	}
}
