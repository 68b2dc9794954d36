package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/noirdeleroi/math-problem-craft/internal/problem"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathcraft <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a LaTeX fragment to HTML")
	fmt.Fprintln(w, "  export     Render problem sheets (PDF or HTML) from CSV records")
	fmt.Fprintln(w, "  review     List, show, edit and check CSV records")
	fmt.Fprintln(w, "  serve      Run the convert-latex HTTP endpoint")
	fmt.Fprintln(w, "  doctor     Check Chrome and pandoc availability")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mathcraft help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and debug logs")
}

func printRenderFlags(w io.Writer) {
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "  -m, --mode <s>            structural (default), document, remote")
	fmt.Fprintln(w, "      --latex-assets <dir>  Folder for \\includegraphics targets (default: images)")
	fmt.Fprintln(w, "      --endpoint <url>      convert-latex service for remote mode")
	fmt.Fprintln(w, "      --pandoc <path>       pandoc binary for remote mode without endpoint")
	fmt.Fprintln(w, "  -t, --timeout <d>         Conversion and PDF timeout (e.g., 30s, 2m)")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathcraft convert [file|-] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert one LaTeX fragment to an HTML fragment. Reads stdin when no")
	fmt.Fprintln(w, "file or \"-\" is given. Math stays in place for MathJax.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output HTML file (default: stdout)")
	fmt.Fprintln(w)
	printRenderFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathcraft export <csv|dir>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one problem sheet per CSV file. Directories are searched")
	fmt.Fprintln(w, "recursively. Uses input.defaultDir from the config when no input is given.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to each CSV)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --table <name>        Record table profile")
	fmt.Fprintln(w, "  -e, --encoding <s>        CSV encoding: utf-8, windows-1251, koi8-r")
	fmt.Fprintln(w, "      --images <file>       YAML map from image name to uploaded URL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sheet:")
	fmt.Fprintln(w, "      --title <s>           Sheet title")
	fmt.Fprintln(w, "      --subtitle <s>        Sheet subtitle (default: table name)")
	fmt.Fprintln(w, "      --style <name|path>   CSS style name or file path")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/ and templates/ directory")
	fmt.Fprintln(w, "      --hide-solutions      Omit solution fields")
	fmt.Fprintln(w, "      --html-only           Write HTML, skip PDF printing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	printRenderFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printReviewUsage prints usage for the review command.
func printReviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathcraft review <subcommand> <csv> [args] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list <csv>                        List records")
	fmt.Fprintln(w, "  show <csv> <id> [--raw]           Show the fields of one record")
	fmt.Fprintln(w, "  set <csv> <id> <field> <value>    Edit one field")
	fmt.Fprintln(w, "  check <csv> <id>                  Toggle the checked flag")
	fmt.Fprintln(w, "  csv <csv>                         Re-export every record as UTF-8")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "set and check print the update for the source table as JSON and")
	fmt.Fprintf(w, "write the records to -o (default: %s next to the input).\n", problem.DefaultExportName)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output CSV")
	fmt.Fprintln(w, "      --raw                 Dump the record structure (show)")
	fmt.Fprintln(w, "      --table <name>        Record table profile")
	fmt.Fprintln(w, "  -e, --encoding <s>        CSV encoding: utf-8, windows-1251, koi8-r")
	fmt.Fprintln(w, "      --images <file>       YAML map from image name to uploaded URL")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tables: %s\n", strings.Join(problem.TableNames(), ", "))
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathcraft serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Serve POST %s {\"latex\": ..., \"options\": {...}} backed by pandoc.\n", convertLatexPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintf(w, "  -a, --addr <addr>         Listen address (default: %s)\n", defaultServeAddr)
	fmt.Fprintln(w, "      --pandoc <path>       pandoc binary")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathcraft doctor [--json] [--pandoc <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome (PDF export), pandoc (remote mode, serve) and the system.")
}

// runHelp prints help for a command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "review":
		printReviewUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mathcraft version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mathcraft help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
