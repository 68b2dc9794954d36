package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/k0kubun/pp"
	"github.com/mattn/go-runewidth"

	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
)

// listTextWidth is the display width of the problem text column.
const listTextWidth = 60

// reviewSession holds one loaded CSV file for a review subcommand.
type reviewSession struct {
	path  string
	flags *reviewFlags
	cfg   *config.Config
	coll  *problem.Collection
	env   *Environment
}

// runReview dispatches review subcommands over a CSV file of records.
func runReview(args []string, env *Environment) error {
	flags, positional, err := parseReviewFlags(args, env)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) < 2 {
		printReviewUsage(env.Stderr)
		return fmt.Errorf("%w: review needs a subcommand and a CSV file", ErrUsage)
	}
	sub, path, rest := positional[0], positional[1], positional[2:]

	cfg, err := loadConfig(env, flags.common.config, func(c *config.Config) {
		mergeRecordFlags(&flags.records, c)
	})
	if err != nil {
		return err
	}
	s, err := openReviewSession(path, flags, cfg, env)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		return s.list(rest)
	case "show":
		return s.show(rest)
	case "set":
		return s.set(rest)
	case "check":
		return s.check(rest)
	case "csv":
		return s.export(rest)
	default:
		return fmt.Errorf("%w: review %s", ErrUnknownCommand, sub)
	}
}

func openReviewSession(path string, flags *reviewFlags, cfg *config.Config, env *Environment) (*reviewSession, error) {
	enc, err := problem.ParseEncoding(cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}
	table, err := lookupTable(cfg)
	if err != nil {
		return nil, err
	}
	problems, err := readProblems(path, enc)
	if err != nil {
		return nil, err
	}
	images, err := loadImageMap(cfg.Input.Images)
	if err != nil {
		return nil, fmt.Errorf("%w: image map: %w", ErrReadInput, err)
	}
	for i := range problems {
		problems[i] = problem.ApplyImageMap(problems[i], images)
	}
	return &reviewSession{
		path:  path,
		flags: flags,
		cfg:   cfg,
		coll:  problem.NewCollection(table, problems),
		env:   env,
	}, nil
}

// list prints one line per record: id, review flags and the start of the
// problem text.
func (s *reviewSession) list(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: review list takes no arguments", ErrUsage)
	}
	tw := tabwriter.NewWriter(s.env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHECKED\tCORRECTED\tTEXT")
	for _, p := range s.coll.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.QuestionID, mark(p.Checked), mark(p.Corrected), excerpt(p.ProblemText))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !s.flags.common.quiet {
		fmt.Fprintf(s.env.Stderr, "%d problems in %s (%s)\n", s.coll.Len(), s.path, s.coll.Table().Name)
	}
	return nil
}

// show prints the display fields of one record, or its structure with --raw.
func (s *reviewSession) show(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: review show needs a question id", ErrUsage)
	}
	p, ok := s.coll.Find(args[0])
	if !ok {
		return fmt.Errorf("%w: %q", problem.ErrProblemNotFound, args[0])
	}

	if s.flags.raw {
		_, err := pp.Fprintln(s.env.Stdout, p)
		return err
	}

	for _, f := range problem.DisplayFields(&p) {
		value, err := p.Get(f)
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		fmt.Fprintf(s.env.Stdout, "%s:\n%s\n\n", f, indent(value))
	}
	fmt.Fprintf(s.env.Stdout, "checked: %s  corrected: %s\n", mark(p.Checked), mark(p.Corrected))
	return nil
}

// set edits one field and writes the updated records.
func (s *reviewSession) set(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: review set needs <id> <field> <value>", ErrUsage)
	}
	field, err := problem.ParseField(args[1])
	if err != nil {
		return err
	}
	patch, err := s.coll.Update(args[0], field, args[2])
	if err != nil {
		return err
	}
	return s.commit(patch)
}

// check toggles the checked flag of one record and writes the updated
// records.
func (s *reviewSession) check(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: review check needs a question id", ErrUsage)
	}
	patch, err := s.coll.ToggleChecked(args[0])
	if err != nil {
		return err
	}
	return s.commit(patch)
}

// export writes every record as UTF-8 CSV.
func (s *reviewSession) export(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: review csv takes no arguments", ErrUsage)
	}
	return s.write()
}

// commit prints the patch for the source table and writes the records.
func (s *reviewSession) commit(patch problem.Patch) error {
	fmt.Fprintln(s.env.Stdout, patch.String())
	return s.write()
}

func (s *reviewSession) write() error {
	var buf bytes.Buffer
	if err := problem.WriteCSV(&buf, s.coll.All()); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	out := s.outputPath()
	if err := writeOutputFile(out, buf.Bytes()); err != nil {
		return err
	}
	if !s.flags.common.quiet {
		fmt.Fprintf(s.env.Stderr, "Wrote %d problems to %s\n", s.coll.Len(), out)
	}
	return nil
}

// outputPath returns -o, or the default export name next to the input.
func (s *reviewSession) outputPath() string {
	if s.flags.output != "" {
		return s.flags.output
	}
	dir := s.cfg.Output.DefaultDir
	if dir == "" {
		dir = filepath.Dir(s.path)
	}
	return filepath.Join(dir, problem.DefaultExportName)
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

// excerpt flattens text to one line that fits the list column.
func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(text, listTextWidth, "...")
}

func indent(text string) string {
	var b strings.Builder
	for i, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  ")
		b.WriteString(line)
	}
	return b.String()
}
