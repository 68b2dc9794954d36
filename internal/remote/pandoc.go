package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/noirdeleroi/math-problem-craft/internal/fileutil"
	"github.com/noirdeleroi/math-problem-craft/internal/process"
)

// Default pandoc settings applied when Options leaves a field unset.
const (
	DefaultFrom   = "latex"
	DefaultTo     = "html"
	DefaultBinary = "pandoc"
)

// formatName matches pandoc reader/writer names, including extension
// toggles such as "markdown-fancy_lists".
var formatName = regexp.MustCompile(`^[a-z][a-z0-9_]*([+-][a-z0-9_]+)*$`)

// Converter turns a LaTeX fragment into HTML.
type Converter interface {
	Convert(ctx context.Context, latex string, opts Options) (string, error)
}

// Options selects pandoc's formats and flags. Unset fields take the
// defaults: from latex, to html, with --mathjax, without --standalone.
type Options struct {
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	MathJax    *bool  `json:"mathjax,omitempty"`
	Standalone *bool  `json:"standalone,omitempty"`
}

// Bool returns a pointer to b, for filling Options.
func Bool(b bool) *bool {
	return &b
}

// Validate checks the format names.
func (o Options) Validate() error {
	for _, name := range []string{o.From, o.To} {
		if name != "" && !formatName.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidFormat, name)
		}
	}
	return nil
}

// Args returns the pandoc flags for o, defaults applied.
func (o Options) Args() []string {
	from, to := o.From, o.To
	if from == "" {
		from = DefaultFrom
	}
	if to == "" {
		to = DefaultTo
	}
	args := []string{"--from=" + from, "--to=" + to}
	if o.MathJax == nil || *o.MathJax {
		args = append(args, "--mathjax")
	}
	if o.Standalone != nil && *o.Standalone {
		args = append(args, "--standalone")
	}
	return args
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The child runs in its
// own process group, killed when ctx is done.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	process.Isolate(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// PandocConverter converts LaTeX by invoking the pandoc CLI.
type PandocConverter struct {
	Binary string
	Runner CommandRunner
}

var _ Converter = (*PandocConverter)(nil)

// NewPandocConverter creates a PandocConverter running binary, or "pandoc"
// from PATH when binary is empty.
func NewPandocConverter(binary string) *PandocConverter {
	if binary == "" {
		binary = DefaultBinary
	}
	return &PandocConverter{Binary: binary, Runner: ExecRunner{}}
}

// Convert writes latex to a temporary .tex file and runs pandoc on it.
// A non-zero exit is reported as a *PandocError carrying pandoc's stderr.
func (c *PandocConverter) Convert(ctx context.Context, latex string, opts Options) (string, error) {
	if latex == "" {
		return "", ErrEmptyLatex
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	path, cleanup, err := fileutil.WriteTempFile(latex, "tex")
	if err != nil {
		return "", err
	}
	defer cleanup()

	args := append(opts.Args(), path)
	stdout, stderr, err := c.Runner.Run(ctx, c.Binary, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %q", ErrPandocNotFound, c.Binary)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &PandocError{Stderr: stderr, Err: err}
	}
	return stdout, nil
}
