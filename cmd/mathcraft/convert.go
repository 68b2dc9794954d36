package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mathcraft "github.com/noirdeleroi/math-problem-craft"
	"github.com/noirdeleroi/math-problem-craft/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinArg selects standard input as the convert source.
const stdinArg = "-"

// runConvert converts one LaTeX fragment to HTML.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: convert takes at most one input, got %d", ErrUsage, len(positional))
	}

	cfg, err := loadConfig(env, flags.common.config, func(c *config.Config) {
		mergeRenderFlags(&flags.render, c)
	})
	if err != nil {
		return err
	}

	source := stdinArg
	if len(positional) == 1 {
		source = positional[0]
	}
	latex, err := readSource(source, env.Stdin)
	if err != nil {
		return err
	}

	logger := env.newLogger(&flags.common)
	opts, err := buildRendererOptions(cfg, logger)
	if err != nil {
		return err
	}
	renderer, err := mathcraft.NewRenderer(opts...)
	if err != nil {
		return err
	}
	defer renderer.Close()

	start := env.Now()
	html, err := renderer.RenderField(ctx, latex, "")
	if err != nil {
		return err
	}
	logger.Debug("converted fragment", "source", source, "mode", cfg.Render.Mode, "elapsed", env.Now().Sub(start))

	if flags.output == "" {
		if _, err := io.WriteString(env.Stdout, html); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		if !strings.HasSuffix(html, "\n") {
			fmt.Fprintln(env.Stdout)
		}
		return nil
	}

	if err := writeOutputFile(flags.output, []byte(html)); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Created %s\n", flags.output)
	}
	return nil
}

// readSource reads a file, or stdin for "-".
func readSource(source string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == stdinArg {
		if stdin == nil {
			return "", ErrNoInput
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source) // #nosec G304 -- user-provided path
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}

// writeOutputFile writes data to path, creating the parent directory.
func writeOutputFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err)
	}
	// #nosec G306 -- generated files are meant to be readable
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
