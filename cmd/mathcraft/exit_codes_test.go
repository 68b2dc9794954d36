package main

// Notes:
// - exitCodeFor: we test the sentinel errors of every package the CLI calls,
//   plus wrapped errors to verify the errors.Is() chain works correctly.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	mathcraft "github.com/noirdeleroi/math-problem-craft"
	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/mathjax"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", mathcraft.ErrBrowserConnect, ExitBrowser},
		{"page create", mathcraft.ErrPageCreate, ExitBrowser},
		{"page load", mathcraft.ErrPageLoad, ExitBrowser},
		{"pdf generation", mathcraft.ErrPDFGeneration, ExitBrowser},
		{"typeset timeout", mathcraft.ErrTypesetTimeout, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", mathcraft.ErrBrowserConnect), ExitBrowser},

		// Conversion service errors (exit 5)
		{"pandoc not found", remote.ErrPandocNotFound, ExitService},
		{"pandoc failed", remote.ErrPandocFailed, ExitService},
		{"remote failed", remote.ErrConversionFailed, ExitService},
		{"bad response", remote.ErrBadResponse, ExitService},
		{"pandoc error", &remote.PandocError{Stderr: "boom", Err: remote.ErrPandocFailed}, ExitService},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"invalid workers", ErrInvalidWorkerCount, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"invalid delimiter", mathjax.ErrInvalidDelimiter, ExitUsage},
		{"invalid tags", mathjax.ErrInvalidTags, ExitUsage},
		{"invalid script url", mathjax.ErrInvalidScriptURL, ExitUsage},
		{"empty sheet", mathcraft.ErrEmptySheet, ExitUsage},
		{"invalid mode", mathcraft.ErrInvalidMode, ExitUsage},
		{"remote not configured", mathcraft.ErrRemoteNotConfig, ExitUsage},
		{"invalid page size", mathcraft.ErrInvalidPageSize, ExitUsage},
		{"invalid orientation", mathcraft.ErrInvalidOrientation, ExitUsage},
		{"invalid margin", mathcraft.ErrInvalidMargin, ExitUsage},
		{"style not found", mathcraft.ErrStyleNotFound, ExitUsage},
		{"invalid asset path", mathcraft.ErrInvalidAssetPath, ExitUsage},
		{"unknown field", problem.ErrUnknownField, ExitUsage},
		{"field not supported", problem.ErrFieldNotSupported, ExitUsage},
		{"problem not found", problem.ErrProblemNotFound, ExitUsage},
		{"unknown table", problem.ErrUnknownTable, ExitUsage},
		{"invalid id", problem.ErrInvalidID, ExitUsage},
		{"unknown encoding", problem.ErrUnknownEncoding, ExitUsage},
		{"missing id column", problem.ErrMissingIDColumn, ExitUsage},
		{"empty latex", remote.ErrEmptyLatex, ExitUsage},
		{"invalid format", remote.ErrInvalidFormat, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix convention compliance
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()
	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	for name, code := range map[string]int{"ExitIO": ExitIO, "ExitBrowser": ExitBrowser, "ExitService": ExitService} {
		if code >= 126 {
			t.Errorf("%s = %d, should be < 126", name, code)
		}
	}
}
