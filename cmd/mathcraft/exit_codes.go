package main

import (
	"errors"
	"os"

	mathcraft "github.com/noirdeleroi/math-problem-craft"
	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/mathjax"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

// Exit codes for the mathcraft CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, records or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitService = 5 // Pandoc or conversion service errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mathcraft.ErrBrowserConnect) ||
		errors.Is(err, mathcraft.ErrPageCreate) ||
		errors.Is(err, mathcraft.ErrPageLoad) ||
		errors.Is(err, mathcraft.ErrTypesetTimeout) ||
		errors.Is(err, mathcraft.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Conversion service errors (exit 5)
	if errors.Is(err, remote.ErrPandocNotFound) ||
		errors.Is(err, remote.ErrPandocFailed) ||
		errors.Is(err, remote.ErrConversionFailed) ||
		errors.Is(err, remote.ErrBadResponse) {
		return ExitService
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mathjax.ErrInvalidDelimiter) ||
		errors.Is(err, mathjax.ErrInvalidTags) ||
		errors.Is(err, mathjax.ErrInvalidScriptURL) ||
		errors.Is(err, mathcraft.ErrEmptySheet) ||
		errors.Is(err, mathcraft.ErrInvalidMode) ||
		errors.Is(err, mathcraft.ErrRemoteNotConfig) ||
		errors.Is(err, mathcraft.ErrInvalidPageSize) ||
		errors.Is(err, mathcraft.ErrInvalidOrientation) ||
		errors.Is(err, mathcraft.ErrInvalidMargin) ||
		errors.Is(err, mathcraft.ErrStyleNotFound) ||
		errors.Is(err, mathcraft.ErrInvalidAssetPath) ||
		errors.Is(err, problem.ErrUnknownField) ||
		errors.Is(err, problem.ErrFieldNotSupported) ||
		errors.Is(err, problem.ErrProblemNotFound) ||
		errors.Is(err, problem.ErrUnknownTable) ||
		errors.Is(err, problem.ErrInvalidID) ||
		errors.Is(err, problem.ErrUnknownEncoding) ||
		errors.Is(err, problem.ErrMissingIDColumn) ||
		errors.Is(err, remote.ErrEmptyLatex) ||
		errors.Is(err, remote.ErrInvalidFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
