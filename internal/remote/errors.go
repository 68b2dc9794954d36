package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote conversion.
var (
	ErrEmptyLatex       = errors.New("LaTeX content is required")
	ErrInvalidFormat    = errors.New("invalid pandoc format name")
	ErrPandocNotFound   = errors.New("pandoc executable not found")
	ErrPandocFailed     = errors.New("pandoc conversion failed")
	ErrConversionFailed = errors.New("remote conversion failed")
	ErrBadResponse      = errors.New("unexpected response from conversion service")
)

// PandocError carries the diagnostics pandoc wrote when it exited non-zero.
type PandocError struct {
	Stderr string
	Err    error
}

func (e *PandocError) Error() string {
	return fmt.Sprintf("%v: %s", ErrPandocFailed, e.Stderr)
}

func (e *PandocError) Unwrap() []error {
	return []error{ErrPandocFailed, e.Err}
}
