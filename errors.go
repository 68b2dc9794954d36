package mathcraft

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptySheet      = errors.New("sheet has no problems")
	ErrPDFGeneration   = errors.New("PDF generation failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrTypesetTimeout  = errors.New("MathJax typesetting did not finish")
	ErrInvalidMode     = errors.New("invalid render mode")
	ErrRemoteNotConfig = errors.New("remote mode requires a conversion service")
	ErrPoolClosed      = errors.New("renderer pool is closed")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
