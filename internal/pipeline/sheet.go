package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
)

// ErrSheetRender indicates the sheet template failed to parse or execute.
var ErrSheetRender = errors.New("sheet template rendering failed")

// SheetData is the input of the sheet template.
type SheetData struct {
	Title    string
	Subtitle string
	Problems []SheetProblem
}

// SheetProblem is one rendered problem record.
type SheetProblem struct {
	ID      string
	Checked bool
	Fields  []SheetField
}

// SheetField is one rendered field. HTML is trusted output of the LaTeX or
// Markdown converters and is not escaped again.
type SheetField struct {
	Key   string
	Label string
	HTML  template.HTML
}

// SheetTemplate renders SheetData into a complete HTML document.
type SheetTemplate struct {
	tmpl *template.Template
}

// NewSheetTemplate parses tmplContent.
func NewSheetTemplate(tmplContent string) (*SheetTemplate, error) {
	tmpl, err := template.New("sheet").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSheetRender, err)
	}
	return &SheetTemplate{tmpl: tmpl}, nil
}

// Render executes the template.
func (s *SheetTemplate) Render(ctx context.Context, data *SheetData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if data == nil {
		data = &SheetData{}
	}
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSheetRender, err)
	}
	return buf.String(), nil
}
