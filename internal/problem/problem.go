// Package problem models the math-problem records reviewed by mathcraft:
// their fields, the database tables they come from, edits and CSV files.
package problem

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for record operations.
var (
	ErrUnknownField      = errors.New("unknown field")
	ErrFieldNotSupported = errors.New("field not supported by table")
	ErrProblemNotFound   = errors.New("problem not found")
	ErrUnknownTable      = errors.New("unknown table")
	ErrInvalidID         = errors.New("invalid question id")
	ErrUnknownEncoding   = errors.New("unknown CSV encoding")
	ErrMissingIDColumn   = errors.New("CSV header has no question_id column")
)

// FieldKey names a record column as stored in the database and in CSV files.
type FieldKey string

// Record columns.
const (
	FieldQuestionID           FieldKey = "question_id"
	FieldNumberID             FieldKey = "number_id"
	FieldProblemImage         FieldKey = "problem_image"
	FieldProblemText          FieldKey = "problem_text"
	FieldAnswer               FieldKey = "answer"
	FieldSolutionText         FieldKey = "solution_text"
	FieldCode                 FieldKey = "code"
	FieldDifficulty           FieldKey = "difficulty"
	FieldSolutionTextExpanded FieldKey = "solutiontextexpanded"
	FieldSkills               FieldKey = "skills"
	FieldChecked              FieldKey = "checked"
	FieldCorrected            FieldKey = "corrected"
	FieldProblemNumberType    FieldKey = "problem_number_type"
	FieldProblemLink          FieldKey = "problem_link"
	FieldComments             FieldKey = "comments"
	FieldOption1              FieldKey = "option1"
	FieldOption2              FieldKey = "option2"
	FieldOption3              FieldKey = "option3"
	FieldOption4              FieldKey = "option4"
)

// AllFields lists every column in CSV export order.
var AllFields = []FieldKey{
	FieldQuestionID,
	FieldNumberID,
	FieldProblemImage,
	FieldProblemText,
	FieldAnswer,
	FieldSolutionText,
	FieldCode,
	FieldDifficulty,
	FieldSolutionTextExpanded,
	FieldSkills,
	FieldChecked,
	FieldCorrected,
	FieldProblemNumberType,
	FieldProblemLink,
	FieldComments,
	FieldOption1,
	FieldOption2,
	FieldOption3,
	FieldOption4,
}

// Review layouts. The link layout is used when a record carries source or
// reviewer information.
var (
	baseDisplayFields = []FieldKey{
		FieldQuestionID,
		FieldProblemImage,
		FieldProblemText,
		FieldAnswer,
		FieldSolutionText,
		FieldSolutionTextExpanded,
		FieldCode,
		FieldDifficulty,
		FieldSkills,
	}
	linkDisplayFields = []FieldKey{
		FieldQuestionID,
		FieldProblemLink,
		FieldComments,
		FieldProblemImage,
		FieldProblemText,
		FieldAnswer,
		FieldSolutionText,
		FieldSolutionTextExpanded,
		FieldProblemNumberType,
		FieldCode,
		FieldDifficulty,
	}
)

// ParseField resolves a column name, ignoring case and surrounding spaces.
func ParseField(name string) (FieldKey, error) {
	key := FieldKey(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range AllFields {
		if f == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// IsBoolField reports whether f holds a boolean flag.
func IsBoolField(f FieldKey) bool {
	return f == FieldChecked || f == FieldCorrected
}

// IsLatexField reports whether f holds LaTeX text rendered through the
// converter.
func IsLatexField(f FieldKey) bool {
	switch f {
	case FieldProblemText, FieldAnswer, FieldSolutionText, FieldSolutionTextExpanded,
		FieldOption1, FieldOption2, FieldOption3, FieldOption4:
		return true
	}
	return false
}

// Problem is one math-problem record.
type Problem struct {
	QuestionID           string
	NumberID             string
	ProblemImage         string // comma-separated image names or URLs
	ProblemText          string
	Answer               string
	SolutionText         string
	Code                 string
	Difficulty           string
	SolutionTextExpanded string
	Skills               string
	Checked              bool
	Corrected            bool
	ProblemNumberType    string
	ProblemLink          string
	Comments             string
	Option1              string
	Option2              string
	Option3              string
	Option4              string
}

// stringField returns a pointer to the text column f, or nil for boolean
// and unknown columns.
func (p *Problem) stringField(f FieldKey) *string {
	switch f {
	case FieldQuestionID:
		return &p.QuestionID
	case FieldNumberID:
		return &p.NumberID
	case FieldProblemImage:
		return &p.ProblemImage
	case FieldProblemText:
		return &p.ProblemText
	case FieldAnswer:
		return &p.Answer
	case FieldSolutionText:
		return &p.SolutionText
	case FieldCode:
		return &p.Code
	case FieldDifficulty:
		return &p.Difficulty
	case FieldSolutionTextExpanded:
		return &p.SolutionTextExpanded
	case FieldSkills:
		return &p.Skills
	case FieldProblemNumberType:
		return &p.ProblemNumberType
	case FieldProblemLink:
		return &p.ProblemLink
	case FieldComments:
		return &p.Comments
	case FieldOption1:
		return &p.Option1
	case FieldOption2:
		return &p.Option2
	case FieldOption3:
		return &p.Option3
	case FieldOption4:
		return &p.Option4
	}
	return nil
}

// Get returns the value of f as text. Boolean flags read "true" or "false".
func (p *Problem) Get(f FieldKey) (string, error) {
	switch f {
	case FieldChecked:
		return formatBool(p.Checked), nil
	case FieldCorrected:
		return formatBool(p.Corrected), nil
	}
	if s := p.stringField(f); s != nil {
		return *s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// Set assigns value to f. Boolean flags accept "true", "1" and "yes" in any
// case; everything else is false.
func (p *Problem) Set(f FieldKey, value string) error {
	switch f {
	case FieldChecked:
		p.Checked = parseBool(value)
		return nil
	case FieldCorrected:
		p.Corrected = parseBool(value)
		return nil
	}
	s := p.stringField(f)
	if s == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*s = value
	return nil
}

// Images splits ProblemImage into its trimmed, non-empty entries.
func (p *Problem) Images() []string {
	var out []string
	for _, img := range strings.Split(p.ProblemImage, ",") {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

// HasLinkInfo reports whether the record carries a source link, a number
// type or reviewer comments.
func (p *Problem) HasLinkInfo() bool {
	return p.ProblemLink != "" || p.ProblemNumberType != "" || p.Comments != ""
}

// DisplayFields returns the fields shown for p, in review order.
func DisplayFields(p *Problem) []FieldKey {
	src := baseDisplayFields
	if p.HasLinkInfo() {
		src = linkDisplayFields
	}
	out := make([]FieldKey, len(src))
	copy(out, src)
	return out
}

// ApplyImageMap returns a copy of p whose image entries are replaced by
// their uploaded locations. Entries missing from images are kept.
func ApplyImageMap(p Problem, images map[string]string) Problem {
	if len(images) == 0 || p.ProblemImage == "" {
		return p
	}
	if url, ok := images[p.ProblemImage]; ok {
		p.ProblemImage = url
		return p
	}

	entries := p.Images()
	changed := false
	for i, img := range entries {
		if url, ok := images[img]; ok {
			entries[i] = url
			changed = true
		}
	}
	if changed {
		p.ProblemImage = strings.Join(entries, ",")
	}
	return p
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
