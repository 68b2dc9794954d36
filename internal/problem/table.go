package problem

import (
	"fmt"
	"sort"
)

// DefaultTableName is the table reviewed when none is configured.
const DefaultTableName = "problems_oge_100"

// IDKind is how a table stores question_id.
type IDKind int

const (
	IDText    IDKind = iota // question_id is a string column
	IDNumeric               // question_id is an integer column
)

// CheckedEncoding is how a table stores the checked flag.
type CheckedEncoding int

const (
	CheckedBool  CheckedEncoding = iota // boolean column
	CheckedDigit                        // text column holding "1" or "0"
)

// Table describes one source table of problem records.
type Table struct {
	Name string

	// Editable lists the fields edits may touch. Nil allows every field.
	Editable []FieldKey

	ID      IDKind
	Checked CheckedEncoding

	// TracksCorrected is true when edits also set corrected.
	TracksCorrected bool
}

// Allows reports whether edits to f are accepted by the table.
func (t Table) Allows(f FieldKey) bool {
	if t.Editable == nil {
		return true
	}
	for _, e := range t.Editable {
		if e == f {
			return true
		}
	}
	return false
}

// encodeChecked returns the column value for the checked flag.
func (t Table) encodeChecked(v bool) any {
	if t.Checked == CheckedDigit {
		if v {
			return "1"
		}
		return "0"
	}
	return v
}

// tables holds the known table profiles by name.
var tables = map[string]Table{
	"problems_oge_100":         {Name: "problems_oge_100", TracksCorrected: true},
	"OGE_SHFIPI_problems_1_25": {Name: "OGE_SHFIPI_problems_1_25", TracksCorrected: true},
	"new_problems_by_skills_1": {Name: "new_problems_by_skills_1", TracksCorrected: true},
	"new_problems_by_skills_2": {Name: "new_problems_by_skills_2", TracksCorrected: true},
	"math_skills_questions": {
		Name: "math_skills_questions",
		Editable: []FieldKey{
			FieldQuestionID, FieldProblemText, FieldSolutionText, FieldSolutionTextExpanded,
			FieldProblemImage, FieldAnswer, FieldCode, FieldDifficulty, FieldSkills,
			FieldProblemNumberType, FieldProblemLink, FieldComments,
			FieldOption1, FieldOption2, FieldOption3, FieldOption4,
		},
		TracksCorrected: true,
	},
	"ogemath_fipi_bank": {
		Name: "ogemath_fipi_bank",
		Editable: []FieldKey{
			FieldProblemText, FieldSolutionText, FieldSolutionTextExpanded, FieldProblemImage,
			FieldAnswer, FieldProblemNumberType, FieldProblemLink, FieldComments,
		},
		ID:      IDNumeric,
		Checked: CheckedDigit,
	},
	"egemathprof": {Name: "egemathprof", ID: IDNumeric, Checked: CheckedDigit, TracksCorrected: true},
	"egemathbase": {Name: "egemathbase", ID: IDNumeric, Checked: CheckedDigit, TracksCorrected: true},
}

// LookupTable returns the profile of the named table.
func LookupTable(name string) (Table, error) {
	t, ok := tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// TableNames returns the known table names, sorted.
func TableNames() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
