package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollection(t *testing.T, table string) *Collection {
	t.Helper()
	tbl, err := LookupTable(table)
	require.NoError(t, err)
	return NewCollection(tbl, []Problem{
		{QuestionID: "101", ProblemText: "$x+1=2$", Answer: "1"},
		{QuestionID: "102", ProblemText: "$2x=4$", Answer: "2", Checked: true},
	})
}

func TestLookupTable(t *testing.T) {
	t.Parallel()

	tbl, err := LookupTable("ogemath_fipi_bank")
	require.NoError(t, err)
	assert.Equal(t, IDNumeric, tbl.ID)
	assert.Equal(t, CheckedDigit, tbl.Checked)
	assert.False(t, tbl.TracksCorrected)
	assert.False(t, tbl.Allows(FieldCode))
	assert.True(t, tbl.Allows(FieldComments))

	tbl, err = LookupTable(DefaultTableName)
	require.NoError(t, err)
	assert.True(t, tbl.Allows(FieldCode))

	_, err = LookupTable("problems")
	assert.ErrorIs(t, err, ErrUnknownTable)

	names := TableNames()
	assert.Len(t, names, 8)
	assert.IsIncreasing(t, names)
}

func TestCollection_Find(t *testing.T) {
	t.Parallel()

	c := newTestCollection(t, DefaultTableName)
	assert.Equal(t, 2, c.Len())

	p, ok := c.Find("102")
	require.True(t, ok)
	assert.Equal(t, "2", p.Answer)

	_, ok = c.Find("999")
	assert.False(t, ok)
}

func TestCollection_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		table     string
		id        string
		field     FieldKey
		value     string
		wantPatch Patch
		wantErr   error
	}{
		{
			name:  "text field marks corrected",
			table: DefaultTableName,
			id:    "101",
			field: FieldAnswer,
			value: "one",
			wantPatch: Patch{
				Table:  DefaultTableName,
				ID:     "101",
				Values: map[string]any{"answer": "one", "corrected": true},
			},
		},
		{
			name:  "bool field normalized",
			table: DefaultTableName,
			id:    "101",
			field: FieldChecked,
			value: " TRUE ",
			wantPatch: Patch{
				Table:  DefaultTableName,
				ID:     "101",
				Values: map[string]any{"checked": "true", "corrected": true},
			},
		},
		{
			name:  "numeric id without corrected",
			table: "ogemath_fipi_bank",
			id:    "101",
			field: FieldSolutionText,
			value: "solved",
			wantPatch: Patch{
				Table:  "ogemath_fipi_bank",
				ID:     int64(101),
				Values: map[string]any{"solution_text": "solved"},
			},
		},
		{
			name:    "field not allowed",
			table:   "ogemath_fipi_bank",
			id:      "101",
			field:   FieldDifficulty,
			value:   "3",
			wantErr: ErrFieldNotSupported,
		},
		{
			name:    "unknown record",
			table:   DefaultTableName,
			id:      "404",
			field:   FieldAnswer,
			value:   "x",
			wantErr: ErrProblemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestCollection(t, tt.table)
			before, _ := c.Find(tt.id)

			patch, err := c.Update(tt.id, tt.field, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				after, _ := c.Find(tt.id)
				assert.Equal(t, before, after, "record must be unchanged on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPatch, patch)

			after, _ := c.Find(tt.id)
			got, err := after.Get(tt.field)
			require.NoError(t, err)
			if IsBoolField(tt.field) {
				assert.Equal(t, "true", got)
			} else {
				assert.Equal(t, tt.value, got)
			}
		})
	}
}

func TestCollection_Update_InvalidNumericID(t *testing.T) {
	t.Parallel()

	tbl, err := LookupTable("egemathbase")
	require.NoError(t, err)
	c := NewCollection(tbl, []Problem{{QuestionID: "A-1"}})

	_, err = c.Update("A-1", FieldAnswer, "2")
	assert.ErrorIs(t, err, ErrInvalidID)
	p, _ := c.Find("A-1")
	assert.Empty(t, p.Answer)
}

func TestCollection_Update_QuestionID(t *testing.T) {
	t.Parallel()

	c := newTestCollection(t, "math_skills_questions")
	_, err := c.Update("101", FieldQuestionID, "201")
	require.NoError(t, err)

	_, ok := c.Find("101")
	assert.False(t, ok)
	p, ok := c.Find("201")
	require.True(t, ok)
	assert.Equal(t, "1", p.Answer)
}

func TestCollection_ToggleChecked(t *testing.T) {
	t.Parallel()

	c := newTestCollection(t, DefaultTableName)
	patch, err := c.ToggleChecked("101")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"checked": true}, patch.Values)

	patch, err = c.ToggleChecked("102")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"checked": false}, patch.Values)

	digits := newTestCollection(t, "egemathprof")
	patch, err = digits.ToggleChecked("101")
	require.NoError(t, err)
	assert.Equal(t, int64(101), patch.ID)
	assert.Equal(t, map[string]any{"checked": "1"}, patch.Values)
	patch, err = digits.ToggleChecked("101")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"checked": "0"}, patch.Values)

	_, err = c.ToggleChecked("404")
	assert.ErrorIs(t, err, ErrProblemNotFound)
}

func TestCollection_All_IsCopy(t *testing.T) {
	t.Parallel()

	c := newTestCollection(t, DefaultTableName)
	all := c.All()
	all[0].Answer = "changed"

	p, _ := c.Find("101")
	assert.Equal(t, "1", p.Answer)
}

func TestPatch_String(t *testing.T) {
	t.Parallel()

	p := Patch{Table: "egemathbase", ID: int64(5), Values: map[string]any{"checked": "1"}}
	assert.JSONEq(t, `{"table":"egemathbase","question_id":5,"values":{"checked":"1"}}`, p.String())
}
