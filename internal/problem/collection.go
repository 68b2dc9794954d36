package problem

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Patch is the column update an edit produces, ready to be issued against
// the source table: UPDATE Table SET Values WHERE question_id = ID.
type Patch struct {
	Table  string         `json:"table"`
	ID     any            `json:"question_id"` // int64 for numeric tables, string otherwise
	Values map[string]any `json:"values"`
}

// String renders the patch as compact JSON.
func (p Patch) String() string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%s %v %v", p.Table, p.ID, p.Values)
	}
	return string(b)
}

// Collection is an ordered set of records from one table, indexed by
// question_id. It is not safe for concurrent use.
type Collection struct {
	table    Table
	problems []Problem
	index    map[string]int
}

// NewCollection indexes problems. When ids repeat, the first record wins
// lookups.
func NewCollection(t Table, problems []Problem) *Collection {
	c := &Collection{
		table:    t,
		problems: problems,
		index:    make(map[string]int, len(problems)),
	}
	for i, p := range problems {
		if _, dup := c.index[p.QuestionID]; !dup {
			c.index[p.QuestionID] = i
		}
	}
	return c
}

// Table returns the table profile of the collection.
func (c *Collection) Table() Table {
	return c.table
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.problems)
}

// All returns a copy of the records in their original order.
func (c *Collection) All() []Problem {
	out := make([]Problem, len(c.problems))
	copy(out, c.problems)
	return out
}

// Find returns the record with the given question_id.
func (c *Collection) Find(id string) (Problem, bool) {
	i, ok := c.index[id]
	if !ok {
		return Problem{}, false
	}
	return c.problems[i], true
}

// Update sets field f of record id to value.
//
// Fields the table does not accept fail with ErrFieldNotSupported and leave
// the record untouched. Boolean fields are stored as "true" or "false". On
// tables that track corrections the record is also marked corrected.
func (c *Collection) Update(id string, f FieldKey, value string) (Patch, error) {
	i, ok := c.index[id]
	if !ok {
		return Patch{}, fmt.Errorf("%w: %q", ErrProblemNotFound, id)
	}
	if !c.table.Allows(f) {
		return Patch{}, fmt.Errorf("%w: cannot update %s for table %s", ErrFieldNotSupported, f, c.table.Name)
	}
	patchID, err := c.patchID(id)
	if err != nil {
		return Patch{}, err
	}

	if IsBoolField(f) {
		value = formatBool(strings.EqualFold(strings.TrimSpace(value), "true"))
	}

	updated := c.problems[i]
	if err := updated.Set(f, value); err != nil {
		return Patch{}, err
	}

	values := map[string]any{string(f): value}
	if c.table.TracksCorrected {
		updated.Corrected = true
		values[string(FieldCorrected)] = true
	}

	c.problems[i] = updated
	if f == FieldQuestionID && value != id {
		delete(c.index, id)
		c.index[value] = i
	}

	return Patch{Table: c.table.Name, ID: patchID, Values: values}, nil
}

// ToggleChecked flips the checked flag of record id.
func (c *Collection) ToggleChecked(id string) (Patch, error) {
	i, ok := c.index[id]
	if !ok {
		return Patch{}, fmt.Errorf("%w: %q", ErrProblemNotFound, id)
	}
	patchID, err := c.patchID(id)
	if err != nil {
		return Patch{}, err
	}

	checked := !c.problems[i].Checked
	c.problems[i].Checked = checked

	return Patch{
		Table:  c.table.Name,
		ID:     patchID,
		Values: map[string]any{string(FieldChecked): c.table.encodeChecked(checked)},
	}, nil
}

// patchID converts id to the column type of the table.
func (c *Collection) patchID(id string) (any, error) {
	if c.table.ID != IDNumeric {
		return id, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrInvalidID, id)
	}
	return n, nil
}
