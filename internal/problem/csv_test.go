package problem

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseEncoding(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Encoding{
		"":             EncodingUTF8,
		"UTF8":         EncodingUTF8,
		"cp1251":       EncodingWindows1251,
		"Windows-1251": EncodingWindows1251,
		"koi8r":        EncodingKOI8R,
	} {
		got, err := ParseEncoding(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseEncoding("latin1")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := "\ufeffQuestion_ID,problem_text,extra,checked\n" +
		"1,\"$a,b$\",x,true\n" +
		"\n" +
		",,,\n" +
		"2,short\n"

	got, err := ReadCSV(strings.NewReader(input), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].QuestionID, "BOM must be stripped from the first header")
	assert.Equal(t, "$a,b$", got[0].ProblemText)
	assert.True(t, got[0].Checked)
	assert.Equal(t, Problem{QuestionID: "2", ProblemText: "short"}, got[1])
}

func TestReadCSV_Charsets(t *testing.T) {
	t.Parallel()

	const text = "Найдите значение выражения"
	plain := "question_id,problem_text\n7," + text + "\n"

	for _, tc := range []struct {
		enc   Encoding
		bytes func(string) (string, error)
	}{
		{enc: EncodingWindows1251, bytes: charmap.Windows1251.NewEncoder().String},
		{enc: EncodingKOI8R, bytes: charmap.KOI8R.NewEncoder().String},
	} {
		encoded, err := tc.bytes(plain)
		require.NoError(t, err)

		got, err := ReadCSV(strings.NewReader(encoded), tc.enc)
		require.NoError(t, err, tc.enc)
		require.Len(t, got, 1)
		assert.Equal(t, text, got[0].ProblemText, tc.enc)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("problem_text,answer\nx,y\n"), EncodingUTF8)
	assert.ErrorIs(t, err, ErrMissingIDColumn)

	_, err = ReadCSV(strings.NewReader(""), EncodingUTF8)
	assert.ErrorIs(t, err, ErrMissingIDColumn)

	_, err = ReadCSV(strings.NewReader("question_id\n1\n"), Encoding("ebcdic"))
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []Problem{
		{QuestionID: "1", ProblemText: "line one\nline \"two\"", Checked: true, Option1: "$1$"},
		{QuestionID: "2", Comments: "a, b", Corrected: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	header, _, _ := strings.Cut(buf.String(), "\n")
	assert.Equal(t, "question_id,number_id,problem_image,problem_text,answer,solution_text,"+
		"code,difficulty,solutiontextexpanded,skills,checked,corrected,problem_number_type,"+
		"problem_link,comments,option1,option2,option3,option4", header)

	out, err := ReadCSV(&buf, EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
