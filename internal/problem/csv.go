package problem

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultExportName is the file name used when records are exported
// without an explicit destination.
const DefaultExportName = "updated_math_problems.csv"

// Encoding names a CSV character set.
type Encoding string

// Supported CSV character sets.
const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1251 Encoding = "windows-1251"
	EncodingKOI8R       Encoding = "koi8-r"
)

// ParseEncoding resolves an encoding name. An empty name means UTF-8.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "windows-1251", "cp1251":
		return EncodingWindows1251, nil
	case "koi8-r", "koi8r":
		return EncodingKOI8R, nil
	}
	return "", fmt.Errorf("%w: %q (must be utf-8, windows-1251, or koi8-r)", ErrUnknownEncoding, name)
}

func (e Encoding) decoder() (encoding.Encoding, error) {
	switch e {
	case "", EncodingUTF8:
		// Strips a leading byte order mark when present.
		return unicode.UTF8BOM, nil
	case EncodingWindows1251:
		return charmap.Windows1251, nil
	case EncodingKOI8R:
		return charmap.KOI8R, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, e)
}

// ReadCSV reads records from a CSV file with a header row.
//
// Columns are matched by header name, ignoring case; unknown columns are
// skipped and missing ones stay empty. Blank lines are skipped. Rows may be
// shorter than the header.
func ReadCSV(r io.Reader, enc Encoding) ([]Problem, error) {
	dec, err := enc.decoder()
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec.NewDecoder()))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingIDColumn)
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make([]FieldKey, len(header))
	hasID := false
	for i, name := range header {
		f, err := ParseField(name)
		if err != nil {
			continue
		}
		columns[i] = f
		if f == FieldQuestionID {
			hasID = true
		}
	}
	if !hasID {
		return nil, ErrMissingIDColumn
	}

	var problems []Problem
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if isBlankRow(row) {
			continue
		}

		var p Problem
		for i, value := range row {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			// Set only fails on unknown fields, which were filtered above.
			_ = p.Set(columns[i], value)
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// WriteCSV writes problems as UTF-8 CSV with every column, in AllFields
// order.
func WriteCSV(w io.Writer, problems []Problem) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(AllFields))
	for i, f := range AllFields {
		header[i] = string(f)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	row := make([]string, len(AllFields))
	for i := range problems {
		for j, f := range AllFields {
			v, _ := problems[i].Get(f)
			row[j] = v
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
