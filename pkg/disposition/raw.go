// Package disposition loads court disposition records from the raw
// extract, enriches them with offense codes and rolls them up into
// convictions.
package disposition

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RawFields are the columns of the court extract, in extract order.
var RawFields = []string{
	"case_number",
	"sequence_number",
	"st_address",
	"city_state",
	"zipcode",
	"ctlbkngno",
	"fgrprntno",
	"statepoliceid",
	"fbiidno",
	"dob",
	"arrest_date",
	"initial_date",
	"sex",
	"statute",
	"chrgdesc",
	"chrgtype",
	"chrgtype2",
	"chrgclass",
	"chrgdisp",
	"chrgdispdate",
	"ammndchargstatute",
	"ammndchrgdescr",
	"ammndchrgtype",
	"ammndchrgclass",
	"minsent",
	"maxsent",
	"amtoffine",
}

// Raw is one row of the court extract keyed by lower-cased column name.
type Raw map[string]string

// Get returns the value of a field, or "" when the column is absent.
func (raw Raw) Get(field string) string {
	return raw[field]
}

// Reader streams Raw rows from a CSV extract. Header names are matched
// case-insensitively, so "DOB" fills the dob field.
type Reader struct {
	csv    *csv.Reader
	header []string
	line   int
}

// NewReader reads the header row from r and returns a Reader positioned at
// the first record.
func NewReader(r io.Reader) (*Reader, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range header {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	return &Reader{csv: reader, header: header, line: 1}, nil
}

// Read returns the next row, or io.EOF when the extract is exhausted.
func (reader *Reader) Read() (Raw, error) {
	record, err := reader.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	reader.line++
	if err != nil {
		return nil, fmt.Errorf("failed to read line %d: %w", reader.line, err)
	}

	raw := make(Raw, len(reader.header))
	for i, name := range reader.header {
		if i < len(record) {
			raw[name] = record[i]
		}
	}
	return raw, nil
}

// ReadCSV reads every row of a CSV extract.
func ReadCSV(r io.Reader) ([]Raw, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	var rows []Raw
	for {
		raw, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, raw)
	}
}
