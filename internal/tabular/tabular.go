// Package tabular converts a spreadsheet-style text dump into ordered row
// mappings. The first row is the header; headers are matched
// case-insensitively by lowercasing them once up front.
package tabular

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// ParseError reports a malformed dump: no data rows, or a row whose column
// count disagrees with the header.
type ParseError struct {
	Row int
	Msg string
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("tabular: row %d: %s", e.Row, e.Msg)
	}
	return "tabular: " + e.Msg
}

// Row is one data row keyed by lowercased header name. Headers preserves the
// column order of the dump, which downstream posting detection relies on.
type Row struct {
	Headers []string
	values  map[string]string
}

// Get returns the raw cell under the given header, "" for blank cells and
// unknown headers.
func (r Row) Get(header string) string {
	return r.values[strings.ToLower(header)]
}

// Parse reads a tab-delimited block, first row headers, into rows. Cells are
// raw strings; blank cells come back as "".
func Parse(dump string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(dump))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	// column-count checking is done below so the error can carry a row number
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	if len(records) == 0 {
		return nil, &ParseError{Msg: "empty dump"}
	}
	headers := make([]string, len(records[0]))
	for i, header := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}
	if len(records) == 1 {
		return nil, &ParseError{Msg: "no data rows"}
	}
	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, &ParseError{
				Row: i + 1,
				Msg: fmt.Sprintf("expected %d columns, got %d", len(headers), len(record)),
			}
		}
		values := make(map[string]string, len(headers))
		for j, header := range headers {
			values[header] = strings.TrimSpace(record[j])
		}
		rows = append(rows, Row{Headers: headers, values: values})
	}
	return rows, nil
}
