// Package tabular loads crawl-export tables from CSV and XLSX sources,
// local or remote, and exposes them as column-ordered row maps the SEO
// transform engine consumes.
package tabular

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is an in-memory spreadsheet tab: an ordered header and one
// string-valued map per data row. Missing trailing cells are empty
// strings, never absent keys.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// FromRecords builds a Table from raw records where the first record is
// the header. Header cells are trimmed; rows shorter than the header
// are padded with empty strings and longer rows are truncated.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.New("tabular: no header row")
	}

	header := make([]string, len(records[0]))
	for i, c := range records[0] {
		header[i] = strings.TrimSpace(c)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: header, Rows: rows}, nil
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ParseNumber attempts to read a cell as a float. Thousands separators
// and surrounding percent signs are tolerated since crawl exports mix
// raw counts with formatted values.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
