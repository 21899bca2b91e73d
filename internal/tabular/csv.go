package tabular

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// ParseCSV reads an entire CSV document into a Table. The first record
// is the header. Variable field counts and lazy quoting are tolerated
// since exports from different crawlers disagree on both.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "tabular: read csv")
	}

	return FromRecords(records)
}
