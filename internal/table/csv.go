package table

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\ufeff"

// ReadCSV reads a CSV table. The first row is the header; rows may have a
// variable number of fields.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return Table{}, eris.New("table: csv is empty")
	}
	if err != nil {
		return Table{}, eris.Wrap(err, "table: read csv header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, eris.Wrap(err, "table: read csv row")
		}
		if isBlank(record) {
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// ReadCSVBytes is ReadCSV over an in-memory upload.
func ReadCSVBytes(b []byte) (Table, error) {
	return ReadCSV(bytes.NewReader(b))
}

// WriteCSV writes the header and every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "table: write csv header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return eris.Wrap(err, "table: write csv rows")
	}
	return nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
