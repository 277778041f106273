package table

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// SheetName is the sheet written by WriteXLSX.
const SheetName = "Leads"

// ReadXLSX reads the first sheet of an XLSX file.
func ReadXLSX(path string) (Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Table{}, eris.Wrap(err, "table: open xlsx")
	}
	return fromWorkbook(f)
}

// ReadXLSXBytes reads the first sheet of an in-memory XLSX upload.
func ReadXLSXBytes(b []byte) (Table, error) {
	f, err := xlsx.OpenBinary(b)
	if err != nil {
		return Table{}, eris.Wrap(err, "table: open xlsx")
	}
	return fromWorkbook(f)
}

func fromWorkbook(f *xlsx.File) (Table, error) {
	if len(f.Sheets) == 0 {
		return Table{}, eris.New("table: xlsx has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return Table{}, eris.New("table: xlsx sheet is empty")
	}

	t := Table{Columns: rowToStrings(sheet.Rows[0])}
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if isBlank(cells) {
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// WriteXLSX writes the table as a single "Leads" sheet.
func WriteXLSX(w io.Writer, t Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "table: add sheet")
	}
	addRow(sheet, t.Columns)
	for _, r := range t.Rows {
		addRow(sheet, r)
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "table: write xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
