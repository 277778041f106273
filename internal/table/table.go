// Package table reads uploaded lead tables and writes the enriched result
// table as CSV or XLSX.
package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ErrMissingColumns is returned when an input table lacks required columns.
var ErrMissingColumns = eris.New("missing required columns")

// RequiredColumns must be present in every uploaded lead table.
var RequiredColumns = []string{model.ColCompanyName, model.ColWebsite}

// Table is a header row plus string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// index maps each header to its first position.
func (t Table) index() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		c = strings.TrimSpace(c)
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}

// FromEnriched builds the result table in model.ResultColumns order.
func FromEnriched(rows []model.EnrichedLead) Table {
	t := Table{
		Columns: append([]string(nil), model.ResultColumns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.Row())
	}
	return t
}

// FromLeads builds a table of unenriched leads using the input column names.
func FromLeads(leads []model.Lead) Table {
	t := Table{
		Columns: []string{
			model.ColCompanyName,
			model.ColFullAddress,
			model.ColTown,
			model.ColPhone,
			model.ColWebsite,
			model.ColBusinessType,
		},
		Rows: make([][]string, 0, len(leads)),
	}
	for _, l := range leads {
		t.Rows = append(t.Rows, []string{l.CompanyName, l.FullAddress, l.Town, l.Phone, l.Website, l.BusinessType})
	}
	return t
}

// ToEnriched parses a result table back into records by column name.
func (t Table) ToEnriched() []model.EnrichedLead {
	idx := t.index()
	out := make([]model.EnrichedLead, 0, len(t.Rows))
	for _, row := range t.Rows {
		ordered := make([]string, len(model.ResultColumns))
		for i, col := range model.ResultColumns {
			if j, ok := idx[col]; ok && j < len(row) {
				ordered[i] = row[j]
			}
		}
		out = append(out, model.EnrichedLeadFromRow(ordered))
	}
	return out
}

// columnAliases lists accepted header spellings per lead field, first match
// wins.
var columnAliases = map[string][]string{
	model.ColCompanyName:  {model.ColCompanyName},
	model.ColFullAddress:  {model.ColFullAddress},
	model.ColTown:         {model.ColTown},
	model.ColPhone:        {model.ColPhone, "phone"},
	model.ColWebsite:      {model.ColWebsite},
	model.ColBusinessType: {model.ColBusinessType, "business_type"},
}

// LeadsFromTable converts an uploaded table into leads. The error names every
// missing required column.
func LeadsFromTable(t Table) ([]model.Lead, error) {
	idx := t.index()

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumns, "table: %s", strings.Join(missing, ", "))
	}

	pos := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		pos[field] = -1
		for _, a := range aliases {
			if i, ok := idx[a]; ok {
				pos[field] = i
				break
			}
		}
	}

	leads := make([]model.Lead, 0, len(t.Rows))
	for _, row := range t.Rows {
		cell := func(field string) string {
			i := pos[field]
			if i < 0 || i >= len(row) {
				return ""
			}
			return row[i]
		}
		leads = append(leads, model.CleanLead(model.Lead{
			CompanyName:  cell(model.ColCompanyName),
			FullAddress:  cell(model.ColFullAddress),
			Town:         cell(model.ColTown),
			Phone:        cell(model.ColPhone),
			Website:      cell(model.ColWebsite),
			BusinessType: cell(model.ColBusinessType),
		}))
	}
	return leads, nil
}

// Filename prefixes for exported tables.
const (
	PrefixProcessed = "processed_leads"
	PrefixGenerated = "generated_leads"
)

// Filename returns "<prefix>_<YYYYmmdd_HHMMSS>.<ext>".
func Filename(prefix string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}
