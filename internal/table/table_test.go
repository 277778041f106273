package table

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func sampleEnriched() []model.EnrichedLead {
	return []model.EnrichedLead{
		{
			Lead: model.Lead{
				CompanyName:  "Acme, Inc.",
				FullAddress:  "1 Main St, Boston, MA",
				Town:         "Boston",
				Phone:        "(617) 555-0100",
				Website:      "https://acme.example",
				BusinessType: "Dentist",
			},
			Processed:           true,
			OwnerName:           "Jane Doe",
			OwnerTitle:          "Owner",
			Confidence:          model.ConfidenceHigh,
			ConfidenceReasoning: "Named on the \"About\" page",
			DiscoveredEmails:    []string{"info@acme.example"},
			PotentialEmails:     []string{"jane@acme.example", "jane.doe@acme.example"},
			KeyFacts:            []string{"Founded 1999", "Family owned"},
		},
		model.Unprocessed(model.Lead{CompanyName: "Nosite", Website: "N/A"}, ""),
	}
}

func TestFromEnriched_Columns(t *testing.T) {
	tbl := FromEnriched(sampleEnriched())
	assert.Equal(t, model.ResultColumns, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "True", tbl.Rows[0][6])
	assert.Equal(t, "False", tbl.Rows[1][6])
	assert.Equal(t, "none", tbl.Rows[1][10])
}

func TestCSV_RoundTrip(t *testing.T) {
	in := sampleEnriched()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, FromEnriched(in)))

	tbl, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, model.ResultColumns, tbl.Columns)

	out := tbl.ToEnriched()
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1].Row(), out[1].Row())
}

func TestXLSX_RoundTrip(t *testing.T) {
	in := FromEnriched(sampleEnriched())
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, in))

	got, err := ReadXLSXBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, in.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Acme, Inc.", got.Rows[0][0])
	assert.Equal(t, "jane@acme.example; jane.doe@acme.example", got.Rows[0][13])
}

func TestReadCSV_HeaderAndBlankRows(t *testing.T) {
	src := "\ufeffcompany_name,Website,phone\nA,a.com,1\n,,\nB,b.com\n"
	tbl, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"company_name", "Website", "phone"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)

	leads, err := LeadsFromTable(tbl)
	require.NoError(t, err)
	assert.Equal(t, model.Lead{CompanyName: "A", Website: "a.com", Phone: "1"}, leads[0])
	assert.Equal(t, model.Lead{CompanyName: "B", Website: "b.com"}, leads[1])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLeadsFromTable_MissingColumns(t *testing.T) {
	_, err := LeadsFromTable(Table{Columns: []string{"name", "url"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "company_name, Website")

	_, err = LeadsFromTable(Table{Columns: []string{"company_name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Website")
	assert.NotContains(t, err.Error(), "company_name,")
}

func TestLeadsFromTable_AllColumns(t *testing.T) {
	tbl := Table{
		Columns: []string{"Website", "company_name", "Business Type", "Phone", "phone", "town", "full_address", "extra"},
		Rows: [][]string{
			{" x.com ", " X ", "Lawyer", "111", "222", "Reno", "1 A St", "ignored"},
		},
	}
	leads, err := LeadsFromTable(tbl)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, model.Lead{
		CompanyName:  "X",
		FullAddress:  "1 A St",
		Town:         "Reno",
		Phone:        "111",
		Website:      "x.com",
		BusinessType: "Lawyer",
	}, leads[0])
}

func TestFromLeads(t *testing.T) {
	tbl := FromLeads([]model.Lead{{CompanyName: "A", Website: "a.com", Phone: "N/A"}})
	leads, err := LeadsFromTable(tbl)
	require.NoError(t, err)
	assert.Equal(t, "N/A", leads[0].Phone)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "processed_leads_20240309_140507.csv", Filename(PrefixProcessed, at, "csv"))
	assert.Equal(t, "generated_leads_20240309_140507.xlsx", Filename(PrefixGenerated, at, ".xlsx"))
}
