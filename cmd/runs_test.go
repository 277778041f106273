package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/leadsource"
	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestFormatRunsList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatRunsList(&buf, nil))
	assert.Equal(t, "No runs found.\n", buf.String())
}

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "0b5f3c1e-1111-2222-3333-444455556666",
			Source:    model.RunSourceUpload,
			Label:     "leads.csv",
			Total:     10,
			Processed: 8,
			Failed:    2,
			CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, formatRunsList(&buf, runs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "PROCESSED")
	assert.Contains(t, lines[1], "0b5f3c1e")
	assert.NotContains(t, lines[1], "1111")
	assert.Contains(t, lines[1], "upload")
	assert.Contains(t, lines[1], "leads.csv")
	assert.Contains(t, lines[1], "2025-03-04 09:30")
}

func TestFormatRunDetail(t *testing.T) {
	finished := time.Date(2025, 3, 4, 9, 35, 0, 0, time.UTC)
	run := &model.Run{
		ID:         "run-1",
		Source:     model.RunSourceGenerate,
		Label:      "dentist @ Austin, TX",
		Total:      2,
		Processed:  1,
		Failed:     1,
		CreatedAt:  finished.Add(-5 * time.Minute),
		FinishedAt: &finished,
	}
	rows := []model.EnrichedLead{
		{
			Lead:             model.Lead{CompanyName: "Smile Dental", Website: "https://smile.example"},
			Processed:        true,
			OwnerName:        "Jane Doe",
			Confidence:       model.ConfidenceHigh,
			DiscoveredEmails: []string{"jane@smile.example"},
		},
		model.Unprocessed(model.Lead{CompanyName: "Gone Co", Website: "https://gone.example"}, "fetch failed"),
	}

	var buf bytes.Buffer
	require.NoError(t, formatRunDetail(&buf, run, rows))
	out := buf.String()

	assert.Contains(t, out, "Run:      run-1")
	assert.Contains(t, out, "Finished: 2025-03-04T09:35:00Z")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "error: fetch failed")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abcdefgh", truncateID("abcdefgh-ijkl"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatCategories(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatCategories(&buf, leadsource.Categories()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 25)
	assert.Contains(t, lines[1], "Real Estate")
	assert.Contains(t, lines[1], "real estate agent OR realtor")
}
