package scrape

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const fragmentRule = "--------------------------------------------------"

// formatContent renders the composite document handed to the analyzer.
// Metadata keys are written in sorted order.
func formatContent(frags []model.Fragment, metadata map[string]string, schema []map[string]any) string {
	var parts []string

	if len(metadata) > 0 {
		parts = append(parts, "### Page Metadata ###")
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+": "+metadata[k])
		}
		parts = append(parts, "\n")
	}

	if len(schema) > 0 {
		parts = append(parts, "### Structured Data ###")
		parts = append(parts, indentJSON(schema))
		parts = append(parts, "\n")
	}

	parts = append(parts, "### Main Content ###")
	for _, f := range frags {
		parts = append(parts,
			"\nElement Type: "+string(f.Type),
			"Context: "+indentJSON(f.Context),
			"Content:",
			f.Text,
			fragmentRule,
		)
	}

	return strings.Join(parts, "\n")
}

// indentJSON marshals v with two-space indentation and no HTML escaping.
func indentJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
