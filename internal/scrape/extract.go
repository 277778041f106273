package scrape

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractMetadata collects <meta> name/content pairs and the page title.
// A meta tag is keyed by its name attribute, or by property when name is
// absent. Later duplicates overwrite earlier ones.
func extractMetadata(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("name")
		if !ok {
			key, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if key != "" && content != "" {
			meta[key] = content
		}
	})
	if title := doc.Find("title").First(); title.Length() > 0 {
		meta["title"] = strings.TrimSpace(title.Text())
	}
	return meta
}

// extractStructuredData decodes every JSON-LD script block. Objects are
// appended as-is, arrays contribute their object elements, and anything that
// fails to decode is skipped.
func extractStructuredData(doc *goquery.Document) []map[string]any {
	var out []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return
		}
		switch data := v.(type) {
		case map[string]any:
			out = append(out, data)
		case []any:
			for _, item := range data {
				if obj, ok := item.(map[string]any); ok {
					out = append(out, obj)
				}
			}
		}
	})
	return out
}
