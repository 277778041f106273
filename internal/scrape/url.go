package scrape

import (
	"net/url"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// NormalizeURL trims raw and prefixes https:// when it carries no scheme.
// It reports false for empty and placeholder ("N/A") values.
func NormalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, model.Placeholder) {
		return "", false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw, true
}

// Domain returns the host of a website with any leading "www." removed.
// Scheme-less input is accepted. Returns "" when no host can be derived.
func Domain(raw string) string {
	normalized, ok := NormalizeURL(raw)
	if !ok {
		return ""
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// SectionForURL picks the keyword set used to score a secondary page.
func SectionForURL(link string) model.SectionType {
	lower := strings.ToLower(link)
	switch {
	case strings.Contains(lower, "about"):
		return model.SectionAbout
	case strings.Contains(lower, "contact"):
		return model.SectionContact
	default:
		return model.SectionTeam
	}
}
