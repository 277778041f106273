package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultRelevantPaths mark links likely to lead to ownership or contact
// details.
var DefaultRelevantPaths = []string{
	"/about",
	"/contact",
	"/team",
	"/our-story",
	"/meet-the-team",
	"/about-us",
	"/contact-us",
	"/leadership",
	"/management",
}

// LinkMatcher selects same-site links whose href contains one of a set of
// path fragments. Matching is a case-insensitive substring test on the raw
// href.
type LinkMatcher struct {
	paths []string
}

// NewLinkMatcher creates a LinkMatcher. Falls back to DefaultRelevantPaths
// if none are provided.
func NewLinkMatcher(paths []string) *LinkMatcher {
	if len(paths) == 0 {
		paths = DefaultRelevantPaths
	}
	lowered := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return &LinkMatcher{paths: lowered}
}

// Paths returns the configured path fragments.
func (m *LinkMatcher) Paths() []string {
	return m.paths
}

// Matches reports whether href contains any configured fragment.
func (m *LinkMatcher) Matches(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range m.paths {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Discover returns up to limit distinct absolute URLs, in document order, for
// matching anchors on the same host as base. Hrefs are resolved against the
// origin of base.
func (m *LinkMatcher) Discover(doc *goquery.Document, base *url.URL, limit int) []string {
	if limit <= 0 {
		return nil
	}
	origin := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}

	var out []string
	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !m.Matches(href) {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		abs := origin.ResolveReference(ref)
		if abs.Host != base.Host {
			return true
		}
		link := abs.String()
		if seen[link] {
			return true
		}
		seen[link] = true
		out = append(out, link)
		return len(out) < limit
	})
	return out
}
