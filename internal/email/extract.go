// Package email finds literal email addresses in page text and proposes
// likely addresses for a business domain.
package email

import (
	"regexp"
	"sort"
	"strings"
)

const addrPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

var patterns = []*regexp.Regexp{
	regexp.MustCompile(addrPattern),
	regexp.MustCompile(`mailto:` + addrPattern),
	regexp.MustCompile(`data-email=["']` + addrPattern + `["']`),
	regexp.MustCompile(`email:["']?` + addrPattern + `["']?`),
}

var artifactRe = regexp.MustCompile(`^mailto:|^email:|^data-email=|["']`)

// Extract returns every distinct address found in text, sorted.
func Extract(text string) []string {
	seen := make(map[string]struct{})
	for _, re := range patterns {
		for _, m := range re.FindAllString(text, -1) {
			seen[artifactRe.ReplaceAllString(m, "")] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for addr := range seen {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Merge appends the addresses of extra not already present in base,
// ignoring blanks and case when comparing.
func Merge(base []string, extra ...[]string) []string {
	seen := make(map[string]bool, len(base))
	out := make([]string, 0, len(base))
	add := func(s string) {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, s)
	}
	for _, s := range base {
		add(s)
	}
	for _, list := range extra {
		for _, s := range list {
			add(s)
		}
	}
	return out
}
