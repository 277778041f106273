package email

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// rolePrefixes are proposed for every domain.
var rolePrefixes = []string{"info", "contact", "hello", "support", "sales"}

// Candidates proposes addresses at domain: the role mailboxes, then, when
// ownerName has at least two words, first, last, first.last, f+last and
// first+l built from the first and last words.
func Candidates(domain, ownerName string) []string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil
	}
	out := make([]string, 0, len(rolePrefixes)+5)
	for _, p := range rolePrefixes {
		out = append(out, p+"@"+domain)
	}

	parts := strings.Fields(foldASCII(strings.ToLower(ownerName)))
	if len(parts) < 2 {
		return out
	}
	first, last := parts[0], parts[len(parts)-1]
	fr, lr := []rune(first), []rune(last)
	return append(out,
		first+"@"+domain,
		last+"@"+domain,
		first+"."+last+"@"+domain,
		string(fr[0])+last+"@"+domain,
		first+string(lr[0])+"@"+domain,
	)
}

// foldASCII strips combining marks so "José" becomes "Jose".
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
