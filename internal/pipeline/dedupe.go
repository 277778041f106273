package pipeline

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Dedupe drops leads whose (company name, website) pair was already seen.
// The first occurrence wins and order is kept.
func Dedupe(leads []model.Lead) []model.Lead {
	type key struct{ company, website string }
	seen := make(map[key]struct{}, len(leads))
	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		k := key{strings.TrimSpace(l.CompanyName), strings.TrimSpace(l.Website)}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}
