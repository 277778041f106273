package scrape

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const (
	headerSelector  = "h1, h2, h3, h4, h5, h6"
	contentSelector = "p, article, section, div"
)

// importantClasses each add 2 to a fragment's score when found in its class
// attribute.
var importantClasses = []string{
	"about", "contact", "team", "bio", "profile", "person",
	"founder", "ceo", "owner", "management", "leadership",
	"company", "mission", "vision", "values", "history",
}

// sectionKeywords each add 1 when found in the fragment text.
var sectionKeywords = map[model.SectionType][]string{
	model.SectionAbout:   {"about", "history", "story", "mission", "vision", "values"},
	model.SectionTeam:    {"founder", "ceo", "owner", "team", "leadership", "management"},
	model.SectionContact: {"contact", "email", "phone", "address", "reach"},
	model.SectionGeneral: nil,
}

var (
	wsRe        = regexp.MustCompile(`\s+`)
	blankLineRe = regexp.MustCompile(`\n\s*\n`)
)

// cleanText collapses whitespace runs and trims.
func cleanText(s string) string {
	s = wsRe.ReplaceAllString(s, " ")
	s = blankLineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func isHeaderTag(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// nearestHeaders maps every element to the last header that starts before
// it in document order. An element is never its own nearest header.
func nearestHeaders(doc *goquery.Document) map[*html.Node]*html.Node {
	out := make(map[*html.Node]*html.Node)
	var last *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if last != nil {
				out[n] = last
			}
			if isHeaderTag(n.Data) {
				last = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return out
}

func classString(s *goquery.Selection) string {
	attr, _ := s.Attr("class")
	return strings.Join(strings.Fields(attr), " ")
}

// scoreFragment computes the relevance of text with the given classes for a
// section type.
func scoreFragment(text, classes string, section model.SectionType) int {
	score := 0
	lowerClasses := strings.ToLower(classes)
	for _, c := range importantClasses {
		if strings.Contains(lowerClasses, c) {
			score += 2
		}
	}
	lowerText := strings.ToLower(text)
	for _, kw := range sectionKeywords[section] {
		if strings.Contains(lowerText, kw) {
			score++
		}
	}
	return score
}

// extractFragments scores headers then content elements of doc and keeps
// those with a positive score. The result is in discovery order; callers sort
// after merging pages.
func extractFragments(doc *goquery.Document, section model.SectionType) []model.Fragment {
	nearest := nearestHeaders(doc)
	var out []model.Fragment

	collect := func(selector string, typ model.FragmentType) {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			raw := s.Text()
			if strings.TrimSpace(raw) == "" {
				return
			}
			text := cleanText(raw)
			classes := classString(s)
			score := scoreFragment(text, classes, section)
			if score == 0 {
				return
			}

			id, _ := s.Attr("id")
			fctx := model.FragmentContext{
				Tag:     goquery.NodeName(s),
				Classes: classes,
				ID:      id,
			}
			if parent := s.Parent(); parent.Length() > 0 {
				fctx.ParentTag = goquery.NodeName(parent)
				fctx.ParentClasses = classString(parent)
			}
			if h, ok := nearest[s.Get(0)]; ok {
				fctx.NearestHeader = strings.TrimSpace(doc.FindNodes(h).Text())
			}

			out = append(out, model.Fragment{
				Text:           text,
				Type:           typ,
				Context:        fctx,
				RelevanceScore: score,
			})
		})
	}

	collect(headerSelector, model.FragmentHeader)
	collect(contentSelector, model.FragmentContent)
	return out
}

// sortFragments orders fragments by score, highest first, keeping discovery
// order among equal scores.
func sortFragments(frags []model.Fragment) {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].RelevanceScore > frags[j].RelevanceScore
	})
}
