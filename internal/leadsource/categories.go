package leadsource

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// Category maps a business-type label to its search keyword.
type Category struct {
	Label   string `yaml:"label" json:"label"`
	Keyword string `yaml:"keyword" json:"keyword"`
}

var (
	loadOnce   sync.Once
	categories []Category
	loadErr    error
)

func parseCategories(data []byte) ([]Category, error) {
	var out []Category
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "leadsource: parse categories")
	}
	for i, c := range out {
		if strings.TrimSpace(c.Label) == "" || strings.TrimSpace(c.Keyword) == "" {
			return nil, eris.Errorf("leadsource: category %d is missing a label or keyword", i)
		}
	}
	return out, nil
}

// Categories returns the built-in presets in display order.
func Categories() []Category {
	loadOnce.Do(func() {
		categories, loadErr = parseCategories(categoriesYAML)
	})
	if loadErr != nil {
		panic(loadErr)
	}
	return append([]Category(nil), categories...)
}

// LookupCategory finds a preset by label, ignoring case and surrounding
// whitespace.
func LookupCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Categories() {
		if strings.EqualFold(c.Label, label) {
			return c, true
		}
	}
	return Category{}, false
}
