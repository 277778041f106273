package leadsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 24)
	assert.Equal(t, Category{Label: "Real Estate", Keyword: "real estate agent OR realtor"}, cats[0])
	assert.Equal(t, "Graduations & Educational Milestones", cats[23].Label)

	seen := map[string]bool{}
	for _, c := range cats {
		assert.False(t, seen[c.Label], "duplicate label %s", c.Label)
		seen[c.Label] = true
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := Categories()
	cats[0].Label = "changed"
	assert.Equal(t, "Real Estate", Categories()[0].Label)
}

func TestLookupCategory(t *testing.T) {
	c, ok := LookupCategory("  health & wellness ")
	require.True(t, ok)
	assert.Equal(t, "health and wellness", c.Keyword)

	_, ok = LookupCategory("Astronaut")
	assert.False(t, ok)
}

func TestParseCategories_Invalid(t *testing.T) {
	_, err := parseCategories([]byte("- label: Broken\n"))
	assert.Error(t, err)

	_, err = parseCategories([]byte("not: [a list"))
	assert.Error(t, err)
}
