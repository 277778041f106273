package model

// SectionType selects the keyword set used when scoring a page's fragments.
type SectionType string

const (
	SectionGeneral SectionType = "general"
	SectionAbout   SectionType = "about"
	SectionTeam    SectionType = "team"
	SectionContact SectionType = "contact"
)

// FragmentType distinguishes headings from body content.
type FragmentType string

const (
	FragmentHeader  FragmentType = "header"
	FragmentContent FragmentType = "content"
)

// FragmentContext records where in the document a fragment came from.
type FragmentContext struct {
	Tag           string `json:"tag"`
	Classes       string `json:"classes"`
	ID            string `json:"id"`
	ParentTag     string `json:"parent_tag"`
	ParentClasses string `json:"parent_classes"`
	NearestHeader string `json:"nearest_header,omitempty"`
}

// Fragment is a scored, context-tagged piece of page text.
type Fragment struct {
	Text           string          `json:"text"`
	Type           FragmentType    `json:"type"`
	Context        FragmentContext `json:"context"`
	RelevanceScore int             `json:"relevance_score"`
}

// FetchResult is the outcome of fetching one site.
type FetchResult struct {
	Success        bool              `json:"success"`
	Content        string            `json:"content,omitempty"`
	StructuredData []map[string]any  `json:"structured_data,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	ScrapedURLs    []string          `json:"scraped_urls,omitempty"`
	Err            error             `json:"-"`
}

// ErrorMessage returns the failure text, or "" on success.
func (r *FetchResult) ErrorMessage() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
