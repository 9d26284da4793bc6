package scoper

// Priority ranks how important a page is to the research topic.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PageTask is one page selected for exploration. Immutable; consumed in
// order by the research pipeline.
type PageTask struct {
	URL      string   `json:"url"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason"`
}

// Plan is the ranked, capped set of pages chosen for a research run.
// Created once by the scoper and read-only afterward.
// Invariant: 1 <= len(Pages) <= MaxPages.
type Plan struct {
	BaseURL  string     `json:"base_url"`
	Topic    string     `json:"topic"`
	MaxPages int        `json:"max_pages"`
	Pages    []PageTask `json:"pages_to_explore"`

	// EstimatedRelevance is model-asserted with no independent
	// verification. Display-only; never gates pipeline execution.
	EstimatedRelevance float64  `json:"estimated_relevance"`
	KeySections        []string `json:"key_sections"`
}

// Link is an outbound link found on the homepage, tagged with where in the
// document it appeared.
type Link struct {
	Text    string `json:"text"`
	URL     string `json:"url"`
	Context string `json:"context"` // nav|header|footer|content
}

// Heading is a document heading found on the homepage.
type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type pageStructure struct {
	Title    string    `json:"title"`
	Links    []Link    `json:"links"`
	Headings []Heading `json:"headings"`
}
