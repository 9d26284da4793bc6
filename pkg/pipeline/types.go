package pipeline

import (
	"time"

	"github.com/mikeboe/website-researcher/pkg/extractor"
	"github.com/mikeboe/website-researcher/pkg/scoper"
)

// ValueTier is the relevance judgment attached to a page's synthesis.
type ValueTier string

const (
	ValueYes      ValueTier = "yes"
	ValueNo       ValueTier = "no"
	ValueSomewhat ValueTier = "somewhat"
	ValueUnknown  ValueTier = "unknown"
)

// Synthesis holds the distilled findings for one page. Every captured page
// gets one: when the model response cannot be parsed, the value is
// ValueUnknown with a fixed failure summary, never an absent record.
type Synthesis struct {
	KeyPoints []string  `json:"key_points"`
	Quotes    []string  `json:"quotes"`
	Value     ValueTier `json:"value"`
	Summary   string    `json:"summary"`
}

// FailedSynthesis is the placeholder attached when synthesis produced no
// parseable result.
func FailedSynthesis() Synthesis {
	return Synthesis{
		KeyPoints: []string{},
		Quotes:    []string{},
		Value:     ValueUnknown,
		Summary:   "Synthesis failed",
	}
}

// PageResult pairs one page's extracted content with its plan metadata and
// synthesized findings.
type PageResult struct {
	extractor.PageContent
	Priority  scoper.Priority `json:"priority"`
	Reason    string          `json:"reason"`
	Timestamp time.Time       `json:"timestamp"`
	Synthesis Synthesis       `json:"synthesis"`
}

// State is the mutable run-scoped record owned exclusively by the pipeline.
// Once Complete is true it becomes immutable input to the report assembler.
type State struct {
	Plan        *scoper.Plan `json:"plan"`
	PageIndex   int          `json:"page_index"`
	VisitedURLs []string     `json:"visited_urls"`
	Pages       []PageResult `json:"pages"`
	Screenshots []string     `json:"screenshots"`
	Downloads   []string     `json:"downloads"`
	Complete    bool         `json:"complete"`
}
