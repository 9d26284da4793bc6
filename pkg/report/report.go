// Package report renders a completed research run into a deterministic
// multi-section markdown document. Every section renders even when its
// input is empty; only the executive summary touches the model, and its
// failure degrades to a fixed sentence.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/website-researcher/pkg/pipeline"
)

// maxSummaryPages caps how many high-value pages feed the executive summary.
const maxSummaryPages = 5

// Report is the assembled document: its sections in render order and the
// path the markdown was written to.
type Report struct {
	Sections []string
	Path     string
}

type Assembler struct {
	llm       llms.Model
	outputDir string
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Assembler)

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func New(llm llms.Model, outputDir string, logger *slog.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assembler{llm: llm, outputDir: outputDir, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders the run state into the seven report sections and persists
// the document. The only error paths are file I/O; section content itself
// always renders.
func (a *Assembler) Assemble(ctx context.Context, state *pipeline.State) (*Report, error) {
	a.logger.Info("Assembling research report", "topic", state.Plan.Topic, "pages", len(state.Pages))

	sections := []string{
		a.header(state),
		a.executiveSummary(ctx, state),
		findings(state.Pages),
		pageAnalysis(state.Pages),
		resources(state.Screenshots, state.Downloads),
		citations(state.VisitedURLs, state.Pages),
		methodology(),
	}

	filename := fmt.Sprintf("research_report_%s_%s.md",
		SanitizeTopic(state.Plan.Topic), a.now().Format("20060102_150405"))
	path := filepath.Join(a.outputDir, filename)

	if err := os.WriteFile(path, []byte(strings.Join(sections, "\n\n")), 0o644); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	a.logger.Info("Report generated", "path", path)
	return &Report{Sections: sections, Path: path}, nil
}

func (a *Assembler) header(state *pipeline.State) string {
	return fmt.Sprintf(`# Deep Research Report: %s

**Generated**: %s
**Base URL**: %s
**Pages Explored**: %d
**Screenshots**: %d
**Files Downloaded**: %d
**Estimated Relevance**: %.0f%%

---`,
		state.Plan.Topic,
		a.now().Format("January 2, 2006 at 15:04"),
		state.Plan.BaseURL,
		len(state.Pages),
		len(state.Screenshots),
		len(state.Downloads),
		state.Plan.EstimatedRelevance*100)
}

func (a *Assembler) executiveSummary(ctx context.Context, state *pipeline.State) string {
	valuable := pagesWithValue(state.Pages, pipeline.ValueYes)
	if len(valuable) == 0 {
		return `## Executive Summary

No valuable content was found during the research. The explored pages may not have contained relevant information about the research topic.

---`
	}
	if len(valuable) > maxSummaryPages {
		valuable = valuable[:maxSummaryPages]
	}

	var digest strings.Builder
	for _, page := range valuable {
		points := page.Synthesis.KeyPoints
		if len(points) > 3 {
			points = points[:3]
		}
		fmt.Fprintf(&digest, "**%s**\n%s\nKey points: %s\n\n",
			page.Title, page.Synthesis.Summary, strings.Join(points, ", "))
	}

	prompt := fmt.Sprintf(`Based on the following research findings about "%s",
write a comprehensive 2-3 paragraph executive summary that:
1. Highlights the main discoveries
2. Synthesizes key themes across the sources
3. Provides actionable insights

Research Findings:
%s

Write a clear, professional executive summary:`, state.Plan.Topic, strings.TrimSpace(digest.String()))

	resp, err := a.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil || len(resp.Choices) == 0 {
		a.logger.Warn("Executive summary generation failed", "error", err)
		return `## Executive Summary

Research findings have been collected and organized in the sections below.

---`
	}

	return fmt.Sprintf("## Executive Summary\n\n%s\n\n---",
		strings.TrimSpace(resp.Choices[0].Content))
}

func findings(pages []pipeline.PageResult) string {
	high := pagesWithValue(pages, pipeline.ValueYes)
	medium := pagesWithValue(pages, pipeline.ValueSomewhat)

	if len(high) == 0 && len(medium) == 0 {
		return `## Key Findings

No significant findings were extracted from the explored pages.`
	}

	var b strings.Builder
	b.WriteString("## Key Findings\n")

	if len(high) > 0 {
		b.WriteString("\n### High-Value Discoveries\n\n")
		for i, page := range high {
			fmt.Fprintf(&b, "**%d. %s**\n", i+1, page.Title)
			fmt.Fprintf(&b, "*Source: [%s](%s)*\n\n", page.URL, page.URL)
			for _, point := range page.Synthesis.KeyPoints {
				fmt.Fprintf(&b, "- %s\n", point)
			}
			if len(page.Synthesis.KeyPoints) > 0 {
				b.WriteString("\n")
			}
			if len(page.Synthesis.Quotes) > 0 {
				b.WriteString("**Notable Quotes:**\n")
				quotes := page.Synthesis.Quotes
				if len(quotes) > 2 {
					quotes = quotes[:2]
				}
				for _, quote := range quotes {
					fmt.Fprintf(&b, "> %s\n\n", quote)
				}
			}
		}
	}

	if len(medium) > 0 {
		b.WriteString("\n### Additional Insights\n\n")
		for _, page := range medium {
			summary := page.Synthesis.Summary
			if summary == "" {
				summary = "No summary available"
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", page.Title, summary)
		}
	}

	b.WriteString("\n---")
	return b.String()
}

func pageAnalysis(pages []pipeline.PageResult) string {
	var b strings.Builder
	b.WriteString("## Detailed Page Analysis\n")

	if len(pages) == 0 {
		b.WriteString("\nNo pages were analyzed during this research.\n\n---")
		return b.String()
	}

	for i, page := range pages {
		fmt.Fprintf(&b, "\n### %d. %s\n", i+1, page.Title)
		fmt.Fprintf(&b, "**URL**: %s\n", page.URL)
		fmt.Fprintf(&b, "**Priority**: %s\n", strings.ToUpper(string(page.Priority)))
		fmt.Fprintf(&b, "**Content Length**: %d characters\n", page.Length)
		fmt.Fprintf(&b, "**Extraction Method**: %s\n", page.Method)
		fmt.Fprintf(&b, "**Value Assessment**: %s\n", page.Synthesis.Value)

		if page.Synthesis.Summary != "" {
			fmt.Fprintf(&b, "\n**Summary**: %s\n", page.Synthesis.Summary)
		}
		if len(page.Synthesis.KeyPoints) > 0 {
			b.WriteString("\n**Key Points:**\n")
			for _, point := range page.Synthesis.KeyPoints {
				fmt.Fprintf(&b, "- %s\n", point)
			}
		}
		if preview := page.Content; preview != "" {
			if len(preview) > 500 {
				preview = preview[:500]
			}
			fmt.Fprintf(&b, "\n**Content Preview:**\n```\n%s...\n```\n", preview)
		}
		b.WriteString("\n---\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func resources(screenshots, downloads []string) string {
	var b strings.Builder
	b.WriteString("## Resources Collected\n")

	if len(screenshots) > 0 {
		b.WriteString("\n### Screenshots\n\n")
		for _, path := range screenshots {
			fmt.Fprintf(&b, "- `%s`\n", filepath.Base(path))
		}
	}
	if len(downloads) > 0 {
		b.WriteString("\n### Downloaded Files\n\n")
		for _, path := range downloads {
			fmt.Fprintf(&b, "- `%s`\n", filepath.Base(path))
		}
	}
	if len(screenshots) == 0 && len(downloads) == 0 {
		b.WriteString("\nNo additional resources were collected during this research.\n")
	}

	b.WriteString("\n---")
	return b.String()
}

// citations lists every visited URL. URLs with a captured page get a value
// indicator; URLs whose page was never captured render as a bare link.
func citations(visitedURLs []string, pages []pipeline.PageResult) string {
	byURL := make(map[string]pipeline.PageResult, len(pages))
	for _, page := range pages {
		byURL[page.URL] = page
	}

	var b strings.Builder
	b.WriteString("## All Pages Visited\n\n")

	if len(visitedURLs) == 0 {
		b.WriteString("No pages were visited during this research.\n")
	}
	for i, url := range visitedURLs {
		if page, ok := byURL[url]; ok {
			fmt.Fprintf(&b, "%d. %s [%s](%s)\n", i+1, valueIndicator(page.Synthesis.Value), page.Title, url)
		} else {
			fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, url, url)
		}
	}

	b.WriteString("\n---")
	return b.String()
}

func valueIndicator(v pipeline.ValueTier) string {
	switch v {
	case pipeline.ValueYes:
		return "✅"
	case pipeline.ValueSomewhat:
		return "⚠️"
	}
	return "❌"
}

func methodology() string {
	return `## Research Methodology

This report was generated using an automated deep research agent with the following process:

1. **Scoping Phase**: The website was analyzed to identify relevant sections and pages related to the research topic. A language model assessed the site structure and created a prioritized exploration plan.

2. **Exploration Phase**: Each identified page was visited using browser automation. A state machine coordinated the workflow:
   - Navigate to page
   - Extract clean content (removing ads, navigation, etc.)
   - Collect resources (screenshots, downloadable files)
   - Synthesize findings using language-model analysis

3. **Synthesis Phase**: The model analyzed each page's content to extract:
   - Key points relevant to the research topic
   - Notable quotes and facts
   - Value assessment (high/medium/low relevance)

4. **Report Generation**: All findings were aggregated, organized by relevance, and formatted into this comprehensive report.

**Tools Used**:
- Browser Automation: Playwright MCP Server
- Content Extraction: Custom web extractor with accessibility snapshots
- AI Analysis: Google Gemini
- Workflow Orchestration: Per-page state machine

**Limitations**:
- Only pages within the specified website were explored
- Content extraction may miss dynamic or JavaScript-rendered content
- Model analysis is based on extracted text only, not visual elements
- Some pages may have been inaccessible due to authentication or rate limiting

---

*Report generated by Deep Website Research Agent*`
}

func pagesWithValue(pages []pipeline.PageResult, value pipeline.ValueTier) []pipeline.PageResult {
	var out []pipeline.PageResult
	for _, page := range pages {
		if page.Synthesis.Value == value {
			out = append(out, page)
		}
	}
	return out
}

// SanitizeTopic converts a research topic into a filename-safe slug:
// lower-cased, spaces become underscores, anything outside [a-z0-9_-] is
// dropped, capped at 50 characters.
func SanitizeTopic(topic string) string {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(strings.ToLower(topic), " ", "_") {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
