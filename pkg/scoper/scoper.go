// Package scoper analyzes a website's homepage and turns its link graph
// into a bounded, prioritized exploration plan for a research topic.
package scoper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/website-researcher/pkg/browser"
	"github.com/mikeboe/website-researcher/pkg/llmjson"
)

const (
	maxLinks              = 50
	maxHeadings           = 20
	maxFallbackCandidates = 30

	fallbackRelevance = 0.3
)

type Scoper struct {
	tools  browser.Tools
	llm    llms.Model
	logger *slog.Logger
}

func New(tools browser.Tools, llm llms.Model, logger *slog.Logger) *Scoper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scoper{tools: tools, llm: llm, logger: logger}
}

// Scope visits baseURL, reads its link and heading structure, and asks the
// model to select and rank the pages most relevant to topic. It always
// returns a valid plan with 1..maxPages tasks: on unparsable model output
// it degrades to a single-homepage plan rather than failing the run. Only
// a completion-transport failure is returned as an error.
func (s *Scoper) Scope(ctx context.Context, baseURL, topic string, maxPages int) (*Plan, error) {
	s.logger.Info("Scoping website", "url", baseURL, "topic", topic, "max_pages", maxPages)

	if err := s.tools.Navigate(ctx, baseURL); err != nil {
		// The homepage structure degrades to empty; the model may still
		// produce a plan, and the fallback plan covers the rest.
		s.logger.Warn("Homepage navigation failed", "url", baseURL, "error", err)
	}

	structure := s.readStructure(ctx, baseURL)
	s.logger.Info("Analyzed page structure", "links", len(structure.Links), "headings", len(structure.Headings))

	plan, err := s.buildPlan(ctx, baseURL, topic, structure, maxPages)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Scoping complete", "pages", len(plan.Pages), "estimated_relevance", plan.EstimatedRelevance)
	return plan, nil
}

// structureScript reads the page title, up to 50 outbound links with their
// surrounding context, and up to 20 headings.
const structureScript = `
(() => {
    const links = Array.from(document.querySelectorAll('a'))
        .filter(a => a.href && a.innerText)
        .filter(a => !a.href.includes('javascript:'))
        .filter(a => !a.href.includes('mailto:'))
        .filter(a => !a.href.includes('#'))
        .slice(0, 50)
        .map(a => ({
            text: a.innerText.trim().slice(0, 100),
            url: a.href,
            context: (a.closest('nav') ? 'nav' :
                     a.closest('header') ? 'header' :
                     a.closest('footer') ? 'footer' : 'content')
        }));

    const headings = Array.from(document.querySelectorAll('h1, h2, h3'))
        .map(h => ({ level: h.tagName, text: h.innerText.trim().slice(0, 100) }))
        .slice(0, 20);

    return JSON.stringify({ title: document.title, links: links, headings: headings });
})()
`

func (s *Scoper) readStructure(ctx context.Context, baseURL string) pageStructure {
	raw, err := s.tools.Evaluate(ctx, structureScript)
	if err != nil {
		s.logger.Warn("Structure script failed", "error", err)
		return pageStructure{}
	}

	var structure pageStructure
	if err := llmjson.Unmarshal(raw, &structure); err == nil && len(structure.Links) > 0 {
		if len(structure.Links) > maxLinks {
			structure.Links = structure.Links[:maxLinks]
		}
		if len(structure.Headings) > maxHeadings {
			structure.Headings = structure.Headings[:maxHeadings]
		}
		return structure
	}

	// Lossy but always-available path: scan the raw output for URL-shaped
	// substrings.
	s.logger.Warn("Structured extraction unavailable, scanning raw output for URLs")
	return pageStructure{Links: scanLinks(raw, baseURL)}
}

var (
	urlCandidatePattern = regexp.MustCompile(`https?://[^\s,'"}\]]+|/[^\s,'"}\]]+`)
	assetSuffixes       = []string{".jpg", ".png", ".gif", ".css", ".js"}
)

// scanLinks pulls URL-shaped substrings out of raw tool output. Candidates
// carry no link text and a content context; relative paths resolve against
// the base URL.
func scanLinks(raw, baseURL string) []Link {
	base, baseErr := url.Parse(baseURL)

	var links []Link
	for _, candidate := range urlCandidatePattern.FindAllString(raw, -1) {
		if len(links) >= maxFallbackCandidates {
			break
		}
		if hasAssetSuffix(candidate) {
			continue
		}
		if strings.HasPrefix(candidate, "/") {
			if baseErr != nil {
				continue
			}
			ref, err := url.Parse(candidate)
			if err != nil {
				continue
			}
			candidate = base.ResolveReference(ref).String()
		}
		links = append(links, Link{URL: candidate, Context: "content"})
	}
	return links
}

func hasAssetSuffix(u string) bool {
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(u, suffix) {
			return true
		}
	}
	return false
}

const planSystemPrompt = `You are a research planning assistant. Given a website's structure and a research topic,
identify the most relevant pages to explore.

Your task:
1. Analyze the available links and headings
2. Identify which pages are most relevant to the research topic
3. Prioritize pages (high/medium/low)
4. Provide a reason for each selection
5. Estimate overall relevance (0-1) of this website for the topic

Return a JSON object with this structure:
{
    "pages_to_explore": [
        {
            "url": "full URL",
            "priority": "high|medium|low",
            "reason": "why this page is relevant"
        }
    ],
    "estimated_relevance": 0.85,
    "key_sections": ["section name 1", "section name 2"]
}

Focus on:
- Documentation, tutorials, guides
- Technical content over marketing
- Unique content over generic pages (skip: about, contact, privacy)
- Limit to the most valuable pages`

func (s *Scoper) buildPlan(ctx context.Context, baseURL, topic string, structure pageStructure, maxPages int) (*Plan, error) {
	input := s.planInput(baseURL, topic, structure, maxPages)

	resp, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, planSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}, llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("plan generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		s.logger.Warn("Model returned no choices, using fallback plan")
		return fallbackPlan(baseURL, topic, maxPages), nil
	}

	var parsed struct {
		Pages              []PageTask `json:"pages_to_explore"`
		EstimatedRelevance float64    `json:"estimated_relevance"`
		KeySections        []string   `json:"key_sections"`
	}
	if err := llmjson.Unmarshal(resp.Choices[0].Content, &parsed); err != nil {
		s.logger.Warn("Could not parse plan response, using fallback plan", "error", err)
		return fallbackPlan(baseURL, topic, maxPages), nil
	}
	if len(parsed.Pages) == 0 {
		s.logger.Warn("Model selected no pages, using fallback plan")
		return fallbackPlan(baseURL, topic, maxPages), nil
	}

	// Hard cap: drop the tail, no re-ranking.
	if len(parsed.Pages) > maxPages {
		parsed.Pages = parsed.Pages[:maxPages]
	}
	for i := range parsed.Pages {
		parsed.Pages[i].Priority = normalizePriority(parsed.Pages[i].Priority)
	}

	return &Plan{
		BaseURL:            baseURL,
		Topic:              topic,
		MaxPages:           maxPages,
		Pages:              parsed.Pages,
		EstimatedRelevance: clamp01(parsed.EstimatedRelevance),
		KeySections:        parsed.KeySections,
	}, nil
}

func (s *Scoper) planInput(baseURL, topic string, structure pageStructure, maxPages int) string {
	var links strings.Builder
	for _, l := range structure.Links {
		fmt.Fprintf(&links, "- [%s](%s) (context: %s)\n", l.Text, l.URL, l.Context)
	}
	linksSummary := strings.TrimSpace(links.String())
	if linksSummary == "" {
		linksSummary = "(No links found)"
	}

	var headings strings.Builder
	for _, h := range structure.Headings {
		fmt.Fprintf(&headings, "- %s: %s\n", h.Level, h.Text)
	}
	headingsSummary := strings.TrimSpace(headings.String())
	if headingsSummary == "" {
		headingsSummary = "(No headings found)"
	}

	return fmt.Sprintf(`Research Topic: %s

Website: %s
Title: %s

Available Links:
%s

Headings on page:
%s

Please identify the top %d most relevant pages to explore for this research topic.
Return valid JSON only.`, topic, baseURL, structure.Title, linksSummary, headingsSummary, maxPages)
}

// fallbackPlan is the degraded single-homepage plan used whenever the model
// response cannot be trusted. It keeps the planner from ever failing a run.
func fallbackPlan(baseURL, topic string, maxPages int) *Plan {
	return &Plan{
		BaseURL:  baseURL,
		Topic:    topic,
		MaxPages: maxPages,
		Pages: []PageTask{
			{URL: baseURL, Priority: PriorityHigh, Reason: "Homepage"},
		},
		EstimatedRelevance: fallbackRelevance,
		KeySections:        []string{},
	}
}

func normalizePriority(p Priority) Priority {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	}
	return PriorityMedium
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
