// Package extractor pulls clean, readable text out of webpages through the
// browser tool service. It tries a structural snapshot first and falls back
// to an injected content script when the snapshot is unusable.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mikeboe/website-researcher/pkg/browser"
	"github.com/mikeboe/website-researcher/pkg/llmjson"
)

// MaxContentLength caps extracted content (~4000 tokens). A snapshot at or
// above this size signals unreliable extraction, not just long content, so
// the scripted tier takes over.
const MaxContentLength = 15000

// Method tags how a page's content was obtained.
type Method string

const (
	MethodSnapshot   Method = "snapshot"
	MethodJavascript Method = "javascript"
	MethodError      Method = "error"
)

// PageContent is the extraction result for one URL. Immutable once produced.
type PageContent struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Length  int    `json:"length"`
	Method  Method `json:"method"`
}

type Extractor struct {
	tools  browser.Tools
	logger *slog.Logger
}

func New(tools browser.Tools, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{tools: tools, logger: logger}
}

// Extract returns the cleanest content it can get for url. It never fails:
// if both tiers error out, the result carries MethodError, a readable
// failure message and length 0.
func (e *Extractor) Extract(ctx context.Context, url string) PageContent {
	if err := e.tools.Navigate(ctx, url); err != nil {
		return errorContent(url, err)
	}

	// Tier 1: structural snapshot.
	snapshot, err := e.tools.Snapshot(ctx)
	if err == nil {
		text := SnapshotText(snapshot)
		if text != "" && len(text) < MaxContentLength {
			e.logger.Info("Extracted via snapshot", "url", url, "length", len(text))
			return PageContent{
				URL:     url,
				Title:   e.pageTitle(ctx),
				Content: text,
				Length:  len(text),
				Method:  MethodSnapshot,
			}
		}
		e.logger.Warn("Snapshot unusable, using content script", "url", url, "snapshot_length", len(text))
	} else {
		e.logger.Warn("Snapshot failed, using content script", "url", url, "error", err)
	}

	// Tier 2: scripted DOM reduction.
	content, err := e.extractViaScript(ctx, url)
	if err != nil {
		return errorContent(url, err)
	}
	e.logger.Info("Extracted via content script", "url", url, "length", content.Length)
	return content
}

func errorContent(url string, err error) PageContent {
	return PageContent{
		URL:     url,
		Title:   "Error",
		Content: fmt.Sprintf("Failed to extract content: %v", err),
		Length:  0,
		Method:  MethodError,
	}
}

// extractionScript removes noise elements, locates the best main-content
// element and returns its text as JSON.
const extractionScript = `
(() => {
    const removeSelectors = [
        'nav', 'footer', 'aside', 'header',
        '[role="navigation"]', '[role="banner"]',
        '.advertisement', '.ad', '.popup', '.modal',
        'script', 'style', 'iframe'
    ];
    removeSelectors.forEach(selector => {
        document.querySelectorAll(selector).forEach(el => el.remove());
    });

    const mainContent =
        document.querySelector('main') ||
        document.querySelector('article') ||
        document.querySelector('[role="main"]') ||
        document.querySelector('.content') ||
        document.querySelector('#content') ||
        document.body;

    const text = mainContent.innerText || mainContent.textContent || '';
    const cleaned = text.replace(/\s+/g, ' ').trim();

    return JSON.stringify({
        title: document.title,
        content: cleaned.slice(0, 15000),
        length: cleaned.length
    });
})()
`

func (e *Extractor) extractViaScript(ctx context.Context, url string) (PageContent, error) {
	raw, err := e.tools.Evaluate(ctx, extractionScript)
	if err != nil {
		return PageContent{}, err
	}

	var out struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := llmjson.Unmarshal(raw, &out); err != nil {
		// Tool output wasn't parseable; treat the raw text as content.
		out.Title = e.pageTitle(ctx)
		out.Content = raw
	}

	content := Truncate(CleanText(out.Content), MaxContentLength)
	return PageContent{
		URL:     url,
		Title:   out.Title,
		Content: content,
		Length:  len(content),
		Method:  MethodJavascript,
	}, nil
}

func (e *Extractor) pageTitle(ctx context.Context) string {
	raw, err := e.tools.Evaluate(ctx, "document.title")
	if err != nil {
		return "Unknown Title"
	}
	title := strings.Trim(strings.TrimSpace(raw), `"'`)
	if title == "" {
		return "Unknown Title"
	}
	return title
}
