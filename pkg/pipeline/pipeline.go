// Package pipeline walks an exploration plan page by page through a fixed
// state machine: navigate, extract, collect artifacts, synthesize findings.
// A run always terminates after at most one cycle per planned page, and
// per-page failures degrade that page instead of aborting the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/website-researcher/pkg/browser"
	"github.com/mikeboe/website-researcher/pkg/extractor"
	"github.com/mikeboe/website-researcher/pkg/llmjson"
	"github.com/mikeboe/website-researcher/pkg/scoper"
)

// step names one node of the per-page state machine.
type step string

const (
	stepNavigate   step = "navigate"
	stepExtract    step = "extract"
	stepCollect    step = "collect"
	stepSynthesize step = "synthesize"
	stepEnd        step = "end"
)

// synthesisInputLimit bounds how much page content the synthesis prompt
// carries.
const synthesisInputLimit = 3000

type Pipeline struct {
	tools      browser.Tools
	extractor  *extractor.Extractor
	llm        llms.Model
	outputDir  string
	downloader Downloader
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Pipeline)

// WithDownloader enables document collection during the collect step.
func WithDownloader(d Downloader) Option {
	return func(p *Pipeline) { p.downloader = d }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(tools browser.Tools, llm llms.Model, outputDir string, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		tools:     tools,
		extractor: extractor.New(tools, logger),
		llm:       llm,
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the plan and returns the completed run state. Each planned
// page is visited at most once, in plan order; a page whose navigation fails
// is skipped without a result record. Per-page failures degrade to
// placeholder values, so Run only errors when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, plan *scoper.Plan) (*State, error) {
	state := &State{
		Plan:        plan,
		VisitedURLs: []string{},
		Pages:       []PageResult{},
		Screenshots: []string{},
		Downloads:   []string{},
	}

	var (
		current = p.next(state)
		task    scoper.PageTask
		content extractor.PageContent
	)
	for current != stepEnd {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch current {
		case stepNavigate:
			task = plan.Pages[state.PageIndex]
			p.logger.Info("Exploring page",
				"step", fmt.Sprintf("%d/%d", state.PageIndex+1, len(plan.Pages)),
				"url", task.URL, "priority", task.Priority)

			if err := p.tools.Navigate(ctx, task.URL); err != nil {
				p.logger.Warn("Navigation failed, skipping page", "url", task.URL, "error", err)
				state.PageIndex++
				current = p.next(state)
				continue
			}
			state.VisitedURLs = append(state.VisitedURLs, task.URL)
			current = stepExtract

		case stepExtract:
			content = p.extractor.Extract(ctx, task.URL)
			current = stepCollect

		case stepCollect:
			p.collect(ctx, state, task)
			current = stepSynthesize

		case stepSynthesize:
			state.Pages = append(state.Pages, PageResult{
				PageContent: content,
				Priority:    task.Priority,
				Reason:      task.Reason,
				Timestamp:   p.now(),
				Synthesis:   p.synthesize(ctx, plan.Topic, content),
			})
			state.PageIndex++
			current = p.next(state)
		}
	}

	state.Complete = true
	p.logger.Info("Exploration complete",
		"visited", len(state.VisitedURLs),
		"captured", len(state.Pages),
		"screenshots", len(state.Screenshots),
		"downloads", len(state.Downloads))
	return state, nil
}

// next is the only transition out of a page cycle: another navigate while
// planned pages remain, otherwise end.
func (p *Pipeline) next(state *State) step {
	if state.PageIndex < len(state.Plan.Pages) {
		return stepNavigate
	}
	return stepEnd
}

// collect captures artifacts for the current page. High-priority pages get a
// screenshot; linked documents are fetched when a downloader is configured.
// Collection failures never affect the page's result record.
func (p *Pipeline) collect(ctx context.Context, state *State, task scoper.PageTask) {
	if task.Priority == scoper.PriorityHigh {
		if path, err := p.screenshot(ctx, task.URL); err != nil {
			p.logger.Warn("Screenshot failed", "url", task.URL, "error", err)
		} else {
			state.Screenshots = append(state.Screenshots, path)
		}
	}

	if p.downloader == nil {
		return
	}
	for _, docURL := range p.documentLinks(ctx) {
		path, err := p.downloader.Download(ctx, docURL)
		if err != nil {
			p.logger.Warn("Download failed", "url", docURL, "error", err)
			continue
		}
		state.Downloads = append(state.Downloads, path)
	}
}

func (p *Pipeline) screenshot(ctx context.Context, url string) (string, error) {
	data, err := p.tools.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(p.outputDir, "research_"+urlFilename(url)+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving screenshot: %w", err)
	}
	return path, nil
}

const documentLinkScript = `
(() => {
    const links = Array.from(document.querySelectorAll('a[href$=".pdf"]'))
        .map(a => a.href)
        .slice(0, 10);
    return JSON.stringify(links);
})()
`

func (p *Pipeline) documentLinks(ctx context.Context) []string {
	raw, err := p.tools.Evaluate(ctx, documentLinkScript)
	if err != nil {
		p.logger.Warn("Document link discovery failed", "error", err)
		return nil
	}
	var urls []string
	if err := llmjson.Unmarshal(raw, &urls); err != nil {
		return nil
	}
	return urls
}

const synthesisSystemPrompt = `You are a research analyst. Extract the most important information from webpage content
related to a specific research topic.

Return a JSON object with this structure:
{
    "key_points": ["point 1", "point 2"],
    "quotes": ["notable quote 1"],
    "value": "yes|no|somewhat",
    "summary": "one sentence summary of what this page contributes"
}

Guidelines:
- key_points: 3-5 concrete facts or findings relevant to the topic
- quotes: verbatim passages worth citing, if any
- value: does this page meaningfully contribute to the research topic?
- Be selective. Irrelevant content gets value "no" and empty lists.`

// synthesize distills one page's findings. It never fails the page: both a
// completion error and unparseable output degrade to the fixed failure
// synthesis.
func (p *Pipeline) synthesize(ctx context.Context, topic string, content extractor.PageContent) Synthesis {
	input := fmt.Sprintf(`Research Topic: %s

Page: %s (%s)

Content:
%s

Return valid JSON only.`, topic, content.Title, content.URL, extractor.Truncate(content.Content, synthesisInputLimit))

	resp, err := p.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, synthesisSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}, llms.WithJSONMode())
	if err != nil {
		p.logger.Warn("Synthesis completion failed", "url", content.URL, "error", err)
		return FailedSynthesis()
	}
	if len(resp.Choices) == 0 {
		p.logger.Warn("Model returned no choices for synthesis", "url", content.URL)
		return FailedSynthesis()
	}

	var synthesis Synthesis
	if err := llmjson.Unmarshal(resp.Choices[0].Content, &synthesis); err != nil {
		p.logger.Warn("Could not parse synthesis response", "url", content.URL, "error", err)
		return FailedSynthesis()
	}
	synthesis.Value = normalizeValue(synthesis.Value)
	if synthesis.KeyPoints == nil {
		synthesis.KeyPoints = []string{}
	}
	if synthesis.Quotes == nil {
		synthesis.Quotes = []string{}
	}
	return synthesis
}

func normalizeValue(v ValueTier) ValueTier {
	switch v {
	case ValueYes, ValueNo, ValueSomewhat:
		return v
	}
	return ValueUnknown
}
