// Package research is the caller-facing orchestrator: one call runs the full
// scope, explore, report cycle against a website.
package research

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/website-researcher/pkg/archive"
	"github.com/mikeboe/website-researcher/pkg/browser"
	"github.com/mikeboe/website-researcher/pkg/config"
	"github.com/mikeboe/website-researcher/pkg/pipeline"
	"github.com/mikeboe/website-researcher/pkg/report"
	"github.com/mikeboe/website-researcher/pkg/scoper"
)

type Researcher struct {
	cfg     *config.Config
	llm     llms.Model
	archive *archive.Archive
	logger  *slog.Logger

	downloadsEnabled bool
}

type Option func(*Researcher)

// WithArchive stores completed runs in the research archive.
func WithArchive(a *archive.Archive) Option {
	return func(r *Researcher) { r.archive = a }
}

// WithDownloads enables collection of linked documents during exploration.
func WithDownloads() Option {
	return func(r *Researcher) { r.downloadsEnabled = true }
}

func New(cfg *config.Config, llm llms.Model, logger *slog.Logger, opts ...Option) *Researcher {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Researcher{cfg: cfg, llm: llm, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Research runs one complete research cycle against url for topic and
// returns the path of the generated report. The browser session is the only
// fatal dependency; everything downstream degrades per page.
func (r *Researcher) Research(ctx context.Context, url, topic string, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = r.cfg.MaxPages
	}
	if err := r.cfg.EnsureOutputDir(); err != nil {
		return "", fmt.Errorf("preparing output directory: %w", err)
	}

	session, err := browser.Connect(ctx, r.cfg.BrowserCommand, r.cfg.BrowserArgs...)
	if err != nil {
		return "", fmt.Errorf("starting browser session: %w", err)
	}
	defer session.Close()

	plan, err := scoper.New(session, r.llm, r.logger).Scope(ctx, url, topic, maxPages)
	if err != nil {
		return "", err
	}

	var pipelineOpts []pipeline.Option
	if r.downloadsEnabled {
		pipelineOpts = append(pipelineOpts, pipeline.WithDownloader(pipeline.NewHTTPDownloader(r.cfg.OutputDir)))
	}
	state, err := pipeline.New(session, r.llm, r.cfg.OutputDir, r.logger, pipelineOpts...).Run(ctx, plan)
	if err != nil {
		return "", err
	}

	result, err := report.New(r.llm, r.cfg.OutputDir, r.logger).Assemble(ctx, state)
	if err != nil {
		return "", err
	}

	if r.archive != nil {
		if err := r.archive.IndexRun(ctx, state, result.Path); err != nil {
			// Archiving is an add-on; the report already exists.
			r.logger.Warn("Failed to archive run", "error", err)
		}
	}

	return result.Path, nil
}
