package ask

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/mikeboe/website-researcher/pkg/archive"
)

// ArchiveToolset exposes the research archive to the question-answering
// agent.
type ArchiveToolset struct {
	Archive *archive.Archive
}

func NewArchiveToolset(a *archive.Archive) *ArchiveToolset {
	return &ArchiveToolset{Archive: a}
}

func (t *ArchiveToolset) Name() string {
	return "archive_tools"
}

func (t *ArchiveToolset) Tools(ctx agent.ReadonlyContext) ([]tool.Tool, error) {
	searchTool, err := functiontool.New[SearchPagesArgs, SearchPagesResp](
		functiontool.Config{
			Name:        "search_pages",
			Description: "Search archived research pages using semantic search.",
		},
		t.searchPagesTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search tool: %w", err)
	}

	getPageTool, err := functiontool.New[GetPageArgs, GetPageResp](
		functiontool.Config{
			Name:        "get_page_content",
			Description: "Retrieve the full archived content of a specific page URL.",
		},
		t.getPageContentTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create get_page tool: %w", err)
	}

	return []tool.Tool{searchTool, getPageTool}, nil
}

type SearchPagesArgs struct {
	Query string `json:"query" description:"The search query"`
	TopK  int    `json:"topK,omitempty" description:"Number of results to return (default 5)"`
}

type SearchPagesResp struct {
	Results string `json:"results"`
}

func (t *ArchiveToolset) searchPagesTool(ctx tool.Context, args SearchPagesArgs) (SearchPagesResp, error) {
	return t.SearchPages(ctx, args)
}

func (t *ArchiveToolset) SearchPages(ctx context.Context, args SearchPagesArgs) (SearchPagesResp, error) {
	if args.TopK == 0 {
		args.TopK = 5
	}
	slog.Info("Search archived pages", "query", args.Query, "topK", args.TopK)

	results, err := t.Archive.Search(ctx, args.Query, args.TopK)
	if err != nil {
		return SearchPagesResp{}, fmt.Errorf("failed to search: %w", err)
	}

	var formatted []string
	for _, r := range results {
		formatted = append(formatted, fmt.Sprintf("[Source]: %s\n[Title]: %s\n[Content]: %s", r.URL, r.Title, r.Chunk))
	}
	return SearchPagesResp{Results: strings.Join(formatted, "\n\n")}, nil
}

type GetPageArgs struct {
	URL string `json:"url" description:"The page URL to retrieve content for"`
}

type GetPageResp struct {
	Content string `json:"content"`
}

func (t *ArchiveToolset) getPageContentTool(ctx tool.Context, args GetPageArgs) (GetPageResp, error) {
	return t.GetPageContent(ctx, args)
}

func (t *ArchiveToolset) GetPageContent(ctx context.Context, args GetPageArgs) (GetPageResp, error) {
	results, err := t.Archive.PagesByURL(ctx, args.URL)
	if err != nil {
		return GetPageResp{}, fmt.Errorf("failed to find content: %w", err)
	}

	var chunks []string
	for _, r := range results {
		chunks = append(chunks, r.Chunk)
	}
	return GetPageResp{Content: strings.Join(chunks, "\n\n")}, nil
}
