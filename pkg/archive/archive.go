// Package archive persists completed research runs into Postgres with
// pgvector embeddings, so findings stay searchable after the run that
// produced them.
package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/mikeboe/website-researcher/pkg/extractor"
	"github.com/mikeboe/website-researcher/pkg/pipeline"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Archive stores research runs and their page content chunks.
type Archive struct {
	pool     *pgxpool.Pool
	embedder *Embedder
	logger   *slog.Logger
}

// Open connects to Postgres, verifies the connection and ensures the archive
// schema exists.
func Open(ctx context.Context, databaseURL, apiKey, embedModel string, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	embedder, err := NewEmbedder(ctx, embedModel, apiKey)
	if err != nil {
		pool.Close()
		return nil, err
	}

	a := &Archive{pool: pool, embedder: embedder, logger: logger}
	if err := a.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) Close() {
	a.pool.Close()
}

func (a *Archive) initSchema(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to ensure vector extension: %w", err)
	}

	runsQuery := `
		CREATE TABLE IF NOT EXISTS research_runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			topic TEXT NOT NULL,
			base_url TEXT NOT NULL,
			report_path TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := a.pool.Exec(ctx, runsQuery); err != nil {
		return fmt.Errorf("failed to create research_runs table: %w", err)
	}

	pagesQuery := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS research_pages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			run_id UUID NOT NULL REFERENCES research_runs(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			chunk TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`, embeddingDim)
	if _, err := a.pool.Exec(ctx, pagesQuery); err != nil {
		return fmt.Errorf("failed to create research_pages table: %w", err)
	}

	indexQuery := `
		CREATE INDEX IF NOT EXISTS research_pages_embedding_idx
		ON research_pages USING hnsw (embedding vector_cosine_ops)
	`
	if _, err := a.pool.Exec(ctx, indexQuery); err != nil {
		return fmt.Errorf("failed to create embedding index: %w", err)
	}
	if _, err := a.pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_research_pages_run_id ON research_pages(run_id)"); err != nil {
		return fmt.Errorf("failed to create index on research_pages: %w", err)
	}

	return nil
}

// IndexRun stores a completed run: one research_runs row plus embedded
// content chunks for every successfully extracted page. Pages that failed
// extraction carry no real content and are skipped.
func (a *Archive) IndexRun(ctx context.Context, state *pipeline.State, reportPath string) error {
	var runID string
	err := a.pool.QueryRow(ctx, `
		INSERT INTO research_runs (topic, base_url, report_path)
		VALUES ($1, $2, $3)
		RETURNING id
	`, state.Plan.Topic, state.Plan.BaseURL, reportPath).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	insertQuery := `
		INSERT INTO research_pages (run_id, url, title, chunk, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`
	batch := &pgx.Batch{}
	queued := 0

	for _, page := range state.Pages {
		if page.Method == extractor.MethodError || page.Content == "" {
			continue
		}
		chunks, err := ts.SplitText(page.Content)
		if err != nil {
			return fmt.Errorf("failed to split content for %s: %w", page.URL, err)
		}
		vectors, err := a.embedder.EmbedTexts(ctx, chunks)
		if err != nil {
			return fmt.Errorf("failed to embed content for %s: %w", page.URL, err)
		}
		for i, chunk := range chunks {
			batch.Queue(insertQuery, runID, page.URL, page.Title, chunk, pgvector.NewVector(vectors[i]))
			queued++
		}
	}

	br := a.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert page chunk: %w", err)
		}
	}

	a.logger.Info("Run archived", "run_id", runID, "chunks", queued)
	return nil
}

// SearchResult is one archived chunk matched by similarity search.
type SearchResult struct {
	URL   string  `json:"url"`
	Title string  `json:"title"`
	Chunk string  `json:"chunk"`
	Score float64 `json:"score"`
}

// Search returns the topK archived chunks most similar to query, across all
// runs.
func (a *Archive) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	vec, err := a.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := a.pool.Query(ctx, `
		SELECT url, title, chunk, 1 - (embedding <=> $1) as similarity
		FROM research_pages
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.URL, &r.Title, &r.Chunk, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// PagesByURL returns every archived chunk for a URL, in insertion order.
func (a *Archive) PagesByURL(ctx context.Context, url string) ([]SearchResult, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT url, title, chunk, 0 as similarity
		FROM research_pages
		WHERE url = $1
		ORDER BY created_at
	`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.URL, &r.Title, &r.Chunk, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}
