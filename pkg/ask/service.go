// Package ask answers questions over previously archived research runs
// through a tool-using agent backed by the archive's semantic search.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/mikeboe/website-researcher/pkg/archive"
	"github.com/mikeboe/website-researcher/pkg/config"
)

const appName = "website-researcher"

type Service struct {
	Agent agent.Agent
}

func NewService(ctx context.Context, a *archive.Archive, cfg *config.Config) (*Service, error) {
	modelClient, err := gemini.NewModel(ctx, cfg.ReasoningModel, &genai.ClientConfig{
		APIKey: cfg.GoogleApiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	askAgent, err := llmagent.New(llmagent.Config{
		Name:        "research_archive",
		Model:       modelClient,
		Description: "A research assistant with access to archived website research.",
		Instruction: "You are a helpful research assistant. Use the available tools to search archived research pages and answer the user's questions based on the retrieved content. ALWAYS use the search_pages tool first. Group the answer by source, with an unordered list of content pieces supporting the question. The format would be: # Source: <source>, \n\n - <content>\n - <content>\n - <content>....",
		Toolsets: []tool.Toolset{
			NewArchiveToolset(a),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &Service{Agent: askAgent}, nil
}

// Ask runs one question through the agent and returns the collected answer
// text.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	sessionSvc := session.InMemoryService()
	userID := "user"
	sessionID := uuid.NewString()

	if _, err := sessionSvc.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          s.Agent,
		SessionService: sessionSvc,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create runner: %w", err)
	}

	userContent := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: question}},
	}

	var answer strings.Builder
	for event, err := range r.Run(ctx, userID, sessionID, userContent, agent.RunConfig{}) {
		if err != nil {
			return "", fmt.Errorf("agent run failed: %w", err)
		}
		if event.LLMResponse.Content == nil {
			continue
		}
		for _, part := range event.LLMResponse.Content.Parts {
			if part.Text != "" {
				answer.WriteString(part.Text)
			}
		}
	}
	return answer.String(), nil
}
