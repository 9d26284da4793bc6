// Package agent is an interactive browser-automation agent: the model
// receives the full browser toolset plus file-saving helpers and drives
// multi-step workflows from natural-language commands.
package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/website-researcher/pkg/browser"
	"github.com/mikeboe/website-researcher/pkg/pipeline"
)

// maxIterations caps completion round-trips per user turn so a model that
// keeps requesting tools cannot loop forever.
const maxIterations = 10

type Agent struct {
	session    *browser.Session
	llm        llms.Model
	downloader pipeline.Downloader
	outputDir  string
	logger     *slog.Logger

	history []llms.MessageContent
}

func New(session *browser.Session, llm llms.Model, outputDir string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		session:    session,
		llm:        llm,
		downloader: pipeline.NewHTTPDownloader(outputDir),
		outputDir:  outputDir,
		logger:     logger,
	}
}

// ProcessMessage runs one user turn: the model may request tool calls, each
// is executed and fed back, until it answers in plain text or the iteration
// cap is reached.
func (a *Agent) ProcessMessage(ctx context.Context, message string) (string, error) {
	tools, err := a.tools(ctx)
	if err != nil {
		return "", err
	}

	a.history = append(a.history, llms.TextParts(llms.ChatMessageTypeHuman, message))

	for iteration := 0; iteration < maxIterations; iteration++ {
		resp, err := a.llm.GenerateContent(ctx, a.history, llms.WithTools(tools))
		if err != nil {
			return "", fmt.Errorf("completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("model returned no choices")
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			answer := choice.Content
			if answer == "" {
				answer = "Done!"
			}
			a.history = append(a.history, llms.TextParts(llms.ChatMessageTypeAI, answer))
			return answer, nil
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			assistant.Parts = append(assistant.Parts, llms.TextContent{Text: choice.Content})
		}
		for _, call := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, call)
		}
		a.history = append(a.history, assistant)

		for _, call := range choice.ToolCalls {
			result := a.executeTool(ctx, call)
			a.history = append(a.history, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: call.ID,
						Name:       call.FunctionCall.Name,
						Content:    result,
					},
				},
			})
		}
	}

	return "Maximum iterations reached. Please try a simpler request.", nil
}

func (a *Agent) executeTool(ctx context.Context, call llms.ToolCall) string {
	name := call.FunctionCall.Name
	a.logger.Info("Executing tool", "tool", name)

	var args map[string]any
	if call.FunctionCall.Arguments != "" {
		if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
			return fmt.Sprintf("Error parsing arguments for %s: %v", name, err)
		}
	}

	switch name {
	case "download_file":
		return a.downloadFile(ctx, args)
	case "save_screenshot":
		return a.saveScreenshot(ctx, args)
	}

	result, err := a.session.CallTool(ctx, name, args)
	if err != nil {
		return fmt.Sprintf("Error executing tool %s: %v", name, err)
	}
	if result == "" {
		return "Tool executed successfully (no content returned)"
	}
	return result
}

// ChatLoop reads commands from r until quit/exit/EOF, writing agent output
// to w.
func (a *Agent) ChatLoop(ctx context.Context, r io.Reader, w io.Writer) error {
	fmt.Fprintln(w, "Browser agent ready. Type 'quit' or 'exit' to stop.")
	fmt.Fprintf(w, "Files will be saved to: %s\n\n", a.outputDir)

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" || input == "q" {
			break
		}

		answer, err := a.ProcessMessage(ctx, input)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(w, "\nAgent: %s\n\n", answer)
	}
	return scanner.Err()
}
