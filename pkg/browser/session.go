package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Session is a connection to a Playwright MCP server. It is the singleton
// browser resource for a research run: all tool invocations are serialized
// through it, and the owner must Close it on every exit path, since a
// leaked browser process blocks subsequent runs.
type Session struct {
	session *mcp.ClientSession
	logger  *slog.Logger
}

// Connect starts the browser tool server and establishes an MCP session.
// This is the only fatal failure point on the browser side; everything
// after a successful Connect degrades per-call.
func Connect(ctx context.Context, command string, args ...string) (*Session, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "website-researcher",
		Version: "1.0.0",
	}, nil)

	cmd := exec.Command(command, args...)
	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to browser tool server: %w", err)
	}

	return &Session{session: session, logger: slog.Default()}, nil
}

// Close shuts down the MCP session and the underlying browser process.
func (s *Session) Close() error {
	return s.session.Close()
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	_, err := s.call(ctx, "browser_navigate", map[string]any{"url": url})
	return err
}

func (s *Session) Snapshot(ctx context.Context) (string, error) {
	res, err := s.call(ctx, "browser_snapshot", nil)
	if err != nil {
		return "", err
	}
	return resultText(res), nil
}

func (s *Session) Evaluate(ctx context.Context, expression string) (string, error) {
	res, err := s.call(ctx, "browser_evaluate", map[string]any{"expression": expression})
	if err != nil {
		return "", err
	}
	return resultText(res), nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	res, err := s.call(ctx, "browser_take_screenshot", nil)
	if err != nil {
		return nil, err
	}
	for _, c := range res.Content {
		if img, ok := c.(*mcp.ImageContent); ok {
			return img.Data, nil
		}
	}
	return nil, fmt.Errorf("no image data in screenshot result")
}

// ListTools returns the tool definitions advertised by the browser server.
// Used by the interactive agent to hand the full toolset to the model.
func (s *Session) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	res, err := s.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list browser tools: %w", err)
	}
	return res.Tools, nil
}

// CallTool invokes an arbitrary browser tool by name and returns its text
// result. Used by the interactive agent for model-driven tool calls.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := s.call(ctx, name, args)
	if err != nil {
		return "", err
	}
	return resultText(res), nil
}

func (s *Session) call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	s.logger.Debug("Calling browser tool", "tool", name)

	res, err := s.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("browser tool %s failed: %w", name, err)
	}
	if res.IsError {
		return nil, fmt.Errorf("browser tool %s returned an error: %s", name, resultText(res))
	}
	return res, nil
}

func resultText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range res.Content {
		if t, ok := c.(*mcp.TextContent); ok {
			b.WriteString(t.Text)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
