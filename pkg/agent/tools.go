package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/tmc/langchaingo/llms"
)

// tools builds the model-facing tool list: every tool the browser server
// advertises plus the local download and screenshot helpers.
func (a *Agent) tools(ctx context.Context) ([]llms.Tool, error) {
	browserTools, err := a.session.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]llms.Tool, 0, len(browserTools)+2)
	for _, t := range browserTools {
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schemaToMap(t.InputSchema),
			},
		})
	}

	tools = append(tools, llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name: "download_file",
			Description: "Download a file (PDF, Excel, CSV, etc.) from a URL and save it locally. " +
				"Use this after finding the file URL on a webpage.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "The direct URL of the file to download",
					},
					"filename": map[string]any{
						"type":        "string",
						"description": "Optional: custom filename to save as",
					},
				},
				"required": []string{"url"},
			},
		},
	})

	tools = append(tools, llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name: "save_screenshot",
			Description: "Take a screenshot of the current browser page and save it as a PNG image. " +
				"Use this to capture the current state of a webpage.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"filename": map[string]any{
						"type":        "string",
						"description": "Optional: custom filename (without .png extension)",
					},
				},
			},
		},
	})

	return tools, nil
}

// schemaToMap converts an MCP tool input schema into the generic map the
// completion API expects.
func schemaToMap(schema *jsonschema.Schema) map[string]any {
	empty := map[string]any{"type": "object"}
	if schema == nil {
		return empty
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return empty
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return empty
	}
	return m
}

func (a *Agent) downloadFile(ctx context.Context, args map[string]any) string {
	url, _ := args["url"].(string)
	if url == "" {
		return "Error: download_file requires a url argument"
	}

	path, err := a.downloader.Download(ctx, url)
	if err != nil {
		return fmt.Sprintf("Failed to download %s: %v", url, err)
	}

	if filename, _ := args["filename"].(string); filename != "" {
		renamed := filepath.Join(a.outputDir, filepath.Base(filename))
		if err := os.Rename(path, renamed); err == nil {
			path = renamed
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("Successfully downloaded to %s", path)
	}
	return fmt.Sprintf("Successfully downloaded %s (%d bytes) to %s", filepath.Base(path), info.Size(), path)
}

func (a *Agent) saveScreenshot(ctx context.Context, args map[string]any) string {
	filename, _ := args["filename"].(string)
	if filename == "" {
		filename = "screenshot_" + time.Now().Format("20060102_150405")
	}
	if filepath.Ext(filename) != ".png" {
		filename += ".png"
	}

	data, err := a.session.Screenshot(ctx)
	if err != nil {
		return fmt.Sprintf("Failed to save screenshot: %v", err)
	}

	path := filepath.Join(a.outputDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Sprintf("Failed to save screenshot: %v", err)
	}
	return fmt.Sprintf("Successfully saved screenshot as %s (%d bytes)", path, len(data))
}
