package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeTools is a scripted browser tool service for tests. Evaluate answers
// the title probe and the content script separately.
type fakeTools struct {
	navigateErr  error
	snapshot     string
	snapshotErr  error
	titleOut     string
	scriptOut    string
	evaluateErr  error
	screenshot   []byte
	navigateURLs []string
}

func (f *fakeTools) Navigate(ctx context.Context, url string) error {
	f.navigateURLs = append(f.navigateURLs, url)
	return f.navigateErr
}

func (f *fakeTools) Snapshot(ctx context.Context) (string, error) {
	return f.snapshot, f.snapshotErr
}

func (f *fakeTools) Evaluate(ctx context.Context, expression string) (string, error) {
	if expression == "document.title" {
		return f.titleOut, nil
	}
	if f.evaluateErr != nil {
		return "", f.evaluateErr
	}
	return f.scriptOut, nil
}

func (f *fakeTools) Screenshot(ctx context.Context) ([]byte, error) {
	return f.screenshot, nil
}

func TestExtractViaSnapshot(t *testing.T) {
	tools := &fakeTools{
		snapshot: `Page Snapshot:
- heading "Concurrency Patterns"
- paragraph "Goroutines are lightweight threads"`,
		titleOut: `"Go Blog"`,
	}

	content := New(tools, nil).Extract(context.Background(), "https://example.com/blog")

	if content.Method != MethodSnapshot {
		t.Fatalf("method = %q, want %q", content.Method, MethodSnapshot)
	}
	if content.Title != "Go Blog" {
		t.Errorf("title = %q, want %q", content.Title, "Go Blog")
	}
	if !strings.Contains(content.Content, "Goroutines are lightweight threads") {
		t.Errorf("content missing snapshot text: %q", content.Content)
	}
	if content.Length != len(content.Content) {
		t.Errorf("length = %d, want %d", content.Length, len(content.Content))
	}
}

func TestExtractFallsBackToScript(t *testing.T) {
	tests := []struct {
		name  string
		tools *fakeTools
	}{
		{
			name: "snapshot error",
			tools: &fakeTools{
				snapshotErr: errors.New("snapshot unavailable"),
				scriptOut:   `{"title": "Docs", "content": "Scripted content", "length": 16}`,
			},
		},
		{
			name: "oversized snapshot",
			tools: &fakeTools{
				snapshot:  strings.Repeat("y", MaxContentLength+100),
				scriptOut: `{"title": "Docs", "content": "Scripted content", "length": 16}`,
			},
		},
		{
			name: "empty snapshot",
			tools: &fakeTools{
				snapshot:  "",
				scriptOut: `{"title": "Docs", "content": "Scripted content", "length": 16}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := New(tt.tools, nil).Extract(context.Background(), "https://example.com")

			if content.Method != MethodJavascript {
				t.Fatalf("method = %q, want %q", content.Method, MethodJavascript)
			}
			if content.Title != "Docs" {
				t.Errorf("title = %q, want %q", content.Title, "Docs")
			}
			if content.Content != "Scripted content" {
				t.Errorf("content = %q, want %q", content.Content, "Scripted content")
			}
		})
	}
}

func TestExtractNavigationFailure(t *testing.T) {
	tools := &fakeTools{navigateErr: errors.New("connection refused")}

	content := New(tools, nil).Extract(context.Background(), "https://unreachable.example")

	if content.Method != MethodError {
		t.Fatalf("method = %q, want %q", content.Method, MethodError)
	}
	if content.Length != 0 {
		t.Errorf("length = %d, want 0", content.Length)
	}
	if !strings.Contains(content.Content, "Failed to extract content") {
		t.Errorf("content = %q, want failure message", content.Content)
	}
}

func TestExtractBothTiersFail(t *testing.T) {
	tools := &fakeTools{
		snapshotErr: errors.New("no snapshot"),
		evaluateErr: errors.New("script blocked"),
	}

	content := New(tools, nil).Extract(context.Background(), "https://example.com")

	if content.Method != MethodError {
		t.Fatalf("method = %q, want %q", content.Method, MethodError)
	}
}

func TestExtractScriptOutputUnparsable(t *testing.T) {
	tools := &fakeTools{
		snapshotErr: errors.New("no snapshot"),
		scriptOut:   "Raw page text, not JSON",
		titleOut:    `"Fallback Title"`,
	}

	content := New(tools, nil).Extract(context.Background(), "https://example.com")

	if content.Method != MethodJavascript {
		t.Fatalf("method = %q, want %q", content.Method, MethodJavascript)
	}
	if !strings.Contains(content.Content, "Raw page text") {
		t.Errorf("content = %q, want raw text fallback", content.Content)
	}
	if content.Title != "Fallback Title" {
		t.Errorf("title = %q, want %q", content.Title, "Fallback Title")
	}
}
