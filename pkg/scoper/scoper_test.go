package scoper

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type fakeTools struct {
	navigateErr error
	structure   string
	evaluateErr error
}

func (f *fakeTools) Navigate(ctx context.Context, url string) error { return f.navigateErr }
func (f *fakeTools) Snapshot(ctx context.Context) (string, error)   { return "", nil }
func (f *fakeTools) Evaluate(ctx context.Context, expression string) (string, error) {
	return f.structure, f.evaluateErr
}
func (f *fakeTools) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }

type fakeModel struct {
	response string
	err      error
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.response, m.err
}

const validStructure = `{"title": "Example", "links": [{"text": "Docs", "url": "https://example.com/docs", "context": "nav"}], "headings": [{"level": "H1", "text": "Example"}]}`

func TestScopeBuildsPlan(t *testing.T) {
	tools := &fakeTools{structure: validStructure}
	llm := &fakeModel{response: `{
		"pages_to_explore": [
			{"url": "https://example.com/docs", "priority": "high", "reason": "Main documentation"},
			{"url": "https://example.com/blog", "priority": "medium", "reason": "Release notes"}
		],
		"estimated_relevance": 0.8,
		"key_sections": ["Docs"]
	}`}

	plan, err := New(tools, llm, nil).Scope(context.Background(), "https://example.com", "testing", 5)
	if err != nil {
		t.Fatalf("Scope failed: %v", err)
	}

	if len(plan.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(plan.Pages))
	}
	if plan.Pages[0].Priority != PriorityHigh {
		t.Errorf("priority = %q, want %q", plan.Pages[0].Priority, PriorityHigh)
	}
	if plan.EstimatedRelevance != 0.8 {
		t.Errorf("estimated relevance = %v, want 0.8", plan.EstimatedRelevance)
	}
	if plan.Topic != "testing" || plan.BaseURL != "https://example.com" {
		t.Errorf("plan metadata wrong: %+v", plan)
	}
}

func TestScopeFallbackOnUnparsableResponse(t *testing.T) {
	tools := &fakeTools{structure: validStructure}
	llm := &fakeModel{response: "I could not produce a plan, sorry!"}

	plan, err := New(tools, llm, nil).Scope(context.Background(), "https://example.com", "testing", 5)
	if err != nil {
		t.Fatalf("Scope failed: %v", err)
	}

	if len(plan.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(plan.Pages))
	}
	task := plan.Pages[0]
	if task.URL != "https://example.com" {
		t.Errorf("url = %q, want homepage", task.URL)
	}
	if task.Priority != PriorityHigh {
		t.Errorf("priority = %q, want %q", task.Priority, PriorityHigh)
	}
	if task.Reason != "Homepage" {
		t.Errorf("reason = %q, want %q", task.Reason, "Homepage")
	}
	if plan.EstimatedRelevance != 0.3 {
		t.Errorf("estimated relevance = %v, want 0.3", plan.EstimatedRelevance)
	}
}

func TestScopeTruncatesToMaxPages(t *testing.T) {
	tools := &fakeTools{structure: validStructure}
	llm := &fakeModel{response: `{
		"pages_to_explore": [
			{"url": "https://example.com/a", "priority": "high", "reason": "a"},
			{"url": "https://example.com/b", "priority": "high", "reason": "b"},
			{"url": "https://example.com/c", "priority": "medium", "reason": "c"},
			{"url": "https://example.com/d", "priority": "low", "reason": "d"}
		],
		"estimated_relevance": 0.9,
		"key_sections": []
	}`}

	plan, err := New(tools, llm, nil).Scope(context.Background(), "https://example.com", "testing", 2)
	if err != nil {
		t.Fatalf("Scope failed: %v", err)
	}

	if len(plan.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(plan.Pages))
	}
	// Hard cap keeps the head of the sequence.
	if plan.Pages[0].URL != "https://example.com/a" || plan.Pages[1].URL != "https://example.com/b" {
		t.Errorf("unexpected pages after truncation: %+v", plan.Pages)
	}
}

func TestScopeToleratesFencedResponse(t *testing.T) {
	tools := &fakeTools{structure: validStructure}
	llm := &fakeModel{response: "```json\n" + `{"pages_to_explore": [{"url": "https://example.com/docs", "priority": "weird", "reason": "r"}], "estimated_relevance": 1.7, "key_sections": []}` + "\n```"}

	plan, err := New(tools, llm, nil).Scope(context.Background(), "https://example.com", "testing", 3)
	if err != nil {
		t.Fatalf("Scope failed: %v", err)
	}

	if len(plan.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(plan.Pages))
	}
	// Invalid priority normalizes to medium, relevance clamps into [0,1].
	if plan.Pages[0].Priority != PriorityMedium {
		t.Errorf("priority = %q, want %q", plan.Pages[0].Priority, PriorityMedium)
	}
	if plan.EstimatedRelevance != 1 {
		t.Errorf("estimated relevance = %v, want 1", plan.EstimatedRelevance)
	}
}

func TestScopeCompletionTransportError(t *testing.T) {
	tools := &fakeTools{structure: validStructure}
	llm := &fakeModel{err: errors.New("connection reset")}

	if _, err := New(tools, llm, nil).Scope(context.Background(), "https://example.com", "testing", 3); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestScanLinks(t *testing.T) {
	raw := `Found these: https://example.com/docs, "/guide/start", https://example.com/logo.png and /styles.css plus https://other.org/page`

	links := scanLinks(raw, "https://example.com")

	urls := make(map[string]bool, len(links))
	for _, l := range links {
		urls[l.URL] = true
		if l.Context != "content" {
			t.Errorf("context = %q, want content", l.Context)
		}
		if l.Text != "" {
			t.Errorf("text = %q, want empty", l.Text)
		}
	}

	if !urls["https://example.com/docs"] {
		t.Errorf("missing absolute link, got %v", urls)
	}
	if !urls["https://example.com/guide/start"] {
		t.Errorf("relative link not resolved, got %v", urls)
	}
	if !urls["https://other.org/page"] {
		t.Errorf("missing external link, got %v", urls)
	}
	if urls["https://example.com/logo.png"] {
		t.Error("asset link should be skipped")
	}
	for u := range urls {
		if u == "/styles.css" || u == "https://example.com/styles.css" {
			t.Error("css asset should be skipped")
		}
	}
}

func TestScanLinksCapped(t *testing.T) {
	raw := ""
	for i := 0; i < 100; i++ {
		raw += "https://example.com/page" + string(rune('a'+i%26)) + " "
	}

	links := scanLinks(raw, "https://example.com")
	if len(links) > maxFallbackCandidates {
		t.Errorf("links = %d, cap is %d", len(links), maxFallbackCandidates)
	}
}
