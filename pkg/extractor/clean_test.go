package extractor

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "strips urls",
			input:    "Read more at https://example.com/docs today",
			expected: "Read more at today",
		},
		{
			name:     "collapses whitespace runs",
			input:    "too   many\t\tspaces",
			expected: "too many spaces",
		},
		{
			name:     "collapses blank line runs",
			input:    "first\n\n\n\nsecond",
			expected: "first\n\nsecond",
		},
		{
			name:     "strips cookie boilerplate",
			input:    "Intro Cookie Policy please Accept the rest",
			expected: "Intro the rest",
		},
		{
			name:     "trims edges",
			input:    "  padded  ",
			expected: "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"Read more at https://example.com/docs today",
		"too   many\t\tspaces\n\n\n\nand lines",
		"plain text already clean",
		"Cookie Policy something Accept rest",
	}

	for _, input := range inputs {
		once := CleanText(input)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("CleanText not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestSnapshotText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name: "quoted spans",
			input: `Page Snapshot:
- heading "Getting Started" [level=1]
- paragraph "Install the package first"`,
			contains: []string{"Getting Started", "Install the package first"},
		},
		{
			name:     "labeled spans",
			input:    "text: Welcome to the docs\nheading: Installation",
			contains: []string{"Welcome to the docs", "Installation"},
		},
		{
			name:     "no structure falls back to cleaned text",
			input:    "just   some plain output",
			contains: []string{"just some plain output"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapshotText(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("SnapshotText(%q) = %q, missing %q", tt.input, got, want)
				}
			}
		})
	}

	if got := SnapshotText(""); got != "" {
		t.Errorf("SnapshotText(\"\") = %q, want empty", got)
	}
}

func TestSnapshotTextCapsLength(t *testing.T) {
	huge := strings.Repeat("x", MaxContentLength*2)
	if got := SnapshotText(huge); len(got) > MaxContentLength {
		t.Errorf("SnapshotText produced %d bytes, cap is %d", len(got), MaxContentLength)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{name: "short string unchanged", input: "abc", n: 10, expected: "abc"},
		{name: "exact length unchanged", input: "abc", n: 3, expected: "abc"},
		{name: "cut at limit", input: "abcdef", n: 4, expected: "abcd"},
		{name: "does not split utf8", input: "aé", n: 2, expected: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.n); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.expected)
			}
		})
	}
}
