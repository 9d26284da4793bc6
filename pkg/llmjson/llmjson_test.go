package llmjson

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "unterminated fence",
			input:    "```json\n{\"a\": 1}",
			expected: `{"a": 1}`,
		},
		{
			name:     "prose before fence",
			input:    "Here is the plan:\n```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\": 1}\n ",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.input); got != tt.expected {
				t.Errorf("Extract(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "prose around object",
			input:    `Sure! {"a": 1} Hope that helps.`,
			expected: `{"a": 1}`,
		},
		{
			name:     "nested object",
			input:    `{"a": {"b": 2}}`,
			expected: `{"a": {"b": 2}}`,
		},
		{
			name:     "no object",
			input:    "no json here",
			expected: "no json here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractObject(tt.input); got != tt.expected {
				t.Errorf("ExtractObject(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantA   int
		wantErr bool
	}{
		{name: "plain", input: `{"a": 3}`, wantA: 3},
		{name: "fenced", input: "```json\n{\"a\": 4}\n```", wantA: 4},
		{name: "prose wrapped", input: `The result is {"a": 5} as requested.`, wantA: 5},
		{name: "not json", input: "nothing to see", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				A int `json:"a"`
			}
			err := Unmarshal(tt.input, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%q) failed: %v", tt.input, err)
			}
			if out.A != tt.wantA {
				t.Errorf("Unmarshal(%q) a = %d, want %d", tt.input, out.A, tt.wantA)
			}
		})
	}
}
