// Package llmjson extracts JSON payloads from language-model output.
// Model responses are untrusted input: they may wrap the JSON in a fenced
// code block or surround it with prose, so callers decode through Extract
// and validate the result instead of assuming well-formedness.
package llmjson

import (
	"encoding/json"
	"strings"
)

// Extract returns the JSON payload of a model response, stripping a fenced
// code block wrapper if present.
func Extract(s string) string {
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "```json"); i >= 0 {
		rest := s[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}

	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}

	return s
}

// ExtractObject narrows s to the outermost {...} span. Used when the model
// prefixes the object with prose instead of a code fence.
func ExtractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// Unmarshal decodes a model response into v, tolerating code fences and
// surrounding prose.
func Unmarshal(s string, v any) error {
	payload := Extract(s)
	if err := json.Unmarshal([]byte(payload), v); err == nil {
		return nil
	}
	return json.Unmarshal([]byte(ExtractObject(payload)), v)
}
