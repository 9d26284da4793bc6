package agent

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

func TestSchemaToMap(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"url": {Type: "string", Description: "The URL to load"},
		},
		Required: []string{"url"},
	}

	m := schemaToMap(schema)
	if m["type"] != "object" {
		t.Errorf("type = %v, want object", m["type"])
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing: %v", m)
	}
	if _, ok := props["url"]; !ok {
		t.Errorf("url property missing: %v", props)
	}
}

func TestSchemaToMapNil(t *testing.T) {
	m := schemaToMap(nil)
	if m["type"] != "object" {
		t.Errorf("nil schema should default to empty object schema, got %v", m)
	}
}
