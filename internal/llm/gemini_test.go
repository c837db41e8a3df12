package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"day":   map[string]any{"type": "integer", "minimum": 1, "maximum": 90},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{"foundational", "intermediate", "advanced"},
			},
			"key_concepts": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"title", "day"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["title"].Type != "STRING" {
		t.Fatalf("expected STRING for title, got %s", schema.Properties["title"].Type)
	}
	day := schema.Properties["day"]
	if day.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for day, got %s", day.Type)
	}
	if day.Minimum == nil || *day.Minimum != 1 {
		t.Fatalf("expected minimum 1 for day, got %v", day.Minimum)
	}
	if day.Maximum == nil || *day.Maximum != 90 {
		t.Fatalf("expected maximum 90 for day, got %v", day.Maximum)
	}
	if len(schema.Properties["difficulty"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["difficulty"].Enum))
	}
	if schema.Properties["key_concepts"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for key_concepts, got %s", schema.Properties["key_concepts"].Type)
	}
	if schema.Properties["key_concepts"].Items.Type != "STRING" {
		t.Fatalf("expected STRING for key_concepts items, got %s", schema.Properties["key_concepts"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
