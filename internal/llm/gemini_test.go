package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal":       map[string]any{"type": "string", "enum": []any{"book_flight", "book_hotel"}},
			"confidence": map[string]any{"type": "number"},
			"alternates": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"goal"},
	}

	s := geminiSchema(def)
	if s.Type != genai.TypeObject {
		t.Fatalf("expected object, got %v", s.Type)
	}
	goal := s.Properties["goal"]
	if goal == nil || goal.Type != genai.TypeString || len(goal.Enum) != 2 {
		t.Fatalf("unexpected goal schema: %+v", goal)
	}
	if s.Properties["confidence"].Type != genai.TypeNumber {
		t.Fatalf("expected number for confidence")
	}
	alt := s.Properties["alternates"]
	if alt.Type != genai.TypeArray || alt.Items == nil || alt.Items.Type != genai.TypeString {
		t.Fatalf("unexpected alternates schema: %+v", alt)
	}
	if len(s.Required) != 1 || s.Required[0] != "goal" {
		t.Fatalf("unexpected required: %v", s.Required)
	}
}

func TestGeminiEmbedderModelID(t *testing.T) {
	e := geminiEmbedder{&GeminiProvider{model: "gemini-2.0-flash", embeddingModel: "text-embedding-004"}}
	if e.ModelID() != "text-embedding-004" {
		t.Fatalf("unexpected model id %q", e.ModelID())
	}
}
