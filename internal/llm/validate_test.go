package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func goalSchema() *Schema {
	return &Schema{
		Name: "test-goal",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"goal": map[string]any{"type": "string"},
			},
			"required":             []any{"goal"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		raw     string
		wantErr bool
	}{
		{"nil schema accepts anything", nil, `not json`, false},
		{"valid", goalSchema(), `{"goal":"book_flight"}`, false},
		{"missing required", goalSchema(), `{}`, true},
		{"wrong type", goalSchema(), `{"goal":3}`, true},
		{"extra property", goalSchema(), `{"goal":"a","why":"b"}`, true},
		{"invalid json", goalSchema(), `{"goal":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.schema, json.RawMessage(tt.raw))
			if tt.wantErr {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
