package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// documentSchema describes a scenario document.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "goals", "trajectory"},
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "minLength": 1},
		"weights": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"alpha": map[string]any{"type": "number", "minimum": 0},
				"beta":  map[string]any{"type": "number", "minimum": 0},
				"gamma": map[string]any{"type": "number", "minimum": 0},
			},
			"additionalProperties": false,
		},
		"goals": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string", "minLength": 1},
					"prerequisites": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"window": map[string]any{
						"type":     []any{"array", "null"},
						"items":    map[string]any{"type": "integer"},
						"minItems": 2,
						"maxItems": 2,
					},
				},
				"additionalProperties": false,
			},
		},
		"trajectory": map[string]any{
			"type": "array",
			"items": map[string]any{
				"oneOf": []any{
					map[string]any{"type": "string"},
					map[string]any{
						"type":     "object",
						"required": []any{"action"},
						"properties": map[string]any{
							"t":      map[string]any{"type": "integer", "minimum": 1},
							"action": map[string]any{"type": "string"},
						},
						"additionalProperties": false,
					},
				},
			},
		},
		"completion_keywords": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"additionalProperties": false,
}

var compiledSchema = mustCompile()

func mustCompile() *jsonschema.Schema {
	// The compiler wants decoded JSON values, so round-trip the Go map.
	raw, err := json.Marshal(documentSchema)
	if err != nil {
		panic(err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("scenario.json", doc); err != nil {
		panic(err)
	}
	return c.MustCompile("scenario.json")
}

// validate decodes YAML into generic values, converts them to JSON values
// and checks them against documentSchema.
func validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		return errors.New("empty scenario document")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("scenario is not JSON-compatible: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	if err := compiledSchema.Validate(inst); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	return nil
}
