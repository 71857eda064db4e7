// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// turnRequestSchema constrains the inbound turn payload before it reaches the
// dialogue pipeline.
var turnRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"userId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 64,
		},
		"text": map[string]interface{}{
			"type":      "string",
			"maxLength": 2000,
		},
	},
	"required":             []interface{}{"userId", "text"},
	"additionalProperties": false,
}

type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateTurnRequest validates a decoded turn payload against the schema.
func ValidateTurnRequest(payload map[string]interface{}) (*Result, error) {
	schemaLoader := gojsonschema.NewGoLoader(turnRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, desc.String())
	}
	return out, nil
}
