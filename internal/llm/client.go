// Package llm provides the text-generation capability behind Focus Buddy.
// Providers implement the Client interface; the rest of the system never
// talks to a vendor API directly.
package llm

import (
	"context"

	"google.golang.org/genai"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Complete sends a prompt and returns the completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt with a system message.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteStructured sends a prompt and constrains the response to
	// the given JSON schema. The raw JSON text is returned; callers
	// unmarshal into their own types.
	CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, schema StructuredSchema) (string, error)
}

// StructuredSchema carries a response schema in the two forms the
// supported providers accept. Raw is the JSON-schema object used by
// OpenAI-compatible APIs; Gemini is the typed equivalent for the genai
// SDK. Both are populated by the builder helpers below so the schemas
// cannot drift apart.
type StructuredSchema struct {
	Name   string
	Raw    map[string]interface{}
	Gemini *genai.Schema
}

// EnumObjectSchema builds a schema for an object with a single
// string field constrained to an enumeration. This is the shape used
// for classification calls.
func EnumObjectSchema(name, field, description string, values ...string) StructuredSchema {
	enum := make([]interface{}, len(values))
	for i, v := range values {
		enum[i] = v
	}

	return StructuredSchema{
		Name: name,
		Raw: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				field: map[string]interface{}{
					"type":        "string",
					"enum":        enum,
					"description": description,
				},
			},
			"required":             []interface{}{field},
			"additionalProperties": false,
		},
		Gemini: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				field: {
					Type:        genai.TypeString,
					Enum:        values,
					Description: description,
				},
			},
			Required: []string{field},
		},
	}
}
