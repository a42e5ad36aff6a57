package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON from a prompt.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the returned
	// Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema constrains the output. Nil means free text wrapped as JSON.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the OpenAI schema name and
// the validation cache key, so it must be unique per shape.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt is the common single-turn request shape.
func UserPrompt(system, user string, schema *Schema) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
		Schema:   schema,
	}
}
