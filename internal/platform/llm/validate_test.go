package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var answerSchema = &Schema{
	Name: "validate-test-answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{"type": "string"},
			"level":  map[string]any{"type": "string", "enum": []any{"Beginner", "Advanced"}},
		},
		"required":             []any{"answer", "level"},
		"additionalProperties": false,
	},
}

func TestValidateAcceptsConformingJSON(t *testing.T) {
	if err := Validate(answerSchema, json.RawMessage(`{"answer":"x","level":"Beginner"}`)); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"answer":`,
		"missing field": `{"answer":"x"}`,
		"bad enum":      `{"answer":"x","level":"Expert"}`,
		"extra field":   `{"answer":"x","level":"Beginner","more":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := Validate(answerSchema, json.RawMessage(body))
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestValidateNilSchema(t *testing.T) {
	if err := Validate(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("nil schema should pass: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured without a key, got %v", err)
	}
	cfg.Gemini.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg.Provider = "nope"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestIsRateLimitedFromMessage(t *testing.T) {
	if !IsRateLimited(errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")) {
		t.Fatalf("expected quota message to count as rate limited")
	}
	if IsRateLimited(errors.New("connection refused")) {
		t.Fatalf("connection errors are not rate limits")
	}
	if got := classifyStatus(503, errors.New("x")); !errors.As(got, new(*ErrProviderUnavailable)) {
		t.Fatalf("503 should map to provider unavailable, got %T", got)
	}
}
