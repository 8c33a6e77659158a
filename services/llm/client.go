package llm

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey is returned when a client is built without a key.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrEmptyResponse is returned when the model sends back no choices.
	ErrEmptyResponse = errors.New("model returned no choices")
)

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// Client defines the interface for a chat-completion backend.
type Client interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string, params GenerationParams) (string, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	return f(ctx, prompt, params)
}

// IntPtr returns a pointer to v, for GenerationParams fields.
func IntPtr(v int) *int { return &v }
