package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoProvider is returned by NewClient when no LLM provider is configured.
	ErrNoProvider = errors.New("no llm provider configured")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// systemInstruction is sent with every prompt. Callers parse the answer with
// common.ParseJSON.
const systemInstruction = "You analyse customer support conversations. Answer with a single JSON object and nothing else."

// LLMClient generates one completion for a prompt that asks for JSON.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
