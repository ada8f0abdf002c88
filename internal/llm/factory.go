package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/flowalign/internal/config"
)

func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case "":
		return nil, ErrNoProvider

	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		// Ollama speaks the OpenAI API under /v1; the key is ignored.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, ollamaBaseURL(cfg.BaseURL)), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

func ollamaBaseURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/v1"
}
