package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) generativeModel() *genai.GenerativeModel {
	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0)
	return m
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generativeModel().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				out.WriteString(string(txt))
			}
		}
		if out.Len() > 0 {
			return out.String(), nil
		}
	}
	return "", ErrEmptyResponse
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
