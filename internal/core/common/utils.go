// Package common holds helpers shared by the LLM-backed components.
package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object found in response")

// ParseJSON extracts the outermost JSON object of an LLM response and
// decodes it into T. Markdown fences and prose around the object are ignored.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	body := stripFence(response)
	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start == -1 || end < start {
		return zero, ErrNoJSONObject
	}
	body = body[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
