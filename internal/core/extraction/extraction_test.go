package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flowalign/internal/config"
)

type MockLLMClient struct {
	Response   string
	Err        error
	LastPrompt string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// TestExtractFlow ensures the LLM response is parsed into an untyped flow graph.
func TestExtractFlow(t *testing.T) {
	mockJSON := "Here is the flow:\n" + `{
		"nodes": [
			{"id": "n1", "label": "Greet caller", "type": "message"},
			{"id": "n2", "label": "Verify identity", "type": "question"}
		],
		"connections": [
			{"from": "n1", "to": "n2", "reason": "caller asks about account"}
		]
	}`

	mockLLM := &MockLLMClient{Response: mockJSON}
	extractor := NewFlowExtractor(mockLLM, config.ExtractionPrompts{Flow: "transcript: %s"})

	flow, err := extractor.ExtractFlow(context.Background(), "t1", "Agent: hello")
	require.NoError(t, err)

	assert.Equal(t, "t1:flow", flow.ID)
	assert.Equal(t, "t1", flow.TranscriptID)
	require.Len(t, flow.Nodes, 2)
	require.Len(t, flow.Connections, 1)
	node := flow.Nodes[1].(map[string]any)
	assert.Equal(t, "Verify identity", node["label"])
	assert.Equal(t, "transcript: Agent: hello", mockLLM.LastPrompt)
}

func TestExtractFlow_InvalidJSON(t *testing.T) {
	extractor := NewFlowExtractor(&MockLLMClient{Response: "no graph here"}, config.ExtractionPrompts{Flow: "%s"})

	_, err := extractor.ExtractFlow(context.Background(), "t1", "Agent: hello")
	assert.ErrorContains(t, err, "failed to extract flow")
}

func TestExtractFlow_LLMError(t *testing.T) {
	extractor := NewFlowExtractor(&MockLLMClient{Err: errors.New("rate limited")}, config.ExtractionPrompts{Flow: "%s"})

	_, err := extractor.ExtractFlow(context.Background(), "t1", "Agent: hello")
	assert.ErrorContains(t, err, "rate limited")
}

func TestExtractFlow_EmptyTranscript(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "{}"}
	extractor := NewFlowExtractor(mockLLM, config.ExtractionPrompts{Flow: "%s"})

	_, err := extractor.ExtractFlow(context.Background(), "t1", "   ")
	assert.Error(t, err)
	assert.Empty(t, mockLLM.LastPrompt)
}
