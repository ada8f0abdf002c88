package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flowalign/internal/config"
	"github.com/agenthands/flowalign/internal/core/model"
)

var phaseNodes = []model.CanonicalFlowNode{
	{ID: "a", Label: "Ask account number", Content: "Request the account number", SupportCount: 2},
	{ID: "b", Label: "Verify identity", SupportCount: 5},
	{ID: "c", Label: "Confirm address", SupportCount: 5},
}

func TestNamePhaseParsesJSON(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "Sure!\n```json\n{\"name\": \"Identity verification\"}\n```"}
	namer := NewPhaseNamer(mockLLM, config.SummaryPrompts{PhaseName: "steps:\n%s"})

	name, err := namer.NamePhase(context.Background(), phaseNodes)
	require.NoError(t, err)
	assert.Equal(t, "Identity verification", name)
	assert.Contains(t, mockLLM.LastPrompt, "- Ask account number: Request the account number\n")
	assert.Contains(t, mockLLM.LastPrompt, "- Verify identity\n")
}

func TestNamePhaseAcceptsBareName(t *testing.T) {
	namer := NewPhaseNamer(&MockLLMClient{Response: `"Billing"`}, config.SummaryPrompts{})

	name, err := namer.NamePhase(context.Background(), phaseNodes)
	require.NoError(t, err)
	assert.Equal(t, "Billing", name)
}

func TestNamePhaseErrors(t *testing.T) {
	namer := NewPhaseNamer(&MockLLMClient{Err: errors.New("quota")}, config.SummaryPrompts{})
	_, err := namer.NamePhase(context.Background(), phaseNodes)
	assert.ErrorContains(t, err, "quota")

	_, err = namer.NamePhase(context.Background(), nil)
	assert.Error(t, err)

	namer = NewPhaseNamer(&MockLLMClient{Response: "line one\nline two"}, config.SummaryPrompts{})
	_, err = namer.NamePhase(context.Background(), phaseNodes)
	assert.Error(t, err)
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "Verify identity", FallbackName(phaseNodes))
	assert.Equal(t, "", FallbackName(nil))
}
