package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/flowalign/internal/config"
	"github.com/agenthands/flowalign/internal/core/common"
	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/llm"
)

// extractedFlow keeps nodes and connections untyped; the canonical builder
// validates each entry.
type extractedFlow struct {
	Nodes       []any `json:"nodes"`
	Connections []any `json:"connections"`
}

type FlowExtractor struct {
	LLM     llm.LLMClient
	Prompts config.ExtractionPrompts
}

func NewFlowExtractor(llmClient llm.LLMClient, prompts config.ExtractionPrompts) *FlowExtractor {
	return &FlowExtractor{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// FlowID is the id under which the extracted flow of a transcript is stored,
// so re-extracting a transcript replaces its previous flow.
func FlowID(transcriptID string) string {
	return transcriptID + ":flow"
}

// ExtractFlow turns a raw transcript into its flow graph using the LLM.
func (e *FlowExtractor) ExtractFlow(ctx context.Context, transcriptID, text string) (model.TranscriptFlow, error) {
	if strings.TrimSpace(text) == "" {
		return model.TranscriptFlow{}, fmt.Errorf("transcript %s is empty", transcriptID)
	}

	prompt := fmt.Sprintf(e.Prompts.Flow, text)

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return model.TranscriptFlow{}, fmt.Errorf("failed to generate flow: %w", err)
	}

	result, err := common.ParseJSON[extractedFlow](response)
	if err != nil {
		return model.TranscriptFlow{}, fmt.Errorf("failed to extract flow: %w", err)
	}

	return model.TranscriptFlow{
		ID:           FlowID(transcriptID),
		TranscriptID: transcriptID,
		Nodes:        result.Nodes,
		Connections:  result.Connections,
	}, nil
}
