package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/flowalign/internal/config"
	"github.com/agenthands/flowalign/internal/core/common"
	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/llm"
)

// MaxPromptNodes caps how many member steps are shown to the LLM.
const MaxPromptNodes = 20

type phaseName struct {
	Name string `json:"name"`
}

// PhaseNamer asks an LLM for a short name describing a group of canonical steps.
type PhaseNamer struct {
	LLM     llm.LLMClient
	Prompts config.SummaryPrompts
}

func NewPhaseNamer(llmClient llm.LLMClient, prompts config.SummaryPrompts) *PhaseNamer {
	return &PhaseNamer{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

func (s *PhaseNamer) NamePhase(ctx context.Context, nodes []model.CanonicalFlowNode) (string, error) {
	if len(nodes) == 0 {
		return "", fmt.Errorf("cannot name an empty phase")
	}

	var steps strings.Builder
	for i, n := range nodes {
		if i == MaxPromptNodes {
			break
		}
		if n.Content != "" && n.Content != n.Label {
			fmt.Fprintf(&steps, "- %s: %s\n", n.Label, n.Content)
		} else {
			fmt.Fprintf(&steps, "- %s\n", n.Label)
		}
	}

	tmpl := s.Prompts.PhaseName
	if tmpl == "" {
		tmpl = config.DefaultPhaseNamePrompt
	}
	prompt := fmt.Sprintf(tmpl, steps.String())

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate phase name: %w", err)
	}

	result, err := common.ParseJSON[phaseName](response)
	if err == nil && strings.TrimSpace(result.Name) != "" {
		return strings.TrimSpace(result.Name), nil
	}

	// Some models answer with the bare name.
	name := strings.Trim(strings.TrimSpace(response), `"`)
	if name == "" || strings.Contains(name, "\n") {
		return "", fmt.Errorf("failed to parse phase name from response")
	}
	return name, nil
}

// FallbackName names a phase after its best supported step. Ties keep the
// earlier node.
func FallbackName(nodes []model.CanonicalFlowNode) string {
	best := -1
	for i, n := range nodes {
		if best < 0 || n.SupportCount > nodes[best].SupportCount {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return nodes[best].Label
}
