package align

import "github.com/agenthands/flowalign/internal/core/textnorm"

const (
	FamilyPromptDefinition = "prompt-definition"
	FamilyFlowControl      = "flow-control"
	FamilyFlowEnd          = "flow-end"
	FamilyModelRuntime     = "model-runtime"
	FamilyKnowledge        = "knowledge"
	FamilyIntegration      = "integration"
	FamilyCustom           = "custom"
)

// DefaultTypeFamilies maps normalized node types to their family.
func DefaultTypeFamilies() map[string]string {
	families := map[string][]string{
		FamilyPromptDefinition: {"prompt", "system prompt", "instruction", "persona", "context", "greeting", "start", "message"},
		FamilyFlowControl:      {"decision", "condition", "branch", "router", "switch", "loop", "question", "input"},
		FamilyFlowEnd:          {"end", "exit", "terminate", "handoff", "transfer", "escalation"},
		FamilyModelRuntime:     {"llm", "model", "agent", "generation", "response", "classifier"},
		FamilyKnowledge:        {"knowledge", "knowledge base", "retrieval", "rag", "faq", "document", "search"},
		FamilyIntegration:      {"tool", "api", "webhook", "integration", "function", "action", "http request"},
	}
	out := make(map[string]string)
	for family, types := range families {
		for _, t := range types {
			out[textnorm.Key(t)] = family
		}
	}
	return out
}

func (c Config) family(typeKey string) string {
	if f, ok := c.TypeFamilies[typeKey]; ok {
		return f
	}
	return FamilyCustom
}
