package align

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/flowalign/internal/core/model"
)

func matchWithScore(score float64) *Match {
	return &Match{
		Node:      model.CanonicalFlowNode{ID: "canon_1", Label: "Collect Address"},
		Score:     score,
		Breakdown: model.ScoreBreakdown{Token: 0.5, Label: 0.7, Type: 1, Support: 0.25},
	}
}

func TestClassify(t *testing.T) {
	cfg := DefaultConfig()
	p := model.PromptNode{ID: "p1", Label: "Ask Address", Type: "question"}

	none := cfg.Classify(p, nil)
	assert.Equal(t, model.StatusUncovered, none.Status)
	assert.Equal(t, 0.0, none.Confidence)
	assert.Equal(t, NoCandidatesReason, none.Reason)
	assert.Empty(t, none.CanonicalNodeID)

	weak := cfg.Classify(p, matchWithScore(0.2))
	assert.Equal(t, model.StatusUncovered, weak.Status)
	assert.Equal(t, 0.2, weak.Confidence)
	assert.Contains(t, weak.Reason, "weak match 0.20")
	assert.Contains(t, weak.Reason, `"Collect Address"`)

	over := cfg.Classify(p, matchWithScore(0.35))
	assert.Equal(t, model.StatusOverconstrained, over.Status)

	covered := cfg.Classify(p, matchWithScore(0.58))
	assert.Equal(t, model.StatusCovered, covered.Status)
	assert.Equal(t, "canon_1", covered.CanonicalNodeID)
	assert.Equal(t, `matched "Collect Address" | token 50% | label 70% | type 100% | support 25%`, covered.Reason)
}
