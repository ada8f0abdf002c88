package align

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/flowalign/internal/core/model"
)

func item(id, label string, status model.CoverageStatus, conf float64, canon string) model.AlignmentItem {
	return model.AlignmentItem{
		PromptNodeID:    id,
		PromptLabel:     label,
		Status:          status,
		Confidence:      conf,
		CanonicalNodeID: canon,
		Reason:          "matched",
	}
}

func TestResolveCollisions_HigherConfidenceWins(t *testing.T) {
	items := []model.AlignmentItem{
		item("p2", "Second", model.StatusCovered, 0.60, "canon_a"),
		item("p1", "First", model.StatusCovered, 0.70, "canon_a"),
	}
	ResolveCollisions(items)

	assert.Equal(t, model.StatusOverconstrained, items[0].Status)
	assert.Contains(t, items[0].Reason, "collision: canonical node canon_a already claimed by prompt node p1 (0.70)")
	assert.Equal(t, model.StatusCovered, items[1].Status)
	assert.Equal(t, "matched", items[1].Reason)
}

func TestResolveCollisions_IgnoresUncovered(t *testing.T) {
	items := []model.AlignmentItem{
		item("p1", "A", model.StatusCovered, 0.9, "canon_a"),
		item("p2", "B", model.StatusUncovered, 0.2, "canon_a"),
		item("p3", "C", model.StatusOverconstrained, 0.4, "canon_b"),
	}
	ResolveCollisions(items)

	assert.Equal(t, model.StatusCovered, items[0].Status)
	assert.Equal(t, model.StatusUncovered, items[1].Status)
	assert.Equal(t, model.StatusOverconstrained, items[2].Status)
	assert.NotContains(t, items[2].Reason, "collision")
}

func TestResolveCollisions_AtMostOneWinnerPerCanonicalNode(t *testing.T) {
	items := []model.AlignmentItem{
		item("p1", "A", model.StatusCovered, 0.8, "canon_a"),
		item("p2", "B", model.StatusCovered, 0.9, "canon_a"),
		item("p3", "C", model.StatusOverconstrained, 0.5, "canon_a"),
		item("p4", "D", model.StatusCovered, 0.7, "canon_b"),
		item("p5", "E", model.StatusCovered, 0.7, "canon_b"),
	}
	ResolveCollisions(items)

	winners := map[string]int{}
	for _, it := range items {
		if it.Status != model.StatusOverconstrained && it.Status != model.StatusUncovered {
			winners[it.CanonicalNodeID]++
		}
	}
	assert.Equal(t, 1, winners["canon_a"])
	assert.Equal(t, 1, winners["canon_b"])
	assert.Equal(t, model.StatusCovered, items[1].Status)
	assert.Equal(t, model.StatusCovered, items[3].Status, "equal confidence keeps prompt order")
}

func TestSortItems(t *testing.T) {
	items := []model.AlignmentItem{
		item("c1", "Zeta", model.StatusCovered, 0.61, "x"),
		item("o1", "beta", model.StatusOverconstrained, 0.5, "y"),
		item("u1", "Omega", model.StatusUncovered, 0, ""),
		item("c2", "Alpha", model.StatusCovered, 0.92, "z"),
		item("u2", "alpha", model.StatusUncovered, 0.1, "w"),
		item("o2", "Alpha", model.StatusOverconstrained, 0.4, "v"),
	}
	SortItems(items)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.PromptNodeID)
	}
	assert.Equal(t, []string{"u2", "u1", "o2", "o1", "c2", "c1"}, ids)
}
