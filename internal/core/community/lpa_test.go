package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flowalign/internal/core/model"
)

func nodes(ids ...string) []model.CanonicalFlowNode {
	out := make([]model.CanonicalFlowNode, len(ids))
	for i, id := range ids {
		out[i] = model.CanonicalFlowNode{ID: id, Label: "node " + id}
	}
	return out
}

func edge(from, to string, support int) model.CanonicalFlowEdge {
	return model.CanonicalFlowEdge{FromNodeID: from, ToNodeID: to, SupportCount: support}
}

func ids(c []model.CanonicalFlowNode) []string {
	out := make([]string, len(c))
	for i, n := range c {
		out[i] = n.ID
	}
	return out
}

func TestLPA_DisconnectedComponents(t *testing.T) {
	edges := []model.CanonicalFlowEdge{
		edge("1", "2", 1), edge("2", "3", 1), edge("3", "1", 1),
		edge("4", "5", 1), edge("5", "6", 1), edge("6", "4", 1),
	}

	communities, err := NewLabelPropagationDetector().Detect(nodes("1", "2", "3", "4", "5", "6"), edges)
	require.NoError(t, err)
	require.Len(t, communities, 2)
	assert.Equal(t, []string{"1", "2", "3"}, ids(communities[0]))
	assert.Equal(t, []string{"4", "5", "6"}, ids(communities[1]))
}

func TestLPA_SupportOutweighsBridge(t *testing.T) {
	// Two well-travelled triangles joined by a rare transition.
	edges := []model.CanonicalFlowEdge{
		edge("1", "2", 5), edge("2", "3", 5), edge("3", "1", 5),
		edge("3", "4", 1),
		edge("4", "5", 5), edge("5", "6", 5), edge("6", "4", 5),
	}

	communities, err := NewLabelPropagationDetector().Detect(nodes("1", "2", "3", "4", "5", "6"), edges)
	require.NoError(t, err)
	assert.Len(t, communities, 2)
}

func TestLPA_LargeClique(t *testing.T) {
	ns := nodes("1", "2", "3", "4", "5")
	var edges []model.CanonicalFlowEdge
	for i := range ns {
		for j := i + 1; j < len(ns); j++ {
			edges = append(edges, edge(ns[i].ID, ns[j].ID, 1))
		}
	}

	communities, err := NewLabelPropagationDetector().Detect(ns, edges)
	require.NoError(t, err)
	require.Len(t, communities, 1)
	assert.Len(t, communities[0], 5)
}

func TestLPA_DropsSingletonsAndDanglingEdges(t *testing.T) {
	edges := []model.CanonicalFlowEdge{
		edge("1", "2", 1),
		edge("2", "missing", 3),
		edge("3", "3", 4),
	}

	communities, err := NewDetector().Detect(nodes("1", "2", "3"), edges)
	require.NoError(t, err)
	require.Len(t, communities, 1)
	assert.Equal(t, []string{"1", "2"}, ids(communities[0]))
}

func TestLPA_Empty(t *testing.T) {
	communities, err := NewDetector().Detect(nil, nil)
	assert.NoError(t, err)
	assert.Empty(t, communities)
}

func TestLPA_Deterministic(t *testing.T) {
	ns := nodes("a", "b", "c", "d")
	edges := []model.CanonicalFlowEdge{edge("a", "b", 2), edge("b", "c", 2), edge("c", "d", 2), edge("d", "a", 2)}

	first, err := NewDetector().Detect(ns, edges)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := NewDetector().Detect(ns, edges)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
