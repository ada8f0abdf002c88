package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flowalign/internal/core/model"
)

func TestLoadDataset(t *testing.T) {
	s, err := LoadDataset("testdata/dataset.yaml")
	require.NoError(t, err)
	ctx := context.Background()

	ids, err := s.TranscriptIDs(ctx, "support-calls")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids)

	flows, err := s.FlowsForTranscripts(ctx, ids)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	first, ok := flows[0].Nodes[0].(map[string]any)
	require.True(t, ok, "yaml nodes decode as generic maps")
	assert.Equal(t, "Greet Caller", first["label"])

	prompts, err := s.PromptNodes(ctx, "bot")
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, "p1", prompts[0].ID, "ordered by position")
}

func TestLoadDataset_Missing(t *testing.T) {
	_, err := LoadDataset("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestReplaceCanonicalGraph(t *testing.T) {
	s := New()
	ctx := context.Background()

	nodes := []model.CanonicalFlowNode{{ID: "canon_b"}, {ID: "canon_a"}}
	edges := []model.CanonicalFlowEdge{{FromNodeID: "canon_b", ToNodeID: "canon_a"}}
	require.NoError(t, s.ReplaceCanonicalGraph(ctx, "c", nodes, edges))

	got, err := s.CanonicalNodes(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, nodes, got, "insertion order is preserved")

	n, err := s.CountCanonicalNodes(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.ReplaceCanonicalGraph(ctx, "c", nil, nil))
	n, _ = s.CountCanonicalNodes(ctx, "c")
	assert.Equal(t, 0, n)
	gotEdges, _ := s.CanonicalEdges(ctx, "c")
	assert.Empty(t, gotEdges)
}

func TestReplaceAlignments_ScopedByProjectAndCollection(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.ReplaceAlignments(ctx, "p", "c1", []model.PromptFlowAlignment{{PromptNodeID: "a"}}))
	require.NoError(t, s.ReplaceAlignments(ctx, "p", "c2", []model.PromptFlowAlignment{{PromptNodeID: "b"}}))
	require.NoError(t, s.ReplaceAlignments(ctx, "p", "c1", []model.PromptFlowAlignment{{PromptNodeID: "c"}}))

	rows, _ := s.Alignments(ctx, "p", "c1")
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0].PromptNodeID)

	rows, _ = s.Alignments(ctx, "p", "c2")
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].PromptNodeID)
}

func TestSaveFlow_ReplacesByID(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.AddTranscript(ctx, model.Transcript{ID: "t1", CollectionID: "c"}))
	require.NoError(t, s.SaveFlow(ctx, model.TranscriptFlow{ID: "f1", TranscriptID: "t1"}))
	require.NoError(t, s.SaveFlow(ctx, model.TranscriptFlow{ID: "f1", TranscriptID: "t1", Nodes: []any{"x"}}))

	flows, _ := s.FlowsForTranscripts(ctx, []string{"t1"})
	require.Len(t, flows, 1)
	assert.Len(t, flows[0].Nodes, 1)
}
