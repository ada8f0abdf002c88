//go:build integration

package driver

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flowalign/internal/core/model"
)

func TestMemgraphCanonicalRoundTrip(t *testing.T) {
	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("MEMGRAPH_URI not set")
	}
	ctx := context.Background()
	d, err := NewMemgraphDriver(ctx, uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"), nil)
	require.NoError(t, err)
	defer d.Close(ctx)
	require.NoError(t, d.BuildIndices(ctx))

	s := NewGraphStore(d)
	nodes := []model.CanonicalFlowNode{
		{ID: "canon_b", Label: "Second", Type: "custom", SupportCount: 1, Confidence: 1},
		{ID: "canon_a", Label: "First", Type: "custom", SupportCount: 1, Confidence: 1},
	}
	edges := []model.CanonicalFlowEdge{{FromNodeID: "canon_b", ToNodeID: "canon_a", SupportCount: 1, TransitionRate: 1}}
	require.NoError(t, s.ReplaceCanonicalGraph(ctx, "it-collection", nodes, edges))
	defer s.ReplaceCanonicalGraph(ctx, "it-collection", nil, nil)

	got, err := s.CanonicalNodes(ctx, "it-collection")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "canon_b", got[0].ID)

	gotEdges, err := s.CanonicalEdges(ctx, "it-collection")
	require.NoError(t, err)
	assert.Len(t, gotEdges, 1)
}
