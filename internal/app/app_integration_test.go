//go:build integration

package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flowalign/internal/config"
	"github.com/agenthands/flowalign/internal/core/model"
)

// integrationConfig points every backend at the services named in the
// environment and skips when any of them is missing.
func integrationConfig(t *testing.T) *config.Config {
	t.Helper()
	_ = godotenv.Load("../../.env")

	cfg := config.Default()
	cfg.ApplyEnv()
	if cfg.Store.PostgresDSN == "" || cfg.Memgraph.URI == "" || cfg.Lock.RedisAddr == "" {
		t.Skip("POSTGRES_DSN, MEMGRAPH_URI and REDIS_ADDR are required")
	}
	cfg.Store.Backend = "postgres"
	cfg.Store.CanonicalBackend = "memgraph"
	cfg.Lock.Backend = "redis"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestFullStackAlignment(t *testing.T) {
	ctx := context.Background()
	cfg := integrationConfig(t)
	cfg.LLM.Provider = ""

	a, err := New(ctx, cfg, nil, "")
	require.NoError(t, err)
	defer a.Close(ctx)

	collection := fmt.Sprintf("it-calls-%s", uuid.NewString())
	project := fmt.Sprintf("it-bot-%s", uuid.NewString())
	t.Logf("collection %s, project %s", collection, project)

	for i := 0; i < 3; i++ {
		_, err := a.Engine.AddTranscriptFlow(ctx, collection, model.TranscriptFlow{
			TranscriptID: fmt.Sprintf("%s-t%d", collection, i),
			Nodes: []any{
				map[string]any{"id": "n1", "type": "question", "label": "Verify Caller Identity", "content": "request account number"},
				map[string]any{"id": "n2", "type": "tool", "label": "Look Up Order", "content": "search order"},
			},
			Connections: []any{map[string]any{"from": "n1", "to": "n2"}},
		})
		require.NoError(t, err)
	}
	require.NoError(t, a.Engine.PutPromptNodes(ctx, project, []model.PromptNode{
		{ID: "p1", Type: "question", Label: "Verify Identity", Content: "ask for the account number"},
		{ID: "p2", Type: "tool", Label: "Issue Refund", Content: "refund the order"},
	}))

	// Concurrent runs must build the canonical graph once and agree.
	var wg sync.WaitGroup
	reports := make([]*model.AlignmentReport, 4)
	errs := make([]error, 4)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = a.Engine.RunAlignment(ctx, project, collection, true)
		}(i)
	}
	wg.Wait()
	for i := range reports {
		require.NoError(t, errs[i])
		assert.Equal(t, reports[0].Counts, reports[i].Counts)
	}
	assert.Equal(t, 2, reports[0].CanonicalNodeCount)

	rows, err := a.Engine.Alignments(ctx, project, collection)
	require.NoError(t, err)
	assert.Len(t, rows, reports[0].PersistedCount)

	graph, err := a.Engine.RebuildCanonical(ctx, collection)
	require.NoError(t, err)
	assert.Len(t, graph.Edges, 1)
	assert.Equal(t, 3, graph.Edges[0].SupportCount)

	_, err = a.Engine.RebuildCanonical(ctx, collection)
	require.NoError(t, err)
	again, err := a.Engine.CanonicalGraph(ctx, collection)
	require.NoError(t, err)
	assert.Len(t, again.Nodes, len(graph.Nodes))
}

func TestExtractFlowWithLLM(t *testing.T) {
	_ = godotenv.Load("../../.env")
	if os.Getenv("LLM_PROVIDER") == "" {
		t.Skip("LLM_PROVIDER not set")
	}
	ctx := context.Background()
	cfg := config.Default()
	cfg.ApplyEnv()

	a, err := New(ctx, cfg, nil, "")
	require.NoError(t, err)
	defer a.Close(ctx)
	require.NotNil(t, a.Extractor)

	transcript := `Agent: Thanks for calling, can I get your account number?
Customer: Sure, it is 4411.
Agent: Thanks, I see order 9912. What is wrong with it?
Customer: It arrived broken, I want a refund.
Agent: I have issued the refund, anything else?`

	flow, err := a.Extractor.ExtractFlow(ctx, "it-transcript", transcript)
	require.NoError(t, err)
	assert.NotEmpty(t, flow.Nodes)

	stored, err := a.Engine.AddTranscriptFlow(ctx, "it-llm-"+uuid.NewString(), flow)
	require.NoError(t, err)
	assert.Equal(t, "it-transcript", stored.TranscriptID)
}
