package core

import (
	"context"
	"fmt"

	"github.com/agenthands/flowalign/internal/core/model"
)

// AddTranscriptFlow registers a transcript in a collection and stores its
// flow graph. A canonical graph that already exists for the collection is
// not refreshed.
func (e *Engine) AddTranscriptFlow(ctx context.Context, collectionID string, flow model.TranscriptFlow) (model.TranscriptFlow, error) {
	if err := requireID("collection id", collectionID); err != nil {
		return flow, err
	}
	if err := requireID("transcript id", flow.TranscriptID); err != nil {
		return flow, err
	}
	if flow.ID == "" {
		flow.ID = e.UUIDGenerator()
	}

	if err := e.Stores.Ingest.AddTranscript(ctx, model.Transcript{ID: flow.TranscriptID, CollectionID: collectionID}); err != nil {
		return flow, fmt.Errorf("failed to add transcript: %w", err)
	}
	if err := e.Stores.Ingest.SaveFlow(ctx, flow); err != nil {
		return flow, fmt.Errorf("failed to save flow: %w", err)
	}

	e.Log.Debug("transcript flow stored",
		"collection_id", collectionID,
		"transcript_id", flow.TranscriptID,
		"flow_id", flow.ID,
		"nodes", len(flow.Nodes),
		"connections", len(flow.Connections),
	)
	return flow, nil
}

// PutPromptNodes replaces the prompt graph of a project. When no node carries
// a position the slice order is used.
func (e *Engine) PutPromptNodes(ctx context.Context, projectID string, nodes []model.PromptNode) error {
	if err := requireID("project id", projectID); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(nodes))
	positioned := false
	for _, n := range nodes {
		if err := requireID("prompt node id", n.ID); err != nil {
			return err
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate prompt node id %s", ErrInvalidArgument, n.ID)
		}
		seen[n.ID] = struct{}{}
		if n.Position != 0 {
			positioned = true
		}
	}

	out := make([]model.PromptNode, len(nodes))
	for i, n := range nodes {
		n.ProjectID = projectID
		if !positioned {
			n.Position = i
		}
		out[i] = n
	}

	if err := e.Stores.Ingest.ReplacePromptNodes(ctx, projectID, out); err != nil {
		return fmt.Errorf("failed to replace prompt nodes: %w", err)
	}
	e.Log.Info("prompt graph replaced", "project_id", projectID, "nodes", len(out))
	return nil
}
