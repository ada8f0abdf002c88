// Package store defines the storage contracts the alignment engine reads
// from and writes to.
package store

import (
	"context"

	"github.com/agenthands/flowalign/internal/core/model"
)

type TranscriptCatalog interface {
	// TranscriptIDs lists the transcripts of a collection in a stable order.
	TranscriptIDs(ctx context.Context, collectionID string) ([]string, error)
}

type FlowStore interface {
	// FlowsForTranscripts returns every flow graph of the given transcripts in a stable order.
	FlowsForTranscripts(ctx context.Context, transcriptIDs []string) ([]model.TranscriptFlow, error)
}

type PromptNodeStore interface {
	// PromptNodes returns the prompt graph of a project ordered by position.
	PromptNodes(ctx context.Context, projectID string) ([]model.PromptNode, error)
}

type CanonicalStore interface {
	// CanonicalNodes returns nodes in insertion order.
	CanonicalNodes(ctx context.Context, collectionID string) ([]model.CanonicalFlowNode, error)
	CanonicalEdges(ctx context.Context, collectionID string) ([]model.CanonicalFlowEdge, error)
	CountCanonicalNodes(ctx context.Context, collectionID string) (int, error)
	// ReplaceCanonicalGraph deletes every node and edge of the collection and
	// inserts the given sets in one atomic step. Empty sets are not inserted.
	ReplaceCanonicalGraph(ctx context.Context, collectionID string, nodes []model.CanonicalFlowNode, edges []model.CanonicalFlowEdge) error
}

type AlignmentStore interface {
	Alignments(ctx context.Context, projectID, collectionID string) ([]model.PromptFlowAlignment, error)
	// ReplaceAlignments deletes every row of (projectID, collectionID) and
	// inserts rows in one atomic step. An empty rows slice only deletes.
	ReplaceAlignments(ctx context.Context, projectID, collectionID string, rows []model.PromptFlowAlignment) error
}

// Ingestor feeds transcripts, flows and prompt graphs into a backend.
type Ingestor interface {
	AddTranscript(ctx context.Context, t model.Transcript) error
	SaveFlow(ctx context.Context, flow model.TranscriptFlow) error
	ReplacePromptNodes(ctx context.Context, projectID string, nodes []model.PromptNode) error
}

// Stores bundles the collaborators used by the engine.
type Stores struct {
	Transcripts TranscriptCatalog
	Flows       FlowStore
	Prompts     PromptNodeStore
	Canonical   CanonicalStore
	Alignments  AlignmentStore
	Ingest      Ingestor
}

// Backend is implemented by stores that serve every contract.
type Backend interface {
	TranscriptCatalog
	FlowStore
	PromptNodeStore
	CanonicalStore
	AlignmentStore
	Ingestor
}

// FromBackend wires one backend into every slot.
func FromBackend(b Backend) Stores {
	return Stores{
		Transcripts: b,
		Flows:       b,
		Prompts:     b,
		Canonical:   b,
		Alignments:  b,
		Ingest:      b,
	}
}
